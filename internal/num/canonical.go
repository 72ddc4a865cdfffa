// Package num canonicalizes JSON numbers so that numerically equal
// spellings ("1", "1.0", "10e-1") compare and encode identically.
package num

import (
	"encoding/json"
	"math"
	"math/big"
	"strconv"
)

// Decimal is a parsed JSON number: Sign * Coef * 10^Exp.
// Coef holds ASCII digits with no leading or trailing zeros; zero has an empty Coef.
// Exp is unbounded; nil stands for a zero exponent.
type Decimal struct {
	Coef []byte
	Exp  *big.Int
	Sign int8
}

// IsZero reports whether d represents zero.
func (d Decimal) IsZero() bool {
	return len(d.Coef) == 0
}

// String renders the canonical form: [-]digits[eN], or "0".
func (d Decimal) String() string {
	if d.IsZero() {
		return "0"
	}
	return string(d.Append(nil))
}

// Append appends the canonical form of d to dst.
func (d Decimal) Append(dst []byte) []byte {
	if d.IsZero() {
		return append(dst, '0')
	}
	if d.Sign < 0 {
		dst = append(dst, '-')
	}
	dst = append(dst, d.Coef...)
	if d.Exp != nil && d.Exp.Sign() != 0 {
		dst = append(dst, 'e')
		dst = d.Exp.Append(dst, 10)
	}
	return dst
}

// Equal reports whether two decimals hold the same value.
func (d Decimal) Equal(other Decimal) bool {
	if d.IsZero() || other.IsZero() {
		return d.IsZero() && other.IsZero()
	}
	return d.Sign == other.Sign && compareExp(d.Exp, other.Exp) == 0 && string(d.Coef) == string(other.Coef)
}

func compareExp(a, b *big.Int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -b.Sign()
	case b == nil:
		return a.Sign()
	default:
		return a.Cmp(b)
	}
}

// Parse parses text following the JSON number grammar:
// -?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?
func Parse(s string) (Decimal, *ParseError) {
	if s == "" {
		return Decimal{}, &ParseError{Input: s, Kind: ParseEmpty}
	}
	i := 0
	sign := int8(1)
	if s[i] == '-' {
		sign = -1
		i++
	}
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intDigits := s[intStart:i]
	if intDigits == "" {
		return Decimal{}, &ParseError{Input: s, Kind: ParseNoDigits}
	}
	if len(intDigits) > 1 && intDigits[0] == '0' {
		return Decimal{}, &ParseError{Input: s, Kind: ParseLeadingZero}
	}

	var fracDigits string
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		fracDigits = s[fracStart:i]
		if fracDigits == "" {
			return Decimal{}, &ParseError{Input: s, Kind: ParseNoDigits}
		}
	}

	var expDigits string
	expNeg := false
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			expNeg = s[i] == '-'
			i++
		}
		expStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		expDigits = s[expStart:i]
		if expDigits == "" {
			return Decimal{}, &ParseError{Input: s, Kind: ParseNoDigits}
		}
	}
	if i != len(s) {
		return Decimal{}, &ParseError{Input: s, Kind: ParseBadChar}
	}

	coef := make([]byte, 0, len(intDigits)+len(fracDigits))
	coef = append(coef, intDigits...)
	coef = append(coef, fracDigits...)
	coef = trimLeadingZeros(coef)
	trailing := 0
	for len(coef) > 0 && coef[len(coef)-1] == '0' {
		coef = coef[:len(coef)-1]
		trailing++
	}
	if len(coef) == 0 {
		return Decimal{}, nil
	}

	exp := new(big.Int)
	if expDigits != "" {
		exp.SetString(expDigits, 10)
		if expNeg {
			exp.Neg(exp)
		}
	}
	exp.Add(exp, big.NewInt(int64(trailing)-int64(len(fracDigits))))
	d := Decimal{Sign: sign, Coef: coef}
	if exp.Sign() != 0 {
		d.Exp = exp
	}
	return d, nil
}

// Canonical returns the canonical spelling of a JSON number.
func Canonical(s string) (string, error) {
	d, err := Parse(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// Equal reports whether two JSON number spellings hold the same value.
func Equal(a, b string) (bool, error) {
	da, err := Parse(a)
	if err != nil {
		return false, err
	}
	db, err := Parse(b)
	if err != nil {
		return false, err
	}
	return da.Equal(db), nil
}

// FromFloat converts a finite float into its shortest JSON spelling.
func FromFloat(f float64) (json.Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", &ParseError{Input: strconv.FormatFloat(f, 'g', -1, 64), Kind: ParseNotFinite}
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

// FromInt converts a signed integer.
func FromInt(v int64) json.Number {
	return json.Number(strconv.FormatInt(v, 10))
}

// FromUint converts an unsigned integer.
func FromUint(v uint64) json.Number {
	return json.Number(strconv.FormatUint(v, 10))
}

// ToNative returns the number as int64, uint64 or float64, preferring exact integer forms.
func ToNative(n json.Number) any {
	if v, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseUint(string(n), 10, 64); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(string(n), 64); err == nil {
		return v
	}
	return string(n)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == '0' {
		i++
	}
	return b[i:]
}
