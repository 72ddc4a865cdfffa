// Package valuekey produces a canonical binary encoding of normalized
// JSON values. Two values encode to the same bytes exactly when
// value.Equal reports them equal, which makes the encoding usable as a
// map key, a hash input, or a size measure.
package valuekey

import (
	"encoding/binary"
	"encoding/json"
	"slices"

	"github.com/formbird/json-patch/internal/num"
)

// Type tags written before every encoded value.
const (
	TagNull   byte = 0
	TagBool   byte = 1
	TagNumber byte = 2
	TagString byte = 3
	TagArray  byte = 4
	TagObject byte = 5
)

// Encode returns the canonical encoding of v.
func Encode(v any) []byte {
	return Append(nil, v)
}

// Append appends the canonical encoding of v to dst.
// Values outside the document model encode as null.
func Append(dst []byte, v any) []byte {
	switch x := v.(type) {
	case bool:
		dst = append(dst, TagBool)
		if x {
			return append(dst, 1)
		}
		return append(dst, 0)
	case json.Number:
		dst = append(dst, TagNumber)
		return appendNumber(dst, x)
	case string:
		dst = append(dst, TagString)
		dst = AppendUvarint(dst, uint64(len(x)))
		return append(dst, x...)
	case []any:
		dst = append(dst, TagArray)
		dst = AppendUvarint(dst, uint64(len(x)))
		for _, item := range x {
			dst = Append(dst, item)
		}
		return dst
	case map[string]any:
		dst = append(dst, TagObject)
		dst = AppendUvarint(dst, uint64(len(x)))
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			dst = AppendUvarint(dst, uint64(len(k)))
			dst = append(dst, k...)
			dst = Append(dst, x[k])
		}
		return dst
	default:
		return append(dst, TagNull)
	}
}

// appendNumber writes the canonical decimal spelling with a length prefix.
// Invalid spellings fall back to the raw text so encoding stays total.
func appendNumber(dst []byte, n json.Number) []byte {
	d, err := num.Parse(string(n))
	if err != nil {
		dst = AppendUvarint(dst, uint64(len(n)))
		return append(dst, n...)
	}
	var scratch [32]byte
	canonical := d.Append(scratch[:0])
	dst = AppendUvarint(dst, uint64(len(canonical)))
	return append(dst, canonical...)
}

// Size returns the length of the canonical encoding of v without keeping it.
func Size(v any) int {
	switch x := v.(type) {
	case bool:
		return 2
	case json.Number:
		return len(appendNumber([]byte{TagNumber}, x))
	case string:
		return 1 + uvarintLen(uint64(len(x))) + len(x)
	case []any:
		n := 1 + uvarintLen(uint64(len(x)))
		for _, item := range x {
			n += Size(item)
		}
		return n
	case map[string]any:
		n := 1 + uvarintLen(uint64(len(x)))
		for k, item := range x {
			n += uvarintLen(uint64(len(k))) + len(k) + Size(item)
		}
		return n
	default:
		return 1
	}
}

// AppendUvarint appends v in unsigned varint form.
func AppendUvarint(dst []byte, v uint64) []byte {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], v)
	return append(dst, buf[:n]...)
}

func uvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}
