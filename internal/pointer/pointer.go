// Package pointer implements JSON Pointer (RFC 6901) parsing and
// formatting.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every pointer parse failure.
var ErrSyntax = errors.New("invalid JSON pointer")

// ErrIndex is wrapped by array index failures.
var ErrIndex = errors.New("invalid array index")

// ErrIndexRange reports a well-formed index outside the array bounds.
var ErrIndexRange = errors.New("array index out of range")

// EndToken is the array token that addresses the position after the last element.
const EndToken = "-"

// Pointer is a parsed JSON Pointer: the sequence of unescaped reference tokens.
// The zero value addresses the whole document.
type Pointer []string

// Parse parses the string form of a pointer.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return nil, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("%w %q: must be empty or start with '/'", ErrSyntax, s)
	}
	parts := strings.Split(s[1:], "/")
	tokens := make(Pointer, len(parts))
	for i, part := range parts {
		token, err := unescape(part)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrSyntax, s, err)
		}
		tokens[i] = token
	}
	return tokens, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

func unescape(part string) (string, error) {
	if !strings.Contains(part, "~") {
		return part, nil
	}
	var b strings.Builder
	b.Grow(len(part))
	for i := 0; i < len(part); i++ {
		c := part[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(part) {
			return "", errors.New("dangling '~'")
		}
		switch part[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("bad escape '~%c'", part[i+1])
		}
		i++
	}
	return b.String(), nil
}

// String formats the pointer with tokens escaped.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	n := 0
	for _, token := range p {
		n += 1 + len(token)
	}
	buf := make([]byte, 0, n)
	for _, token := range p {
		buf = append(buf, '/')
		buf = AppendEscaped(buf, token)
	}
	return string(buf)
}

// IsRoot reports whether p addresses the whole document.
func (p Pointer) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the pointer to the containing value. The root is its own parent.
func (p Pointer) Parent() Pointer {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final reference token, or "" for the root.
func (p Pointer) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Append returns a new pointer with token added. p is not modified.
func (p Pointer) Append(token string) Pointer {
	out := make(Pointer, len(p), len(p)+1)
	copy(out, p)
	return append(out, token)
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Pointer) HasPrefix(prefix Pointer) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Equal reports whether two pointers address the same location.
func (p Pointer) Equal(other Pointer) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// Escape escapes '~' and '/' in a single reference token.
func Escape(token string) string {
	if !strings.ContainsAny(token, "~/") {
		return token
	}
	return string(AppendEscaped(nil, token))
}

// AppendEscaped appends the escaped form of token to dst.
func AppendEscaped(dst []byte, token string) []byte {
	for i := 0; i < len(token); i++ {
		switch c := token[i]; c {
		case '~':
			dst = append(dst, '~', '0')
		case '/':
			dst = append(dst, '~', '1')
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// ArrayIndex resolves an array reference token against an array of the given length.
// allowEnd permits "-" and the index equal to length, which address the append position.
func ArrayIndex(token string, length int, allowEnd bool) (int, error) {
	if token == EndToken {
		if allowEnd {
			return length, nil
		}
		return 0, fmt.Errorf("%w: %q is only valid when adding", ErrIndexRange, token)
	}
	if token == "" {
		return 0, fmt.Errorf("%w: empty token", ErrIndex)
	}
	if len(token) > 1 && token[0] == '0' {
		return 0, fmt.Errorf("%w %q: leading zero", ErrIndex, token)
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return 0, fmt.Errorf("%w %q: not a non-negative integer", ErrIndex, token)
		}
	}
	idx, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrIndexRange, token, err)
	}
	limit := length - 1
	if allowEnd {
		limit = length
	}
	if idx > limit {
		return 0, fmt.Errorf("%w: %d (length %d)", ErrIndexRange, idx, length)
	}
	return idx, nil
}
