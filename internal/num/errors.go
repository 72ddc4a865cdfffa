package num

// ParseError represents a numeric parse failure.
type ParseError struct {
	Input string
	Kind  ParseErrKind
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return "invalid number " + quote(e.Input) + ": " + e.Kind.String()
}

// ParseErrKind identifies a parse failure category.
type ParseErrKind uint8

const (
	ParseInvalid ParseErrKind = iota
	ParseEmpty
	ParseBadChar
	ParseLeadingZero
	ParseNoDigits
	ParseNotFinite
)

// String returns a stable label for the parse error kind.
func (k ParseErrKind) String() string {
	switch k {
	case ParseEmpty:
		return "empty"
	case ParseBadChar:
		return "bad character"
	case ParseLeadingZero:
		return "leading zero"
	case ParseNoDigits:
		return "no digits"
	case ParseNotFinite:
		return "not finite"
	default:
		return "invalid"
	}
}

func quote(s string) string {
	const limit = 32
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return "\"" + s + "\""
}
