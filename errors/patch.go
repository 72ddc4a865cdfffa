package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a class of patch, pointer or document failure.
// Codes are stable and safe to match on.
type ErrorCode string

const (
	// ErrPatchDecode indicates a patch document is not a JSON array of operation objects.
	ErrPatchDecode ErrorCode = "patch-decode"
	// ErrInvalidOp indicates an unknown "op" member.
	ErrInvalidOp ErrorCode = "patch-invalid-op"
	// ErrMissingField indicates a required member ("path", "from" or "value") is absent.
	ErrMissingField ErrorCode = "patch-missing-field"
	// ErrPointerSyntax indicates a malformed JSON Pointer.
	ErrPointerSyntax ErrorCode = "pointer-syntax"

	// ErrPathNotFound indicates the target location, or its parent, does not exist.
	ErrPathNotFound ErrorCode = "path-not-found"
	// ErrIndexOutOfRange indicates an array index beyond the array bounds.
	ErrIndexOutOfRange ErrorCode = "index-out-of-range"
	// ErrInvalidIndex indicates an array reference token that is not a valid index.
	ErrInvalidIndex ErrorCode = "invalid-index"
	// ErrTestFailed indicates a "test" operation found a different value.
	ErrTestFailed ErrorCode = "test-failed"
	// ErrMoveIntoDescendant indicates a "move" whose target lies inside its source.
	ErrMoveIntoDescendant ErrorCode = "move-into-descendant"
	// ErrRemoveRoot indicates a "remove" of the whole document.
	ErrRemoveRoot ErrorCode = "remove-root"
	// ErrCopySizeExceeded indicates accumulated "copy" output passed the configured limit.
	ErrCopySizeExceeded ErrorCode = "copy-size-exceeded"
	// ErrOperationLimit indicates a patch longer than the configured operation limit.
	ErrOperationLimit ErrorCode = "operation-limit"

	// ErrMergeNullValue indicates a null member that a merge patch cannot express.
	ErrMergeNullValue ErrorCode = "merge-null-value"
	// ErrDocumentDecode indicates an input document could not be decoded.
	ErrDocumentDecode ErrorCode = "document-decode"
	// ErrUnsupportedValue indicates a Go value with no JSON representation.
	ErrUnsupportedValue ErrorCode = "unsupported-value"
)

// Operation describes a failure with a stable code, the JSON Pointer it
// concerns, and the index of the patch operation that caused it.
// Index is -1 when the failure is not tied to a single operation.
//
//nolint:errname // public API name uses the RFC 6902 term.
type Operation struct {
	Cause   error
	Code    string
	Message string
	Op      string
	Path    string
	From    string
	Index   int
}

// Error formats the failure with its code, location and operation context.
func (o *Operation) Error() string {
	if o == nil {
		return "operation <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", o.Code, o.Message)
	if o.Path != "" {
		fmt.Fprintf(&b, " at %q", o.Path)
	}
	if o.Index >= 0 {
		if o.Op != "" {
			fmt.Fprintf(&b, " (operation %d: %s", o.Index, o.Op)
			if o.From != "" {
				fmt.Fprintf(&b, " from %q", o.From)
			}
			b.WriteString(")")
		} else {
			fmt.Fprintf(&b, " (operation %d)", o.Index)
		}
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (o *Operation) Unwrap() error {
	return o.Cause
}

// New builds an Operation error not tied to a patch operation.
func New(code ErrorCode, msg, path string) *Operation {
	return &Operation{Code: string(code), Message: msg, Path: path, Index: -1}
}

// Newf formats a message and builds an Operation error.
func Newf(code ErrorCode, path, format string, args ...any) *Operation {
	return New(code, fmt.Sprintf(format, args...), path)
}

// Wrap builds an Operation error that keeps cause for errors.Is/As.
func Wrap(code ErrorCode, path string, cause error) *Operation {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &Operation{Code: string(code), Message: msg, Path: path, Index: -1, Cause: cause}
}

// At returns a copy of o attributed to operation index of kind op.
func (o *Operation) At(index int, op, from string) *Operation {
	out := *o
	out.Index = index
	out.Op = op
	out.From = from
	return &out
}

// List is an error that wraps one or more operation errors.
type List []Operation //nolint:errname // public API name, mirrors Operation.

// Error returns a compact summary of the errors.
func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no patch errors"
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", l[0].Error(), len(l)-1)
	}
}

// AsOperation extracts the first Operation error from err.
func AsOperation(err error) (*Operation, bool) {
	if err == nil {
		return nil, false
	}
	var op *Operation
	if errors.As(err, &op) && op != nil {
		return op, true
	}
	var list List
	if errors.As(err, &list) && len(list) > 0 {
		return &list[0], true
	}
	return nil, false
}

// AsOperations extracts every Operation error carried by err.
func AsOperations(err error) ([]Operation, bool) {
	if err == nil {
		return nil, false
	}
	var list List
	if errors.As(err, &list) {
		return []Operation(list), true
	}
	if op, ok := AsOperation(err); ok {
		return []Operation{*op}, true
	}
	return nil, false
}

// HasCode reports whether err carries an Operation error with code.
func HasCode(err error, code ErrorCode) bool {
	ops, ok := AsOperations(err)
	if !ok {
		return false
	}
	for i := range ops {
		if ops[i].Code == string(code) {
			return true
		}
	}
	return false
}
