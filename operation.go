package jsonpatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/pointer"
	"github.com/formbird/json-patch/internal/value"
)

// OpKind names an RFC 6902 operation.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
	OpMove    OpKind = "move"
	OpCopy    OpKind = "copy"
	OpTest    OpKind = "test"
)

// Valid reports whether k is one of the six RFC 6902 operations.
func (k OpKind) Valid() bool {
	switch k {
	case OpAdd, OpRemove, OpReplace, OpMove, OpCopy, OpTest:
		return true
	default:
		return false
	}
}

func (k OpKind) hasFrom() bool {
	return k == OpMove || k == OpCopy
}

func (k OpKind) hasValue() bool {
	return k == OpAdd || k == OpReplace || k == OpTest
}

// Operation is a single JSON Patch operation. Path and From hold JSON
// Pointer strings. Value holds any JSON-representable Go value and is
// ignored by operations that do not take one.
type Operation struct {
	Value any
	Op    OpKind
	Path  string
	From  string
}

// Patch is an ordered list of operations, applied in sequence.
type Patch []Operation

// Add builds an "add" operation.
func Add(path string, v any) Operation {
	return Operation{Op: OpAdd, Path: path, Value: v}
}

// Remove builds a "remove" operation.
func Remove(path string) Operation {
	return Operation{Op: OpRemove, Path: path}
}

// Replace builds a "replace" operation.
func Replace(path string, v any) Operation {
	return Operation{Op: OpReplace, Path: path, Value: v}
}

// Move builds a "move" operation.
func Move(from, path string) Operation {
	return Operation{Op: OpMove, From: from, Path: path}
}

// Copy builds a "copy" operation.
func Copy(from, path string) Operation {
	return Operation{Op: OpCopy, From: from, Path: path}
}

// Test builds a "test" operation.
func Test(path string, v any) Operation {
	return Operation{Op: OpTest, Path: path, Value: v}
}

// String renders the operation in its JSON form for diagnostics.
func (o Operation) String() string {
	data, err := o.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("{%s %q}", o.Op, o.Path)
	}
	return string(data)
}

type wireOperation struct {
	Op    OpKind          `json:"op"`
	Path  string          `json:"path"`
	From  *string         `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes the operation with only the members its kind uses.
// "value" is always present for add, replace and test, even when null.
func (o Operation) MarshalJSON() ([]byte, error) {
	w := wireOperation{Op: o.Op, Path: o.Path}
	if o.Op.hasFrom() {
		from := o.From
		w.From = &from
	}
	if o.Op.hasValue() {
		v, err := value.Normalize(o.Value)
		if err != nil {
			return nil, fmt.Errorf("encode %s value: %w", o.Op, err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s value: %w", o.Op, err)
		}
		w.Value = data
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes one operation object, checking that every member
// its kind requires is present. A "value" of null counts as present.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return errors.Wrap(errors.ErrPatchDecode, "", fmt.Errorf("operation is not an object: %w", err))
	}

	var op OpKind
	if err := decodeStringMember(members, "op", (*string)(&op)); err != nil {
		return err
	}
	var path string
	fail := func(err *errors.Operation) error {
		err.Op = string(op)
		if err.Path == "" {
			err.Path = path
		}
		return err
	}
	if !op.Valid() {
		return fail(errors.Newf(errors.ErrInvalidOp, "", "unknown op %q", op))
	}
	if err := decodeStringMember(members, "path", &path); err != nil {
		return fail(err)
	}

	var from string
	if op.hasFrom() {
		if err := decodeStringMember(members, "from", &from); err != nil {
			return fail(err)
		}
	}

	var v any
	if op.hasValue() {
		raw, ok := members["value"]
		if !ok {
			return fail(errors.Newf(errors.ErrMissingField, "", "%s requires a \"value\" member", op))
		}
		decoded, err := value.DecodeJSON(raw)
		if err != nil {
			return fail(errors.Wrap(errors.ErrPatchDecode, "", err))
		}
		v = decoded
	}

	*o = Operation{Op: op, Path: path, From: from, Value: v}
	return nil
}

func decodeStringMember(members map[string]json.RawMessage, name string, dst *string) *errors.Operation {
	raw, ok := members[name]
	if !ok {
		return errors.Newf(errors.ErrMissingField, "", "missing %q member", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return errors.Newf(errors.ErrPatchDecode, "", "%q member must be a string", name)
	}
	return nil
}

// DecodePatch decodes a JSON Patch document. Every operation is decoded
// and syntax-checked; all failures are reported together as an
// errors.List with operation indices.
func DecodePatch(data []byte) (Patch, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.Newf(errors.ErrPatchDecode, "", "patch is not a JSON array")
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, errors.Wrap(errors.ErrPatchDecode, "", fmt.Errorf("patch is not a JSON array: %w", err))
	}
	p := make(Patch, len(raws))
	var failures errors.List
	for i, raw := range raws {
		if err := p[i].UnmarshalJSON(raw); err != nil {
			failures = append(failures, *attribute(err, i, p[i]))
			continue
		}
		if err := p[i].validate(); err != nil {
			failures = append(failures, *attribute(err, i, p[i]))
		}
	}
	if len(failures) > 0 {
		return nil, failures
	}
	return p, nil
}

// Validate checks every operation's kind and pointer syntax without a document.
func (p Patch) Validate() error {
	var failures errors.List
	for i, op := range p {
		if err := op.validate(); err != nil {
			failures = append(failures, *attribute(err, i, op))
		}
	}
	if len(failures) > 0 {
		return failures
	}
	return nil
}

func (o Operation) validate() error {
	if !o.Op.Valid() {
		return errors.Newf(errors.ErrInvalidOp, o.Path, "unknown op %q", o.Op)
	}
	if _, err := parsePointer(o.Path); err != nil {
		return err
	}
	if o.Op.hasFrom() {
		if _, err := parsePointer(o.From); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes the patch as a JSON array; a nil patch encodes as [].
func (p Patch) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Operation(p))
}

// UnmarshalJSON decodes a patch document with DecodePatch semantics.
// A JSON null leaves p unchanged, following the encoding/json convention.
func (p *Patch) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	decoded, err := DecodePatch(data)
	if err != nil {
		return err
	}
	*p = decoded
	return nil
}

func parsePointer(s string) (pointer.Pointer, error) {
	ptr, err := pointer.Parse(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrPointerSyntax, s, err)
	}
	return ptr, nil
}

// attribute tags err with the index and kind of the operation that produced it.
func attribute(err error, index int, op Operation) *errors.Operation {
	from := ""
	if op.Op.hasFrom() {
		from = op.From
	}
	if opErr, ok := errors.AsOperation(err); ok {
		name := string(op.Op)
		if name == "" {
			name = opErr.Op
		}
		out := opErr.At(index, name, from)
		if out.Path == "" {
			out.Path = op.Path
		}
		return out
	}
	return errors.Wrap(errors.ErrPatchDecode, op.Path, err).At(index, string(op.Op), from)
}
