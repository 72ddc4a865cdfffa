// Package value defines the in-memory JSON document model shared by the
// differ, the patch applier and the format codecs.
//
// A normalized document is built only from nil, bool, json.Number,
// string, []any and map[string]any.
package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/formbird/json-patch/internal/num"
)

// Kind classifies a normalized value.
type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the JSON type name.
func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// KindOf returns the kind of a normalized value.
// Values outside the model report Null.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return Bool
	case json.Number:
		return Number
	case string:
		return String
	case []any:
		return Array
	case map[string]any:
		return Object
	default:
		return Null
	}
}

// IsContainer reports whether v is an array or an object.
func IsContainer(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	default:
		return false
	}
}

// UnsupportedError reports a Go value that has no JSON representation.
type UnsupportedError struct {
	Type  string
	Cause error
}

func (e *UnsupportedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unsupported value of type %s: %v", e.Type, e.Cause)
	}
	return "unsupported value of type " + e.Type
}

func (e *UnsupportedError) Unwrap() error {
	return e.Cause
}

// Normalize converts v into the document model. Already-normalized
// containers are copied, so the result never aliases the input.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case string:
		return x, nil
	case json.Number:
		if _, err := num.Parse(string(x)); err != nil {
			return nil, &UnsupportedError{Type: "json.Number", Cause: err}
		}
		return x, nil
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return num.FromInt(int64(x)), nil
	case int8:
		return num.FromInt(int64(x)), nil
	case int16:
		return num.FromInt(int64(x)), nil
	case int32:
		return num.FromInt(int64(x)), nil
	case int64:
		return num.FromInt(x), nil
	case uint:
		return num.FromUint(uint64(x)), nil
	case uint8:
		return num.FromUint(uint64(x)), nil
	case uint16:
		return num.FromUint(uint64(x)), nil
	case uint32:
		return num.FromUint(uint64(x)), nil
	case uint64:
		return num.FromUint(x), nil
	case []byte:
		return base64.StdEncoding.EncodeToString(x), nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			key, ok := k.(string)
			if !ok {
				return nil, &UnsupportedError{Type: fmt.Sprintf("map key %T", k)}
			}
			n, err := Normalize(item)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case json.RawMessage:
		return decodeJSON(x, "json.RawMessage")
	default:
		return normalizeReflect(v)
	}
}

func fromFloat(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &UnsupportedError{Type: "float", Cause: fmt.Errorf("%v has no JSON representation", f)}
	}
	n, err := num.FromFloat(f)
	if err != nil {
		return nil, &UnsupportedError{Type: "float", Cause: err}
	}
	return n, nil
}

// normalizeReflect routes structs, typed maps and typed slices through
// encoding/json so their struct tags and marshalers are honored.
func normalizeReflect(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &UnsupportedError{Type: fmt.Sprintf("%T", v), Cause: err}
	}
	return decodeJSON(data, fmt.Sprintf("%T", v))
}

// DecodeJSON decodes exactly one JSON document into the model.
// Trailing non-whitespace data is an error.
func DecodeJSON(data []byte) (any, error) {
	return DecodeJSONReader(bytes.NewReader(data))
}

// DecodeJSONReader is DecodeJSON over a stream.
func DecodeJSONReader(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errTrailingData
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return out, nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

func decodeJSON(data []byte, typeName string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, &UnsupportedError{Type: typeName, Cause: err}
	}
	return out, nil
}

// Clone returns a deep copy of a normalized value.
func Clone(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Clone(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// Equal reports deep equality of two normalized values. Numbers compare
// by exact decimal value; object member order is irrelevant.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case json.Number:
		y, ok := b.(json.Number)
		if !ok {
			return false
		}
		if x == y {
			return true
		}
		eq, err := num.Equal(string(x), string(y))
		return err == nil && eq
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, found := y[k]
			if !found || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
