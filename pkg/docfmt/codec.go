package docfmt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/formbird/json-patch/internal/num"
	"github.com/formbird/json-patch/internal/value"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("docfmt: CBOR encoder initialization failed: " + err.Error())
	}
	// any-typed targets must decode to the document model's object type
	cborDec, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("docfmt: CBOR decoder initialization failed: " + err.Error())
	}
}

// Decode reads exactly one document of format f from r.
// Trailing data after the document is an error.
func Decode(r io.Reader, f Format) (any, error) {
	switch f {
	case JSON:
		return value.DecodeJSONReader(r)
	case JSONC:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("decode jsonc: %w", err)
		}
		v, err := value.DecodeJSON(jsonc.ToJSON(data))
		if err != nil {
			return nil, fmt.Errorf("decode jsonc: %w", err)
		}
		return v, nil
	case YAML:
		return decodeYAML(r)
	case CBOR:
		return decodeCBOR(r)
	default:
		return nil, fmt.Errorf("decode: unsupported format %s", f)
	}
}

func decodeYAML(r io.Reader) (any, error) {
	dec := yaml.NewDecoder(r)
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: empty input")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return nil, fmt.Errorf("decode yaml: more than one document")
	}
	v, err := value.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return v, nil
}

func decodeCBOR(r io.Reader) (any, error) {
	dec := cborDec.NewDecoder(r)
	var raw any
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode cbor: empty input")
		}
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode cbor: trailing data after document")
	}
	v, err := value.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("decode cbor: %w", err)
	}
	return v, nil
}

// Encode writes v to w in format f. JSONC is written as plain JSON.
// Text formats end with a newline.
func Encode(w io.Writer, v any, f Format, opts ...Options) error {
	o := JoinOptions(opts...)
	doc, err := value.Normalize(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	switch f {
	case JSON, JSONC:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if o.indent != "" {
			enc.SetIndent("", o.indent)
		}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(max(len(o.indent), 2))
		if err := enc.Encode(native(doc)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return nil
	case CBOR:
		if err := cborEnc.NewEncoder(w).Encode(native(doc)); err != nil {
			return fmt.Errorf("encode cbor: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("encode: unsupported format %s", f)
	}
}

// native replaces json.Number with Go integers or floats so YAML and
// CBOR write real numbers instead of strings.
func native(v any) any {
	switch x := v.(type) {
	case json.Number:
		return num.ToNative(x)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = native(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = native(item)
		}
		return out
	default:
		return v
	}
}
