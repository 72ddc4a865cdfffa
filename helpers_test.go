package jsonpatch

import (
	"testing"

	"github.com/formbird/json-patch/internal/value"
)

func mustDoc(t *testing.T, text string) any {
	t.Helper()
	v, err := value.DecodeJSON([]byte(text))
	if err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return v
}

func mustPatch(t *testing.T, text string) Patch {
	t.Helper()
	p, err := DecodePatch([]byte(text))
	if err != nil {
		t.Fatalf("DecodePatch(%q) error = %v", text, err)
	}
	return p
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	data, err := marshalDocument(v)
	if err != nil {
		t.Fatalf("marshal %#v: %v", v, err)
	}
	return string(data)
}
