package jsonpatch

import (
	"testing"

	patcherrors "github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/value"
)

func TestMergePatch(t *testing.T) {
	// RFC 7396 appendix A
	tests := []struct {
		doc   string
		patch string
		want  string
	}{
		{`{"a":"b"}`, `{"a":"c"}`, `{"a":"c"}`},
		{`{"a":"b"}`, `{"b":"c"}`, `{"a":"b","b":"c"}`},
		{`{"a":"b"}`, `{"a":null}`, `{}`},
		{`{"a":"b","b":"c"}`, `{"a":null}`, `{"b":"c"}`},
		{`{"a":["b"]}`, `{"a":"c"}`, `{"a":"c"}`},
		{`{"a":"c"}`, `{"a":["b"]}`, `{"a":["b"]}`},
		{`{"a":{"b":"c"}}`, `{"a":{"b":"d","c":null}}`, `{"a":{"b":"d"}}`},
		{`{"a":[{"b":"c"}]}`, `{"a":[1]}`, `{"a":[1]}`},
		{`["a","b"]`, `["c","d"]`, `["c","d"]`},
		{`{"a":"b"}`, `["c"]`, `["c"]`},
		{`{"a":"foo"}`, `null`, `null`},
		{`{"a":"foo"}`, `"bar"`, `"bar"`},
		{`{"e":null}`, `{"a":1}`, `{"e":null,"a":1}`},
		{`[1,2]`, `{"a":"b","c":null}`, `{"a":"b"}`},
		{`{}`, `{"a":{"bb":{"ccc":null}}}`, `{"a":{"bb":{}}}`},
	}

	for _, tc := range tests {
		t.Run(tc.doc+" "+tc.patch, func(t *testing.T) {
			doc := mustDoc(t, tc.doc)
			got, err := MergePatch(doc, mustDoc(t, tc.patch))
			if err != nil {
				t.Fatalf("MergePatch() error = %v", err)
			}
			if want := mustDoc(t, tc.want); !value.Equal(got, want) {
				t.Fatalf("MergePatch() = %s, want %s", mustJSON(t, got), tc.want)
			}
			if !value.Equal(doc, mustDoc(t, tc.doc)) {
				t.Fatalf("MergePatch() modified its input")
			}
		})
	}
}

func TestMergePatchJSON(t *testing.T) {
	got, err := MergePatchJSON([]byte(`{"a":1,"b":{"c":2}}`), []byte(`{"b":{"c":null,"d":"<x>"}}`))
	if err != nil {
		t.Fatalf("MergePatchJSON() error = %v", err)
	}
	if want := `{"a":1,"b":{"d":"<x>"}}`; string(got) != want {
		t.Fatalf("MergePatchJSON() = %s, want %s", got, want)
	}

	_, err = MergePatchJSON([]byte(`{`), []byte(`{}`))
	if !patcherrors.HasCode(err, patcherrors.ErrDocumentDecode) {
		t.Fatalf("MergePatchJSON() error = %v, want %s", err, patcherrors.ErrDocumentDecode)
	}
}

func TestCreateMergePatch(t *testing.T) {
	tests := []struct {
		name     string
		original string
		modified string
		want     string
	}{
		{name: "identical", original: `{"a":1}`, modified: `{"a":1.0}`, want: `{}`},
		{name: "change member", original: `{"a":1,"b":2}`, modified: `{"a":1,"b":3}`, want: `{"b":3}`},
		{name: "delete member", original: `{"a":1,"b":2}`, modified: `{"a":1}`, want: `{"b":null}`},
		{name: "add member", original: `{}`, modified: `{"c":{"d":[1]}}`, want: `{"c":{"d":[1]}}`},
		{name: "nested", original: `{"a":{"b":1,"c":2}}`, modified: `{"a":{"b":1}}`, want: `{"a":{"c":null}}`},
		{name: "array replaced whole", original: `{"a":[1,2]}`, modified: `{"a":[1]}`, want: `{"a":[1]}`},
		{name: "scalar root", original: `{"a":1}`, modified: `"x"`, want: `"x"`},
		{name: "object over scalar", original: `1`, modified: `{"a":{"b":2}}`, want: `{"a":{"b":2}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			original := mustDoc(t, tc.original)
			modified := mustDoc(t, tc.modified)
			got, err := CreateMergePatch(original, modified)
			if err != nil {
				t.Fatalf("CreateMergePatch() error = %v", err)
			}
			if want := mustDoc(t, tc.want); !value.Equal(got, want) {
				t.Fatalf("CreateMergePatch() = %s, want %s", mustJSON(t, got), tc.want)
			}
			merged, err := MergePatch(original, got)
			if err != nil {
				t.Fatalf("MergePatch() error = %v", err)
			}
			if !value.Equal(merged, modified) {
				t.Fatalf("MergePatch(CreateMergePatch()) = %s, want %s", mustJSON(t, merged), tc.modified)
			}
		})
	}
}

func TestCreateMergePatchNullValue(t *testing.T) {
	for _, tc := range []struct {
		original string
		modified string
		path     string
	}{
		{`{"a":1}`, `{"a":null}`, "/a"},
		{`{}`, `{"a":{"b":null}}`, "/a/b"},
		{`{"x":{"y":1}}`, `{"x":{"y":1,"z~":null}}`, "/x/z~0"},
	} {
		_, err := CreateMergePatch(mustDoc(t, tc.original), mustDoc(t, tc.modified))
		op, ok := patcherrors.AsOperation(err)
		if !ok || op.Code != string(patcherrors.ErrMergeNullValue) {
			t.Fatalf("CreateMergePatch(%s, %s) error = %v, want %s", tc.original, tc.modified, err, patcherrors.ErrMergeNullValue)
		}
		if op.Path != tc.path {
			t.Fatalf("CreateMergePatch(%s, %s) path = %q, want %q", tc.original, tc.modified, op.Path, tc.path)
		}
	}
}

func TestCreateMergePatchJSON(t *testing.T) {
	got, err := CreateMergePatchJSON([]byte(`{"a":1,"b":2}`), []byte(`{"a":1,"c":3}`))
	if err != nil {
		t.Fatalf("CreateMergePatchJSON() error = %v", err)
	}
	if want := `{"b":null,"c":3}`; string(got) != want {
		t.Fatalf("CreateMergePatchJSON() = %s, want %s", got, want)
	}
	if _, err := CreateMergePatchJSON([]byte(`{}`), []byte(`nope`)); !patcherrors.HasCode(err, patcherrors.ErrDocumentDecode) {
		t.Fatalf("CreateMergePatchJSON() error = %v, want %s", err, patcherrors.ErrDocumentDecode)
	}
}
