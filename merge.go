package jsonpatch

import (
	"fmt"

	"github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/pointer"
	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/internal/xiter"
)

// MergePatch applies an RFC 7396 merge patch to doc. Object members of
// patch replace or, when null, delete the matching members of doc; any
// non-object patch replaces doc entirely. doc is not modified.
func MergePatch(doc, patch any) (any, error) {
	target, err := value.Normalize(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	p, err := value.Normalize(patch)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	return mergeInto(target, p), nil
}

func mergeInto(target, patch any) any {
	members, ok := patch.(map[string]any)
	if !ok {
		return patch
	}
	obj, ok := target.(map[string]any)
	if !ok {
		obj = make(map[string]any, len(members))
	}
	for key, v := range members {
		if v == nil {
			delete(obj, key)
			continue
		}
		obj[key] = mergeInto(obj[key], v)
	}
	return obj
}

// MergePatchJSON applies a JSON-encoded merge patch to a JSON document.
func MergePatchJSON(doc, patch []byte) ([]byte, error) {
	d, err := value.DecodeJSON(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentDecode, "", fmt.Errorf("document: %w", err))
	}
	p, err := value.DecodeJSON(patch)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentDecode, "", fmt.Errorf("merge patch: %w", err))
	}
	return marshalDocument(mergeInto(d, p))
}

// CreateMergePatch returns a merge patch that turns original into
// modified. A null member inside an object of modified cannot be
// expressed in a merge patch and yields an ErrMergeNullValue error.
func CreateMergePatch(original, modified any) (any, error) {
	o, err := value.Normalize(original)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	m, err := value.Normalize(modified)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	return createMerge(o, m, nil)
}

// CreateMergePatchJSON is CreateMergePatch over JSON documents.
func CreateMergePatchJSON(original, modified []byte) ([]byte, error) {
	o, err := value.DecodeJSON(original)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentDecode, "", fmt.Errorf("original document: %w", err))
	}
	m, err := value.DecodeJSON(modified)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentDecode, "", fmt.Errorf("modified document: %w", err))
	}
	p, err := createMerge(o, m, nil)
	if err != nil {
		return nil, err
	}
	return marshalDocument(p)
}

func createMerge(original, modified any, path pointer.Pointer) (any, error) {
	mod, ok := modified.(map[string]any)
	if !ok {
		return modified, nil
	}
	orig, ok := original.(map[string]any)
	if !ok {
		// the whole object is written, so nested nulls would read as deletions
		if err := rejectNulls(mod, path); err != nil {
			return nil, err
		}
		return mod, nil
	}

	out := make(map[string]any)
	for key := range xiter.SortedKeysNotIn(orig, mod) {
		out[key] = nil
	}
	for key := range xiter.SortedKeys(mod) {
		mv := mod[key]
		ov, existed := orig[key]
		if existed && value.Equal(ov, mv) {
			continue
		}
		child := path.Append(key)
		if mv == nil {
			return nil, errors.New(errors.ErrMergeNullValue, "null member cannot be expressed in a merge patch", child.String())
		}
		nested, err := createMerge(ov, mv, child)
		if err != nil {
			return nil, err
		}
		out[key] = nested
	}
	return out, nil
}

func rejectNullsIn(v any, path pointer.Pointer) error {
	if obj, ok := v.(map[string]any); ok {
		return rejectNulls(obj, path)
	}
	return nil
}

func rejectNulls(obj map[string]any, path pointer.Pointer) error {
	for key := range xiter.SortedKeys(obj) {
		child := path.Append(key)
		if obj[key] == nil {
			return errors.New(errors.ErrMergeNullValue, "null member cannot be expressed in a merge patch", child.String())
		}
		if err := rejectNullsIn(obj[key], child); err != nil {
			return err
		}
	}
	return nil
}
