package jsonpatch

import (
	"bytes"
	"encoding/json"

	"github.com/zeebo/blake3"

	"github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/internal/valuekey"
)

// Equal reports whether two documents are equal under JSON semantics:
// member order is ignored and numbers compare by exact value.
func Equal(a, b any) (bool, error) {
	na, err := value.Normalize(a)
	if err != nil {
		return false, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	nb, err := value.Normalize(b)
	if err != nil {
		return false, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	return value.Equal(na, nb), nil
}

// Digest returns the BLAKE3-256 hash of the canonical encoding of doc.
// Documents that are Equal have identical digests.
func Digest(doc any) ([32]byte, error) {
	v, err := value.Normalize(doc)
	if err != nil {
		return [32]byte{}, errors.Wrap(errors.ErrUnsupportedValue, "", err)
	}
	return blake3.Sum256(valuekey.Encode(v)), nil
}

// marshalDocument encodes a normalized document as compact JSON without HTML escaping.
func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
