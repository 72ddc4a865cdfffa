// Package jsonpatch computes and applies changes between JSON documents.
//
// Diff produces an RFC 6902 JSON Patch made of add, remove and replace
// operations. Apply executes any RFC 6902 patch, including move, copy
// and test, atomically: the input document is never modified and a
// failed operation leaves no partial result. MergePatch and
// CreateMergePatch implement RFC 7396 JSON Merge Patch.
//
// Documents are passed as ordinary Go values. Values decoded with
// encoding/json (with or without UseNumber), YAML maps, and structs with
// json tags are accepted; results use nil, bool, json.Number, string,
// []any and map[string]any. Numbers compare by exact decimal value, so
// 1, 1.0 and 10e-1 are equal for test operations and for Diff.
//
// Failures are reported as *errors.Operation values (package
// github.com/formbird/json-patch/errors) carrying a stable code, the JSON
// Pointer involved and the index of the failing operation.
package jsonpatch
