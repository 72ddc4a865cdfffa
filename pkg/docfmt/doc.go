// Package docfmt reads and writes JSON documents in the encodings the
// jsonpatch command accepts: JSON, JSON with comments, YAML and CBOR,
// optionally wrapped in zstd, gzip, lz4 or brotli compression.
//
// Decoded documents always use the jsonpatch document model, so a YAML
// file can be diffed against a CBOR file and patched with a JSON patch.
// Formats and compression are taken from explicit options first, then
// from the file name, then from the leading bytes of the input.
package docfmt
