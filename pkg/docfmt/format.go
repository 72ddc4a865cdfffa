package docfmt

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a document encoding.
type Format uint8

const (
	JSON Format = iota
	JSONC
	YAML
	CBOR
)

// String returns the format name accepted by ParseFormat.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case JSONC:
		return "jsonc"
	case YAML:
		return "yaml"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "jsonc":
		return JSONC, nil
	case "yaml", "yml":
		return YAML, nil
	case "cbor":
		return CBOR, nil
	default:
		return 0, fmt.Errorf("unknown document format: %q", name)
	}
}

// DetectFormat infers the format from a file name. A compression suffix
// is ignored, so "doc.yaml.zst" is YAML. It returns false when the
// extension is not recognized.
func DetectFormat(filename string) (Format, bool) {
	name := filename
	if c := DetectCompression(name); c != None {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSON, true
	case ".jsonc":
		return JSONC, true
	case ".yaml", ".yml":
		return YAML, true
	case ".cbor":
		return CBOR, true
	default:
		return JSON, false
	}
}
