package docfmt

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies a stream compression wrapped around a document.
type Compression uint8

const (
	None Compression = iota
	Zstd
	Gzip
	LZ4
	Brotli
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the compression name accepted by ParseCompression.
func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	case LZ4:
		return "lz4"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return None, nil
	case "zstd", "zst":
		return Zstd, nil
	case "gzip", "gz":
		return Gzip, nil
	case "lz4":
		return LZ4, nil
	case "brotli", "br":
		return Brotli, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// DetectCompression infers the compression from a file name suffix.
func DetectCompression(filename string) Compression {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".zst", ".zstd":
		return Zstd
	case ".gz":
		return Gzip
	case ".lz4":
		return LZ4
	case ".br":
		return Brotli
	default:
		return None
	}
}

// SniffCompression recognizes zstd, gzip and lz4 frames by their magic
// bytes. Brotli streams carry no magic number and report None.
func SniffCompression(head []byte) Compression {
	switch {
	case bytes.HasPrefix(head, zstdMagic):
		return Zstd
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, lz4Magic):
		return LZ4
	default:
		return None
	}
}

// NewReader returns a reader that decompresses r.
func NewReader(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case None:
		return io.NopCloser(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return gz, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Brotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

// NewWriter returns a writer that compresses into w. Close flushes the
// compressed stream but does not close w.
func NewWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Brotli:
		return brotli.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported compression: %s", c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
