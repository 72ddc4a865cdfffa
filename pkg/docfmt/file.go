package docfmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// Stdio is the file name that selects standard input or output.
const Stdio = "-"

// ErrInputTooLarge is returned when a document exceeds MaxInputSize.
var ErrInputTooLarge = errors.New("document exceeds maximum input size")

// Read decodes one document from r. name is used only for format and
// compression detection and may be empty.
func Read(r io.Reader, name string, opts ...Options) (any, error) {
	o := JoinOptions(opts...)
	br := bufio.NewReader(r)

	compression := o.compression
	if !o.compressionSet {
		compression = DetectCompression(name)
		if compression == None {
			head, err := br.Peek(4)
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read %s: %w", displayName(name), err)
			}
			compression = SniffCompression(head)
		}
	}
	rc, err := NewReader(br, compression)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", displayName(name), err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if o.maxInputSize > 0 {
		src = &limitReader{r: rc, remaining: o.maxInputSize}
	}

	format := o.format
	if !o.formatSet {
		format, _ = DetectFormat(name)
	}
	v, err := Decode(src, format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", displayName(name), err)
	}
	return v, nil
}

// Write encodes v to w. name is used only for format and compression
// detection and may be empty, which selects uncompressed JSON.
func Write(w io.Writer, name string, v any, opts ...Options) error {
	o := JoinOptions(opts...)
	compression := o.compression
	if !o.compressionSet {
		compression = DetectCompression(name)
	}
	format := o.format
	if !o.formatSet {
		format, _ = DetectFormat(name)
	}

	wc, err := NewWriter(w, compression)
	if err != nil {
		return fmt.Errorf("write %s: %w", displayName(name), err)
	}
	if err := Encode(wc, v, format, o); err != nil {
		if closeErr := wc.Close(); closeErr != nil {
			return fmt.Errorf("write %s: %w (close failed: %w)", displayName(name), err, closeErr)
		}
		return fmt.Errorf("write %s: %w", displayName(name), err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("write %s: %w", displayName(name), err)
	}
	return nil
}

// ReadFile decodes the document stored at path; "-" reads standard input.
func ReadFile(path string, opts ...Options) (any, error) {
	if path == Stdio {
		return Read(os.Stdin, "", opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, path, opts...)
}

// WriteFile encodes v into the file at path, replacing its contents;
// "-" writes standard output.
func WriteFile(path string, v any, opts ...Options) error {
	if path == Stdio {
		return Write(os.Stdout, "", v, opts...)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, path, v, opts...); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("%w (close failed: %w)", err, closeErr)
		}
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "input"
	}
	return name
}

type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrInputTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
