package docfmt

// Options holds reader and writer configuration values.
// The zero value means no overrides.
type Options struct {
	indent       string
	maxInputSize int64
	format       Format
	compression  Compression

	indentSet       bool
	maxInputSizeSet bool
	formatSet       bool
	compressionSet  bool
}

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.indentSet {
		opts.indent = src.indent
		opts.indentSet = true
	}
	if src.maxInputSizeSet {
		opts.maxInputSize = src.maxInputSize
		opts.maxInputSizeSet = true
	}
	if src.formatSet {
		opts.format = src.format
		opts.formatSet = true
	}
	if src.compressionSet {
		opts.compression = src.compression
		opts.compressionSet = true
	}
}

// WithFormat fixes the document format instead of detecting it.
func WithFormat(value Format) Options {
	return Options{format: value, formatSet: true}
}

// WithCompression fixes the compression instead of detecting it.
func WithCompression(value Compression) Options {
	return Options{compression: value, compressionSet: true}
}

// WithIndent sets the indentation used by Encode. An empty string
// produces compact JSON. YAML output uses the indent's width, with a
// minimum of two spaces.
func WithIndent(value string) Options {
	return Options{indent: value, indentSet: true}
}

// MaxInputSize limits the decompressed size of a document in bytes.
// Zero or a negative value disables the limit.
func MaxInputSize(value int64) Options {
	return Options{maxInputSize: value, maxInputSizeSet: true}
}
