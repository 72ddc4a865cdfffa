package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/formbird/json-patch/pkg/docfmt"
)

// configEnv names the environment variable holding the config file path.
const configEnv = "JSONPATCH_CONFIG"

// Config holds settings shared by every subcommand. Command-line flags
// override values loaded from a file.
type Config struct {
	Format       string      `yaml:"format"`
	OutputFormat string      `yaml:"output_format"`
	Indent       string      `yaml:"indent"`
	Color        string      `yaml:"color"`
	Verbose      bool        `yaml:"verbose"`
	MaxInputSize int64       `yaml:"max_input_size"`
	Apply        ApplyConfig `yaml:"apply"`
}

// ApplyConfig mirrors jsonpatch.ApplyOptions.
type ApplyConfig struct {
	MaxOperations        int  `yaml:"max_operations"`
	MaxCopySize          int  `yaml:"max_copy_size"`
	AllowMissingRemove   bool `yaml:"allow_missing_remove"`
	CreateMissingParents bool `yaml:"create_missing_parents"`
}

var colorModes = []string{"auto", "always", "never"}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{Color: "auto"}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	var errs []error
	if c.Format != "" {
		if _, err := docfmt.ParseFormat(c.Format); err != nil {
			errs = append(errs, fmt.Errorf("format: %w", err))
		}
	}
	if c.OutputFormat != "" {
		if _, err := docfmt.ParseFormat(c.OutputFormat); err != nil {
			errs = append(errs, fmt.Errorf("output_format: %w", err))
		}
	}
	if !slices.Contains(colorModes, c.Color) {
		errs = append(errs, fmt.Errorf("color must be one of: %v", colorModes))
	}
	if c.MaxInputSize < 0 {
		errs = append(errs, fmt.Errorf("max_input_size must be >= 0, got %d", c.MaxInputSize))
	}
	if c.Apply.MaxOperations < 0 {
		errs = append(errs, fmt.Errorf("apply.max_operations must be >= 0, got %d", c.Apply.MaxOperations))
	}
	if c.Apply.MaxCopySize < 0 {
		errs = append(errs, fmt.Errorf("apply.max_copy_size must be >= 0, got %d", c.Apply.MaxCopySize))
	}
	return errors.Join(errs...)
}

func (c Config) inputOptions() []docfmt.Options {
	var opts []docfmt.Options
	if c.Format != "" {
		f, _ := docfmt.ParseFormat(c.Format)
		opts = append(opts, docfmt.WithFormat(f))
	}
	if c.MaxInputSize > 0 {
		opts = append(opts, docfmt.MaxInputSize(c.MaxInputSize))
	}
	return opts
}

// outputOptions selects the output encoding. Without an explicit output
// format, stdout gets JSON and files are detected from their name.
func (c Config) outputOptions(toStdout bool) []docfmt.Options {
	opts := []docfmt.Options{docfmt.WithIndent(c.Indent)}
	switch {
	case c.OutputFormat != "":
		f, _ := docfmt.ParseFormat(c.OutputFormat)
		opts = append(opts, docfmt.WithFormat(f))
	case toStdout:
		opts = append(opts, docfmt.WithFormat(docfmt.JSON))
	}
	return opts
}
