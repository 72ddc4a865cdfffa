package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// app carries the streams and settings shared by subcommands.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	cfg    Config
}

type command struct {
	run     func(a *app, args []string) int
	summary string
}

var commands = map[string]command{
	"diff":    {run: (*app).diff, summary: "print the patch that turns <left> into <right>"},
	"apply":   {run: (*app).apply, summary: "apply <patch> to <document>"},
	"merge":   {run: (*app).merge, summary: "apply the merge patch <patch> to <document>"},
	"check":   {run: (*app).check, summary: "validate the syntax of <patch>"},
	"digest":  {run: (*app).digest, summary: "print a content digest of each document"},
	"explain": {run: (*app).explain, summary: "describe each operation of <patch>"},
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("jsonpatch", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	configPath := fs.String("config", os.Getenv(configEnv), "YAML config file (env "+configEnv+")")
	format := fs.String("format", "", "input format: json, jsonc, yaml or cbor (default: detect)")
	outputFormat := fs.String("output-format", "", "output format (default: json, or detected from the output file name)")
	indent := fs.String("indent", "", "indentation for JSON and YAML output")
	color := fs.String("color", "auto", "colorize explain output: auto, always or never")
	maxInputSize := fs.Int64("max-input-size", 0, "maximum decompressed document size in bytes (0 means unlimited)")
	verbose := fs.BoolP("verbose", "v", false, "log debug information")
	cpuProfilePath := fs.String("cpuprofile", "", "write CPU profile to file")
	memProfilePath := fs.String("memprofile", "", "write memory profile to file")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: jsonpatch [options] <command> [command options] <args>\n\n"),
			writeln(stderr, "Computes and applies JSON Patch (RFC 6902) and JSON Merge Patch (RFC 7396) documents."),
			writeln(stderr),
			writeln(stderr, "Commands:"),
		)
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			usageErr = errors.Join(usageErr, writef(stderr, "  %-8s %s\n", name, commands[name].summary))
		}
		usageErr = errors.Join(usageErr, writeln(stderr), writeln(stderr, "Options:"))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
		cfg = loaded
	}
	if fs.Changed("format") {
		cfg.Format = *format
	}
	if fs.Changed("output-format") {
		cfg.OutputFormat = *outputFormat
	}
	if fs.Changed("indent") {
		cfg.Indent = *indent
	}
	if fs.Changed("color") {
		cfg.Color = *color
	}
	if fs.Changed("max-input-size") {
		cfg.MaxInputSize = *maxInputSize
	}
	if *verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		return 2
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		if err := writeln(stderr, "error: a command is required"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}
	cmd, ok := commands[remaining[0]]
	if !ok {
		if err := writef(stderr, "error: unknown command %q\n", remaining[0]); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	if *cpuProfilePath != "" {
		stopCPUProfile, err := startCPUProfile(*cpuProfilePath)
		if err != nil {
			if writeErr := writef(stderr, "error starting CPU profile: %v\n", err); writeErr != nil {
				return 1
			}
			return 1
		}
		defer func() {
			if err := stopCPUProfile(); err != nil {
				_ = writef(stderr, "error stopping CPU profile: %v\n", err)
			}
		}()
	}

	if *memProfilePath != "" {
		defer func() {
			if err := writeMemProfile(*memProfilePath); err != nil {
				_ = writef(stderr, "error writing memory profile: %v\n", err)
			}
		}()
	}

	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: newLogger(stderr, cfg.Verbose),
		cfg:    cfg,
	}
	if *configPath != "" {
		a.logger.Debug("loaded config", "path", *configPath)
	}
	return cmd.run(a, remaining[1:])
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{Prefix: "jsonpatch", Level: level})
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
