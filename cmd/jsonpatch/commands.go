package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/pflag"

	jsonpatch "github.com/formbird/json-patch"
	patcherrors "github.com/formbird/json-patch/errors"
	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/pkg/docfmt"
)

func (a *app) flagSet(name, usage string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		_ = writef(a.stderr, "Usage: jsonpatch %s [options] %s\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parseArgs parses command flags and checks the positional argument count.
// A negative want accepts one or more arguments.
func (a *app) parseArgs(fs *pflag.FlagSet, args []string, want int) ([]string, int, bool) {
	if err := fs.Parse(args); err != nil {
		return nil, 2, false
	}
	rest := fs.Args()
	if (want < 0 && len(rest) == 0) || (want >= 0 && len(rest) != want) {
		if want < 0 {
			_ = writef(a.stderr, "error: %s requires at least one file argument\n", fs.Name())
		} else {
			_ = writef(a.stderr, "error: %s requires exactly %d file arguments\n", fs.Name(), want)
		}
		fs.Usage()
		return nil, 2, false
	}
	return rest, 0, true
}

func (a *app) diff(args []string) int {
	fs := a.flagSet("diff", "<left> <right>")
	merge := fs.Bool("merge", false, "print an RFC 7396 merge patch instead of a JSON patch")
	explain := fs.Bool("explain", false, "print a readable listing instead of JSON")
	exitCode := fs.Bool("exit-code", false, "exit with status 1 when the documents differ")
	output := fs.StringP("output", "o", "", "write the patch to a file instead of stdout")
	files, code, ok := a.parseArgs(fs, args, 2)
	if !ok {
		return code
	}

	left, err := a.readDocument(files[0])
	if err != nil {
		return a.fail(err)
	}
	right, err := a.readDocument(files[1])
	if err != nil {
		return a.fail(err)
	}

	differ := 0
	if *exitCode {
		equal, err := jsonpatch.Equal(left, right)
		if err != nil {
			return a.fail(err)
		}
		if !equal {
			differ = 1
		}
	}

	if *merge {
		mp, err := jsonpatch.CreateMergePatch(left, right)
		if err != nil {
			return a.fail(fmt.Errorf("create merge patch: %w", err))
		}
		if err := a.writeDocument(*output, mp); err != nil {
			return a.fail(err)
		}
		return differ
	}

	p, err := jsonpatch.Diff(left, right)
	if err != nil {
		return a.fail(fmt.Errorf("diff: %w", err))
	}
	a.logger.Debugf("diff produced %d operations", len(p))
	if *explain {
		if err := a.renderPatch(p); err != nil {
			return a.fail(err)
		}
		return differ
	}
	doc, err := patchDocument(p)
	if err != nil {
		return a.fail(err)
	}
	if err := a.writeDocument(*output, doc); err != nil {
		return a.fail(err)
	}
	return differ
}

func (a *app) apply(args []string) int {
	fs := a.flagSet("apply", "<document> <patch>")
	merge := fs.Bool("merge", false, "treat <patch> as an RFC 7396 merge patch")
	fs.Int("max-ops", a.cfg.Apply.MaxOperations, "maximum number of operations in the patch (0 means unlimited)")
	fs.Int("max-copy-size", a.cfg.Apply.MaxCopySize, "maximum total size of copied values (0 means unlimited)")
	fs.Bool("allow-missing-remove", a.cfg.Apply.AllowMissingRemove, "ignore removes of absent members and indices")
	fs.Bool("create-missing-parents", a.cfg.Apply.CreateMissingParents, "create absent parent objects for add")
	output := fs.StringP("output", "o", "", "write the result to a file instead of stdout")
	files, code, ok := a.parseArgs(fs, args, 2)
	if !ok {
		return code
	}
	if *merge {
		return a.applyMerge(files[0], files[1], *output)
	}

	maxOps, _ := fs.GetInt("max-ops")
	maxCopy, _ := fs.GetInt("max-copy-size")
	allowMissing, _ := fs.GetBool("allow-missing-remove")
	createParents, _ := fs.GetBool("create-missing-parents")
	opts := jsonpatch.NewApplyOptions().
		WithMaxOperations(maxOps).
		WithMaxCopySize(maxCopy).
		WithAllowMissingRemove(allowMissing).
		WithCreateMissingParents(createParents)
	if err := opts.Validate(); err != nil {
		_ = writef(a.stderr, "error: %v\n", err)
		return 2
	}

	doc, err := a.readDocument(files[0])
	if err != nil {
		return a.fail(err)
	}
	p, err := a.readPatch(files[1])
	if err != nil {
		return a.reportPatch(err, files[1], "is invalid")
	}
	a.logger.Debugf("applying %d operations to %s", len(p), files[0])
	out, err := jsonpatch.ApplyWithOptions(doc, p, opts)
	if err != nil {
		return a.reportPatch(err, files[1], "fails to apply")
	}
	if err := a.writeDocument(*output, out); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) merge(args []string) int {
	fs := a.flagSet("merge", "<document> <merge-patch>")
	output := fs.StringP("output", "o", "", "write the result to a file instead of stdout")
	files, code, ok := a.parseArgs(fs, args, 2)
	if !ok {
		return code
	}
	return a.applyMerge(files[0], files[1], *output)
}

func (a *app) applyMerge(docPath, patchPath, output string) int {
	doc, err := a.readDocument(docPath)
	if err != nil {
		return a.fail(err)
	}
	mp, err := a.readDocument(patchPath)
	if err != nil {
		return a.fail(err)
	}
	out, err := jsonpatch.MergePatch(doc, mp)
	if err != nil {
		return a.fail(fmt.Errorf("merge %s: %w", patchPath, err))
	}
	if err := a.writeDocument(output, out); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) check(args []string) int {
	fs := a.flagSet("check", "<patch>")
	files, code, ok := a.parseArgs(fs, args, 1)
	if !ok {
		return code
	}
	p, err := a.readPatch(files[0])
	if err != nil {
		return a.reportPatch(err, files[0], "is invalid")
	}
	a.logger.Debugf("%s has %d operations", files[0], len(p))
	if err := writef(a.stdout, "%s is valid\n", files[0]); err != nil {
		return 1
	}
	return 0
}

func (a *app) digest(args []string) int {
	fs := a.flagSet("digest", "<document>...")
	files, code, ok := a.parseArgs(fs, args, -1)
	if !ok {
		return code
	}
	status := 0
	for _, path := range files {
		doc, err := a.readDocument(path)
		if err != nil {
			status = a.fail(err)
			continue
		}
		sum, err := jsonpatch.Digest(doc)
		if err != nil {
			status = a.fail(fmt.Errorf("digest %s: %w", path, err))
			continue
		}
		if err := writef(a.stdout, "%s  %s\n", hex.EncodeToString(sum[:]), path); err != nil {
			return 1
		}
	}
	return status
}

func (a *app) explain(args []string) int {
	fs := a.flagSet("explain", "<patch>")
	files, code, ok := a.parseArgs(fs, args, 1)
	if !ok {
		return code
	}
	p, err := a.readPatch(files[0])
	if err != nil {
		return a.reportPatch(err, files[0], "is invalid")
	}
	if err := a.renderPatch(p); err != nil {
		return a.fail(err)
	}
	return 0
}

func (a *app) readDocument(path string) (any, error) {
	opts := a.cfg.inputOptions()
	if path == docfmt.Stdio {
		a.logger.Debug("reading standard input")
		return docfmt.Read(a.stdin, "", opts...)
	}
	a.logger.Debug("reading document", "path", path)
	return docfmt.ReadFile(path, opts...)
}

// readPatch decodes a patch stored in any supported document format.
func (a *app) readPatch(path string) (jsonpatch.Patch, error) {
	doc, err := a.readDocument(path)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("read patch %s: %w", path, err)
	}
	return jsonpatch.DecodePatch(data)
}

func (a *app) writeDocument(path string, v any) error {
	if path == "" || path == docfmt.Stdio {
		return docfmt.Write(a.stdout, "", v, a.cfg.outputOptions(true)...)
	}
	a.logger.Debug("writing document", "path", path)
	return docfmt.WriteFile(path, v, a.cfg.outputOptions(false)...)
}

// patchDocument converts a patch into the document model for encoding.
func patchDocument(p jsonpatch.Patch) (any, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}
	return value.DecodeJSON(data)
}

func (a *app) fail(err error) int {
	a.logger.Error(err.Error())
	return 1
}

// reportPatch lists every operation error carried by err, one per line,
// followed by a summary naming the patch file. Errors that carry no
// operation, such as a patch file that is not valid JSON, print as one line.
func (a *app) reportPatch(err error, path, verdict string) int {
	ops, ok := patcherrors.AsOperations(err)
	if !ok {
		a.logger.Debug("patch error without operations", "path", path)
		if writeErr := writeln(a.stderr, err.Error()); writeErr != nil {
			return 1
		}
	}
	for i := range ops {
		if writeErr := writeln(a.stderr, ops[i].Error()); writeErr != nil {
			return 1
		}
	}
	if writeErr := writef(a.stderr, "%s %s\n", path, verdict); writeErr != nil {
		return 1
	}
	return 1
}
