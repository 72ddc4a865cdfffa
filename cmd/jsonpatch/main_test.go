package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formbird/json-patch/internal/value"
	"github.com/formbird/json-patch/pkg/docfmt"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunWithArgsUsageErrors(t *testing.T) {
	t.Setenv(configEnv, "")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no command", args: nil, want: "a command is required"},
		{name: "unknown command", args: []string{"frobnicate"}, want: `unknown command "frobnicate"`},
		{name: "unknown flag", args: []string{"--bogus", "diff"}, want: "unknown flag"},
		{name: "bad color", args: []string{"--color", "sometimes", "check", "x"}, want: "color must be one of"},
		{name: "bad format", args: []string{"--format", "xml", "check", "x"}, want: "unknown document format"},
		{name: "missing args", args: []string{"apply", "doc.json"}, want: "requires exactly 2 file arguments"},
		{name: "digest needs files", args: []string{"digest"}, want: "requires at least one file argument"},
		{name: "negative limit", args: []string{"apply", "--max-ops", "-1", "a", "b"}, want: "max operations must be >= 0"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, "", tc.args...)
			if code != 2 {
				t.Fatalf("exit code = %d, want 2 (stderr %q)", code, stderr)
			}
			if !strings.Contains(stderr, tc.want) {
				t.Fatalf("stderr = %q, want %q", stderr, tc.want)
			}
		})
	}
}

func TestRunWithArgsHelp(t *testing.T) {
	t.Setenv(configEnv, "")
	code, _, stderr := runCLI(t, "", "--help")
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	for _, name := range []string{"diff", "apply", "merge", "check", "digest", "explain"} {
		if !strings.Contains(stderr, name) {
			t.Fatalf("usage does not mention %s:\n%s", name, stderr)
		}
	}
}

func TestRunWithArgsDiff(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", `{"title": "Goodbye!", "tags": ["a", "b"]}`)
	right := writeFile(t, dir, "right.yaml", "title: Hello!\ntags: [a]\n")

	code, stdout, stderr := runCLI(t, "", "diff", left, right)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := `[{"op":"remove","path":"/tags/1"},{"op":"replace","path":"/title","value":"Hello!"}]` + "\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	code, stdout, _ = runCLI(t, "", "diff", "--merge", left, right)
	if code != 0 || stdout != `{"tags":["a"],"title":"Hello!"}`+"\n" {
		t.Fatalf("diff --merge = %d %q", code, stdout)
	}

	code, _, _ = runCLI(t, "", "diff", "--exit-code", left, right)
	if code != 1 {
		t.Fatalf("diff --exit-code on different documents = %d, want 1", code)
	}
	code, stdout, _ = runCLI(t, "", "diff", "--exit-code", left, left)
	if code != 0 || stdout != "[]\n" {
		t.Fatalf("diff --exit-code on equal documents = %d %q", code, stdout)
	}
}

func TestRunWithArgsDiffToFile(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	left := writeFile(t, dir, "left.json", `{"a": 1}`)
	right := writeFile(t, dir, "right.json", `{"a": 2}`)
	out := filepath.Join(dir, "patch.yaml")

	code, stdout, stderr := runCLI(t, "", "diff", "-o", out, left, right)
	if code != 0 || stdout != "" {
		t.Fatalf("diff -o = %d %q %q", code, stdout, stderr)
	}
	code, stdout, stderr = runCLI(t, "", "check", out)
	if code != 0 {
		t.Fatalf("check = %d, stderr = %s", code, stderr)
	}
	if stdout != out+" is valid\n" {
		t.Fatalf("check stdout = %q", stdout)
	}
}

func TestRunWithArgsApply(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a": 1, "list": [1, 2]}`)
	patch := writeFile(t, dir, "patch.yaml", `
- op: test
  path: /a
  value: 1.0
- op: add
  path: /list/-
  value: 3
- op: move
  from: /a
  path: /b
`)
	code, stdout, stderr := runCLI(t, "", "--indent", "  ", "apply", doc, patch)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	want := "{\n  \"b\": 1,\n  \"list\": [\n    1,\n    2,\n    3\n  ]\n}\n"
	if stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	out := filepath.Join(dir, "out.cbor")
	code, _, stderr = runCLI(t, "", "apply", "-o", out, doc, patch)
	if code != 0 {
		t.Fatalf("apply -o exit code = %d, stderr = %s", code, stderr)
	}
	got, err := docfmt.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	wantDoc, err := value.DecodeJSON([]byte(`{"b": 1, "list": [1, 2, 3]}`))
	if err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if !value.Equal(got, wantDoc) {
		t.Fatalf("apply -o wrote %#v", got)
	}
}

func TestRunWithArgsApplyStdin(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	patch := writeFile(t, dir, "patch.json", `[{"op": "replace", "path": "", "value": "whole"}]`)
	code, stdout, stderr := runCLI(t, `{"x": true}`, "apply", "-", patch)
	if code != 0 || stdout != "\"whole\"\n" {
		t.Fatalf("apply from stdin = %d %q %q", code, stdout, stderr)
	}
}

func TestRunWithArgsApplyFailures(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a": 1}`)

	tests := []struct {
		name  string
		patch string
		flags []string
		want  []string
	}{
		{
			name:  "test failed",
			patch: `[{"op": "replace", "path": "/a", "value": 2}, {"op": "test", "path": "/a", "value": 3}]`,
			want:  []string{"test-failed", "operation 1", "fails to apply"},
		},
		{
			name:  "invalid patch",
			patch: `[{"op": "jump", "path": "/a"}, {"op": "add", "path": "x", "value": 1}]`,
			want:  []string{"patch-invalid-op", "pointer-syntax", "is invalid"},
		},
		{
			name:  "operation limit",
			patch: `[{"op": "remove", "path": "/a"}, {"op": "add", "path": "/a", "value": 1}]`,
			flags: []string{"--max-ops", "1"},
			want:  []string{"operation-limit"},
		},
		{
			name:  "missing member",
			patch: `[{"op": "remove", "path": "/zzz"}]`,
			want:  []string{"path-not-found"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			patch := writeFile(t, dir, "patch.json", tc.patch)
			args := append([]string{"apply"}, tc.flags...)
			args = append(args, doc, patch)
			code, stdout, stderr := runCLI(t, "", args...)
			if code != 1 {
				t.Fatalf("exit code = %d, want 1 (stderr %q)", code, stderr)
			}
			if stdout != "" {
				t.Fatalf("stdout = %q, want nothing", stdout)
			}
			for _, want := range tc.want {
				if !strings.Contains(stderr, want) {
					t.Fatalf("stderr = %q, want %q", stderr, want)
				}
			}
		})
	}

	patch := writeFile(t, dir, "lenient.json", `[{"op": "remove", "path": "/zzz"}]`)
	code, stdout, _ := runCLI(t, "", "apply", "--allow-missing-remove", doc, patch)
	if code != 0 || stdout != `{"a":1}`+"\n" {
		t.Fatalf("apply --allow-missing-remove = %d %q", code, stdout)
	}

	code, _, stderr := runCLI(t, "", "apply", filepath.Join(dir, "missing.json"), patch)
	if code != 1 || !strings.Contains(stderr, "missing.json") {
		t.Fatalf("apply with missing document = %d %q", code, stderr)
	}
}

func TestRunWithArgsMerge(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a": "b", "c": {"d": "e", "f": "g"}}`)
	patch := writeFile(t, dir, "patch.json", `{"a": "z", "c": {"f": null}}`)
	want := `{"a":"z","c":{"d":"e"}}` + "\n"

	for _, args := range [][]string{{"merge", doc, patch}, {"apply", "--merge", doc, patch}} {
		code, stdout, stderr := runCLI(t, "", args...)
		if code != 0 || stdout != want {
			t.Fatalf("%v = %d %q %q", args, code, stdout, stderr)
		}
	}
}

func TestRunWithArgsDigest(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"n": 1.0, "list": [true]}`)
	b := writeFile(t, dir, "b.yaml", "list: [true]\nn: 1\n")
	c := writeFile(t, dir, "c.json", `{"n": 2}`)

	code, stdout, stderr := runCLI(t, "", "digest", a, b, c)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	lines := strings.Split(strings.TrimSuffix(stdout, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("digest printed %d lines: %q", len(lines), stdout)
	}
	sum := func(line string) string {
		fields := strings.Fields(line)
		if len(fields) != 2 || len(fields[0]) != 64 {
			t.Fatalf("digest line = %q", line)
		}
		return fields[0]
	}
	if sum(lines[0]) != sum(lines[1]) {
		t.Fatalf("equal documents have different digests:\n%s", stdout)
	}
	if sum(lines[0]) == sum(lines[2]) {
		t.Fatalf("different documents share a digest:\n%s", stdout)
	}
	if !strings.HasSuffix(lines[1], "  "+b) {
		t.Fatalf("digest line = %q, want file name suffix", lines[1])
	}
}

func TestRunWithArgsExplain(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	patch := writeFile(t, dir, "patch.json", `[
		{"op": "add", "path": "/a", "value": {"k": [1, 2]}},
		{"op": "remove", "path": "/b"},
		{"op": "move", "from": "/c", "path": "/d"},
		{"op": "test", "path": "", "value": null}
	]`)

	code, stdout, stderr := runCLI(t, "", "--color", "never", "explain", patch)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	for _, want := range []string{
		`0  add     /a = {"k":[1,2]}`,
		`1  remove  /b`,
		`2  move    /d from /c`,
		`3  test    (root) == null`,
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout = %q, want %q", stdout, want)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("--color never produced escape codes: %q", stdout)
	}

	code, stdout, _ = runCLI(t, "", "--color", "always", "explain", patch)
	if code != 0 || !strings.Contains(stdout, "\x1b[") {
		t.Fatalf("--color always = %d %q", code, stdout)
	}

	left := writeFile(t, dir, "same.json", `{}`)
	code, stdout, _ = runCLI(t, "", "diff", "--explain", left, left)
	if code != 0 || stdout != "no changes\n" {
		t.Fatalf("diff --explain = %d %q", code, stdout)
	}
}

func TestRunWithArgsCheckInvalid(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	patch := writeFile(t, dir, "patch.jsonc", `[
		// missing value
		{"op": "add", "path": "/a"},
	]`)
	code, stdout, stderr := runCLI(t, "", "check", patch)
	if code != 1 || stdout != "" {
		t.Fatalf("check = %d %q", code, stdout)
	}
	if !strings.Contains(stderr, "patch-missing-field") || !strings.Contains(stderr, patch+" is invalid") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestRunWithArgsCheckNotAnArray(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	for name, content := range map[string]string{
		"null.json":   "null",
		"object.json": `{"op": "add", "path": "/a", "value": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			patch := writeFile(t, dir, name, content)
			code, stdout, stderr := runCLI(t, "", "check", patch)
			if code != 1 || stdout != "" {
				t.Fatalf("check = %d %q, want exit 1 and no output", code, stdout)
			}
			if !strings.Contains(stderr, "patch is not a JSON array") || !strings.Contains(stderr, patch+" is invalid") {
				t.Fatalf("stderr = %q", stderr)
			}
		})
	}
}

func TestRunWithArgsCheckUndecodable(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	patch := writeFile(t, dir, "patch.json", `[{"op": "add", "path": "/a"`)
	code, stdout, stderr := runCLI(t, "", "check", patch)
	if code != 1 || stdout != "" {
		t.Fatalf("check = %d %q, want exit 1 and no output", code, stdout)
	}
	if !strings.Contains(stderr, patch+" is invalid") {
		t.Fatalf("stderr = %q, want verdict line", stderr)
	}
	if lines := strings.Split(strings.TrimSpace(stderr), "\n"); len(lines) < 2 {
		t.Fatalf("stderr = %q, want error line before verdict", stderr)
	}
}

func TestRunWithArgsConfig(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"a": 1}`)
	patch := writeFile(t, dir, "patch.json", `[{"op": "add", "path": "/b/c", "value": 2}]`)
	cfg := writeFile(t, dir, "config.yaml", "output_format: yaml\napply:\n  create_missing_parents: true\n")

	t.Setenv(configEnv, cfg)
	code, stdout, stderr := runCLI(t, "", "apply", doc, patch)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if want := "a: 1\nb:\n  c: 2\n"; stdout != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}

	code, stdout, _ = runCLI(t, "", "--output-format", "json", "apply", "--create-missing-parents=false", doc, patch)
	if code != 1 || stdout != "" {
		t.Fatalf("flags did not override config: %d %q", code, stdout)
	}

	bad := writeFile(t, dir, "bad.yaml", "colour: always\n")
	code, _, stderr = runCLI(t, "", "--config", bad, "check", patch)
	if code != 1 || !strings.Contains(stderr, "colour") {
		t.Fatalf("unknown config key = %d %q", code, stderr)
	}
}
