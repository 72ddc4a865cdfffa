package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	jsonpatch "github.com/formbird/json-patch"
)

const maxExplainValue = 60

type explainStyles struct {
	ops   map[jsonpatch.OpKind]lipgloss.Style
	index lipgloss.Style
	path  lipgloss.Style
	value lipgloss.Style
}

func newExplainStyles(w io.Writer, color bool) explainStyles {
	profile := termenv.Ascii
	if color {
		profile = termenv.ANSI
	}
	// the profile is fixed explicitly so output does not depend on the
	// environment lipgloss would otherwise probe
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	return explainStyles{
		ops: map[jsonpatch.OpKind]lipgloss.Style{
			jsonpatch.OpAdd:     r.NewStyle().Foreground(lipgloss.Color("2")),
			jsonpatch.OpRemove:  r.NewStyle().Foreground(lipgloss.Color("1")),
			jsonpatch.OpReplace: r.NewStyle().Foreground(lipgloss.Color("3")),
			jsonpatch.OpMove:    r.NewStyle().Foreground(lipgloss.Color("4")),
			jsonpatch.OpCopy:    r.NewStyle().Foreground(lipgloss.Color("5")),
			jsonpatch.OpTest:    r.NewStyle().Foreground(lipgloss.Color("6")),
		},
		index: r.NewStyle().Faint(true),
		path:  r.NewStyle().Bold(true),
		value: r.NewStyle(),
	}
}

// useColor resolves the --color mode against the output stream.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) renderPatch(p jsonpatch.Patch) error {
	if len(p) == 0 {
		return writeln(a.stdout, "no changes")
	}
	styles := newExplainStyles(a.stdout, useColor(a.cfg.Color, a.stdout))
	width := len(fmt.Sprint(len(p) - 1))
	for i, op := range p {
		line := explainLine(styles, width, i, op)
		if err := writeln(a.stdout, line); err != nil {
			return err
		}
	}
	return nil
}

func explainLine(styles explainStyles, width, index int, op jsonpatch.Operation) string {
	var b strings.Builder
	b.WriteString(styles.index.Render(fmt.Sprintf("%*d", width, index)))
	b.WriteString("  ")
	b.WriteString(styles.ops[op.Op].Render(fmt.Sprintf("%-7s", op.Op)))
	b.WriteString(" ")
	b.WriteString(styles.path.Render(displayPointer(op.Path)))
	switch op.Op {
	case jsonpatch.OpMove, jsonpatch.OpCopy:
		b.WriteString(" from ")
		b.WriteString(styles.path.Render(displayPointer(op.From)))
	case jsonpatch.OpAdd, jsonpatch.OpReplace:
		b.WriteString(" = ")
		b.WriteString(styles.value.Render(summarize(op.Value)))
	case jsonpatch.OpTest:
		b.WriteString(" == ")
		b.WriteString(styles.value.Render(summarize(op.Value)))
	}
	return b.String()
}

func displayPointer(p string) string {
	if p == "" {
		return "(root)"
	}
	return p
}

func summarize(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%T>", v)
	}
	s := string(data)
	if len(s) > maxExplainValue {
		return s[:maxExplainValue-3] + "..."
	}
	return s
}
