package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/codebase"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	infoStyle    = color.New(color.FgCyan)
	fileStyle    = color.New(color.Bold)
	caretStyle   = color.New(color.FgGreen, color.Bold)
)

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setColor turns colored output on when mode is "always", or "auto" and
// stdout is a terminal.
func setColor(mode string) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unknown color mode %q (auto, always, never)", mode)
	}
	return nil
}

func severityStyle(s ast.Severity) *color.Color {
	switch s {
	case ast.SeverityError:
		return errorStyle
	case ast.SeverityWarning:
		return warningStyle
	}
	return infoStyle
}

// printReport writes the findings of one file. With src set, each finding
// is followed by its source line and a caret under the column.
func printReport(w io.Writer, base string, r codebase.FileReport, src []byte) {
	name := r.Path
	if rel, err := filepath.Rel(base, r.Path); err == nil && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	for _, f := range r.Findings {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
			fileStyle.Sprint(name), f.Pos.Line, f.Pos.Column,
			severityStyle(f.Severity).Sprint(f.Severity), f.Message)
		if src == nil {
			continue
		}
		line, ok := sourceLine(src, f.Pos.Line)
		if !ok {
			continue
		}
		col := min(max(f.Pos.Column-1, 0), len([]rune(line)))
		pad := runewidth.StringWidth(string([]rune(line)[:col]))
		fmt.Fprintf(w, "    %s\n    %s%s\n", line, strings.Repeat(" ", pad), caretStyle.Sprint("^"))
	}
}

// sourceLine returns line n (1-based) of src with tabs expanded to a
// single space so the caret lines up.
func sourceLine(src []byte, n int) (string, bool) {
	if n < 1 {
		return "", false
	}
	lines := bytes.Split(src, []byte("\n"))
	if n > len(lines) {
		return "", false
	}
	line := strings.TrimRight(string(lines[n-1]), "\r")
	return strings.ReplaceAll(line, "\t", " "), true
}
