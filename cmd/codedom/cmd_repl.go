package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/codebase"
	"github.com/dhamidi/codedom/csharp/parser"
	"github.com/dhamidi/codedom/csharp/resolve"
	"github.com/dhamidi/codedom/format"
)

const (
	historyFile = ".codedom_history"
	promptMain  = "cs> "
	promptCont  = "... "
)

// declStarts are the first words of input parsed as a compilation unit
// rather than a statement.
var declStarts = []string{"using", "namespace", "class", "struct", "interface", "enum", "public", "internal", "[", "abstract", "sealed", "static"}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse statements and declarations interactively",
		Long: `Read C# statements or declarations line by line and print them back as
parsed, followed by their diagnostics. Input continues on the next line
until brackets are balanced and it does not end with an operator.

Commands:
  :format NAME   switch the output format (source, description, line, json)
  :quit          leave`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := codebase.LoadConfig(".")
			if err != nil {
				return err
			}
			return runRepl(cmd.OutOrStdout(), cfg)
		},
	}
}

func runRepl(out io.Writer, cfg codebase.Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	mode := "source"
	for {
		code, ok := readComplete(ln)
		if !ok {
			fmt.Fprintln(out)
			return nil
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(code, ":") {
			fields := strings.Fields(code)
			switch fields[0] {
			case ":quit", ":q":
				return nil
			case ":format":
				if len(fields) != 2 {
					fmt.Fprintln(out, "usage: :format NAME")
					continue
				}
				if _, err := format.NewEncoder(fields[1], io.Discard); err != nil {
					fmt.Fprintln(out, errorStyle.Sprint(err))
					continue
				}
				mode = fields[1]
			default:
				fmt.Fprintln(out, "unknown command, try :format or :quit")
			}
			continue
		}

		if err := evalInput(out, code, mode, cfg); err != nil {
			fmt.Fprintln(out, errorStyle.Sprint(err))
		}
	}
}

// readComplete reads lines until the parser considers the input complete.
// ok is false at end of input.
func readComplete(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || parser.ParseStatement(strings.NewReader(src)).IsComplete() {
			return src, true
		}
	}
}

// evalInput parses code as a declaration or a statement and prints the
// tree in mode followed by its diagnostics.
func evalInput(out io.Writer, code, mode string, cfg codebase.Config) error {
	var node ast.Node
	if isDeclaration(code) {
		cu, err := parser.Parse([]byte(code), parser.WithFile("<repl>"))
		if err != nil {
			return err
		}
		resolve.Resolve(cu)
		node = cu
	} else {
		n, err := parser.ParseStatement(strings.NewReader(code), parser.WithFile("<repl>")).Finish()
		if err != nil {
			return err
		}
		node = n
	}

	enc, err := format.NewEncoder(mode, out, cfg.FormatOptions()...)
	if err != nil {
		return err
	}
	if err := enc.Encode(node); err != nil {
		return err
	}
	fmt.Fprintln(out)

	r := codebase.FileReport{Path: "<repl>", Findings: codebase.Findings(ast.Diagnostics(node))}
	printReport(out, "", r, []byte(code))
	return nil
}

func isDeclaration(code string) bool {
	for _, w := range declStarts {
		if strings.HasPrefix(code, w) {
			rest := code[len(w):]
			if w == "[" || rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '\n' {
				return true
			}
		}
	}
	return false
}
