package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/codebase"
	"github.com/dhamidi/codedom/csharp/resolve"
)

func newResolveCmd() *cobra.Command {
	var unbound bool

	cmd := &cobra.Command{
		Use:   "resolve [dir|file...]",
		Short: "Print what every name in a codebase is bound to",
		Long: `Load every .cs file below the given directories, resolve names across
all of them and print one line per name:

  path:line:col: name -> Qualified.Target (kind)

Unresolved names print "unresolved"; ambiguous names list every candidate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			cfg, err := codebase.LoadConfig(args[0])
			if err != nil {
				return err
			}
			paths, err := collectPaths(args, cfg)
			if err != nil {
				return err
			}
			root, err := filepath.Abs(cfg.Root(args[0]))
			if err != nil {
				return err
			}
			cb := codebase.New(root, codebase.WithConfig(cfg))
			if err := cb.Load(cmd.Context(), paths); err != nil {
				return err
			}
			for _, p := range cb.Files() {
				printBindings(cmd.OutOrStdout(), root, cb.GetFile(p).Unit, unbound)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unbound, "unbound", false, "only print unresolved and ambiguous names")

	return cmd
}

func printBindings(w io.Writer, base string, cu *ast.CompilationUnit, unbound bool) {
	ast.Walk(cu, func(n ast.Node) bool {
		nn, ok := n.(ast.NameNode)
		if !ok {
			return true
		}
		if _, bound := nn.(*ast.Ref); bound && unbound {
			return true
		}
		pos := n.Base().Span.Start
		name := pos.File
		if rel, err := filepath.Rel(base, name); err == nil && !strings.HasPrefix(rel, "..") {
			name = rel
		}
		fmt.Fprintf(w, "%s:%d:%d: %s\n", name, pos.Line, pos.Column, binding(nn))
		return true
	})
}

// binding describes what nn is bound to.
func binding(nn ast.NameNode) string {
	name, _ := ast.NameOf(nn)
	switch x := nn.(type) {
	case *ast.Ref:
		return fmt.Sprintf("%s -> %s (%s)", name, resolve.Qualified(x.Target), x.Target.SymbolKind())
	case *ast.AmbiguousRef:
		cands := make([]string, len(x.Candidates))
		for i, c := range x.Candidates {
			cands[i] = resolve.Qualified(c)
		}
		return fmt.Sprintf("%s -> ambiguous: %s", name, strings.Join(cands, ", "))
	}
	return name + " -> unresolved"
}
