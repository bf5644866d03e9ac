package codebase

import (
	"fmt"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/parser"
	"github.com/dhamidi/codedom/csharp/resolve"
	"github.com/dhamidi/codedom/format"
)

// SymbolAt returns the symbol the name at offset in path is bound to,
// together with the name node. Unresolved and ambiguous names yield a nil
// symbol. On the name of a declaration it returns the declaration.
func (c *Codebase) SymbolAt(path string, offset int) (ast.Symbol, ast.NameNode) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.files[path]
	if f == nil {
		return nil, nil
	}
	switch x := deepest(f.Unit, offset).(type) {
	case *ast.Ref:
		return x.Target, x
	case ast.NameNode:
		return nil, x
	case ast.Symbol:
		return x, nil
	}
	return nil, nil
}

// Describe returns a one-line description of sym for hovers and listings.
func Describe(sym ast.Symbol) string {
	switch x := sym.(type) {
	case *ast.Namespace:
		return "namespace " + x.FullName()
	case *ast.Builtin:
		return x.Name
	case *ast.VarDeclarator:
		if x.SymbolKind() == ast.SymField {
			return typed(x.DeclaredType(), resolve.Qualified(x))
		}
		return typed(x.DeclaredType(), x.Name)
	case *ast.Parameter:
		return typed(x.Type, x.Name)
	case resolve.ValueParam:
		if p := x.Property(); p != nil {
			return typed(p.Type, "value")
		}
	case ast.Node:
		return format.Render(x, format.Description)
	}
	return sym.SymbolName()
}

// Declaration returns where sym is declared. ok is false for symbols
// without a source location, such as namespaces and predefined types.
func Declaration(sym ast.Symbol) (span ast.Span, ok bool) {
	var n ast.Node
	switch x := sym.(type) {
	case resolve.ValueParam:
		n = x.Accessor
	case ast.Node:
		n = x
	}
	if n == nil || !n.Base().Span.Start.IsValid() {
		return ast.Span{}, false
	}
	return n.Base().Span, true
}

// Format returns the pretty-printed content of path using the configured
// indentation. The loaded tree is left untouched.
func (c *Codebase) Format(path string) (string, error) {
	f := c.GetFile(path)
	if f == nil {
		return "", fmt.Errorf("%s: file not loaded", path)
	}
	return FormatSource(f.Content, path, c.config)
}

// FormatSource parses src on its own and pretty-prints it.
func FormatSource(src []byte, path string, cfg Config) (string, error) {
	cu, err := parser.Parse(src, parser.WithFile(path))
	if err != nil {
		return "", err
	}
	for _, d := range ast.Diagnostics(cu) {
		if d.Severity() == ast.SeverityError {
			return "", fmt.Errorf("%s: %s", d.Pos(), d.Message())
		}
	}
	return format.Pretty(cu, cfg.FormatOptions()...), nil
}
