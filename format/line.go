package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/codedom/csharp/ast"
)

// LineEncoder writes one tab separated line per declaration:
// position, kind, qualified name and one-line description.
type LineEncoder struct {
	w    io.Writer
	node ast.Node
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(n ast.Node) error {
	e.node = n
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	desc := NewPrinter(Description)
	ast.Walk(e.node, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Using, *ast.NamespaceDecl, *ast.TypeDecl, *ast.EnumMember,
			*ast.Field, *ast.Property, *ast.Method, *ast.Constructor:
		case *ast.CompilationUnit:
			return true
		default:
			return false
		}
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\n",
			n.Base().Span.Start,
			strings.ToLower(n.Kind().String()),
			qualifiedName(n),
			desc.Render(n),
		)
		return true
	})
	return []byte(sb.String()), nil
}

// qualifiedName joins the names of n and its enclosing namespaces and
// types with dots.
func qualifiedName(n ast.Node) string {
	if u, ok := n.(*ast.Using); ok {
		name, _ := ast.DottedName(u.Target)
		return name
	}
	var parts []string
	for c := n; c != nil; c = c.Base().Parent() {
		switch x := c.(type) {
		case *ast.TypeDecl:
			parts = append(parts, x.Name)
		case *ast.NamespaceDecl:
			if name, ok := ast.DottedName(x.Name); ok {
				parts = append(parts, name)
			}
		case *ast.Field:
			var names []string
			for _, v := range x.Vars.Items() {
				names = append(names, v.Name)
			}
			parts = append(parts, strings.Join(names, ","))
		case ast.Symbol:
			parts = append(parts, x.SymbolName())
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}
