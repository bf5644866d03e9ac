package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/codedom/csharp/ast"
)

// ASTJSONEncoder writes the tree structure as indented JSON, with spans,
// names and diagnostics. Layout and comments are left out.
type ASTJSONEncoder struct {
	w    io.Writer
	node ast.Node
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node ast.Node) error {
	e.node = node
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(e.node), "", "  ")
}

type astJSONNode struct {
	Kind        string              `json:"kind"`
	Span        *astJSONSpan        `json:"span,omitempty"`
	Name        string              `json:"name,omitempty"`
	Text        string              `json:"text,omitempty"`
	Modifiers   []string            `json:"modifiers,omitempty"`
	Target      string              `json:"target,omitempty"`
	Diagnostics []astJSONDiagnostic `json:"diagnostics,omitempty"`
	Children    []*astJSONNode      `json:"children,omitempty"`
}

type astJSONSpan struct {
	Start astJSONPosition `json:"start"`
	End   astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type astJSONDiagnostic struct {
	Severity string `json:"severity"`
	Origin   string `json:"origin"`
	Message  string `json:"message"`
}

func nodeToJSON(n ast.Node) *astJSONNode {
	if ast.IsNil(n) {
		return nil
	}
	jn := &astJSONNode{
		Kind: n.Kind().String(),
	}

	b := n.Base()
	if b.Span.Start.IsValid() {
		jn.Span = &astJSONSpan{
			Start: astJSONPosition{Line: b.Span.Start.Line, Column: b.Span.Start.Column},
			End:   astJSONPosition{Line: b.Span.End.Line, Column: b.Span.End.Column},
		}
	}

	switch x := n.(type) {
	case ast.Symbol:
		jn.Name = x.SymbolName()
	case ast.NameNode:
		jn.Name, _ = ast.NameOf(x)
	case *ast.Literal:
		jn.Text = x.Text
	case *ast.Binary:
		jn.Text = x.Op
	case *ast.Unary:
		jn.Text = x.Op
	case *ast.Postfix:
		jn.Text = x.Op
	case *ast.Unrecognized:
		jn.Text = Render(x, Description)
	}
	if r, ok := n.(*ast.Ref); ok && r.Target != nil {
		jn.Target = r.Target.SymbolName()
	}
	jn.Modifiers = modifiersOf(n)

	for _, a := range ast.Messages(n) {
		jn.Diagnostics = append(jn.Diagnostics, astJSONDiagnostic{
			Severity: a.Severity.String(),
			Origin:   a.Origin.String(),
			Message:  a.Text,
		})
	}

	for _, child := range n.Children() {
		if c := nodeToJSON(child); c != nil {
			jn.Children = append(jn.Children, c)
		}
	}

	return jn
}

func modifiersOf(n ast.Node) []string {
	switch x := n.(type) {
	case *ast.TypeDecl:
		return x.Mods
	case *ast.Field:
		return x.Mods
	case *ast.Property:
		return x.Mods
	case *ast.Accessor:
		return x.Mods
	case *ast.Method:
		return x.Mods
	case *ast.Constructor:
		return x.Mods
	case *ast.LocalDecl:
		return x.Mods
	case *ast.Lambda:
		return x.Mods
	}
	return nil
}
