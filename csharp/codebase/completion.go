package codebase

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/resolve"
	"github.com/dhamidi/codedom/format"
)

type CompletionKind int

const (
	CompletionKindMethod CompletionKind = iota
	CompletionKindField
	CompletionKindClass
	CompletionKindInterface
	CompletionKindStruct
	CompletionKindEnum
	CompletionKindEnumMember
	CompletionKindProperty
	CompletionKindVariable
	CompletionKindNamespace
	CompletionKindTypeParameter
	CompletionKindKeyword
)

type CompletionItem struct {
	Label  string
	Kind   CompletionKind
	Detail string
	// InsertText is a snippet: method arguments are ${n:name} placeholders.
	InsertText string
}

// Text returns the plain text inserted when the item is committed by a
// key press rather than a snippet-aware client.
func (c CompletionItem) Text() string {
	return c.Label
}

// Site describes what is being typed at a caret.
type Site struct {
	Unit   *ast.CompilationUnit
	Offset int
	// Start is where the identifier under the caret begins; Prefix is the
	// text from Start to the caret.
	Start  int
	Prefix string
	// Receiver is the expression left of a '.' before the identifier, nil
	// for a simple name.
	Receiver ast.Expr
	// Scope and Child locate the caret in the tree: it sits inside Scope
	// just before Child, or after everything when Child is nil.
	Scope ast.Node
	Child ast.Node
}

// ExpressionAt reports what identifier or member access is being typed at
// offset in path.
func (c *Codebase) ExpressionAt(path string, offset int) (*Site, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.files[path]
	if f == nil {
		return nil, fmt.Errorf("%s: file not loaded", path)
	}
	return siteAt(f, offset)
}

func siteAt(f *FileInfo, offset int) (*Site, error) {
	if offset < 0 || offset > len(f.Content) {
		return nil, fmt.Errorf("%s: offset %d out of range", f.Path, offset)
	}
	s := &Site{Unit: f.Unit, Offset: offset, Start: identStart(f.Content, offset)}
	s.Prefix = string(f.Content[s.Start:offset])

	if s.Start > 0 && f.Content[s.Start-1] == '.' {
		if d := dotAt(f.Unit, s.Start-1); d != nil {
			s.Receiver = d.X
		}
	}

	at := offset
	if s.Prefix != "" {
		at = s.Start
	}
	n := deepest(f.Unit, at)
	if n == nil {
		n = f.Unit
	}
	if s.Prefix != "" || !hasStatements(n) {
		s.Scope, s.Child = n.Base().Parent(), n
		if s.Scope == nil {
			s.Scope, s.Child = n, nil
		}
		return s, nil
	}
	s.Scope = n
	for _, st := range statements(n) {
		if st.Base().Span.Start.IsValid() && st.Base().Span.Start.Offset >= offset {
			s.Child = st
			break
		}
	}
	return s, nil
}

func hasStatements(n ast.Node) bool {
	switch n.(type) {
	case *ast.Block, *ast.Case, *ast.TypeDecl, *ast.NamespaceDecl, *ast.CompilationUnit:
		return true
	}
	return false
}

// statements returns the statements of a block or switch section, in
// which the caret position decides which locals are declared.
func statements(n ast.Node) []ast.Stmt {
	switch x := n.(type) {
	case *ast.Block:
		return x.Stmts.Items()
	case *ast.Case:
		return x.Stmts.Items()
	}
	return nil
}

func identStart(src []byte, offset int) int {
	i := offset
	for i > 0 {
		r, size := utf8.DecodeLastRune(src[:i])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i -= size
	}
	return i
}

// deepest returns the innermost node whose source span holds offset.
func deepest(root ast.Node, offset int) ast.Node {
	var found ast.Node
	ast.Walk(root, func(n ast.Node) bool {
		sp := n.Base().Span
		if !sp.Start.IsValid() {
			return true
		}
		if offset < sp.Start.Offset || offset >= sp.End.Offset {
			return false
		}
		found = n
		return true
	})
	return found
}

// dotAt returns the member access whose '.' is at offset.
func dotAt(root ast.Node, offset int) *ast.Dot {
	var found *ast.Dot
	ast.Walk(root, func(n ast.Node) bool {
		sp := n.Base().Span
		if sp.Start.IsValid() && (offset < sp.Start.Offset || offset >= sp.End.Offset) {
			return false
		}
		if d, ok := n.(*ast.Dot); ok && !ast.IsNil(d.X) && d.X.Base().Span.End.Offset <= offset {
			found = d
		}
		return true
	})
	return found
}

// CompletionsAt lists the symbols that could complete the identifier at
// offset: members of the receiver after a '.', otherwise every name in
// scope. Items are filtered by the typed prefix and sorted by label.
func (c *Codebase) CompletionsAt(path string, offset int) []CompletionItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f := c.files[path]
	if f == nil {
		return nil
	}
	s, err := siteAt(f, offset)
	if err != nil {
		log.Debugf("completion: %s", err)
		return nil
	}
	return c.completionsLocked(s)
}

func (c *Codebase) completionsLocked(s *Site) []CompletionItem {
	r := resolve.New(resolve.WithRegistry(c.registry))
	var syms []ast.Symbol
	if s.Receiver != nil {
		cont := r.ContainerOf(s.Receiver)
		if cont == nil {
			return nil
		}
		syms = r.Members(cont)
	} else {
		syms = r.VisibleIn(s.Scope, s.Child)
	}

	var items []CompletionItem
	seen := make(map[string]bool)
	prefix := strings.ToLower(s.Prefix)
	for _, sym := range syms {
		members := []ast.Symbol{sym}
		if g, ok := sym.(*ast.NamespaceTypeGroup); ok {
			members = g.Members()
		}
		for _, m := range members {
			if !strings.HasPrefix(strings.ToLower(m.SymbolName()), prefix) {
				continue
			}
			it := itemFor(m)
			k := it.Label + "\x00" + it.Detail
			if seen[k] {
				continue
			}
			seen[k] = true
			items = append(items, it)
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items
}

func itemFor(sym ast.Symbol) CompletionItem {
	name := sym.SymbolName()
	it := CompletionItem{Label: name, InsertText: name}
	switch x := sym.(type) {
	case *ast.Namespace:
		it.Kind = CompletionKindNamespace
		it.Detail = "namespace " + x.FullName()
	case *ast.TypeDecl:
		it.Kind = typeKind(x)
		it.Detail = format.Render(x, format.Description)
	case *ast.Method:
		it.Kind = CompletionKindMethod
		it.Detail = format.Render(x, format.Description)
		it.InsertText = methodInsert(x)
	case *ast.Property:
		it.Kind = CompletionKindProperty
		it.Detail = format.Render(x, format.Description)
	case *ast.EnumMember:
		it.Kind = CompletionKindEnumMember
		it.Detail = resolve.Qualified(x)
	case *ast.VarDeclarator:
		it.Kind = CompletionKindVariable
		if x.SymbolKind() == ast.SymField {
			it.Kind = CompletionKindField
		}
		it.Detail = typed(x.DeclaredType(), name)
	case *ast.Parameter:
		it.Kind = CompletionKindVariable
		it.Detail = typed(x.Type, name)
	case resolve.ValueParam:
		it.Kind = CompletionKindVariable
		if p := x.Property(); p != nil {
			it.Detail = typed(p.Type, name)
		}
	case *ast.TypeParameter:
		it.Kind = CompletionKindTypeParameter
	default:
		it.Kind = CompletionKindKeyword
	}
	return it
}

func typeKind(td *ast.TypeDecl) CompletionKind {
	switch td.Kind() {
	case ast.KindInterface:
		return CompletionKindInterface
	case ast.KindStruct:
		return CompletionKindStruct
	case ast.KindEnum:
		return CompletionKindEnum
	}
	return CompletionKindClass
}

func typed(t ast.Expr, name string) string {
	if ast.IsNil(t) {
		return name
	}
	return format.Render(t, format.Description) + " " + name
}

func methodInsert(m *ast.Method) string {
	params := m.Params.Items()
	if len(params) == 0 {
		return m.Name + "()"
	}
	placeholders := make([]string, len(params))
	for i, p := range params {
		placeholders[i] = "${" + strconv.Itoa(i+1) + ":" + p.Name + "}"
	}
	return m.Name + "(" + strings.Join(placeholders, ", ") + ")"
}

// ApplyEdit replaces the bytes [start, end) of path with text and reloads
// the file.
func (c *Codebase) ApplyEdit(path string, start, end int, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.files[path]
	if f == nil {
		return fmt.Errorf("%s: file not loaded", path)
	}
	if start < 0 || end < start || end > len(f.Content) {
		return fmt.Errorf("%s: edit range [%d,%d) out of range", path, start, end)
	}
	content := make([]byte, 0, len(f.Content)-(end-start)+len(text))
	content = append(content, f.Content[:start]...)
	content = append(content, text...)
	content = append(content, f.Content[end:]...)
	return c.updateFileLocked(path, content)
}
