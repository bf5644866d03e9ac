package resolve

import (
	"sort"

	"github.com/dhamidi/codedom/csharp/ast"
)

// Visible returns every symbol a simple name could bind to at from,
// innermost first. An inner declaration hides outer ones of the same name.
func (r *Resolver) Visible(from ast.Node) []ast.Symbol {
	return r.VisibleIn(from.Base().Parent(), from)
}

// VisibleIn is Visible for a position inside scope just before child. A
// nil child stands for the end of scope, after all of its statements.
func (r *Resolver) VisibleIn(scope, child ast.Node) []ast.Symbol {
	var out []ast.Symbol
	seen := make(map[string]bool)
	add := func(syms ...ast.Symbol) {
		for _, sym := range syms {
			if sym == nil || sym.SymbolName() == "" || seen[sym.SymbolName()] {
				continue
			}
			seen[sym.SymbolName()] = true
			out = append(out, sym)
		}
	}

	start := scope
	if start == nil {
		start = child
	}
	for ; scope != nil; child, scope = scope, scope.Base().Parent() {
		switch x := scope.(type) {
		case *ast.TypeDecl:
			add(symbols(x.TypeParams.Items())...)
			if seesMembers(x, child) {
				add(r.Members(x)...)
			}
		case *ast.NamespaceDecl:
			for i := len(x.Namespaces) - 1; i >= 0; i-- {
				add(x.Namespaces[i].Entries()...)
			}
			add(r.imported(x.Usings.Items())...)
		case *ast.CompilationUnit:
			add(r.imported(x.Usings.Items())...)
		default:
			add(declared(scope, child)...)
		}
	}
	if reg := r.registryFor(start); reg != nil {
		add(reg.Global().Entries()...)
	}
	return out
}

// imported lists what namespace and static imports bring into scope.
func (r *Resolver) imported(usings []*ast.Using) []ast.Symbol {
	var out []ast.Symbol
	for _, u := range usings {
		switch {
		case u.Alias != "":
		case u.Static:
			if td, ok := r.symbolOf(u.Target, CategoryType).(*ast.TypeDecl); ok {
				out = append(out, r.Members(td)...)
			}
		default:
			if ns, ok := r.symbolOf(u.Target, CategoryNamespace).(*ast.Namespace); ok {
				for _, e := range ns.Entries() {
					if _, child := e.(*ast.Namespace); !child {
						out = append(out, expand(e)...)
					}
				}
			}
		}
	}
	return out
}

func expand(e ast.Symbol) []ast.Symbol {
	if g, ok := e.(*ast.NamespaceTypeGroup); ok {
		return g.Members()
	}
	return []ast.Symbol{e}
}

// Members lists the members of a namespace or type sorted by name. The
// members of a type include those inherited from base types declared in
// source, unless a member of the same name hides them.
func (r *Resolver) Members(container ast.Symbol) []ast.Symbol {
	var out []ast.Symbol
	switch c := container.(type) {
	case *ast.Namespace:
		for _, e := range c.Entries() {
			out = append(out, expand(e)...)
		}
	case *ast.TypeDecl:
		names := make(map[string]bool)
		seen := make(map[*ast.TypeDecl]bool)
		queue := []*ast.TypeDecl{c}
		for len(queue) > 0 {
			td := queue[0]
			queue = queue[1:]
			if seen[td] {
				continue
			}
			parts := partsOf(td)
			var level []ast.Symbol
			for _, part := range parts {
				seen[part] = true
				for _, m := range part.Members.Items() {
					level = append(level, declaredBy(m)...)
				}
			}
			for _, sym := range level {
				if !names[sym.SymbolName()] {
					out = append(out, sym)
				}
			}
			for _, sym := range level {
				names[sym.SymbolName()] = true
			}
			queue = append(queue, r.bases(parts)...)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SymbolName() < out[j].SymbolName() })
	return out
}

// declaredBy returns the symbols a type member declares.
func declaredBy(m ast.Node) []ast.Symbol {
	switch x := m.(type) {
	case *ast.Field:
		return symbols(x.Vars.Items())
	case *ast.Constructor:
		return nil
	case ast.Symbol:
		return []ast.Symbol{x}
	}
	return nil
}

// ContainerOf returns the namespace or type whose members may follow a
// '.' after x, or nil when it cannot be determined.
func (r *Resolver) ContainerOf(x ast.Expr) ast.Symbol {
	return r.container(x)
}

// Invalidate turns every reference below root whose target satisfies gone
// back into an unresolved name, so that a later ResolveUnit binds it
// again. It returns the number of names reset.
func Invalidate(root ast.Node, gone func(ast.Symbol) bool) int {
	var stale []ast.NameNode
	ast.Walk(root, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.Ref:
			if gone(x.Target) {
				stale = append(stale, x)
			}
		case *ast.AmbiguousRef:
			for _, c := range x.Candidates {
				if gone(c) {
					stale = append(stale, x)
					break
				}
			}
		}
		return true
	})
	for _, n := range stale {
		name, _ := ast.NameOf(n)
		ast.Rebind(n, ast.NewName(name))
	}
	if len(stale) > 0 {
		log.Debugf("reset %d references", len(stale))
	}
	return len(stale)
}

// DeclaredIn reports whether sym is a declaration inside root.
func DeclaredIn(sym ast.Symbol, root ast.Node) bool {
	switch x := sym.(type) {
	case ast.Node:
		return ast.Root(x) == root
	case ValueParam:
		return ast.Root(x.Accessor) == root
	}
	return false
}
