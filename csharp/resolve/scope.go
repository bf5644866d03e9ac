package resolve

import (
	"golang.org/x/text/unicode/norm"

	"github.com/dhamidi/codedom/csharp/ast"
)

// search is one walk up the scope chain for a single name.
type search struct {
	r       *Resolver
	name    string
	cat     Category
	noUsing bool

	found    []ast.Symbol
	imported []ast.Symbol
}

func sameName(a, b string) bool {
	return a == b || norm.NFC.String(a) == norm.NFC.String(b)
}

func (s *search) accept(syms []ast.Symbol) []ast.Symbol {
	var out []ast.Symbol
	for _, sym := range syms {
		if sym != nil && sameName(sym.SymbolName(), s.name) && s.cat.Accepts(sym) {
			out = append(out, sym)
		}
	}
	return out
}

// local records declarations visible in the current scope and reports
// whether any matched.
func (s *search) local(syms ...ast.Symbol) bool {
	s.found = append(s.found, s.accept(syms)...)
	return len(s.found) > 0
}

// scope searches the symbols scope declares for the use reached through
// child and reports whether the walk can stop.
func (s *search) scope(scope, child ast.Node) bool {
	switch x := scope.(type) {
	case *ast.TypeDecl:
		if s.local(symbols(x.TypeParams.Items())...) {
			return true
		}
		if !seesMembers(x, child) {
			return false
		}
		return s.local(s.r.memberSymbols(x, s.name, nil)...)
	case *ast.NamespaceDecl:
		for i := len(x.Namespaces) - 1; i >= 0; i-- {
			if s.local(x.Namespaces[i].Lookup(s.name)...) {
				return true
			}
		}
		return s.imports(x.Usings.Items())
	case *ast.CompilationUnit:
		return s.imports(x.Usings.Items())
	}
	return s.local(declared(scope, child)...)
}

// seesMembers reports whether a use inside td reached through child sees
// the members of td. Base lists and attributes do not.
func seesMembers(td *ast.TypeDecl, child ast.Node) bool {
	if _, ok := child.(*ast.Attribute); ok {
		return false
	}
	return td.Bases.IndexOf(child) < 0
}

// declared returns the variables, parameters and type parameters that a
// statement or member scope declares for a use reached through child.
func declared(scope, child ast.Node) []ast.Symbol {
	switch x := scope.(type) {
	case *ast.Block:
		return locals(x.Stmts.Items(), child)
	case *ast.Case:
		var syms []ast.Symbol
		if sw, ok := x.Base().Parent().(*ast.Switch); ok {
			for _, c := range sw.Cases.Items() {
				if c == x {
					break
				}
				syms = append(syms, locals(c.Stmts.Items(), nil)...)
			}
		}
		return append(syms, locals(x.Stmts.Items(), child)...)
	case *ast.For:
		if x.Decl != nil && child != ast.Node(x.Decl) {
			return symbols(x.Decl.Vars.Items())
		}
	case *ast.ForEach:
		if x.Var != nil && child != ast.Node(x.Collection) && child != ast.Node(x.VarType) {
			return []ast.Symbol{x.Var}
		}
	case *ast.Catch:
		if x.Var != nil && child != ast.Node(x.Type) {
			return []ast.Symbol{x.Var}
		}
	case *ast.Lambda:
		return symbols(x.Params.Items())
	case *ast.Accessor:
		if x.Keyword == "set" || x.Keyword == "init" {
			return []ast.Symbol{ValueParam{Accessor: x}}
		}
	case *ast.Method:
		return append(symbols(x.TypeParams.Items()), symbols(x.Params.Items())...)
	case *ast.Constructor:
		return symbols(x.Params.Items())
	}
	return nil
}

// imports searches using directives. Aliases count as local
// declarations; namespace and static imports only supply candidates that
// a local declaration further out still overrides.
func (s *search) imports(usings []*ast.Using) bool {
	if s.noUsing {
		return false
	}
	var hits []ast.Symbol
	for _, u := range usings {
		switch {
		case u.Alias != "":
			if !sameName(u.Alias, s.name) {
				continue
			}
			if t := s.r.symbolOf(u.Target, CategoryNamespaceOrType); t != nil && s.cat.Accepts(t) {
				s.found = append(s.found, t)
			}
		case u.Static:
			if td, ok := s.r.symbolOf(u.Target, CategoryType).(*ast.TypeDecl); ok {
				hits = append(hits, s.r.memberSymbols(td, s.name, nil)...)
			}
		default:
			ns, ok := s.r.symbolOf(u.Target, CategoryNamespace).(*ast.Namespace)
			if !ok {
				continue
			}
			for _, sym := range ns.Lookup(s.name) {
				if _, child := sym.(*ast.Namespace); !child {
					hits = append(hits, sym)
				}
			}
		}
	}
	if len(s.found) > 0 {
		return true
	}
	if len(s.imported) == 0 {
		s.imported = s.accept(hits)
	}
	return false
}

// locals returns the variables declared by the statements ahead of stop.
func locals(stmts []ast.Stmt, stop ast.Node) []ast.Symbol {
	var out []ast.Symbol
	for _, st := range stmts {
		if ast.Node(st) == stop {
			break
		}
		if d, ok := st.(*ast.LocalDecl); ok {
			out = append(out, symbols(d.Vars.Items())...)
		}
	}
	return out
}

func symbols[T ast.Symbol](items []T) []ast.Symbol {
	out := make([]ast.Symbol, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// memberNamed returns the symbols a type member declares under name.
// Constructors are left out: inside a type its own name means the type.
func memberNamed(m ast.Node, name string) []ast.Symbol {
	switch x := m.(type) {
	case *ast.Field:
		var out []ast.Symbol
		for _, v := range x.Vars.Items() {
			if sameName(v.Name, name) {
				out = append(out, v)
			}
		}
		return out
	case *ast.Constructor:
		return nil
	case ast.Symbol:
		if sameName(x.SymbolName(), name) {
			return []ast.Symbol{x}
		}
	}
	return nil
}

// ValueParam is the implicit "value" parameter of a set or init accessor.
type ValueParam struct {
	Accessor *ast.Accessor
}

func (v ValueParam) SymbolName() string         { return "value" }
func (v ValueParam) SymbolKind() ast.SymbolKind { return ast.SymParameter }

// Property returns the property owning the accessor.
func (v ValueParam) Property() *ast.Property {
	p, _ := v.Accessor.Base().Parent().(*ast.Property)
	return p
}
