package resolve

import (
	"github.com/dhamidi/codedom/csharp/ast"
)

// memberSymbols returns the members of td called name, looking through
// every part of a partial type and then through the base types. Members
// of a derived type hide those of its bases.
func (r *Resolver) memberSymbols(td *ast.TypeDecl, name string, seen map[*ast.TypeDecl]bool) []ast.Symbol {
	if seen == nil {
		seen = make(map[*ast.TypeDecl]bool)
	}
	if seen[td] {
		return nil
	}
	parts := partsOf(td)
	for _, part := range parts {
		seen[part] = true
	}
	var out []ast.Symbol
	for _, part := range parts {
		for _, m := range part.Members.Items() {
			out = append(out, memberNamed(m, name)...)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, base := range r.bases(parts) {
		out = append(out, r.memberSymbols(base, name, seen)...)
	}
	return out
}

// partsOf returns the declarations making up td: all same-kind partial
// declarations registered under its name, or td alone.
func partsOf(td *ast.TypeDecl) []*ast.TypeDecl {
	if !td.IsPartial() || td.Namespace == nil {
		return []*ast.TypeDecl{td}
	}
	var out []*ast.TypeDecl
	for _, sym := range td.Namespace.Lookup(td.Name) {
		if other, ok := sym.(*ast.TypeDecl); ok && other.IsPartial() && other.Kind() == td.Kind() {
			out = append(out, other)
		}
	}
	if len(out) == 0 {
		return []*ast.TypeDecl{td}
	}
	return out
}

// bases returns the declared base types of the given parts that are
// declared in source.
func (r *Resolver) bases(parts []*ast.TypeDecl) []*ast.TypeDecl {
	var out []*ast.TypeDecl
	for _, part := range parts {
		for _, b := range part.Bases.Items() {
			if bt, ok := r.symbolOf(b, CategoryType).(*ast.TypeDecl); ok {
				out = append(out, bt)
			}
		}
	}
	return out
}

// BaseClass returns the first base of td that is a class declared in
// source, or nil.
func (r *Resolver) BaseClass(td *ast.TypeDecl) *ast.TypeDecl {
	for _, b := range r.bases(partsOf(td)) {
		if b.Kind() == ast.KindClass {
			return b
		}
	}
	return nil
}

// membersOf returns what name denotes inside container: a child of a
// namespace or a member of a type.
func (r *Resolver) membersOf(container ast.Symbol, name string) []ast.Symbol {
	switch c := container.(type) {
	case *ast.Namespace:
		return c.Lookup(name)
	case *ast.TypeDecl:
		return r.memberSymbols(c, name, nil)
	}
	return nil
}

// symbolOf returns the single symbol a name expression denotes, resolving
// it on the fly when it has not been bound yet.
func (r *Resolver) symbolOf(e ast.Expr, cat Category) ast.Symbol {
	switch x := e.(type) {
	case *ast.Ref:
		return x.Target
	case *ast.UnresolvedRef:
		if r.depth >= maxDepth {
			return nil
		}
		syms, _ := r.resolveName(x, x.Name, cat, -1)
		return unique(syms)
	case *ast.Dot:
		if ast.IsNil(x.Name) {
			return nil
		}
		return r.symbolOf(x.Name, cat)
	case *ast.Paren:
		return r.symbolOf(x.X, cat)
	case *ast.NullableType:
		return r.symbolOf(x.Elem, cat)
	}
	return nil
}

func unique(syms []ast.Symbol) ast.Symbol {
	if len(syms) == 1 {
		return syms[0]
	}
	return nil
}

// container returns the symbol whose members follow a '.' after x: a
// namespace or type named by x, or the type of the value x computes.
func (r *Resolver) container(x ast.Expr) ast.Symbol {
	if r.depth >= maxDepth {
		return nil
	}
	r.depth++
	defer func() { r.depth-- }()

	switch e := x.(type) {
	case *ast.SelfRef:
		td := ast.EnclosingType(e)
		if td == nil {
			return nil
		}
		if e.Kind() == ast.KindBase {
			return nilIfNone(r.BaseClass(td))
		}
		return td
	case *ast.Paren:
		return r.container(e.X)
	case *ast.Call:
		return r.TypeOf(r.symbolOf(e.Fun, CategoryMethod))
	case *ast.New:
		return r.symbolOf(e.Type, CategoryType)
	case *ast.Cast:
		return r.symbolOf(e.Type, CategoryType)
	case *ast.Literal:
		if e.LitKind == ast.LitString {
			b, _ := ast.LookupBuiltin("string")
			return b
		}
		return nil
	case *ast.Binary:
		if e.Op == "as" {
			return r.symbolOf(e.Y, CategoryType)
		}
		return nil
	}
	switch sym := r.symbolOf(x, CategoryExpression).(type) {
	case nil:
		return nil
	case *ast.Namespace, *ast.TypeDecl:
		return sym
	default:
		return r.TypeOf(sym)
	}
}

func nilIfNone(td *ast.TypeDecl) ast.Symbol {
	if td == nil {
		return nil
	}
	return td
}

// TypeOf returns the declared type of a value symbol: the type of a
// variable, parameter, field or property, the return type of a method,
// the enum of an enum member. The type of a "var" local is taken from
// its initializer.
func (r *Resolver) TypeOf(sym ast.Symbol) ast.Symbol {
	var t ast.Expr
	switch s := sym.(type) {
	case *ast.VarDeclarator:
		t = s.DeclaredType()
		if isVar(t) {
			if s.Init == nil {
				return nil
			}
			return r.container(s.Init)
		}
	case *ast.Parameter:
		t = s.Type
	case *ast.Property:
		t = s.Type
	case *ast.Method:
		t = s.ReturnType
	case *ast.EnumMember:
		if td := ast.EnclosingType(s); td != nil {
			return td
		}
		return nil
	case ValueParam:
		if pr := s.Property(); pr != nil {
			t = pr.Type
		}
	}
	if ast.IsNil(t) {
		return nil
	}
	return r.symbolOf(t, CategoryType)
}

func isVar(t ast.Expr) bool {
	ref, ok := t.(*ast.Ref)
	if !ok {
		return false
	}
	b, ok := ref.Target.(*ast.Builtin)
	return ok && b.Name == "var"
}
