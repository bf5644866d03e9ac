package resolve

import "github.com/dhamidi/codedom/csharp/ast"

// Category narrows the kinds of symbols a name may bind to.
type Category int

const (
	CategoryExpression Category = iota
	CategoryType
	CategoryNamespace
	CategoryNamespaceOrType
	CategoryMethod
	CategoryConstructor
	CategoryAttribute
)

var categoryNames = [...]string{
	CategoryExpression:      "name",
	CategoryType:            "type",
	CategoryNamespace:       "namespace",
	CategoryNamespaceOrType: "namespace or type",
	CategoryMethod:          "method",
	CategoryConstructor:     "constructor",
	CategoryAttribute:       "attribute",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Accepts reports whether sym is an acceptable binding in this category.
func (c Category) Accepts(sym ast.Symbol) bool {
	k := sym.SymbolKind()
	switch c {
	case CategoryType, CategoryAttribute:
		return k == ast.SymType || k == ast.SymTypeParameter
	case CategoryNamespace:
		return k == ast.SymNamespace
	case CategoryNamespaceOrType:
		return k == ast.SymNamespace || k == ast.SymType || k == ast.SymTypeParameter
	case CategoryMethod:
		return k == ast.SymMethod
	case CategoryConstructor:
		return k == ast.SymConstructor || k == ast.SymType
	}
	return k != ast.SymGroup
}

// Flags select the resolution phases a Resolver runs.
type Flags uint

const (
	// Declarations covers base lists and member signatures.
	Declarations Flags = 1 << iota
	// Bodies covers statements, initializers and expression bodies.
	Bodies

	AllPhases = Declarations | Bodies
)

func (f Flags) String() string {
	switch f {
	case Declarations:
		return "declarations"
	case Bodies:
		return "bodies"
	case AllPhases:
		return "all"
	}
	return "none"
}

// phaseOf tells whether a name sits in a declaration or in a body.
func phaseOf(n ast.Node) Flags {
	child := n
	for p := n.Base().Parent(); p != nil; child, p = p, p.Base().Parent() {
		switch x := p.(type) {
		case *ast.Block, *ast.Lambda, *ast.VarDeclarator, *ast.EnumMember, *ast.Accessor:
			return Bodies
		case *ast.Method:
			if child == ast.Node(x.Arrow) {
				return Bodies
			}
			return Declarations
		case *ast.Constructor:
			if child == ast.Node(x.Arrow) || child == ast.Node(x.Initializer) {
				return Bodies
			}
			return Declarations
		case *ast.Property:
			if child == ast.Node(x.Arrow) || child == ast.Node(x.Init) {
				return Bodies
			}
			return Declarations
		case *ast.Parameter:
			if child == ast.Node(x.Default) {
				return Bodies
			}
		case *ast.Attribute, *ast.Field, *ast.TypeDecl, *ast.Using, *ast.NamespaceDecl, *ast.CompilationUnit:
			return Declarations
		}
	}
	return Declarations
}

// contextOf derives the category a name is looked up in from the slot it
// occupies, plus the argument count when it is called.
func contextOf(e ast.Expr) (Category, int) {
	p := e.Base().Parent()
	is := func(field ast.Node) bool { return !ast.IsNil(field) && field == ast.Node(e) }
	switch x := p.(type) {
	case *ast.Dot:
		if is(x.Name) {
			return contextOf(x)
		}
		switch cat, _ := contextOf(x); cat {
		case CategoryType, CategoryNamespace, CategoryNamespaceOrType, CategoryAttribute:
			return CategoryNamespaceOrType, -1
		}
	case *ast.Call:
		if is(x.Fun) {
			if _, ok := x.Base().Parent().(*ast.Attribute); ok {
				return CategoryAttribute, -1
			}
			return CategoryMethod, x.Args.Len()
		}
	case *ast.Attribute:
		return CategoryAttribute, -1
	case ast.NameNode, *ast.TypeDecl, *ast.Field, *ast.LocalDecl, *ast.NullableType:
		return CategoryType, -1
	case *ast.Property:
		if is(x.Type) {
			return CategoryType, -1
		}
	case *ast.ArrayType:
		if is(x.Elem) {
			return CategoryType, -1
		}
	case *ast.Catch:
		if is(x.Type) {
			return CategoryType, -1
		}
	case *ast.ForEach:
		if is(x.VarType) {
			return CategoryType, -1
		}
	case *ast.Method:
		if is(x.ReturnType) {
			return CategoryType, -1
		}
	case *ast.Parameter:
		if is(x.Type) {
			return CategoryType, -1
		}
	case *ast.Cast:
		if is(x.Type) {
			return CategoryType, -1
		}
	case *ast.New:
		if is(x.Type) {
			return CategoryType, -1
		}
	case *ast.Binary:
		if (x.Op == "is" || x.Op == "as") && is(x.Y) {
			return CategoryType, -1
		}
	case *ast.Unrecognized:
		switch x.Base().Parent().(type) {
		case *ast.TypeDecl, *ast.Method:
			return CategoryType, -1
		}
	case *ast.Using:
		if x.Alias != "" || x.Static {
			return CategoryNamespaceOrType, -1
		}
		return CategoryNamespace, -1
	case *ast.NamespaceDecl:
		return CategoryNamespace, -1
	}
	return CategoryExpression, -1
}
