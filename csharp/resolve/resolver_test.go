package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/parser"
	"github.com/dhamidi/codedom/format"
)

func parse(t *testing.T, path, src string, opts ...parser.Option) *ast.CompilationUnit {
	t.Helper()
	cu, err := parser.Parse([]byte(src), append([]parser.Option{parser.WithFile(path)}, opts...)...)
	require.NoError(t, err)
	for _, d := range ast.Diagnostics(cu) {
		require.NotEqual(t, ast.OriginParse, d.Origin(), "unexpected parse error: %s", d)
	}
	return cu
}

// names returns the name nodes written as name, in source order.
func names(root ast.Node, name string) []ast.NameNode {
	var out []ast.NameNode
	ast.Walk(root, func(n ast.Node) bool {
		if nn, ok := n.(ast.NameNode); ok {
			if s, _ := ast.NameOf(nn); s == name {
				out = append(out, nn)
			}
		}
		return true
	})
	return out
}

func target(t *testing.T, n ast.NameNode) ast.Symbol {
	t.Helper()
	ref, ok := n.(*ast.Ref)
	require.True(t, ok, "%s is a %s", describeNode(n), n.Kind())
	return ref.Target
}

func describeNode(n ast.Node) string {
	name, _ := ast.NameOf(n)
	return name + " at " + n.Base().Span.Start.String()
}

func resolveMessages(n ast.Node) []string {
	var out []string
	for _, d := range ast.Diagnostics(n) {
		if d.Origin() == ast.OriginResolve {
			out = append(out, d.Message())
		}
	}
	return out
}

func TestAmbiguousQualifiedName(t *testing.T) {
	cu := parse(t, "a.cs", "namespace A { class C {} }\nnamespace A { class C {} }\nclass D { A.C f; }\n")
	st := Resolve(cu)
	assert.Equal(t, 1, st.Ambiguous)
	assert.Equal(t, 1, st.Resolved)

	cs := names(cu, "C")
	require.Len(t, cs, 1)
	amb, ok := cs[0].(*ast.AmbiguousRef)
	require.True(t, ok, "got %s", cs[0].Kind())
	require.Len(t, amb.Candidates, 2)
	for _, c := range amb.Candidates {
		td, ok := c.(*ast.TypeDecl)
		require.True(t, ok)
		assert.Equal(t, "A.C", td.FullName())
	}
	require.Len(t, ast.Messages(amb), 1)
	assert.Equal(t, ast.SeverityError, ast.Messages(amb)[0].Severity)

	_, isNamespace := target(t, names(cu, "A")[2]).(*ast.Namespace)
	assert.True(t, isNamespace)
}

func TestUnresolvedPersists(t *testing.T) {
	src := "class C\n{\n    Missing<int> m;\n}\n"
	cu := parse(t, "u.cs", src)

	for range 2 {
		st := Resolve(cu)
		assert.Equal(t, 1, st.Unresolved)

		found := names(cu, "Missing")
		require.Len(t, found, 1)
		ur, ok := found[0].(*ast.UnresolvedRef)
		require.True(t, ok)
		assert.Equal(t, "Missing", ur.Name)
		assert.Len(t, ast.Messages(ur), 1)
		assert.Equal(t, 1, ast.TypeArgsOf(ur).Len())
	}
	assert.Equal(t, src, format.Render(cu, format.Source))
}

func TestResolveKeepsRendering(t *testing.T) {
	src := `using System;
namespace App
{
    class Point { public int X; }

    class User
    {
        Point  origin;   // kept
        int M(Point p) { return p . X + origin.X; }
    }
}
`
	cu := parse(t, "r.cs", src)
	Resolve(cu)
	assert.Equal(t, src, format.Render(cu, format.Source))
	for _, n := range names(cu, "Point") {
		assert.IsType(t, &ast.Ref{}, n)
	}
}

func TestDeterministicLookup(t *testing.T) {
	cu := parse(t, "d.cs", "namespace A { class C {} }\nnamespace A { class C {} }\nnamespace A { class E { C c; } }\n")
	r := New()
	use := names(cu, "C")[0]
	first := r.Lookup(use, "C", CategoryType)
	second := r.Lookup(use, "C", CategoryType)
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestCandidateOrderIndependentOfParseOrder(t *testing.T) {
	srcA := "namespace N { class X {} }"
	srcB := "namespace N { class X {} }"
	use := "namespace N { class U { X x; } }"

	paths := func(first, second string, srcFirst, srcSecond string) []string {
		reg := ast.NewRegistry()
		parse(t, first, srcFirst, parser.WithRegistry(reg))
		parse(t, second, srcSecond, parser.WithRegistry(reg))
		cu := parse(t, "use.cs", use, parser.WithRegistry(reg))
		Resolve(cu)
		amb, ok := names(cu, "X")[0].(*ast.AmbiguousRef)
		require.True(t, ok)
		var out []string
		for _, c := range amb.Candidates {
			out = append(out, ast.Root(c.(ast.Node)).(*ast.CompilationUnit).Path)
		}
		return out
	}
	assert.Equal(t, []string{"a.cs", "b.cs"}, paths("a.cs", "b.cs", srcA, srcB))
	assert.Equal(t, []string{"a.cs", "b.cs"}, paths("b.cs", "a.cs", srcB, srcA))
}

func TestLocalBeatsImported(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "outer declaration over inner import",
			src:  "class Widget {}\nnamespace Lib { class Widget {} }\nnamespace App { using Lib; class User { Widget w; } }\n",
			want: "Widget",
		},
		{
			name: "enclosing namespace over import",
			src:  "namespace Lib { class Widget {} }\nnamespace App { using Lib; class Widget {} class User { Widget w; } }\n",
			want: "App.Widget",
		},
		{
			name: "import when nothing is declared",
			src:  "namespace Lib { class Widget {} }\nnamespace App { using Lib; class User { Widget w; } }\n",
			want: "Lib.Widget",
		},
		{
			name: "unit level import",
			src:  "using Lib;\nnamespace Lib { class Widget {} }\nclass User { Widget w; }\n",
			want: "Lib.Widget",
		},
		{
			name: "alias",
			src:  "using W = Lib.Widget;\nnamespace Lib { class Widget {} }\nclass User { W w; }\n",
			want: "Lib.Widget",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cu := parse(t, "l.cs", tt.src)
			Resolve(cu)
			f := fieldType(t, cu, "User")
			td, ok := target(t, f).(*ast.TypeDecl)
			require.True(t, ok)
			assert.Equal(t, tt.want, td.FullName())
		})
	}
}

func TestTwoImportsAreAmbiguous(t *testing.T) {
	cu := parse(t, "i.cs", "using A;\nusing B;\nnamespace A { class T {} }\nnamespace B { class T {} }\nclass User { T t; }\n")
	st := Resolve(cu)
	assert.Equal(t, 1, st.Ambiguous)
	assert.IsType(t, &ast.AmbiguousRef{}, fieldType(t, cu, "User"))
}

// fieldType returns the type name of the first field of the named type.
func fieldType(t *testing.T, cu *ast.CompilationUnit, typeName string) ast.NameNode {
	t.Helper()
	var out ast.NameNode
	ast.Walk(cu, func(n ast.Node) bool {
		if td, ok := n.(*ast.TypeDecl); ok && td.Name == typeName {
			for _, m := range td.Members.Items() {
				if f, ok := m.(*ast.Field); ok && out == nil {
					out = f.Type.(ast.NameNode)
				}
			}
		}
		return out == nil
	})
	require.NotNil(t, out, "no field in %s", typeName)
	return out
}

func TestScopeChain(t *testing.T) {
	src := `class C
{
    int x;
    void M(int p)
    {
        y = 1;
        int y = p;
        x = y;
        foreach (int e in Items()) { x = e; }
        try { } catch (Error err) { x = err.Code; }
    }
    int[] Items() { return null; }
}
class Error { public int Code; }
`
	cu := parse(t, "s.cs", src)
	st := Resolve(cu)
	assert.Equal(t, 1, st.Unresolved)

	ys := names(cu, "y")
	require.Len(t, ys, 2)
	assert.IsType(t, &ast.UnresolvedRef{}, ys[0])
	assert.Equal(t, ast.SymLocal, target(t, ys[1]).SymbolKind())

	assert.Equal(t, ast.SymParameter, target(t, names(cu, "p")[0]).SymbolKind())
	for _, x := range names(cu, "x") {
		assert.Equal(t, ast.SymField, target(t, x).SymbolKind())
	}
	assert.Equal(t, ast.SymLocal, target(t, names(cu, "e")[0]).SymbolKind())
	assert.Equal(t, ast.SymMethod, target(t, names(cu, "Items")[0]).SymbolKind())

	code := target(t, names(cu, "Code")[0])
	assert.Equal(t, "Error.Code", Qualified(code))
}

func TestCategoryFiltering(t *testing.T) {
	src := "class Item {}\nclass C\n{\n    int Item() { return 0; }\n    void M() { Item x; Item(); }\n}\n"
	cu := parse(t, "c.cs", src)
	Resolve(cu)
	items := names(cu, "Item")
	require.Len(t, items, 2)
	assert.Equal(t, ast.SymType, target(t, items[0]).SymbolKind())
	assert.Equal(t, ast.SymMethod, target(t, items[1]).SymbolKind())
}

func TestOverloadArity(t *testing.T) {
	src := "class C\n{\n    void F(int a) { }\n    void F(int a, int b = 0, params int[] rest) { }\n    void G(int a) { }\n    void G(string s) { }\n    void M() { F(); G(1); }\n}\n"
	cu := parse(t, "o.cs", src)
	Resolve(cu)
	// No overload of F takes zero arguments, so both remain candidates.
	assert.IsType(t, &ast.AmbiguousRef{}, names(cu, "F")[0])
	// Arity does not separate G, so the call is ambiguous too.
	assert.IsType(t, &ast.AmbiguousRef{}, names(cu, "G")[0])

	cu = parse(t, "o2.cs", "class C\n{\n    void F() { }\n    void F(int a, int b) { }\n    void M() { F(1, 2); }\n}\n")
	Resolve(cu)
	m, ok := target(t, names(cu, "F")[0]).(*ast.Method)
	require.True(t, ok)
	assert.Equal(t, 2, m.Params.Len())
}

func TestMemberAccess(t *testing.T) {
	src := `class Point
{
    public int X;
    public Point Next() { return this; }
}
class U
{
    void M()
    {
        Point p = new Point();
        var q = p.Next();
        int a = q.X;
        int b = this.Other.X;
    }
    Point Other { get; set; }
}
`
	cu := parse(t, "m.cs", src)
	Resolve(cu)

	next := target(t, names(cu, "Next")[0])
	assert.Equal(t, "Point.Next", Qualified(next))

	xs := names(cu, "X")
	require.Len(t, xs, 2)
	for _, x := range xs {
		assert.Equal(t, "Point.X", Qualified(target(t, x)))
	}
	assert.Equal(t, ast.SymProperty, target(t, names(cu, "Other")[0]).SymbolKind())
}

func TestValueAndInheritedMembers(t *testing.T) {
	src := `class B { protected int n; }
class D : B
{
    int v;
    int V { get { return v + n; } set { v = value; } }
}
`
	cu := parse(t, "v.cs", src)
	st := Resolve(cu)
	assert.Zero(t, st.Unresolved)

	val, ok := target(t, names(cu, "value")[0]).(ValueParam)
	require.True(t, ok)
	assert.Equal(t, "V", val.Property().Name)
	assert.Equal(t, "B.n", Qualified(target(t, names(cu, "n")[0])))
}

func TestPartialTypesMerge(t *testing.T) {
	src := "partial class P { int a; }\npartial class P { int M() { return a; } }\nclass Q { P p; }\n"
	cu := parse(t, "p.cs", src)
	st := Resolve(cu)
	assert.Zero(t, st.Ambiguous)
	assert.Equal(t, ast.SymField, target(t, names(cu, "a")[0]).SymbolKind())
	assert.IsType(t, &ast.Ref{}, names(cu, "P")[0])
}

func TestAttributeSuffix(t *testing.T) {
	cu := parse(t, "at.cs", "class ObsoleteAttribute {}\n[Obsolete] class C {}\n")
	Resolve(cu)
	obs := names(cu, "Obsolete")
	require.Len(t, obs, 1)
	td, ok := target(t, obs[0]).(*ast.TypeDecl)
	require.True(t, ok)
	assert.Equal(t, "ObsoleteAttribute", td.Name)
}

func TestPhases(t *testing.T) {
	src := "class C { T f; void M() { T x; } }\nclass T {}\n"
	cu := parse(t, "ph.cs", src)
	Resolve(cu, WithFlags(Declarations))
	ts := names(cu, "T")
	require.Len(t, ts, 2)
	assert.IsType(t, &ast.Ref{}, ts[0])
	assert.IsType(t, &ast.UnresolvedRef{}, ts[1])
	assert.Empty(t, resolveMessages(cu))

	Resolve(cu, WithFlags(Bodies))
	assert.IsType(t, &ast.Ref{}, names(cu, "T")[1])
}

func TestInvalidateAfterUnitRemoval(t *testing.T) {
	reg := ast.NewRegistry()
	a := parse(t, "a.cs", "namespace N { class Dep {} }", parser.WithRegistry(reg))
	b := parse(t, "b.cs", "namespace N { class User { Dep d; } }", parser.WithRegistry(reg))
	Resolve(b)
	assert.IsType(t, &ast.Ref{}, names(b, "Dep")[0])

	reg.RemoveUnit(a)
	n := Invalidate(b, func(sym ast.Symbol) bool { return DeclaredIn(sym, a) })
	assert.Equal(t, 1, n)
	st := Resolve(b)
	assert.Equal(t, 1, st.Unresolved)
	assert.Len(t, resolveMessages(b), 1)
}

func TestVisibleAndMembers(t *testing.T) {
	src := "namespace N\n{\n    class B { public int Base1; }\n    class C : B\n    {\n        int f;\n        void M(int p) { int local = 0; }\n    }\n}\n"
	cu := parse(t, "vis.cs", src)
	Resolve(cu)
	r := New()

	var body *ast.Block
	ast.Walk(cu, func(n ast.Node) bool {
		if m, ok := n.(*ast.Method); ok {
			body = m.Body
		}
		return body == nil
	})
	require.NotNil(t, body)
	stmt := body.Stmts.At(0)

	var got []string
	for _, sym := range r.Visible(stmt) {
		got = append(got, sym.SymbolName())
	}
	assert.Subset(t, got, []string{"p", "f", "M", "Base1", "B", "C", "N"})
	assert.NotContains(t, got, "local")

	cls := ast.EnclosingType(stmt)
	var members []string
	for _, sym := range r.Members(cls) {
		members = append(members, sym.SymbolName())
	}
	assert.Equal(t, []string{"Base1", "M", "f"}, members)
}
