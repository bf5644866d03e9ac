package parser

import (
	"strings"
	"testing"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string, opts ...Option) *ast.CompilationUnit {
	t.Helper()
	cu, err := Parse([]byte(src), append([]Option{WithFile("test.cs")}, opts...)...)
	require.NoError(t, err)
	require.NotNil(t, cu)
	return cu
}

func messages(n ast.Node) []string {
	var out []string
	for _, d := range ast.Diagnostics(n) {
		out = append(out, d.Message())
	}
	return out
}

// methodBody parses stmts as the body of a method and returns the block.
func methodBody(t *testing.T, stmts string) *ast.Block {
	t.Helper()
	cu := parse(t, "class C {\n  void M() {\n"+stmts+"\n  }\n}\n")
	require.Equal(t, 1, cu.Members.Len())
	cls := cu.Members.At(0).(*ast.TypeDecl)
	require.Equal(t, 1, cls.Members.Len())
	m, ok := cls.Members.At(0).(*ast.Method)
	require.True(t, ok, "got %s", cls.Members.At(0).Kind())
	require.NotNil(t, m.Body)
	return m.Body
}

func kinds[T ast.Node](items []T) []ast.Kind {
	out := make([]ast.Kind, len(items))
	for i, n := range items {
		out[i] = n.Kind()
	}
	return out
}

func TestParseNamespaceAndClass(t *testing.T) {
	src := `namespace App.Model
{
    public class Widget : Base, IDisposable
    {
        private int count = 0;
        public string Name { get; set; }
        public Widget(int c) : base() { count = c; }
        public int Next(int step) { return count + step; }
    }
}
`
	cu := parse(t, src)
	assert.Empty(t, messages(cu))
	require.Equal(t, 1, cu.Members.Len())

	ns := cu.Members.At(0).(*ast.NamespaceDecl)
	assert.Equal(t, "App.Model", ns.Namespace.FullName())
	assert.Len(t, ns.Namespaces, 2)

	cls := ns.Members.At(0).(*ast.TypeDecl)
	assert.Equal(t, ast.KindClass, cls.Kind())
	assert.Equal(t, "Widget", cls.Name)
	assert.True(t, cls.Mods.Has("public"))
	assert.Equal(t, 2, cls.Bases.Len())
	assert.Equal(t, []ast.Kind{ast.KindField, ast.KindProperty, ast.KindConstructor, ast.KindMethod},
		kinds(cls.Members.Items()))
	assert.Same(t, ns.Namespace, cls.Namespace)
	assert.Equal(t, "App.Model.Widget", cls.FullName())

	prop := cls.Members.At(1).(*ast.Property)
	assert.Equal(t, "Name", prop.Name)
	assert.Equal(t, []string{"get", "set"}, []string{prop.Accessors.At(0).Keyword, prop.Accessors.At(1).Keyword})

	ctor := cls.Members.At(2).(*ast.Constructor)
	assert.NotNil(t, ctor.Initializer)
	assert.Equal(t, 1, ctor.Params.Len())

	m := cls.Members.At(3).(*ast.Method)
	assert.Equal(t, "Next", m.Name)
	assert.Equal(t, "step", m.Params.At(0).Name)
	require.Equal(t, 1, m.Body.Stmts.Len())
	assert.Equal(t, ast.KindReturn, m.Body.Stmts.At(0).Kind())

	entry := cu.Registry.Lookup("App.Model").Entry("Widget")
	assert.Same(t, cls, entry)
}

func TestParseDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, cu *ast.CompilationUnit)
	}{
		{
			name:  "using directives",
			input: "using System;\nusing static System.Math;\nusing IO = System.IO;\n",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				require.Equal(t, 3, cu.Usings.Len())
				assert.Len(t, cu.Usings.At(0).Namespaces, 1)
				assert.True(t, cu.Usings.At(1).Static)
				assert.Equal(t, "IO", cu.Usings.At(2).Alias)
				assert.NotNil(t, cu.Registry.Lookup("System"))
			},
		},
		{
			name:  "file scoped namespace",
			input: "namespace App;\n\nclass A {}\nclass B {}\n",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				ns := cu.Members.At(0).(*ast.NamespaceDecl)
				assert.True(t, ns.FileScoped)
				assert.Equal(t, 2, ns.Members.Len())
			},
		},
		{
			name:  "enum",
			input: "enum Color { Red = 1, Green, Blue, }\n",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				e := cu.Members.At(0).(*ast.TypeDecl)
				assert.Equal(t, ast.KindEnum, e.Kind())
				require.Equal(t, 3, e.Members.Len())
				red := e.Members.At(0).(*ast.EnumMember)
				assert.Equal(t, "Red", red.Name)
				assert.NotNil(t, red.Value)
			},
		},
		{
			name:  "generic method",
			input: "class C { public T Get<T>(string key) where T : class { return default; } }",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				m := cu.Members.At(0).(*ast.TypeDecl).Members.At(0).(*ast.Method)
				require.Equal(t, 1, m.TypeParams.Len())
				assert.Equal(t, "T", m.TypeParams.At(0).Name)
				assert.NotNil(t, m.Where)
			},
		},
		{
			name:  "generic class with variance",
			input: "interface IProducer<out T> { T Produce(); }",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				i := cu.Members.At(0).(*ast.TypeDecl)
				assert.Equal(t, "out", i.TypeParams.At(0).Variance)
				m := i.Members.At(0).(*ast.Method)
				assert.Nil(t, m.Body)
			},
		},
		{
			name:  "attributes and modifiers",
			input: "[Serializable]\npublic sealed class C {\n  [Obsolete(\"x\")] internal static readonly int A = 1, B;\n}",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				c := cu.Members.At(0).(*ast.TypeDecl)
				assert.Len(t, ast.Attributes(c), 1)
				assert.Equal(t, ast.Modifiers{"public", "sealed"}, c.Mods)
				f := c.Members.At(0).(*ast.Field)
				assert.Len(t, ast.Attributes(f), 1)
				assert.Equal(t, 2, f.Vars.Len())
				assert.True(t, f.Mods.Has("readonly"))
			},
		},
		{
			name:  "expression bodied members",
			input: "class C { int X => 1; int Twice(int v) => v * 2; }",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				c := cu.Members.At(0).(*ast.TypeDecl)
				assert.NotNil(t, c.Members.At(0).(*ast.Property).Arrow)
				assert.NotNil(t, c.Members.At(1).(*ast.Method).Arrow)
			},
		},
		{
			name:  "nested type not registered",
			input: "class Outer { class Inner {} }",
			check: func(t *testing.T, cu *ast.CompilationUnit) {
				outer := cu.Members.At(0).(*ast.TypeDecl)
				inner := outer.Members.At(0).(*ast.TypeDecl)
				assert.Nil(t, inner.Namespace)
				assert.Nil(t, cu.Registry.Global().Entry("Inner"))
				assert.NotNil(t, cu.Registry.Global().Entry("Outer"))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cu := parse(t, tt.input)
			assert.Empty(t, messages(cu))
			tt.check(t, cu)
		})
	}
}

func TestParseStatements(t *testing.T) {
	body := methodBody(t, `
    int x = 1, y;
    if (x > 0) x++; else { y = 2; }
    for (int i = 0; i < 10; i++) { }
    foreach (var item in items) Use(item);
    try { } catch (Exception e) when (e != null) { } finally { }
    switch (x) { case 1: break; default: return; }
    while (true) break;
    do { } while (false);
    ;`)
	assert.Empty(t, messages(body))
	assert.Equal(t, []ast.Kind{
		ast.KindLocalDecl, ast.KindIf, ast.KindFor, ast.KindForEach, ast.KindTry,
		ast.KindSwitch, ast.KindWhile, ast.KindDo, ast.KindEmptyStmt,
	}, kinds(body.Stmts.Items()))

	decl := body.Stmts.At(0).(*ast.LocalDecl)
	assert.Equal(t, 2, decl.Vars.Len())
	ifs := body.Stmts.At(1).(*ast.If)
	assert.NotNil(t, ifs.Else)
	try := body.Stmts.At(4).(*ast.Try)
	assert.Equal(t, 1, try.Catches.Len())
	assert.NotNil(t, try.Finally)
	sw := body.Stmts.At(5).(*ast.Switch)
	assert.Equal(t, 2, sw.Cases.Len())
}

// Fragments are read before anything decides what they are.
func TestUnusedFragmentsClaimed(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.Kind
	}{
		{"Foo bar;", ast.KindLocalDecl},
		{"List<int> xs = new List<int>();", ast.KindLocalDecl},
		{"int[] a = null;", ast.KindLocalDecl},
		{"Foo();", ast.KindExprStmt},
		{"a.b = c;", ast.KindExprStmt},
		{"x = y < z;", ast.KindExprStmt},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			body := methodBody(t, tt.input)
			assert.Empty(t, messages(body))
			require.Equal(t, 1, body.Stmts.Len())
			assert.Equal(t, tt.kind, body.Stmts.At(0).Kind())
		})
	}
}

func TestParsePointPriority(t *testing.T) {
	var order []string
	tbl := DefaultTable()
	tbl.AddParsePoint("unless", 1, func(p *Parser) ast.Node {
		order = append(order, "low")
		s := ast.NewEmptyStmt()
		p.ApplyPending(s, nil)
		p.Take(s, "kw")
		p.terminate(s)
		return s
	}, ast.KindBlock)
	tbl.AddParsePoint("unless", 5, func(p *Parser) ast.Node {
		order = append(order, "high")
		return nil
	}, ast.KindBlock)

	cu := parse(t, "class C { void M() { unless; } }", WithTable(tbl))
	assert.Equal(t, []string{"high", "low"}, order)
	assert.Empty(t, messages(cu))

	order = nil
	parse(t, "class C { void M() { } }")
	assert.Empty(t, order, "the default table is not affected")
}

func TestParsePointRequiresAncestor(t *testing.T) {
	called := 0
	tbl := DefaultTable()
	tbl.AddParsePoint("emit", 0, func(p *Parser) ast.Node {
		called++
		return nil
	}, ast.KindCase)

	parse(t, "class C { void M() { emit(1); } }", WithTable(tbl))
	assert.Equal(t, 0, called)

	parse(t, "class C { void M() { switch (x) { case 1: emit(1); break; } } }", WithTable(tbl))
	assert.Equal(t, 1, called)
}

func TestOrphanClauses(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"catch { }", "'catch' without 'try'"},
		{"finally { }", "'finally' without 'try'"},
		{"else { }", "'else' without 'if'"},
		{"case 1: break;", "'case' outside 'switch'"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			body := methodBody(t, tt.input)
			assert.Equal(t, []string{tt.msg}, messages(body))
			require.GreaterOrEqual(t, body.Stmts.Len(), 1)
			u, ok := body.Stmts.At(0).(*ast.Unrecognized)
			require.True(t, ok)
			assert.Equal(t, 1, u.Parts.Len(), "the clause is kept in the tree")
		})
	}
}

func TestOrphanAccessor(t *testing.T) {
	cu := parse(t, "class C { get { return 1; } }")
	assert.Equal(t, []string{"'get' outside a property"}, messages(cu))
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"missing semicolon", "class C { void M() { Foo() } }", "expected ';'"},
		{"try without clauses", "class C { void M() { try { } } }", "expected 'catch' or 'finally'"},
		{"stray modifier", "class C { public }", "unexpected modifier 'public'"},
		{"dangling attribute", "class C { [Obsolete] }", "attribute without declaration"},
		{"incomplete member", "class C { int }", "incomplete declaration"},
		{"broken generic member", "class C { void M<) { } int y; }", "expected '>'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cu := parse(t, tt.input)
			assert.Contains(t, messages(cu), tt.msg)
			cls := cu.Members.At(0).(*ast.TypeDecl)
			assert.Equal(t, "C", cls.Name)
		})
	}
}

func TestBrokenGenericNameIsNotAField(t *testing.T) {
	cu := parse(t, "class C { void M<) { } int y; }")
	require.NotEmpty(t, ast.Diagnostics(cu))
	cls := cu.Members.At(0).(*ast.TypeDecl)
	for i := 0; i < cls.Members.Len(); i++ {
		if f, ok := cls.Members.At(i).(*ast.Field); ok {
			for j := 0; j < f.Vars.Len(); j++ {
				assert.NotEqual(t, "M", f.Vars.At(j).Name)
			}
		}
	}
}

func TestParseExpression(t *testing.T) {
	n, err := ParseExpression(strings.NewReader("a + b * c")).Finish()
	require.NoError(t, err)
	bin := n.(*ast.Binary)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, "*", bin.Y.(*ast.Binary).Op)

	n, err = ParseExpression(strings.NewReader("x => x.Length > 2 ? a : b")).Finish()
	require.NoError(t, err)
	l := n.(*ast.Lambda)
	assert.False(t, l.Parenthesized)
	assert.Equal(t, ast.KindConditional, l.Body.Kind())
}

func TestParseStatementEntry(t *testing.T) {
	n, err := ParseStatement(strings.NewReader("var total = items.Count;")).Finish()
	require.NoError(t, err)
	d := n.(*ast.LocalDecl)
	assert.Nil(t, d.Parent())
	assert.Equal(t, "total", d.Vars.At(0).Name)
}

func TestSharedRegistry(t *testing.T) {
	reg := ast.NewRegistry()
	a := parse(t, "namespace App { class A {} }", WithRegistry(reg))
	b := parse(t, "namespace App { class B {} }", WithRegistry(reg))
	app := reg.Lookup("App")
	require.NotNil(t, app)
	assert.NotNil(t, app.Entry("A"))
	assert.NotNil(t, app.Entry("B"))

	reg.RemoveUnit(a)
	assert.Nil(t, app.Entry("A"))
	reg.RemoveUnit(b)
	assert.Nil(t, reg.Lookup("App"))
}

func TestIsComplete(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{"x = 1;", true},
		{"if (x) {", false},
		{"a +", false},
		{"}", true},
		{"\"open", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatement(strings.NewReader(tt.input)).IsComplete())
		})
	}
}
