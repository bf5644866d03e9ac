package format

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/parser"
)

func counterUnit() (*ast.CompilationUnit, *ast.Method) {
	cu := ast.NewCompilationUnit("Counter.cs")
	cu.Usings.Add(ast.NewUsing(ast.QualifiedName("System")))
	ns := cu.Members.Add(ast.NewNamespaceDecl(ast.QualifiedName("Demo"))).(*ast.NamespaceDecl)

	cls := ast.NewClass("Counter")
	cls.Mods.Add("public")
	cls.Members.Add(ast.NewField(ast.BuiltinRef("int"), ast.NewVar("count", ast.NewLiteral(ast.LitInt, "0"))))
	cls.Members.Add(ast.NewProperty(ast.BuiltinRef("string"), "Name", ast.NewAccessor("get", nil), ast.NewAccessor("set", nil)))
	cls.Members.Add(ast.NewProperty(ast.BuiltinRef("int"), "Size", ast.NewAccessor("get", nil)))
	body := ast.NewBlock(ast.NewReturn(ast.NewBinary("+", ast.NewName("count"), ast.NewName("step"))))
	m := ast.NewMethod(ast.BuiltinRef("int"), "Next", []*ast.Parameter{ast.NewParameter(ast.BuiltinRef("int"), "step")}, body)
	m = cls.Members.Add(m).(*ast.Method)
	ns.Members.Add(cls)
	return cu, m
}

func TestRenderProgrammatic(t *testing.T) {
	cu, _ := counterUnit()
	want := `using System;

namespace Demo
{
    public class Counter
    {
        int count = 0;

        string Name { get; set; }
        int Size { get; }

        int Next(int step)
        {
            return count + step;
        }
    }
}
`
	assert.Equal(t, want, Render(cu, Source))
}

func TestPropertyBlankLine(t *testing.T) {
	cls := ast.NewClass("C")
	cls.Members.Add(ast.NewMethod(ast.BuiltinRef("void"), "M", nil, ast.NewBlock()))
	cls.Members.Add(ast.NewProperty(ast.BuiltinRef("int"), "A", ast.NewAccessor("get", nil)))
	cls.Members.Add(ast.NewProperty(ast.BuiltinRef("int"), "B", ast.NewAccessor("get", nil)))
	getter := ast.NewAccessor("get", ast.NewBlock(ast.NewReturn(ast.NewLiteral(ast.LitInt, "1"))))
	cls.Members.Add(ast.NewProperty(ast.BuiltinRef("int"), "C", getter))

	want := `class C
{
    void M() { }

    int A { get; }
    int B { get; }

    int C
    {
        get
        {
            return 1;
        }
    }
}`
	assert.Equal(t, want, Render(cls, Source))
}

func TestRenderDescription(t *testing.T) {
	cu, m := counterUnit()
	cls := ast.EnclosingType(m)
	require.NotNil(t, cls)

	tests := []struct {
		name string
		node ast.Node
		want string
	}{
		{"method", m, "int Next(int step)"},
		{"class", cls, "public class Counter"},
		{"field", cls.Members.At(0), "int count"},
		{"property", cls.Members.At(1), "string Name { get; set; }"},
		{"unit", cu, "Counter.cs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.node, Description))
		})
	}
}

func TestRenderDescriptionIgnoresLayout(t *testing.T) {
	cu, err := parser.Parse([]byte("class C {\n  public   int\n    Add( int a ,\n int b ) { return a + b; }\n}\n"))
	require.NoError(t, err)
	cls := cu.Members.At(0).(*ast.TypeDecl)
	assert.Equal(t, "public int Add(int a, int b)", Render(cls.Members.At(0), Description))
	assert.Equal(t, "class C", Render(cls, Description))
}

func TestAlignedEnum(t *testing.T) {
	build := func() *ast.TypeDecl {
		e := ast.NewEnum("Color")
		red := e.Members.Add(ast.NewEnumMember("Red", ast.NewLiteral(ast.LitInt, "1")))
		ast.AddComment(red, ast.PlaceEOL, "// warm")
		green := e.Members.Add(ast.NewEnumMember("Green", ast.NewLiteral(ast.LitInt, "22")))
		ast.AddComment(green, ast.PlaceEOL, "// mid")
		e.Members.Add(ast.NewEnumMember("Blue", nil))
		return e
	}

	plain := "enum Color\n{\n    Red = 1, // warm\n    Green = 22, // mid\n    Blue\n}"
	assert.Equal(t, plain, Pretty(build()))

	aligned := "enum Color\n{\n    Red   = 1,  // warm\n    Green = 22, // mid\n    Blue\n}"
	assert.Equal(t, aligned, Pretty(build(), WithAlignedEnums(true)))
}

func TestAlignedEnumWideNames(t *testing.T) {
	e := ast.NewEnum("Fruit")
	e.Members.Add(ast.NewEnumMember("りんご", ast.NewLiteral(ast.LitInt, "1")))
	e.Members.Add(ast.NewEnumMember("Pear", ast.NewLiteral(ast.LitInt, "2")))
	e.SetFlags(e.Flags() | ast.FormatAligned)

	want := "enum Fruit\n{\n    りんご = 1,\n    Pear   = 2\n}"
	assert.Equal(t, want, Render(e, Source))
}

func TestRenderComments(t *testing.T) {
	cu, m := counterUnit()
	ast.AddComment(m, ast.PlacePrefix, "// Next advances the counter.")
	out := Render(cu, Source)
	assert.Contains(t, out, "        int Size { get; }\n\n        // Next advances the counter.\n        int Next(int step)\n")
}

func TestRenderSingleLineToggle(t *testing.T) {
	ifs := ast.NewIf(ast.NewName("x"), ast.NewReturn(nil), nil)
	assert.Equal(t, "if (x)\n    return;", Render(ifs, Source))

	ast.SetSingleLine(ifs, true)
	assert.Equal(t, "if (x) return;", Render(ifs, Source))
}

func TestRenderNewLines(t *testing.T) {
	blk := ast.NewBlock(ast.NewExprStmt(ast.NewCall(ast.NewName("a"))), ast.NewExprStmt(ast.NewCall(ast.NewName("b"))))
	ast.SetNewLines(blk.Stmts.At(1), 2)
	assert.Equal(t, "{\n    a();\n\n    b();\n}", Render(blk, Source))
}

func TestRenderMessages(t *testing.T) {
	f := ast.NewField(ast.BuiltinRef("int"), ast.NewVar("x", nil))
	ast.AddDiagnostic(f, ast.OriginResolve, ast.SeverityError, "boom")
	assert.Equal(t, "int x;", Render(f, Source))
	assert.Equal(t, "int x; /* error: boom */", Render(f, ShowMessages))
}

func TestRenderAfterEdit(t *testing.T) {
	src := "class C\n{\n    int x;   // keep\n}\n"
	cu, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	cls := cu.Members.At(0).(*ast.TypeDecl)
	cls.Members.Add(ast.NewMethod(ast.BuiltinRef("void"), "Run", nil, ast.NewBlock()))

	want := "class C\n{\n    int x;   // keep\n\n    void Run() { }\n}\n"
	assert.Equal(t, want, Render(cu, Source))
}

func TestPrettyParsed(t *testing.T) {
	cu, err := parser.Parse([]byte("class C{int x;int y;void M(){return;}}"))
	require.NoError(t, err)
	want := "class C\n{\n    int x;\n    int y;\n\n    void M()\n    {\n        return;\n    }\n}\n"
	assert.Equal(t, want, Pretty(cu))
}

func TestEncoders(t *testing.T) {
	cu, err := parser.Parse([]byte("namespace A\n{\n    class B\n    {\n        int F(int x) => x;\n    }\n}\n"), parser.WithFile("b.cs"))
	require.NoError(t, err)

	var buf bytes.Buffer
	enc, err := NewEncoder("line", &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(cu))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "b.cs:1:1\tnamespacedecl\tA\tnamespace A", lines[0])
	assert.Equal(t, "b.cs:3:5\tclass\tA.B\tclass B", lines[1])
	assert.Equal(t, "b.cs:5:9\tmethod\tA.B.F\tint F(int x)", lines[2])

	buf.Reset()
	enc, err = NewEncoder("json", &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(cu))
	assert.Contains(t, buf.String(), `"kind": "Method"`)
	assert.Contains(t, buf.String(), `"name": "F"`)

	buf.Reset()
	enc, err = NewEncoder("source", &buf)
	require.NoError(t, err)
	require.NoError(t, enc.Encode(cu))
	text, err := enc.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(text))

	_, err = NewEncoder("yaml", &buf)
	assert.Error(t, err)
}
