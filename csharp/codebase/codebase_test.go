package codebase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/codedom/csharp/ast"
)

const widgetSrc = `namespace Lib
{
    public class Widget
    {
        public int Size;
        public int Grow(int by) { return Size + by; }
    }
}
`

const mainSrc = `using Lib;

namespace App
{
    class Main
    {
        Widget w;

        void Run()
        {
            int before = 1;
            w.Grow(before);
            int after = 2;
        }
    }
}
`

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// load writes files below a fresh directory and loads them.
func load(t *testing.T, files map[string]string) (*Codebase, string) {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, files)
	c := New(dir)
	require.NoError(t, c.ScanAll(context.Background()))
	return c, dir
}

func resolveFindings(c *Codebase, path string) []string {
	var out []string
	for _, d := range c.Diagnostics(path) {
		if d.Origin() == ast.OriginResolve {
			out = append(out, d.Message())
		}
	}
	return out
}

func nameNodes(root ast.Node, name string) []ast.NameNode {
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

func TestLoadResolvesAcrossFiles(t *testing.T) {
	c, dir := load(t, map[string]string{"lib/widget.cs": widgetSrc, "app/main.cs": mainSrc})
	a, b := filepath.Join(dir, "lib", "widget.cs"), filepath.Join(dir, "app", "main.cs")

	assert.Equal(t, []string{b, a}, c.Files())
	assert.Empty(t, resolveFindings(c, a))
	assert.Empty(t, resolveFindings(c, b))

	widgets := nameNodes(c.GetFile(b).Unit, "Widget")
	require.Len(t, widgets, 1)
	ref, ok := widgets[0].(*ast.Ref)
	require.True(t, ok, "Widget is a %s", widgets[0].Kind())
	span, ok := Declaration(ref.Target)
	require.True(t, ok)
	assert.Equal(t, a, span.Start.File)

	found := c.FindType("Lib.Widget")
	require.Len(t, found, 1)
	assert.Same(t, ref.Target, ast.Symbol(found[0]))
}

func TestRemoveFileLeavesUnresolvedNames(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	a, b := filepath.Join(dir, "widget.cs"), filepath.Join(dir, "main.cs")

	c.RemoveFile(a)
	assert.Nil(t, c.GetFile(a))
	if ns := c.Registry().Lookup("Lib"); ns != nil {
		assert.Nil(t, ns.Entry("Widget"))
	}

	msgs := resolveFindings(c, b)
	require.NotEmpty(t, msgs)
	assert.Contains(t, strings.Join(msgs, "\n"), `"Widget"`)
	for _, w := range nameNodes(c.GetFile(b).Unit, "Widget") {
		assert.IsType(t, &ast.UnresolvedRef{}, w)
	}

	require.NoError(t, c.ScanFile(a))
	assert.Empty(t, resolveFindings(c, b))
}

func TestSecondDeclarationMakesNameAmbiguous(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	extra := filepath.Join(dir, "extra.cs")

	require.NoError(t, c.UpdateFile(extra, []byte("namespace Lib { class Widget {} }\n")))
	widgets := nameNodes(c.GetFile(b).Unit, "Widget")
	require.Len(t, widgets, 1)
	amb, ok := widgets[0].(*ast.AmbiguousRef)
	require.True(t, ok, "Widget is a %s", widgets[0].Kind())
	assert.Len(t, amb.Candidates, 2)

	c.RemoveFile(extra)
	widgets = nameNodes(c.GetFile(b).Unit, "Widget")
	assert.IsType(t, &ast.Ref{}, widgets[0])
	assert.Empty(t, resolveFindings(c, b))
}

func TestUpdateWithSameContentKeepsTree(t *testing.T) {
	c, dir := load(t, map[string]string{"main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	before := c.GetFile(b)
	require.NoError(t, c.UpdateFile(b, []byte(mainSrc)))
	assert.Same(t, before, c.GetFile(b))

	require.NoError(t, c.UpdateFile(b, []byte(mainSrc+"\n")))
	assert.NotSame(t, before, c.GetFile(b))
}

func TestLoadCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.cs": "class A {}", "b.cs": "class B {}"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(dir)
	err := c.ScanAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSymbolAtAndDescribe(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")

	sym, name := c.SymbolAt(b, strings.Index(mainSrc, "Grow(before)"))
	require.NotNil(t, name)
	require.NotNil(t, sym)
	assert.Equal(t, "public int Grow(int by)", Describe(sym))

	sym, _ = c.SymbolAt(b, strings.Index(mainSrc, "before);"))
	require.NotNil(t, sym)
	assert.Equal(t, "int before", Describe(sym))

	sym, name = c.SymbolAt(b, 0)
	assert.Nil(t, sym)
	assert.Nil(t, name)
}

func TestFormatSource(t *testing.T) {
	got, err := FormatSource([]byte("class   C{int x;}"), "c.cs", DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "class C\n{\n    int x;\n}\n", got)

	cfg := DefaultConfig()
	cfg.Format.Indent = 2
	got, err = FormatSource([]byte("class   C{int x;}"), "c.cs", cfg)
	require.NoError(t, err)
	assert.Equal(t, "class C\n{\n  int x;\n}\n", got)

	_, err = FormatSource([]byte("class C { int x = ; }"), "c.cs", cfg)
	assert.Error(t, err)
}
