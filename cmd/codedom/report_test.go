package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/dhamidi/codedom/csharp/codebase"
)

func TestPrintReport(t *testing.T) {
	color.NoColor = true
	src := []byte("class A\n{\n\tstring s = \"日本\"; int x = ;\n}\n")
	r := codebase.FileReport{
		Path: "/src/a.cs",
		Findings: []codebase.Finding{{
			Pos:      ast.Position{Line: 3, Column: 24},
			Severity: ast.SeverityError,
			Message:  "expected expression",
		}},
	}

	var buf bytes.Buffer
	printReport(&buf, "/src", r, src)
	lines := strings.Split(buf.String(), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "a.cs:3:24: error: expected expression", lines[0])
	assert.Equal(t, "     string s = \"日本\"; int x = ;", lines[1])
	assert.Equal(t, strings.Repeat(" ", 4+25)+"^", lines[2])

	buf.Reset()
	printReport(&buf, "/elsewhere", r, nil)
	assert.Equal(t, "/src/a.cs:3:24: error: expected expression\n", buf.String())
}

func TestSetColor(t *testing.T) {
	defer func(old bool) { color.NoColor = old }(color.NoColor)
	require.NoError(t, setColor("always"))
	assert.False(t, color.NoColor)
	require.NoError(t, setColor("never"))
	assert.True(t, color.NoColor)
	assert.Error(t, setColor("sometimes"))
}

func TestIsDeclaration(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"class A {}", true},
		{"using System;", true},
		{"[Obsolete] class A {}", true},
		{"classes.Add(1);", false},
		{"int x = 1;", false},
		{"public", true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDeclaration(tt.code))
		})
	}
}

func TestCollectPathsAndBindings(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.cs")
	app := filepath.Join(dir, "app.cs")
	require.NoError(t, os.WriteFile(lib, []byte("namespace Lib { class Widget {} }\n"), 0o644))
	require.NoError(t, os.WriteFile(app, []byte("using Lib;\nclass App { Widget w; Gadget g; }\n"), 0o644))

	paths, err := collectPaths([]string{dir, app}, codebase.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{app, lib}, paths)

	cb := codebase.New(dir)
	require.NoError(t, cb.Load(context.Background(), paths))

	var buf bytes.Buffer
	printBindings(&buf, dir, cb.GetFile(app).Unit, false)
	out := buf.String()
	assert.Contains(t, out, "app.cs:2:13: Widget -> Lib.Widget (type)")
	assert.Contains(t, out, "app.cs:2:23: Gadget -> unresolved")

	buf.Reset()
	printBindings(&buf, dir, cb.GetFile(app).Unit, true)
	assert.NotContains(t, buf.String(), "Widget")
	assert.Contains(t, buf.String(), "Gadget -> unresolved")
}
