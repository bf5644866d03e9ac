package codebase

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/codedom/csharp/ast"
)

func labels(items []CompletionItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestCompletionsAt(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	call := strings.Index(mainSrc, "w.Grow")

	tests := []struct {
		name    string
		offset  int
		want    []string
		include []string
		exclude []string
	}{
		{name: "after dot", offset: call + 2, want: []string{"Grow", "Size"}},
		{name: "member prefix", offset: call + 4, want: []string{"Grow"}},
		{
			name:    "statement start",
			offset:  call,
			include: []string{"before", "w", "Run", "Main", "Widget", "App", "Lib"},
			exclude: []string{"after", "Size"},
		},
		{name: "name prefix", offset: call + 1, want: []string{"Widget", "w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := labels(c.CompletionsAt(b, tt.offset))
			if tt.want != nil {
				assert.Equal(t, tt.want, got)
			}
			for _, l := range tt.include {
				assert.Contains(t, got, l)
			}
			for _, l := range tt.exclude {
				assert.NotContains(t, got, l)
			}
		})
	}
}

func TestCompletionItemDetails(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	items := c.CompletionsAt(b, strings.Index(mainSrc, "w.Grow")+2)
	require.Len(t, items, 2)

	assert.Equal(t, CompletionItem{
		Label:      "Grow",
		Kind:       CompletionKindMethod,
		Detail:     "public int Grow(int by)",
		InsertText: "Grow(${1:by})",
	}, items[0])
	assert.Equal(t, CompletionKindField, items[1].Kind)
	assert.Equal(t, "int Size", items[1].Detail)
}

func TestCompletionAfterIncompleteMemberAccess(t *testing.T) {
	src := "class Point { public int X; public int Y; }\nclass Use { void M() { Point p = new Point(); p.; } }\n"
	c, dir := load(t, map[string]string{"p.cs": src})
	path := filepath.Join(dir, "p.cs")

	offset := strings.Index(src, "p.;") + 2
	site, err := c.ExpressionAt(path, offset)
	require.NoError(t, err)
	require.NotNil(t, site.Receiver)
	name, _ := ast.NameOf(site.Receiver)
	assert.Equal(t, "p", name)
	assert.Equal(t, "", site.Prefix)

	assert.Equal(t, []string{"X", "Y"}, labels(c.CompletionsAt(path, offset)))
}

func TestExpressionAt(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	call := strings.Index(mainSrc, "w.Grow")

	site, err := c.ExpressionAt(b, call+4)
	require.NoError(t, err)
	assert.Equal(t, "Gr", site.Prefix)
	assert.Equal(t, call+2, site.Start)
	require.NotNil(t, site.Receiver)
	name, _ := ast.NameOf(site.Receiver)
	assert.Equal(t, "w", name)

	site, err = c.ExpressionAt(b, call)
	require.NoError(t, err)
	assert.Nil(t, site.Receiver)
	assert.Equal(t, "", site.Prefix)

	_, err = c.ExpressionAt(b, len(mainSrc)+1)
	assert.Error(t, err)
	_, err = c.ExpressionAt(filepath.Join(dir, "missing.cs"), 0)
	assert.Error(t, err)
}

func TestApplyEdit(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	at := strings.Index(mainSrc, "Grow(before)")

	require.NoError(t, c.ApplyEdit(b, at, at+4, "Shrink"))
	assert.Contains(t, string(c.GetFile(b).Content), "w.Shrink(before);")
	assert.NotEmpty(t, resolveFindings(c, b))

	assert.Error(t, c.ApplyEdit(b, 10, 5, ""))
	assert.Error(t, c.ApplyEdit(filepath.Join(dir, "missing.cs"), 0, 0, "x"))
}

func TestProviderSession(t *testing.T) {
	src := strings.Replace(mainSrc, "w.Grow(before)", "w.Gr(before)", 1)
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": src})
	b := filepath.Join(dir, "main.cs")
	require.NotEmpty(t, resolveFindings(c, b))

	var p CompletionDataProvider = NewProvider(c)
	caret := strings.Index(src, "Gr(before)") + 2
	items := p.GenerateCandidates(b, caret, 0)
	require.Equal(t, []string{"Grow"}, labels(items))

	assert.Equal(t, KeyNormal, p.ProcessKey('o'))
	assert.Equal(t, KeyNormal, p.ProcessKey('\b'))
	assert.Equal(t, KeyInsertion, p.ProcessKey('('))

	assert.False(t, p.InsertAction(items[0], caret, '\t'))
	assert.Contains(t, string(c.GetFile(b).Content), "w.Grow(before);")
	assert.Empty(t, resolveFindings(c, b))
}

func TestProviderKeys(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	p := NewProvider(c)

	caret := strings.Index(mainSrc, "w.Grow") + 2
	require.NotEmpty(t, p.GenerateCandidates(b, caret, '.'))
	assert.Equal(t, KeyBeforeStart, p.ProcessKey('\b'))

	// A '.' that does not follow an expression opens nothing.
	assert.Empty(t, p.GenerateCandidates(b, strings.Index(mainSrc, "int before"), '.'))

	items := p.GenerateCandidates(b, caret+4, 0)
	require.Len(t, items, 1)
	assert.True(t, p.InsertAction(items[0], caret+4, '('))
	assert.Equal(t, "insertion", KeyInsertion.String())
}

func TestProviderCaretCountsBytes(t *testing.T) {
	c, dir := load(t, map[string]string{"widget.cs": widgetSrc, "main.cs": mainSrc})
	b := filepath.Join(dir, "main.cs")
	caret := strings.Index(mainSrc, "w.Grow") + 2

	tests := []struct {
		name  string
		keys  []rune
		caret int
		want  KeyAction
	}{
		{"ascii", []rune{'G'}, caret + 1, KeyNormal},
		{"two byte letter", []rune{'é'}, caret + 2, KeyNormal},
		{"three byte letter", []rune{'字'}, caret + 3, KeyNormal},
		{"backspace undoes wide letter", []rune{'G', 'é', '\b'}, caret + 1, KeyNormal},
		{"backspace past start", []rune{'é', '\b', '\b'}, caret - 1, KeyBeforeStart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(c)
			require.NotEmpty(t, p.GenerateCandidates(b, caret, '.'))
			var got KeyAction
			for _, k := range tt.keys {
				got = p.ProcessKey(k)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.caret, p.caret)
		})
	}
}
