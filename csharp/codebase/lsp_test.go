package codebase

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/codedom/csharp/ast"
)

func TestLSPPositions(t *testing.T) {
	content := []byte("class A\n{\n  string s = \"😀x\";\n}\n")
	tests := []struct {
		name   string
		offset int
		want   protocol.Position
	}{
		{name: "start", offset: 0, want: protocol.Position{Line: 0, Character: 0}},
		{name: "second line", offset: 8, want: protocol.Position{Line: 1, Character: 0}},
		{name: "before emoji", offset: 24, want: protocol.Position{Line: 2, Character: 14}},
		{name: "after emoji", offset: 28, want: protocol.Position{Line: 2, Character: 16}},
		{name: "end", offset: len(content), want: protocol.Position{Line: 4, Character: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lspPosition(content, tt.offset)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.offset, offsetOf(content, got))
		})
	}

	assert.Equal(t, 9, offsetOf(content, protocol.Position{Line: 1, Character: 80}))
	assert.Equal(t, len(content), offsetOf(content, protocol.Position{Line: 40}))
}

func TestToProtocolDiagnostics(t *testing.T) {
	content := []byte("class A { int x = ; }\n")
	got := toProtocolDiagnostics(content, []Finding{
		{
			Pos:      ast.Position{Offset: 18, Line: 1, Column: 19},
			End:      ast.Position{Offset: 19, Line: 1, Column: 20},
			Severity: ast.SeverityError,
			Message:  "expected expression",
		},
		{Pos: ast.Position{Offset: 6, Line: 1, Column: 7}, Severity: ast.SeverityWarning, Message: "w"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 18},
		End:   protocol.Position{Line: 0, Character: 19},
	}, got[0].Range)
	assert.Equal(t, protocol.DiagnosticSeverityError, *got[0].Severity)
	assert.Equal(t, "expected expression", got[0].Message)
	assert.Equal(t, got[1].Range.Start, got[1].Range.End)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, *got[1].Severity)
}

func TestURIPaths(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir with space", "a.cs")
	uri := pathToURI(path)
	assert.Contains(t, uri, "file://")
	assert.Contains(t, uri, "%20")
	back, err := uriToPath(uri)
	require.NoError(t, err)
	assert.Equal(t, path, back)

	plain, err := uriToPath("/tmp/x.cs")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.cs", plain)
}
