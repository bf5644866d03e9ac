package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexerKinds(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenKind
	}{
		{"", []TokenKind{TokenEOF}},
		{"class Foo", []TokenKind{TokenKeyword, TokenIdent, TokenEOF}},
		{"var get partial", []TokenKind{TokenIdent, TokenIdent, TokenIdent, TokenEOF}},
		{"@class", []TokenKind{TokenIdent, TokenEOF}},
		{"12 0x1F 1.5f 2e10 10UL", []TokenKind{TokenInt, TokenInt, TokenReal, TokenReal, TokenInt, TokenEOF}},
		{`"a\"b" 'c' @"x""y" $"{a}" """raw"""`, []TokenKind{TokenString, TokenChar, TokenString, TokenString, TokenString, TokenEOF}},
		{"a ?. b ?? c => d", []TokenKind{TokenIdent, TokenOperator, TokenIdent, TokenOperator, TokenIdent, TokenOperator, TokenIdent, TokenEOF}},
		{`"open`, []TokenKind{TokenInvalid, TokenEOF}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got []TokenKind
			for _, tok := range NewLexer([]byte(tt.input), "test.cs").All() {
				got = append(got, tok.Kind)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLexerClosingAnglesStaySeparate(t *testing.T) {
	toks := NewLexer([]byte("List<List<int>> x >>= 1"), "test.cs").All()
	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	assert.Equal(t, []string{"List", "<", "List", "<", "int", ">", ">", "x", ">", ">", "=", "1", ""}, texts)
}

func TestLexerTrivia(t *testing.T) {
	src := "/// doc\n// line\n  x /* c */ = 1; // tail\n#if DEBUG\n"
	toks := NewLexer([]byte(src), "test.cs").All()
	require.Len(t, toks, 5)

	x := toks[0]
	require.Len(t, x.Trivia.Comments, 2)
	assert.True(t, x.Trivia.Comments[0].Doc())
	assert.Equal(t, "\n", x.Trivia.Comments[1].Lead)
	assert.Equal(t, "\n  ", x.Trivia.Space)
	assert.True(t, x.FirstOnLine)
	assert.Equal(t, 3, x.Pos.Line)
	assert.Equal(t, 3, x.Pos.Column)

	eq := toks[1]
	assert.Equal(t, []Comment{{Lead: " ", Text: "/* c */"}}, eq.Trivia.Comments)
	assert.False(t, eq.FirstOnLine)

	eof := toks[4]
	require.Len(t, eof.Trivia.Comments, 2)
	assert.Equal(t, "// tail", eof.Trivia.Comments[0].Text)
	assert.Equal(t, "#if DEBUG", eof.Trivia.Comments[1].Text)

	var rebuilt string
	for _, tok := range toks {
		rebuilt += tok.Trivia.String() + tok.Text
	}
	assert.Equal(t, src, rebuilt)
}

func TestLexerStartLine(t *testing.T) {
	lx := NewLexer([]byte("a\nb"), "test.cs")
	lx.SetLine(10)
	toks := lx.All()
	assert.Equal(t, 10, toks[0].Pos.Line)
	assert.Equal(t, 11, toks[1].Pos.Line)
}
