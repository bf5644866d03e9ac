package parser

import (
	"fmt"

	"github.com/dhamidi/codedom/csharp/ast"
)

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenKeyword
	TokenInt
	TokenReal
	TokenString
	TokenChar
	TokenOperator
	TokenInvalid
)

var tokenKindNames = [...]string{
	TokenEOF:      "end of file",
	TokenIdent:    "identifier",
	TokenKeyword:  "keyword",
	TokenInt:      "integer",
	TokenReal:     "real",
	TokenString:   "string",
	TokenChar:     "character",
	TokenOperator: "operator",
	TokenInvalid:  "invalid",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Comment is a comment or preprocessor line found between two tokens.
type Comment struct {
	// Lead is the whitespace between the previous comment (or token) and
	// this one.
	Lead string
	Text string
}

// Doc reports whether the comment is a /// documentation comment.
func (c Comment) Doc() bool {
	return len(c.Text) >= 3 && c.Text[:3] == "///"
}

// Trivia is everything the lexer skipped before a token.
type Trivia struct {
	Comments []Comment
	// Space is the whitespace after the last comment.
	Space string
}

func (t Trivia) IsEmpty() bool {
	return len(t.Comments) == 0 && t.Space == ""
}

// String returns the trivia verbatim.
func (t Trivia) String() string {
	var s string
	for _, c := range t.Comments {
		s += c.Lead + c.Text
	}
	return s + t.Space
}

type Token struct {
	Kind   TokenKind
	Text   string
	Pos    ast.Position
	End    ast.Position
	Trivia Trivia
	// FirstOnLine is set when only whitespace and comments precede the
	// token on its line.
	FirstOnLine bool
}

func (t Token) Is(text string) bool {
	return t.Kind != TokenString && t.Kind != TokenChar && t.Text == text
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Text)
}

var keywords = map[string]bool{}

func init() {
	for _, kw := range []string{
		"abstract", "as", "base", "bool", "break", "byte", "case", "catch",
		"char", "checked", "class", "const", "continue", "decimal", "default",
		"delegate", "do", "double", "else", "enum", "event", "explicit",
		"extern", "false", "finally", "fixed", "float", "for", "foreach",
		"goto", "if", "implicit", "in", "int", "interface", "internal", "is",
		"lock", "long", "namespace", "new", "null", "object", "operator",
		"out", "override", "params", "private", "protected", "public",
		"readonly", "ref", "return", "sbyte", "sealed", "short", "sizeof",
		"stackalloc", "static", "string", "struct", "switch", "this", "throw",
		"true", "try", "typeof", "uint", "ulong", "unchecked", "unsafe",
		"ushort", "using", "virtual", "void", "volatile", "while",
	} {
		keywords[kw] = true
	}
}

// IsKeyword reports whether word is reserved. Contextual keywords such as
// get, var or partial are identifiers.
func IsKeyword(word string) bool {
	return keywords[word]
}

// modifiers lists the declaration modifiers. partial and async are
// contextual and handled by their own parse points.
var modifiers = []string{
	"public", "private", "protected", "internal", "static", "abstract",
	"sealed", "virtual", "override", "readonly", "const", "extern", "new",
	"unsafe", "volatile",
}
