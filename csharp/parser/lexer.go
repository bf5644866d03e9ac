package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/codedom/csharp/ast"
)

// Lexer splits source text into tokens. Whitespace, comments and
// preprocessor lines are not tokens; they are attached to the following
// token as its Trivia so the text can be reproduced exactly.
type Lexer struct {
	input     []byte
	file      string
	pos       int
	line      int
	column    int
	lineStart bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:     input,
		file:      file,
		line:      1,
		column:    1,
		lineStart: true,
	}
}

// SetLine makes the lexer count lines from line instead of 1.
func (l *Lexer) SetLine(line int) {
	if line > 0 {
		l.line = line
	}
}

func (l *Lexer) Position() ast.Position {
	return ast.Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	switch {
	case ch == '\n':
		l.line++
		l.column = 1
		l.lineStart = true
	case ch&0xC0 == 0x80:
		// continuation byte of a multi-byte rune
	default:
		l.column++
		if ch != ' ' && ch != '\t' && ch != '\r' {
			l.lineStart = false
		}
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) skipWhitespace() string {
	start := l.pos
	for {
		ch := l.peek()
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v' {
			l.advance()
		} else {
			break
		}
	}
	return string(l.input[start:l.pos])
}

// All returns every token up to and including the end of file token.
func (l *Lexer) All() []Token {
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Kind == TokenEOF {
			return out
		}
	}
}

func (l *Lexer) NextToken() Token {
	trivia := l.scanTrivia()
	first := l.lineStart
	start := l.Position()

	var kind TokenKind
	ch := l.peek()
	switch {
	case l.pos >= len(l.input):
		kind = TokenEOF
	case ch == '@' && l.peekN(1) == '"',
		ch == '$' && (l.peekN(1) == '"' || l.peekN(1) == '@'),
		ch == '@' && l.peekN(1) == '$':
		kind = l.scanPrefixedString()
	case ch == '@' && isIdentStart(l.runeAt(l.pos+1)):
		l.advance()
		l.scanIdentRest()
		kind = TokenIdent
	case isIdentStart(l.runeAt(l.pos)):
		l.scanIdentRest()
		kind = TokenIdent
		if IsKeyword(string(l.input[start.Offset:l.pos])) {
			kind = TokenKeyword
		}
	case isDigit(ch), ch == '.' && isDigit(l.peekN(1)):
		kind = l.scanNumber()
	case ch == '\'':
		kind = l.scanChar()
	case ch == '"':
		kind = l.scanString()
	default:
		kind = l.scanOperator()
	}

	return Token{
		Kind:        kind,
		Text:        string(l.input[start.Offset:l.pos]),
		Pos:         start,
		End:         l.Position(),
		Trivia:      trivia,
		FirstOnLine: first,
	}
}

func (l *Lexer) scanTrivia() Trivia {
	var tr Trivia
	for {
		ws := l.skipWhitespace()
		start := l.pos
		switch {
		case l.peek() == '/' && l.peekN(1) == '/':
			l.skipLine()
		case l.peek() == '/' && l.peekN(1) == '*':
			l.advanceN(2)
			for l.pos < len(l.input) && !(l.peek() == '*' && l.peekN(1) == '/') {
				l.advance()
			}
			l.advanceN(2)
		case l.peek() == '#' && l.lineStart:
			l.skipLine()
		default:
			tr.Space = ws
			return tr
		}
		tr.Comments = append(tr.Comments, Comment{Lead: ws, Text: string(l.input[start:l.pos])})
	}
}

// skipLine advances to the end of the line, leaving a trailing \r and the
// newline for the following whitespace.
func (l *Lexer) skipLine() {
	for l.pos < len(l.input) && l.peek() != '\n' {
		if l.peek() == '\r' && l.peekN(1) == '\n' {
			return
		}
		l.advance()
	}
}

func (l *Lexer) runeAt(i int) rune {
	if i >= len(l.input) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRune(l.input[i:])
	return r
}

func (l *Lexer) scanIdentRest() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRune(l.input[l.pos:])
		if !isIdentPart(r) {
			return
		}
		l.advanceN(size)
	}
}

func (l *Lexer) scanNumber() TokenKind {
	kind := TokenInt
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		l.scanIntSuffix()
		return kind
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
			l.advance()
		}
		l.scanIntSuffix()
		return kind
	}
	l.scanDigits()
	if l.peek() == '.' && isDigit(l.peekN(1)) {
		kind = TokenReal
		l.advance()
		l.scanDigits()
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		n := 1
		if l.peekN(1) == '+' || l.peekN(1) == '-' {
			n = 2
		}
		if isDigit(l.peekN(n)) {
			kind = TokenReal
			l.advanceN(n)
			l.scanDigits()
		}
	}
	switch l.peek() {
	case 'f', 'F', 'd', 'D', 'm', 'M':
		l.advance()
		return TokenReal
	}
	l.scanIntSuffix()
	return kind
}

func (l *Lexer) scanDigits() {
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}
}

func (l *Lexer) scanIntSuffix() {
	for i := 0; i < 2; i++ {
		switch l.peek() {
		case 'u', 'U', 'l', 'L':
			l.advance()
		default:
			return
		}
	}
}

func (l *Lexer) scanChar() TokenKind {
	l.advance()
	for l.pos < len(l.input) {
		switch l.peek() {
		case '\\':
			l.advanceN(2)
		case '\'':
			l.advance()
			return TokenChar
		case '\n':
			return TokenInvalid
		default:
			l.advance()
		}
	}
	return TokenInvalid
}

func (l *Lexer) scanString() TokenKind {
	if l.peekN(1) == '"' && l.peekN(2) == '"' {
		return l.scanRawString()
	}
	l.advance()
	return l.scanStringBody(false, false)
}

// scanPrefixedString handles the @"", $"" and $@"" forms.
func (l *Lexer) scanPrefixedString() TokenKind {
	verbatim, interp := false, false
	for l.peek() == '@' || l.peek() == '$' {
		if l.advance() == '@' {
			verbatim = true
		} else {
			interp = true
		}
	}
	if l.peek() != '"' {
		return TokenInvalid
	}
	if !verbatim && l.peekN(1) == '"' && l.peekN(2) == '"' {
		return l.scanRawString()
	}
	l.advance()
	return l.scanStringBody(verbatim, interp)
}

func (l *Lexer) scanStringBody(verbatim, interp bool) TokenKind {
	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == '"':
			if verbatim && l.peekN(1) == '"' {
				l.advanceN(2)
				continue
			}
			l.advance()
			return TokenString
		case ch == '\\' && !verbatim:
			l.advanceN(2)
		case ch == '\n' && !verbatim:
			return TokenInvalid
		case ch == '{' && interp:
			if l.peekN(1) == '{' {
				l.advanceN(2)
				continue
			}
			l.advance()
			l.skipHole()
		default:
			l.advance()
		}
	}
	return TokenInvalid
}

// skipHole skips an interpolation hole up to its closing brace, stepping
// over nested braces and string literals.
func (l *Lexer) skipHole() {
	depth := 1
	for l.pos < len(l.input) && depth > 0 {
		switch l.peek() {
		case '{':
			depth++
			l.advance()
		case '}':
			depth--
			l.advance()
		case '"':
			l.advance()
			l.scanStringBody(false, false)
		case '\'':
			l.scanChar()
		default:
			l.advance()
		}
	}
}

func (l *Lexer) scanRawString() TokenKind {
	n := 0
	for l.peek() == '"' {
		l.advance()
		n++
	}
	closing := strings.Repeat("\"", n)
	for l.pos < len(l.input) {
		if strings.HasPrefix(string(l.input[l.pos:min(l.pos+n, len(l.input))]), closing) {
			l.advanceN(n)
			return TokenString
		}
		l.advance()
	}
	return TokenInvalid
}

// operators are matched longest first. A closing angle bracket is always a
// token of its own; the parser joins >> and >= where an operator is
// expected so that nested type arguments need no splitting.
var operators = []string{
	"<<=", "??=",
	"&&", "||", "==", "!=", "<=", "+=", "-=", "*=", "/=", "%=", "&=", "|=",
	"^=", "<<", "=>", "++", "--", "->", "??", "?.", "::",
}

func (l *Lexer) scanOperator() TokenKind {
	rest := l.input[l.pos:]
	for _, op := range operators {
		if !strings.HasPrefix(string(rest[:min(len(op), len(rest))]), op) {
			continue
		}
		if op == "?." && isDigit(l.peekN(2)) {
			continue
		}
		l.advanceN(len(op))
		return TokenOperator
	}
	switch l.peek() {
	case '+', '-', '*', '/', '%', '&', '|', '^', '!', '~', '=', '<', '>',
		'?', ':', ';', ',', '.', '(', ')', '[', ']', '{', '}':
		l.advance()
		return TokenOperator
	}
	_, size := utf8.DecodeRune(rest)
	l.advanceN(size)
	return TokenInvalid
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Mc, r)
}
