package parser

import (
	"slices"
	"sync"

	"github.com/dhamidi/codedom/csharp/ast"
)

// ParseFunc builds a node starting at the current token. Returning nil
// without consuming anything lets the next candidate try. Returning nil
// after consuming tokens means the callback stored what it read, such as
// modifiers or attributes, for the declaration that follows.
type ParseFunc func(p *Parser) ast.Node

// InfixFunc continues an expression at a binary operator. left is the
// operand parsed so far; the operator token is current.
type InfixFunc func(p *Parser, left ast.Expr, op *Operator) ast.Expr

// PrefixFunc parses an expression that starts with a prefix operator.
type PrefixFunc func(p *Parser) ast.Expr

// PostfixFunc extends left with a postfix operator such as a call, an
// index or a member access. Returning nil leaves left unchanged.
type PostfixFunc func(p *Parser, left ast.Expr) ast.Expr

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

type Operator struct {
	Text       string
	Precedence int
	Assoc      Assoc
	fn         InfixFunc
}

type parsePoint struct {
	text     string
	priority int
	requires []ast.Kind
	fn       ParseFunc
	seq      int
}

// Table maps token texts to the callbacks that parse the constructs they
// start. Every construct the parser knows is registered here; the parser
// itself never switches on keywords.
type Table struct {
	points  map[string][]*parsePoint
	infix   map[string]*Operator
	prefix  map[string]PrefixFunc
	postfix map[string]PostfixFunc
	seq     int
}

func NewTable() *Table {
	return &Table{
		points:  make(map[string][]*parsePoint),
		infix:   make(map[string]*Operator),
		prefix:  make(map[string]PrefixFunc),
		postfix: make(map[string]PostfixFunc),
	}
}

// AddParsePoint registers fn for statements and members starting with
// text. With requires set, the point only applies when one of those kinds
// encloses the current position. Higher priorities are tried first; equal
// priorities in registration order.
func (t *Table) AddParsePoint(text string, priority int, fn ParseFunc, requires ...ast.Kind) {
	t.seq++
	pt := &parsePoint{text: text, priority: priority, requires: requires, fn: fn, seq: t.seq}
	list := append(t.points[text], pt)
	slices.SortStableFunc(list, func(a, b *parsePoint) int {
		if a.priority != b.priority {
			return b.priority - a.priority
		}
		return a.seq - b.seq
	})
	t.points[text] = list
}

// AddOperator registers a binary operator. A nil fn builds an ast.Binary.
func (t *Table) AddOperator(text string, precedence int, assoc Assoc, fn InfixFunc) {
	if fn == nil {
		fn = parseBinaryOp
	}
	t.infix[text] = &Operator{Text: text, Precedence: precedence, Assoc: assoc, fn: fn}
}

// AddPrefixOperator registers a prefix operator. A nil fn builds an
// ast.Unary.
func (t *Table) AddPrefixOperator(text string, fn PrefixFunc) {
	if fn == nil {
		fn = parseUnaryOp
	}
	t.prefix[text] = fn
}

// AddPostfixOperator registers a postfix operator. A nil fn builds an
// ast.Postfix.
func (t *Table) AddPostfixOperator(text string, fn PostfixFunc) {
	if fn == nil {
		fn = parsePostfixOp
	}
	t.postfix[text] = fn
}

// Clone returns an independent copy that can be extended without
// affecting t.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.seq = t.seq
	for k, v := range t.points {
		c.points[k] = slices.Clone(v)
	}
	for k, v := range t.infix {
		op := *v
		c.infix[k] = &op
	}
	for k, v := range t.prefix {
		c.prefix[k] = v
	}
	for k, v := range t.postfix {
		c.postfix[k] = v
	}
	return c
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// DefaultTable returns a fresh copy of the table holding every construct
// of the language.
func DefaultTable() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewTable()
		registerDeclarations(defaultTable)
		registerStatements(defaultTable)
		registerExpressions(defaultTable)
	})
	return defaultTable.Clone()
}

var typeBodies = []ast.Kind{ast.KindClass, ast.KindStruct, ast.KindInterface}

// barrier reports whether the ancestor walk stops at a node of kind k.
func barrier(k ast.Kind) bool {
	switch k {
	case ast.KindBlock, ast.KindCase, ast.KindNamespaceDecl, ast.KindCompilationUnit:
		return true
	}
	return k.IsTypeDecl()
}

// satisfies walks the parse stack outwards looking for one of kinds. The
// walk ends at the first block, case, type or namespace.
func (p *Parser) satisfies(kinds []ast.Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for i := len(p.stack) - 1; i >= 0; i-- {
		k := p.stack[i].Kind()
		if slices.Contains(kinds, k) {
			return true
		}
		if barrier(k) {
			return false
		}
	}
	return false
}

// dispatch offers the current token to the parse points registered for
// its text.
func (p *Parser) dispatch() ast.Node {
	tok := p.Peek()
	switch tok.Kind {
	case TokenEOF, TokenString, TokenChar, TokenInt, TokenReal:
		return nil
	}
	for _, pt := range p.table.points[tok.Text] {
		if !p.satisfies(pt.requires) {
			continue
		}
		start := p.pos
		n := pt.fn(p)
		if n != nil || p.pos != start {
			return n
		}
	}
	return nil
}

// dispatchClause dispatches the current token with owner on the stack,
// for clauses that attach to a construct being built such as else,
// catch or case.
func (p *Parser) dispatchClause(owner ast.Node) ast.Node {
	p.push(owner)
	defer p.pop()
	return p.dispatch()
}

func (p *Parser) push(n ast.Node) {
	p.stack = append(p.stack, n)
}

func (p *Parser) pop() {
	p.stack = p.stack[:len(p.stack)-1]
}

// Parent returns the innermost construct being parsed.
func (p *Parser) Parent() ast.Node {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}
