package parser

import (
	"strconv"

	"github.com/dhamidi/codedom/csharp/ast"
)

const (
	precAssign = iota + 1
	precConditional
	precCoalesce
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
)

func registerExpressions(t *Table) {
	for _, op := range []string{"=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=", "??="} {
		t.AddOperator(op, precAssign, AssocRight, nil)
	}
	t.AddOperator("?", precConditional, AssocRight, parseConditional)
	t.AddOperator("??", precCoalesce, AssocRight, nil)
	t.AddOperator("||", precOr, AssocLeft, nil)
	t.AddOperator("&&", precAnd, AssocLeft, nil)
	t.AddOperator("|", precBitOr, AssocLeft, nil)
	t.AddOperator("^", precBitXor, AssocLeft, nil)
	t.AddOperator("&", precBitAnd, AssocLeft, nil)
	for _, op := range []string{"==", "!="} {
		t.AddOperator(op, precEquality, AssocLeft, nil)
	}
	for _, op := range []string{"<", ">", "<=", ">="} {
		t.AddOperator(op, precRelational, AssocLeft, nil)
	}
	t.AddOperator("is", precRelational, AssocLeft, parseTypeTest)
	t.AddOperator("as", precRelational, AssocLeft, parseTypeTest)
	for _, op := range []string{"<<", ">>"} {
		t.AddOperator(op, precShift, AssocLeft, nil)
	}
	for _, op := range []string{"+", "-"} {
		t.AddOperator(op, precAdditive, AssocLeft, nil)
	}
	for _, op := range []string{"*", "/", "%"} {
		t.AddOperator(op, precMultiplicative, AssocLeft, nil)
	}

	for _, op := range []string{"-", "+", "!", "~", "++", "--", "ref", "out", "in", "throw"} {
		t.AddPrefixOperator(op, nil)
	}
	t.AddPrefixOperator("await", parseAwait)
	t.AddPrefixOperator("async", parseAsyncLambda)

	t.AddPostfixOperator(".", parseMemberAccess)
	t.AddPostfixOperator("?.", parseMemberAccess)
	t.AddPostfixOperator("::", parseMemberAccess)
	t.AddPostfixOperator("(", parseCallOp)
	t.AddPostfixOperator("[", parseIndexOp)
	t.AddPostfixOperator("++", nil)
	t.AddPostfixOperator("--", nil)
	t.AddPostfixOperator("!", parseSuppressOp)
}

// ParseExpr parses an expression at the current token. It returns nil
// without consuming anything when no expression starts there.
func (p *Parser) ParseExpr() ast.Expr {
	return p.parseBinary(precAssign)
}

func (p *Parser) exprItem() (ast.Expr, bool) {
	e := p.ParseExpr()
	return e, e != nil
}

func (p *Parser) typeItem() (ast.Expr, bool) {
	e := p.ParseType()
	return e, e != nil
}

func (p *Parser) parseBinary(min int) ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for {
		text, _ := p.peekOp()
		op := p.table.infix[text]
		if op == nil || op.Precedence < min {
			return left
		}
		start := p.pos
		next := op.fn(p, left, op)
		if next == nil || p.pos == start {
			return left
		}
		left = next
	}
}

func adjacent(a, b Token) bool {
	return a.End.Offset == b.Pos.Offset
}

// peekOp returns the operator at the current token and the number of
// tokens it spans. Adjacent '>' tokens are joined into shift and
// comparison operators here.
func (p *Parser) peekOp() (string, int) {
	tok := p.Peek()
	switch {
	case tok.Kind == TokenKeyword && (tok.Text == "is" || tok.Text == "as"):
		return tok.Text, 1
	case tok.Kind != TokenOperator:
		return "", 0
	case tok.Text != ">":
		return tok.Text, 1
	}
	n1 := p.PeekN(1)
	if !adjacent(tok, n1) {
		return ">", 1
	}
	switch {
	case n1.Is("="):
		return ">=", 2
	case n1.Is(">"):
		if n2 := p.PeekN(2); adjacent(n1, n2) && n2.Is("=") {
			return ">>=", 3
		}
		return ">>", 2
	}
	return ">", 1
}

// takeOp consumes the operator at the current token as the slot of n.
func (p *Parser) takeOp(n ast.Node, slot string) string {
	text, count := p.peekOp()
	p.Take(n, slot)
	for range count - 1 {
		p.claimed[p.pos] = true
		p.pos++
	}
	n.Base().Span.End = p.tokens[p.pos-1].End
	return text
}

func parseBinaryOp(p *Parser, left ast.Expr, op *Operator) ast.Expr {
	b := ast.NewBinary(op.Text, nil, nil)
	p.wrap(b, left)
	b.SetX(left)
	p.takeOp(b, "op")
	next := op.Precedence + 1
	if op.Assoc == AssocRight {
		next = op.Precedence
	}
	if y := p.parseBinary(next); y != nil {
		b.SetY(y)
	} else {
		p.Errorf(b, "expected expression after '%s'", op.Text)
	}
	p.close(b)
	return b
}

// parseTypeTest handles is and as, whose right operand is a type.
func parseTypeTest(p *Parser, left ast.Expr, op *Operator) ast.Expr {
	b := ast.NewBinary(op.Text, nil, nil)
	p.wrap(b, left)
	b.SetX(left)
	p.Take(b, "op")
	y := p.ParseType()
	if y == nil {
		y = p.parseBinary(op.Precedence + 1)
	}
	if y != nil {
		b.SetY(y)
	} else {
		p.Errorf(b, "expected type after '%s'", op.Text)
	}
	p.close(b)
	return b
}

func parseConditional(p *Parser, left ast.Expr, op *Operator) ast.Expr {
	c := ast.NewConditional(nil, nil, nil)
	p.wrap(c, left)
	c.SetCond(left)
	p.Take(c, "?")
	if then := p.ParseExpr(); then != nil {
		c.SetThen(then)
	} else {
		p.Errorf(c, "expected expression after '?'")
	}
	if p.Expect(c, ":", ":") {
		if els := p.parseBinary(op.Precedence); els != nil {
			c.SetElse(els)
		} else {
			p.Errorf(c, "expected expression after ':'")
		}
	}
	p.close(c)
	return c
}

func (p *Parser) parseUnary() ast.Expr {
	tok := p.Peek()
	if tok.Kind == TokenOperator || tok.Kind == TokenKeyword || tok.Kind == TokenIdent {
		if fn, ok := p.table.prefix[tok.Text]; ok {
			if e := fn(p); e != nil {
				return e
			}
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

func parseUnaryOp(p *Parser) ast.Expr {
	u := ast.NewUnary(p.Peek().Text, nil)
	p.Begin(u)
	p.Take(u, "op")
	if x := p.parseUnary(); x != nil {
		u.SetX(x)
	} else {
		p.Errorf(u, "expected expression after '%s'", u.Op)
	}
	p.close(u)
	return u
}

// startsOperand reports whether tok can begin an operand, which tells a
// contextual keyword apart from a name.
func startsOperand(tok Token) bool {
	switch tok.Kind {
	case TokenIdent, TokenInt, TokenReal, TokenString, TokenChar:
		return true
	case TokenKeyword:
		switch tok.Text {
		case "this", "base", "new", "true", "false", "null", "typeof", "default", "sizeof":
			return true
		}
		return isBuiltinType(tok.Text)
	case TokenOperator:
		return tok.Text == "(" || tok.Text == "!" || tok.Text == "-"
	}
	return false
}

func parseAwait(p *Parser) ast.Expr {
	if !startsOperand(p.PeekN(1)) {
		return nil
	}
	return parseUnaryOp(p)
}

func parseAsyncLambda(p *Parser) ast.Expr {
	next := p.PeekN(1)
	single := next.Kind == TokenIdent && p.PeekN(2).Is("=>")
	if !single && !(next.Is("(") && p.lambdaAhead(p.pos+1)) {
		return nil
	}
	l := ast.NewLambda(nil, nil)
	l.Mods = ast.Modifiers{"async"}
	p.Begin(l)
	p.Take(l, "mod:async")
	if single {
		p.parseSingleParamLambda(l)
	} else {
		p.parseParenLambda(l)
	}
	return l
}

func parsePostfixOp(p *Parser, left ast.Expr) ast.Expr {
	n := ast.NewPostfix(p.Peek().Text, nil)
	p.wrap(n, left)
	n.SetX(left)
	p.Take(n, "op")
	return n
}

// parseSuppressOp handles the null-forgiving x!, which is only taken when
// no operand follows.
func parseSuppressOp(p *Parser, left ast.Expr) ast.Expr {
	next := p.PeekN(1)
	if next.Kind != TokenOperator || next.Is("(") || next.Is("!") || next.Is("-") {
		return nil
	}
	return parsePostfixOp(p, left)
}

func (p *Parser) parsePostfix(left ast.Expr) ast.Expr {
	if left == nil {
		return nil
	}
	for {
		tok := p.Peek()
		if tok.Kind != TokenOperator {
			return left
		}
		if tok.Text == "?" {
			if !isTypeLike(left) || !p.looksNullable() {
				return left
			}
			left = p.nullable(left)
			continue
		}
		fn, ok := p.table.postfix[tok.Text]
		if !ok {
			return left
		}
		next := fn(p, left)
		if next == nil {
			return left
		}
		left = next
	}
}

// looksNullable reports whether the '?' at the current token marks a
// nullable type rather than a conditional.
func (p *Parser) looksNullable() bool {
	next := p.PeekN(1)
	switch {
	case next.Is(">"), next.Is(","), next.Is(")"), next.Kind == TokenEOF:
		return true
	case next.Is("["):
		return p.PeekN(2).Is("]") || p.PeekN(2).Is(",")
	case next.Kind == TokenIdent:
		after := p.PeekN(2)
		return after.Is("=") || after.Is(";") || after.Is(",") || after.Is(")") ||
			after.Is("in") || after.Is("{") || after.Is("=>")
	}
	return false
}

func (p *Parser) nullable(elem ast.Expr) ast.Expr {
	n := ast.NewNullableType(nil)
	p.wrap(n, elem)
	n.SetElem(elem)
	p.Take(n, "?")
	return n
}

func parseMemberAccess(p *Parser, left ast.Expr) ast.Expr {
	d := ast.NewDot(nil, nil)
	d.Op = p.Peek().Text
	p.wrap(d, left)
	d.SetX(left)
	p.Take(d, ".")
	if p.Peek().Kind == TokenIdent || (p.Peek().Kind == TokenKeyword && isBuiltinType(p.Peek().Text)) {
		d.SetName(p.parseName(false, false))
	} else {
		p.Errorf(d, "expected member name after '%s'", d.Op)
	}
	p.close(d)
	return d
}

// typeOperand lists the pseudo-functions whose argument is a type.
var typeOperand = map[string]bool{"typeof": true, "sizeof": true, "default": true}

func parseCallOp(p *Parser, left ast.Expr) ast.Expr {
	c := ast.NewCall(nil)
	p.wrap(c, left)
	c.SetFun(left)
	p.Take(c, "(")
	item := p.exprItem
	if r, ok := left.(*ast.Ref); ok && typeOperand[r.Name] {
		item = p.typeItem
	}
	parseList(p, c, ")", item, func(e ast.Expr) { c.Args.Add(e) })
	p.Expect(c, ")", ")")
	p.close(c)
	return c
}

func parseIndexOp(p *Parser, left ast.Expr) ast.Expr {
	if next := p.PeekN(1); next.Is("]") || next.Is(",") {
		return p.arrayRank(left)
	}
	ix := ast.NewIndex(nil)
	p.wrap(ix, left)
	ix.SetX(left)
	p.Take(ix, "[")
	parseList(p, ix, "]", p.exprItem, func(e ast.Expr) { ix.Args.Add(e) })
	p.Expect(ix, "]", "]")
	p.close(ix)
	return ix
}

func (p *Parser) arrayRank(elem ast.Expr) *ast.ArrayType {
	at := ast.NewArrayType(nil, 1)
	p.wrap(at, elem)
	at.SetElem(elem)
	p.Take(at, "[")
	for p.Peek().Is(",") {
		p.Take(at, "rank:"+strconv.Itoa(at.Rank))
		at.Rank++
	}
	p.Expect(at, "]", "]")
	p.close(at)
	return at
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.Peek()
	switch tok.Kind {
	case TokenInt:
		return p.literal(ast.LitInt)
	case TokenReal:
		return p.literal(ast.LitReal)
	case TokenString:
		return p.literal(ast.LitString)
	case TokenChar:
		return p.literal(ast.LitChar)
	case TokenIdent:
		if p.PeekN(1).Is("=>") {
			l := ast.NewLambda(nil, nil)
			p.Begin(l)
			p.parseSingleParamLambda(l)
			return l
		}
		return p.parseName(false, false)
	case TokenKeyword:
		switch tok.Text {
		case "true", "false":
			return p.literal(ast.LitBool)
		case "null":
			return p.literal(ast.LitNull)
		case "this":
			return p.selfRef(ast.NewThis())
		case "base":
			return p.selfRef(ast.NewBase())
		case "new":
			return p.parseNew()
		}
		if _, ok := ast.LookupBuiltin(tok.Text); ok {
			return p.builtinName()
		}
	case TokenOperator:
		switch tok.Text {
		case "(":
			return p.parseParenthesized()
		case "{":
			return p.parseInitList()
		}
	}
	return nil
}

func (p *Parser) literal(kind ast.LitKind) ast.Expr {
	lit := ast.NewLiteral(kind, p.Peek().Text)
	p.Begin(lit)
	p.Take(lit, "lit")
	return lit
}

func (p *Parser) selfRef(n *ast.SelfRef) ast.Expr {
	p.Begin(n)
	p.Take(n, "kw")
	return n
}

func (p *Parser) builtinName() *ast.Ref {
	r := ast.NewRef(mustBuiltin(p.Peek().Text))
	p.Begin(r)
	p.Take(r, "name")
	return r
}

func mustBuiltin(name string) *ast.Builtin {
	b, _ := ast.LookupBuiltin(name)
	return b
}

func isBuiltinType(word string) bool {
	b, ok := ast.LookupBuiltin(word)
	return ok && b.SymbolKind() == ast.SymType
}

// parseName parses an identifier. Unless simple is set, type arguments
// follow when typeArgs is set or when the tokens after '<' read as a type
// argument list.
func (p *Parser) parseName(simple, typeArgs bool) ast.NameNode {
	tok := p.Peek()
	if tok.Kind == TokenKeyword && isBuiltinType(tok.Text) {
		return p.builtinName()
	}
	n := ast.NewName(tok.Text)
	p.Begin(n)
	p.Take(n, "name")
	if !simple && p.Peek().Is("<") && (typeArgs || p.typeArgsAhead()) {
		p.parseTypeArgs(n)
	}
	return n
}

func (p *Parser) parseTypeArgs(n ast.NameNode) {
	p.Take(n, "<")
	args := ast.TypeArgsOf(n)
	parseList(p, n, ">", p.typeItem, func(e ast.Expr) { args.Add(e) })
	p.Expect(n, ">", ">")
	p.close(n)
}

// scanType returns the index of the token after the type starting at
// token i, or -1 when no type starts there. It only looks at tokens.
func (p *Parser) scanType(i int) int {
	at := func(j int) Token {
		if j >= len(p.tokens) {
			return p.tokens[len(p.tokens)-1]
		}
		return p.tokens[j]
	}
	for {
		tok := at(i)
		if tok.Kind != TokenIdent && !(tok.Kind == TokenKeyword && isBuiltinType(tok.Text)) {
			return -1
		}
		i++
		if at(i).Is("<") {
			i++
			for {
				j := p.scanType(i)
				if j < 0 {
					return -1
				}
				i = j
				if at(i).Is(",") {
					i++
					continue
				}
				break
			}
			if !at(i).Is(">") {
				return -1
			}
			i++
		}
		if at(i).Is(".") || at(i).Is("::") {
			i++
			continue
		}
		break
	}
	for {
		switch {
		case at(i).Is("?"):
			i++
		case at(i).Is("[") && (at(i+1).Is("]") || at(i+1).Is(",")):
			i++
			for at(i).Is(",") {
				i++
			}
			if !at(i).Is("]") {
				return -1
			}
			i++
		default:
			return i
		}
	}
}

// typeArgsAhead decides whether the '<' at the current token opens a type
// argument list, by what follows the matching '>'.
func (p *Parser) typeArgsAhead() bool {
	i := p.pos + 1
	for {
		j := p.scanType(i)
		if j < 0 {
			return false
		}
		i = j
		if p.tokens[i].Is(",") {
			i++
			continue
		}
		break
	}
	if !p.tokens[i].Is(">") {
		return false
	}
	next := p.tokens[min(i+1, len(p.tokens)-1)]
	switch next.Kind {
	case TokenEOF, TokenIdent:
		return true
	case TokenOperator:
		switch next.Text {
		case "(", ")", "]", "}", ":", ";", ",", ".", "?.", "?", "==", "!=", "|", "^", "&&", "||", "&", "[", "{", "=>":
			return true
		}
	}
	return false
}

// lambdaAhead reports whether the '(' at token i closes with ") =>".
func (p *Parser) lambdaAhead(i int) bool {
	depth := 0
	for ; i < len(p.tokens); i++ {
		tok := p.tokens[i]
		switch {
		case tok.Kind == TokenEOF:
			return false
		case tok.Is("("):
			depth++
		case tok.Is(")"):
			depth--
			if depth == 0 {
				return i+1 < len(p.tokens) && p.tokens[i+1].Is("=>")
			}
		case tok.Is(";"), tok.Is("{"), tok.Is("}"):
			return false
		}
	}
	return false
}

// castAhead reports whether the '(' at the current token starts a cast.
func (p *Parser) castAhead() bool {
	j := p.scanType(p.pos + 1)
	if j < 0 || !p.tokens[j].Is(")") {
		return false
	}
	next := p.tokens[min(j+1, len(p.tokens)-1)]
	inner := p.tokens[p.pos+1]
	if inner.Kind == TokenKeyword && j == p.pos+2 {
		return startsOperand(next) || next.Is("+") || next.Is("~")
	}
	switch next.Kind {
	case TokenIdent, TokenInt, TokenReal, TokenString, TokenChar:
		return true
	case TokenKeyword:
		return startsOperand(next)
	case TokenOperator:
		return next.Is("(") || next.Is("!") || next.Is("~")
	}
	return false
}

func (p *Parser) parseParenthesized() ast.Expr {
	switch {
	case p.lambdaAhead(p.pos):
		l := ast.NewLambda(nil, nil)
		p.Begin(l)
		p.parseParenLambda(l)
		return l
	case p.castAhead():
		c := ast.NewCast(nil, nil)
		p.Begin(c)
		p.Take(c, "(")
		c.SetType(p.ParseType())
		p.Expect(c, ")", ")")
		if x := p.parseUnary(); x != nil {
			c.SetX(x)
		} else {
			p.Errorf(c, "expected expression after cast")
		}
		p.close(c)
		return c
	}
	pe := ast.NewParen(nil)
	p.Begin(pe)
	p.Take(pe, "(")
	if x := p.ParseExpr(); x != nil {
		pe.SetX(x)
	} else {
		p.Errorf(pe, "expected expression")
	}
	p.Expect(pe, ")", ")")
	p.close(pe)
	return pe
}

func (p *Parser) parseSingleParamLambda(l *ast.Lambda) {
	l.Parenthesized = false
	prm := ast.NewParameter(nil, p.Peek().Text)
	p.Begin(prm)
	p.Take(prm, "name")
	l.Params.Add(prm)
	p.lambdaBody(l)
}

func (p *Parser) parseParenLambda(l *ast.Lambda) {
	l.Parenthesized = true
	p.Take(l, "(")
	parseList(p, l, ")", func() (*ast.Parameter, bool) { return p.parseParam(true) },
		func(prm *ast.Parameter) { l.Params.Add(prm) })
	p.Expect(l, ")", ")")
	p.lambdaBody(l)
}

func (p *Parser) lambdaBody(l *ast.Lambda) {
	p.Take(l, "=>")
	switch {
	case p.Peek().Is("{"):
		l.SetBody(p.ParseBlock())
	default:
		if x := p.ParseExpr(); x != nil {
			l.SetBody(x)
		} else {
			p.Errorf(l, "expected lambda body")
		}
	}
	p.close(l)
}

func (p *Parser) parseNew() ast.Expr {
	n := ast.NewNew(nil)
	n.HasArgs = false
	p.Begin(n)
	p.Take(n, "kw")
	if !p.Peek().Is("(") && !p.Peek().Is("{") {
		if t := p.parseCreationType(); t != nil {
			n.SetType(t)
		}
	}
	if p.Peek().Is("(") {
		n.HasArgs = true
		p.Take(n, "(")
		parseList(p, n, ")", p.exprItem, func(e ast.Expr) { n.Args.Add(e) })
		p.Expect(n, ")", ")")
	}
	if p.Peek().Is("{") {
		n.SetInit(p.parseInitList())
	}
	if n.Type == nil && !n.HasArgs && n.Init == nil {
		p.Errorf(n, "expected type after 'new'")
	}
	p.close(n)
	return n
}

// parseCreationType parses the type of a creation expression, where an
// array dimension may carry a size.
func (p *Parser) parseCreationType() ast.Expr {
	t := p.parseTypeName()
	if t == nil {
		return nil
	}
	for {
		switch {
		case p.Peek().Is("?"):
			t = p.nullable(t)
		case p.Peek().Is("[") && (p.PeekN(1).Is("]") || p.PeekN(1).Is(",")):
			t = p.arrayRank(t)
		case p.Peek().Is("["):
			at := ast.NewArrayType(nil, 1)
			p.wrap(at, t)
			at.SetElem(t)
			p.Take(at, "[")
			if size := p.ParseExpr(); size != nil {
				at.SetSize(size)
			}
			p.Expect(at, "]", "]")
			p.close(at)
			t = at
		default:
			return t
		}
	}
}

func (p *Parser) parseInitList() *ast.InitList {
	l := ast.NewInitList()
	p.Begin(l)
	p.Take(l, "{")
	parseList(p, l, "}", p.exprItem, func(e ast.Expr) { l.Items.Add(e) })
	p.Expect(l, "}", "}")
	p.close(l)
	return l
}

// ParseType parses a type: a possibly qualified, possibly generic name
// followed by nullable and array markers. It returns nil without
// consuming anything when no type starts at the current token.
func (p *Parser) ParseType() ast.Expr {
	t := p.parseTypeName()
	if t == nil {
		return nil
	}
	for {
		switch {
		case p.Peek().Is("?"):
			t = p.nullable(t)
		case p.Peek().Is("[") && (p.PeekN(1).Is("]") || p.PeekN(1).Is(",")):
			t = p.arrayRank(t)
		default:
			return t
		}
	}
}

func (p *Parser) parseTypeName() ast.Expr {
	tok := p.Peek()
	var t ast.Expr
	switch {
	case tok.Kind == TokenIdent:
		t = p.parseName(false, true)
	case tok.Kind == TokenKeyword && isBuiltinType(tok.Text):
		t = p.builtinName()
	default:
		return nil
	}
	for (p.Peek().Is(".") || p.Peek().Is("::")) && p.PeekN(1).Kind == TokenIdent {
		d := ast.NewDot(nil, nil)
		d.Op = p.Peek().Text
		p.wrap(d, t)
		d.SetX(t)
		p.Take(d, ".")
		d.SetName(p.parseName(false, true))
		p.close(d)
		t = d
	}
	return t
}

// parseList parses items separated by commas up to closing, which is
// left for the caller. Each separator is recorded on the item before it.
// Text that is not an item is skipped up to the next separator.
func parseList[T ast.Node](p *Parser, owner ast.Node, closing string, item func() (T, bool), add func(T)) {
	var prev T
	sep := true
	for {
		tok := p.Peek()
		if tok.Kind == TokenEOF || tok.Is(closing) ||
			(tok.Kind == TokenOperator && (tok.Text == ";" || tok.Text == "}")) {
			return
		}
		switch {
		case tok.Is(",") && !sep:
			p.Take(prev, ",")
			sep = true
			continue
		case !sep:
			p.skipJunk(owner, ",", closing)
			continue
		}
		start := p.pos
		v, ok := item()
		if !ok {
			if p.pos == start {
				p.skipJunk(owner, ",", closing)
				if p.Peek().Is(",") {
					p.skipToken()
				}
			}
			continue
		}
		add(v)
		prev = v
		sep = false
	}
}
