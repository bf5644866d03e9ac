package parser

import "github.com/dhamidi/codedom/csharp/ast"

func registerStatements(t *Table) {
	blocks := []ast.Kind{ast.KindBlock, ast.KindCase}

	t.AddParsePoint("{", 0, parseBlockStmt, blocks...)
	t.AddParsePoint("if", 0, parseIf, blocks...)
	t.AddParsePoint("else", 10, parseElse, ast.KindIf)
	t.AddParsePoint("else", 0, parseOrphanClause)
	t.AddParsePoint("while", 0, parseWhile, blocks...)
	t.AddParsePoint("do", 0, parseDo, blocks...)
	t.AddParsePoint("for", 0, parseFor, blocks...)
	t.AddParsePoint("foreach", 0, parseForEach, blocks...)
	for _, kw := range []string{"return", "throw", "break", "continue"} {
		t.AddParsePoint(kw, 0, parseJump, blocks...)
	}
	t.AddParsePoint("try", 0, parseTry, blocks...)
	t.AddParsePoint("catch", 10, parseCatch, ast.KindTry)
	t.AddParsePoint("finally", 10, parseFinally, ast.KindTry)
	t.AddParsePoint("catch", 0, parseOrphanClause)
	t.AddParsePoint("finally", 0, parseOrphanClause)
	t.AddParsePoint("switch", 0, parseSwitch, blocks...)
	t.AddParsePoint("case", 10, parseCase, ast.KindSwitch)
	t.AddParsePoint("default", 10, parseCase, ast.KindSwitch)
	t.AddParsePoint("case", 0, parseOrphanCase)
	t.AddParsePoint("default", 0, parseOrphanCase)

	for _, text := range []string{"=", ";", ","} {
		t.AddParsePoint(text, 10, claimLocalDecl, blocks...)
	}
	t.AddParsePoint(";", 5, claimExprStmt, blocks...)
}

// ParseBlock parses a braced statement list at the current token.
func (p *Parser) ParseBlock() *ast.Block {
	b := ast.NewBlock()
	p.Begin(b)
	p.blockBody(b)
	return b
}

func (p *Parser) blockBody(b *ast.Block) {
	p.Take(b, "{")
	p.parseBody(b, true, func(n ast.Node) {
		b.Stmts.Add(p.asStmt(n))
	}, nil)
	p.Expect(b, "}", "}")
	p.close(b)
}

func (p *Parser) expectBlock(n ast.Node, set func(*ast.Block)) {
	if p.Peek().Is("{") {
		set(p.ParseBlock())
		return
	}
	p.Errorf(n, "expected '{'")
}

func parseBlockStmt(p *Parser) ast.Node {
	if len(p.Unused()) > 0 {
		return nil
	}
	b := ast.NewBlock()
	p.ApplyPending(b, nil)
	p.blockBody(b)
	return b
}

// parseEmbedded parses the single statement controlled by owner, such as
// the body of an if or a loop. Statements recovered beyond the first are
// placed after owner in the enclosing body.
func (p *Parser) parseEmbedded(owner ast.Node) ast.Stmt {
	var got []ast.Node
	p.parseBody(owner, false, func(n ast.Node) {
		got = append(got, n)
	}, func(tok Token) bool {
		return len(got) > 0 || tok.Is("}") || (tok.Is("else") && owner.Kind() == ast.KindIf)
	})
	if len(got) == 0 {
		p.Errorf(owner, "expected statement")
		return nil
	}
	p.body.after = append(p.body.after, got[1:]...)
	return p.asStmt(got[0])
}

// parseCondition parses a parenthesized expression taking the slots "("
// and ")" of n.
func (p *Parser) parseCondition(n ast.Node) ast.Expr {
	if !p.Expect(n, "(", "(") {
		return nil
	}
	x := p.ParseExpr()
	if x == nil {
		p.Errorf(n, "expected expression")
	}
	if tok := p.Peek(); !tok.Is(")") && !tok.Is("{") && !tok.Is(";") && tok.Kind != TokenEOF {
		p.skipJunk(n, ")")
	}
	p.Expect(n, ")", ")")
	return x
}

func parseIf(p *Parser) ast.Node {
	n := ast.NewIf(nil, nil, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	if c := p.parseCondition(n); c != nil {
		n.SetCond(c)
	}
	if s := p.parseEmbedded(n); s != nil {
		n.SetThen(s)
	}
	p.close(n)
	if p.Peek().Is("else") {
		if e, ok := p.dispatchClause(n).(*ast.Else); ok {
			n.SetElse(e)
			p.close(n)
		}
	}
	return n
}

func parseElse(p *Parser) ast.Node {
	e := ast.NewElse(nil)
	p.Begin(e)
	p.Take(e, "kw")
	if s := p.parseEmbedded(e); s != nil {
		e.SetBody(s)
	}
	p.close(e)
	return e
}

// parseOrphanClause parses an else, catch or finally that has no
// statement to attach to, so that its body is still in the tree.
func parseOrphanClause(p *Parser) ast.Node {
	kw := p.Peek().Text
	u := ast.NewUnrecognized()
	p.ApplyPending(u, nil)
	var clause ast.Node
	parent := "try"
	switch kw {
	case "else":
		clause = parseElse(p)
		parent = "if"
	case "catch":
		clause = parseCatch(p)
	default:
		clause = parseFinally(p)
	}
	u.Parts.Add(clause)
	p.close(u)
	p.Errorf(u, "'%s' without '%s'", kw, parent)
	return u
}

func parseWhile(p *Parser) ast.Node {
	n := ast.NewWhile(nil, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	if c := p.parseCondition(n); c != nil {
		n.SetCond(c)
	}
	if s := p.parseEmbedded(n); s != nil {
		n.SetBody(s)
	}
	p.close(n)
	return n
}

func parseDo(p *Parser) ast.Node {
	n := ast.NewDo(nil, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	if s := p.parseEmbedded(n); s != nil {
		n.SetBody(s)
	}
	if p.Expect(n, "while", "while") {
		if c := p.parseCondition(n); c != nil {
			n.SetCond(c)
		}
		p.terminate(n)
	}
	p.close(n)
	return n
}

// declAhead reports whether a local declaration starts at the current
// token: a type directly followed by a name.
func (p *Parser) declAhead() bool {
	j := p.scanType(p.pos)
	return j >= 0 && p.tokens[j].Kind == TokenIdent
}

func parseFor(p *Parser) ast.Node {
	n := ast.NewFor(nil, nil, nil, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	p.Expect(n, "(", "(")
	switch {
	case p.Peek().Is(";"):
	case p.declAhead():
		typ := p.ParseType()
		d := ast.NewLocalDecl(nil)
		p.wrap(d, typ)
		d.SetType(typ)
		p.declarators(d, nil, func(v *ast.VarDeclarator) { d.Vars.Add(v) })
		p.close(d)
		n.SetDecl(d)
	default:
		parseList(p, n, ";", p.exprItem, func(e ast.Expr) { n.Inits.Add(e) })
	}
	p.Expect(n, ";", ";")
	if !p.Peek().Is(";") {
		if c := p.ParseExpr(); c != nil {
			n.SetCond(c)
		}
	}
	p.Expect(n, ";2", ";")
	parseList(p, n, ")", p.exprItem, func(e ast.Expr) { n.Updates.Add(e) })
	p.Expect(n, ")", ")")
	if s := p.parseEmbedded(n); s != nil {
		n.SetBody(s)
	}
	p.close(n)
	return n
}

func parseForEach(p *Parser) ast.Node {
	n := ast.NewForEach(nil, "", nil, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	p.Expect(n, "(", "(")
	if typ := p.ParseType(); typ != nil {
		n.SetVarType(typ)
	} else {
		p.Errorf(n, "expected type")
	}
	if tok := p.Peek(); tok.Kind == TokenIdent {
		v := ast.NewVar(tok.Text, nil)
		p.Begin(v)
		p.Take(v, "name")
		n.SetVar(v)
	} else {
		p.Errorf(n, "expected variable name")
	}
	p.Expect(n, "in", "in")
	if c := p.ParseExpr(); c != nil {
		n.SetCollection(c)
	} else {
		p.Errorf(n, "expected expression")
	}
	p.Expect(n, ")", ")")
	if s := p.parseEmbedded(n); s != nil {
		n.SetBody(s)
	}
	p.close(n)
	return n
}

func parseJump(p *Parser) ast.Node {
	kw := p.Peek().Text
	n := ast.NewJump(kw, nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	if (kw == "return" || kw == "throw") && !p.Peek().Is(";") {
		if x := p.ParseExpr(); x != nil {
			n.SetX(x)
		}
	}
	p.terminate(n)
	p.close(n)
	return n
}

func parseTry(p *Parser) ast.Node {
	n := ast.NewTry(nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	p.expectBlock(n, n.SetBody)
	p.close(n)
clauses:
	for p.Peek().Is("catch") || p.Peek().Is("finally") {
		switch c := p.dispatchClause(n).(type) {
		case *ast.Catch:
			n.Catches.Add(c)
		case *ast.Finally:
			n.SetFinally(c)
		default:
			break clauses
		}
		p.close(n)
	}
	if n.Catches.Len() == 0 && n.Finally == nil {
		p.Errorf(n, "expected 'catch' or 'finally'")
	}
	return n
}

func parseCatch(p *Parser) ast.Node {
	c := ast.NewCatch(nil, "", nil)
	p.Begin(c)
	p.Take(c, "kw")
	if p.Peek().Is("(") {
		p.Take(c, "(")
		if typ := p.ParseType(); typ != nil {
			c.SetType(typ)
		} else {
			p.Errorf(c, "expected exception type")
		}
		if tok := p.Peek(); tok.Kind == TokenIdent {
			v := ast.NewVar(tok.Text, nil)
			p.Begin(v)
			p.Take(v, "name")
			c.SetVar(v)
		}
		p.Expect(c, ")", ")")
	}
	if tok := p.Peek(); tok.Kind == TokenIdent && tok.Text == "when" {
		p.Take(c, "when")
		p.Expect(c, "when(", "(")
		if x := p.ParseExpr(); x != nil {
			c.SetWhen(x)
		}
		p.Expect(c, "when)", ")")
	}
	p.expectBlock(c, c.SetBody)
	p.close(c)
	return c
}

func parseFinally(p *Parser) ast.Node {
	f := ast.NewFinally(nil)
	p.Begin(f)
	p.Take(f, "kw")
	p.expectBlock(f, f.SetBody)
	p.close(f)
	return f
}

func parseSwitch(p *Parser) ast.Node {
	n := ast.NewSwitch(nil)
	p.ApplyPending(n, nil)
	p.Take(n, "kw")
	if x := p.parseCondition(n); x != nil {
		n.SetX(x)
	}
	if !p.Expect(n, "{", "{") {
		p.close(n)
		return n
	}
	for {
		tok := p.Peek()
		if tok.Kind == TokenEOF || tok.Is("}") {
			break
		}
		if tok.Is("case") || tok.Is("default") {
			if c, ok := p.dispatchClause(n).(*ast.Case); ok {
				n.Cases.Add(c)
				continue
			}
		}
		p.skipJunk(n, "case", "default")
	}
	p.Expect(n, "}", "}")
	p.close(n)
	return n
}

// caseLabel parses "case value:" or "default:".
func (p *Parser) caseLabel() *ast.Case {
	c := ast.NewCase(nil)
	p.Begin(c)
	kw := p.Take(c, "kw")
	if kw.Text == "case" {
		if v := p.ParseExpr(); v != nil {
			c.SetValue(v)
		} else {
			p.Errorf(c, "expected case value")
		}
	}
	p.Expect(c, ":", ":")
	return c
}

func parseCase(p *Parser) ast.Node {
	if p.Peek().Is("default") && !p.PeekN(1).Is(":") {
		return nil
	}
	c := p.caseLabel()
	p.parseBody(c, false, func(n ast.Node) {
		c.Stmts.Add(p.asStmt(n))
	}, func(tok Token) bool {
		return tok.Is("}") || tok.Is("case") || (tok.Is("default") && p.PeekN(1).Is(":"))
	})
	p.close(c)
	return c
}

func parseOrphanCase(p *Parser) ast.Node {
	if p.Peek().Is("default") && !p.PeekN(1).Is(":") {
		return nil
	}
	u := ast.NewUnrecognized()
	p.ApplyPending(u, nil)
	c := p.caseLabel()
	u.Parts.Add(c)
	p.close(u)
	p.Errorf(u, "'%s' outside 'switch'", kwText(c))
	return u
}

func kwText(c *ast.Case) string {
	if c.IsDefault() {
		return "default"
	}
	return "case"
}

// claimLocalDecl turns "Type name" fragments into a local declaration at
// '=', ';' or ','.
func claimLocalDecl(p *Parser) ast.Node {
	u := p.Unused()
	if len(u) < 2 || !isTypeLike(u[len(u)-2]) || !isSimpleName(u[len(u)-1]) {
		return nil
	}
	p.flushUnused(2)
	frags := p.ClaimUnused()
	d := ast.NewLocalDecl(nil)
	p.ApplyPending(d, frags[0])
	d.SetType(frags[0])
	p.declarators(d, frags[1], func(v *ast.VarDeclarator) { d.Vars.Add(v) })
	p.terminate(d)
	p.close(d)
	return d
}

// claimExprStmt ends an expression statement at ';'. Without a pending
// expression the ';' is an empty statement.
func claimExprStmt(p *Parser) ast.Node {
	if len(p.Unused()) == 0 {
		e := ast.NewEmptyStmt()
		p.ApplyPending(e, nil)
		p.Take(e, ";")
		return e
	}
	p.flushUnused(1)
	x := p.ClaimUnused()[0]
	s := ast.NewExprStmt(nil)
	p.ApplyPending(s, x)
	s.SetX(x)
	p.terminate(s)
	p.close(s)
	return s
}
