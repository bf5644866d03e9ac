package format

import (
	"strings"

	"github.com/dhamidi/codedom/csharp/ast"
)

func (p *Printer) stmt(s ast.Stmt) {
	switch x := s.(type) {
	case *ast.Block:
		p.block(x)
	case *ast.EmptyStmt:
		p.tok(x, ";", ";", "")
	case *ast.ExprStmt:
		p.node(x.X, "")
		if !x.NoTerminator {
			p.terminator(x)
		}
	case *ast.LocalDecl:
		p.mods(x, x.Mods)
		p.node(x.Type, " ")
		p.list(nodes(x.Vars.Items()), " ")
		if !x.NoTerminator {
			p.terminator(x)
		}
	case *ast.If:
		p.ifStmt(x)
	case *ast.Else:
		p.tok(x, "kw", "else", "")
		if _, ok := x.Body.(*ast.If); ok {
			p.node(x.Body, " ")
		} else {
			p.embedded(x, x.Body)
		}
	case *ast.While:
		p.tok(x, "kw", "while", "")
		p.cond(x, x.Cond)
		p.embedded(x, x.Body)
	case *ast.Do:
		p.doStmt(x)
	case *ast.For:
		p.forStmt(x)
	case *ast.ForEach:
		p.tok(x, "kw", "foreach", "")
		p.tok(x, "(", "(", " ")
		p.node(x.VarType, "")
		p.node(x.Var, " ")
		p.tok(x, "in", "in", " ")
		p.node(x.Collection, " ")
		p.tok(x, ")", ")", "")
		p.embedded(x, x.Body)
	case *ast.Jump:
		p.tok(x, "kw", x.Keyword(), "")
		p.node(x.X, " ")
		p.terminator(x)
	case *ast.Try:
		p.tok(x, "kw", "try", "")
		if p.desc() {
			return
		}
		p.node(x.Body, p.blockLead(x.Body))
		for _, c := range x.Catches.Items() {
			p.node(c, p.nl(1))
		}
		p.node(x.Finally, p.nl(1))
	case *ast.Catch:
		p.catch(x)
	case *ast.Finally:
		p.tok(x, "kw", "finally", "")
		if !p.desc() {
			p.node(x.Body, p.blockLead(x.Body))
		}
	case *ast.Switch:
		p.switchStmt(x)
	case *ast.Case:
		p.caseClause(x)
	case *ast.Unrecognized:
		p.unrecognized(x)
	}
}

func (p *Printer) terminator(n ast.Node) {
	if !p.desc() {
		p.tok(n, ";", ";", "")
	}
}

// cond renders a parenthesized condition.
func (p *Printer) cond(n ast.Node, e ast.Expr) {
	p.tok(n, "(", "(", " ")
	p.node(e, "")
	p.tok(n, ")", ")", "")
}

func (p *Printer) block(b *ast.Block) {
	if p.desc() {
		p.write("{ ... }")
		return
	}
	stmts := b.Stmts.Items()
	if !ast.HasBraces(b) {
		for _, s := range stmts {
			p.node(s, p.nl(1))
		}
		return
	}
	single := ast.IsSingleLine(b)
	p.tok(b, "{", "{", "")
	p.depth++
	for _, s := range stmts {
		p.node(s, p.lineOrSpace(single))
	}
	p.depth--
	p.tok(b, "}", "}", p.lineOrSpace(single))
}

// embedded renders the body of a control statement: a braced block in
// the usual place, any other statement on its own line one level deeper
// unless the owner is forced onto one line.
func (p *Printer) embedded(owner ast.Node, s ast.Stmt) {
	if ast.IsNil(s) || p.desc() {
		return
	}
	if b, ok := s.(*ast.Block); ok && ast.HasBraces(b) {
		p.node(b, p.blockLead(b))
		return
	}
	if forcedSingle(owner) {
		p.node(s, " ")
		return
	}
	p.depth++
	p.node(s, p.nl(1))
	p.depth--
}

func forcedSingle(n ast.Node) bool {
	f := n.Base().Flags()
	return f&ast.FormatSingleLineSet != 0 && f&ast.FormatSingleLine != 0
}

func (p *Printer) ifStmt(x *ast.If) {
	p.tok(x, "kw", "if", "")
	p.cond(x, x.Cond)
	if p.desc() {
		return
	}
	p.embedded(x, x.Then)
	if x.Else != nil {
		p.node(x.Else, p.lineOrSpace(forcedSingle(x)))
	}
}

func (p *Printer) doStmt(x *ast.Do) {
	p.tok(x, "kw", "do", "")
	p.embedded(x, x.Body)
	sep := p.nl(1)
	if b, ok := x.Body.(*ast.Block); forcedSingle(x) || ok && ast.HasBraces(b) && ast.IsSingleLine(b) {
		sep = " "
	}
	p.tok(x, "while", "while", sep)
	p.cond(x, x.Cond)
	p.terminator(x)
}

func (p *Printer) forStmt(x *ast.For) {
	p.tok(x, "kw", "for", "")
	p.tok(x, "(", "(", " ")
	if x.Decl != nil {
		p.node(x.Decl, "")
	} else {
		p.list(nodes(x.Inits.Items()), "")
	}
	p.tok(x, ";", ";", "")
	p.node(x.Cond, " ")
	p.tok(x, ";2", ";", "")
	p.list(nodes(x.Updates.Items()), " ")
	p.tok(x, ")", ")", "")
	p.embedded(x, x.Body)
}

func (p *Printer) catch(x *ast.Catch) {
	p.tok(x, "kw", "catch", "")
	if x.Type != nil {
		p.tok(x, "(", "(", " ")
		p.node(x.Type, "")
		p.node(x.Var, " ")
		p.tok(x, ")", ")", "")
	}
	if x.When != nil {
		p.tok(x, "when", "when", " ")
		p.tok(x, "when(", "(", " ")
		p.node(x.When, "")
		p.tok(x, "when)", ")", "")
	}
	if !p.desc() {
		p.node(x.Body, p.blockLead(x.Body))
	}
}

func (p *Printer) switchStmt(x *ast.Switch) {
	p.tok(x, "kw", "switch", "")
	p.cond(x, x.X)
	if p.desc() {
		return
	}
	p.tok(x, "{", "{", p.nl(1))
	p.depth++
	for _, c := range x.Cases.Items() {
		p.node(c, p.nl(1))
	}
	p.depth--
	p.tok(x, "}", "}", p.nl(1))
}

func (p *Printer) caseClause(c *ast.Case) {
	if c.IsDefault() {
		p.tok(c, "kw", "default", "")
	} else {
		p.tok(c, "kw", "case", "")
		p.node(c.Value, " ")
	}
	p.tok(c, ":", ":", "")
	if p.desc() {
		return
	}
	p.depth++
	for _, s := range c.Stmts.Items() {
		p.node(s, p.lineOrSpace(forcedSingle(c)))
	}
	p.depth--
}

func (p *Printer) unrecognized(u *ast.Unrecognized) {
	if p.desc() {
		p.write(strings.Join(u.Raw, " "))
		return
	}
	for i, part := range u.Parts.Items() {
		def := " "
		if i == 0 {
			def = ""
		}
		p.node(part, def)
	}
	for i, r := range u.Raw {
		p.tok(u, ast.RawSlot(i), r, " ")
	}
}
