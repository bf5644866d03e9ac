package format

import (
	"github.com/dhamidi/codedom/csharp/ast"
)

func (p *Printer) compilationUnit(cu *ast.CompilationUnit) {
	if p.desc() {
		p.write(cu.Path)
		return
	}
	p.body(nil, cu.Usings.Items(), cu.Members.Items())
	p.tok(cu, "eof", "", "\n")
}

// body renders the usings and members of a compilation unit or
// namespace. prev is the node the first member follows, if any.
func (p *Printer) body(prev ast.Node, usings []*ast.Using, members []ast.Node) {
	for _, u := range usings {
		p.node(u, p.nl(memberLines(prev, u)))
		prev = u
	}
	p.members(prev, members)
}

func (p *Printer) members(prev ast.Node, items []ast.Node) {
	for _, m := range items {
		p.node(m, p.nl(memberLines(prev, m)))
		prev = m
	}
}

// memberLines is the number of line breaks before a programmatic member
// that follows prev.
func memberLines(prev, n ast.Node) int {
	if prev == nil {
		return 1
	}
	_, afterUsing := prev.(*ast.Using)
	switch n.(type) {
	case *ast.Using:
		if afterUsing {
			return 1
		}
	case *ast.EnumMember, *ast.Unrecognized, *ast.Attribute:
		if !afterUsing {
			return 1
		}
	case *ast.Field:
		if _, ok := prev.(*ast.Field); ok {
			return 1
		}
	case *ast.Property:
		if _, ok := prev.(*ast.Property); ok && ast.IsSingleLine(n) && ast.IsSingleLine(prev) {
			return 1
		}
	}
	return 2
}

func (p *Printer) mods(n ast.Node, mods ast.Modifiers) {
	for _, m := range mods {
		p.tok(n, "mod:"+m, m, " ")
	}
}

// item renders one element of a comma separated list. The separator is
// written when the item is not last or when the source had a trailing
// one.
func (p *Printer) item(n ast.Node, def string, comma bool) {
	p.lead(n, def)
	p.render(n)
	if comma {
		p.tok(n, ",", ",", "")
	} else {
		p.optTok(n, ",", ",")
	}
	p.trailer(n, true)
}

func (p *Printer) list(items []ast.Node, first string) {
	for i, it := range items {
		def := " "
		if i == 0 {
			def = first
		}
		p.item(it, def, i < len(items)-1)
	}
}

func nodes[T ast.Node](items []T) []ast.Node {
	out := make([]ast.Node, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

func (p *Printer) using(u *ast.Using) {
	p.tok(u, "kw", "using", "")
	if u.Static {
		p.tok(u, "static", "static", " ")
	}
	if u.Alias != "" {
		p.tok(u, "alias", u.Alias, " ")
		p.tok(u, "=", "=", " ")
	}
	p.node(u.Target, " ")
	if !p.desc() {
		p.tok(u, ";", ";", "")
	}
}

func (p *Printer) namespace(n *ast.NamespaceDecl) {
	p.tok(n, "kw", "namespace", "")
	p.node(n.Name, " ")
	if p.desc() {
		return
	}
	if n.FileScoped {
		p.tok(n, ";", ";", "")
		for _, a := range n.Base().Annotations() {
			if a.Place == ast.PlaceEOL && a.Kind != ast.AnnMessage {
				p.eol(a)
			}
		}
		p.body(n, n.Usings.Items(), n.Members.Items())
		return
	}
	p.tok(n, "{", "{", p.nl(1))
	p.depth++
	p.body(nil, n.Usings.Items(), n.Members.Items())
	p.depth--
	p.tok(n, "}", "}", p.nl(1))
	p.optTok(n, "tail;", ";")
}

func (p *Printer) typeDecl(td *ast.TypeDecl) {
	p.mods(td, td.Mods)
	p.tok(td, "kw", td.Keyword(), " ")
	p.tok(td, "name", td.Name, " ")
	p.typeParams(td, td.TypeParams.Items())
	if td.Bases.Len() > 0 {
		p.tok(td, ":", ":", " ")
		p.list(nodes(td.Bases.Items()), " ")
	}
	if p.desc() {
		return
	}
	if td.Where != nil {
		p.node(td.Where, " ")
	}
	single := ast.IsSingleLine(td)
	p.tok(td, "{", "{", p.lineOrSpace(single))
	p.depth++
	switch {
	case td.Kind() == ast.KindEnum && td.Flags()&ast.FormatAligned != 0:
		p.alignedEnum(td.Members.Items())
	case td.Kind() == ast.KindEnum:
		items := td.Members.Items()
		for i, m := range items {
			_, member := m.(*ast.EnumMember)
			p.item(m, p.lineOrSpace(single), member && i < len(items)-1)
		}
	case single:
		for _, m := range td.Members.Items() {
			p.node(m, " ")
		}
	default:
		p.members(nil, td.Members.Items())
	}
	p.depth--
	p.tok(td, "}", "}", p.lineOrSpace(single))
	p.optTok(td, "tail;", ";")
}

func (p *Printer) lineOrSpace(single bool) string {
	if single {
		return " "
	}
	return p.nl(1)
}

func (p *Printer) typeParams(owner ast.Node, tps []*ast.TypeParameter) {
	if len(tps) == 0 {
		return
	}
	p.tok(owner, "<", "<", "")
	p.list(nodes(tps), "")
	p.tok(owner, ">", ">", "")
}

func (p *Printer) typeParam(tp *ast.TypeParameter) {
	if tp.Variance != "" {
		p.tok(tp, "variance", tp.Variance, "")
	}
	p.tok(tp, "name", tp.Name, " ")
}

func (p *Printer) enumMember(m *ast.EnumMember) {
	p.tok(m, "name", m.Name, "")
	if m.Value != nil || p.sawToken(m, "=") {
		p.tok(m, "=", "=", " ")
		p.node(m.Value, " ")
	}
}

func (p *Printer) field(f *ast.Field) {
	p.mods(f, f.Mods)
	p.node(f.Type, " ")
	p.list(nodes(f.Vars.Items()), " ")
	if !p.desc() {
		p.tok(f, ";", ";", "")
	}
}

func (p *Printer) varDecl(v *ast.VarDeclarator) {
	p.tok(v, "name", v.Name, " ")
	if !p.desc() && (v.Init != nil || p.sawToken(v, "=")) {
		p.tok(v, "=", "=", " ")
		p.node(v.Init, " ")
	}
}

func (p *Printer) property(pr *ast.Property) {
	p.mods(pr, pr.Mods)
	p.node(pr.Type, " ")
	p.tok(pr, "name", pr.Name, " ")
	if pr.Arrow != nil {
		if p.desc() {
			return
		}
		p.tok(pr, "=>", "=>", " ")
		p.node(pr.Arrow, " ")
		p.tok(pr, ";", ";", "")
		return
	}
	single := ast.IsSingleLine(pr) || p.desc()
	p.tok(pr, "{", "{", p.lineOrSpace(single))
	p.depth++
	for _, a := range pr.Accessors.Items() {
		p.node(a, p.lineOrSpace(single))
	}
	p.depth--
	p.tok(pr, "}", "}", p.lineOrSpace(single))
	if !p.desc() && (pr.Init != nil || p.sawToken(pr, "=")) {
		p.tok(pr, "=", "=", " ")
		p.node(pr.Init, " ")
		p.tok(pr, ";", ";", "")
	}
}

func (p *Printer) accessor(a *ast.Accessor) {
	p.mods(a, a.Mods)
	p.tok(a, "kw", a.Keyword, " ")
	if p.desc() {
		p.write(";")
		return
	}
	p.funcBody(a, a.Body, a.Arrow)
}

// funcBody renders a block body, an expression body or the ';' of a
// member without a body.
func (p *Printer) funcBody(n ast.Node, body *ast.Block, arrow ast.Expr) {
	switch {
	case body != nil:
		p.node(body, p.blockLead(body))
	case arrow != nil:
		p.tok(n, "=>", "=>", " ")
		p.node(arrow, " ")
		p.tok(n, ";", ";", "")
	default:
		p.tok(n, ";", ";", "")
	}
}

func (p *Printer) blockLead(b *ast.Block) string {
	if b == nil {
		return ""
	}
	return p.lineOrSpace(ast.IsSingleLine(b))
}

func (p *Printer) method(m *ast.Method) {
	p.mods(m, m.Mods)
	p.node(m.ReturnType, " ")
	p.tok(m, "name", m.Name, " ")
	p.typeParams(m, m.TypeParams.Items())
	p.tok(m, "(", "(", "")
	p.list(nodes(m.Params.Items()), "")
	p.tok(m, ")", ")", "")
	if p.desc() {
		return
	}
	if m.Where != nil {
		p.node(m.Where, " ")
	}
	p.funcBody(m, m.Body, m.Arrow)
}

func (p *Printer) constructor(c *ast.Constructor) {
	p.mods(c, c.Mods)
	p.tok(c, "name", c.Name, " ")
	p.tok(c, "(", "(", "")
	p.list(nodes(c.Params.Items()), "")
	p.tok(c, ")", ")", "")
	if p.desc() {
		return
	}
	if c.Initializer != nil {
		p.tok(c, ":", ":", " ")
		p.node(c.Initializer, " ")
	}
	p.funcBody(c, c.Body, c.Arrow)
}

func (p *Printer) parameter(prm *ast.Parameter) {
	if prm.Modifier != "" {
		p.tok(prm, "mod", prm.Modifier, "")
	}
	p.node(prm.Type, " ")
	if prm.Name != "" {
		p.tok(prm, "name", prm.Name, " ")
	}
	if !p.desc() && (prm.Default != nil || p.sawToken(prm, "=")) {
		p.tok(prm, "=", "=", " ")
		p.node(prm.Default, " ")
	}
}

func (p *Printer) attribute(a *ast.Attribute) {
	p.tok(a, "[", "[", "")
	first := ""
	if a.Target != "" {
		p.tok(a, "target", a.Target, "")
		p.tok(a, ":", ":", "")
		first = " "
	}
	p.list(nodes(a.Items.Items()), first)
	p.tok(a, "]", "]", "")
}
