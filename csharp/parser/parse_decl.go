package parser

import (
	"slices"

	"github.com/dhamidi/codedom/csharp/ast"
)

var (
	unitLevel    = []ast.Kind{ast.KindCompilationUnit, ast.KindNamespaceDecl}
	typeLevel    = append(slices.Clone(unitLevel), typeBodies...)
	attrLevel    = append(slices.Clone(typeLevel), ast.KindEnum)
	accessorKeys = []string{"get", "set", "init", "add", "remove"}
)

var typeKeywords = map[string]ast.Kind{
	"class":     ast.KindClass,
	"struct":    ast.KindStruct,
	"interface": ast.KindInterface,
	"enum":      ast.KindEnum,
}

func registerDeclarations(t *Table) {
	t.AddParsePoint("using", 0, parseUsing, unitLevel...)
	t.AddParsePoint("namespace", 0, parseNamespace, unitLevel...)
	for kw := range typeKeywords {
		t.AddParsePoint(kw, 0, parseTypeDecl, typeLevel...)
	}

	for _, m := range modifiers {
		if m == "new" {
			t.AddParsePoint(m, 0, parseModifier, typeBodies...)
			continue
		}
		t.AddParsePoint(m, 0, parseModifier)
	}
	t.AddParsePoint("event", 0, parseModifier, typeBodies...)
	t.AddParsePoint("partial", 0, parsePartial)
	t.AddParsePoint("async", 0, parseAsyncModifier, typeBodies...)
	t.AddParsePoint("[", 0, parseAttributeSection, attrLevel...)

	t.AddParsePoint("(", 10, claimMethod, typeBodies...)
	t.AddParsePoint("{", 10, claimProperty, typeBodies...)
	t.AddParsePoint("=>", 10, claimArrowProperty, typeBodies...)
	for _, text := range []string{"=", ";", ","} {
		t.AddParsePoint(text, 10, claimField, typeBodies...)
	}

	for _, kw := range accessorKeys {
		t.AddParsePoint(kw, 10, parseAccessor, ast.KindProperty)
		t.AddParsePoint(kw, 0, parseOrphanAccessor)
	}
}

// parseUsing parses a using directive: an imported namespace, a static
// type import or an alias.
func parseUsing(p *Parser) ast.Node {
	u := ast.NewUsing(nil)
	p.ApplyPending(u, nil)
	p.Take(u, "kw")
	if p.Peek().Is("static") {
		u.Static = true
		p.Take(u, "static")
	}
	var target ast.Expr
	switch {
	case p.Peek().Kind == TokenIdent && p.PeekN(1).Is("="):
		u.Alias = p.Peek().Text
		p.Take(u, "alias")
		p.Take(u, "=")
		target = p.ParseType()
	case u.Static:
		target = p.ParseType()
	default:
		target, u.Namespaces = p.parseNamespaceName(p.registry.Global())
	}
	if target == nil {
		p.Errorf(u, "expected namespace or type")
		p.skipJunk(u, ";")
	} else {
		u.SetTarget(target)
	}
	p.terminate(u)
	p.close(u)
	return u
}

// parseNamespaceName reads a dotted name and declares each part as a
// namespace below parent. The name is built from references to the
// declared namespaces.
func (p *Parser) parseNamespaceName(parent *ast.Namespace) (ast.Expr, []*ast.Namespace) {
	if p.Peek().Kind != TokenIdent {
		return nil, nil
	}
	var toks []Token
	for i := 0; ; i += 2 {
		if p.PeekN(i).Kind != TokenIdent {
			break
		}
		toks = append(toks, p.PeekN(i))
		if !p.PeekN(i+1).Is(".") {
			break
		}
	}
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	nss := p.registry.Declare(parent, parts)

	var name ast.Expr
	for i, ns := range nss {
		r := ast.NewRef(ns)
		r.Name = toks[i].Text
		if name == nil {
			p.Begin(r)
			p.Take(r, "name")
			name = r
			continue
		}
		d := ast.NewDot(nil, nil)
		p.wrap(d, name)
		d.SetX(name)
		p.Take(d, ".")
		p.Begin(r)
		p.Take(r, "name")
		d.SetName(r)
		p.close(d)
		name = d
	}
	return name, nss
}

func parseNamespace(p *Parser) ast.Node {
	if p.PeekN(1).Kind != TokenIdent {
		return nil
	}
	nd := ast.NewNamespaceDecl(nil)
	p.ApplyPending(nd, nil)
	p.Take(nd, "kw")
	name, nss := p.parseNamespaceName(p.currentNamespace())
	nd.SetName(name)
	nd.Namespaces = nss
	nd.Namespace = nss[len(nss)-1]
	add := func(n ast.Node) { addMember(&nd.Usings, &nd.Members, n) }

	if p.Peek().Is(";") {
		nd.FileScoped = true
		p.Take(nd, ";")
		p.attachEOL(nd)
		p.parseBody(nd, false, add, nil)
		p.close(nd)
		return nd
	}
	if !p.Expect(nd, "{", "{") {
		p.close(nd)
		return nd
	}
	p.parseBody(nd, true, add, nil)
	p.Expect(nd, "}", "}")
	if p.Peek().Is(";") {
		p.Take(nd, "tail;")
	}
	p.close(nd)
	return nd
}

func parseTypeDecl(p *Parser) ast.Node {
	tok := p.Peek()
	if p.PeekN(1).Kind != TokenIdent {
		return nil
	}
	p.flushUnused(0)
	td := ast.NewTypeDecl(typeKeywords[tok.Text], p.PeekN(1).Text)
	nested := false
	if parent := p.Parent(); parent != nil && parent.Kind().IsTypeDecl() {
		nested = true
	}
	p.ApplyPending(td, nil)
	p.Take(td, "kw")
	p.Take(td, "name")
	if !nested {
		ns := p.currentNamespace()
		td.Namespace = ns
		ns.Add(td)
	}

	if p.Peek().Is("<") {
		p.Take(td, "<")
		parseList(p, td, ">", p.typeParam, func(tp *ast.TypeParameter) { td.TypeParams.Add(tp) })
		p.Expect(td, ">", ">")
	}
	if p.Peek().Is(":") {
		p.Take(td, ":")
		p.baseList(td)
	}
	if p.Peek().Is("where") {
		td.SetWhere(p.parseWhere())
	}

	if !p.Expect(td, "{", "{") {
		p.close(td)
		return td
	}
	if td.Kind() == ast.KindEnum {
		p.enumBody(td)
	} else {
		p.parseBody(td, true, func(n ast.Node) { td.Members.Add(n) }, nil)
	}
	p.Expect(td, "}", "}")
	if p.Peek().Is(";") {
		p.Take(td, "tail;")
	}
	p.close(td)
	return td
}

func (p *Parser) baseList(td *ast.TypeDecl) {
	for {
		t := p.ParseType()
		if t == nil {
			p.Errorf(td, "expected base type")
			if !p.Peek().Is("{") {
				p.skipJunk(td, "{", "where")
			}
			return
		}
		td.Bases.Add(t)
		if !p.Peek().Is(",") {
			return
		}
		p.Take(t, ",")
	}
}

func (p *Parser) typeParam() (*ast.TypeParameter, bool) {
	tok := p.Peek()
	variance := (tok.Is("in") || tok.Is("out")) && p.PeekN(1).Kind == TokenIdent
	if !variance && tok.Kind != TokenIdent {
		return nil, false
	}
	tp := ast.NewTypeParameter("")
	p.Begin(tp)
	if variance {
		tp.Variance = tok.Text
		p.Take(tp, "variance")
	}
	tp.Name = p.Peek().Text
	p.Take(tp, "name")
	return tp, true
}

// parseWhere keeps constraint clauses verbatim up to the body.
func (p *Parser) parseWhere() *ast.Unrecognized {
	u := ast.NewUnrecognized()
	p.Begin(u)
	depth := 0
	for i := 0; ; i++ {
		tok := p.Peek()
		if tok.Kind == TokenEOF {
			break
		}
		if depth == 0 && (tok.Is("{") || tok.Is(";") || tok.Is("=>")) {
			break
		}
		switch tok.Text {
		case "(", "<":
			depth++
		case ")", ">":
			depth = max(depth-1, 0)
		}
		p.Take(u, ast.RawSlot(i))
		u.Raw = append(u.Raw, tok.Text)
	}
	p.close(u)
	return u
}

// enumBody reads enum members. Attributes on members are collected the
// same way as in other bodies.
func (p *Parser) enumBody(td *ast.TypeDecl) {
	outer := p.body
	p.body = &bodyState{owner: td, add: func(n ast.Node) { td.Members.Add(n) }, braced: true}
	p.push(td)
	defer func() {
		p.pop()
		p.body = outer
	}()
	for {
		tok := p.Peek()
		if tok.Kind == TokenEOF || tok.Is("}") {
			break
		}
		switch {
		case tok.Is("["):
			parseAttributeSection(p)
		case tok.Kind == TokenIdent:
			m := ast.NewEnumMember(tok.Text, nil)
			p.ApplyPending(m, nil)
			p.Take(m, "name")
			if p.Peek().Is("=") {
				p.Take(m, "=")
				if v := p.ParseExpr(); v != nil {
					m.SetValue(v)
				} else {
					p.Errorf(m, "expected value")
				}
			}
			p.close(m)
			if !p.Peek().Is(",") && !p.Peek().Is("}") {
				p.skipJunk(m, ",")
			}
			if p.Peek().Is(",") {
				p.Take(m, ",")
			}
			p.attachEOL(m)
			td.Members.Add(m)
		default:
			p.skipJunk(td, ",")
			if p.Peek().Is(",") {
				p.skipToken()
			}
		}
	}
	p.dropPending(td, "}")
}

// parseModifier records a modifier for the declaration that follows.
func parseModifier(p *Parser) ast.Node {
	p.flushUnused(0)
	p.addModifier()
	return nil
}

func (p *Parser) addModifier() {
	pd := &p.body.pend
	tok := p.Peek()
	if pd.space == nil {
		s := p.claimLead()
		pd.space = &s
	}
	pd.mods = append(pd.mods, tok.Text)
	p.takePending("mod:" + tok.Text)
}

// parsePartial treats partial as a modifier only in front of a type or a
// method.
func parsePartial(p *Parser) ast.Node {
	next := p.PeekN(1)
	if _, ok := typeKeywords[next.Text]; !ok && !next.Is("void") {
		return nil
	}
	return parseModifier(p)
}

func parseAsyncModifier(p *Parser) ast.Node {
	next := p.PeekN(1)
	if next.Kind != TokenIdent && !isBuiltinType(next.Text) && !slices.Contains(modifiers, next.Text) {
		return nil
	}
	return parseModifier(p)
}

// parseAttributeSection reads [...] and keeps it pending as a prefix
// annotation of the next declaration. Assembly and module attributes
// stand alone.
func parseAttributeSection(p *Parser) ast.Node {
	if len(p.Unused()) > 0 {
		return nil
	}
	if global := p.PeekN(1).Text; (global == "assembly" || global == "module") &&
		p.PeekN(2).Is(":") && p.body.pend.isEmpty() {
		attr := ast.NewAttribute()
		p.Begin(attr)
		p.attributeSection(attr)
		return attr
	}
	pd := &p.body.pend
	lead := p.claimLead()
	attr := ast.NewAttribute()
	p.attributeSection(attr)
	pd.anns = append(pd.anns, &ast.Annotation{
		Kind:  ast.AnnAttribute,
		Place: ast.PlacePrefix,
		Attr:  attr,
		Lead:  &lead,
	})
	return nil
}

func (p *Parser) attributeSection(attr *ast.Attribute) {
	p.Take(attr, "[")
	if (p.Peek().Kind == TokenIdent || p.Peek().Kind == TokenKeyword) && p.PeekN(1).Is(":") {
		attr.Target = p.Peek().Text
		p.Take(attr, "target")
		p.Take(attr, ":")
	}
	parseList(p, attr, "]", p.exprItem, func(e ast.Expr) { attr.Items.Add(e) })
	p.Expect(attr, "]", "]")
	p.close(attr)
}

func isName(e ast.Expr) bool {
	_, ok := e.(*ast.UnresolvedRef)
	return ok
}

// isSimpleName reports whether e is a bare identifier: no type argument
// list, not even a broken one, and no parse diagnostics.
func isSimpleName(e ast.Expr) bool {
	n, ok := e.(*ast.UnresolvedRef)
	return ok && n.TypeArgs.Len() == 0 && !n.Layout.HasGap("<") && len(ast.Messages(n)) == 0
}

// isTypeLike reports whether a fragment can be read as a type.
func isTypeLike(e ast.Expr) bool {
	switch x := e.(type) {
	case *ast.UnresolvedRef:
		return true
	case *ast.Ref:
		return x.Target.SymbolKind() == ast.SymType
	case *ast.Dot:
		return x.Op != "?." && x.Name != nil && isTypeLike(x.X)
	case *ast.ArrayType:
		return x.Size == nil && isTypeLike(x.Elem)
	case *ast.NullableType:
		return true
	}
	return false
}

// memberFrags reports whether the unused fragments end in a type and a
// name, and claims them.
func (p *Parser) memberFrags(name func(ast.Expr) bool) (ast.Expr, ast.Expr, bool) {
	u := p.Unused()
	if len(u) < 2 || !isTypeLike(u[len(u)-2]) || !name(u[len(u)-1]) {
		return nil, nil, false
	}
	p.flushUnused(2)
	frags := p.ClaimUnused()
	return frags[0], frags[1], true
}

// claimMethod turns "Type Name" into a method, or a lone name matching
// the enclosing type into a constructor, at '('.
func claimMethod(p *Parser) ast.Node {
	u := p.Unused()
	if len(u) == 0 {
		return nil
	}
	if typ, name, ok := p.memberFrags(isName); ok {
		return p.parseMethod(typ, name.(*ast.UnresolvedRef))
	}
	last := u[len(u)-1]
	td, ok := p.Parent().(*ast.TypeDecl)
	if n, named := ast.NameOf(last); !ok || !named || !isSimpleName(last) || n != td.Name {
		return nil
	}
	p.flushUnused(1)
	return p.parseConstructor(p.ClaimUnused()[0])
}

func (p *Parser) parseMethod(ret ast.Expr, name *ast.UnresolvedRef) ast.Node {
	m := ast.NewMethod(nil, name.Name, nil, nil)
	p.ApplyPending(m, ret)
	m.SetReturnType(ret)
	ast.AbsorbToken(m, "name", name)
	nb, mb := name.Base(), m.Base()
	for _, slot := range []string{"<", ">"} {
		if g, ok := nb.Layout.Gap(slot); ok {
			mb.Layout.SetGap(slot, g)
		}
	}
	for _, arg := range name.TypeArgs.Items() {
		tn, _ := ast.NameOf(arg)
		tp := ast.NewTypeParameter(tn)
		ast.HoistLead(tp, arg)
		if g, ok := arg.Base().Layout.Gap(","); ok {
			tp.Base().Layout.SetGap(",", g)
		}
		ast.AbsorbToken(tp, "name", arg)
		tp.Base().Span = arg.Base().Span
		if !isSimpleName(arg) {
			p.Errorf(tp, "expected type parameter name")
		}
		m.TypeParams.Add(tp)
	}
	p.parseParams(m, func(prm *ast.Parameter) { m.Params.Add(prm) })
	if p.Peek().Is("where") {
		m.SetWhere(p.parseWhere())
	}
	p.parseBodyOrTerm(m, m.SetBody, m.SetArrow)
	p.close(m)
	return m
}

func (p *Parser) parseConstructor(name ast.Expr) ast.Node {
	n, _ := ast.NameOf(name)
	c := ast.NewConstructor(n, nil, nil)
	p.ApplyPending(c, name)
	ast.AbsorbToken(c, "name", name)
	p.parseParams(c, func(prm *ast.Parameter) { c.Params.Add(prm) })
	if p.Peek().Is(":") {
		p.Take(c, ":")
		init := p.ParseExpr()
		if call, ok := init.(*ast.Call); ok {
			c.SetInitializer(call)
		} else {
			p.Errorf(c, "expected 'base(...)' or 'this(...)'")
		}
	}
	p.parseBodyOrTerm(c, c.SetBody, c.SetArrow)
	p.close(c)
	return c
}

func (p *Parser) parseParams(owner ast.Node, add func(*ast.Parameter)) {
	p.Take(owner, "(")
	parseList(p, owner, ")", func() (*ast.Parameter, bool) { return p.parseParam(false) }, add)
	p.Expect(owner, ")", ")")
}

// parseBodyOrTerm parses a block body, an expression body or a bare ';'.
func (p *Parser) parseBodyOrTerm(n ast.Node, setBody func(*ast.Block), setArrow func(ast.Expr)) {
	switch tok := p.Peek(); {
	case tok.Is("{"):
		setBody(p.ParseBlock())
	case tok.Is("=>"):
		p.Take(n, "=>")
		if x := p.ParseExpr(); x != nil {
			setArrow(x)
		} else {
			p.Errorf(n, "expected expression")
		}
		p.terminate(n)
	case tok.Is(";"):
		p.Take(n, ";")
	default:
		p.Errorf(n, "expected '{' or ';'")
	}
}

// parseParam parses one parameter. In a lambda the type may be left out.
func (p *Parser) parseParam(lambda bool) (*ast.Parameter, bool) {
	tok := p.Peek()
	mod := tok.Kind == TokenKeyword && slices.Contains([]string{"ref", "out", "in", "params", "this"}, tok.Text)
	if !mod && tok.Kind != TokenIdent && !isBuiltinType(tok.Text) {
		return nil, false
	}
	prm := ast.NewParameter(nil, "")
	p.Begin(prm)
	if mod {
		prm.Modifier = tok.Text
		p.Take(prm, "mod")
	}
	typ := p.ParseType()
	switch {
	case typ == nil:
		p.Errorf(prm, "expected parameter type")
	case p.Peek().Kind == TokenIdent:
		prm.SetType(typ)
		prm.Name = p.Peek().Text
		p.Take(prm, "name")
	case lambda && !mod && isSimpleName(typ):
		prm.Name, _ = ast.NameOf(typ)
		ast.AbsorbToken(prm, "name", typ)
	default:
		prm.SetType(typ)
		p.Errorf(prm, "expected parameter name")
	}
	if p.Peek().Is("=") {
		p.Take(prm, "=")
		if d := p.ParseExpr(); d != nil {
			prm.SetDefault(d)
		} else {
			p.Errorf(prm, "expected default value")
		}
	}
	p.close(prm)
	return prm, true
}

// claimProperty turns "Type Name" into a property at '{'.
func claimProperty(p *Parser) ast.Node {
	typ, name, ok := p.memberFrags(isSimpleName)
	if !ok {
		return nil
	}
	pr := p.newProperty(typ, name)
	p.Take(pr, "{")
	p.accessorList(pr)
	p.Expect(pr, "}", "}")
	if p.Peek().Is("=") {
		p.Take(pr, "=")
		if x := p.ParseExpr(); x != nil {
			pr.SetInit(x)
		} else {
			p.Errorf(pr, "expected initializer")
		}
		p.terminate(pr)
	}
	p.close(pr)
	return pr
}

func claimArrowProperty(p *Parser) ast.Node {
	typ, name, ok := p.memberFrags(isSimpleName)
	if !ok {
		return nil
	}
	pr := p.newProperty(typ, name)
	p.Take(pr, "=>")
	if x := p.ParseExpr(); x != nil {
		pr.SetArrow(x)
	} else {
		p.Errorf(pr, "expected expression")
	}
	p.terminate(pr)
	p.close(pr)
	return pr
}

func (p *Parser) newProperty(typ, name ast.Expr) *ast.Property {
	n, _ := ast.NameOf(name)
	pr := ast.NewProperty(nil, n)
	p.ApplyPending(pr, typ)
	pr.SetType(typ)
	ast.AbsorbToken(pr, "name", name)
	return pr
}

// accessorList reads the accessors of pr. Anything else inside the braces
// is skipped.
func (p *Parser) accessorList(pr *ast.Property) {
	outer := p.body
	p.body = &bodyState{owner: pr, add: func(ast.Node) {}, braced: true}
	p.push(pr)
	defer func() {
		p.pop()
		p.body = outer
	}()
	for {
		tok := p.Peek()
		if tok.Kind == TokenEOF || tok.Is("}") {
			break
		}
		if slices.Contains(accessorKeys, tok.Text) || tok.Is("[") || slices.Contains(modifiers, tok.Text) {
			start := p.pos
			n := p.dispatch()
			if a, ok := n.(*ast.Accessor); ok {
				p.attachEOL(a)
				pr.Accessors.Add(a)
				continue
			}
			if p.pos != start {
				continue
			}
		}
		p.skipJunk(pr, accessorKeys...)
	}
	p.dropPending(pr, "}")
}

func parseAccessor(p *Parser) ast.Node {
	a := ast.NewAccessor(p.Peek().Text, nil)
	p.ApplyPending(a, nil)
	p.Take(a, "kw")
	p.parseBodyOrTerm(a, a.SetBody, a.SetArrow)
	p.close(a)
	return a
}

// parseOrphanAccessor reports an accessor outside a property.
func parseOrphanAccessor(p *Parser) ast.Node {
	next := p.PeekN(1)
	if len(p.Unused()) > 0 || !(next.Is("{") || next.Is("=>") || next.Is(";")) {
		return nil
	}
	kw := p.Peek().Text
	u := ast.NewUnrecognized()
	p.ApplyPending(u, nil)
	u.Parts.Add(parseAccessor(p).(*ast.Accessor))
	p.close(u)
	p.Errorf(u, "'%s' outside a property", kw)
	return u
}

// claimField turns "Type name" into a field at '=', ';' or ','.
func claimField(p *Parser) ast.Node {
	typ, name, ok := p.memberFrags(isSimpleName)
	if !ok {
		return nil
	}
	f := ast.NewField(nil)
	p.ApplyPending(f, typ)
	f.SetType(typ)
	p.declarators(f, name, func(v *ast.VarDeclarator) { f.Vars.Add(v) })
	p.terminate(f)
	p.close(f)
	return f
}

// declarators parses "name [= init] {, name [= init]}". A non-nil name is
// the already parsed first name.
func (p *Parser) declarators(owner ast.Node, name ast.Expr, add func(*ast.VarDeclarator)) {
	for {
		var v *ast.VarDeclarator
		switch {
		case name != nil:
			v = p.varFrom(name)
			name = nil
		case p.Peek().Kind == TokenIdent:
			v = ast.NewVar(p.Peek().Text, nil)
			p.Begin(v)
			p.Take(v, "name")
		default:
			p.Errorf(owner, "expected variable name")
			return
		}
		if p.Peek().Is("=") {
			p.Take(v, "=")
			if x := p.ParseExpr(); x != nil {
				v.SetInit(x)
			} else {
				p.Errorf(v, "expected initializer")
			}
		}
		p.close(v)
		add(v)
		if !p.Peek().Is(",") {
			return
		}
		p.Take(v, ",")
	}
}

// varFrom turns a name fragment into a declarator that keeps its layout.
func (p *Parser) varFrom(name ast.Expr) *ast.VarDeclarator {
	n, _ := ast.NameOf(name)
	v := ast.NewVar(n, nil)
	ast.HoistLead(v, name)
	ast.AbsorbToken(v, "name", name)
	v.Base().Span = name.Base().Span
	return v
}
