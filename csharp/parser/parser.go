package parser

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("codedom.parser")

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithStartLine(line int) Option {
	return func(p *Parser) {
		p.startLine = line
	}
}

// WithTable parses with a custom parse-point table, usually a
// DefaultTable extended with extra points.
func WithTable(t *Table) Option {
	return func(p *Parser) {
		p.table = t
	}
}

// WithRegistry registers namespaces and types in reg instead of a fresh
// registry. Several parsers may share one registry concurrently.
func WithRegistry(reg *ast.Registry) Option {
	return func(p *Parser) {
		p.registry = reg
	}
}

type Parser struct {
	file      string
	startLine int
	table     *Table
	registry  *ast.Registry
	reader    io.Reader
	input     []byte
	tokens    []Token
	// claimed marks tokens whose trivia already belongs to a node.
	claimed []bool
	// taken counts the comments of a token that were attached to the
	// previous construct as end-of-line comments.
	taken []int
	pos   int
	stack []ast.Node
	body  *bodyState
	// junk holds skipped text waiting for the next token to be claimed.
	junk  []*ast.Annotation
	entry func(*Parser) ast.Node
}

// bodyState is the dispatch state of one body being parsed: the fragments
// that no parse point claimed yet and the modifiers and attributes read
// ahead of a declaration.
type bodyState struct {
	owner  ast.Node
	add    func(ast.Node)
	braced bool
	unused []ast.Expr
	pend   pending
	// after holds nodes to add once the node being built is added.
	after []ast.Node
}

type pending struct {
	anns  []*ast.Annotation
	space *string
	mods  ast.Modifiers
	gaps  map[string]ast.Gap
	infix []*ast.Annotation
	start ast.Position
}

func (pd *pending) isEmpty() bool {
	return len(pd.anns) == 0 && len(pd.mods) == 0
}

func newParser(r io.Reader, entry func(*Parser) ast.Node, opts []Option) *Parser {
	p := &Parser{
		startLine: 1,
		reader:    r,
		entry:     entry,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseCompilationUnit prepares a parser for a whole source file. Call
// Finish to run it.
func ParseCompilationUnit(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseCompilationUnit, opts)
}

func ParseExpression(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseExpressionEntry, opts)
}

// ParseStatement prepares a parser for a single statement as it would
// appear inside a method body.
func ParseStatement(r io.Reader, opts ...Option) *Parser {
	return newParser(r, (*Parser).parseStatementEntry, opts)
}

// Parse parses a compilation unit from src. Malformed input still yields
// a tree; problems are attached as diagnostics. The parser is recursive,
// so pathologically deep nesting can exhaust the goroutine stack.
func Parse(src []byte, opts ...Option) (*ast.CompilationUnit, error) {
	n, err := ParseCompilationUnit(bytes.NewReader(src), opts...).Finish()
	if err != nil {
		return nil, err
	}
	return n.(*ast.CompilationUnit), nil
}

func (p *Parser) readAll() error {
	if p.input != nil {
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p.file, err)
	}
	p.input = data
	return nil
}

func (p *Parser) tokenize() {
	lx := NewLexer(p.input, p.file)
	lx.SetLine(p.startLine)
	p.tokens = lx.All()
	p.claimed = make([]bool, len(p.tokens))
	p.taken = make([]int, len(p.tokens))
	p.pos = 0
	p.stack = nil
	p.junk = nil
	p.body = &bodyState{add: func(ast.Node) {}}
}

// IsComplete reports whether the input looks finished: every bracket is
// closed and it does not end with an operator. A line-oriented front end
// uses it to decide whether to read another line.
func (p *Parser) IsComplete() bool {
	if err := p.readAll(); err != nil || len(bytes.TrimSpace(p.input)) == 0 {
		return false
	}
	toks := NewLexer(p.input, p.file).All()
	depth := 0
	for _, t := range toks {
		switch {
		case t.Kind == TokenInvalid && strings.HasPrefix(t.Text, "\""):
			return false
		case t.Is("(") || t.Is("[") || t.Is("{"):
			depth++
		case t.Is(")") || t.Is("]") || t.Is("}"):
			depth--
		}
	}
	if depth > 0 || len(toks) < 2 {
		return depth <= 0
	}
	last := toks[len(toks)-2]
	if last.Kind == TokenOperator {
		switch last.Text {
		case ";", "}", ")", "]", "++", "--", "!":
			return true
		}
		return false
	}
	return true
}

// Finish runs the parser and returns the tree. The error is only set when
// reading the input failed.
func (p *Parser) Finish() (ast.Node, error) {
	if err := p.readAll(); err != nil {
		return nil, err
	}
	if p.registry == nil {
		p.registry = ast.NewRegistry()
	}
	if p.table == nil {
		p.table = DefaultTable()
	}
	p.tokenize()
	n := p.entry(p)
	log.Debugf("parsed %s: %d tokens", p.file, len(p.tokens))
	return n, nil
}

// Registry returns the registry the parser declares namespaces and types
// in.
func (p *Parser) Registry() *ast.Registry {
	return p.registry
}

func (p *Parser) parseCompilationUnit() ast.Node {
	cu := ast.NewCompilationUnit(p.file)
	cu.Registry = p.registry
	p.parseBody(cu, false, func(n ast.Node) {
		addMember(&cu.Usings, &cu.Members, n)
	}, nil)
	p.Take(cu, "eof")
	return cu
}

func (p *Parser) parseExpressionEntry() ast.Node {
	e := p.ParseExpr()
	if e == nil {
		return nil
	}
	if tok := p.Peek(); tok.Kind != TokenEOF {
		p.Errorf(e, "unexpected %s", tok)
	}
	return e
}

func (p *Parser) parseStatementEntry() ast.Node {
	b := ast.NewBlock()
	p.parseBody(b, false, func(n ast.Node) {
		b.Stmts.Add(p.asStmt(n))
	}, nil)
	if b.Stmts.Len() == 0 {
		return nil
	}
	s := b.Stmts.At(0)
	if b.Stmts.Len() > 1 {
		p.Errorf(s, "unexpected %s", b.Stmts.At(1).Kind())
	}
	ast.Detach(s)
	return s
}

func addMember(usings *ast.ChildList[*ast.Using], members *ast.ChildList[ast.Node], n ast.Node) {
	if u, ok := n.(*ast.Using); ok && members.Len() == 0 {
		usings.Add(u)
		return
	}
	members.Add(n)
}

// Peek returns the current token.
func (p *Parser) Peek() Token {
	return p.PeekN(0)
}

// PeekN returns the token n positions ahead of the current one.
func (p *Parser) PeekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) comments(i int) []Comment {
	return p.tokens[i].Trivia.Comments[p.taken[i]:]
}

func commentAnn(c Comment, place ast.Placement, slot string) *ast.Annotation {
	kind := ast.AnnComment
	if c.Doc() {
		kind = ast.AnnDocComment
	}
	lead := c.Lead
	return &ast.Annotation{Kind: kind, Place: place, Text: c.Text, Lead: &lead, Slot: slot}
}

// Begin makes the current token the first token of n: its comments become
// prefix annotations and the whitespace after them n's Space. Nothing
// happens when an enclosing node already claimed the token.
func (p *Parser) Begin(n ast.Node) {
	b := n.Base()
	if !b.Span.Start.IsValid() {
		b.Span.Start = p.Peek().Pos
	}
	i := p.pos
	if i >= len(p.tokens) || p.claimed[i] {
		return
	}
	p.claimed[i] = true
	for _, a := range p.junk {
		a.Place = ast.PlacePrefix
		ast.Annotate(n, a)
	}
	p.junk = nil
	for _, c := range p.comments(i) {
		ast.Annotate(n, commentAnn(c, ast.PlacePrefix, ""))
	}
	b.Layout.SetSpace(p.tokens[i].Trivia.Space)
}

// Take consumes the current token as the token slot of n, recording the
// text before it as the slot's gap.
func (p *Parser) Take(n ast.Node, slot string) Token {
	tok := p.Peek()
	if p.pos >= len(p.tokens) || (tok.Kind == TokenEOF && slot != "eof") {
		return tok
	}
	b := n.Base()
	b.Layout.SetGap(slot, p.gap(p.pos, slot, func(a *ast.Annotation) { ast.Annotate(n, a) }))
	if !b.Span.Start.IsValid() {
		b.Span.Start = tok.Pos
	}
	b.Span.End = tok.End
	p.pos++
	return tok
}

func (p *Parser) gap(i int, slot string, annotate func(*ast.Annotation)) ast.Gap {
	if p.claimed[i] {
		return ast.Gap{Lead: true}
	}
	p.claimed[i] = true
	for _, a := range p.junk {
		a.Place = ast.PlaceInfix
		a.Slot = slot
		annotate(a)
	}
	p.junk = nil
	for _, c := range p.comments(i) {
		annotate(commentAnn(c, ast.PlaceInfix, slot))
	}
	return ast.Gap{Text: p.tokens[i].Trivia.Space}
}

// Expect takes the current token when its text is text and reports a
// diagnostic on n otherwise.
func (p *Parser) Expect(n ast.Node, slot, text string) bool {
	if p.Peek().Is(text) {
		p.Take(n, slot)
		return true
	}
	p.Errorf(n, "expected '%s'", text)
	return false
}

// terminate takes the ';' that ends n.
func (p *Parser) terminate(n ast.Node) {
	p.Expect(n, ";", ";")
}

// Errorf attaches a parse diagnostic to n.
func (p *Parser) Errorf(n ast.Node, format string, args ...any) {
	b := n.Base()
	if !b.Span.Start.IsValid() {
		b.Span.Start = p.Peek().Pos
		b.Span.End = p.Peek().End
	}
	msg := fmt.Sprintf(format, args...)
	log.Debugf("%s: %s", b.Span.Start, msg)
	ast.AddDiagnostic(n, ast.OriginParse, ast.SeverityError, msg)
}

// close extends the span of n to the last consumed token.
func (p *Parser) close(n ast.Node) {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Base().Span.End = p.tokens[p.pos-1].End
	}
}

// wrap makes left the first child of n: n takes over its lead and start.
func (p *Parser) wrap(n, left ast.Node) {
	ast.HoistLead(n, left)
	n.Base().Span.Start = left.Base().Span.Start
}

// attachEOL moves a comment that follows n on the same line onto n.
func (p *Parser) attachEOL(n ast.Node) {
	i := p.pos
	if i >= len(p.tokens) || p.claimed[i] || p.taken[i] > 0 || len(p.junk) > 0 {
		return
	}
	cs := p.tokens[i].Trivia.Comments
	if len(cs) == 0 || strings.Contains(cs[0].Lead, "\n") || strings.HasPrefix(cs[0].Text, "#") {
		return
	}
	ast.Annotate(n, commentAnn(cs[0], ast.PlaceEOL, ""))
	p.taken[i] = 1
}

// claimLead claims the trivia of the current token for the declaration
// being read ahead: comments go to the pending annotations and the
// whitespace is returned.
func (p *Parser) claimLead() string {
	pd := &p.body.pend
	i := p.pos
	if !pd.start.IsValid() {
		pd.start = p.tokens[i].Pos
	}
	if p.claimed[i] {
		return ""
	}
	p.claimed[i] = true
	for _, a := range p.junk {
		a.Place = ast.PlacePrefix
		pd.anns = append(pd.anns, a)
	}
	p.junk = nil
	for _, c := range p.comments(i) {
		pd.anns = append(pd.anns, commentAnn(c, ast.PlacePrefix, ""))
	}
	return p.tokens[i].Trivia.Space
}

// takePending consumes the current token into the pending declaration
// state under slot.
func (p *Parser) takePending(slot string) {
	pd := &p.body.pend
	if pd.gaps == nil {
		pd.gaps = make(map[string]ast.Gap)
	}
	pd.gaps[slot] = p.gap(p.pos, slot, func(a *ast.Annotation) { pd.infix = append(pd.infix, a) })
	p.pos++
}

func acceptsMods(n ast.Node) bool {
	switch n.(type) {
	case *ast.TypeDecl, *ast.Field, *ast.Property, *ast.Accessor, *ast.Method,
		*ast.Constructor, *ast.LocalDecl, *ast.Lambda:
		return true
	}
	return false
}

func setMods(n ast.Node, mods ast.Modifiers) {
	switch x := n.(type) {
	case *ast.TypeDecl:
		x.Mods = mods
	case *ast.Field:
		x.Mods = mods
	case *ast.Property:
		x.Mods = mods
	case *ast.Accessor:
		x.Mods = mods
	case *ast.Method:
		x.Mods = mods
	case *ast.Constructor:
		x.Mods = mods
	case *ast.LocalDecl:
		x.Mods = mods
	case *ast.Lambda:
		x.Mods = mods
	}
}

// ApplyPending gives n the modifiers, attributes and comments read ahead
// of it. first is the fragment n starts with, if any; without pending
// modifiers its lead becomes n's lead. When neither exists n begins at
// the current token.
func (p *Parser) ApplyPending(n ast.Node, first ast.Node) {
	if len(p.body.pend.mods) > 0 && !acceptsMods(n) {
		p.body.add(p.pendingNode())
	}
	pd := p.body.pend
	p.body.pend = pending{}
	b := n.Base()
	switch {
	case pd.space != nil:
		b.Layout.Space = pd.space
	case first != nil:
		ast.HoistLead(n, first)
	}
	ast.PrependAnnotations(n, pd.anns)
	for k, g := range pd.gaps {
		b.Layout.SetGap(k, g)
	}
	for _, a := range pd.infix {
		ast.Annotate(n, a)
	}
	setMods(n, pd.mods)
	switch {
	case pd.start.IsValid():
		b.Span.Start = pd.start
	case first != nil:
		b.Span.Start = first.Base().Span.Start
	}
	if first == nil && b.Layout.Space == nil {
		p.Begin(n)
	}
}

// pendingNode turns pending modifiers that no declaration took into an
// unrecognized node.
func (p *Parser) pendingNode() *ast.Unrecognized {
	pd := p.body.pend
	p.body.pend = pending{}
	u := ast.NewUnrecognized()
	b := u.Base()
	b.Layout.Space = pd.space
	b.Span.Start = pd.start
	ast.PrependAnnotations(u, pd.anns)
	for i, m := range pd.mods {
		slot := ast.RawSlot(i)
		u.Raw = append(u.Raw, m)
		b.Layout.SetGap(slot, pd.gaps["mod:"+m])
		for _, a := range pd.infix {
			if a.Slot == "mod:"+m {
				a.Slot = slot
				ast.Annotate(u, a)
			}
		}
	}
	if len(pd.mods) > 0 {
		p.Errorf(u, "unexpected modifier '%s'", pd.mods[0])
	} else {
		p.Errorf(u, "attribute without declaration")
	}
	return u
}

// dropPending attaches pending text that no item of a list took to owner,
// in front of the token slot.
func (p *Parser) dropPending(owner ast.Node, slot string) {
	pd := p.body.pend
	if pd.isEmpty() {
		return
	}
	p.body.pend = pending{}
	for _, a := range pd.anns {
		a.Place, a.Slot = ast.PlaceInfix, slot
		ast.Annotate(owner, a)
	}
	for i, m := range pd.mods {
		lead := pd.gaps["mod:"+m].Text
		if i == 0 && pd.space != nil {
			lead = *pd.space
		}
		ast.Annotate(owner, &ast.Annotation{Kind: ast.AnnSkipped, Place: ast.PlaceInfix, Slot: slot, Text: m, Lead: &lead})
	}
	if len(pd.mods) > 0 {
		p.Errorf(owner, "unexpected modifier '%s'", pd.mods[0])
	} else {
		p.Errorf(owner, "attribute without declaration")
	}
}

// skipToken moves the current token, with its trivia, into the skipped
// text waiting for the next claimed token.
func (p *Parser) skipToken() {
	tok := p.Peek()
	if tok.Kind == TokenEOF {
		return
	}
	lead := ""
	if !p.claimed[p.pos] {
		lead = Trivia{Comments: p.comments(p.pos), Space: tok.Trivia.Space}.String()
	}
	p.claimed[p.pos] = true
	p.pos++
	if n := len(p.junk); n > 0 {
		p.junk[n-1].Text += lead + tok.Text
		return
	}
	p.junk = append(p.junk, &ast.Annotation{Kind: ast.AnnSkipped, Text: tok.Text, Lead: &lead})
}

// skipJunk steps over tokens up to one of stops at bracket depth zero,
// consuming at least one token. It never crosses a ';' or a '}' that
// closes an outer construct.
func (p *Parser) skipJunk(owner ast.Node, stops ...string) {
	first := p.Peek()
	if first.Kind == TokenEOF {
		return
	}
	depth := 0
	for i := 0; ; i++ {
		tok := p.Peek()
		if tok.Kind == TokenEOF {
			break
		}
		if i > 0 && depth == 0 && (stopsAt(tok, stops) ||
			tok.Kind == TokenOperator && (tok.Text == ";" || tok.Text == "}")) {
			break
		}
		p.skipToken()
		if tok.Kind != TokenOperator {
			continue
		}
		if tok.Text == "(" || tok.Text == "[" || tok.Text == "{" {
			depth++
		} else if tok.Text == ")" || tok.Text == "]" || tok.Text == "}" {
			if depth == 0 {
				break
			}
			depth--
		}
	}
	p.Errorf(owner, "unexpected %s", first)
}

func stopsAt(tok Token, stops []string) bool {
	switch tok.Kind {
	case TokenOperator, TokenIdent, TokenKeyword:
		return slices.Contains(stops, tok.Text)
	}
	return false
}

// parseBody runs the dispatch loop over the contents of owner until stop
// matches or the input ends. A braced body also ends at '}'. Every node
// produced is passed to add.
func (p *Parser) parseBody(owner ast.Node, braced bool, add func(ast.Node), stop func(Token) bool) {
	outer := p.body
	p.body = &bodyState{owner: owner, add: add, braced: braced}
	p.push(owner)
	defer func() {
		p.pop()
		p.body = outer
	}()
	for {
		tok := p.Peek()
		if tok.Kind == TokenEOF || (braced && tok.Is("}")) || (stop != nil && stop(tok)) {
			break
		}
		start := p.pos
		n := p.dispatch()
		switch {
		case n != nil:
			p.emit(n)
		case p.pos != start:
			// modifiers or attributes, kept pending
		case p.fragment():
		default:
			p.emit(p.unrecognized())
		}
	}
	p.flush()
}

// emit adds n to the current body after the leftovers that precede it.
func (p *Parser) emit(n ast.Node) {
	p.flush()
	p.attachEOL(n)
	b := p.body
	b.add(n)
	for len(b.after) > 0 {
		next := b.after[0]
		b.after = b.after[1:]
		b.add(next)
	}
}

// flush turns pending modifiers and unclaimed fragments into nodes.
func (p *Parser) flush() {
	b := p.body
	if !b.pend.isEmpty() {
		b.add(p.pendingNode())
	}
	if len(b.unused) == 0 {
		return
	}
	frags := b.unused
	b.unused = nil
	if !p.inBlock() {
		u := ast.NewUnrecognized()
		p.wrap(u, frags[0])
		for _, f := range frags {
			u.Parts.Add(f)
		}
		p.close(u)
		p.Errorf(u, "incomplete declaration")
		b.add(u)
		return
	}
	for i := 0; i < len(frags); i++ {
		var s ast.Stmt
		if i+1 < len(frags) && isTypeLike(frags[i]) && isSimpleName(frags[i+1]) {
			d := ast.NewLocalDecl(nil)
			p.wrap(d, frags[i])
			d.SetType(frags[i])
			d.Vars.Add(p.varFrom(frags[i+1]))
			d.Base().Span.End = frags[i+1].Base().Span.End
			d.NoTerminator = true
			s = d
			i++
		} else {
			x := ast.NewExprStmt(nil)
			p.wrap(x, frags[i])
			x.SetX(frags[i])
			x.Base().Span.End = frags[i].Base().Span.End
			x.NoTerminator = true
			s = x
		}
		p.Errorf(s, "expected ';'")
		b.add(s)
	}
}

// flushUnused flushes all but the last keep fragments. Pending modifiers
// stay for the construct that claims the rest.
func (p *Parser) flushUnused(keep int) {
	b := p.body
	if len(b.unused) <= keep {
		return
	}
	tail := slices.Clone(b.unused[len(b.unused)-keep:])
	b.unused = b.unused[:len(b.unused)-keep]
	pend := b.pend
	b.pend = pending{}
	p.flush()
	b.pend = pend
	b.unused = tail
}

// Unused returns the fragments parsed at this position that no parse
// point has claimed yet.
func (p *Parser) Unused() []ast.Expr {
	return p.body.unused
}

// ClaimUnused takes the unclaimed fragments.
func (p *Parser) ClaimUnused() []ast.Expr {
	u := p.body.unused
	p.body.unused = nil
	return u
}

// inBlock reports whether the current position holds statements rather
// than declarations.
func (p *Parser) inBlock() bool {
	for i := len(p.stack) - 1; i >= 0; i-- {
		switch k := p.stack[i].Kind(); {
		case k == ast.KindBlock || k == ast.KindCase:
			return true
		case barrier(k):
			return false
		}
	}
	return false
}

// fragment parses a piece of a construct whose meaning is decided by a
// later token and pushes it onto the unused buffer. Declaration bodies
// read types; blocks read expressions, and a plain name after a type.
func (p *Parser) fragment() bool {
	b := p.body
	var e ast.Expr
	if p.inBlock() {
		if len(b.unused) == 1 && isTypeLike(b.unused[0]) && p.Peek().Kind == TokenIdent {
			e = p.parseName(true, false)
		} else {
			e = p.ParseExpr()
		}
	} else {
		e = p.ParseType()
	}
	if e == nil {
		return false
	}
	b.unused = append(b.unused, e)
	return true
}

// unrecognized wraps the unclaimed fragments and the tokens up to the end
// of the current construct. It stops after a ';' or a balanced '}' at
// depth zero and before the '}' closing the enclosing body.
func (p *Parser) unrecognized() ast.Node {
	u := ast.NewUnrecognized()
	parts := p.ClaimUnused()
	var first ast.Node
	if len(parts) > 0 {
		first = parts[0]
	}
	p.ApplyPending(u, first)
	for _, x := range parts {
		u.Parts.Add(x)
	}
	start := p.Peek()
	depth := 0
	for i := 0; ; i++ {
		tok := p.Peek()
		if tok.Kind == TokenEOF || (depth == 0 && tok.Is("}") && p.body.braced) {
			break
		}
		p.Take(u, ast.RawSlot(i))
		u.Raw = append(u.Raw, tok.Text)
		if tok.Kind == TokenString || tok.Kind == TokenChar {
			continue
		}
		switch tok.Text {
		case "(", "[", "{":
			depth++
			continue
		case ")", "]":
			if depth > 0 {
				depth--
			}
			continue
		case "}":
			if depth > 0 {
				depth--
			}
			if depth > 0 {
				continue
			}
		case ";":
			if depth > 0 {
				continue
			}
		default:
			continue
		}
		break
	}
	p.close(u)
	if len(u.Raw) > 0 {
		p.Errorf(u, "unexpected %s", start)
	} else {
		p.Errorf(u, "incomplete declaration")
	}
	return u
}

// asStmt wraps a node that cannot stand in a statement list.
func (p *Parser) asStmt(n ast.Node) ast.Stmt {
	if s, ok := n.(ast.Stmt); ok {
		return s
	}
	u := ast.NewUnrecognized()
	p.wrap(u, n)
	u.Parts.Add(n)
	u.Base().Span.End = n.Base().Span.End
	p.Errorf(u, "%s not allowed here", n.Kind())
	return u
}

// currentNamespace returns the registry namespace that declarations at
// the current position belong to.
func (p *Parser) currentNamespace() *ast.Namespace {
	for i := len(p.stack) - 1; i >= 0; i-- {
		if nd, ok := p.stack[i].(*ast.NamespaceDecl); ok && nd.Namespace != nil {
			return nd.Namespace
		}
	}
	return p.registry.Global()
}
