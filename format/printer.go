package format

import (
	"bytes"
	"io"
	"strings"

	"github.com/dhamidi/codedom/csharp/ast"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("codedom.format")

// Flags select what the printer produces.
type Flags uint

const (
	// Description renders a one-line signature: no bodies, members,
	// comments or terminators, and recorded layout is ignored.
	Description Flags = 1 << iota
	// ShowMessages renders diagnostics as block comments after the node
	// they are attached to.
	ShowMessages
)

// Source renders compilable text, reproducing recorded layout.
const Source Flags = 0

type Option func(*Printer)

// WithIndent sets the text used for one level of indentation.
func WithIndent(s string) Option {
	return func(p *Printer) {
		p.indentUnit = s
	}
}

// WithAlignedEnums makes Pretty mark every enum as aligned.
func WithAlignedEnums(on bool) Option {
	return func(p *Printer) {
		p.alignEnums = on
	}
}

// Printer renders ast nodes as text. A Printer is not safe for concurrent
// use; create one per goroutine.
type Printer struct {
	flags      Flags
	indentUnit string
	alignEnums bool

	buf    *bytes.Buffer
	depth  int
	atLead bool
	needNL bool
}

func NewPrinter(flags Flags, opts ...Option) *Printer {
	p := &Printer{flags: flags, indentUnit: "    "}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Render returns the text of n.
func (p *Printer) Render(n ast.Node) string {
	p.buf = &bytes.Buffer{}
	p.depth = startDepth(n)
	p.atLead = true
	p.needNL = false
	p.node(n, "")
	return p.buf.String()
}

func (p *Printer) Fprint(w io.Writer, n ast.Node) error {
	_, err := io.WriteString(w, p.Render(n))
	return err
}

// Pretty clears the recorded layout below n and renders it with the
// default rules. It modifies n.
func (p *Printer) Pretty(n ast.Node) string {
	ast.ResetLayout(n)
	if p.alignEnums {
		ast.Walk(n, func(c ast.Node) bool {
			if td, ok := c.(*ast.TypeDecl); ok && td.Kind() == ast.KindEnum {
				b := td.Base()
				b.SetFlags(b.Flags() | ast.FormatAligned)
			}
			return true
		})
	}
	return p.Render(n)
}

// Render returns the text of n using the default printer settings.
func Render(n ast.Node, flags Flags) string {
	return NewPrinter(flags).Render(n)
}

func Fprint(w io.Writer, n ast.Node, flags Flags) error {
	return NewPrinter(flags).Fprint(w, n)
}

// Pretty resets the layout of n and renders it with the default rules.
func Pretty(n ast.Node, opts ...Option) string {
	return NewPrinter(Source, opts...).Pretty(n)
}

// startDepth is the nesting level of n inside its tree, so that a member
// rendered on its own gets the indentation it would have in the file.
func startDepth(n ast.Node) int {
	d := 0
	for c := n.Base().Parent(); c != nil; c = c.Base().Parent() {
		switch x := c.(type) {
		case *ast.TypeDecl, *ast.Block, *ast.Property, *ast.Switch, *ast.Case:
			d++
		case *ast.NamespaceDecl:
			if !x.FileScoped {
				d++
			}
		}
	}
	return d
}

func (p *Printer) desc() bool {
	return p.flags&Description != 0
}

// write appends source text.
func (p *Printer) write(s string) {
	if s == "" {
		return
	}
	if p.needNL && !strings.HasPrefix(s, "\n") {
		p.buf.WriteString(p.nl(1))
	}
	p.needNL = false
	p.buf.WriteString(s)
	p.atLead = false
}

// space writes default spacing unless the current node's lead was just
// written.
func (p *Printer) space(s string) {
	if p.atLead || s == "" {
		return
	}
	if p.desc() && strings.Contains(s, "\n") {
		s = " "
	}
	if p.needNL && !strings.Contains(s, "\n") {
		s = p.nl(1)
	}
	p.needNL = false
	p.buf.WriteString(s)
}

// raw writes recorded whitespace.
func (p *Printer) raw(s string) {
	if s == "" {
		return
	}
	if p.needNL && !strings.Contains(s, "\n") {
		s = p.nl(1)
	}
	p.needNL = false
	p.buf.WriteString(s)
}

func (p *Printer) nl(lines int) string {
	return strings.Repeat("\n", max(lines, 1)) + strings.Repeat(p.indentUnit, p.depth)
}

func recorded(n ast.Node) bool {
	b := n.Base()
	return b.Layout.Space != nil || len(b.Layout.Gaps) > 0
}

// broken reports whether the parser flagged n, in which case a token with
// no recorded gap was missing from the source.
func broken(n ast.Node) bool {
	for _, a := range n.Base().Annotations() {
		if a.Kind == ast.AnnMessage && a.Origin == ast.OriginParse {
			return true
		}
	}
	return false
}

// lead writes the prefix annotations of n and the spacing before its
// first token. def is the spacing used when none was recorded.
func (p *Printer) lead(n ast.Node, def string) {
	if p.desc() {
		p.space(def)
		p.atLead = true
		return
	}
	b := n.Base()
	for _, a := range b.Annotations() {
		if a.Place != ast.PlacePrefix || a.Kind == ast.AnnMessage {
			continue
		}
		if a.Lead != nil {
			p.raw(*a.Lead)
		} else {
			p.space(def)
		}
		p.annotation(a)
		if a.Lead == nil {
			def = p.after(def)
		}
	}
	switch {
	case b.Layout.Space != nil:
		p.raw(*b.Layout.Space)
	case ast.HasNewLines(n):
		if lines := ast.NewLines(n); lines > 0 {
			p.raw(p.nl(lines))
		} else if !p.atLead {
			p.raw(" ")
		}
	case !recorded(n) || hasProgrammaticLead(b):
		p.space(def)
	}
	p.atLead = true
}

// after is the spacing that follows a programmatic prefix annotation.
func (p *Printer) after(def string) string {
	if strings.Contains(def, "\n") {
		return p.nl(1)
	}
	if def == "" {
		return " "
	}
	return def
}

func hasProgrammaticLead(b *ast.NodeBase) bool {
	for _, a := range b.Annotations() {
		if a.Place == ast.PlacePrefix && a.Kind != ast.AnnMessage && a.Lead == nil {
			return true
		}
	}
	return false
}

func (p *Printer) annotation(a *ast.Annotation) {
	switch a.Kind {
	case ast.AnnAttribute:
		if a.Attr != nil {
			p.attribute(a.Attr)
		}
		return
	case ast.AnnSkipped:
		p.write(a.Text)
		return
	}
	p.write(a.Text)
	if a.IsLineComment() {
		p.needNL = true
	}
}

// infix writes the annotations recorded in front of one of n's tokens.
func (p *Printer) infix(n ast.Node, slot string) {
	if p.desc() {
		return
	}
	for _, a := range n.Base().Annotations() {
		if a.Place != ast.PlaceInfix || a.Slot != slot || a.Kind == ast.AnnMessage {
			continue
		}
		if a.Lead != nil {
			p.raw(*a.Lead)
		} else {
			p.space(" ")
		}
		p.annotation(a)
	}
}

// tok writes one of n's own tokens. sep is the default spacing before
// it.
func (p *Printer) tok(n ast.Node, slot, text, sep string) {
	if p.desc() {
		p.space(sep)
		p.write(text)
		return
	}
	p.infix(n, slot)
	g, ok := n.Base().Layout.Gap(slot)
	switch {
	case ok && !g.Lead:
		p.raw(g.Text)
	case ok:
	case recorded(n) && broken(n):
		return
	default:
		p.space(sep)
	}
	p.write(text)
}

// optTok writes a token only when the parser saw it.
func (p *Printer) optTok(n ast.Node, slot, text string) {
	if !p.desc() && n.Base().Layout.HasGap(slot) {
		p.tok(n, slot, text, "")
	}
}

// sawToken reports whether the parser read the token in slot, even when
// what should follow it is missing.
func (p *Printer) sawToken(n ast.Node, slot string) bool {
	return !p.desc() && n.Base().Layout.HasGap(slot)
}

// trailer writes the annotations that follow n.
func (p *Printer) trailer(n ast.Node, eol bool) {
	if p.desc() {
		return
	}
	anns := n.Base().Annotations()
	if eol {
		for _, a := range anns {
			if a.Place == ast.PlaceEOL && a.Kind != ast.AnnMessage {
				p.eol(a)
			}
		}
	}
	for _, a := range anns {
		if a.Place == ast.PlacePostfix && a.Kind != ast.AnnMessage {
			if a.Lead != nil {
				p.raw(*a.Lead)
			} else {
				p.space(p.nl(1))
			}
			p.annotation(a)
		}
	}
	if p.flags&ShowMessages != 0 {
		for _, a := range ast.Messages(n) {
			p.write(" /* " + a.Severity.String() + ": " + a.Text + " */")
		}
	}
}

func (p *Printer) eol(a *ast.Annotation) {
	if a.Lead != nil {
		p.raw(*a.Lead)
	} else {
		p.raw(" ")
	}
	p.annotation(a)
}

// node renders n preceded by its lead.
func (p *Printer) node(n ast.Node, def string) {
	if ast.IsNil(n) {
		return
	}
	p.lead(n, def)
	p.render(n)
	nd, ok := n.(*ast.NamespaceDecl)
	p.trailer(n, !ok || !nd.FileScoped)
}

func (p *Printer) render(n ast.Node) {
	switch x := n.(type) {
	case *ast.CompilationUnit:
		p.compilationUnit(x)
	case *ast.Using:
		p.using(x)
	case *ast.NamespaceDecl:
		p.namespace(x)
	case *ast.TypeDecl:
		p.typeDecl(x)
	case *ast.EnumMember:
		p.enumMember(x)
	case *ast.Field:
		p.field(x)
	case *ast.VarDeclarator:
		p.varDecl(x)
	case *ast.Property:
		p.property(x)
	case *ast.Accessor:
		p.accessor(x)
	case *ast.Method:
		p.method(x)
	case *ast.Constructor:
		p.constructor(x)
	case *ast.Parameter:
		p.parameter(x)
	case *ast.TypeParameter:
		p.typeParam(x)
	case *ast.Attribute:
		p.attribute(x)
	case ast.Stmt:
		p.stmt(x)
	case ast.Expr:
		p.expr(x)
	default:
		log.Warningf("no rendering for %s", n.Kind())
	}
}

// capture renders fn into a separate buffer and returns the text.
func (p *Printer) capture(fn func()) string {
	saved := p.buf
	savedLead, savedNL := p.atLead, p.needNL
	p.buf = &bytes.Buffer{}
	p.atLead, p.needNL = true, false
	fn()
	s := p.buf.String()
	p.buf = saved
	p.atLead, p.needNL = savedLead, savedNL
	return s
}
