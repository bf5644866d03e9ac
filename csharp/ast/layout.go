package ast

import "strings"

// FormatFlags control how the renderer presents a node. A flag pair such
// as FormatSingleLineSet/FormatSingleLine distinguishes "explicitly off"
// from "not set, use the default for this kind".
type FormatFlags uint32

const (
	FormatNewLinesSet FormatFlags = 1 << iota
	FormatSingleLineSet
	FormatSingleLine
	FormatNoBraces
	FormatNoIndent
	FormatInfixNewLine
	FormatAligned
	FormatBracesSet
)

// Gap is the exact text that preceded one of a node's own tokens.
type Gap struct {
	Text string
	// Lead is set when the token's trivia was claimed as the lead of the
	// node (or an ancestor). The renderer then uses the lead spacing when
	// the token is first, and the default spacing otherwise.
	Lead bool
}

// Layout records the whitespace the parser saw around a node. A node built
// programmatically has an empty layout and is rendered with defaults.
type Layout struct {
	// Space is the whitespace immediately before the node's first token,
	// after any prefix annotations. Nil when not recorded.
	Space *string
	// Gaps holds the whitespace before each token owned directly by the
	// node, keyed by slot name ("kw", "name", "(", ";", "mod:public", ...).
	Gaps map[string]Gap
}

func (l Layout) clone() Layout {
	c := Layout{}
	if l.Space != nil {
		s := *l.Space
		c.Space = &s
	}
	if len(l.Gaps) > 0 {
		c.Gaps = make(map[string]Gap, len(l.Gaps))
		for k, v := range l.Gaps {
			c.Gaps[k] = v
		}
	}
	return c
}

func (l *Layout) SetSpace(s string) {
	l.Space = &s
}

func (l *Layout) SetGap(slot string, g Gap) {
	if l.Gaps == nil {
		l.Gaps = make(map[string]Gap)
	}
	l.Gaps[slot] = g
}

func (l *Layout) Gap(slot string) (Gap, bool) {
	g, ok := l.Gaps[slot]
	return g, ok
}

// HasGap reports whether the slot was recorded, which for list separators
// also means the separator itself was present.
func (l *Layout) HasGap(slot string) bool {
	_, ok := l.Gaps[slot]
	return ok
}

func (l *Layout) DeleteGap(slot string) {
	delete(l.Gaps, slot)
}

// HoistLead moves the lead of src (its Space and prefix annotations) onto
// dst. It is used when a node built earlier becomes the first child of a
// node that wraps it.
func HoistLead(dst, src Node) {
	if isNil(dst) || isNil(src) || dst == src {
		return
	}
	sb, db := src.Base(), dst.Base()
	if sb.Layout.Space != nil {
		db.Layout.Space = sb.Layout.Space
		sb.Layout.Space = nil
	}
	var moved, kept []*Annotation
	for _, a := range sb.annotations {
		if a.Place == PlacePrefix && a.Kind != AnnMessage {
			moved = append(moved, a)
		} else {
			kept = append(kept, a)
		}
	}
	if len(moved) == 0 {
		return
	}
	sb.annotations = kept
	for _, a := range moved {
		if a.Attr != nil {
			a.Attr.parent = dst
		}
	}
	db.annotations = append(moved, db.annotations...)
}

// AbsorbToken records the lead of frag as the gap of one of dst's own
// tokens. The parser uses it when a fragment that was parsed as a name
// turns out to be a plain token of the enclosing construct. Comments and
// diagnostics of frag move to dst.
func AbsorbToken(dst Node, slot string, frag Node) {
	if isNil(dst) || isNil(frag) {
		return
	}
	fb, db := frag.Base(), dst.Base()
	g := Gap{Lead: true}
	if fb.Layout.Space != nil {
		g = Gap{Text: *fb.Layout.Space}
	}
	db.Layout.SetGap(slot, g)
	for _, a := range fb.annotations {
		if a.Place == PlacePrefix {
			a.Place = PlaceInfix
			a.Slot = slot
		}
		if a.Attr != nil {
			a.Attr.parent = dst
		}
		db.annotations = append(db.annotations, a)
	}
	fb.annotations = nil
}

// ResetLayout drops every recorded gap below n so that the renderer falls
// back to the default rules. Comments and explicit flags are kept.
func ResetLayout(n Node) {
	Walk(n, func(c Node) bool {
		b := c.Base()
		b.Layout = Layout{}
		for _, a := range b.annotations {
			a.Lead = nil
		}
		return true
	})
}

// NewLines returns the number of line breaks before n: the explicit value
// when one was set, otherwise the count in the recorded lead whitespace.
func NewLines(n Node) int {
	b := n.Base()
	if b.flags&FormatNewLinesSet != 0 {
		return b.newLines
	}
	if b.Layout.Space != nil {
		return strings.Count(*b.Layout.Space, "\n")
	}
	return 0
}

// SetNewLines fixes the number of line breaks before n and discards the
// recorded lead whitespace.
func SetNewLines(n Node, lines int) {
	b := n.Base()
	b.newLines = lines
	b.flags |= FormatNewLinesSet
	b.Layout.Space = nil
}

// HasNewLines reports whether an explicit line count was set.
func HasNewLines(n Node) bool {
	return n.Base().flags&FormatNewLinesSet != 0
}

// IsFirstOnLine reports whether n starts a line in its recorded layout or
// by explicit setting.
func IsFirstOnLine(n Node) bool {
	b := n.Base()
	if b.flags&FormatNewLinesSet != 0 {
		return b.newLines > 0
	}
	if b.Layout.Space != nil {
		return strings.Contains(*b.Layout.Space, "\n") || (b.Span.Start.IsValid() && b.Span.Start.Column == 1)
	}
	switch n.(type) {
	case Stmt, *TypeDecl, *NamespaceDecl, *Using, *Field, *Property, *Method, *Constructor, *EnumMember:
		return true
	}
	return false
}

// HasBraces reports whether a body is rendered inside braces.
func HasBraces(n Node) bool {
	return n.Base().flags&FormatNoBraces == 0
}

// SetHasBraces toggles the braces around a block. A block that holds more
// than one statement always keeps them.
func SetHasBraces(n Node, on bool) {
	if b, ok := n.(*Block); ok && !on && b.Stmts.Len() > 1 {
		panic("ast: a block with several statements needs braces")
	}
	n.Base().setFlag(FormatNoBraces, !on)
	n.Base().flags |= FormatBracesSet
}

// IsSingleLine reports whether n renders on one line. Explicit settings
// win; otherwise the recorded layout decides, and for programmatic nodes
// the answer is computed from the children.
func IsSingleLine(n Node) bool {
	b := n.Base()
	if b.flags&FormatSingleLineSet != 0 {
		return b.flags&FormatSingleLine != 0
	}
	if hasLayout(b) && b.Span.Start.IsValid() && b.Span.End.IsValid() {
		return b.Span.Start.Line == b.Span.End.Line
	}
	switch x := n.(type) {
	case *Block:
		return x.Stmts.Len() == 0
	case *Property:
		if x.Arrow != nil {
			return true
		}
		for _, a := range x.Accessors.Items() {
			if !IsSingleLine(a) {
				return false
			}
		}
		return true
	case *Accessor:
		return x.Body == nil || IsSingleLine(x.Body)
	case *Method:
		return x.Body == nil
	case *Constructor:
		return x.Body == nil
	case *TypeDecl:
		return x.Members.Len() == 0
	case *NamespaceDecl:
		return false
	case Stmt:
		for _, c := range n.Children() {
			if _, ok := c.(*Block); ok && !IsSingleLine(c) {
				return false
			}
		}
		return true
	}
	for _, c := range n.Children() {
		if !IsSingleLine(c) {
			return false
		}
	}
	return true
}

// SetSingleLine fixes the single-line state of n. Forcing a node onto one
// line also forces its nested blocks, and drops recorded line breaks of
// the statements inside so the first statement follows the brace.
func SetSingleLine(n Node, on bool) {
	b := n.Base()
	b.flags |= FormatSingleLineSet
	b.setFlag(FormatSingleLine, on)
	if !on {
		return
	}
	for _, c := range n.Children() {
		switch c.(type) {
		case *Block, *Accessor:
			SetSingleLine(c, true)
		case Stmt:
			cb := c.Base()
			cb.Layout.Space = nil
			cb.flags &^= FormatNewLinesSet
			SetSingleLine(c, true)
		}
	}
}

func hasLayout(b *NodeBase) bool {
	return b.Layout.Space != nil || len(b.Layout.Gaps) > 0
}
