package ast

import "strings"

type AnnotationKind int

const (
	AnnComment AnnotationKind = iota
	AnnDocComment
	AnnAttribute
	AnnMessage
	// AnnSkipped holds source text the parser stepped over, verbatim.
	AnnSkipped
)

func (k AnnotationKind) String() string {
	switch k {
	case AnnComment:
		return "comment"
	case AnnDocComment:
		return "doc"
	case AnnAttribute:
		return "attribute"
	case AnnMessage:
		return "message"
	case AnnSkipped:
		return "skipped"
	}
	return "unknown"
}

// Placement says where an annotation renders relative to its node.
type Placement int

const (
	// PlacePrefix renders before the node's first token.
	PlacePrefix Placement = iota
	// PlaceEOL renders after the node's last token on the same line.
	PlaceEOL
	// PlacePostfix renders on its own line after the node.
	PlacePostfix
	// PlaceInfix renders before the node's own token named by Slot.
	PlaceInfix
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return "unknown"
}

// Origin tells which phase produced a diagnostic.
type Origin int

const (
	OriginParse Origin = iota
	OriginResolve
)

func (o Origin) String() string {
	if o == OriginResolve {
		return "resolve"
	}
	return "parse"
}

type Annotation struct {
	Kind  AnnotationKind
	Place Placement
	// Text is the full comment text including its delimiters, or the
	// message text of a diagnostic.
	Text string
	// Lead is the whitespace recorded before the annotation.
	Lead *string
	// Slot names the token an infix annotation precedes.
	Slot string
	// Attr is set for AnnAttribute and is owned by the annotated node.
	Attr     *Attribute
	Severity Severity
	Origin   Origin
}

func (a *Annotation) clone(owner Node) *Annotation {
	c := *a
	if a.Lead != nil {
		l := *a.Lead
		c.Lead = &l
	}
	if a.Attr != nil {
		c.Attr = cloneChild(owner, a.Attr)
	}
	return &c
}

// IsLineComment reports whether the annotation is a // comment or a
// preprocessor line, which forces a line break after it.
func (a *Annotation) IsLineComment() bool {
	if a.Kind != AnnComment && a.Kind != AnnDocComment {
		return false
	}
	return strings.HasPrefix(a.Text, "//") || strings.HasPrefix(a.Text, "#")
}

func (b *NodeBase) Annotations() []*Annotation {
	return b.annotations
}

// Annotate attaches a to the node. Attribute payloads are adopted.
func Annotate(n Node, a *Annotation) {
	if a.Attr != nil {
		a.Attr = adopt(n, a.Attr).(*Attribute)
	}
	b := n.Base()
	b.annotations = append(b.annotations, a)
}

// PrependAnnotations puts anns in front of the node's existing ones.
func PrependAnnotations(n Node, anns []*Annotation) {
	if len(anns) == 0 {
		return
	}
	for _, a := range anns {
		if a.Attr != nil {
			a.Attr = adopt(n, a.Attr).(*Attribute)
		}
	}
	b := n.Base()
	b.annotations = append(append([]*Annotation(nil), anns...), b.annotations...)
}

func RemoveAnnotation(n Node, a *Annotation) bool {
	b := n.Base()
	for i, x := range b.annotations {
		if x == a {
			b.annotations = append(b.annotations[:i], b.annotations[i+1:]...)
			if a.Attr != nil {
				detach(n, a.Attr)
			}
			return true
		}
	}
	return false
}

// AddComment attaches a comment. text must include the comment delimiters.
func AddComment(n Node, place Placement, text string) *Annotation {
	kind := AnnComment
	if strings.HasPrefix(text, "///") {
		kind = AnnDocComment
	}
	a := &Annotation{Kind: kind, Place: place, Text: text}
	Annotate(n, a)
	return a
}

// AddAttribute attaches attr as a prefix attribute section.
func AddAttribute(n Node, attr *Attribute) *Annotation {
	a := &Annotation{Kind: AnnAttribute, Place: PlacePrefix, Attr: attr}
	Annotate(n, a)
	return a
}

// Attributes returns the attribute sections attached to n.
func Attributes(n Node) []*Attribute {
	var out []*Attribute
	for _, a := range n.Base().annotations {
		if a.Attr != nil {
			out = append(out, a.Attr)
		}
	}
	return out
}

func attributeNodes(b *NodeBase) []Node {
	var out []Node
	for _, a := range b.annotations {
		if a.Attr != nil {
			out = append(out, a.Attr)
		}
	}
	return out
}

func replaceAttribute(owner Node, b *NodeBase, old, repl Node) bool {
	for _, a := range b.annotations {
		if a.Attr == nil || Node(a.Attr) != old {
			continue
		}
		if isNil(repl) {
			RemoveAnnotation(owner, a)
			return true
		}
		attr, ok := repl.(*Attribute)
		if !ok {
			panic("ast: an attribute annotation can only hold an Attribute")
		}
		detach(owner, a.Attr)
		a.Attr = adopt(owner, attr).(*Attribute)
		return true
	}
	return false
}

// Diagnostic is a message annotation together with the node it is
// attached to.
type Diagnostic struct {
	Node       Node
	Annotation *Annotation
}

func (d Diagnostic) Message() string { return d.Annotation.Text }

func (d Diagnostic) Severity() Severity { return d.Annotation.Severity }

func (d Diagnostic) Origin() Origin { return d.Annotation.Origin }

func (d Diagnostic) Pos() Position { return d.Node.Base().Span.Start }

func (d Diagnostic) String() string {
	return d.Pos().String() + ": " + d.Annotation.Severity.String() + ": " + d.Annotation.Text
}

// AddDiagnostic attaches a message annotation to n.
func AddDiagnostic(n Node, origin Origin, sev Severity, msg string) *Annotation {
	a := &Annotation{Kind: AnnMessage, Place: PlacePostfix, Text: msg, Severity: sev, Origin: origin}
	Annotate(n, a)
	return a
}

// Messages returns the diagnostics attached directly to n.
func Messages(n Node) []*Annotation {
	var out []*Annotation
	for _, a := range n.Base().annotations {
		if a.Kind == AnnMessage {
			out = append(out, a)
		}
	}
	return out
}

// Diagnostics collects every message annotation below root in source
// order.
func Diagnostics(root Node) []Diagnostic {
	var out []Diagnostic
	Walk(root, func(n Node) bool {
		for _, a := range n.Base().annotations {
			if a.Kind == AnnMessage {
				out = append(out, Diagnostic{Node: n, Annotation: a})
			}
		}
		return true
	})
	return out
}

// ClearDiagnostics removes every message of the given origin below root.
func ClearDiagnostics(root Node, origin Origin) {
	Walk(root, func(n Node) bool {
		b := n.Base()
		kept := b.annotations[:0]
		for _, a := range b.annotations {
			if a.Kind == AnnMessage && a.Origin == origin {
				continue
			}
			kept = append(kept, a)
		}
		for i := len(kept); i < len(b.annotations); i++ {
			b.annotations[i] = nil
		}
		b.annotations = kept
		return true
	})
}
