package ast

import (
	"fmt"
	"reflect"
)

type Kind int

const (
	KindInvalid Kind = iota

	// Compilation unit level
	KindCompilationUnit
	KindUsing
	KindNamespaceDecl

	// Type declarations
	KindClass
	KindStruct
	KindInterface
	KindEnum

	// Members
	KindEnumMember
	KindField
	KindVarDeclarator
	KindProperty
	KindAccessor
	KindMethod
	KindConstructor
	KindParameter
	KindTypeParameter
	KindAttribute

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindLocalDecl
	KindIf
	KindElse
	KindWhile
	KindDo
	KindFor
	KindForEach
	KindReturn
	KindBreak
	KindContinue
	KindThrow
	KindTry
	KindCatch
	KindFinally
	KindSwitch
	KindCase
	KindUnrecognized

	// Expressions
	KindLiteral
	KindUnresolvedRef
	KindRef
	KindAmbiguousRef
	KindBinary
	KindUnary
	KindPostfix
	KindConditional
	KindCall
	KindIndex
	KindDot
	KindParen
	KindNew
	KindCast
	KindArrayType
	KindNullableType
	KindThis
	KindBase
	KindInitList
	KindLambda
)

var kindNames = map[Kind]string{
	KindInvalid:         "Invalid",
	KindCompilationUnit: "CompilationUnit",
	KindUsing:           "Using",
	KindNamespaceDecl:   "NamespaceDecl",
	KindClass:           "Class",
	KindStruct:          "Struct",
	KindInterface:       "Interface",
	KindEnum:            "Enum",
	KindEnumMember:      "EnumMember",
	KindField:           "Field",
	KindVarDeclarator:   "VarDeclarator",
	KindProperty:        "Property",
	KindAccessor:        "Accessor",
	KindMethod:          "Method",
	KindConstructor:     "Constructor",
	KindParameter:       "Parameter",
	KindTypeParameter:   "TypeParameter",
	KindAttribute:       "Attribute",
	KindBlock:           "Block",
	KindEmptyStmt:       "EmptyStmt",
	KindExprStmt:        "ExprStmt",
	KindLocalDecl:       "LocalDecl",
	KindIf:              "If",
	KindElse:            "Else",
	KindWhile:           "While",
	KindDo:              "Do",
	KindFor:             "For",
	KindForEach:         "ForEach",
	KindReturn:          "Return",
	KindBreak:           "Break",
	KindContinue:        "Continue",
	KindThrow:           "Throw",
	KindTry:             "Try",
	KindCatch:           "Catch",
	KindFinally:         "Finally",
	KindSwitch:          "Switch",
	KindCase:            "Case",
	KindUnrecognized:    "Unrecognized",
	KindLiteral:         "Literal",
	KindUnresolvedRef:   "UnresolvedRef",
	KindRef:             "Ref",
	KindAmbiguousRef:    "AmbiguousRef",
	KindBinary:          "Binary",
	KindUnary:           "Unary",
	KindPostfix:         "Postfix",
	KindConditional:     "Conditional",
	KindCall:            "Call",
	KindIndex:           "Index",
	KindDot:             "Dot",
	KindParen:           "Paren",
	KindNew:             "New",
	KindCast:            "Cast",
	KindArrayType:       "ArrayType",
	KindNullableType:    "NullableType",
	KindThis:            "This",
	KindBase:            "Base",
	KindInitList:        "InitList",
	KindLambda:          "Lambda",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsTypeDecl reports whether k is one of the type declaration kinds.
func (k Kind) IsTypeDecl() bool {
	return k == KindClass || k == KindStruct || k == KindInterface || k == KindEnum
}

// Node is implemented by every syntactic construct. The parent link is
// non-owning: ownership flows strictly downward through the fields and
// child lists reported by Children.
type Node interface {
	Kind() Kind
	Base() *NodeBase
	// Children returns the owned child nodes in source order. Attribute
	// annotations are included ahead of the structural children.
	Children() []Node
	// Clone returns a deep copy whose parent is nil.
	Clone() Node
	// ReplaceChild swaps old for repl in whichever field or list holds
	// old, reporting whether old was found.
	ReplaceChild(old, repl Node) bool
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by statement nodes. Clause nodes (Else, Catch,
// Finally) are statements too so that an orphaned clause can still sit in
// a block.
type Stmt interface {
	Node
	stmtNode()
}

// NodeBase holds the state every node shares: the parent link, format
// flags, annotations and the layout recorded by the parser.
type NodeBase struct {
	parent      Node
	flags       FormatFlags
	newLines    int
	annotations []*Annotation

	Layout Layout
	Span   Span
}

func (b *NodeBase) Base() *NodeBase { return b }

func (b *NodeBase) Parent() Node { return b.parent }

func (b *NodeBase) Flags() FormatFlags { return b.flags }

func (b *NodeBase) SetFlags(f FormatFlags) { b.flags = f }

func (b *NodeBase) setFlag(f FormatFlags, on bool) {
	if on {
		b.flags |= f
	} else {
		b.flags &^= f
	}
}

// clone copies everything but the parent link. Attribute annotations are
// deep-cloned and re-linked to owner.
func (b *NodeBase) clone(owner Node) NodeBase {
	c := NodeBase{
		flags:    b.flags,
		newLines: b.newLines,
		Layout:   b.Layout.clone(),
		Span:     b.Span,
	}
	if len(b.annotations) > 0 {
		c.annotations = make([]*Annotation, len(b.annotations))
		for i, a := range b.annotations {
			c.annotations[i] = a.clone(owner)
		}
	}
	return c
}

func isNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// IsNil reports whether n is nil or a typed nil pointer.
func IsNil(n Node) bool { return isNil(n) }

// adopt makes owner the parent of n, cloning n first when it is still
// owned by another live parent.
func adopt(owner Node, n Node) Node {
	if isNil(n) {
		return nil
	}
	b := n.Base()
	if b.parent != nil && b.parent != owner {
		n = n.Clone()
		b = n.Base()
	}
	b.parent = owner
	return n
}

func detach(owner Node, n Node) {
	if isNil(n) {
		return
	}
	if b := n.Base(); b.parent == owner {
		b.parent = nil
	}
}

// setField assigns v to *field on behalf of owner: the previous child is
// detached and v is adopted (cloned when it belongs to someone else).
func setField[T Node](owner Node, field *T, v T) {
	old := *field
	if !isNil(old) && !isNil(v) && Node(old) == Node(v) {
		return
	}
	detach(owner, old)
	if isNil(v) {
		var zero T
		*field = zero
		return
	}
	*field = adopt(owner, v).(T)
}

func cloneChild[T Node](owner Node, v T) T {
	if isNil(v) {
		return v
	}
	c := v.Clone().(T)
	c.Base().parent = owner
	return c
}

// swapField replaces *field with repl when it currently holds old.
func swapField[T Node](owner Node, field *T, old, repl Node) bool {
	if isNil(*field) || Node(*field) != old {
		return false
	}
	if isNil(repl) {
		detach(owner, old)
		var zero T
		*field = zero
		return true
	}
	v, ok := repl.(T)
	if !ok {
		panic(fmt.Sprintf("ast: cannot place %s where %T is required", repl.Kind(), *field))
	}
	setField(owner, field, v)
	return true
}

func collect(nodes ...Node) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if !isNil(n) {
			out = append(out, n)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first in source order. Returning
// false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Enclosing returns the nearest ancestor of n (excluding n) whose kind is
// one of kinds.
func Enclosing(n Node, kinds ...Kind) Node {
	if isNil(n) {
		return nil
	}
	for p := n.Base().parent; p != nil; p = p.Base().parent {
		for _, k := range kinds {
			if p.Kind() == k {
				return p
			}
		}
	}
	return nil
}

// EnclosingType returns the nearest enclosing type declaration.
func EnclosingType(n Node) *TypeDecl {
	if isNil(n) {
		return nil
	}
	for p := n.Base().parent; p != nil; p = p.Base().parent {
		if t, ok := p.(*TypeDecl); ok {
			return t
		}
	}
	return nil
}

// Root returns the topmost ancestor of n.
func Root(n Node) Node {
	for !isNil(n) && n.Base().parent != nil {
		n = n.Base().parent
	}
	return n
}

// Replace swaps n for repl inside n's parent.
func Replace(n, repl Node) bool {
	p := n.Base().parent
	if p == nil {
		return false
	}
	return p.ReplaceChild(n, repl)
}

// Detach removes n from its parent, leaving it a root.
func Detach(n Node) bool {
	return Replace(n, nil)
}
