package ast

import "strings"

type LitKind int

const (
	LitInt LitKind = iota
	LitReal
	LitString
	LitChar
	LitBool
	LitNull
)

type Literal struct {
	NodeBase
	LitKind LitKind
	// Text is the literal exactly as written.
	Text string
}

func NewLiteral(kind LitKind, text string) *Literal {
	return &Literal{LitKind: kind, Text: text}
}

func (n *Literal) Kind() Kind                  { return KindLiteral }
func (n *Literal) exprNode()                   {}
func (n *Literal) Children() []Node            { return nil }
func (n *Literal) ReplaceChild(_, _ Node) bool { return false }

func (n *Literal) Clone() Node {
	c := &Literal{LitKind: n.LitKind, Text: n.Text}
	c.NodeBase = n.NodeBase.clone(c)
	return c
}

// nameParts is shared by the three name node kinds.
type nameParts struct {
	Name     string
	TypeArgs ChildList[Expr]
}

// UnresolvedRef is a name that has not been bound, or could not be. It
// keeps the name exactly as written.
type UnresolvedRef struct {
	NodeBase
	nameParts
}

func NewName(name string, typeArgs ...Expr) *UnresolvedRef {
	n := &UnresolvedRef{nameParts: nameParts{Name: name}}
	n.TypeArgs = newChildList[Expr](n)
	for _, a := range typeArgs {
		n.TypeArgs.Add(a)
	}
	return n
}

func (n *UnresolvedRef) Kind() Kind       { return KindUnresolvedRef }
func (n *UnresolvedRef) exprNode()        {}
func (n *UnresolvedRef) Children() []Node { return n.TypeArgs.nodes() }

func (n *UnresolvedRef) Clone() Node {
	c := &UnresolvedRef{nameParts: nameParts{Name: n.Name}}
	c.NodeBase = n.NodeBase.clone(c)
	c.TypeArgs = n.TypeArgs.cloneInto(c)
	return c
}

func (n *UnresolvedRef) ReplaceChild(old, repl Node) bool { return n.TypeArgs.replace(old, repl) }

// Ref is a name bound to exactly one symbol.
type Ref struct {
	NodeBase
	nameParts
	Target Symbol
}

// NewRef binds a reference to sym. A NamespaceTypeGroup stands for several
// symbols and cannot be referenced directly.
func NewRef(sym Symbol, typeArgs ...Expr) *Ref {
	if sym == nil {
		panic("ast: reference to a nil symbol")
	}
	if _, ok := sym.(*NamespaceTypeGroup); ok {
		panic("ast: cannot reference NamespaceTypeGroup " + sym.SymbolName() + " directly")
	}
	n := &Ref{nameParts: nameParts{Name: sym.SymbolName()}, Target: sym}
	n.TypeArgs = newChildList[Expr](n)
	for _, a := range typeArgs {
		n.TypeArgs.Add(a)
	}
	return n
}

func (n *Ref) Kind() Kind       { return KindRef }
func (n *Ref) exprNode()        {}
func (n *Ref) Children() []Node { return n.TypeArgs.nodes() }

func (n *Ref) Clone() Node {
	c := &Ref{nameParts: nameParts{Name: n.Name}, Target: n.Target}
	c.NodeBase = n.NodeBase.clone(c)
	c.TypeArgs = n.TypeArgs.cloneInto(c)
	return c
}

func (n *Ref) ReplaceChild(old, repl Node) bool { return n.TypeArgs.replace(old, repl) }

// AmbiguousRef is a name that matched several equally eligible symbols.
type AmbiguousRef struct {
	NodeBase
	nameParts
	Candidates []Symbol
}

func NewAmbiguousRef(name string, candidates []Symbol) *AmbiguousRef {
	n := &AmbiguousRef{nameParts: nameParts{Name: name}, Candidates: candidates}
	n.TypeArgs = newChildList[Expr](n)
	return n
}

func (n *AmbiguousRef) Kind() Kind       { return KindAmbiguousRef }
func (n *AmbiguousRef) exprNode()        {}
func (n *AmbiguousRef) Children() []Node { return n.TypeArgs.nodes() }

func (n *AmbiguousRef) Clone() Node {
	c := &AmbiguousRef{nameParts: nameParts{Name: n.Name}, Candidates: append([]Symbol(nil), n.Candidates...)}
	c.NodeBase = n.NodeBase.clone(c)
	c.TypeArgs = n.TypeArgs.cloneInto(c)
	return c
}

func (n *AmbiguousRef) ReplaceChild(old, repl Node) bool { return n.TypeArgs.replace(old, repl) }

// NameNode is implemented by the three kinds of name nodes.
type NameNode interface {
	Expr
	names() *nameParts
}

func (n *UnresolvedRef) names() *nameParts { return &n.nameParts }
func (n *Ref) names() *nameParts           { return &n.nameParts }
func (n *AmbiguousRef) names() *nameParts  { return &n.nameParts }

// NameOf returns the written name of a name node.
func NameOf(n Node) (string, bool) {
	if nn, ok := n.(NameNode); ok && !isNil(nn) {
		return nn.names().Name, true
	}
	return "", false
}

// TypeArgsOf returns the type argument list of a name node.
func TypeArgsOf(n NameNode) *ChildList[Expr] {
	return &n.names().TypeArgs
}

// Rebind replaces the name node old with repl in old's parent, moving the
// layout, type arguments and annotations across so the rendering does not
// change.
func Rebind(old NameNode, repl NameNode) NameNode {
	ob, rb := old.Base(), repl.Base()
	rb.Layout = ob.Layout
	rb.Span = ob.Span
	rb.flags = ob.flags
	rb.newLines = ob.newLines
	rb.annotations = append(ob.annotations, rb.annotations...)
	for _, a := range rb.annotations {
		if a.Attr != nil {
			a.Attr.parent = repl
		}
	}
	ob.Layout = Layout{}
	ob.annotations = nil
	rp := repl.names()
	rp.Name = old.names().Name
	args := old.names().TypeArgs.Items()
	old.names().TypeArgs.Clear()
	rp.TypeArgs.Clear()
	for _, a := range args {
		rp.TypeArgs.Add(a)
	}
	if p := ob.parent; p != nil {
		p.ReplaceChild(old, repl)
	}
	return repl
}

// Binary is a binary operator application, including assignments and the
// type tests "is" and "as".
type Binary struct {
	NodeBase
	Op string
	X  Expr
	Y  Expr
}

func NewBinary(op string, x, y Expr) *Binary {
	n := &Binary{Op: op}
	n.SetX(x)
	n.SetY(y)
	return n
}

func (n *Binary) Kind() Kind       { return KindBinary }
func (n *Binary) exprNode()        {}
func (n *Binary) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Binary) SetY(e Expr)      { setField(n, &n.Y, e) }
func (n *Binary) Children() []Node { return collect(n.X, n.Y) }

func (n *Binary) Clone() Node {
	c := &Binary{Op: n.Op}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	c.Y = cloneChild(c, n.Y)
	return c
}

func (n *Binary) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.X, old, repl) || swapField(n, &n.Y, old, repl)
}

// IsAssignment reports whether the operator assigns.
func (n *Binary) IsAssignment() bool {
	return strings.HasSuffix(n.Op, "=") && n.Op != "==" && n.Op != "!=" && n.Op != "<=" && n.Op != ">="
}

// Unary is a prefix operator, including argument modifiers such as "out"
// and "ref".
type Unary struct {
	NodeBase
	Op string
	X  Expr
}

func NewUnary(op string, x Expr) *Unary {
	n := &Unary{Op: op}
	n.SetX(x)
	return n
}

func (n *Unary) Kind() Kind       { return KindUnary }
func (n *Unary) exprNode()        {}
func (n *Unary) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Unary) Children() []Node { return collect(n.X) }

func (n *Unary) Clone() Node {
	c := &Unary{Op: n.Op}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *Unary) ReplaceChild(old, repl Node) bool { return swapField(n, &n.X, old, repl) }

type Postfix struct {
	NodeBase
	Op string
	X  Expr
}

func NewPostfix(op string, x Expr) *Postfix {
	n := &Postfix{Op: op}
	n.SetX(x)
	return n
}

func (n *Postfix) Kind() Kind       { return KindPostfix }
func (n *Postfix) exprNode()        {}
func (n *Postfix) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Postfix) Children() []Node { return collect(n.X) }

func (n *Postfix) Clone() Node {
	c := &Postfix{Op: n.Op}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *Postfix) ReplaceChild(old, repl Node) bool { return swapField(n, &n.X, old, repl) }

type Conditional struct {
	NodeBase
	Cond Expr
	Then Expr
	Else Expr
}

func NewConditional(cond, then, els Expr) *Conditional {
	n := &Conditional{}
	n.SetCond(cond)
	n.SetThen(then)
	n.SetElse(els)
	return n
}

func (n *Conditional) Kind() Kind       { return KindConditional }
func (n *Conditional) exprNode()        {}
func (n *Conditional) SetCond(e Expr)   { setField(n, &n.Cond, e) }
func (n *Conditional) SetThen(e Expr)   { setField(n, &n.Then, e) }
func (n *Conditional) SetElse(e Expr)   { setField(n, &n.Else, e) }
func (n *Conditional) Children() []Node { return collect(n.Cond, n.Then, n.Else) }

func (n *Conditional) Clone() Node {
	c := &Conditional{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Cond = cloneChild(c, n.Cond)
	c.Then = cloneChild(c, n.Then)
	c.Else = cloneChild(c, n.Else)
	return c
}

func (n *Conditional) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Cond, old, repl) || swapField(n, &n.Then, old, repl) ||
		swapField(n, &n.Else, old, repl)
}

type Call struct {
	NodeBase
	Fun  Expr
	Args ChildList[Expr]
}

func NewCall(fun Expr, args ...Expr) *Call {
	n := &Call{}
	n.Args = newChildList[Expr](n)
	n.SetFun(fun)
	for _, a := range args {
		n.Args.Add(a)
	}
	return n
}

func (n *Call) Kind() Kind    { return KindCall }
func (n *Call) exprNode()     {}
func (n *Call) SetFun(e Expr) { setField(n, &n.Fun, e) }

func (n *Call) Children() []Node {
	return append(collect(n.Fun), n.Args.nodes()...)
}

func (n *Call) Clone() Node {
	c := &Call{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Fun = cloneChild(c, n.Fun)
	c.Args = n.Args.cloneInto(c)
	return c
}

func (n *Call) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Fun, old, repl) || n.Args.replace(old, repl)
}

type Index struct {
	NodeBase
	X    Expr
	Args ChildList[Expr]
}

func NewIndex(x Expr, args ...Expr) *Index {
	n := &Index{}
	n.Args = newChildList[Expr](n)
	n.SetX(x)
	for _, a := range args {
		n.Args.Add(a)
	}
	return n
}

func (n *Index) Kind() Kind  { return KindIndex }
func (n *Index) exprNode()   {}
func (n *Index) SetX(e Expr) { setField(n, &n.X, e) }

func (n *Index) Children() []Node {
	return append(collect(n.X), n.Args.nodes()...)
}

func (n *Index) Clone() Node {
	c := &Index{}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	c.Args = n.Args.cloneInto(c)
	return c
}

func (n *Index) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.X, old, repl) || n.Args.replace(old, repl)
}

// Dot is member access. Op is "." or the null-conditional "?.".
type Dot struct {
	NodeBase
	X    Expr
	Op   string
	Name NameNode
}

func NewDot(x Expr, name NameNode) *Dot {
	n := &Dot{Op: "."}
	n.SetX(x)
	n.SetName(name)
	return n
}

func (n *Dot) Kind() Kind          { return KindDot }
func (n *Dot) exprNode()           {}
func (n *Dot) SetX(e Expr)         { setField(n, &n.X, e) }
func (n *Dot) SetName(nn NameNode) { setField(n, &n.Name, nn) }
func (n *Dot) Children() []Node    { return collect(n.X, n.Name) }

func (n *Dot) Clone() Node {
	c := &Dot{Op: n.Op}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	c.Name = cloneChild(c, n.Name)
	return c
}

func (n *Dot) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.X, old, repl) || swapField(n, &n.Name, old, repl)
}

// QualifiedName builds a dotted name such as "System.Collections" out of
// unresolved name nodes.
func QualifiedName(dotted string) Expr {
	parts := strings.Split(dotted, ".")
	var e Expr = NewName(parts[0])
	for _, p := range parts[1:] {
		e = NewDot(e, NewName(p))
	}
	return e
}

// DottedName returns the written text of a name or a chain of member
// accesses over names, and false for anything else.
func DottedName(e Expr) (string, bool) {
	switch x := e.(type) {
	case NameNode:
		if isNil(x) {
			return "", false
		}
		return x.names().Name, true
	case *Dot:
		left, ok := DottedName(x.X)
		if !ok || isNil(x.Name) {
			return "", false
		}
		return left + "." + x.Name.names().Name, true
	}
	return "", false
}

type Paren struct {
	NodeBase
	X Expr
}

func NewParen(x Expr) *Paren {
	n := &Paren{}
	n.SetX(x)
	return n
}

func (n *Paren) Kind() Kind       { return KindParen }
func (n *Paren) exprNode()        {}
func (n *Paren) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Paren) Children() []Node { return collect(n.X) }

func (n *Paren) Clone() Node {
	c := &Paren{}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *Paren) ReplaceChild(old, repl Node) bool { return swapField(n, &n.X, old, repl) }

// New is an object or array creation. Type is nil for target-typed
// creation; Init holds the optional initializer list.
type New struct {
	NodeBase
	Type    Expr
	HasArgs bool
	Args    ChildList[Expr]
	Init    *InitList
}

func NewNew(typ Expr, args ...Expr) *New {
	n := &New{HasArgs: true}
	n.Args = newChildList[Expr](n)
	n.SetType(typ)
	for _, a := range args {
		n.Args.Add(a)
	}
	return n
}

func (n *New) Kind() Kind          { return KindNew }
func (n *New) exprNode()           {}
func (n *New) SetType(e Expr)      { setField(n, &n.Type, e) }
func (n *New) SetInit(l *InitList) { setField(n, &n.Init, l) }

func (n *New) Children() []Node {
	out := collect(n.Type)
	out = append(out, n.Args.nodes()...)
	return append(out, collect(n.Init)...)
}

func (n *New) Clone() Node {
	c := &New{HasArgs: n.HasArgs}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Args = n.Args.cloneInto(c)
	c.Init = cloneChild(c, n.Init)
	return c
}

func (n *New) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || n.Args.replace(old, repl) ||
		swapField(n, &n.Init, old, repl)
}

// InitList is a braced list of expressions used by array and collection
// initializers.
type InitList struct {
	NodeBase
	Items ChildList[Expr]
}

func NewInitList(items ...Expr) *InitList {
	n := &InitList{}
	n.Items = newChildList[Expr](n)
	for _, it := range items {
		n.Items.Add(it)
	}
	return n
}

func (n *InitList) Kind() Kind       { return KindInitList }
func (n *InitList) exprNode()        {}
func (n *InitList) Children() []Node { return n.Items.nodes() }

func (n *InitList) Clone() Node {
	c := &InitList{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Items = n.Items.cloneInto(c)
	return c
}

func (n *InitList) ReplaceChild(old, repl Node) bool { return n.Items.replace(old, repl) }

type Cast struct {
	NodeBase
	Type Expr
	X    Expr
}

func NewCast(typ, x Expr) *Cast {
	n := &Cast{}
	n.SetType(typ)
	n.SetX(x)
	return n
}

func (n *Cast) Kind() Kind       { return KindCast }
func (n *Cast) exprNode()        {}
func (n *Cast) SetType(e Expr)   { setField(n, &n.Type, e) }
func (n *Cast) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Cast) Children() []Node { return collect(n.Type, n.X) }

func (n *Cast) Clone() Node {
	c := &Cast{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *Cast) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || swapField(n, &n.X, old, repl)
}

// ArrayType is an array type such as int[] or int[,]. Size is set for the
// single dimension of an array creation like new int[n].
type ArrayType struct {
	NodeBase
	Elem Expr
	Rank int
	Size Expr
}

func NewArrayType(elem Expr, rank int) *ArrayType {
	if rank < 1 {
		rank = 1
	}
	n := &ArrayType{Rank: rank}
	n.SetElem(elem)
	return n
}

func (n *ArrayType) Kind() Kind       { return KindArrayType }
func (n *ArrayType) exprNode()        {}
func (n *ArrayType) SetElem(e Expr)   { setField(n, &n.Elem, e) }
func (n *ArrayType) SetSize(e Expr)   { setField(n, &n.Size, e) }
func (n *ArrayType) Children() []Node { return collect(n.Elem, n.Size) }

func (n *ArrayType) Clone() Node {
	c := &ArrayType{Rank: n.Rank}
	c.NodeBase = n.NodeBase.clone(c)
	c.Elem = cloneChild(c, n.Elem)
	c.Size = cloneChild(c, n.Size)
	return c
}

func (n *ArrayType) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Elem, old, repl) || swapField(n, &n.Size, old, repl)
}

type NullableType struct {
	NodeBase
	Elem Expr
}

func NewNullableType(elem Expr) *NullableType {
	n := &NullableType{}
	n.SetElem(elem)
	return n
}

func (n *NullableType) Kind() Kind       { return KindNullableType }
func (n *NullableType) exprNode()        {}
func (n *NullableType) SetElem(e Expr)   { setField(n, &n.Elem, e) }
func (n *NullableType) Children() []Node { return collect(n.Elem) }

func (n *NullableType) Clone() Node {
	c := &NullableType{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Elem = cloneChild(c, n.Elem)
	return c
}

func (n *NullableType) ReplaceChild(old, repl Node) bool { return swapField(n, &n.Elem, old, repl) }

// SelfRef is the "this" or "base" keyword.
type SelfRef struct {
	NodeBase
	kind Kind
}

func NewThis() *SelfRef { return &SelfRef{kind: KindThis} }
func NewBase() *SelfRef { return &SelfRef{kind: KindBase} }

func (n *SelfRef) Kind() Kind                  { return n.kind }
func (n *SelfRef) exprNode()                   {}
func (n *SelfRef) Children() []Node            { return nil }
func (n *SelfRef) ReplaceChild(_, _ Node) bool { return false }

func (n *SelfRef) Keyword() string {
	if n.kind == KindBase {
		return "base"
	}
	return "this"
}

func (n *SelfRef) Clone() Node {
	c := &SelfRef{kind: n.kind}
	c.NodeBase = n.NodeBase.clone(c)
	return c
}

// Lambda is an anonymous function. Body is an Expr or a *Block.
type Lambda struct {
	NodeBase
	Mods Modifiers
	// Parenthesized is false for the single bare parameter form x => ...
	Parenthesized bool
	Params        ChildList[*Parameter]
	Body          Node
}

func NewLambda(params []*Parameter, body Node) *Lambda {
	n := &Lambda{Parenthesized: len(params) != 1}
	n.Params = newChildList[*Parameter](n)
	for _, p := range params {
		n.Params.Add(p)
	}
	n.SetBody(body)
	return n
}

func (n *Lambda) Kind() Kind { return KindLambda }
func (n *Lambda) exprNode()  {}

func (n *Lambda) SetBody(b Node) {
	switch b.(type) {
	case nil, Expr, *Block:
	default:
		panic("ast: a lambda body must be an expression or a block")
	}
	setField(n, &n.Body, b)
}

func (n *Lambda) Children() []Node {
	return append(n.Params.nodes(), collect(n.Body)...)
}

func (n *Lambda) Clone() Node {
	c := &Lambda{Mods: n.Mods.clone(), Parenthesized: n.Parenthesized}
	c.NodeBase = n.NodeBase.clone(c)
	c.Params = n.Params.cloneInto(c)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *Lambda) ReplaceChild(old, repl Node) bool {
	return n.Params.replace(old, repl) || swapField(n, &n.Body, old, repl)
}
