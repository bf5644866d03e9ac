package ast

import "strconv"

type Block struct {
	NodeBase
	Stmts ChildList[Stmt]
}

func NewBlock(stmts ...Stmt) *Block {
	n := &Block{}
	n.Stmts = newChildList[Stmt](n)
	for _, s := range stmts {
		n.Stmts.Add(s)
	}
	return n
}

func (n *Block) Kind() Kind       { return KindBlock }
func (n *Block) stmtNode()        {}
func (n *Block) Children() []Node { return n.Stmts.nodes() }

func (n *Block) Clone() Node {
	c := &Block{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Stmts = n.Stmts.cloneInto(c)
	return c
}

func (n *Block) ReplaceChild(old, repl Node) bool { return n.Stmts.replace(old, repl) }

type EmptyStmt struct {
	NodeBase
}

func NewEmptyStmt() *EmptyStmt { return &EmptyStmt{} }

func (n *EmptyStmt) Kind() Kind                  { return KindEmptyStmt }
func (n *EmptyStmt) stmtNode()                   {}
func (n *EmptyStmt) Children() []Node            { return nil }
func (n *EmptyStmt) ReplaceChild(_, _ Node) bool { return false }

func (n *EmptyStmt) Clone() Node {
	c := &EmptyStmt{}
	c.NodeBase = n.NodeBase.clone(c)
	return c
}

type ExprStmt struct {
	NodeBase
	X Expr
	// NoTerminator is set for expressions in a for header, which have no
	// ';' of their own.
	NoTerminator bool
}

func NewExprStmt(x Expr) *ExprStmt {
	n := &ExprStmt{}
	n.SetX(x)
	return n
}

func (n *ExprStmt) Kind() Kind       { return KindExprStmt }
func (n *ExprStmt) stmtNode()        {}
func (n *ExprStmt) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *ExprStmt) Children() []Node { return collect(n.X) }

func (n *ExprStmt) Clone() Node {
	c := &ExprStmt{NoTerminator: n.NoTerminator}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *ExprStmt) ReplaceChild(old, repl Node) bool { return swapField(n, &n.X, old, repl) }

// LocalDecl declares local variables.
type LocalDecl struct {
	NodeBase
	Mods         Modifiers
	Type         Expr
	Vars         ChildList[*VarDeclarator]
	NoTerminator bool
}

func NewLocalDecl(typ Expr, vars ...*VarDeclarator) *LocalDecl {
	n := &LocalDecl{}
	n.Vars = newChildList[*VarDeclarator](n)
	n.SetType(typ)
	for _, v := range vars {
		n.Vars.Add(v)
	}
	return n
}

func (n *LocalDecl) Kind() Kind     { return KindLocalDecl }
func (n *LocalDecl) stmtNode()      {}
func (n *LocalDecl) SetType(e Expr) { setField(n, &n.Type, e) }

func (n *LocalDecl) Children() []Node {
	return append(collect(n.Type), n.Vars.nodes()...)
}

func (n *LocalDecl) Clone() Node {
	c := &LocalDecl{Mods: n.Mods.clone(), NoTerminator: n.NoTerminator}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Vars = n.Vars.cloneInto(c)
	return c
}

func (n *LocalDecl) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || n.Vars.replace(old, repl)
}

type If struct {
	NodeBase
	Cond Expr
	Then Stmt
	Else *Else
}

func NewIf(cond Expr, then Stmt, els Stmt) *If {
	n := &If{}
	n.SetCond(cond)
	n.SetThen(then)
	if els != nil {
		n.SetElse(NewElse(els))
	}
	return n
}

func (n *If) Kind() Kind       { return KindIf }
func (n *If) stmtNode()        {}
func (n *If) SetCond(e Expr)   { setField(n, &n.Cond, e) }
func (n *If) SetThen(s Stmt)   { setField(n, &n.Then, s) }
func (n *If) SetElse(e *Else)  { setField(n, &n.Else, e) }
func (n *If) Children() []Node { return collect(n.Cond, n.Then, n.Else) }

func (n *If) Clone() Node {
	c := &If{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Cond = cloneChild(c, n.Cond)
	c.Then = cloneChild(c, n.Then)
	c.Else = cloneChild(c, n.Else)
	return c
}

func (n *If) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Cond, old, repl) || swapField(n, &n.Then, old, repl) ||
		swapField(n, &n.Else, old, repl)
}

// Else is the else clause of an If. Outside an If it is an orphan and
// carries a diagnostic.
type Else struct {
	NodeBase
	Body Stmt
}

func NewElse(body Stmt) *Else {
	n := &Else{}
	n.SetBody(body)
	return n
}

func (n *Else) Kind() Kind       { return KindElse }
func (n *Else) stmtNode()        {}
func (n *Else) SetBody(s Stmt)   { setField(n, &n.Body, s) }
func (n *Else) Children() []Node { return collect(n.Body) }

func (n *Else) Clone() Node {
	c := &Else{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *Else) ReplaceChild(old, repl Node) bool { return swapField(n, &n.Body, old, repl) }

type While struct {
	NodeBase
	Cond Expr
	Body Stmt
}

func NewWhile(cond Expr, body Stmt) *While {
	n := &While{}
	n.SetCond(cond)
	n.SetBody(body)
	return n
}

func (n *While) Kind() Kind       { return KindWhile }
func (n *While) stmtNode()        {}
func (n *While) SetCond(e Expr)   { setField(n, &n.Cond, e) }
func (n *While) SetBody(s Stmt)   { setField(n, &n.Body, s) }
func (n *While) Children() []Node { return collect(n.Cond, n.Body) }

func (n *While) Clone() Node {
	c := &While{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Cond = cloneChild(c, n.Cond)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *While) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Cond, old, repl) || swapField(n, &n.Body, old, repl)
}

type Do struct {
	NodeBase
	Body Stmt
	Cond Expr
}

func NewDo(body Stmt, cond Expr) *Do {
	n := &Do{}
	n.SetBody(body)
	n.SetCond(cond)
	return n
}

func (n *Do) Kind() Kind       { return KindDo }
func (n *Do) stmtNode()        {}
func (n *Do) SetCond(e Expr)   { setField(n, &n.Cond, e) }
func (n *Do) SetBody(s Stmt)   { setField(n, &n.Body, s) }
func (n *Do) Children() []Node { return collect(n.Body, n.Cond) }

func (n *Do) Clone() Node {
	c := &Do{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Body = cloneChild(c, n.Body)
	c.Cond = cloneChild(c, n.Cond)
	return c
}

func (n *Do) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Body, old, repl) || swapField(n, &n.Cond, old, repl)
}

// For is a for loop. The header holds either a local declaration or a list
// of initializer expressions.
type For struct {
	NodeBase
	Decl    *LocalDecl
	Inits   ChildList[Expr]
	Cond    Expr
	Updates ChildList[Expr]
	Body    Stmt
}

func NewFor(decl *LocalDecl, cond Expr, updates []Expr, body Stmt) *For {
	n := &For{}
	n.Inits = newChildList[Expr](n)
	n.Updates = newChildList[Expr](n)
	n.SetDecl(decl)
	n.SetCond(cond)
	for _, u := range updates {
		n.Updates.Add(u)
	}
	n.SetBody(body)
	return n
}

func (n *For) Kind() Kind { return KindFor }
func (n *For) stmtNode()  {}

func (n *For) SetDecl(d *LocalDecl) {
	if d != nil {
		d.NoTerminator = true
	}
	setField(n, &n.Decl, d)
}

func (n *For) SetCond(e Expr) { setField(n, &n.Cond, e) }
func (n *For) SetBody(s Stmt) { setField(n, &n.Body, s) }

func (n *For) Children() []Node {
	out := collect(n.Decl)
	out = append(out, n.Inits.nodes()...)
	out = append(out, collect(n.Cond)...)
	out = append(out, n.Updates.nodes()...)
	return append(out, collect(n.Body)...)
}

func (n *For) Clone() Node {
	c := &For{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Decl = cloneChild(c, n.Decl)
	c.Inits = n.Inits.cloneInto(c)
	c.Cond = cloneChild(c, n.Cond)
	c.Updates = n.Updates.cloneInto(c)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *For) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Decl, old, repl) || n.Inits.replace(old, repl) ||
		swapField(n, &n.Cond, old, repl) || n.Updates.replace(old, repl) ||
		swapField(n, &n.Body, old, repl)
}

type ForEach struct {
	NodeBase
	VarType    Expr
	Var        *VarDeclarator
	Collection Expr
	Body       Stmt
}

func NewForEach(typ Expr, name string, coll Expr, body Stmt) *ForEach {
	n := &ForEach{}
	n.SetVarType(typ)
	n.SetVar(NewVar(name, nil))
	n.SetCollection(coll)
	n.SetBody(body)
	return n
}

func (n *ForEach) Kind() Kind              { return KindForEach }
func (n *ForEach) stmtNode()               {}
func (n *ForEach) SetVarType(e Expr)       { setField(n, &n.VarType, e) }
func (n *ForEach) SetVar(v *VarDeclarator) { setField(n, &n.Var, v) }
func (n *ForEach) SetCollection(e Expr)    { setField(n, &n.Collection, e) }
func (n *ForEach) SetBody(s Stmt)          { setField(n, &n.Body, s) }

func (n *ForEach) Children() []Node {
	return collect(n.VarType, n.Var, n.Collection, n.Body)
}

func (n *ForEach) Clone() Node {
	c := &ForEach{}
	c.NodeBase = n.NodeBase.clone(c)
	c.VarType = cloneChild(c, n.VarType)
	c.Var = cloneChild(c, n.Var)
	c.Collection = cloneChild(c, n.Collection)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *ForEach) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.VarType, old, repl) || swapField(n, &n.Var, old, repl) ||
		swapField(n, &n.Collection, old, repl) || swapField(n, &n.Body, old, repl)
}

// Jump covers return, break, continue and throw; X is the optional
// operand.
type Jump struct {
	NodeBase
	kind Kind
	X    Expr
}

func NewReturn(x Expr) *Jump { return newJump(KindReturn, x) }
func NewThrow(x Expr) *Jump  { return newJump(KindThrow, x) }
func NewBreak() *Jump        { return newJump(KindBreak, nil) }
func NewContinue() *Jump     { return newJump(KindContinue, nil) }

func newJump(kind Kind, x Expr) *Jump {
	n := &Jump{kind: kind}
	n.SetX(x)
	return n
}

// NewJump builds a jump statement for one of the jump keywords.
func NewJump(keyword string, x Expr) *Jump {
	switch keyword {
	case "return":
		return NewReturn(x)
	case "throw":
		return NewThrow(x)
	case "break":
		return NewBreak()
	case "continue":
		return NewContinue()
	}
	panic("ast: " + keyword + " is not a jump keyword")
}

func (n *Jump) Kind() Kind       { return n.kind }
func (n *Jump) stmtNode()        {}
func (n *Jump) SetX(e Expr)      { setField(n, &n.X, e) }
func (n *Jump) Children() []Node { return collect(n.X) }

func (n *Jump) Keyword() string {
	switch n.kind {
	case KindReturn:
		return "return"
	case KindThrow:
		return "throw"
	case KindBreak:
		return "break"
	}
	return "continue"
}

func (n *Jump) Clone() Node {
	c := &Jump{kind: n.kind}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	return c
}

func (n *Jump) ReplaceChild(old, repl Node) bool { return swapField(n, &n.X, old, repl) }

type Try struct {
	NodeBase
	Body    *Block
	Catches ChildList[*Catch]
	Finally *Finally
}

func NewTry(body *Block, catches ...*Catch) *Try {
	n := &Try{}
	n.Catches = newChildList[*Catch](n)
	n.SetBody(body)
	for _, c := range catches {
		n.Catches.Add(c)
	}
	return n
}

func (n *Try) Kind() Kind            { return KindTry }
func (n *Try) stmtNode()             {}
func (n *Try) SetBody(b *Block)      { setField(n, &n.Body, b) }
func (n *Try) SetFinally(f *Finally) { setField(n, &n.Finally, f) }

func (n *Try) Children() []Node {
	out := collect(n.Body)
	out = append(out, n.Catches.nodes()...)
	return append(out, collect(n.Finally)...)
}

func (n *Try) Clone() Node {
	c := &Try{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Body = cloneChild(c, n.Body)
	c.Catches = n.Catches.cloneInto(c)
	c.Finally = cloneChild(c, n.Finally)
	return c
}

func (n *Try) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Body, old, repl) || n.Catches.replace(old, repl) ||
		swapField(n, &n.Finally, old, repl)
}

// Catch is a catch clause. Type and Var are optional.
type Catch struct {
	NodeBase
	Type Expr
	Var  *VarDeclarator
	When Expr
	Body *Block
}

func NewCatch(typ Expr, name string, body *Block) *Catch {
	n := &Catch{}
	n.SetType(typ)
	if name != "" {
		n.SetVar(NewVar(name, nil))
	}
	n.SetBody(body)
	return n
}

func (n *Catch) Kind() Kind              { return KindCatch }
func (n *Catch) stmtNode()               {}
func (n *Catch) SetType(e Expr)          { setField(n, &n.Type, e) }
func (n *Catch) SetVar(v *VarDeclarator) { setField(n, &n.Var, v) }
func (n *Catch) SetWhen(e Expr)          { setField(n, &n.When, e) }
func (n *Catch) SetBody(b *Block)        { setField(n, &n.Body, b) }
func (n *Catch) Children() []Node        { return collect(n.Type, n.Var, n.When, n.Body) }

func (n *Catch) Clone() Node {
	c := &Catch{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Var = cloneChild(c, n.Var)
	c.When = cloneChild(c, n.When)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *Catch) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || swapField(n, &n.Var, old, repl) ||
		swapField(n, &n.When, old, repl) || swapField(n, &n.Body, old, repl)
}

type Finally struct {
	NodeBase
	Body *Block
}

func NewFinally(body *Block) *Finally {
	n := &Finally{}
	n.SetBody(body)
	return n
}

func (n *Finally) Kind() Kind       { return KindFinally }
func (n *Finally) stmtNode()        {}
func (n *Finally) SetBody(b *Block) { setField(n, &n.Body, b) }
func (n *Finally) Children() []Node { return collect(n.Body) }

func (n *Finally) Clone() Node {
	c := &Finally{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Body = cloneChild(c, n.Body)
	return c
}

func (n *Finally) ReplaceChild(old, repl Node) bool { return swapField(n, &n.Body, old, repl) }

type Switch struct {
	NodeBase
	X     Expr
	Cases ChildList[*Case]
}

func NewSwitch(x Expr, cases ...*Case) *Switch {
	n := &Switch{}
	n.Cases = newChildList[*Case](n)
	n.SetX(x)
	for _, c := range cases {
		n.Cases.Add(c)
	}
	return n
}

func (n *Switch) Kind() Kind  { return KindSwitch }
func (n *Switch) stmtNode()   {}
func (n *Switch) SetX(e Expr) { setField(n, &n.X, e) }

func (n *Switch) Children() []Node {
	return append(collect(n.X), n.Cases.nodes()...)
}

func (n *Switch) Clone() Node {
	c := &Switch{}
	c.NodeBase = n.NodeBase.clone(c)
	c.X = cloneChild(c, n.X)
	c.Cases = n.Cases.cloneInto(c)
	return c
}

func (n *Switch) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.X, old, repl) || n.Cases.replace(old, repl)
}

// Case is one case label of a switch together with the statements that
// follow it. A nil Value marks the default label.
type Case struct {
	NodeBase
	Value Expr
	Stmts ChildList[Stmt]
}

func NewCase(value Expr, stmts ...Stmt) *Case {
	n := &Case{}
	n.Stmts = newChildList[Stmt](n)
	n.SetValue(value)
	for _, s := range stmts {
		n.Stmts.Add(s)
	}
	return n
}

func (n *Case) Kind() Kind      { return KindCase }
func (n *Case) stmtNode()       {}
func (n *Case) SetValue(e Expr) { setField(n, &n.Value, e) }
func (n *Case) IsDefault() bool { return n.Value == nil }

func (n *Case) Children() []Node {
	return append(collect(n.Value), n.Stmts.nodes()...)
}

func (n *Case) Clone() Node {
	c := &Case{}
	c.NodeBase = n.NodeBase.clone(c)
	c.Value = cloneChild(c, n.Value)
	c.Stmts = n.Stmts.cloneInto(c)
	return c
}

func (n *Case) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Value, old, repl) || n.Stmts.replace(old, repl)
}

// Unrecognized holds input the parser could not make sense of: fragments
// it had already built followed by raw tokens, kept verbatim so the text
// survives a round trip.
type Unrecognized struct {
	NodeBase
	Parts ChildList[Node]
	Raw   []string
}

func NewUnrecognized(raw ...string) *Unrecognized {
	n := &Unrecognized{Raw: raw}
	n.Parts = newChildList[Node](n)
	return n
}

func (n *Unrecognized) Kind() Kind       { return KindUnrecognized }
func (n *Unrecognized) stmtNode()        {}
func (n *Unrecognized) Children() []Node { return n.Parts.nodes() }

func (n *Unrecognized) Clone() Node {
	c := &Unrecognized{Raw: append([]string(nil), n.Raw...)}
	c.NodeBase = n.NodeBase.clone(c)
	c.Parts = n.Parts.cloneInto(c)
	return c
}

func (n *Unrecognized) ReplaceChild(old, repl Node) bool { return n.Parts.replace(old, repl) }

// RawSlot names the gap slot of the i-th raw token.
func RawSlot(i int) string {
	return "raw:" + strconv.Itoa(i)
}
