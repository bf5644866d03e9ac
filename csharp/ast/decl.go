package ast

// CompilationUnit is the root of one parsed source file.
type CompilationUnit struct {
	NodeBase
	Path     string
	Registry *Registry
	Usings   ChildList[*Using]
	Members  ChildList[Node]
}

func NewCompilationUnit(path string) *CompilationUnit {
	cu := &CompilationUnit{Path: path}
	cu.Usings = newChildList[*Using](cu)
	cu.Members = newChildList[Node](cu)
	return cu
}

func (n *CompilationUnit) Kind() Kind { return KindCompilationUnit }

func (n *CompilationUnit) Children() []Node {
	out := attributeNodes(&n.NodeBase)
	out = append(out, n.Usings.nodes()...)
	return append(out, n.Members.nodes()...)
}

func (n *CompilationUnit) Clone() Node {
	c := &CompilationUnit{Path: n.Path, Registry: n.Registry}
	c.NodeBase = n.NodeBase.clone(c)
	c.Usings = n.Usings.cloneInto(c)
	c.Members = n.Members.cloneInto(c)
	return c
}

func (n *CompilationUnit) ReplaceChild(old, repl Node) bool {
	return n.Usings.replace(old, repl) || n.Members.replace(old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

// Using is a using directive, either an import of a namespace or an alias.
type Using struct {
	NodeBase
	Alias  string
	Static bool
	Target Expr
	// Namespaces holds the registry namespaces the directive created.
	Namespaces []*Namespace
}

func NewUsing(target Expr) *Using {
	n := &Using{}
	n.SetTarget(target)
	return n
}

func NewUsingAlias(alias string, target Expr) *Using {
	n := NewUsing(target)
	n.Alias = alias
	return n
}

func (n *Using) Kind() Kind { return KindUsing }

func (n *Using) SetTarget(e Expr) { setField(n, &n.Target, e) }

func (n *Using) Children() []Node {
	return append(attributeNodes(&n.NodeBase), collect(n.Target)...)
}

func (n *Using) Clone() Node {
	c := &Using{Alias: n.Alias, Static: n.Static, Namespaces: n.Namespaces}
	c.NodeBase = n.NodeBase.clone(c)
	c.Target = cloneChild(c, n.Target)
	return c
}

func (n *Using) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Target, old, repl) || replaceAttribute(n, &n.NodeBase, old, repl)
}

// NamespaceDecl is a namespace declaration. Its name is built from
// references to registry namespaces, which the parser creates eagerly.
type NamespaceDecl struct {
	NodeBase
	Name       Expr
	FileScoped bool
	Namespace  *Namespace
	// Namespaces holds every namespace named by the declaration, outermost
	// first; the last one is Namespace.
	Namespaces []*Namespace
	Usings     ChildList[*Using]
	Members    ChildList[Node]
}

func NewNamespaceDecl(name Expr) *NamespaceDecl {
	n := &NamespaceDecl{}
	n.Usings = newChildList[*Using](n)
	n.Members = newChildList[Node](n)
	n.SetName(name)
	return n
}

func (n *NamespaceDecl) Kind() Kind { return KindNamespaceDecl }

func (n *NamespaceDecl) SetName(e Expr) { setField(n, &n.Name, e) }

func (n *NamespaceDecl) Children() []Node {
	out := append(attributeNodes(&n.NodeBase), collect(n.Name)...)
	out = append(out, n.Usings.nodes()...)
	return append(out, n.Members.nodes()...)
}

func (n *NamespaceDecl) Clone() Node {
	c := &NamespaceDecl{FileScoped: n.FileScoped, Namespace: n.Namespace, Namespaces: n.Namespaces}
	c.NodeBase = n.NodeBase.clone(c)
	c.Name = cloneChild(c, n.Name)
	c.Usings = n.Usings.cloneInto(c)
	c.Members = n.Members.cloneInto(c)
	return c
}

func (n *NamespaceDecl) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Name, old, repl) || n.Usings.replace(old, repl) ||
		n.Members.replace(old, repl) || replaceAttribute(n, &n.NodeBase, old, repl)
}

// TypeDecl declares a class, struct, interface or enum. Enum members are
// *EnumMember values in Members.
type TypeDecl struct {
	NodeBase
	kind       Kind
	Mods       Modifiers
	Name       string
	TypeParams ChildList[*TypeParameter]
	Bases      ChildList[Expr]
	// Where holds the constraint clauses verbatim.
	Where      *Unrecognized
	Members    ChildList[Node]
	// Namespace is the registry namespace a top-level type is registered
	// in; nil for nested types.
	Namespace  *Namespace
}

func NewTypeDecl(kind Kind, name string) *TypeDecl {
	if !kind.IsTypeDecl() {
		panic("ast: " + kind.String() + " is not a type declaration kind")
	}
	n := &TypeDecl{kind: kind, Name: name}
	n.TypeParams = newChildList[*TypeParameter](n)
	n.Bases = newChildList[Expr](n)
	n.Members = newChildList[Node](n)
	return n
}

func NewClass(name string) *TypeDecl     { return NewTypeDecl(KindClass, name) }
func NewStruct(name string) *TypeDecl    { return NewTypeDecl(KindStruct, name) }
func NewInterface(name string) *TypeDecl { return NewTypeDecl(KindInterface, name) }
func NewEnum(name string) *TypeDecl      { return NewTypeDecl(KindEnum, name) }

func (n *TypeDecl) Kind() Kind { return n.kind }

// Keyword returns the declaring keyword.
func (n *TypeDecl) Keyword() string {
	switch n.kind {
	case KindStruct:
		return "struct"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	}
	return "class"
}

func (n *TypeDecl) SymbolName() string     { return n.Name }
func (n *TypeDecl) SymbolKind() SymbolKind { return SymType }

func (n *TypeDecl) IsPartial() bool { return n.Mods.Has("partial") }

func (n *TypeDecl) Children() []Node {
	out := attributeNodes(&n.NodeBase)
	out = append(out, n.TypeParams.nodes()...)
	out = append(out, n.Bases.nodes()...)
	out = append(out, collect(n.Where)...)
	return append(out, n.Members.nodes()...)
}

func (n *TypeDecl) SetWhere(w *Unrecognized) { setField(n, &n.Where, w) }

func (n *TypeDecl) Clone() Node {
	c := &TypeDecl{kind: n.kind, Mods: n.Mods.clone(), Name: n.Name, Namespace: n.Namespace}
	c.NodeBase = n.NodeBase.clone(c)
	c.TypeParams = n.TypeParams.cloneInto(c)
	c.Bases = n.Bases.cloneInto(c)
	c.Where = cloneChild(c, n.Where)
	c.Members = n.Members.cloneInto(c)
	return c
}

func (n *TypeDecl) ReplaceChild(old, repl Node) bool {
	return n.TypeParams.replace(old, repl) || n.Bases.replace(old, repl) ||
		swapField(n, &n.Where, old, repl) || n.Members.replace(old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

// FullName returns the dotted name including the namespace and any
// enclosing types.
func (n *TypeDecl) FullName() string {
	name := n.Name
	for p := n.parent; p != nil; p = p.Base().parent {
		if t, ok := p.(*TypeDecl); ok {
			name = t.Name + "." + name
			if t.Namespace != nil {
				return qualify(t.Namespace.FullName(), name)
			}
		}
	}
	if n.Namespace != nil {
		return qualify(n.Namespace.FullName(), name)
	}
	return name
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

type EnumMember struct {
	NodeBase
	Name  string
	Value Expr
}

func NewEnumMember(name string, value Expr) *EnumMember {
	n := &EnumMember{Name: name}
	n.SetValue(value)
	return n
}

func (n *EnumMember) Kind() Kind             { return KindEnumMember }
func (n *EnumMember) SymbolName() string     { return n.Name }
func (n *EnumMember) SymbolKind() SymbolKind { return SymEnumMember }

func (n *EnumMember) SetValue(e Expr) { setField(n, &n.Value, e) }

func (n *EnumMember) Children() []Node {
	return append(attributeNodes(&n.NodeBase), collect(n.Value)...)
}

func (n *EnumMember) Clone() Node {
	c := &EnumMember{Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.Value = cloneChild(c, n.Value)
	return c
}

func (n *EnumMember) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Value, old, repl) || replaceAttribute(n, &n.NodeBase, old, repl)
}

// Field declares one or more variables of a type inside a type body.
type Field struct {
	NodeBase
	Mods Modifiers
	Type Expr
	Vars ChildList[*VarDeclarator]
}

func NewField(typ Expr, vars ...*VarDeclarator) *Field {
	n := &Field{}
	n.Vars = newChildList[*VarDeclarator](n)
	n.SetType(typ)
	for _, v := range vars {
		n.Vars.Add(v)
	}
	return n
}

func (n *Field) Kind() Kind { return KindField }

func (n *Field) SetType(e Expr) { setField(n, &n.Type, e) }

func (n *Field) Children() []Node {
	out := append(attributeNodes(&n.NodeBase), collect(n.Type)...)
	return append(out, n.Vars.nodes()...)
}

func (n *Field) Clone() Node {
	c := &Field{Mods: n.Mods.clone()}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Vars = n.Vars.cloneInto(c)
	return c
}

func (n *Field) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || n.Vars.replace(old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

// VarDeclarator is one declared variable of a field, local declaration,
// foreach loop or catch clause.
type VarDeclarator struct {
	NodeBase
	Name string
	Init Expr
}

func NewVar(name string, init Expr) *VarDeclarator {
	n := &VarDeclarator{Name: name}
	n.SetInit(init)
	return n
}

func (n *VarDeclarator) Kind() Kind         { return KindVarDeclarator }
func (n *VarDeclarator) SymbolName() string { return n.Name }

func (n *VarDeclarator) SymbolKind() SymbolKind {
	if _, ok := n.parent.(*Field); ok {
		return SymField
	}
	return SymLocal
}

// DeclaredType returns the type expression written for the variable, or
// nil when there is none.
func (n *VarDeclarator) DeclaredType() Expr {
	switch p := n.parent.(type) {
	case *Field:
		return p.Type
	case *LocalDecl:
		return p.Type
	case *ForEach:
		return p.VarType
	case *Catch:
		return p.Type
	}
	return nil
}

func (n *VarDeclarator) SetInit(e Expr) { setField(n, &n.Init, e) }

func (n *VarDeclarator) Children() []Node { return collect(n.Init) }

func (n *VarDeclarator) Clone() Node {
	c := &VarDeclarator{Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.Init = cloneChild(c, n.Init)
	return c
}

func (n *VarDeclarator) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Init, old, repl)
}

// Property declares a property with accessors, or with an expression body
// when Arrow is set.
type Property struct {
	NodeBase
	Mods      Modifiers
	Type      Expr
	Name      string
	Accessors ChildList[*Accessor]
	Arrow     Expr
	Init      Expr
}

func NewProperty(typ Expr, name string, accessors ...*Accessor) *Property {
	n := &Property{Name: name}
	n.Accessors = newChildList[*Accessor](n)
	n.SetType(typ)
	for _, a := range accessors {
		n.Accessors.Add(a)
	}
	return n
}

func (n *Property) Kind() Kind             { return KindProperty }
func (n *Property) SymbolName() string     { return n.Name }
func (n *Property) SymbolKind() SymbolKind { return SymProperty }

func (n *Property) SetType(e Expr)  { setField(n, &n.Type, e) }
func (n *Property) SetArrow(e Expr) { setField(n, &n.Arrow, e) }
func (n *Property) SetInit(e Expr)  { setField(n, &n.Init, e) }

func (n *Property) Accessor(keyword string) *Accessor {
	for _, a := range n.Accessors.Items() {
		if a.Keyword == keyword {
			return a
		}
	}
	return nil
}

func (n *Property) Children() []Node {
	out := append(attributeNodes(&n.NodeBase), collect(n.Type)...)
	out = append(out, n.Accessors.nodes()...)
	return append(out, collect(n.Arrow, n.Init)...)
}

func (n *Property) Clone() Node {
	c := &Property{Mods: n.Mods.clone(), Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Accessors = n.Accessors.cloneInto(c)
	c.Arrow = cloneChild(c, n.Arrow)
	c.Init = cloneChild(c, n.Init)
	return c
}

func (n *Property) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || n.Accessors.replace(old, repl) ||
		swapField(n, &n.Arrow, old, repl) || swapField(n, &n.Init, old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

// Accessor is a get, set or init accessor. Without Body and Arrow it is an
// auto accessor terminated by ';'.
type Accessor struct {
	NodeBase
	Mods    Modifiers
	Keyword string
	Body    *Block
	Arrow   Expr
}

func NewAccessor(keyword string, body *Block) *Accessor {
	n := &Accessor{Keyword: keyword}
	n.SetBody(body)
	return n
}

func (n *Accessor) Kind() Kind { return KindAccessor }

func (n *Accessor) SetBody(b *Block) { setField(n, &n.Body, b) }
func (n *Accessor) SetArrow(e Expr)  { setField(n, &n.Arrow, e) }

func (n *Accessor) Children() []Node {
	return append(attributeNodes(&n.NodeBase), collect(n.Body, n.Arrow)...)
}

func (n *Accessor) Clone() Node {
	c := &Accessor{Mods: n.Mods.clone(), Keyword: n.Keyword}
	c.NodeBase = n.NodeBase.clone(c)
	c.Body = cloneChild(c, n.Body)
	c.Arrow = cloneChild(c, n.Arrow)
	return c
}

func (n *Accessor) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Body, old, repl) || swapField(n, &n.Arrow, old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

type Method struct {
	NodeBase
	Mods       Modifiers
	ReturnType Expr
	Name       string
	TypeParams ChildList[*TypeParameter]
	Params     ChildList[*Parameter]
	Where      *Unrecognized
	Body       *Block
	Arrow      Expr
}

func NewMethod(ret Expr, name string, params []*Parameter, body *Block) *Method {
	n := &Method{Name: name}
	n.TypeParams = newChildList[*TypeParameter](n)
	n.Params = newChildList[*Parameter](n)
	n.SetReturnType(ret)
	for _, p := range params {
		n.Params.Add(p)
	}
	n.SetBody(body)
	return n
}

func (n *Method) Kind() Kind             { return KindMethod }
func (n *Method) SymbolName() string     { return n.Name }
func (n *Method) SymbolKind() SymbolKind { return SymMethod }

func (n *Method) SetReturnType(e Expr) { setField(n, &n.ReturnType, e) }
func (n *Method) SetBody(b *Block)     { setField(n, &n.Body, b) }
func (n *Method) SetArrow(e Expr)      { setField(n, &n.Arrow, e) }

func (n *Method) SetWhere(w *Unrecognized) { setField(n, &n.Where, w) }

func (n *Method) Children() []Node {
	out := append(attributeNodes(&n.NodeBase), collect(n.ReturnType)...)
	out = append(out, n.TypeParams.nodes()...)
	out = append(out, n.Params.nodes()...)
	return append(out, collect(n.Where, n.Body, n.Arrow)...)
}

func (n *Method) Clone() Node {
	c := &Method{Mods: n.Mods.clone(), Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.ReturnType = cloneChild(c, n.ReturnType)
	c.TypeParams = n.TypeParams.cloneInto(c)
	c.Params = n.Params.cloneInto(c)
	c.Where = cloneChild(c, n.Where)
	c.Body = cloneChild(c, n.Body)
	c.Arrow = cloneChild(c, n.Arrow)
	return c
}

func (n *Method) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.ReturnType, old, repl) || n.TypeParams.replace(old, repl) ||
		n.Params.replace(old, repl) || swapField(n, &n.Where, old, repl) || swapField(n, &n.Body, old, repl) ||
		swapField(n, &n.Arrow, old, repl) || replaceAttribute(n, &n.NodeBase, old, repl)
}

type Constructor struct {
	NodeBase
	Mods   Modifiers
	Name   string
	Params ChildList[*Parameter]
	// Initializer is the base(...) or this(...) call, if any.
	Initializer *Call
	Body        *Block
	Arrow       Expr
}

func NewConstructor(name string, params []*Parameter, body *Block) *Constructor {
	n := &Constructor{Name: name}
	n.Params = newChildList[*Parameter](n)
	for _, p := range params {
		n.Params.Add(p)
	}
	n.SetBody(body)
	return n
}

func (n *Constructor) Kind() Kind             { return KindConstructor }
func (n *Constructor) SymbolName() string     { return n.Name }
func (n *Constructor) SymbolKind() SymbolKind { return SymConstructor }

func (n *Constructor) SetInitializer(c *Call) { setField(n, &n.Initializer, c) }
func (n *Constructor) SetBody(b *Block)       { setField(n, &n.Body, b) }
func (n *Constructor) SetArrow(e Expr)        { setField(n, &n.Arrow, e) }

func (n *Constructor) Children() []Node {
	out := attributeNodes(&n.NodeBase)
	out = append(out, n.Params.nodes()...)
	return append(out, collect(n.Initializer, n.Body, n.Arrow)...)
}

func (n *Constructor) Clone() Node {
	c := &Constructor{Mods: n.Mods.clone(), Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.Params = n.Params.cloneInto(c)
	c.Initializer = cloneChild(c, n.Initializer)
	c.Body = cloneChild(c, n.Body)
	c.Arrow = cloneChild(c, n.Arrow)
	return c
}

func (n *Constructor) ReplaceChild(old, repl Node) bool {
	return n.Params.replace(old, repl) || swapField(n, &n.Initializer, old, repl) ||
		swapField(n, &n.Body, old, repl) || swapField(n, &n.Arrow, old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

type Parameter struct {
	NodeBase
	// Modifier is one of "", "ref", "out", "in", "params" or "this".
	Modifier string
	Type     Expr
	Name     string
	Default  Expr
}

func NewParameter(typ Expr, name string) *Parameter {
	n := &Parameter{Name: name}
	n.SetType(typ)
	return n
}

func (n *Parameter) Kind() Kind             { return KindParameter }
func (n *Parameter) SymbolName() string     { return n.Name }
func (n *Parameter) SymbolKind() SymbolKind { return SymParameter }

func (n *Parameter) SetType(e Expr)    { setField(n, &n.Type, e) }
func (n *Parameter) SetDefault(e Expr) { setField(n, &n.Default, e) }

func (n *Parameter) Children() []Node {
	return append(attributeNodes(&n.NodeBase), collect(n.Type, n.Default)...)
}

func (n *Parameter) Clone() Node {
	c := &Parameter{Modifier: n.Modifier, Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	c.Type = cloneChild(c, n.Type)
	c.Default = cloneChild(c, n.Default)
	return c
}

func (n *Parameter) ReplaceChild(old, repl Node) bool {
	return swapField(n, &n.Type, old, repl) || swapField(n, &n.Default, old, repl) ||
		replaceAttribute(n, &n.NodeBase, old, repl)
}

type TypeParameter struct {
	NodeBase
	// Variance is "in", "out" or empty.
	Variance string
	Name     string
}

func NewTypeParameter(name string) *TypeParameter {
	return &TypeParameter{Name: name}
}

func (n *TypeParameter) Kind() Kind             { return KindTypeParameter }
func (n *TypeParameter) SymbolName() string     { return n.Name }
func (n *TypeParameter) SymbolKind() SymbolKind { return SymTypeParameter }

func (n *TypeParameter) Children() []Node { return attributeNodes(&n.NodeBase) }

func (n *TypeParameter) Clone() Node {
	c := &TypeParameter{Variance: n.Variance, Name: n.Name}
	c.NodeBase = n.NodeBase.clone(c)
	return c
}

func (n *TypeParameter) ReplaceChild(old, repl Node) bool {
	return replaceAttribute(n, &n.NodeBase, old, repl)
}

// Attribute is one bracketed attribute section such as [Obsolete("x")].
// It lives in an attribute annotation of the declaration it decorates.
type Attribute struct {
	NodeBase
	// Target is the optional "assembly:" style target.
	Target string
	Items  ChildList[Expr]
}

func NewAttribute(items ...Expr) *Attribute {
	n := &Attribute{}
	n.Items = newChildList[Expr](n)
	for _, it := range items {
		n.Items.Add(it)
	}
	return n
}

func (n *Attribute) Kind() Kind { return KindAttribute }

func (n *Attribute) Children() []Node { return n.Items.nodes() }

func (n *Attribute) Clone() Node {
	c := &Attribute{Target: n.Target}
	c.NodeBase = n.NodeBase.clone(c)
	c.Items = n.Items.cloneInto(c)
	return c
}

func (n *Attribute) ReplaceChild(old, repl Node) bool {
	return n.Items.replace(old, repl)
}
