package ast

import "slices"

type SymbolKind int

const (
	SymNamespace SymbolKind = iota
	SymType
	SymMethod
	SymConstructor
	SymField
	SymProperty
	SymLocal
	SymParameter
	SymTypeParameter
	SymEnumMember
	SymGroup
)

var symbolKindNames = [...]string{
	SymNamespace:     "namespace",
	SymType:          "type",
	SymMethod:        "method",
	SymConstructor:   "constructor",
	SymField:         "field",
	SymProperty:      "property",
	SymLocal:         "local",
	SymParameter:     "parameter",
	SymTypeParameter: "type parameter",
	SymEnumMember:    "enum member",
	SymGroup:         "group",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}
	return "unknown"
}

// Symbol is anything a name can be bound to: namespaces, declarations,
// locals and the built-in types.
type Symbol interface {
	SymbolName() string
	SymbolKind() SymbolKind
}

// Builtin is a predefined type or pseudo-function of the language.
type Builtin struct {
	Name string
	kind SymbolKind
}

func (b *Builtin) SymbolName() string     { return b.Name }
func (b *Builtin) SymbolKind() SymbolKind { return b.kind }

var builtins = map[string]*Builtin{}

func init() {
	for _, name := range []string{
		"bool", "byte", "sbyte", "char", "decimal", "double", "float",
		"int", "uint", "long", "ulong", "short", "ushort", "object",
		"string", "void", "dynamic", "var", "nint", "nuint",
	} {
		builtins[name] = &Builtin{Name: name, kind: SymType}
	}
	for _, name := range []string{"typeof", "sizeof", "default", "nameof", "checked", "unchecked"} {
		builtins[name] = &Builtin{Name: name, kind: SymMethod}
	}
}

// LookupBuiltin returns the predefined symbol for a keyword such as "int"
// or "typeof".
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtins[name]
	return b, ok
}

// Modifiers are the declaration modifiers in source order.
type Modifiers []string

func (m Modifiers) Has(mod string) bool {
	return slices.Contains(m, mod)
}

func (m *Modifiers) Add(mod string) {
	if !m.Has(mod) {
		*m = append(*m, mod)
	}
}

func (m *Modifiers) Remove(mod string) {
	*m = slices.DeleteFunc(*m, func(s string) bool { return s == mod })
}

func (m Modifiers) clone() Modifiers {
	if m == nil {
		return nil
	}
	return append(Modifiers(nil), m...)
}

// BuiltinRef returns a reference to the predefined type called name.
func BuiltinRef(name string) *Ref {
	b, ok := LookupBuiltin(name)
	if !ok {
		panic("ast: " + name + " is not a predefined type")
	}
	return NewRef(b)
}
