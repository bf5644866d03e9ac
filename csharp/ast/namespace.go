package ast

import (
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Registry is the tree of namespaces and top-level types seen while parsing.
// It is separate from the parse trees and is shared by every unit of a
// codebase, so units may be parsed concurrently against it.
type Registry struct {
	global *Namespace
}

func NewRegistry() *Registry {
	return &Registry{global: &Namespace{}}
}

// Global returns the unnamed root namespace.
func (r *Registry) Global() *Namespace { return r.global }

// Namespace returns the namespace with the given dotted name, creating it
// and any missing ancestors. The empty name is the global namespace.
func (r *Registry) Namespace(fullName string) *Namespace {
	ns := r.global
	if fullName == "" {
		return ns
	}
	for _, part := range strings.Split(fullName, ".") {
		ns = ns.FindOrCreateChild(part)
	}
	return ns
}

// Lookup finds an existing namespace without creating anything.
func (r *Registry) Lookup(fullName string) *Namespace {
	ns := r.global
	if fullName == "" {
		return ns
	}
	for _, part := range strings.Split(fullName, ".") {
		ns = ns.Child(part)
		if ns == nil {
			return nil
		}
	}
	return ns
}

// Declare creates the chain of namespaces named by parts below parent and
// records one declaration on each of them. The returned slice is
// outermost first.
func (r *Registry) Declare(parent *Namespace, parts []string) []*Namespace {
	if parent == nil {
		parent = r.global
	}
	out := make([]*Namespace, 0, len(parts))
	ns := parent
	for _, part := range parts {
		ns = ns.FindOrCreateChild(part)
		ns.retain()
		out = append(out, ns)
	}
	return out
}

// Release undoes one Declare on each namespace and prunes the ones that
// became empty and unreferenced.
func (r *Registry) Release(nss []*Namespace) {
	for i := len(nss) - 1; i >= 0; i-- {
		nss[i].release()
	}
	for i := len(nss) - 1; i >= 0; i-- {
		nss[i].prune()
	}
}

// RemoveUnit removes everything cu contributed to the registry: its
// top-level types and its holds on namespaces. Namespaces left empty are
// removed.
func (r *Registry) RemoveUnit(cu *CompilationUnit) {
	var held [][]*Namespace
	Walk(cu, func(n Node) bool {
		switch x := n.(type) {
		case *TypeDecl:
			if x.Namespace != nil {
				x.Namespace.Remove(x)
				x.Namespace.prune()
			}
			return false
		case *NamespaceDecl:
			held = append(held, x.Namespaces)
		case *Using:
			held = append(held, x.Namespaces)
			return false
		case Stmt, Expr:
			return false
		}
		return true
	})
	for i := len(held) - 1; i >= 0; i-- {
		r.Release(held[i])
	}
}

// Namespace is one node of the registry. Each namespace guards its own
// entries with its own mutex, so concurrent parses only contend when they
// touch the same namespace.
type Namespace struct {
	mu       sync.Mutex
	name     string
	fullName string
	parent   *Namespace
	entries  map[string]Symbol
	refs     int
}

func key(name string) string {
	return norm.NFC.String(name)
}

func (ns *Namespace) SymbolName() string     { return ns.Name() }
func (ns *Namespace) SymbolKind() SymbolKind { return SymNamespace }

func (ns *Namespace) Name() string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.name
}

// FullName returns the cached dotted name; empty for the global namespace.
func (ns *Namespace) FullName() string {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.fullName
}

func (ns *Namespace) Parent() *Namespace {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.parent
}

func (ns *Namespace) IsGlobal() bool {
	return ns.Parent() == nil
}

// Child returns the child namespace called name, or nil.
func (ns *Namespace) Child(name string) *Namespace {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return childNamespace(ns.entries[key(name)])
}

func childNamespace(e Symbol) *Namespace {
	switch x := e.(type) {
	case *Namespace:
		return x
	case *NamespaceTypeGroup:
		for _, m := range x.members {
			if c, ok := m.(*Namespace); ok {
				return c
			}
		}
	}
	return nil
}

// FindOrCreateChild returns the child namespace called name, creating it
// when absent.
func (ns *Namespace) FindOrCreateChild(name string) *Namespace {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	if c := childNamespace(ns.entries[key(name)]); c != nil {
		return c
	}
	c := &Namespace{name: name, parent: ns, fullName: qualify(ns.fullName, name)}
	ns.addLocked(c)
	return c
}

// Add registers sym under its name. A second symbol with the same name
// turns the entry into a NamespaceTypeGroup.
func (ns *Namespace) Add(sym Symbol) {
	if _, ok := sym.(*NamespaceTypeGroup); ok {
		panic("ast: a NamespaceTypeGroup cannot be added to a namespace")
	}
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.addLocked(sym)
}

func (ns *Namespace) addLocked(sym Symbol) {
	if ns.entries == nil {
		ns.entries = make(map[string]Symbol)
	}
	k := key(sym.SymbolName())
	switch cur := ns.entries[k].(type) {
	case nil:
		ns.entries[k] = sym
	case *NamespaceTypeGroup:
		if !slices.Contains(cur.members, sym) {
			cur.members = append(cur.members, sym)
		}
	default:
		if cur == sym {
			return
		}
		ns.entries[k] = &NamespaceTypeGroup{name: sym.SymbolName(), ns: ns, members: []Symbol{cur, sym}}
	}
}

// Remove unregisters sym. A group that drops back to a single member is
// replaced by that member.
func (ns *Namespace) Remove(sym Symbol) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.removeLocked(sym)
}

func (ns *Namespace) removeLocked(sym Symbol) bool {
	k := key(sym.SymbolName())
	switch cur := ns.entries[k].(type) {
	case *NamespaceTypeGroup:
		i := slices.Index(cur.members, sym)
		if i < 0 {
			return false
		}
		cur.members = slices.Delete(cur.members, i, i+1)
		if len(cur.members) == 1 {
			ns.entries[k] = cur.members[0]
		}
		return true
	case nil:
		return false
	default:
		if cur != sym {
			return false
		}
		delete(ns.entries, k)
		return true
	}
}

// Entry returns what is registered under name: a *Namespace, a type
// declaration, a *NamespaceTypeGroup, or nil.
func (ns *Namespace) Entry(name string) Symbol {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return ns.entries[key(name)]
}

// Lookup returns the symbols registered under name, expanding a group into
// its members.
func (ns *Namespace) Lookup(name string) []Symbol {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	switch e := ns.entries[key(name)].(type) {
	case nil:
		return nil
	case *NamespaceTypeGroup:
		return append([]Symbol(nil), e.members...)
	default:
		return []Symbol{e}
	}
}

// Group returns the group registered under name, or nil when the name is
// absent or unique.
func (ns *Namespace) Group(name string) *NamespaceTypeGroup {
	g, _ := ns.Entry(name).(*NamespaceTypeGroup)
	return g
}

// Entries returns every registered entry sorted by name.
func (ns *Namespace) Entries() []Symbol {
	ns.mu.Lock()
	out := make([]Symbol, 0, len(ns.entries))
	for _, e := range ns.entries {
		out = append(out, e)
	}
	ns.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SymbolName() < out[j].SymbolName() })
	return out
}

// Namespaces returns the child namespaces sorted by name.
func (ns *Namespace) Namespaces() []*Namespace {
	ns.mu.Lock()
	var out []*Namespace
	for _, e := range ns.entries {
		if c := childNamespace(e); c != nil {
			out = append(out, c)
		}
	}
	ns.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (ns *Namespace) Len() int {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	return len(ns.entries)
}

// Rename changes the namespace's name, re-keys it in its parent and
// recomputes the cached full names of the whole subtree.
func (ns *Namespace) Rename(name string) {
	parent := ns.Parent()
	if parent == nil {
		panic("ast: the global namespace cannot be renamed")
	}
	parent.mu.Lock()
	parent.removeLocked(ns)
	ns.mu.Lock()
	ns.name = name
	ns.mu.Unlock()
	parent.addLocked(ns)
	parent.mu.Unlock()
	ns.updateFullName()
}

// Reparent moves the namespace below newParent and recomputes the cached
// full names of the whole subtree.
func (ns *Namespace) Reparent(newParent *Namespace) {
	old := ns.Parent()
	if old == nil {
		panic("ast: the global namespace cannot be moved")
	}
	for p := newParent; p != nil; p = p.Parent() {
		if p == ns {
			panic("ast: a namespace cannot be moved below itself")
		}
	}
	old.Remove(ns)
	ns.mu.Lock()
	ns.parent = newParent
	ns.mu.Unlock()
	newParent.Add(ns)
	ns.updateFullName()
}

func (ns *Namespace) updateFullName() {
	parent := ns.Parent()
	prefix := ""
	if parent != nil {
		prefix = parent.FullName()
	}
	ns.mu.Lock()
	ns.fullName = qualify(prefix, ns.name)
	ns.mu.Unlock()
	for _, c := range ns.Namespaces() {
		c.updateFullName()
	}
}

func (ns *Namespace) retain() {
	ns.mu.Lock()
	ns.refs++
	ns.mu.Unlock()
}

func (ns *Namespace) release() {
	ns.mu.Lock()
	if ns.refs > 0 {
		ns.refs--
	}
	ns.mu.Unlock()
}

// prune removes ns from its parent when nothing declares it and it holds no
// entries, then tries the same on the parent.
func (ns *Namespace) prune() {
	for cur := ns; cur != nil; {
		cur.mu.Lock()
		parent := cur.parent
		empty := cur.refs == 0 && len(cur.entries) == 0
		cur.mu.Unlock()
		if parent == nil || !empty {
			return
		}
		parent.Remove(cur)
		cur = parent
	}
}

// NamespaceTypeGroup aggregates two or more symbols registered under one
// name in one namespace, such as the parts of a partial type or colliding
// declarations. It only exists while it has at least two members.
type NamespaceTypeGroup struct {
	name    string
	ns      *Namespace
	members []Symbol
}

func (g *NamespaceTypeGroup) SymbolName() string     { return g.name }
func (g *NamespaceTypeGroup) SymbolKind() SymbolKind { return SymGroup }

// Namespace returns the namespace holding the group.
func (g *NamespaceTypeGroup) Namespace() *Namespace { return g.ns }

func (g *NamespaceTypeGroup) Members() []Symbol {
	g.ns.mu.Lock()
	defer g.ns.mu.Unlock()
	return append([]Symbol(nil), g.members...)
}

func (g *NamespaceTypeGroup) Len() int {
	g.ns.mu.Lock()
	defer g.ns.mu.Unlock()
	return len(g.members)
}
