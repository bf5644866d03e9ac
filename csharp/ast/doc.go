// Package ast defines the tree that the parser builds, the resolver binds
// and the renderer prints.
//
// # Nodes
//
// Every construct is a Node. Nodes embed NodeBase, which carries the parent
// link, format flags, annotations and the layout the parser recorded:
//
//	type Node interface {
//	    Kind() Kind
//	    Base() *NodeBase
//	    Children() []Node
//	    Clone() Node
//	    ReplaceChild(old, repl Node) bool
//	}
//
// Expressions additionally implement Expr and statements Stmt. Names are
// one of three kinds of NameNode: UnresolvedRef before (or after a failed)
// resolution, Ref once bound to a Symbol, and AmbiguousRef when several
// symbols matched.
//
// # Ownership
//
// A node has at most one parent. Single children are assigned through Set
// methods and repeated children live in a ChildList. Both detach the node
// they replace and adopt the new one; a node that still belongs to another
// parent is cloned first, so subtrees are never shared:
//
//	m := ast.NewMethod(ast.BuiltinRef("void"), "Run", nil, ast.NewBlock())
//	a.Members.Add(m)
//	b.Members.Add(m) // b receives a clone; m stays in a
//
// # Layout
//
// Parsed nodes remember the whitespace before their first token (Space)
// and before each of their own tokens (Gaps), and hold comments as
// annotations. A node built in code has no layout and renders with the
// default rules of its kind. ResetLayout forgets the recorded layout.
//
// # Registry
//
// Namespaces and top-level types are registered in a Registry while
// parsing. Every Namespace has its own mutex, so files may be parsed in
// parallel against one registry. Two declarations with the same name in
// one namespace are held by a NamespaceTypeGroup, which collapses back to
// a plain entry when one of them is removed.
package ast
