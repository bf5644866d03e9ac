package ast

import "fmt"

// ChildList is an ordered sequence of children owned by one node. Every
// item's parent is the list's owner; inserting a node that belongs to
// another live parent inserts a clone of it instead.
type ChildList[T Node] struct {
	owner Node
	items []T
}

func newChildList[T Node](owner Node) ChildList[T] {
	return ChildList[T]{owner: owner}
}

func (l *ChildList[T]) Len() int { return len(l.items) }

func (l *ChildList[T]) At(i int) T { return l.items[i] }

// Items returns a copy of the items.
func (l *ChildList[T]) Items() []T {
	return append([]T(nil), l.items...)
}

func (l *ChildList[T]) IndexOf(n Node) int {
	for i, it := range l.items {
		if Node(it) == n {
			return i
		}
	}
	return -1
}

func (l *ChildList[T]) Last() T {
	if len(l.items) == 0 {
		var zero T
		return zero
	}
	return l.items[len(l.items)-1]
}

func (l *ChildList[T]) prepare(v T) T {
	if isNil(v) {
		panic(fmt.Sprintf("ast: nil %T added to %s", v, l.owner.Kind()))
	}
	if l.IndexOf(v) >= 0 {
		panic(fmt.Sprintf("ast: %s is already a child of this %s", v.Kind(), l.owner.Kind()))
	}
	return adopt(l.owner, v).(T)
}

// Add appends v and returns the node actually stored, which is a clone
// when v had another parent.
func (l *ChildList[T]) Add(v T) T {
	v = l.prepare(v)
	l.items = append(l.items, v)
	return v
}

func (l *ChildList[T]) Insert(i int, v T) T {
	if i < 0 || i > len(l.items) {
		panic(fmt.Sprintf("ast: insert index %d out of range [0,%d]", i, len(l.items)))
	}
	v = l.prepare(v)
	l.items = append(l.items, v)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
	return v
}

// Set replaces the item at i and detaches the previous one.
func (l *ChildList[T]) Set(i int, v T) T {
	old := l.items[i]
	if Node(old) == Node(v) {
		return v
	}
	v = l.prepare(v)
	detach(l.owner, old)
	l.items[i] = v
	return v
}

func (l *ChildList[T]) RemoveAt(i int) T {
	old := l.items[i]
	l.items = append(l.items[:i], l.items[i+1:]...)
	detach(l.owner, old)
	return old
}

func (l *ChildList[T]) Remove(n Node) bool {
	i := l.IndexOf(n)
	if i < 0 {
		return false
	}
	l.RemoveAt(i)
	return true
}

func (l *ChildList[T]) Clear() {
	for _, it := range l.items {
		detach(l.owner, it)
	}
	l.items = nil
}

func (l *ChildList[T]) nodes() []Node {
	out := make([]Node, len(l.items))
	for i, it := range l.items {
		out[i] = it
	}
	return out
}

func (l *ChildList[T]) cloneInto(owner Node) ChildList[T] {
	c := ChildList[T]{owner: owner}
	if len(l.items) > 0 {
		c.items = make([]T, len(l.items))
		for i, it := range l.items {
			c.items[i] = cloneChild(owner, it)
		}
	}
	return c
}

// replace swaps old for repl, removing old when repl is nil.
func (l *ChildList[T]) replace(old, repl Node) bool {
	i := l.IndexOf(old)
	if i < 0 {
		return false
	}
	if isNil(repl) {
		l.RemoveAt(i)
		return true
	}
	v, ok := repl.(T)
	if !ok {
		panic(fmt.Sprintf("ast: %s cannot be stored in a list of %T", repl.Kind(), l.items[i]))
	}
	l.Set(i, v)
	return true
}
