package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// checkOwnership verifies that every child reports its container as parent
// and that no node is reachable twice.
func checkOwnership(t *testing.T, root Node) {
	t.Helper()
	seen := map[Node]bool{}
	var visit func(n Node)
	visit = func(n Node) {
		require.False(t, seen[n], "%s reachable twice", n.Kind())
		seen[n] = true
		count := map[Node]int{}
		for _, c := range n.Children() {
			count[c]++
			assert.Same(t, n, c.Base().Parent(), "%s under %s has wrong parent", c.Kind(), n.Kind())
		}
		for c, k := range count {
			assert.Equal(t, 1, k, "%s listed %d times", c.Kind(), k)
		}
		for _, c := range n.Children() {
			visit(c)
		}
	}
	visit(root)
}

func sampleClass() *TypeDecl {
	cls := NewClass("Widget")
	cls.Mods.Add("public")
	cls.Members.Add(NewField(BuiltinRef("int"), NewVar("count", NewLiteral(LitInt, "0"))))
	cls.Members.Add(NewProperty(BuiltinRef("string"), "Name", NewAccessor("get", nil), NewAccessor("set", nil)))
	body := NewBlock(
		NewReturn(NewBinary("+", NewName("count"), NewLiteral(LitInt, "1"))),
	)
	m := NewMethod(BuiltinRef("int"), "Next", []*Parameter{NewParameter(BuiltinRef("int"), "step")}, body)
	AddAttribute(m, NewAttribute(NewCall(NewName("Obsolete"))))
	cls.Members.Add(m)
	return cls
}

func TestOwnershipInvariant(t *testing.T) {
	cu := NewCompilationUnit("widget.cs")
	ns := NewNamespaceDecl(QualifiedName("App.Model"))
	ns.Members.Add(sampleClass())
	cu.Members.Add(ns)
	checkOwnership(t, cu)
}

func TestChildListClonesForeignNode(t *testing.T) {
	a := NewBlock()
	b := NewBlock()
	s := NewExprStmt(NewName("x"))

	stored := a.Stmts.Add(s)
	assert.Same(t, s, stored)
	assert.Same(t, a, s.Parent())

	other := b.Stmts.Add(s)
	assert.NotSame(t, s, other, "a node with a live parent must be cloned")
	assert.Same(t, a, s.Parent())
	assert.Same(t, b, other.Base().Parent())

	checkOwnership(t, a)
	checkOwnership(t, b)
}

func TestChildListRejectsDuplicate(t *testing.T) {
	b := NewBlock()
	s := NewEmptyStmt()
	b.Stmts.Add(s)
	assert.Panics(t, func() { b.Stmts.Add(s) })
}

func TestChildListRemoveClearsParent(t *testing.T) {
	b := NewBlock()
	s := b.Stmts.Add(NewEmptyStmt())
	require.True(t, b.Stmts.Remove(s))
	assert.Nil(t, s.Base().Parent())
	assert.Equal(t, 0, b.Stmts.Len())

	// A detached node can be adopted again without cloning.
	again := b.Stmts.Add(s)
	assert.Same(t, s, again)
}

func TestChildListInsertAndSet(t *testing.T) {
	b := NewBlock(NewBreak(), NewContinue())
	e := NewEmptyStmt()
	b.Stmts.Insert(1, e)
	require.Equal(t, 3, b.Stmts.Len())
	assert.Equal(t, KindEmptyStmt, b.Stmts.At(1).Kind())

	old := b.Stmts.At(0)
	b.Stmts.Set(0, NewReturn(nil))
	assert.Nil(t, old.Base().Parent())
	assert.Equal(t, KindReturn, b.Stmts.At(0).Kind())
	checkOwnership(t, b)
}

func TestSetFieldDetachesPrevious(t *testing.T) {
	x := NewName("a")
	y := NewName("b")
	bin := NewBinary("+", x, NewLiteral(LitInt, "1"))
	bin.SetX(y)
	assert.Nil(t, x.Parent())
	assert.Same(t, bin, y.Parent())

	// Assigning a child that belongs to another node clones it.
	other := NewUnary("-", nil)
	other.SetX(y)
	assert.NotSame(t, y, other.X)
	assert.Same(t, bin, y.Parent())
}

func TestReplaceAndDetach(t *testing.T) {
	ret := NewReturn(NewName("a"))
	b := NewBlock(ret)
	x := ret.X
	require.True(t, Replace(x, NewName("b")))
	assert.Nil(t, x.Base().Parent())
	name, _ := NameOf(ret.X)
	assert.Equal(t, "b", name)

	require.True(t, Detach(ret))
	assert.Equal(t, 0, b.Stmts.Len())
	assert.Nil(t, ret.Parent())
}

func TestCloneIsDeep(t *testing.T) {
	cls := sampleClass()
	c := cls.Clone().(*TypeDecl)
	assert.NotSame(t, cls, c)
	assert.Nil(t, c.Parent())
	require.Equal(t, cls.Members.Len(), c.Members.Len())
	for i := range cls.Members.Len() {
		assert.NotSame(t, cls.Members.At(i), c.Members.At(i))
		assert.Same(t, c, c.Members.At(i).Base().Parent())
	}
	checkOwnership(t, c)

	m := c.Members.At(2).(*Method)
	attrs := Attributes(m)
	require.Len(t, attrs, 1)
	assert.Same(t, m, attrs[0].Parent())
	assert.NotSame(t, Attributes(cls.Members.At(2))[0], attrs[0])
}

func TestNewRefRejectsGroup(t *testing.T) {
	reg := NewRegistry()
	ns := reg.Namespace("A")
	ns.Add(NewClass("C"))
	ns.Add(NewClass("C"))
	g := ns.Group("C")
	require.NotNil(t, g)
	assert.Panics(t, func() { NewRef(g) })
}

func TestRebindKeepsLayout(t *testing.T) {
	name := NewName("Widget")
	name.Layout.SetSpace(" ")
	name.Layout.SetGap("name", Gap{Lead: true})
	f := NewField(name, NewVar("w", nil))
	cls := NewClass("Widget")

	ref := Rebind(name, NewRef(cls))
	assert.Same(t, f, ref.Base().Parent())
	assert.Same(t, ref, f.Type)
	require.NotNil(t, ref.Base().Layout.Space)
	assert.Equal(t, " ", *ref.Base().Layout.Space)
	assert.Nil(t, name.Parent())
}

func TestHoistLead(t *testing.T) {
	x := NewName("a")
	x.Layout.SetSpace("\n\t")
	AddComment(x, PlacePrefix, "// lead")
	AddDiagnostic(x, OriginParse, SeverityError, "stays")
	bin := NewBinary("=", x, NewLiteral(LitInt, "1"))
	HoistLead(bin, x)

	require.NotNil(t, bin.Layout.Space)
	assert.Equal(t, "\n\t", *bin.Layout.Space)
	assert.Nil(t, x.Layout.Space)
	require.Len(t, bin.Annotations(), 1)
	assert.Equal(t, "// lead", bin.Annotations()[0].Text)
	assert.Len(t, Messages(x), 1)
}

func TestAbsorbTokenMovesDiagnostics(t *testing.T) {
	frag := NewName("M")
	frag.Layout.SetSpace(" ")
	AddComment(frag, PlacePrefix, "/* c */")
	AddDiagnostic(frag, OriginParse, SeverityError, "expected '>'")
	m := NewVar("y", nil)
	AbsorbToken(m, "name", frag)

	assert.True(t, m.Layout.HasGap("name"))
	require.Len(t, Messages(m), 1)
	assert.Equal(t, "expected '>'", Messages(m)[0].Text)
	assert.Empty(t, frag.Annotations())
	require.Len(t, m.Annotations(), 2)
	assert.Equal(t, PlaceInfix, m.Annotations()[0].Place)
	assert.Equal(t, "name", m.Annotations()[0].Slot)
}

func TestDiagnostics(t *testing.T) {
	b := NewBlock(NewExprStmt(NewName("x")), NewEmptyStmt())
	AddDiagnostic(b.Stmts.At(0), OriginParse, SeverityError, "expected ';'")
	AddDiagnostic(b.Stmts.At(1), OriginResolve, SeverityWarning, "unused")

	all := Diagnostics(b)
	require.Len(t, all, 2)
	assert.Equal(t, "expected ';'", all[0].Message())

	ClearDiagnostics(b, OriginResolve)
	all = Diagnostics(b)
	require.Len(t, all, 1)
	assert.Equal(t, OriginParse, all[0].Origin())
}

func TestSingleLineDefaults(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"auto property", NewProperty(BuiltinRef("int"), "X", NewAccessor("get", nil), NewAccessor("set", nil)), true},
		{"property with body", NewProperty(BuiltinRef("int"), "X", NewAccessor("get", NewBlock(NewReturn(NewLiteral(LitInt, "1"))))), false},
		{"empty block", NewBlock(), true},
		{"block", NewBlock(NewBreak()), false},
		{"abstract method", NewMethod(BuiltinRef("void"), "M", nil, nil), true},
		{"method with body", NewMethod(BuiltinRef("void"), "M", nil, NewBlock()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSingleLine(tt.node))
		})
	}
}

func TestSetSingleLinePropagates(t *testing.T) {
	s := NewExprStmt(NewName("x"))
	s.Layout.SetSpace("\n    ")
	b := NewBlock(s)
	SetSingleLine(b, true)
	assert.True(t, IsSingleLine(b))
	assert.Nil(t, s.Layout.Space, "the first statement must not keep its line break")
}

func TestNewLines(t *testing.T) {
	f := NewField(BuiltinRef("int"), NewVar("x", nil))
	f.Layout.SetSpace("\n\n    ")
	assert.Equal(t, 2, NewLines(f))
	assert.True(t, IsFirstOnLine(f))

	SetNewLines(f, 0)
	assert.Equal(t, 0, NewLines(f))
	assert.True(t, HasNewLines(f))
	assert.False(t, IsFirstOnLine(f))
}

func TestSetHasBraces(t *testing.T) {
	b := NewBlock(NewBreak())
	SetHasBraces(b, false)
	assert.False(t, HasBraces(b))
	b.Stmts.Add(NewContinue())
	SetHasBraces(b, true)
	assert.True(t, HasBraces(b))
	assert.Panics(t, func() { SetHasBraces(b, false) })
}

func TestTypeDeclFullName(t *testing.T) {
	reg := NewRegistry()
	ns := reg.Namespace("App.Model")
	outer := NewClass("Outer")
	outer.Namespace = ns
	inner := NewClass("Inner")
	outer.Members.Add(inner)
	assert.Equal(t, "App.Model.Outer", outer.FullName())
	assert.Equal(t, "App.Model.Outer.Inner", outer.Members.At(0).(*TypeDecl).FullName())
}

func TestDottedName(t *testing.T) {
	e := QualifiedName("System.Collections.Generic")
	got, ok := DottedName(e)
	require.True(t, ok)
	assert.Equal(t, "System.Collections.Generic", got)

	_, ok = DottedName(NewCall(NewName("f")))
	assert.False(t, ok)
}
