package ast

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupThreshold(t *testing.T) {
	reg := NewRegistry()
	ns := reg.Namespace("A")
	first := NewClass("C")
	second := NewClass("C")

	ns.Add(first)
	assert.Nil(t, ns.Group("C"), "a unique name must not create a group")
	assert.Same(t, first, ns.Entry("C"))

	ns.Add(second)
	g := ns.Group("C")
	require.NotNil(t, g)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []Symbol{first, second}, ns.Lookup("C"))

	require.True(t, ns.Remove(first))
	assert.Nil(t, ns.Group("C"), "removing down to one entry collapses the group")
	assert.Same(t, second, ns.Entry("C"))

	require.True(t, ns.Remove(second))
	assert.Nil(t, ns.Entry("C"))
	assert.False(t, ns.Remove(second))
}

func TestNamespaceAndTypeShareName(t *testing.T) {
	reg := NewRegistry()
	global := reg.Global()
	cls := NewClass("Tools")
	global.Add(cls)
	child := global.FindOrCreateChild("Tools")

	require.NotNil(t, global.Group("Tools"))
	assert.Same(t, child, global.Child("Tools"))
	assert.Same(t, child, global.FindOrCreateChild("Tools"))
	assert.Len(t, global.Lookup("Tools"), 2)
}

func TestFullNameCache(t *testing.T) {
	reg := NewRegistry()
	abc := reg.Namespace("A.B.C")
	b := reg.Lookup("A.B")
	require.NotNil(t, b)
	assert.Equal(t, "A.B.C", abc.FullName())
	assert.Equal(t, "", reg.Global().FullName())

	b.Rename("Renamed")
	assert.Equal(t, "A.Renamed", b.FullName())
	assert.Equal(t, "A.Renamed.C", abc.FullName())
	assert.Nil(t, reg.Lookup("A.B"))
	assert.Same(t, abc, reg.Lookup("A.Renamed.C"))

	x := reg.Namespace("X")
	b.Reparent(x)
	assert.Equal(t, "X.Renamed", b.FullName())
	assert.Equal(t, "X.Renamed.C", abc.FullName())
	assert.Nil(t, reg.Lookup("A.Renamed"))

	assert.Panics(t, func() { x.Reparent(abc) })
}

func TestNormalizedKeys(t *testing.T) {
	reg := NewRegistry()
	ns := reg.Global()
	ns.Add(NewClass("Caf\u00e9"))
	assert.NotNil(t, ns.Entry("Cafe\u0301"), "decomposed spelling must find the precomposed name")
}

func TestRemoveUnitPrunes(t *testing.T) {
	reg := NewRegistry()
	cu := NewCompilationUnit("a.cs")
	decl := NewNamespaceDecl(QualifiedName("Outer.Inner"))
	decl.Namespaces = reg.Declare(nil, []string{"Outer", "Inner"})
	decl.Namespace = decl.Namespaces[1]
	cls := NewClass("Only")
	cls.Namespace = decl.Namespace
	decl.Namespace.Add(cls)
	decl.Members.Add(cls)
	cu.Members.Add(decl)

	keep := reg.Declare(nil, []string{"Outer"})

	reg.RemoveUnit(cu)
	assert.Nil(t, reg.Lookup("Outer.Inner"))
	assert.NotNil(t, reg.Lookup("Outer"), "a namespace still declared elsewhere survives")

	reg.Release(keep)
	assert.Nil(t, reg.Lookup("Outer"))
}

func TestConcurrentRegistration(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ns := reg.Namespace(fmt.Sprintf("Shared.N%d", i%4))
			for j := range 50 {
				cls := NewClass(fmt.Sprintf("T%d", j))
				ns.Add(cls)
				if j%2 == 0 {
					ns.Remove(cls)
				}
			}
		}(i)
	}
	wg.Wait()

	shared := reg.Lookup("Shared")
	require.NotNil(t, shared)
	assert.Len(t, shared.Namespaces(), 4)
	for _, ns := range shared.Namespaces() {
		// 4 goroutines per namespace each left the odd-numbered classes.
		g := ns.Group("T1")
		require.NotNil(t, g)
		assert.Equal(t, 4, g.Len())
		assert.Nil(t, ns.Entry("T0"))
	}
}
