package gc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/value"
)

// fakeRoots lets each test control exactly which values the collector sees
// as reachable, without needing a real VM/compiler.
type fakeRoots struct {
	values []value.Value
}

func (r *fakeRoots) EnumerateRoots(push func(value.Value)) {
	for _, v := range r.values {
		push(v)
	}
}

func TestInternStringDedupes(t *testing.T) {
	g := New(1 << 20)
	a := g.InternString("hello")
	b := g.InternString("hello")
	require.Same(t, a, b)

	c := g.InternString("world")
	require.NotSame(t, a, c)
}

func TestCollectSweepsUnreachableObjects(t *testing.T) {
	g := New(1 << 20)
	roots := &fakeRoots{}
	g.SetRoots(roots)

	kept := g.InternString("kept")
	garbage := g.InternString("garbage")

	roots.values = []value.Value{value.FromObj(kept)}
	g.Collect()

	// The kept string must still be interned and reachable.
	again := g.InternString("kept")
	require.Same(t, kept, again)

	// The unreached string's intern-table entry must have been pruned, so
	// re-interning the same bytes allocates a fresh object.
	fresh := g.InternString("garbage")
	require.Equal(t, "garbage", fresh.Chars)
	require.NotSame(t, garbage, fresh)
}

func TestCollectTracesThroughListContents(t *testing.T) {
	g := New(1 << 20)
	roots := &fakeRoots{}
	g.SetRoots(roots)

	inner := g.InternString("nested")
	list := g.NewList([]value.Value{value.FromObj(inner)})
	roots.values = []value.Value{value.FromObj(list)}

	g.Collect()

	again := g.InternString("nested")
	require.Same(t, inner, again, "string reachable only via a rooted list's contents must survive collection")
}

func TestProtectKeepsValueAliveAcrossCollection(t *testing.T) {
	g := New(1 << 20)
	roots := &fakeRoots{}
	g.SetRoots(roots)

	mark := g.ProtectionMark()
	protected := g.Protect(value.FromObj(g.InternString("protected")))
	g.Collect()
	g.ClearProtection(mark)

	require.False(t, protected.IsNil())
	again := g.InternString("protected")
	require.Same(t, protected.AsObj(), again)
}

func TestClearProtectionPopsBackToMark(t *testing.T) {
	g := New(1 << 20)
	g.Protect(value.Number(1))
	mark := g.ProtectionMark()
	g.Protect(value.Number(2))
	g.Protect(value.Number(3))
	require.Equal(t, mark+2, g.ProtectionMark())

	g.ClearProtection(mark)
	require.Equal(t, mark, g.ProtectionMark())
}

func TestSetAllowGCSuppressesCollection(t *testing.T) {
	g := New(1) // tiny threshold so any allocation would normally trigger a collect
	roots := &fakeRoots{}
	g.SetRoots(roots)
	g.SetAllowGC(false)

	before := g.Collections
	g.NewList(make([]value.Value, 100))
	require.Equal(t, before, g.Collections, "collection must not run while allowGC is false")
}
