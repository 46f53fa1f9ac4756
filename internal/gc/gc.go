// Package gc implements the precise, stop-the-world, tri-color mark-sweep
// collector described in spec section 4.5: allocation accounting through a
// single router, string interning with table pruning, a gray-object
// worklist mark phase, and a GC-protection stack so natives can build
// several transient objects before binding them to a persistent reference.
package gc

import (
	"vellum/internal/value"
)

// RootProvider is implemented by the VM (and, during compilation, by the
// compiler) so the collector can enumerate roots without depending on
// either package directly.
type RootProvider interface {
	// EnumerateRoots pushes every Value reachable directly from VM/compiler
	// state: the value stack, live call frames' closures and handler
	// classes, the open-upvalue list, globals, modules, method tables, the
	// Exception class, and (while compiling) enclosing compiler functions.
	EnumerateRoots(push func(value.Value))
}

// GC owns every heap object through the single all-objects chain; it is the
// allocation router for the whole runtime.
type GC struct {
	roots RootProvider

	allObjects     value.Obj
	bytesAllocated int64
	nextGC         int64
	allowGC        bool

	interned map[string]*value.ObjString

	// protection stack: every value pushed by Protect; a native records its
	// depth with ProtectionMark at entry and truncates back to it with
	// ClearProtection on return (spec section 4.5 and the design-notes open
	// question about its unguarded unwind discipline).
	protectionStack []value.Value
	protectMarks    []int

	gray []value.Obj

	// Collections counts completed collection cycles; no builtin exposes it.
	Collections int
}

const growthFactor = 1.25

// New creates a collector with the given initial heap threshold (bytes)
// before the first collection, matching the CLI's `-g N` flag (KiB).
func New(initialThresholdBytes int64) *GC {
	return &GC{
		nextGC:   initialThresholdBytes,
		allowGC:  true,
		interned: make(map[string]*value.ObjString),
	}
}

func (g *GC) SetRoots(r RootProvider) { g.roots = r }

func (g *GC) BytesAllocated() int64 { return g.bytesAllocated }
func (g *GC) NextGC() int64         { return g.nextGC }

// SetAllowGC toggles the `allowgc` flag that disables collection during
// sensitive initialization windows (spec section 4.5).
func (g *GC) SetAllowGC(allow bool) { g.allowGC = allow }

// track links a newly allocated object into the all-objects chain and
// accounts for its approximate size, triggering a collection if the new
// total crosses nextGC.
func (g *GC) track(o value.Obj, size int64) {
	o.SetNext(g.allObjects)
	g.allObjects = o
	g.bytesAllocated += size
	if g.allowGC && g.bytesAllocated > g.nextGC {
		g.Collect()
	}
}

// Protect pushes v onto the GC-protection stack so it stays reachable for
// the remainder of the current native call even if nothing else references
// it yet. ClearProtection(mark) must be called on native return with the
// mark returned by ProtectionMark at entry.
func (g *GC) Protect(v value.Value) value.Value {
	g.protectionStack = append(g.protectionStack, v)
	return v
}

func (g *GC) ProtectionMark() int { return len(g.protectionStack) }

// ClearProtection pops every protection pushed since mark. Calling it with a
// stale mark from a native that unbalanced its own protect/unprotect calls
// can under- or over-pop; spec section 9's open question flags this as
// inherited, unresolved behavior from the source rather than something this
// port should silently "fix" by guessing different semantics.
func (g *GC) ClearProtection(mark int) {
	if mark < 0 {
		mark = 0
	}
	if mark > len(g.protectionStack) {
		mark = len(g.protectionStack)
	}
	g.protectionStack = g.protectionStack[:mark]
}

// Collect runs one full stop-the-world mark-sweep cycle.
func (g *GC) Collect() {
	if g.roots == nil {
		return
	}
	g.markRoots()
	g.traceGray()
	g.pruneStrings()
	g.sweep()
	g.nextGC = int64(float64(g.bytesAllocated) * growthFactor)
	if g.nextGC < 1024 {
		g.nextGC = 1024
	}
	g.Collections++
}

func (g *GC) markRoots() {
	push := func(v value.Value) { g.markValue(v) }
	g.roots.EnumerateRoots(push)
	for _, v := range g.protectionStack {
		g.markValue(v)
	}
}

func (g *GC) markValue(v value.Value) {
	if !v.IsObj() {
		return
	}
	g.markObject(v.AsObj())
}

func (g *GC) markObject(o value.Obj) {
	if o == nil || o.IsMarked() {
		return
	}
	o.SetMarked(true)
	g.gray = append(g.gray, o)
}

// traceGray processes the gray worklist iteratively (not recursively), so
// deep object graphs (long lists, deep class chains) cannot blow the Go
// call stack during mark.
func (g *GC) traceGray() {
	for len(g.gray) > 0 {
		o := g.gray[len(g.gray)-1]
		g.gray = g.gray[:len(g.gray)-1]
		o.Trace(g.markValue)
	}
}

// pruneStrings removes unmarked strings from the intern table before sweep,
// so the intern table can never resurrect (or keep alive) a dead string.
func (g *GC) pruneStrings() {
	for k, s := range g.interned {
		if !s.IsMarked() {
			delete(g.interned, k)
		}
	}
}

// sweep walks the all-objects chain, unlinking and dropping any object whose
// mark bit is clear, and clears the bit on survivors for the next cycle.
func (g *GC) sweep() {
	var prev value.Obj
	cur := g.allObjects
	for cur != nil {
		next := cur.Next()
		if cur.IsMarked() {
			cur.SetMarked(false)
			prev = cur
		} else {
			finalize(cur)
			g.bytesAllocated -= approxSize(cur)
			if prev == nil {
				g.allObjects = next
			} else {
				prev.SetNext(next)
			}
		}
		cur = next
	}
	if g.bytesAllocated < 0 {
		g.bytesAllocated = 0
	}
}

func finalize(o value.Obj) {
	switch t := o.(type) {
	case *value.ObjPointer:
		t.Finalize()
	case *value.ObjFile:
		t.Close()
	}
}
