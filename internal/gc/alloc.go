package gc

import "vellum/internal/value"

// approxSize estimates an object's heap footprint for allocation accounting.
// It does not need to be exact, only monotonic with real growth, since it
// only drives the next_gc threshold.
func approxSize(o value.Obj) int64 {
	const headerSize = 32
	switch t := o.(type) {
	case *value.ObjString:
		return headerSize + int64(len(t.Chars))
	case *value.ObjBytes:
		return headerSize + int64(len(t.Bytes))
	case *value.ObjList:
		return headerSize + int64(len(t.Items))*16
	case *value.ObjDict:
		return headerSize + int64(t.Len())*32
	default:
		return headerSize
	}
}

// InternString returns the canonical ObjString for s, allocating and
// registering a new one only if no equal-bytes string is already interned.
// This is the single choke point spec section 3 requires: "creating a
// string checks that table first."
func (g *GC) InternString(s string) *value.ObjString {
	if existing, ok := g.interned[s]; ok {
		return existing
	}
	str := value.NewRawString(s)
	g.interned[s] = str
	g.track(str, approxSize(str))
	return str
}

// InternStringValue is the Value-boxed convenience form the compiler uses
// when emitting string constants.
func (g *GC) InternStringValue(s string) value.Value {
	return value.FromObj(g.InternString(s))
}

func (g *GC) NewBytes(b []byte) *value.ObjBytes {
	o := value.NewBytes(b)
	g.track(o, approxSize(o))
	return o
}

func (g *GC) NewList(items []value.Value) *value.ObjList {
	o := value.NewList(items)
	g.track(o, approxSize(o))
	return o
}

func (g *GC) NewDict() *value.ObjDict {
	o := value.NewDict()
	g.track(o, approxSize(o))
	return o
}

func (g *GC) NewRange(lower, upper float64) *value.ObjRange {
	o := value.NewRange(lower, upper)
	g.track(o, approxSize(o))
	return o
}

// Track registers an already-constructed object (used for types whose
// constructor needs arguments not worth threading through gc, e.g. files,
// functions, classes, closures, instances, modules, natives, pointers).
func (g *GC) Track(o value.Obj) value.Obj {
	g.track(o, approxSize(o))
	return o
}

func (g *GC) NewUpvalue(location int) *value.ObjUpvalue {
	o := value.NewUpvalue(location)
	g.track(o, approxSize(o))
	return o
}
