// Package value implements the tagged value and heap object model: the
// discriminated Value sum type and the heap object variants it can wrap
// (strings, lists, dicts, ranges, closures, classes, ...).
package value

// ObjType tags the concrete shape of a heap object.
type ObjType uint8

const (
	TString ObjType = iota
	TRange
	TList
	TDict
	TFile
	TBytes
	TUpvalue
	TBoundMethod
	TClosure
	TFunction
	TInstance
	TNative
	TClass
	TModule
	TSwitch
	TPointer
)

func (t ObjType) String() string {
	switch t {
	case TString:
		return "string"
	case TRange:
		return "range"
	case TList:
		return "list"
	case TDict:
		return "dict"
	case TFile:
		return "file"
	case TBytes:
		return "bytes"
	case TUpvalue:
		return "upvalue"
	case TBoundMethod:
		return "method"
	case TClosure:
		return "function"
	case TFunction:
		return "function"
	case TInstance:
		return "instance"
	case TNative:
		return "function"
	case TClass:
		return "class"
	case TModule:
		return "module"
	case TSwitch:
		return "switch"
	case TPointer:
		return "pointer"
	default:
		return "unknown"
	}
}

// Obj is satisfied by every heap object. The GC walks the all-objects chain
// through Next/SetNext and flips Marked during mark-sweep; it never needs to
// know the concrete type to sweep, only to trace references (Trace).
type Obj interface {
	ObjType() ObjType
	IsMarked() bool
	SetMarked(bool)
	Next() Obj
	SetNext(Obj)
	// Trace pushes every Value this object directly references onto the
	// supplied gray-worklist callback, letting the collector's mark phase
	// stay generic over object shape.
	Trace(push func(Value))
}

// Header is embedded by every concrete heap object to satisfy the bookkeeping
// half of Obj. Concrete types implement Trace themselves.
type Header struct {
	typ    ObjType
	marked bool
	next   Obj
}

func newHeader(t ObjType) Header { return Header{typ: t} }

func (h *Header) ObjType() ObjType  { return h.typ }
func (h *Header) IsMarked() bool    { return h.marked }
func (h *Header) SetMarked(m bool)  { h.marked = m }
func (h *Header) Next() Obj         { return h.next }
func (h *Header) SetNext(o Obj)     { h.next = o }
