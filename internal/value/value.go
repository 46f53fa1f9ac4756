package value

import (
	"fmt"
	"math"
	"strconv"
)

// Type discriminates the five Value variants from spec section 3.
type Type uint8

const (
	TNil Type = iota
	TEmpty
	TBool
	TNumber
	TObj
)

// Value is a small fixed-size tagged union. Nil, Empty, Bool and Number are
// held inline; Obj values carry a reference to a heap object.
type Value struct {
	typ Type
	b   bool
	n   float64
	o   Obj
}

var Nil = Value{typ: TNil}
var Empty = Value{typ: TEmpty}

func Bool(b bool) Value      { return Value{typ: TBool, b: b} }
func Number(n float64) Value { return Value{typ: TNumber, n: n} }
func FromObj(o Obj) Value {
	if o == nil {
		return Nil
	}
	return Value{typ: TObj, o: o}
}

func (v Value) Type() Type     { return v.typ }
func (v Value) IsNil() bool    { return v.typ == TNil }
func (v Value) IsEmpty() bool  { return v.typ == TEmpty }
func (v Value) IsBool() bool   { return v.typ == TBool }
func (v Value) IsNumber() bool { return v.typ == TNumber }
func (v Value) IsObj() bool    { return v.typ == TObj }

func (v Value) AsBool() bool      { return v.b }
func (v Value) AsNumber() float64 { return v.n }
func (v Value) AsObj() Obj        { return v.o }

func (v Value) IsObjType(t ObjType) bool {
	return v.typ == TObj && v.o.ObjType() == t
}

// TypeName returns the runtime type name used by `typeof`.
func (v Value) TypeName() string {
	switch v.typ {
	case TNil:
		return "nil"
	case TEmpty:
		return "empty"
	case TBool:
		return "bool"
	case TNumber:
		return "number"
	case TObj:
		return v.o.ObjType().String()
	}
	return "unknown"
}

// IsFalsey implements the truthiness rule from spec section 4.1.
func (v Value) IsFalsey() bool {
	switch v.typ {
	case TNil, TEmpty:
		return true
	case TBool:
		return !v.b
	case TNumber:
		return v.n < 0
	case TObj:
		switch o := v.o.(type) {
		case *ObjString:
			return len(o.Chars) == 0
		case *ObjBytes:
			return len(o.Bytes) == 0
		case *ObjList:
			return len(o.Items) == 0
		case *ObjDict:
			return len(o.Keys) == 0
		}
	}
	return false
}

// Equals implements the equality rule from spec section 4.1: same variant
// required, Number uses bit-equality, Obj uses reference identity except for
// strings which compare by interned identity (so it still reduces to
// pointer equality once interning is in effect).
func (v Value) Equals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TNil, TEmpty:
		return true
	case TBool:
		return v.b == other.b
	case TNumber:
		return math.Float64bits(v.n) == math.Float64bits(other.n)
	case TObj:
		return v.o == other.o
	}
	return false
}

// Hash mixes a 64-bit hash per the per-variant scheme of spec section 4.1.
// Lists, Dicts and Files are not hashable; callers must check Hashable first.
func (v Value) Hashable() bool {
	if v.typ != TObj {
		return true
	}
	switch v.o.ObjType() {
	case TList, TDict, TFile:
		return false
	}
	return true
}

func (v Value) Hash() uint64 {
	switch v.typ {
	case TNil:
		return 7
	case TEmpty:
		return 0
	case TBool:
		if v.b {
			return 5
		}
		return 3
	case TNumber:
		return mixHash(math.Float64bits(v.n))
	case TObj:
		switch o := v.o.(type) {
		case *ObjString:
			return uint64(o.Hash)
		case *ObjBytes:
			return fnvHash(o.Bytes)
		case *ObjClass:
			return fnvHash([]byte(o.Name))
		case *ObjFunction:
			return mixHash(uint64(o.Arity)<<32 | uint64(len(o.Chunk.Code)))
		}
	}
	return 0
}

func mixHash(x uint64) uint64 {
	x ^= x >> 33
	x *= 0xff51afd7ed558ccd
	x ^= x >> 33
	x *= 0xc4ceb9fe1a85ec53
	x ^= x >> 33
	return x
}

func fnvHash(b []byte) uint64 {
	var h uint64 = 14695981039346656037
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

// FormatNumber renders a Number using the canonical "%.16g" format used
// whenever a number is coerced to a string (string concatenation, to_string).
func FormatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "Infinity"
	}
	if math.IsInf(n, -1) {
		return "-Infinity"
	}
	if math.IsNaN(n) {
		return "NaN"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strconv.FormatFloat(n, 'g', 16, 64)
}

// ToString renders any Value the way `echo`/string-concatenation would.
func ToString(v Value) string {
	switch v.typ {
	case TNil:
		return ""
	case TEmpty:
		return ""
	case TBool:
		if v.b {
			return "true"
		}
		return "false"
	case TNumber:
		return FormatNumber(v.n)
	case TObj:
		return objToString(v.o)
	}
	return ""
}

func objToString(o Obj) string {
	switch t := o.(type) {
	case *ObjString:
		return t.Chars
	case *ObjBytes:
		return fmt.Sprintf("b'%x'", t.Bytes)
	case *ObjList:
		return listToString(t)
	case *ObjDict:
		return dictToString(t)
	case *ObjRange:
		return fmt.Sprintf("<range %g..%g>", t.Lower, t.Upper)
	case *ObjFunction:
		return fmt.Sprintf("<function %s>", t.Name)
	case *ObjClosure:
		return fmt.Sprintf("<function %s>", t.Function.Name)
	case *ObjClass:
		return fmt.Sprintf("<class %s>", t.Name)
	case *ObjInstance:
		return fmt.Sprintf("<instance of %s>", t.Class.Name)
	case *ObjBoundMethod:
		return fmt.Sprintf("<bound method %s>", t.Closure.Function.Name)
	case *ObjModule:
		return fmt.Sprintf("<module %s>", t.Name)
	case *ObjNative:
		return fmt.Sprintf("<function %s>", t.Name)
	case *ObjFile:
		return fmt.Sprintf("<file %s>", t.Path)
	case *ObjPointer:
		return fmt.Sprintf("<ptr %s>", t.Display)
	}
	return "<object>"
}

func listToString(l *ObjList) string {
	s := "["
	for i, it := range l.Items {
		if i > 0 {
			s += ", "
		}
		s += ToString(it)
	}
	return s + "]"
}

func dictToString(d *ObjDict) string {
	s := "{"
	for i, k := range d.Keys {
		if i > 0 {
			s += ", "
		}
		v, _ := d.Table.Get(k)
		s += ToString(k) + ": " + ToString(v)
	}
	return s + "}"
}
