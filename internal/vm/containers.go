package vm

import "vellum/internal/value"

// execRange implements OP_RANGE: pops [lower, upper] and pushes a Range
// whose iteration direction is implied by the sign of (upper - lower).
func (vm *VM) execRange() bool {
	upper := vm.pop()
	lower := vm.pop()
	lo, ok1 := numericOf(lower)
	hi, ok2 := numericOf(upper)
	if !ok1 || !ok2 {
		return vm.typeError2("range", lower, upper)
	}
	vm.push(value.FromObj(vm.gc.NewRange(lo, hi)))
	return true
}

// execList implements OP_LIST count: pops count values (in source order)
// and pushes a new List.
func (vm *VM) execList(count uint16) bool {
	items := make([]value.Value, count)
	for i := int(count) - 1; i >= 0; i-- {
		items[i] = vm.pop()
	}
	vm.push(value.FromObj(vm.gc.NewList(items)))
	return true
}

// execDict implements OP_DICT count: pops count (key, value) pairs and
// pushes a new Dict, preserving source insertion order.
func (vm *VM) execDict(count uint16) bool {
	pairs := make([]value.Value, count*2)
	for i := int(count)*2 - 1; i >= 0; i-- {
		pairs[i] = vm.pop()
	}
	d := vm.gc.NewDict()
	for i := 0; i < int(count); i++ {
		d.Set(pairs[i*2], pairs[i*2+1])
	}
	vm.push(value.FromObj(d))
	return true
}

// execGetIndex implements OP_GET_INDEX: List (numeric, negative-from-end),
// String (rune-indexed, negative-from-end, always returns a 1-rune string),
// Dict (by key) and Bytes (numeric).
func (vm *VM) execGetIndex() bool {
	idx := vm.pop()
	container := vm.pop()

	switch {
	case container.IsObjType(value.TList):
		l := container.AsObj().(*value.ObjList)
		i, ok := resolveIndex(idx, len(l.Items))
		if !ok {
			vm.Throw("Exception", "list index out of range")
			return false
		}
		vm.push(l.Items[i])
		return true
	case container.IsObjType(value.TString):
		s := container.AsObj().(*value.ObjString)
		runes := []rune(s.Chars)
		i, ok := resolveIndex(idx, len(runes))
		if !ok {
			vm.Throw("Exception", "string index out of range")
			return false
		}
		vm.push(vm.gc.InternStringValue(string(runes[i])))
		return true
	case container.IsObjType(value.TBytes):
		b := container.AsObj().(*value.ObjBytes)
		i, ok := resolveIndex(idx, len(b.Bytes))
		if !ok {
			vm.Throw("Exception", "bytes index out of range")
			return false
		}
		vm.push(value.Number(float64(b.Bytes[i])))
		return true
	case container.IsObjType(value.TDict):
		d := container.AsObj().(*value.ObjDict)
		v, ok := d.Get(idx)
		if !ok {
			vm.Throw("Exception", "key not found")
			return false
		}
		vm.push(v)
		return true
	}
	vm.Throw("Exception", "'"+container.TypeName()+"' is not indexable")
	return false
}

// execSetIndex implements OP_SET_INDEX: List/Bytes mutate in place by
// numeric index, Dict sets by key; the assigned value is pushed back so
// `a[i] = v` itself evaluates to v.
func (vm *VM) execSetIndex() bool {
	val := vm.pop()
	idx := vm.pop()
	container := vm.pop()

	switch {
	case container.IsObjType(value.TList):
		l := container.AsObj().(*value.ObjList)
		i, ok := resolveIndex(idx, len(l.Items))
		if !ok {
			vm.Throw("Exception", "list index out of range")
			return false
		}
		l.Items[i] = val
	case container.IsObjType(value.TBytes):
		b := container.AsObj().(*value.ObjBytes)
		i, ok := resolveIndex(idx, len(b.Bytes))
		if !ok {
			vm.Throw("Exception", "bytes index out of range")
			return false
		}
		n, ok := numericOf(val)
		if !ok {
			vm.Throw("Exception", "bytes element must be a number")
			return false
		}
		b.Bytes[i] = byte(int(n))
	case container.IsObjType(value.TDict):
		d := container.AsObj().(*value.ObjDict)
		d.Set(idx, val)
	default:
		vm.Throw("Exception", "'"+container.TypeName()+"' does not support index assignment")
		return false
	}
	vm.push(val)
	return true
}

// execGetRangedIndex implements OP_GET_RANGED_INDEX: `a[lo:hi]` slicing for
// List/String/Bytes; absent bounds arrive as Nil (pre-pushed by the
// compiler) and default to the start/end of the container.
func (vm *VM) execGetRangedIndex() bool {
	hi := vm.pop()
	lo := vm.pop()
	container := vm.pop()

	var length int
	switch {
	case container.IsObjType(value.TList):
		length = len(container.AsObj().(*value.ObjList).Items)
	case container.IsObjType(value.TString):
		length = len([]rune(container.AsObj().(*value.ObjString).Chars))
	case container.IsObjType(value.TBytes):
		length = len(container.AsObj().(*value.ObjBytes).Bytes)
	default:
		vm.Throw("Exception", "'"+container.TypeName()+"' does not support slicing")
		return false
	}

	start, end := resolveSlice(lo, hi, length)

	switch {
	case container.IsObjType(value.TList):
		l := container.AsObj().(*value.ObjList)
		items := make([]value.Value, end-start)
		copy(items, l.Items[start:end])
		vm.push(value.FromObj(vm.gc.NewList(items)))
	case container.IsObjType(value.TString):
		runes := []rune(container.AsObj().(*value.ObjString).Chars)
		vm.push(vm.gc.InternStringValue(string(runes[start:end])))
	case container.IsObjType(value.TBytes):
		b := container.AsObj().(*value.ObjBytes)
		buf := make([]byte, end-start)
		copy(buf, b.Bytes[start:end])
		vm.push(value.FromObj(vm.gc.NewBytes(buf)))
	}
	return true
}

// resolveIndex turns a Number Value into a bounds-checked slice index,
// supporting Python-style negative indexing from the end (spec section
// 4.4, "indexing incl. ranged/negative/UTF-8").
func resolveIndex(idx value.Value, length int) (int, bool) {
	n, ok := numericOf(idx)
	if !ok {
		return 0, false
	}
	i := int(n)
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, false
	}
	return i, true
}

// resolveSlice clamps [lo, hi) to a valid, possibly empty range over
// length, treating Nil bounds as "from the start"/"to the end" and
// negative bounds as offsets from the end.
func resolveSlice(lo, hi value.Value, length int) (int, int) {
	start := 0
	if !lo.IsNil() {
		if n, ok := numericOf(lo); ok {
			start = int(n)
		}
	}
	end := length
	if !hi.IsNil() {
		if n, ok := numericOf(hi); ok {
			end = int(n)
		}
	}
	if start < 0 {
		start += length
	}
	if end < 0 {
		end += length
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if start > length {
		start = length
	}
	if end < start {
		end = start
	}
	return start, end
}
