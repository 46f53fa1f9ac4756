package vm

import (
	"strings"

	"vellum/internal/value"
)

// registerBuiltinMethods populates the six builtin-type method tables (spec
// section 2, "Builtin method tables"). Every builtin iterable also gets the
// @iter/@itern pair so `for x in expr` (spec section 4.3, "for-in
// desugaring") works uniformly over user classes and builtin containers.
func (vm *VM) registerBuiltinMethods() {
	vm.addMethod(vm.listMethods, "@itern", vm.listItern)
	vm.addMethod(vm.listMethods, "@iter", vm.listIter)
	vm.addMethod(vm.listMethods, "length", method0(func(l *value.ObjList) value.Value { return value.Number(float64(len(l.Items))) }))
	vm.addMethod(vm.listMethods, "push", vm.listPush)
	vm.addMethod(vm.listMethods, "pop", vm.listPop)
	vm.addMethod(vm.listMethods, "contains", vm.listContains)
	vm.addMethod(vm.listMethods, "index_of", vm.listIndexOf)
	vm.addMethod(vm.listMethods, "clear", vm.listClear)
	vm.addMethod(vm.listMethods, "clone", vm.listClone)
	vm.addMethod(vm.listMethods, "to_string", vm.genericToString)

	vm.addMethod(vm.dictMethods, "@itern", vm.dictItern)
	vm.addMethod(vm.dictMethods, "@iter", vm.dictIter)
	vm.addMethod(vm.dictMethods, "length", method0(func(d *value.ObjDict) value.Value { return value.Number(float64(d.Len())) }))
	vm.addMethod(vm.dictMethods, "keys", vm.dictKeys)
	vm.addMethod(vm.dictMethods, "values", vm.dictValues)
	vm.addMethod(vm.dictMethods, "remove", vm.dictRemove)
	vm.addMethod(vm.dictMethods, "contains", vm.dictContains)
	vm.addMethod(vm.dictMethods, "get", vm.dictGet)
	vm.addMethod(vm.dictMethods, "set", vm.dictSet)
	vm.addMethod(vm.dictMethods, "to_string", vm.genericToString)

	vm.addMethod(vm.rangeMethods, "@itern", vm.rangeItern)
	vm.addMethod(vm.rangeMethods, "@iter", vm.rangeIter)
	vm.addMethod(vm.rangeMethods, "lower", method0(func(r *value.ObjRange) value.Value { return value.Number(r.Lower) }))
	vm.addMethod(vm.rangeMethods, "upper", method0(func(r *value.ObjRange) value.Value { return value.Number(r.Upper) }))
	vm.addMethod(vm.rangeMethods, "to_list", vm.rangeToList)

	vm.addMethod(vm.bytesMethods, "@itern", vm.bytesItern)
	vm.addMethod(vm.bytesMethods, "@iter", vm.bytesIter)
	vm.addMethod(vm.bytesMethods, "length", method0(func(b *value.ObjBytes) value.Value { return value.Number(float64(len(b.Bytes))) }))

	vm.addMethod(vm.fileMethods, "path", method0(func(f *value.ObjFile) value.Value { return vm.gc.InternStringValue(f.Path) }))
	vm.addMethod(vm.fileMethods, "is_open", method0(func(f *value.ObjFile) value.Value { return value.Bool(f.IsOpen) }))
	vm.addMethod(vm.fileMethods, "close", vm.fileClose)

	vm.addStringMethods()
}

func (vm *VM) addMethod(table *value.Table, name string, fn value.NativeFn) {
	n := value.NewNative(name, value.NativeMethod, fn)
	vm.gc.Track(n)
	table.Set(vm.gc.InternStringValue(name), value.FromObj(n))
}

// method0 adapts a zero-argument receiver-typed method into a NativeFn,
// cutting down on the boilerplate of the many trivial accessors above.
func method0[T value.Obj](f func(T) value.Value) value.NativeFn {
	return func(caller interface{}, args []value.Value) (value.Value, bool) {
		recv := args[0].AsObj().(T)
		return f(recv), true
	}
}

// invokeBuiltin dispatches OP_INVOKE/OP_INVOKE_SELF against a receiver that
// is not an Instance: numbers and booleans have no methods, every other
// type consults its method table.
func (vm *VM) invokeBuiltin(receiver value.Value, name value.Value, argc int) bool {
	table := vm.methodTableFor(receiver)
	if table == nil {
		return vm.Throw("Exception", "'"+receiver.TypeName()+"' has no methods")
	}
	m, ok := table.Get(name)
	if !ok {
		return vm.Throw("Exception", "'"+receiver.TypeName()+"' has no method '"+value.ToString(name)+"'")
	}
	native := m.AsObj().(*value.ObjNative)

	args := make([]value.Value, argc+1)
	args[0] = receiver
	for i := argc; i >= 1; i-- {
		args[i] = vm.pop()
	}
	vm.pop() // receiver itself, already captured in args[0]

	mark := vm.gc.ProtectionMark()
	result, ok2 := native.Fn(vm, args)
	vm.gc.ClearProtection(mark)
	if !ok2 {
		return false
	}
	vm.push(result)
	return true
}

func (vm *VM) methodTableFor(v value.Value) *value.Table {
	if !v.IsObj() {
		return nil
	}
	switch v.AsObj().ObjType() {
	case value.TString:
		return vm.stringMethods
	case value.TList:
		return vm.listMethods
	case value.TDict:
		return vm.dictMethods
	case value.TRange:
		return vm.rangeMethods
	case value.TBytes:
		return vm.bytesMethods
	case value.TFile:
		return vm.fileMethods
	}
	return nil
}

func (vm *VM) genericToString(caller interface{}, args []value.Value) (value.Value, bool) {
	return vm.gc.InternStringValue(value.ToString(args[0])), true
}

// --- List ---

func (vm *VM) listItern(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	if args[1].IsNil() {
		if len(l.Items) == 0 {
			return value.Nil, true
		}
		return value.Number(0), true
	}
	idx := int(args[1].AsNumber()) + 1
	if idx >= len(l.Items) {
		return value.Nil, true
	}
	return value.Number(float64(idx)), true
}

func (vm *VM) listIter(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	idx := int(args[1].AsNumber())
	if idx < 0 || idx >= len(l.Items) {
		vm.Throw("Exception", "list index out of range")
		return value.Nil, false
	}
	return l.Items[idx], true
}

func (vm *VM) listPush(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	for _, v := range args[1:] {
		l.Append(v)
	}
	return args[0], true
}

func (vm *VM) listPop(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	if len(l.Items) == 0 {
		vm.Throw("Exception", "pop from empty list")
		return value.Nil, false
	}
	last := l.Items[len(l.Items)-1]
	l.Items = l.Items[:len(l.Items)-1]
	return last, true
}

func (vm *VM) listContains(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	for _, v := range l.Items {
		if v.Equals(args[1]) {
			return value.Bool(true), true
		}
	}
	return value.Bool(false), true
}

func (vm *VM) listIndexOf(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	for i, v := range l.Items {
		if v.Equals(args[1]) {
			return value.Number(float64(i)), true
		}
	}
	return value.Number(-1), true
}

func (vm *VM) listClear(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	l.Items = l.Items[:0]
	return value.Nil, true
}

func (vm *VM) listClone(caller interface{}, args []value.Value) (value.Value, bool) {
	l := args[0].AsObj().(*value.ObjList)
	clone := vm.gc.NewList(l.Clone().Items)
	return value.FromObj(clone), true
}

// --- Dict ---

func (vm *VM) dictItern(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	if args[1].IsNil() {
		if len(d.Keys) == 0 {
			return value.Nil, true
		}
		return d.Keys[0], true
	}
	for i, k := range d.Keys {
		if k.Equals(args[1]) {
			if i+1 >= len(d.Keys) {
				return value.Nil, true
			}
			return d.Keys[i+1], true
		}
	}
	return value.Nil, true
}

func (vm *VM) dictIter(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	v, ok := d.Get(args[1])
	if !ok {
		return value.Nil, true
	}
	return v, true
}

func (vm *VM) dictKeys(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	items := make([]value.Value, len(d.Keys))
	copy(items, d.Keys)
	return value.FromObj(vm.gc.NewList(items)), true
}

func (vm *VM) dictValues(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	items := make([]value.Value, len(d.Keys))
	for i, k := range d.Keys {
		items[i], _ = d.Get(k)
	}
	return value.FromObj(vm.gc.NewList(items)), true
}

func (vm *VM) dictRemove(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	return value.Bool(d.Remove(args[1])), true
}

func (vm *VM) dictContains(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	_, ok := d.Get(args[1])
	return value.Bool(ok), true
}

func (vm *VM) dictGet(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	if v, ok := d.Get(args[1]); ok {
		return v, true
	}
	if len(args) > 2 {
		return args[2], true
	}
	return value.Nil, true
}

func (vm *VM) dictSet(caller interface{}, args []value.Value) (value.Value, bool) {
	d := args[0].AsObj().(*value.ObjDict)
	d.Set(args[1], args[2])
	return args[0], true
}

// --- Range ---

// rangeItern implements the range iterator protocol's "next" half. Ranges
// are exclusive of their upper bound (spec section 8 seed test 2: `0..3`
// must visit exactly 0, 1, 2), so both the first and subsequent values are
// checked against r.Upper before being yielded.
func (vm *VM) rangeItern(caller interface{}, args []value.Value) (value.Value, bool) {
	r := args[0].AsObj().(*value.ObjRange)
	if args[1].IsNil() {
		if r.Ascending() {
			if r.Lower >= r.Upper {
				return value.Nil, true
			}
		} else if r.Lower <= r.Upper {
			return value.Nil, true
		}
		return value.Number(r.Lower), true
	}
	prev := args[1].AsNumber()
	var next float64
	if r.Ascending() {
		next = prev + 1
		if next >= r.Upper {
			return value.Nil, true
		}
	} else {
		next = prev - 1
		if next <= r.Upper {
			return value.Nil, true
		}
	}
	return value.Number(next), true
}

func (vm *VM) rangeIter(caller interface{}, args []value.Value) (value.Value, bool) {
	return args[1], true
}

// rangeToList materializes a range as a List, using the same exclusive
// upper bound as rangeItern.
func (vm *VM) rangeToList(caller interface{}, args []value.Value) (value.Value, bool) {
	r := args[0].AsObj().(*value.ObjRange)
	var items []value.Value
	if r.Ascending() {
		for n := r.Lower; n < r.Upper; n++ {
			items = append(items, value.Number(n))
		}
	} else {
		for n := r.Lower; n > r.Upper; n-- {
			items = append(items, value.Number(n))
		}
	}
	return value.FromObj(vm.gc.NewList(items)), true
}

// --- Bytes ---

func (vm *VM) bytesItern(caller interface{}, args []value.Value) (value.Value, bool) {
	b := args[0].AsObj().(*value.ObjBytes)
	if args[1].IsNil() {
		if len(b.Bytes) == 0 {
			return value.Nil, true
		}
		return value.Number(0), true
	}
	idx := int(args[1].AsNumber()) + 1
	if idx >= len(b.Bytes) {
		return value.Nil, true
	}
	return value.Number(float64(idx)), true
}

func (vm *VM) bytesIter(caller interface{}, args []value.Value) (value.Value, bool) {
	b := args[0].AsObj().(*value.ObjBytes)
	idx := int(args[1].AsNumber())
	if idx < 0 || idx >= len(b.Bytes) {
		vm.Throw("Exception", "bytes index out of range")
		return value.Nil, false
	}
	return value.Number(float64(b.Bytes[idx])), true
}

// --- File ---

func (vm *VM) fileClose(caller interface{}, args []value.Value) (value.Value, bool) {
	f := args[0].AsObj().(*value.ObjFile)
	if err := f.Close(); err != nil {
		vm.Throw("Exception", err.Error())
		return value.Nil, false
	}
	return value.Nil, true
}

// --- String ---

func (vm *VM) addStringMethods() {
	vm.addMethod(vm.stringMethods, "@itern", vm.stringItern)
	vm.addMethod(vm.stringMethods, "@iter", vm.stringIter)
	vm.addMethod(vm.stringMethods, "length", method0(func(s *value.ObjString) value.Value { return value.Number(float64(s.RuneCount)) }))
	vm.addMethod(vm.stringMethods, "upper", method0(func(s *value.ObjString) value.Value { return vm.gc.InternStringValue(strings.ToUpper(s.Chars)) }))
	vm.addMethod(vm.stringMethods, "lower", method0(func(s *value.ObjString) value.Value { return vm.gc.InternStringValue(strings.ToLower(s.Chars)) }))
	vm.addMethod(vm.stringMethods, "trim", method0(func(s *value.ObjString) value.Value { return vm.gc.InternStringValue(strings.TrimSpace(s.Chars)) }))
	vm.addMethod(vm.stringMethods, "contains", vm.stringContains)
	vm.addMethod(vm.stringMethods, "split", vm.stringSplit)
	vm.addMethod(vm.stringMethods, "replace", vm.stringReplace)
	vm.addMethod(vm.stringMethods, "index_of", vm.stringIndexOf)
	vm.addMethod(vm.stringMethods, "to_string", vm.genericToString)
}

func (vm *VM) stringItern(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	runes := []rune(s.Chars)
	if args[1].IsNil() {
		if len(runes) == 0 {
			return value.Nil, true
		}
		return value.Number(0), true
	}
	idx := int(args[1].AsNumber()) + 1
	if idx >= len(runes) {
		return value.Nil, true
	}
	return value.Number(float64(idx)), true
}

func (vm *VM) stringIter(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	runes := []rune(s.Chars)
	idx := int(args[1].AsNumber())
	if idx < 0 || idx >= len(runes) {
		vm.Throw("Exception", "string index out of range")
		return value.Nil, false
	}
	return vm.gc.InternStringValue(string(runes[idx])), true
}

func (vm *VM) stringContains(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	return value.Bool(strings.Contains(s.Chars, value.ToString(args[1]))), true
}

func (vm *VM) stringSplit(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	sep := value.ToString(args[1])
	parts := strings.Split(s.Chars, sep)
	items := make([]value.Value, len(parts))
	for i, p := range parts {
		items[i] = vm.gc.InternStringValue(p)
	}
	return value.FromObj(vm.gc.NewList(items)), true
}

func (vm *VM) stringReplace(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	old, new := value.ToString(args[1]), value.ToString(args[2])
	return vm.gc.InternStringValue(strings.ReplaceAll(s.Chars, old, new)), true
}

func (vm *VM) stringIndexOf(caller interface{}, args []value.Value) (value.Value, bool) {
	s := args[0].AsObj().(*value.ObjString)
	return value.Number(float64(strings.Index(s.Chars, value.ToString(args[1])))), true
}
