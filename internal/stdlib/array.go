package stdlib

import (
	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

// registerArray exposes the fixed-size numeric-array collaborator spec
// section 1 scopes out of the core; it is modeled here as an ordinary
// ObjList with a fixed, zero-filled length rather than a distinct heap
// type, since the core's object model has no "array" tag of its own.
func registerArray() {
	reg("_array",
		module.FuncDesc{Name: "new", Fn: arrayNew},
		module.FuncDesc{Name: "fill", Fn: arrayFill},
	)
}

func arrayNew(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsNumber() {
		return value.Nil, c.Throw("Exception", "array.new(n) expects 1 numeric argument")
	}
	n := int(args[0].AsNumber())
	if n < 0 {
		return value.Nil, c.Throw("Exception", "array.new: size must be non-negative")
	}
	items := make([]value.Value, n)
	for i := range items {
		items[i] = value.Number(0)
	}
	return value.FromObj(c.GC().NewList(items)), true
}

func arrayFill(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 || !args[0].IsObjType(value.TList) {
		return value.Nil, c.Throw("Exception", "array.fill(list, value) expects a list and a value")
	}
	l := args[0].AsObj().(*value.ObjList)
	for i := range l.Items {
		l.Items[i] = args[1]
	}
	return args[0], true
}
