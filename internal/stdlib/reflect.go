package stdlib

import (
	"reflect"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

// registerReflect exposes introspection over instances (spec section 1's
// "reflection" collaborator): listing an instance's declared properties and
// describing a Pointer's underlying native type via Go's reflect package.
func registerReflect() {
	reg("_reflect",
		module.FuncDesc{Name: "fields", Fn: reflectFields},
		module.FuncDesc{Name: "class_name", Fn: reflectClassName},
		module.FuncDesc{Name: "native_type", Fn: reflectNativeType},
	)
}

func reflectFields(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsObjType(value.TInstance) {
		return value.Nil, c.Throw("Exception", "reflect.fields(instance) expects an instance")
	}
	inst := args[0].AsObj().(*value.ObjInstance)
	var names []value.Value
	inst.Properties.Each(func(k, _ value.Value) { names = append(names, k) })
	return value.FromObj(c.GC().NewList(names)), true
}

func reflectClassName(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsObjType(value.TInstance) {
		return value.Nil, c.Throw("Exception", "reflect.class_name(instance) expects an instance")
	}
	inst := args[0].AsObj().(*value.ObjInstance)
	return c.GC().InternStringValue(inst.Class.Name), true
}

func reflectNativeType(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsObjType(value.TPointer) {
		return value.Nil, c.Throw("Exception", "reflect.native_type(pointer) expects a pointer")
	}
	ptr := args[0].AsObj().(*value.ObjPointer)
	return c.GC().InternStringValue(reflect.TypeOf(ptr.Pointer).String()), true
}
