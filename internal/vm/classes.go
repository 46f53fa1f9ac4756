package vm

import "vellum/internal/value"

// execClass implements OP_CLASS: push a freshly allocated, empty class onto
// the stack; the compiler immediately binds it to a variable and then
// re-reads that variable for the rest of the class body (spec section 4.4,
// "Classes").
func (vm *VM) execClass(name value.Value) bool {
	cls := value.NewClass(value.ToString(name))
	vm.gc.Track(cls)
	vm.push(value.FromObj(cls))
	return true
}

// execMethod implements OP_METHOD: pop a Closure and attach it to the class
// sitting just below it on the stack (left in place for further members).
// A method whose name matches the class's own name is the class's
// initializer; it is stored under the literal key "init" as well, so that
// `parent()` -- which always targets the fixed name "init" (see
// DESIGN.md) -- can find an inherited initializer regardless of what the
// subclass named its own constructor.
func (vm *VM) execMethod(name value.Value) bool {
	closure := vm.pop()
	cls := vm.peek(0).AsObj().(*value.ObjClass)

	if value.ToString(name) == cls.Name {
		cls.Initializer = closure
		cls.Methods.Set(vm.gc.InternStringValue("init"), closure)
		return true
	}
	cls.Methods.Set(name, closure)
	return true
}

// execClassProperty implements OP_CLASS_PROPERTY: pop a value (a field
// default, or a compiled static-method Closure) and attach it to the class
// below. static selects which of the two per-class tables it lands in.
func (vm *VM) execClassProperty(name value.Value, static bool) bool {
	v := vm.pop()
	cls := vm.peek(0).AsObj().(*value.ObjClass)
	if static {
		cls.StaticProperties.Set(name, v)
	} else {
		cls.PropertyDefaults.Set(name, v)
	}
	return true
}

// execInherit implements OP_INHERIT: pop [subclass, superclass] (both
// pushed by non-destructive variable reads) and shallow-copy the parent's
// methods/fields into the child, then record the chain for ResolveMethod
// fallback and for `typeof`/`is` style checks.
func (vm *VM) execInherit() bool {
	superVal := vm.pop()
	subVal := vm.pop()

	super, ok := superVal.AsObj().(*value.ObjClass)
	if !ok {
		vm.Throw("Exception", "superclass must be a class")
		return false
	}
	sub := subVal.AsObj().(*value.ObjClass)

	super.Methods.Each(func(k, v value.Value) { sub.Methods.Set(k, v) })
	super.PropertyDefaults.Each(func(k, v value.Value) { sub.PropertyDefaults.Set(k, v) })
	super.StaticProperties.Each(func(k, v value.Value) { sub.StaticProperties.Set(k, v) })
	if !super.Initializer.IsEmpty() {
		sub.Initializer = super.Initializer
	}
	sub.Super = super
	return true
}

// execGetProperty implements OP_GET_PROPERTY / OP_GET_SELF_PROPERTY.
// allowPrivate is true only for the self-receiver opcode (spec section
// 4.4, "private names": access to a `_`-prefixed member is a compile-valid
// parse but a runtime error unless performed via self).
func (vm *VM) execGetProperty(name value.Value, allowPrivate bool) bool {
	receiver := vm.pop()

	if receiver.IsObjType(value.TInstance) {
		inst := receiver.AsObj().(*value.ObjInstance)
		if !allowPrivate && isPrivateName(name) {
			vm.Throw("Exception", "cannot access private property '"+value.ToString(name)+"' outside of self")
			return false
		}
		if v, ok := inst.Properties.Get(name); ok {
			vm.push(v)
			return true
		}
		if m, ok := inst.Class.ResolveMethod(name); ok {
			bound := value.NewBoundMethod(receiver, m.AsObj().(*value.ObjClosure))
			vm.gc.Track(bound)
			vm.push(value.FromObj(bound))
			return true
		}
		vm.Throw("Exception", "undefined property '"+value.ToString(name)+"'")
		return false
	}

	if receiver.IsObjType(value.TModule) {
		mod := receiver.AsObj().(*value.ObjModule)
		if v, ok := mod.Values.Get(name); ok {
			vm.push(v)
			return true
		}
		vm.Throw("Exception", "module '"+mod.Name+"' has no export '"+value.ToString(name)+"'")
		return false
	}

	if receiver.IsObjType(value.TClass) {
		cls := receiver.AsObj().(*value.ObjClass)
		if v, ok := cls.StaticProperties.Get(name); ok {
			vm.push(v)
			return true
		}
		vm.Throw("Exception", "class '"+cls.Name+"' has no static property '"+value.ToString(name)+"'")
		return false
	}

	table := vm.methodTableFor(receiver)
	if table == nil {
		vm.Throw("Exception", "'"+receiver.TypeName()+"' has no properties")
		return false
	}
	m, ok := table.Get(name)
	if !ok {
		vm.Throw("Exception", "'"+receiver.TypeName()+"' has no method '"+value.ToString(name)+"'")
		return false
	}
	// Builtin-type methods are plain NativeFns taking the receiver as
	// args[0]; OP_INVOKE fuses fetch+call for the common case, so a bare
	// OP_GET_PROPERTY on one just yields the unbound native.
	vm.push(m)
	return true
}

// execSetProperty implements OP_SET_PROPERTY: only Instances carry mutable
// properties.
func (vm *VM) execSetProperty(name value.Value) bool {
	val := vm.pop()
	receiver := vm.pop()

	inst, ok := receiver.AsObj().(*value.ObjInstance)
	if !ok {
		vm.Throw("Exception", "cannot set property on a '"+receiver.TypeName()+"'")
		return false
	}
	inst.Properties.Set(name, val)
	vm.push(val)
	return true
}

// execGetSuper implements OP_GET_SUPER: `parent.name` used as a value
// rather than called directly, bound to the current frame's receiver.
func (vm *VM) execGetSuper(name value.Value) bool {
	superVal := vm.pop()
	super := superVal.AsObj().(*value.ObjClass)
	receiver := vm.stack[vm.currentFrame().base]

	m, ok := super.ResolveMethod(name)
	if !ok {
		vm.Throw("Exception", "undefined property '"+value.ToString(name)+"' on superclass")
		return false
	}
	bound := value.NewBoundMethod(receiver, m.AsObj().(*value.ObjClosure))
	vm.gc.Track(bound)
	vm.push(value.FromObj(bound))
	return true
}
