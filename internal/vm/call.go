package vm

import (
	"strconv"

	"vellum/internal/value"
)

// callValue dispatches OP_CALL's callee, which may be a script closure, a
// native function, a bound method, or a class (construction) -- spec
// section 4.4, "Calling convention". argc values plus the callee itself
// already sit on top of the stack; on success exactly one value (the
// eventual return) will occupy that span once the call completes.
func (vm *VM) callValue(callee value.Value, argc int) bool {
	if !callee.IsObj() {
		return vm.Throw("Exception", "can only call functions and classes")
	}
	switch o := callee.AsObj().(type) {
	case *value.ObjClosure:
		return vm.callClosure(o, argc)
	case *value.ObjNative:
		return vm.callNative(o, argc)
	case *value.ObjBoundMethod:
		vm.stack[vm.sp-argc-1] = o.Receiver
		return vm.callClosure(o.Closure, argc)
	case *value.ObjClass:
		return vm.instantiate(o, argc)
	default:
		return vm.Throw("Exception", "can only call functions and classes")
	}
}

// callClosure enforces arity, collects variadic surplus into a list, pushes
// a new frame, and returns. It never runs the callee itself; the main loop
// picks up execution at the new frame on its next iteration.
func (vm *VM) callClosure(closure *value.ObjClosure, argc int) bool {
	fn := closure.Function

	if fn.Variadic {
		// fn.Arity counts only the fixed parameters; the trailing `...`
		// parameter is never included in it (see functionBody in package
		// compiler), so the minimum call matches fn.Arity exactly and the
		// collected surplus occupies one extra slot beyond it.
		minArgs := fn.Arity
		if argc < minArgs {
			return vm.Throw("Exception", arityMessage(minArgs, argc, true))
		}
		surplus := argc - minArgs
		items := make([]value.Value, surplus)
		for i := surplus - 1; i >= 0; i-- {
			items[i] = vm.pop()
		}
		list := vm.gc.NewList(items)
		vm.push(value.FromObj(list))
		argc = fn.Arity + 1
	} else {
		if argc > fn.Arity {
			return vm.Throw("Exception", arityMessage(fn.Arity, argc, false))
		}
		for argc < fn.Arity {
			vm.push(value.Nil)
			argc++
		}
	}

	if vm.frameCount >= len(vm.frames) {
		return vm.Throw("Exception", "stack overflow")
	}

	base := vm.sp - argc - 1
	vm.frames[vm.frameCount] = callFrame{closure: closure, ip: 0, base: base}
	vm.frameCount++
	return true
}

// callNative runs a native callable inline: it never pushes a frame, so the
// call resolves synchronously within the current dispatch step.
func (vm *VM) callNative(n *value.ObjNative, argc int) bool {
	argsBase := vm.sp - argc
	args := make([]value.Value, argc)
	copy(args, vm.stack[argsBase:vm.sp])

	mark := vm.gc.ProtectionMark()
	result, ok := n.Fn(vm, args)
	vm.gc.ClearProtection(mark)

	if !ok {
		// The native already called Throw, which raised and repositioned
		// vm.sp/frame itself; touching vm.sp here would corrupt that.
		return false
	}
	vm.sp = argsBase - 1
	vm.push(result)
	return true
}

// instantiate implements calling a class: allocate an instance, splice it
// into the callee slot, and run the initializer (if any) against it.
func (vm *VM) instantiate(cls *value.ObjClass, argc int) bool {
	inst := value.NewInstance(cls)
	vm.gc.Track(inst)
	vm.stack[vm.sp-argc-1] = value.FromObj(inst)

	if !cls.Initializer.IsEmpty() {
		switch init := cls.Initializer.AsObj().(type) {
		case *value.ObjClosure:
			return vm.callClosure(init, argc)
		case *value.ObjNative:
			// A native initializer gets the instance as args[0].
			args := make([]value.Value, argc+1)
			copy(args, vm.stack[vm.sp-argc-1:vm.sp])
			mark := vm.gc.ProtectionMark()
			result, ok := init.Fn(vm, args)
			vm.gc.ClearProtection(mark)
			if !ok {
				return false
			}
			vm.sp -= argc + 1
			vm.push(result)
			return true
		}
	}
	if argc != 0 {
		return vm.Throw("Exception", arityMessage(0, argc, false))
	}
	vm.sp -= argc
	return true
}

// invoke implements OP_INVOKE/OP_INVOKE_SELF: fetch a property and call it
// in one step, without materializing an ObjBoundMethod for the common case
// of calling an instance method directly (spec section 4.4, "Property
// dispatch"). allowPrivate permits leading-underscore names, true only for
// the self-receiver opcodes.
func (vm *VM) invoke(name value.Value, argc int, allowPrivate bool) bool {
	receiver := vm.peek(argc)

	if receiver.IsObjType(value.TInstance) {
		inst := receiver.AsObj().(*value.ObjInstance)
		if !allowPrivate && isPrivateName(name) {
			return vm.Throw("Exception", "cannot access private property '"+value.ToString(name)+"' outside of self")
		}
		if v, ok := inst.Properties.Get(name); ok {
			vm.stack[vm.sp-argc-1] = v
			return vm.callValue(v, argc)
		}
		if v, ok := inst.Class.ResolveMethod(name); ok {
			return vm.callValue(v, argc)
		}
		return vm.Throw("Exception", "undefined property '"+value.ToString(name)+"'")
	}

	return vm.invokeBuiltin(receiver, name, argc)
}

// superInvoke implements OP_SUPER_INVOKE / the bare parent(...) initializer
// call: the superclass sits where the callee would, the receiver is always
// the current frame's slot 0 (spec section 4.4's unified contract resolved
// for this compiler, see DESIGN.md).
func (vm *VM) superInvoke(name value.Value, argc int) bool {
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = vm.pop()
	}
	superVal := vm.pop()
	super := superVal.AsObj().(*value.ObjClass)
	receiver := vm.stack[vm.currentFrame().base]

	method, ok := super.ResolveMethod(name)
	if !ok {
		return vm.Throw("Exception", "undefined property '"+value.ToString(name)+"' on superclass")
	}

	vm.push(receiver)
	for _, a := range args {
		vm.push(a)
	}

	closure := method.AsObj().(*value.ObjClosure)
	return vm.callClosure(closure, argc)
}

func isPrivateName(name value.Value) bool {
	s := value.ToString(name)
	return len(s) > 0 && s[0] == '_'
}

func arityMessage(want, got int, atLeast bool) string {
	if atLeast {
		return "expected at least " + strconv.Itoa(want) + " arguments, got " + strconv.Itoa(got)
	}
	return "expected " + strconv.Itoa(want) + " arguments, got " + strconv.Itoa(got)
}
