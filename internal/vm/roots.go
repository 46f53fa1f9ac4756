package vm

import "vellum/internal/value"

// EnumerateRoots implements gc.RootProvider (spec section 4.5, "Roots"):
// every live stack slot, every live frame's closure, the open-upvalue
// list, globals, modules, the six builtin-method tables, and the Exception
// class reference.
func (vm *VM) EnumerateRoots(push func(value.Value)) {
	for i := 0; i < vm.sp; i++ {
		push(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		push(value.FromObj(vm.frames[i].closure))
	}
	for uv := vm.openUpvalues; uv != nil; {
		push(value.FromObj(uv))
		uv = uv.NextOpen
	}
	vm.globals.Trace(push)
	for _, m := range vm.modules {
		push(value.FromObj(m))
	}
	vm.stringMethods.Trace(push)
	vm.listMethods.Trace(push)
	vm.dictMethods.Trace(push)
	vm.fileMethods.Trace(push)
	vm.bytesMethods.Trace(push)
	vm.rangeMethods.Trace(push)
	if vm.exceptionClass != nil {
		push(value.FromObj(vm.exceptionClass))
	}
	if vm.hasException {
		push(vm.pendingException)
	}
}
