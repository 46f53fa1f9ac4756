package vm

import (
	"vellum/internal/gc"
	"vellum/internal/value"
)

// Caller is the interface native callables receive as the opaque `caller`
// argument of value.NativeFn (spec section 6, "Native module registration").
// It is defined here, not in package value, specifically to dodge the
// value<->vm import cycle that a concrete *VM parameter would create;
// native modules type-assert their argument to this interface.
type Caller interface {
	GC() *gc.GC
	Protect(v value.Value) value.Value
	ProtectMark() int
	ClearProtection(mark int)
	// Throw raises an Exception (or a named subclass) with message and
	// returns false, the NativeFn convention for "an exception was raised".
	Throw(class, message string) bool
	Push(v value.Value)
	Pop() value.Value
}

func (vm *VM) Protect(v value.Value) value.Value { return vm.gc.Protect(v) }
func (vm *VM) ProtectMark() int                  { return vm.gc.ProtectionMark() }
func (vm *VM) ClearProtection(mark int)          { vm.gc.ClearProtection(mark) }
func (vm *VM) Push(v value.Value)                { vm.push(v) }
func (vm *VM) Pop() value.Value                  { return vm.pop() }

// Throw builds an instance of the named Exception (or Exception itself if
// class is unknown) and begins propagation exactly as OP_DIE would.
func (vm *VM) Throw(class, message string) bool {
	excClass := vm.exceptionClass
	if g, ok := vm.globals.Get(vm.gc.InternStringValue(class)); ok && g.IsObjType(value.TClass) {
		excClass = g.AsObj().(*value.ObjClass)
	}
	inst := value.NewInstance(excClass)
	inst.Properties.Set(vm.gc.InternStringValue("message"), vm.gc.InternStringValue(message))
	vm.gc.Track(inst)
	vm.raise(value.FromObj(inst))
	return false
}
