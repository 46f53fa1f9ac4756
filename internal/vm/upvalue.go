package vm

import "vellum/internal/value"

// captureUpvalue returns the open upvalue for a stack slot, sharing one
// already targeting it if the descending-address list has one (spec
// section 4.4, "Capture-or-share is decided by the open-upvalues list").
func (vm *VM) captureUpvalue(location int) *value.ObjUpvalue {
	var prev *value.ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.Location > location {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == location {
		return cur
	}
	created := vm.gc.NewUpvalue(location)
	created.NextOpen = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose slot is at or above
// boundary, copying the slot's value into the upvalue's own storage (spec
// section 4.4, "OP_CLOSE_UPVALUE").
func (vm *VM) closeUpvalues(boundary int) {
	for vm.openUpvalues != nil && vm.openUpvalues.Location >= boundary {
		uv := vm.openUpvalues
		uv.Closed = vm.stack[uv.Location]
		uv.IsClosed = true
		vm.openUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}
