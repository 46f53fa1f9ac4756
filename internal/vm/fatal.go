package vm

import (
	"fmt"

	"vellum/internal/errors"
)

// fatalState holds the most recent fatal condition raised inside the
// dispatch loop. Fatal errors (spec section 7, "Fatal errors") are
// reserved for VM-internal invariant violations -- a corrupted value
// stack, a malformed bytecode stream -- never for ordinary script
// mistakes, which always go through Throw/raise instead. run() checks
// this before every dispatch step and unwinds immediately; os.Exit(12)
// happens in cmd/vellum, not here, so the VM stays usable from tests.
type fatalState struct {
	err *errors.FatalError
}

func (vm *VM) fatalf(format string, args ...interface{}) {
	if vm.fatal.err != nil {
		return
	}
	vm.fatal.err = errors.NewFatal(fmt.Sprintf(format, args...))
}

func (vm *VM) fatalWrap(cause error, format string, args ...interface{}) {
	if vm.fatal.err != nil {
		return
	}
	vm.fatal.err = errors.WrapFatal(cause, fmt.Sprintf(format, args...))
}
