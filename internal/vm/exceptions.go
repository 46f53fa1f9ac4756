package vm

import (
	"fmt"

	"vellum/internal/errors"
	"vellum/internal/value"
)

const noHandlerAddr = 0xffff

// installExceptionClass builds the root `Exception` class every `die`
// target must chain to (spec section 4.4, "Exception semantics"). It is a
// plain class with a `message` property and an initializer that sets it,
// registered as a global so user code can subclass it: `class MyErr <
// Exception { }`.
func (vm *VM) installExceptionClass() {
	cls := value.NewClass("Exception")
	cls.PropertyDefaults.Set(vm.gc.InternStringValue("message"), vm.gc.InternStringValue(""))
	cls.PropertyDefaults.Set(vm.gc.InternStringValue("stacktrace"), value.Nil)
	init := value.NewNative("Exception", value.NativeInitializer, func(caller interface{}, args []value.Value) (value.Value, bool) {
		self := args[0].AsObj().(*value.ObjInstance)
		if len(args) > 1 {
			self.Properties.Set(vm.gc.InternStringValue("message"), args[1])
		}
		return args[0], true
	})
	vm.gc.Track(init)
	cls.Initializer = value.FromObj(init)
	vm.gc.Track(cls)
	vm.exceptionClass = cls
	vm.globals.Set(vm.gc.InternStringValue("Exception"), value.FromObj(cls))
}

// isException reports whether v is an Instance whose class chain includes
// Exception.
func (vm *VM) isException(v value.Value) bool {
	if !v.IsObjType(value.TInstance) {
		return false
	}
	inst := v.AsObj().(*value.ObjInstance)
	for c := inst.Class; c != nil; c = c.Super {
		if c == vm.exceptionClass {
			return true
		}
	}
	return false
}

// captureStackTrace walks live frames from innermost to outermost (spec
// section 4.4: "module path and line for each live frame").
func (vm *VM) captureStackTrace() []errors.StackFrame {
	frames := make([]errors.StackFrame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		modPath := ""
		if fn.Module != nil {
			modPath = fn.Module.Path
		}
		frames = append(frames, errors.StackFrame{
			Module:   modPath,
			Function: fn.Name,
			Line:     fn.Chunk.LineAt(f.ip - 1),
		})
	}
	return frames
}

// execDie implements OP_DIE: coerce to an Exception instance if needed,
// attach a stack trace, and begin propagation.
func (vm *VM) execDie() bool {
	v := vm.pop()
	if !vm.isException(v) {
		inst := value.NewInstance(vm.exceptionClass)
		inst.Properties.Set(vm.gc.InternStringValue("message"), vm.gc.InternStringValue(value.ToString(v)))
		vm.gc.Track(inst)
		v = value.FromObj(inst)
	}
	inst := v.AsObj().(*value.ObjInstance)
	trace := vm.captureStackTrace()
	inst.Properties.Set(vm.gc.InternStringValue("stacktrace"), vm.gc.InternStringValue(formatStackOnly(trace)))
	return vm.raise(v)
}

func formatStackOnly(frames []errors.StackFrame) string {
	s := ""
	for _, f := range frames {
		s += f.String() + "\n"
	}
	return s
}

// classMatches reports whether className (a catch clause's declared
// exception type) appears anywhere in exc's class chain (spec section 4.4:
// "a handler matches if its class name appears in the exception's class
// chain").
func classMatches(exc value.Value, className value.Value) bool {
	if !exc.IsObjType(value.TInstance) {
		return false
	}
	name := value.ToString(className)
	for c := exc.AsObj().(*value.ObjInstance).Class; c != nil; c = c.Super {
		if c.Name == name {
			return true
		}
	}
	return false
}

// raise unwinds the call stack looking for a handler. It returns true if a
// handler was found and vm.currentFrame()/ip now point at it (dispatch
// should keep running), false if propagation reached the top of the stack
// unhandled.
func (vm *VM) raise(exc value.Value) bool {
	vm.hasException = false
	for vm.frameCount > 0 {
		f := vm.currentFrame()
		for f.handlerTop > 0 {
			f.handlerTop--
			h := f.handlers[f.handlerTop]
			vm.sp = h.stackDepth
			if h.catchAddr != noHandlerAddr && classMatches(exc, h.className) {
				vm.push(exc)
				f.ip = int(h.catchAddr)
				return true
			}
			if h.finallyAddr != noHandlerAddr {
				vm.pendingException = exc
				vm.hasException = true
				f.ip = int(h.finallyAddr)
				return true
			}
		}
		vm.closeUpvalues(f.base)
		vm.sp = f.base
		vm.frameCount--
	}
	vm.pendingException = exc
	vm.hasException = true
	return false
}

// execTry implements OP_TRY: push a handler record covering the
// just-parsed addresses onto the current frame's handler stack. className
// is the Nil value for a finally-only handler (no catch clause).
func (vm *VM) execTry(className value.Value, catchAddr, finallyAddr uint16) bool {
	f := vm.currentFrame()
	if f.handlerTop >= handlersPerFrame {
		return vm.Throw("Exception", "too many nested try blocks")
	}
	f.handlers[f.handlerTop] = handlerRecord{
		className:   className,
		catchAddr:   catchAddr,
		finallyAddr: finallyAddr,
		stackDepth:  vm.sp,
	}
	f.handlerTop++
	return true
}

func (vm *VM) execPopTry() {
	f := vm.currentFrame()
	if f.handlerTop > 0 {
		f.handlerTop--
	}
}

// execPublishTry implements OP_PUBLISH_TRY: if an exception is still
// in-flight (it reached this finally block because no catch handled it),
// resume propagation outward; otherwise fall through to normal execution.
func (vm *VM) execPublishTry() bool {
	if vm.hasException {
		exc := vm.pendingException
		return vm.raise(exc)
	}
	return true
}

// unhandledDiagnostic renders the final, unhandled-exception form printed
// to stderr (spec section 7: "identical in shape to the caught-exception
// form").
func (vm *VM) unhandledDiagnostic() string {
	inst := vm.pendingException.AsObj().(*value.ObjInstance)
	msgV, _ := inst.Properties.Get(vm.gc.InternStringValue("message"))
	traceV, _ := inst.Properties.Get(vm.gc.InternStringValue("stacktrace"))
	return fmt.Sprintf("%s: %s\n%s", inst.Class.Name, value.ToString(msgV), value.ToString(traceV))
}
