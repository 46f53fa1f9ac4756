// Package vm implements the bytecode dispatch loop described in spec
// section 4.4: a fixed-size value stack, a fixed-size call-frame stack with
// per-frame exception handlers, upvalue open/close bookkeeping, and
// operator/property/exception/import dispatch over the opcode set emitted
// by package compiler. It implements gc.RootProvider so the collector can
// enumerate everything the VM keeps reachable.
package vm

import (
	"bufio"
	"io"
	"os"

	"vellum/internal/gc"
	"vellum/internal/module"
	"vellum/internal/value"
)

const (
	defaultStackSize  = 1024
	defaultFrameCount = 512
	handlersPerFrame  = 16
)

// handlerRecord is one entry of a frame's fixed-capacity exception-handler
// stack (spec section 4.4, "Exception semantics" and the GLOSSARY's
// "Handler stack").
type handlerRecord struct {
	className   value.Value // Nil (the zero Value) for finally-only handlers (spec section 4.4: "class name appears in the exception's class chain")
	catchAddr   uint16
	finallyAddr uint16
	stackDepth  int // value-stack height to restore to on unwind
}

// callFrame owns one activation: its own IP (restored on return), the
// Closure being executed, a base-slot pointer into the shared value stack,
// and its own handler stack (spec section 4.4, "Dispatch").
type callFrame struct {
	closure    *value.ObjClosure
	ip         int
	base       int
	handlers   [handlersPerFrame]handlerRecord
	handlerTop int
}

// Config holds VM tunables, a plain struct passed to New(cfg Config)
// rather than a config-file format --
// matching SPEC_FULL's AMBIENT STACK, since there is no file format to load.
type Config struct {
	StackSize         int
	FrameCount        int
	InitialGCBytes    int64
	SearchPaths       []string // additional module search roots (e.g. -L equivalents)
	ExecutableDir     string
	Trace             bool // -j: stored on the VM; the dispatch loop does not read it, so no trace is printed
	Stdout            io.Writer
	LineBufferStdout  bool // -b
}

// VM is the register-less, stack-based interpreter (spec section 4.4).
type VM struct {
	gc *gc.GC

	stack []value.Value
	sp    int

	frames     []callFrame
	frameCount int

	openUpvalues *value.ObjUpvalue // descending-address intrusive list

	globals *value.Table
	modules map[string]*value.ObjModule

	stringMethods *value.Table
	listMethods   *value.Table
	dictMethods   *value.Table
	fileMethods   *value.Table
	bytesMethods  *value.Table
	rangeMethods  *value.Table

	exceptionClass *value.ObjClass

	loader *module.Loader

	pendingException value.Value
	hasException     bool

	trace      bool
	stdout     *bufio.Writer
	lineBuffer bool
	file       string

	protectMarks []int // native-call protection marks, for nested calls

	fatal fatalState
}

// New constructs a VM ready to run a top-level module function.
func New(cfg Config) *VM {
	stackSize := cfg.StackSize
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	frameCount := cfg.FrameCount
	if frameCount <= 0 {
		frameCount = defaultFrameCount
	}
	initial := cfg.InitialGCBytes
	if initial <= 0 {
		initial = 1 << 20
	}
	out := cfg.Stdout
	if out == nil {
		out = os.Stdout
	}

	g := gc.New(initial)
	vm := &VM{
		gc:            g,
		stack:         make([]value.Value, stackSize),
		frames:        make([]callFrame, frameCount),
		globals:       value.NewTable(),
		modules:       make(map[string]*value.ObjModule),
		stringMethods: value.NewTable(),
		listMethods:   value.NewTable(),
		dictMethods:   value.NewTable(),
		fileMethods:   value.NewTable(),
		bytesMethods:  value.NewTable(),
		rangeMethods:  value.NewTable(),
		trace:         cfg.Trace,
		stdout:        bufio.NewWriter(out),
		lineBuffer:    cfg.LineBufferStdout,
	}
	g.SetRoots(vm)
	vm.loader = module.NewLoader(g, cfg.ExecutableDir, cfg.SearchPaths)
	vm.registerBuiltinMethods()
	vm.registerBuiltinFunctions()
	vm.installExceptionClass()
	return vm
}

// GC exposes the collector so native callables (vm.Caller) can allocate.
func (vm *VM) GC() *gc.GC { return vm.gc }

func (vm *VM) Flush() { vm.stdout.Flush() }

func (vm *VM) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		vm.fatalf("stack overflow")
		return
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

func (vm *VM) currentFrame() *callFrame { return &vm.frames[vm.frameCount-1] }
