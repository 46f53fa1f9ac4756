// Package compiler implements the single-pass, precedence-climbing compiler
// from spec section 4.3: there is no AST. Expressions are compiled directly
// into the current Function's bytecode Chunk as the Pratt parser descends.
package compiler

import (
	"vellum/internal/errors"
	"vellum/internal/gc"
	"vellum/internal/lexer"
	"vellum/internal/value"
)

const maxLocals = 256
const maxUpvalues = 256

type FunctionKind int

const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
	KindStaticMethod
)

type Local struct {
	Name       string
	Depth      int // -1 while declared-but-uninitialized
	IsCaptured bool
}

type Upvalue struct {
	Index   uint8
	IsLocal bool
}

type loopState struct {
	start        int // chunk offset the loop condition re-checks from
	breakPatches []int
	scopeDepth   int
}

// ClassCompiler tracks nesting of class bodies for `self`/`parent` dispatch
// and to reject self-inheritance.
type ClassCompiler struct {
	enclosing    *ClassCompiler
	name         string
	hasSuperclass bool
}

// Compiler is one stack frame of compile-time state: a function being
// compiled, its locals/upvalues, and a link to the enclosing compiler so
// upvalue resolution can recurse outward (spec section 4.3, "Scopes and
// locals").
type Compiler struct {
	scanner *lexer.Scanner
	gc      *gc.GC
	errs    *errors.CompileErrors

	file string

	current  lexer.Token
	previous lexer.Token
	hadError bool
	panic    bool

	enclosing *Compiler
	function  *value.ObjFunction
	kind      FunctionKind

	locals     []Local
	upvalues   []Upvalue
	scopeDepth int

	loops []loopState
	class *ClassCompiler

	module *value.ObjModule

	handlerDepth int

	// selfReceiverPending is set by self() and consumed by the very next
	// dot() so `self._private` compiles to OP_GET_SELF_PROPERTY /
	// OP_INVOKE_SELF instead of the generic (privacy-checked) forms (spec
	// section 4.4, "private names").
	selfReceiverPending bool
}

// New creates the top-level (script) compiler for one source file/module.
func New(source string, file string, module *value.ObjModule, g *gc.GC) *Compiler {
	fn := value.NewFunction("", module)
	c := &Compiler{
		scanner: lexer.NewScanner(source),
		gc:      g,
		errs:    &errors.CompileErrors{},
		file:    file,
		module:  module,
		function: fn,
		kind:    KindScript,
	}
	// Slot 0 holds the empty sentinel in function frames (spec section 4.3).
	c.locals = append(c.locals, Local{Name: "", Depth: 0})
	return c
}

func newChild(parent *Compiler, name string, kind FunctionKind) *Compiler {
	fn := value.NewFunction(name, parent.module)
	c := &Compiler{
		scanner:   parent.scanner,
		gc:        parent.gc,
		errs:      parent.errs,
		file:      parent.file,
		enclosing: parent,
		function:  fn,
		kind:      kind,
		module:    parent.module,
		class:     parent.class,
	}
	slot0 := ""
	if kind == KindMethod || kind == KindInitializer {
		slot0 = "self"
	}
	c.locals = append(c.locals, Local{Name: slot0, Depth: 0})
	return c
}

// Compile drives the whole program to completion and returns the top-level
// Function, or the accumulated CompileErrors.
func Compile(source, file string, module *value.ObjModule, g *gc.GC) (*value.ObjFunction, error) {
	c := New(source, file, module, g)
	c.advance()
	for !c.match(lexer.TokenEOF) {
		c.declaration()
	}
	fn := c.endCompiler()
	if c.errs.HasErrors() {
		return nil, c.errs
	}
	return fn, nil
}

// endCompiler closes off the function body with an implicit `return nil`
// (spec section 4.3: "a function whose body falls through its last
// statement returns nil").
func (c *Compiler) endCompiler() *value.ObjFunction {
	if c.kind == KindInitializer {
		c.emitOpByte(opGetLocal, 0) // return self
	} else {
		c.emitOp(opNilConst)
	}
	c.emitOp(opReturn)
	return c.function
}
