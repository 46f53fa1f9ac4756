package compiler

import (
	"vellum/internal/lexer"
	"vellum/internal/value"
)

// declaration is the top of the statement grammar: anything that can
// introduce a new binding (var/def/class/import) falls through to
// statement() for everything else, then recovers via synchronize() after
// an error so one bad statement doesn't hide the rest (spec section 7).
func (c *Compiler) declaration() {
	switch {
	case c.match(lexer.TokenClass):
		c.classDeclaration()
	case c.match(lexer.TokenDef):
		c.funDeclaration()
	case c.match(lexer.TokenVar):
		c.varDeclaration()
	case c.match(lexer.TokenImport):
		c.importStatement()
	default:
		c.statement()
	}
	if c.panic {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	for {
		c.consume(lexer.TokenIdent, "expected variable name")
		name := c.previous.Lexeme
		c.declareVariable(name)

		if c.match(lexer.TokenEqual) {
			c.expression()
		} else {
			c.emitOp(opNilConst)
		}
		c.defineVariable(name)
		if !c.match(lexer.TokenComma) {
			break
		}
	}
	c.consumeStatementEnd()
}

// defineVariable finalizes a just-initialized binding: promote the local
// to ready, or emit OP_DEFINE_GLOBAL at global scope.
func (c *Compiler) defineVariable(name string) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	idx := c.internConstant(name)
	c.emitOpByte(opDefineGlobal, byte(idx))
}

func (c *Compiler) statement() {
	switch {
	case c.match(lexer.TokenEcho):
		c.echoStatement()
	case c.match(lexer.TokenLBrace):
		c.beginScope()
		c.block()
		c.endScope()
	case c.match(lexer.TokenIf):
		c.ifStatement()
	case c.match(lexer.TokenWhile):
		c.whileStatement()
	case c.match(lexer.TokenFor):
		c.iterStatement()
	case c.match(lexer.TokenIter):
		c.forStatement()
	case c.match(lexer.TokenBreak):
		c.breakStatement()
	case c.match(lexer.TokenContinue):
		c.continueStatement()
	case c.match(lexer.TokenReturn):
		c.returnStatement()
	case c.match(lexer.TokenAssert):
		c.assertStatement()
	case c.match(lexer.TokenDie):
		c.dieStatement()
	case c.match(lexer.TokenTry):
		c.tryStatement()
	case c.match(lexer.TokenUsing), c.match(lexer.TokenWhen):
		c.usingStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) echoStatement() {
	c.expression()
	for c.match(lexer.TokenComma) {
		c.emitOp(opStringify)
		c.expression()
		c.emitOp(opStringify)
		c.emitOp(opAdd)
	}
	c.consumeStatementEnd()
	c.emitOp(opEcho)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consumeStatementEnd()
	c.emitOp(opPop)
}

func (c *Compiler) assertStatement() {
	c.expression()
	message := false
	if c.match(lexer.TokenComma) {
		c.expression()
		message = true
	}
	c.consumeStatementEnd()
	c.emitOpByte(opAssert, boolByte(message))
}

func (c *Compiler) dieStatement() {
	c.expression()
	c.consumeStatementEnd()
	c.emitOp(opDie)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// block compiles statements up to the matching '}'. The opening '{' has
// already been consumed by the caller.
func (c *Compiler) block() {
	for !c.check(lexer.TokenRBrace) && !c.check(lexer.TokenEOF) {
		c.declaration()
	}
	c.consume(lexer.TokenRBrace, "expected '}' after block")
}

func (c *Compiler) ifStatement() {
	c.expression()
	thenJump := c.emitJump(opJumpIfFalse)
	c.emitOp(opPop)
	c.statementOrBlock()

	elseJump := c.emitJump(opJump)
	c.patchJump(thenJump)
	c.emitOp(opPop)

	if c.match(lexer.TokenElse) {
		c.statementOrBlock()
	}
	c.patchJump(elseJump)
}

// statementOrBlock lets `if`/`while`/`iter` accept either a `{ ... }` block
// or a single bare statement, the way the teacher's control-flow bodies do.
func (c *Compiler) statementOrBlock() {
	if c.match(lexer.TokenLBrace) {
		c.beginScope()
		c.block()
		c.endScope()
		return
	}
	c.statement()
}

func (c *Compiler) whileStatement() {
	loopStart := c.currentOffset()
	c.pushLoop(loopStart)

	c.expression()
	exitJump := c.emitJump(opJumpIfFalse)
	c.emitOp(opPop)
	c.statementOrBlock()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opPop)
	c.popLoop()
}

// forStatement compiles the C-style `iter init; cond; incr { body }` loop by
// desugaring it directly into the same jump/loop shape as while (spec
// section 4.3: "iter/for desugar to while").
func (c *Compiler) forStatement() {
	c.beginScope()

	if c.match(lexer.TokenSemicolon) {
		// no initializer
	} else if c.match(lexer.TokenVar) {
		c.varDeclaration()
	} else {
		c.expressionStatement()
	}

	loopStart := c.currentOffset()
	exitJump := -1
	if !c.check(lexer.TokenSemicolon) {
		c.expression()
		exitJump = c.emitJump(opJumpIfFalse)
		c.emitOp(opPop)
	}
	c.consume(lexer.TokenSemicolon, "expected ';' after loop condition")

	if !c.check(lexer.TokenLBrace) {
		incrJump := c.emitJump(opJump)
		incrStart := c.currentOffset()
		c.expression()
		c.emitOp(opPop)
		c.emitLoop(loopStart)
		loopStart = incrStart
		c.patchJump(incrJump)
	}

	c.pushLoop(loopStart)
	c.statementOrBlock()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(opPop)
	}
	c.popLoop()
	c.endScope()
}

// iterStatement compiles `for key, value in expr { body }` (or the
// single-binding `for value in expr { body }`) against the @itern/@iter
// protocol: @itern(lastKey) advances and returns the next key or nil, and
// the loop ends when it returns nil; @iter(key) projects the value for that
// key (spec section 4.3).
func (c *Compiler) iterStatement() {
	c.beginScope()

	keyName := ""
	c.consume(lexer.TokenIdent, "expected a loop variable name")
	first := c.previous.Lexeme
	valName := first
	if c.match(lexer.TokenComma) {
		keyName = first
		c.consume(lexer.TokenIdent, "expected a loop value name")
		valName = c.previous.Lexeme
	}
	c.consume(lexer.TokenIn, "expected 'in' after loop variables")

	// hidden local holding the iterable and the cursor key; the leading
	// space keeps them unreachable from surface syntax.
	c.declareVariable(" iterable")
	c.expression()
	c.defineVariable(" iterable")

	c.declareVariable(" key")
	c.resolveAndGet(" iterable")
	c.emitOp(opNilConst)
	c.emitOpByte(opInvoke, byte(c.internConstant("@itern")))
	c.emitByte(1)
	c.defineVariable(" key")

	loopStart := c.currentOffset()
	c.resolveAndGet(" key")
	c.emitOp(opNilConst)
	c.emitOp(opEqual)
	c.emitOp(opNot)
	exitJump := c.emitJump(opJumpIfFalse)
	c.emitOp(opPop)

	c.pushLoop(loopStart)
	c.beginScope()
	if keyName != "" {
		c.declareVariable(keyName)
		c.resolveAndGet(" key")
		c.defineVariable(keyName)
	}
	c.declareVariable(valName)
	c.resolveAndGet(" iterable")
	c.resolveAndGet(" key")
	c.emitOpByte(opInvoke, byte(c.internConstant("@iter")))
	c.emitByte(1)
	c.defineVariable(valName)

	c.consume(lexer.TokenLBrace, "expected '{' to start for body")
	c.block()
	c.endScope()

	c.resolveAndGet(" iterable")
	c.resolveAndGet(" key")
	c.emitOpByte(opInvoke, byte(c.internConstant("@itern")))
	c.emitByte(1)
	c.resolveAndSet(" key")
	c.emitOp(opPop)
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(opPop)
	c.popLoop()
	c.endScope()
}

func (c *Compiler) pushLoop(start int) {
	c.loops = append(c.loops, loopState{start: start, scopeDepth: c.scopeDepth})
}

func (c *Compiler) popLoop() {
	loop := c.loops[len(c.loops)-1]
	for _, pos := range loop.breakPatches {
		c.patchJump(pos)
	}
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *Compiler) currentLoop() *loopState {
	if len(c.loops) == 0 {
		return nil
	}
	return &c.loops[len(c.loops)-1]
}

// breakStatement jumps to the loop's exit, patched once the loop finishes
// compiling; this only ever touches the current function's chunk, since a
// nested `def` gets its own Compiler/Chunk entirely (spec section 4.3,
// "break must not escape into a nested closure").
func (c *Compiler) breakStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("'break' outside of a loop")
		c.consumeStatementEnd()
		return
	}
	c.popLocalsAbove(loop.scopeDepth)
	pos := c.emitJump(opJump)
	loop.breakPatches = append(loop.breakPatches, pos)
	c.consumeStatementEnd()
}

func (c *Compiler) continueStatement() {
	loop := c.currentLoop()
	if loop == nil {
		c.error("'continue' outside of a loop")
		c.consumeStatementEnd()
		return
	}
	c.popLocalsAbove(loop.scopeDepth)
	c.emitLoop(loop.start)
	c.consumeStatementEnd()
}

// popLocalsAbove emits the pop/close instructions for locals declared more
// deeply than depth, without touching the compiler's own locals slice
// (which block()/endScope() still need to unwind normally).
func (c *Compiler) popLocalsAbove(depth int) {
	for i := len(c.locals) - 1; i >= 0 && c.locals[i].Depth > depth; i-- {
		if c.locals[i].IsCaptured {
			c.emitOp(opCloseUpvalue)
		} else {
			c.emitOp(opPop)
		}
	}
}

func (c *Compiler) returnStatement() {
	if c.kind == KindScript {
		c.error("'return' can only be used inside a function")
	}
	if c.match(lexer.TokenSemicolon) || c.check(lexer.TokenRBrace) {
		if c.kind == KindInitializer {
			c.resolveAndGet("self")
		} else {
			c.emitOp(opNilConst)
		}
		c.emitOp(opReturn)
		return
	}
	if c.kind == KindInitializer {
		c.error("can't return a value from an initializer")
	}
	c.expression()
	c.consumeStatementEnd()
	c.emitOp(opReturn)
}

// funDeclaration compiles a named top-level/nested function: `def name(...)
// { ... }`. The name is bound before the body compiles so recursive calls
// resolve (spec section 4.3).
func (c *Compiler) funDeclaration() {
	c.consume(lexer.TokenIdent, "expected function name")
	name := c.previous.Lexeme
	c.declareVariable(name)
	if c.scopeDepth > 0 {
		c.markInitialized()
	}
	c.functionBody(name, KindFunction)
	c.defineVariable(name)
}

// functionBody compiles the parameter list and body of any function-like
// construct (named def, lambda, method, initializer) into a fresh nested
// Compiler/Chunk, then emits OP_CLOSURE with its upvalue capture table in
// the enclosing chunk (spec section 4.3, "Upvalues").
func (c *Compiler) functionBody(name string, kind FunctionKind) {
	child := newChild(c, name, kind)
	child.beginScope()

	child.consume(lexer.TokenLParen, "expected '(' after function name")
	if !child.check(lexer.TokenRParen) {
		for {
			variadic := child.match(lexer.TokenEllipsis)
			pname := "__args__"
			if variadic && !child.check(lexer.TokenIdent) {
				// bare `...` with no following name binds the surplus
				// arguments to the implicit `__args__` local.
			} else {
				child.consume(lexer.TokenIdent, "expected parameter name")
				pname = child.previous.Lexeme
			}
			child.declareVariable(pname)
			child.markInitialized()
			if variadic {
				child.function.Variadic = true
				if !child.check(lexer.TokenRParen) {
					child.error("variadic parameter must be last")
				}
				break
			}
			child.function.Arity++
			if !child.match(lexer.TokenComma) {
				break
			}
		}
	}
	child.consume(lexer.TokenRParen, "expected ')' after parameters")
	child.consume(lexer.TokenLBrace, "expected '{' before function body")
	child.block()

	fn := child.endCompiler()

	idx := c.function.Chunk.AddConstant(value.FromObj(c.gc.Track(fn).(*value.ObjFunction)))
	c.emitOpByte(opClosure, byte(idx))
	for _, up := range child.upvalues {
		c.emitByte(boolByte(up.IsLocal))
		c.emitByte(up.Index)
	}
}
