package compiler

import "vellum/internal/lexer"

// noHandlerAddr marks an absent class/catch/finally slot in OP_TRY's operand
// triple (spec section 4.4, "Exceptions").
const noHandlerAddr = 0xffff

// tryStatement compiles `try { ... } [catch ExcType [as name] { ... }]
// [finally { ... }]` (spec section 4.3: "catch ExcType [as name] compiles
// the handler body in its own scope"). OP_TRY carries three 16-bit
// immediates -- the handled class's name constant, catchAddr, finallyAddr
// (spec section 6) -- and pushes a handler frame recording them; an
// exception thrown while the frame is active unwinds the VM stack to the
// frame's depth and, if its class appears in the exception's class chain,
// jumps to catchAddr (falling through to finallyAddr otherwise).
// OP_POP_TRY discards the handler on the normal, non-throwing path.
// OP_PUBLISH_TRY, emitted at the end of a finally block, re-raises
// whatever exception was in flight when finally was entered, so `finally`
// can run without silently swallowing the original exception (spec section
// 4.4, "finally always runs").
func (c *Compiler) tryStatement() {
	tryPos := c.emitJump(opTry) // reserves 2 bytes (class constant); two more shorts reserved below
	c.emitByte(0xff)
	c.emitByte(0xff)
	c.emitByte(0xff)
	c.emitByte(0xff)

	c.handlerDepth++
	c.consume(lexer.TokenLBrace, "expected '{' to start a try block")
	c.beginScope()
	c.block()
	c.endScope()
	c.handlerDepth--

	c.emitOp(opPopTry)
	fallThrough := c.emitJump(opJump)

	classConstIdx := noHandlerAddr
	catchAddr := noHandlerAddr
	hasCatch := false
	if c.match(lexer.TokenCatch) {
		hasCatch = true
		catchAddr = c.currentOffset()
		c.consume(lexer.TokenIdent, "expected exception type after 'catch'")
		classConstIdx = c.internConstant(c.previous.Lexeme)

		c.beginScope()
		if c.match(lexer.TokenAs) {
			c.consume(lexer.TokenIdent, "expected name after 'as'")
			c.declareVariable(c.previous.Lexeme)
			c.markInitialized() // the VM has already pushed the exception value here
		} else {
			c.emitOp(opPop) // discard the unbound exception value the VM pushed
		}
		c.consume(lexer.TokenLBrace, "expected '{' to start a catch block")
		c.block()
		c.endScope()
	}

	afterCatch := c.currentOffset()
	c.patchJump(fallThrough)

	finallyAddr := noHandlerAddr
	hasFinally := false
	if c.match(lexer.TokenFinally) {
		hasFinally = true
		finallyAddr = afterCatch
		c.consume(lexer.TokenLBrace, "expected '{' to start a finally block")
		c.beginScope()
		c.block()
		c.endScope()
		c.emitOp(opPublishTry)
	}

	if !hasCatch && !hasFinally {
		c.error("'try' must have a 'catch', a 'finally', or both")
	}

	c.function.Chunk.PatchShort(tryPos, uint16(classConstIdx))
	c.function.Chunk.PatchShort(tryPos+2, uint16(catchAddr))
	c.function.Chunk.PatchShort(tryPos+4, uint16(finallyAddr))
}
