package compiler

import (
	"vellum/internal/lexer"
	"vellum/internal/value"
)

// usingStatement compiles `using EXPR { when CASE[, CASE...] { BODY } ...
// [default { BODY }] }` into a single OP_SWITCH against a constant jump
// table (spec section 4.4, "Pattern switch"). Case values must be
// compile-time constants; anything else is a compile error, since the jump
// table is built once at compile time rather than compared one-by-one at
// runtime.
func (c *Compiler) usingStatement() {
	c.expression()

	sw := c.gc.Track(value.NewSwitch()).(*value.ObjSwitch)
	swConst := c.function.Chunk.AddConstant(value.FromObj(sw))
	c.emitOpByte(opSwitch, byte(swConst))
	bodyJump := c.emitJump(opJump) // skip straight to the case bodies below
	patches := make([]int, 0, 4)

	c.consume(lexer.TokenLBrace, "expected '{' to start a using block")
	c.patchJump(bodyJump)

	for c.match(lexer.TokenWhen) {
		for {
			caseVal, ok := c.constantCaseValue()
			if !ok {
				c.error("'when' case must be a constant literal")
			} else {
				sw.AddCase(caseVal, c.currentOffset())
			}
			if !c.match(lexer.TokenComma) {
				break
			}
		}
		c.consume(lexer.TokenLBrace, "expected '{' after 'when' case list")
		c.beginScope()
		c.block()
		c.endScope()
		patches = append(patches, c.emitJump(opJump))
	}

	if c.match(lexer.TokenDefault) {
		sw.DefaultJump = c.currentOffset()
		c.consume(lexer.TokenLBrace, "expected '{' after 'default'")
		c.beginScope()
		c.block()
		c.endScope()
		patches = append(patches, c.emitJump(opJump))
	}

	c.consume(lexer.TokenRBrace, "expected '}' to close a using block")
	sw.ExitJump = c.currentOffset()
	for _, p := range patches {
		c.patchJump(p)
	}
}

// constantCaseValue parses a single literal token (number/string/bool/nil)
// as a compile-time Value without emitting any bytecode for it.
func (c *Compiler) constantCaseValue() (value.Value, bool) {
	c.advance()
	switch c.previous.Type {
	case lexer.TokenNumber:
		n, err := parseNumberLexeme(c.previous.Lexeme)
		if err != nil {
			return value.Nil, false
		}
		return value.Number(n), true
	case lexer.TokenString:
		return c.gc.InternStringValue(c.previous.Lexeme), true
	case lexer.TokenTrue:
		return value.Bool(true), true
	case lexer.TokenFalse:
		return value.Bool(false), true
	case lexer.TokenNil:
		return value.Nil, true
	case lexer.TokenMinus:
		if c.check(lexer.TokenNumber) {
			c.advance()
			n, err := parseNumberLexeme(c.previous.Lexeme)
			if err != nil {
				return value.Nil, false
			}
			return value.Number(-n), true
		}
	}
	return value.Nil, false
}
