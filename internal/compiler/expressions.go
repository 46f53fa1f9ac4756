package compiler

import (
	"strconv"
	"strings"

	"vellum/internal/bytecode"
	"vellum/internal/lexer"
	"vellum/internal/value"
)

// expression parses and compiles one expression at the loosest precedence
// that still excludes the bare comma operator (there isn't one).
func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence is the classic Pratt driver: run the prefix rule for the
// current token, then keep folding in infix rules as long as their
// precedence meets the floor (spec section 4.3).
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	rule := c.ruleFor(c.previous.Type)
	if rule.Prefix == nil {
		c.error("expected an expression")
		return
	}
	canAssign := prec <= PrecAssignment
	c.selfReceiverPending = false
	rule.Prefix(c, canAssign)

	for prec <= c.ruleFor(c.current.Type).Precedence {
		c.advance()
		infix := c.ruleFor(c.previous.Type).Infix
		if infix == nil {
			c.error("unexpected token in expression")
			return
		}
		infix(c, canAssign)
	}

	if canAssign && (c.match(lexer.TokenEqual) || isCompoundAssign(c.current.Type)) {
		c.error("invalid assignment target")
	}
}

func isCompoundAssign(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenPlusEq, lexer.TokenMinusEq, lexer.TokenStarEq, lexer.TokenSlashEq,
		lexer.TokenSlashSlashEq, lexer.TokenPercentEq, lexer.TokenStarStarEq,
		lexer.TokenAmpEq, lexer.TokenPipeEq, lexer.TokenCaretEq,
		lexer.TokenLShiftEq, lexer.TokenRShiftEq, lexer.TokenElvisEq:
		return true
	}
	return false
}

func (c *Compiler) number(canAssign bool) {
	n, err := parseNumberLexeme(c.previous.Lexeme)
	if err != nil {
		c.error("invalid number literal")
		return
	}
	c.emitConstant(value.Number(n))
}

// parseNumberLexeme decodes a scanned number token (decimal, or 0b/0c/0x
// prefixed integer literals per spec section 4.2) into a float64, since
// Number is the runtime's only numeric representation.
func parseNumberLexeme(lexeme string) (float64, error) {
	text := strings.ReplaceAll(lexeme, "_", "")
	switch {
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		iv, err := strconv.ParseInt(text[2:], 2, 64)
		return float64(iv), err
	case strings.HasPrefix(text, "0c") || strings.HasPrefix(text, "0C"):
		iv, err := strconv.ParseInt(text[2:], 8, 64)
		return float64(iv), err
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		iv, err := strconv.ParseInt(text[2:], 16, 64)
		return float64(iv), err
	default:
		return strconv.ParseFloat(text, 64)
	}
}

// stringLit compiles a (possibly interpolated) string literal. A plain
// string is a single TokenString. An interpolated one arrives as
// TokenString, TokenInterpStart, <expression>, TokenInterpEnd, TokenString,
// ... and is compiled as a chain of OP_ADD over OP_STRINGIFY'd pieces.
func (c *Compiler) stringLit(canAssign bool) {
	c.emitConstant(c.gc.InternStringValue(c.previous.Lexeme))
	for c.check(lexer.TokenInterpStart) {
		c.advance()
		c.expression()
		c.emitOp(opStringify)
		c.emitOp(opAdd)
		c.consume(lexer.TokenInterpEnd, "expected '}' to close string interpolation")
		c.consume(lexer.TokenString, "expected string continuation after interpolation")
		c.emitConstant(c.gc.InternStringValue(c.previous.Lexeme))
		c.emitOp(opAdd)
	}
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case lexer.TokenTrue:
		c.emitOp(opTrueConst)
	case lexer.TokenFalse:
		c.emitOp(opFalseConst)
	case lexer.TokenNil:
		c.emitOp(opNilConst)
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(lexer.TokenRParen, "expected ')' after expression")
}

func (c *Compiler) unary(canAssign bool) {
	op := c.previous.Type
	c.parsePrecedence(PrecUnary)
	switch op {
	case lexer.TokenMinus:
		c.emitOp(opNegate)
	case lexer.TokenBang:
		c.emitOp(opNot)
	case lexer.TokenTilde:
		c.emitOp(opBitNot)
	}
}

// prefixIncDec desugars `++x` / `--x` to get-push1-arith-set, leaving the
// updated value on the stack (spec section 4.3: pre-increment/decrement
// expressions evaluate to the new value).
func (c *Compiler) prefixIncDec(canAssign bool) {
	op := c.previous.Type
	if !c.check(lexer.TokenIdent) {
		c.error("'++' and '--' require a variable operand")
		return
	}
	c.advance()
	name := c.previous.Lexeme
	c.resolveAndGet(name)
	c.emitOp(opOne)
	if op == lexer.TokenPlusPlus {
		c.emitOp(opAdd)
	} else {
		c.emitOp(opSubtract)
	}
	c.resolveAndSet(name)
}

func (c *Compiler) binary(canAssign bool) {
	op := c.previous.Type
	rule := c.ruleFor(op)
	c.parsePrecedence(rule.Precedence + 1)
	switch op {
	case lexer.TokenPlus:
		c.emitOp(opAdd)
	case lexer.TokenMinus:
		c.emitOp(opSubtract)
	case lexer.TokenStar:
		c.emitOp(opMultiply)
	case lexer.TokenSlash:
		c.emitOp(opDivide)
	case lexer.TokenSlashSlash:
		c.emitOp(opFloorDivide)
	case lexer.TokenPercent:
		c.emitOp(opRemainder)
	case lexer.TokenStarStar:
		c.emitOp(opPow)
	case lexer.TokenAmp:
		c.emitOp(opBitAnd)
	case lexer.TokenPipe:
		c.emitOp(opBitOr)
	case lexer.TokenCaret:
		c.emitOp(opBitXor)
	case lexer.TokenLShift:
		c.emitOp(opLeftShift)
	case lexer.TokenRShift:
		c.emitOp(opRightShift)
	case lexer.TokenBangEqual:
		c.emitOp(opEqual)
		c.emitOp(opNot)
	case lexer.TokenEqualEqual:
		c.emitOp(opEqual)
	case lexer.TokenGreater:
		c.emitOp(opGreater)
	case lexer.TokenGreaterEqual:
		c.emitOp(opLess)
		c.emitOp(opNot)
	case lexer.TokenLess:
		c.emitOp(opLess)
	case lexer.TokenLessEqual:
		c.emitOp(opGreater)
		c.emitOp(opNot)
	}
}

// and/or short-circuit with a single conditional jump rather than
// desugaring into full if/else, matching the compact style of the rest of
// the control-flow emission (spec section 4.3).
func (c *Compiler) and(canAssign bool) {
	endJump := c.emitJump(opJumpIfFalse)
	c.emitOp(opPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	elseJump := c.emitJump(opJumpIfFalse)
	endJump := c.emitJump(opJump)
	c.patchJump(elseJump)
	c.emitOp(opPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

// elvis (`a ?? b`) evaluates the fallback only when `a` is falsey (nil,
// empty, false, a negative number, or an empty string/bytes/list/dict).
func (c *Compiler) elvis(canAssign bool) {
	elseJump := c.emitJump(opJumpIfFalse)
	endJump := c.emitJump(opJump)
	c.patchJump(elseJump)
	c.emitOp(opPop)
	c.parsePrecedence(PrecElvis + 1)
	c.patchJump(endJump)
}

func (c *Compiler) rangeLiteral(canAssign bool) {
	c.parsePrecedence(PrecRange + 1)
	c.emitOp(opRange)
}

func (c *Compiler) listLiteral(canAssign bool) {
	count := 0
	if !c.check(lexer.TokenRBracket) {
		for {
			c.expression()
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
			if c.check(lexer.TokenRBracket) {
				break
			}
		}
	}
	c.consume(lexer.TokenRBracket, "expected ']' after list elements")
	if count > 0xffff {
		c.error("too many elements in list literal")
		return
	}
	c.emitOp(opList)
	c.emitShort(uint16(count))
}

func (c *Compiler) dictLiteral(canAssign bool) {
	count := 0
	if !c.check(lexer.TokenRBrace) {
		for {
			c.expression()
			c.consume(lexer.TokenColon, "expected ':' after dict key")
			c.expression()
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
			if c.check(lexer.TokenRBrace) {
				break
			}
		}
	}
	c.consume(lexer.TokenRBrace, "expected '}' after dict entries")
	if count > 0xffff {
		c.error("too many entries in dict literal")
		return
	}
	c.emitOp(opDict)
	c.emitShort(uint16(count))
}

// index compiles both `a[i]` and the ranged form `a[i:j]` into one opcode
// pair (spec section 4.3, "container indexing").
func (c *Compiler) index(canAssign bool) {
	ranged := false
	hasLow := !c.check(lexer.TokenColon)
	if hasLow {
		c.expression()
	} else {
		c.emitOp(opNilConst)
	}
	if c.match(lexer.TokenColon) {
		ranged = true
		if !c.check(lexer.TokenRBracket) {
			c.expression()
		} else {
			c.emitOp(opNilConst)
		}
	}
	c.consume(lexer.TokenRBracket, "expected ']' after index")

	if ranged {
		c.emitOp(opGetRangedIndex)
		return
	}
	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOp(opSetIndex)
		return
	}
	c.emitOp(opGetIndex)
}

func (c *Compiler) call(canAssign bool) {
	argc := c.argumentList()
	c.emitOpByte(opCall, byte(argc))
}

func (c *Compiler) argumentList() int {
	count := 0
	if !c.check(lexer.TokenRParen) {
		for {
			c.expression()
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
			if c.check(lexer.TokenRParen) {
				break
			}
		}
	}
	c.consume(lexer.TokenRParen, "expected ')' after arguments")
	return count
}

// dot compiles `.name`, `.name(...)` and `.name = value` against whatever
// instance is already on the stack.
func (c *Compiler) dot(canAssign bool) {
	selfReceiver := c.selfReceiverPending
	c.selfReceiverPending = false

	c.consume(lexer.TokenIdent, "expected property name after '.'")
	name := c.gc.InternStringValue(c.previous.Lexeme)
	idx := c.function.Chunk.AddConstant(name)

	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.emitOpByte(opSetProperty, byte(idx))
		return
	}
	if c.match(lexer.TokenLParen) {
		argc := c.argumentList()
		if selfReceiver {
			c.emitOpByte(opInvokeSelf, byte(idx))
		} else {
			c.emitOpByte(opInvoke, byte(idx))
		}
		c.emitByte(byte(argc))
		return
	}
	if selfReceiver {
		c.emitOpByte(opGetSelfProperty, byte(idx))
		return
	}
	c.emitOpByte(opGetProperty, byte(idx))
}

// self compiles the `self` keyword, allowed only inside method bodies
// (spec section 4.4, "Classes").
func (c *Compiler) self(canAssign bool) {
	if c.class == nil {
		c.error("'self' can only be used inside a method")
		return
	}
	c.resolveAndGet("self")
	c.selfReceiverPending = true
}

// parentExpr compiles `parent.name(...)` method dispatch and the bare
// `parent(...)` superclass-constructor call used from an initializer.
func (c *Compiler) parentExpr(canAssign bool) {
	if c.class == nil {
		c.error("'parent' can only be used inside a method")
		return
	}
	if !c.class.hasSuperclass {
		c.error("class has no parent to reference")
	}
	if c.match(lexer.TokenLParen) {
		c.resolveAndGet("@super@")
		argc := c.argumentList()
		c.emitOpByte(opSuperInvoke, byte(c.internConstant("init")))
		c.emitByte(byte(argc))
		return
	}
	c.consume(lexer.TokenDot, "expected '.' after 'parent'")
	c.consume(lexer.TokenIdent, "expected method name after 'parent.'")
	name := c.previous.Lexeme
	idx := c.internConstant(name)

	c.resolveAndGet("@super@")
	if c.match(lexer.TokenLParen) {
		argc := c.argumentList()
		c.emitOpByte(opSuperInvoke, byte(idx))
		c.emitByte(byte(argc))
		return
	}
	c.emitOpByte(opGetSuper, byte(idx))
}

func (c *Compiler) internConstant(s string) int {
	return c.function.Chunk.AddConstant(c.gc.InternStringValue(s))
}

// variable resolves an identifier as a local, an upvalue, or (failing
// both) a global, and compiles either a read or one of the assignment
// forms depending on what follows.
func (c *Compiler) variable(canAssign bool) {
	name := c.previous.Lexeme

	if canAssign && c.match(lexer.TokenEqual) {
		c.expression()
		c.resolveAndSet(name)
		return
	}
	if canAssign && isCompoundAssign(c.current.Type) {
		opTok := c.current.Type
		c.advance()
		c.resolveAndGet(name)
		if opTok == lexer.TokenElvisEq {
			elseJump := c.emitJump(opJumpIfFalse)
			endJump := c.emitJump(opJump)
			c.patchJump(elseJump)
			c.emitOp(opPop)
			c.expression()
			c.patchJump(endJump)
			c.resolveAndSet(name)
			return
		}
		c.expression()
		c.emitOp(compoundArithOp(opTok))
		c.resolveAndSet(name)
		return
	}
	c.resolveAndGet(name)
}

func compoundArithOp(t lexer.TokenType) bytecode.OpCode {
	switch t {
	case lexer.TokenPlusEq:
		return opAdd
	case lexer.TokenMinusEq:
		return opSubtract
	case lexer.TokenStarEq:
		return opMultiply
	case lexer.TokenSlashEq:
		return opDivide
	case lexer.TokenSlashSlashEq:
		return opFloorDivide
	case lexer.TokenPercentEq:
		return opRemainder
	case lexer.TokenStarStarEq:
		return opPow
	case lexer.TokenAmpEq:
		return opBitAnd
	case lexer.TokenPipeEq:
		return opBitOr
	case lexer.TokenCaretEq:
		return opBitXor
	case lexer.TokenLShiftEq:
		return opLeftShift
	case lexer.TokenRShiftEq:
		return opRightShift
	}
	return opAdd
}

func (c *Compiler) resolveAndGet(name string) {
	if local := c.resolveLocal(name); local != -1 {
		c.emitOpByte(opGetLocal, byte(local))
		return
	}
	if up := c.resolveUpvalue(name); up != -1 {
		c.emitOpByte(opGetUpvalue, byte(up))
		return
	}
	idx := c.internConstant(name)
	c.emitOpByte(opGetGlobal, byte(idx))
}

func (c *Compiler) resolveAndSet(name string) {
	if local := c.resolveLocal(name); local != -1 {
		c.emitOpByte(opSetLocal, byte(local))
		return
	}
	if up := c.resolveUpvalue(name); up != -1 {
		c.emitOpByte(opSetUpvalue, byte(up))
		return
	}
	idx := c.internConstant(name)
	c.emitOpByte(opSetGlobal, byte(idx))
}

// lambda compiles an anonymous `def (...) { ... }` expression used as a
// first-class value (spec section 4.4, "Closures").
func (c *Compiler) lambda(canAssign bool) {
	c.functionBody("", KindFunction)
}
