package compiler

import "vellum/internal/lexer"

// classDeclaration compiles `class Name [< Parent] { ... }` (spec section
// 4.4, "Classes"): single inheritance via OP_INHERIT's shallow method/field
// copy, `_`-prefixed private members, `static` fields, and an
// initializer named the same as the class.
func (c *Compiler) classDeclaration() {
	c.consume(lexer.TokenIdent, "expected class name")
	name := c.previous.Lexeme
	nameConst := c.internConstant(name)
	c.declareVariable(name)

	classCompiler := &ClassCompiler{enclosing: c.class, name: name}
	c.class = classCompiler

	c.emitOpByte(opClass, byte(nameConst))
	c.defineVariable(name)

	if c.match(lexer.TokenLess) {
		c.consume(lexer.TokenIdent, "expected parent class name after '<'")
		if c.previous.Lexeme == name {
			c.error("a class cannot inherit from itself")
		}
		classCompiler.hasSuperclass = true
		c.resolveAndGet(c.previous.Lexeme)

		// Wrap method compilation in a synthetic scope holding "@super@" so
		// every method closure captures the parent class as an upvalue
		// (mirrors the teacher's approach to binding `super`/`parent`). The
		// local's stack slot lives for the whole class body; OP_INHERIT
		// below only peeks it (via a second, ordinary local read), it does
		// not consume it.
		c.beginScope()
		c.declareVariable("@super@")
		c.markInitialized()

		c.resolveAndGet(name)
		c.resolveAndGet("@super@")
		c.emitOp(opInherit)
	}

	c.resolveAndGet(name)
	c.consume(lexer.TokenLBrace, "expected '{' before class body")
	for !c.check(lexer.TokenRBrace) && !c.check(lexer.TokenEOF) {
		c.classMember()
	}
	c.consume(lexer.TokenRBrace, "expected '}' after class body")
	c.emitOp(opPop) // the class value pushed by resolveAndGet(name) above

	if classCompiler.hasSuperclass {
		c.endScope()
	}

	c.class = classCompiler.enclosing
}

// classMember compiles one method or field inside a class body. Fields
// (static or instance) are `name = expr;`; methods are `[static] name(...)
// { ... }`.
func (c *Compiler) classMember() {
	static := c.match(lexer.TokenStatic)

	c.consume(lexer.TokenIdent, "expected a method or field name")
	memberName := c.previous.Lexeme

	if c.check(lexer.TokenLParen) {
		kind := KindMethod
		if memberName == c.class.name {
			kind = KindInitializer
		} else if static {
			kind = KindStaticMethod
		}
		idx := c.internConstant(memberName)
		if static {
			c.functionBody(memberName, kind)
			c.emitOpByte(opClassProperty, byte(idx))
			c.emitByte(1) // static: lands in the class's StaticProperties table
		} else {
			c.functionBody(memberName, kind)
			c.emitOpByte(opMethod, byte(idx))
		}
		return
	}

	// Field with a default value, applied to every new instance at
	// construction time (spec section 4.4, "Fields").
	if c.match(lexer.TokenEqual) {
		c.expression()
	} else {
		c.emitOp(opNilConst)
	}
	c.consumeStatementEnd()
	idx := c.internConstant(memberName)
	c.emitOpByte(opClassProperty, byte(idx))
	if static {
		c.emitByte(1) // static: lands in the class's StaticProperties table
	} else {
		c.emitByte(0) // instance: lands in PropertyDefaults, copied per-instance
	}
}
