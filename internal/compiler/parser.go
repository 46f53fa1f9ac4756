package compiler

import "vellum/internal/lexer"

// advance pulls the next significant token from the scanner into c.current,
// moving the previous c.current into c.previous. Newlines are insignificant
// whitespace to this grammar (statements are delimited by `;` or by block
// structure), so they are swallowed here rather than threaded through every
// parse rule.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Type == lexer.TokenNewline {
			continue
		}
		if c.current.Type != lexer.TokenError {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(t lexer.TokenType) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t lexer.TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t lexer.TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

// consumeStatementEnd accepts a `;` or lets block/file structure end the
// statement; either is fine since newlines never reach the parser.
func (c *Compiler) consumeStatementEnd() {
	c.match(lexer.TokenSemicolon)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) errorAt(tok lexer.Token, message string) {
	if c.panic {
		return
	}
	c.panic = true
	c.hadError = true
	c.errs.Add(c.file, tok.Line, tok.Lexeme, message)
}

// synchronize recovers from a parse error by discarding tokens up to the
// next statement boundary, so the compiler can keep collecting further
// diagnostics instead of stopping at the first one (spec section 7, item 1).
func (c *Compiler) synchronize() {
	c.panic = false
	for c.current.Type != lexer.TokenEOF {
		if c.previous.Type == lexer.TokenSemicolon {
			return
		}
		switch c.current.Type {
		case lexer.TokenClass, lexer.TokenDef, lexer.TokenVar, lexer.TokenFor,
			lexer.TokenIf, lexer.TokenWhile, lexer.TokenIter, lexer.TokenReturn,
			lexer.TokenEcho, lexer.TokenTry, lexer.TokenImport, lexer.TokenUsing:
			return
		}
		c.advance()
	}
}
