package compiler

import (
	"strings"

	"vellum/internal/lexer"
)

// importStatement compiles the three import forms from spec section 4.4
// ("Modules"): a plain `import path.to.mod;` binds the whole module to a
// global named after its last segment; `import path { a, b };` selects
// specific exported bindings; `import * path;` merges every exported
// binding into the global namespace. A leading `_` on the first path
// segment names a native (Go-implemented) module instead of a script one.
func (c *Compiler) importStatement() {
	all := c.match(lexer.TokenStar)

	path, lastSegment := c.importPath()
	native := strings.HasPrefix(path, "_")
	pathConst := c.internConstant(path)

	if all {
		if native {
			c.emitOpByte(opImportAllNative, byte(pathConst))
		} else {
			c.emitOpByte(opImportAll, byte(pathConst))
		}
		c.consumeStatementEnd()
		return
	}

	if c.match(lexer.TokenLBrace) {
		var names []string
		for {
			c.consume(lexer.TokenIdent, "expected an exported name")
			names = append(names, c.previous.Lexeme)
			if !c.match(lexer.TokenComma) {
				break
			}
		}
		c.consume(lexer.TokenRBrace, "expected '}' after selected imports")
		for _, n := range names {
			nameConst := c.internConstant(n)
			if native {
				c.emitOpByte(opSelectNativeImport, byte(pathConst))
			} else {
				c.emitOpByte(opSelectImport, byte(pathConst))
			}
			c.emitByte(byte(nameConst))
			c.emitOpByte(opDefineGlobal, byte(nameConst))
		}
		c.consumeStatementEnd()
		return
	}

	alias := lastSegment
	if c.match(lexer.TokenAs) {
		c.consume(lexer.TokenIdent, "expected alias name after 'as'")
		alias = c.previous.Lexeme
	}
	if native {
		c.emitOpByte(opNativeModule, byte(pathConst))
	} else {
		c.emitOpByte(opCallImport, byte(pathConst))
	}
	aliasConst := c.internConstant(alias)
	c.emitOpByte(opDefineGlobal, byte(aliasConst))
	c.consumeStatementEnd()
}

func (c *Compiler) importPath() (path string, lastSegment string) {
	c.consume(lexer.TokenIdent, "expected a module path")
	var sb strings.Builder
	sb.WriteString(c.previous.Lexeme)
	lastSegment = c.previous.Lexeme
	for c.match(lexer.TokenDot) {
		c.consume(lexer.TokenIdent, "expected a module path segment after '.'")
		sb.WriteByte('.')
		sb.WriteString(c.previous.Lexeme)
		lastSegment = c.previous.Lexeme
	}
	return sb.String(), lastSegment
}
