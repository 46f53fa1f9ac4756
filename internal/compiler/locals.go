package compiler

// beginScope/endScope bracket a lexical block. Locals declared inside are
// popped (and closed over into upvalues if captured) on the way out, the
// way spec section 4.3's "Scopes and locals" describes.
func (c *Compiler) beginScope() {
	c.scopeDepth++
}

func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].Depth > c.scopeDepth {
		last := c.locals[len(c.locals)-1]
		if last.IsCaptured {
			c.emitOp(opCloseUpvalue)
		} else {
			c.emitOp(opPop)
		}
		c.locals = c.locals[:len(c.locals)-1]
	}
}

// declareVariable registers a local by name in the current scope, or does
// nothing at global scope (globals are resolved dynamically by name at
// runtime, not by slot). Redeclaring a name already bound in the same
// scope is a compile error.
func (c *Compiler) declareVariable(name string) {
	if c.scopeDepth == 0 {
		return
	}
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.Depth != -1 && l.Depth < c.scopeDepth {
			break
		}
		if l.Name == name {
			c.error("a variable named '" + name + "' already exists in this scope")
			return
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name string) {
	if len(c.locals) >= maxLocals {
		c.error("too many local variables in one function")
		return
	}
	c.locals = append(c.locals, Local{Name: name, Depth: -1})
}

// markInitialized flips the most recently declared local from
// declared-but-uninitialized to ready, completing the two-phase definition
// that keeps `var x = x` from resolving the right-hand `x` to itself.
func (c *Compiler) markInitialized() {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].Depth = c.scopeDepth
}

func (c *Compiler) resolveLocal(name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].Name == name {
			if c.locals[i].Depth == -1 {
				c.error("can't read local variable '" + name + "' in its own initializer")
			}
			return i
		}
	}
	return -1
}

// resolveUpvalue recursively walks enclosing compilers so a deeply nested
// closure can capture a variable from any ancestor frame, promoting it to
// an upvalue at every intermediate level along the way (spec section 4.3,
// "Upvalues").
func (c *Compiler) resolveUpvalue(name string) int {
	if c.enclosing == nil {
		return -1
	}
	if local := c.enclosing.resolveLocal(name); local != -1 {
		c.enclosing.locals[local].IsCaptured = true
		return c.addUpvalue(uint8(local), true)
	}
	if up := c.enclosing.resolveUpvalue(name); up != -1 {
		return c.addUpvalue(uint8(up), false)
	}
	return -1
}

func (c *Compiler) addUpvalue(index uint8, isLocal bool) int {
	for i, u := range c.upvalues {
		if u.Index == index && u.IsLocal == isLocal {
			return i
		}
	}
	if len(c.upvalues) >= maxUpvalues {
		c.error("too many closed-over variables in one function")
		return 0
	}
	c.upvalues = append(c.upvalues, Upvalue{Index: index, IsLocal: isLocal})
	c.function.UpvalueCount = len(c.upvalues)
	return len(c.upvalues) - 1
}
