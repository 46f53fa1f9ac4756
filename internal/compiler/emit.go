package compiler

import (
	"vellum/internal/bytecode"
	"vellum/internal/value"
)

// Local aliases keep the call sites in this package terse while the opcode
// identifiers themselves live in package bytecode.
const (
	opDefineGlobal = bytecode.OpDefineGlobal
	opGetGlobal    = bytecode.OpGetGlobal
	opSetGlobal    = bytecode.OpSetGlobal
	opGetLocal     = bytecode.OpGetLocal
	opSetLocal     = bytecode.OpSetLocal
	opGetUpvalue   = bytecode.OpGetUpvalue
	opSetUpvalue   = bytecode.OpSetUpvalue
	opCloseUpvalue = bytecode.OpCloseUpvalue
	opGetProperty  = bytecode.OpGetProperty
	opGetSelfProperty = bytecode.OpGetSelfProperty
	opSetProperty  = bytecode.OpSetProperty
	opJump         = bytecode.OpJump
	opJumpIfFalse  = bytecode.OpJumpIfFalse
	opLoop         = bytecode.OpLoop
	opBreakPl      = bytecode.OpBreakPlaceholder
	opAdd          = bytecode.OpAdd
	opSubtract     = bytecode.OpSubtract
	opMultiply     = bytecode.OpMultiply
	opDivide       = bytecode.OpDivide
	opFloorDivide  = bytecode.OpFloorDivide
	opRemainder    = bytecode.OpRemainder
	opPow          = bytecode.OpPow
	opNegate       = bytecode.OpNegate
	opNot          = bytecode.OpNot
	opBitNot       = bytecode.OpBitNot
	opBitAnd       = bytecode.OpBitAnd
	opBitOr        = bytecode.OpBitOr
	opBitXor       = bytecode.OpBitXor
	opLeftShift    = bytecode.OpLeftShift
	opRightShift   = bytecode.OpRightShift
	opOne          = bytecode.OpOne
	opConstant     = bytecode.OpConstant
	opEcho         = bytecode.OpEcho
	opPop          = bytecode.OpPop
	opDup          = bytecode.OpDup
	opPopN         = bytecode.OpPopN
	opAssert       = bytecode.OpAssert
	opDie          = bytecode.OpDie
	opClosure      = bytecode.OpClosure
	opCall         = bytecode.OpCall
	opInvoke       = bytecode.OpInvoke
	opInvokeSelf   = bytecode.OpInvokeSelf
	opReturn       = bytecode.OpReturn
	opClass        = bytecode.OpClass
	opMethod       = bytecode.OpMethod
	opClassProperty = bytecode.OpClassProperty
	opInherit      = bytecode.OpInherit
	opGetSuper     = bytecode.OpGetSuper
	opSuperInvoke  = bytecode.OpSuperInvoke
	opSuperInvokeSelf = bytecode.OpSuperInvokeSelf
	opRange        = bytecode.OpRange
	opList         = bytecode.OpList
	opDict         = bytecode.OpDict
	opGetIndex     = bytecode.OpGetIndex
	opGetRangedIndex = bytecode.OpGetRangedIndex
	opSetIndex     = bytecode.OpSetIndex
	opCallImport   = bytecode.OpCallImport
	opNativeModule = bytecode.OpNativeModule
	opSelectImport = bytecode.OpSelectImport
	opSelectNativeImport = bytecode.OpSelectNativeImport
	opImportAll    = bytecode.OpImportAll
	opImportAllNative = bytecode.OpImportAllNative
	opEjectImport  = bytecode.OpEjectImport
	opEjectNativeImport = bytecode.OpEjectNativeImport
	opTry          = bytecode.OpTry
	opPopTry       = bytecode.OpPopTry
	opPublishTry   = bytecode.OpPublishTry
	opStringify    = bytecode.OpStringify
	opSwitch       = bytecode.OpSwitch
	opChoice       = bytecode.OpChoice
	opEmpty        = bytecode.OpEmpty
	opNilConst     = bytecode.OpNilConst
	opTrueConst    = bytecode.OpTrueConst
	opFalseConst   = bytecode.OpFalseConst
	opEqual        = bytecode.OpEqual
	opGreater      = bytecode.OpGreater
	opLess         = bytecode.OpLess
)

func (c *Compiler) emitByte(b byte) int {
	return c.function.Chunk.WriteByte(b, c.previous.Line)
}

func (c *Compiler) emitOp(op bytecode.OpCode) int {
	return c.function.Chunk.WriteOp(op, c.previous.Line)
}

func (c *Compiler) emitOpByte(op bytecode.OpCode, b byte) {
	c.emitOp(op)
	c.emitByte(b)
}

func (c *Compiler) emitShort(v uint16) {
	c.function.Chunk.WriteShort(v, c.previous.Line)
}

// emitJump emits op followed by a 2-byte placeholder and returns the offset
// of the placeholder's high byte, to be patched later by patchJump.
func (c *Compiler) emitJump(op bytecode.OpCode) int {
	c.emitOp(op)
	pos := c.function.Chunk.WriteByte(0xff, c.previous.Line)
	c.function.Chunk.WriteByte(0xff, c.previous.Line)
	return pos
}

func (c *Compiler) patchJump(pos int) {
	target := len(c.function.Chunk.Code)
	c.function.Chunk.PatchShort(pos, uint16(target))
}

// emitLoop emits a backward jump encoded as the absolute offset recorded at
// loopStart (spec section 4.3: "loop emits a backward jump with an absolute
// offset relative to a recorded loop start").
func (c *Compiler) emitLoop(loopStart int) {
	c.emitOp(opLoop)
	c.emitShort(uint16(loopStart))
}

func (c *Compiler) emitConstant(v value.Value) {
	idx := c.function.Chunk.AddConstant(v)
	if idx > 0xff {
		c.error("too many constants in one chunk")
		return
	}
	c.emitOpByte(opConstant, byte(idx))
}

func (c *Compiler) currentOffset() int { return len(c.function.Chunk.Code) }
