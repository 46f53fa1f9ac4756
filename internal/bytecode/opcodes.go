// Package bytecode defines the opcode set emitted by the compiler and
// consumed by the VM dispatch loop (spec section 6, "Bytecode encoding").
package bytecode

// OpCode is a single-byte instruction tag, optionally followed by 0-6 bytes
// of big-endian operands.
type OpCode byte

const (
	// Globals
	OpDefineGlobal OpCode = iota
	OpGetGlobal
	OpSetGlobal

	// Locals
	OpGetLocal
	OpSetLocal

	// Upvalues
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	// Properties
	OpGetProperty
	OpGetSelfProperty
	OpSetProperty

	// Control flow
	OpJump
	OpJumpIfFalse
	OpLoop
	OpBreakPlaceholder

	// Arithmetic / logic
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpFloorDivide
	OpRemainder
	OpPow
	OpNegate
	OpNot
	OpBitNot
	OpBitAnd
	OpBitOr
	OpBitXor
	OpLeftShift
	OpRightShift
	OpOne // pushes the numeric constant 1, used by `++`/`--` desugaring

	// Constants / stack shuffling
	OpConstant
	OpEcho
	OpPop
	OpDup
	OpPopN
	OpAssert
	OpDie

	// Closures / calls
	OpClosure
	OpCall
	OpInvoke
	OpInvokeSelf
	OpReturn

	// Classes
	OpClass
	OpMethod
	OpClassProperty
	OpInherit
	OpGetSuper
	OpSuperInvoke
	OpSuperInvokeSelf

	// Containers
	OpRange
	OpList
	OpDict
	OpGetIndex
	OpGetRangedIndex
	OpSetIndex

	// Imports
	OpCallImport
	OpNativeModule
	OpSelectImport
	OpSelectNativeImport
	OpImportAll
	OpImportAllNative
	OpEjectImport
	OpEjectNativeImport

	// Exceptions
	OpTry
	OpPopTry
	OpPublishTry

	// Misc / literals
	OpStringify
	OpSwitch
	OpChoice
	OpEmpty
	OpNilConst
	OpTrueConst
	OpFalseConst
	OpEqual
	OpGreater
	OpLess
)

var names = map[OpCode]string{
	OpDefineGlobal: "DEFINE_GLOBAL", OpGetGlobal: "GET_GLOBAL", OpSetGlobal: "SET_GLOBAL",
	OpGetLocal: "GET_LOCAL", OpSetLocal: "SET_LOCAL",
	OpGetUpvalue: "GET_UPVALUE", OpSetUpvalue: "SET_UPVALUE", OpCloseUpvalue: "CLOSE_UPVALUE",
	OpGetProperty: "GET_PROPERTY", OpGetSelfProperty: "GET_SELF_PROPERTY", OpSetProperty: "SET_PROPERTY",
	OpJump: "JUMP", OpJumpIfFalse: "JUMP_IF_FALSE", OpLoop: "LOOP", OpBreakPlaceholder: "BREAK_PL",
	OpAdd: "ADD", OpSubtract: "SUBTRACT", OpMultiply: "MULTIPLY", OpDivide: "DIVIDE",
	OpFloorDivide: "FLOOR_DIVIDE", OpRemainder: "REMAINDER", OpPow: "POW", OpNegate: "NEGATE",
	OpNot: "NOT", OpBitNot: "BIT_NOT", OpBitAnd: "BIT_AND", OpBitOr: "BIT_OR", OpBitXor: "BIT_XOR",
	OpLeftShift: "LSHIFT", OpRightShift: "RSHIFT", OpOne: "ONE",
	OpConstant: "CONSTANT", OpEcho: "ECHO", OpPop: "POP", OpDup: "DUP", OpPopN: "POP_N",
	OpAssert: "ASSERT", OpDie: "DIE",
	OpClosure: "CLOSURE", OpCall: "CALL", OpInvoke: "INVOKE", OpInvokeSelf: "INVOKE_SELF", OpReturn: "RETURN",
	OpClass: "CLASS", OpMethod: "METHOD", OpClassProperty: "CLASS_PROPERTY", OpInherit: "INHERIT",
	OpGetSuper: "GET_SUPER", OpSuperInvoke: "SUPER_INVOKE", OpSuperInvokeSelf: "SUPER_INVOKE_SELF",
	OpRange: "RANGE", OpList: "LIST", OpDict: "DICT", OpGetIndex: "GET_INDEX",
	OpGetRangedIndex: "GET_RANGED_INDEX", OpSetIndex: "SET_INDEX",
	OpCallImport: "CALL_IMPORT", OpNativeModule: "NATIVE_MODULE", OpSelectImport: "SELECT_IMPORT",
	OpSelectNativeImport: "SELECT_NATIVE_IMPORT", OpImportAll: "IMPORT_ALL",
	OpImportAllNative: "IMPORT_ALL_NATIVE", OpEjectImport: "EJECT_IMPORT",
	OpEjectNativeImport: "EJECT_NATIVE_IMPORT",
	OpTry: "TRY", OpPopTry: "POP_TRY", OpPublishTry: "PUBLISH_TRY",
	OpStringify: "STRINGIFY", OpSwitch: "SWITCH", OpChoice: "CHOICE",
	OpEmpty: "EMPTY", OpNilConst: "NIL", OpTrueConst: "TRUE", OpFalseConst: "FALSE",
	OpEqual: "EQUAL", OpGreater: "GREATER", OpLess: "LESS",
}

func (op OpCode) String() string {
	if n, ok := names[op]; ok {
		return n
	}
	return "UNKNOWN"
}
