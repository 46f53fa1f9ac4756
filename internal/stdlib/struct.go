package stdlib

import (
	"encoding/binary"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

// registerStruct exposes the binary-pack/unpack collaborator spec section 1
// scopes out of the core, restricted to the two integer widths scripts
// actually need (a 32-bit and a 64-bit big-endian word) rather than a full
// format-string mini-language.
func registerStruct() {
	reg("_struct",
		module.FuncDesc{Name: "pack_u32", Fn: structPackU32},
		module.FuncDesc{Name: "unpack_u32", Fn: structUnpackU32},
		module.FuncDesc{Name: "pack_u64", Fn: structPackU64},
		module.FuncDesc{Name: "unpack_u64", Fn: structUnpackU64},
	)
}

func structPackU32(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsNumber() {
		return value.Nil, c.Throw("Exception", "struct.pack_u32(n) expects 1 numeric argument")
	}
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(args[0].AsNumber()))
	return value.FromObj(c.GC().NewBytes(buf)), true
}

func structUnpackU32(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsObjType(value.TBytes) {
		return value.Nil, c.Throw("Exception", "struct.unpack_u32(bytes) expects a bytes argument")
	}
	b := args[0].AsObj().(*value.ObjBytes).Bytes
	if len(b) != 4 {
		return value.Nil, c.Throw("Exception", "struct.unpack_u32: expected 4 bytes")
	}
	return value.Number(float64(binary.BigEndian.Uint32(b))), true
}

func structPackU64(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsNumber() {
		return value.Nil, c.Throw("Exception", "struct.pack_u64(n) expects 1 numeric argument")
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(args[0].AsNumber()))
	return value.FromObj(c.GC().NewBytes(buf)), true
}

func structUnpackU64(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 || !args[0].IsObjType(value.TBytes) {
		return value.Nil, c.Throw("Exception", "struct.unpack_u64(bytes) expects a bytes argument")
	}
	b := args[0].AsObj().(*value.ObjBytes).Bytes
	if len(b) != 8 {
		return value.Nil, c.Throw("Exception", "struct.unpack_u64: expected 8 bytes")
	}
	return value.Number(float64(binary.BigEndian.Uint64(b))), true
}
