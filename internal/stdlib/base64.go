package stdlib

import (
	"encoding/base64"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func registerBase64() {
	reg("_base64",
		module.FuncDesc{Name: "encode", Fn: base64Encode},
		module.FuncDesc{Name: "decode", Fn: base64Decode},
	)
}

func base64Encode(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "base64.encode(s) expects 1 argument")
	}
	return c.GC().InternStringValue(base64.StdEncoding.EncodeToString([]byte(value.ToString(args[0])))), true
}

func base64Decode(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "base64.decode(s) expects 1 argument")
	}
	out, err := base64.StdEncoding.DecodeString(value.ToString(args[0]))
	if err != nil {
		return value.Nil, c.Throw("Exception", "base64.decode: "+err.Error())
	}
	return c.GC().InternStringValue(string(out)), true
}
