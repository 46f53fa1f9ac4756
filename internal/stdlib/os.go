package stdlib

import (
	"os"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func registerOS() {
	reg("_os",
		module.FuncDesc{Name: "getenv", Fn: osGetenv},
		module.FuncDesc{Name: "args", Fn: osArgs},
		module.FuncDesc{Name: "exit", Fn: osExit},
		module.FuncDesc{Name: "mkdir", Fn: osMkdir},
		module.FuncDesc{Name: "remove", Fn: osRemove},
		module.FuncDesc{Name: "exists", Fn: osExists},
	)
}

func osGetenv(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "os.getenv(name) expects 1 argument")
	}
	return c.GC().InternStringValue(os.Getenv(value.ToString(args[0]))), true
}

func osArgs(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	items := make([]value.Value, len(os.Args))
	for i, a := range os.Args {
		items[i] = c.GC().InternStringValue(a)
	}
	return value.FromObj(c.GC().NewList(items)), true
}

func osExit(caller interface{}, args []value.Value) (value.Value, bool) {
	code := 0
	if len(args) == 1 && args[0].IsNumber() {
		code = int(args[0].AsNumber())
	}
	os.Exit(code)
	return value.Nil, true
}

func osMkdir(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "os.mkdir(path) expects 1 argument")
	}
	if err := os.MkdirAll(value.ToString(args[0]), 0o755); err != nil {
		return value.Nil, c.Throw("Exception", "os.mkdir: "+err.Error())
	}
	return value.Nil, true
}

func osRemove(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "os.remove(path) expects 1 argument")
	}
	if err := os.Remove(value.ToString(args[0])); err != nil {
		return value.Nil, c.Throw("Exception", "os.remove: "+err.Error())
	}
	return value.Nil, true
}

func osExists(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "os.exists(path) expects 1 argument")
	}
	_, err := os.Stat(value.ToString(args[0]))
	return value.Bool(err == nil), true
}
