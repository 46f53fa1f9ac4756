package stdlib

import (
	"math"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func registerMath() {
	reg("_math",
		module.FuncDesc{Name: "sqrt", Fn: mathUnary(math.Sqrt)},
		module.FuncDesc{Name: "abs", Fn: mathUnary(math.Abs)},
		module.FuncDesc{Name: "floor", Fn: mathUnary(math.Floor)},
		module.FuncDesc{Name: "ceil", Fn: mathUnary(math.Ceil)},
		module.FuncDesc{Name: "round", Fn: mathUnary(math.Round)},
		module.FuncDesc{Name: "sin", Fn: mathUnary(math.Sin)},
		module.FuncDesc{Name: "cos", Fn: mathUnary(math.Cos)},
		module.FuncDesc{Name: "log", Fn: mathUnary(math.Log)},
		module.FuncDesc{Name: "pow", Fn: mathPow},
		module.FuncDesc{Name: "max", Fn: mathMax},
		module.FuncDesc{Name: "min", Fn: mathMin},
	)
}

func mathUnary(f func(float64) float64) value.NativeFn {
	return func(caller interface{}, args []value.Value) (value.Value, bool) {
		c := caller.(vm.Caller)
		if len(args) != 1 || !args[0].IsNumber() {
			return value.Nil, c.Throw("Exception", "expects 1 numeric argument")
		}
		return value.Number(f(args[0].AsNumber())), true
	}
}

func mathPow(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Nil, c.Throw("Exception", "math.pow(a, b) expects 2 numeric arguments")
	}
	return value.Number(math.Pow(args[0].AsNumber(), args[1].AsNumber())), true
}

func mathMax(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Nil, c.Throw("Exception", "math.max(a, b) expects 2 numeric arguments")
	}
	return value.Number(math.Max(args[0].AsNumber(), args[1].AsNumber())), true
}

func mathMin(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
		return value.Nil, c.Throw("Exception", "math.min(a, b) expects 2 numeric arguments")
	}
	return value.Number(math.Min(args[0].AsNumber(), args[1].AsNumber())), true
}
