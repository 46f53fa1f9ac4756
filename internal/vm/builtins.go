package vm

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"vellum/internal/value"
)

// registerBuiltinFunctions installs the global built-in functions (spec
// section 2's "Built-in functions" component: type predicates, conversions,
// I/O, introspection). Each is a plain global binding, indistinguishable
// from a user-defined one once installed.
func (vm *VM) registerBuiltinFunctions() {
	vm.defGlobalFn("to_string", vm.builtinToString)
	vm.defGlobalFn("int", vm.builtinInt)
	vm.defGlobalFn("number", vm.builtinNumber)
	vm.defGlobalFn("typeof", vm.builtinTypeof)
	vm.defGlobalFn("len", vm.builtinLen)
	vm.defGlobalFn("is_number", vm.typePredicate(func(v value.Value) bool { return v.IsNumber() }))
	vm.defGlobalFn("is_string", vm.typePredicate(func(v value.Value) bool { return v.IsObjType(value.TString) }))
	vm.defGlobalFn("is_list", vm.typePredicate(func(v value.Value) bool { return v.IsObjType(value.TList) }))
	vm.defGlobalFn("is_dict", vm.typePredicate(func(v value.Value) bool { return v.IsObjType(value.TDict) }))
	vm.defGlobalFn("is_instance_of", vm.builtinIsInstanceOf)
	vm.defGlobalFn("sort", vm.builtinSort)
	vm.defGlobalFn("uuid", vm.builtinUUID)
	vm.defGlobalFn("clock", vm.builtinClock)
}

func (vm *VM) defGlobalFn(name string, fn value.NativeFn) {
	n := value.NewNative(name, value.NativeFunction, fn)
	vm.gc.Track(n)
	vm.globals.Set(vm.gc.InternStringValue(name), value.FromObj(n))
}

func (vm *VM) builtinToString(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 {
		return value.Nil, vm.Throw("Exception", "to_string() expects 1 argument")
	}
	return vm.gc.InternStringValue(value.ToString(args[0])), true
}

// builtinInt implements `int(...)`: truncates a Number, parses a numeric
// String, coerces Bool to 0/1; anything else raises (spec section 8's
// round-trip law `int(to_string(n)) == n`).
func (vm *VM) builtinInt(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 {
		return value.Nil, vm.Throw("Exception", "int() expects 1 argument")
	}
	n, ok := numericOf(args[0])
	if ok {
		return value.Number(float64(int64(n))), true
	}
	if args[0].IsObjType(value.TString) {
		s := args[0].AsObj().(*value.ObjString).Chars
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return value.Number(float64(int64(f))), true
		}
	}
	return value.Nil, vm.Throw("Exception", "cannot convert '"+args[0].TypeName()+"' to int")
}

func (vm *VM) builtinNumber(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 {
		return value.Nil, vm.Throw("Exception", "number() expects 1 argument")
	}
	n, ok := numericOf(args[0])
	if ok {
		return value.Number(n), true
	}
	if args[0].IsObjType(value.TString) {
		s := args[0].AsObj().(*value.ObjString).Chars
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return value.Number(f), true
		}
	}
	return value.Nil, vm.Throw("Exception", "cannot convert '"+args[0].TypeName()+"' to number")
}

func (vm *VM) builtinTypeof(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 {
		return value.Nil, vm.Throw("Exception", "typeof() expects 1 argument")
	}
	return vm.gc.InternStringValue(args[0].TypeName()), true
}

func (vm *VM) builtinLen(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 {
		return value.Nil, vm.Throw("Exception", "len() expects 1 argument")
	}
	v := args[0]
	switch {
	case v.IsObjType(value.TString):
		return value.Number(float64(len([]rune(v.AsObj().(*value.ObjString).Chars)))), true
	case v.IsObjType(value.TList):
		return value.Number(float64(len(v.AsObj().(*value.ObjList).Items))), true
	case v.IsObjType(value.TDict):
		return value.Number(float64(v.AsObj().(*value.ObjDict).Len())), true
	case v.IsObjType(value.TBytes):
		return value.Number(float64(len(v.AsObj().(*value.ObjBytes).Bytes))), true
	}
	return value.Nil, vm.Throw("Exception", "'"+v.TypeName()+"' has no length")
}

func (vm *VM) typePredicate(pred func(value.Value) bool) value.NativeFn {
	return func(caller interface{}, args []value.Value) (value.Value, bool) {
		if len(args) != 1 {
			return value.Nil, vm.Throw("Exception", "expects 1 argument")
		}
		return value.Bool(pred(args[0])), true
	}
}

// builtinIsInstanceOf implements `is_instance_of(v, Class)`: walks the
// instance's class chain exactly as exception matching does.
func (vm *VM) builtinIsInstanceOf(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 2 {
		return value.Nil, vm.Throw("Exception", "is_instance_of() expects 2 arguments")
	}
	if !args[0].IsObjType(value.TInstance) || !args[1].IsObjType(value.TClass) {
		return value.Bool(false), true
	}
	inst := args[0].AsObj().(*value.ObjInstance)
	target := args[1].AsObj().(*value.ObjClass)
	for c := inst.Class; c != nil; c = c.Super {
		if c == target {
			return value.Bool(true), true
		}
	}
	return value.Bool(false), true
}

// builtinSort implements `sort(list)` in place, using the total preorder
// from spec section 4.1 ("Nil < Bool(false) < Bool(true) < Number < Obj").
// The spec's Open Question on the original's O(n^2) algorithm only
// requires a total order consistent with that ranking, not a specific
// algorithm, so this uses sort.SliceStable.
func (vm *VM) builtinSort(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 1 || !args[0].IsObjType(value.TList) {
		return value.Nil, vm.Throw("Exception", "sort() expects a list")
	}
	l := args[0].AsObj().(*value.ObjList)
	sort.SliceStable(l.Items, func(i, j int) bool { return lessValue(l.Items[i], l.Items[j]) })
	return args[0], true
}

func valueRank(v value.Value) int {
	switch {
	case v.IsNil():
		return 0
	case v.IsBool():
		if v.AsBool() {
			return 2
		}
		return 1
	case v.IsNumber():
		return 3
	default:
		return 4
	}
}

func lessValue(a, b value.Value) bool {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return ra < rb
	}
	switch ra {
	case 3:
		return a.AsNumber() < b.AsNumber()
	case 4:
		return natureKey(a) < natureKey(b)
	}
	return false
}

// natureKey gives each Obj subtype the "natural key" spec section 4.1
// names for sort ordering: Strings lexicographic, Lists by length, Ranges
// by lower bound; everything else falls back to its type name so the
// order is at least stable and total.
func natureKey(v value.Value) string {
	switch o := v.AsObj().(type) {
	case *value.ObjString:
		return o.Chars
	case *value.ObjList:
		return fmt.Sprintf("%020d", len(o.Items))
	case *value.ObjRange:
		return fmt.Sprintf("%+021.6f", o.Lower)
	default:
		return v.TypeName()
	}
}

func (vm *VM) builtinUUID(caller interface{}, args []value.Value) (value.Value, bool) {
	if len(args) != 0 {
		return value.Nil, vm.Throw("Exception", "uuid() expects 0 arguments")
	}
	return vm.gc.InternStringValue(uuid.NewString()), true
}

// builtinClock exposes wall-clock seconds for benchmarking scripts, the
// one piece of the I/O/introspection bucket that has no natural home in a
// stdlib native module.
func (vm *VM) builtinClock(caller interface{}, args []value.Value) (value.Value, bool) {
	return value.Number(float64(time.Now().UnixNano()) / 1e9), true
}
