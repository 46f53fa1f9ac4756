package vm

import (
	"math"

	"vellum/internal/value"
)

// numericOf coerces Number and Bool operands to a float64 the way spec
// section 4.1 requires ("bool coerces to 0/1"); the second return is false
// for any other type.
func numericOf(v value.Value) (float64, bool) {
	if v.IsNumber() {
		return v.AsNumber(), true
	}
	if v.IsBool() {
		if v.AsBool() {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// execAdd implements OP_ADD: numeric add, or concatenation when either
// operand is a String/List/Bytes.
func (vm *VM) execAdd() bool {
	b := vm.pop()
	a := vm.pop()

	if a.IsObjType(value.TString) || b.IsObjType(value.TString) {
		vm.push(vm.gc.InternStringValue(value.ToString(a) + value.ToString(b)))
		return true
	}
	if a.IsObjType(value.TList) && b.IsObjType(value.TList) {
		la := a.AsObj().(*value.ObjList)
		lb := b.AsObj().(*value.ObjList)
		items := make([]value.Value, 0, len(la.Items)+len(lb.Items))
		items = append(items, la.Items...)
		items = append(items, lb.Items...)
		vm.push(value.FromObj(vm.gc.NewList(items)))
		return true
	}
	if a.IsObjType(value.TBytes) && b.IsObjType(value.TBytes) {
		ba := a.AsObj().(*value.ObjBytes)
		bb := b.AsObj().(*value.ObjBytes)
		buf := make([]byte, 0, len(ba.Bytes)+len(bb.Bytes))
		buf = append(buf, ba.Bytes...)
		buf = append(buf, bb.Bytes...)
		vm.push(value.FromObj(vm.gc.NewBytes(buf)))
		return true
	}

	na, ok1 := numericOf(a)
	nb, ok2 := numericOf(b)
	if !ok1 || !ok2 {
		return vm.typeError2("+", a, b)
	}
	vm.push(value.Number(na + nb))
	return true
}

// execMultiply implements OP_MULTIPLY: numeric multiply, or String/List
// replication by a nonnegative integer.
func (vm *VM) execMultiply() bool {
	b := vm.pop()
	a := vm.pop()

	if a.IsObjType(value.TString) && b.IsNumber() {
		return vm.pushOk(vm.replicateString(a.AsObj().(*value.ObjString).Chars, b.AsNumber()))
	}
	if a.IsObjType(value.TList) && b.IsNumber() {
		return vm.replicateList(a.AsObj().(*value.ObjList), b.AsNumber())
	}

	na, ok1 := numericOf(a)
	nb, ok2 := numericOf(b)
	if !ok1 || !ok2 {
		return vm.typeError2("*", a, b)
	}
	vm.push(value.Number(na * nb))
	return true
}

func (vm *VM) replicateString(s string, count float64) value.Value {
	n := int(count)
	if n < 0 {
		n = 0
	}
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return vm.gc.InternStringValue(out)
}

func (vm *VM) pushOk(v value.Value) bool {
	vm.push(v)
	return true
}

func (vm *VM) replicateList(l *value.ObjList, count float64) bool {
	n := int(count)
	if n < 0 {
		n = 0
	}
	items := make([]value.Value, 0, len(l.Items)*n)
	for i := 0; i < n; i++ {
		items = append(items, l.Items...)
	}
	vm.push(value.FromObj(vm.gc.NewList(items)))
	return true
}

func (vm *VM) binaryNumeric(op func(a, b float64) (float64, bool, string)) bool {
	b := vm.pop()
	a := vm.pop()
	na, ok1 := numericOf(a)
	nb, ok2 := numericOf(b)
	if !ok1 || !ok2 {
		return vm.typeError2("arithmetic", a, b)
	}
	result, ok, msg := op(na, nb)
	if !ok {
		vm.Throw("Exception", msg)
		return false
	}
	vm.push(value.Number(result))
	return true
}

func (vm *VM) execSubtract() bool {
	return vm.binaryNumeric(func(a, b float64) (float64, bool, string) { return a - b, true, "" })
}

func (vm *VM) execDivide() bool {
	return vm.binaryNumeric(func(a, b float64) (float64, bool, string) {
		if b == 0 {
			return 0, false, "division by zero"
		}
		return a / b, true, ""
	})
}

// execFloorDivide implements `//`: floor division, required by spec section
// 9's Open Question to raise on division by zero rather than return Inf/NaN.
func (vm *VM) execFloorDivide() bool {
	return vm.binaryNumeric(func(a, b float64) (float64, bool, string) {
		if b == 0 {
			return 0, false, "division by zero"
		}
		return math.Floor(a / b), true, ""
	})
}

// execRemainder implements `%`: floored modulo, sign follows the divisor.
func (vm *VM) execRemainder() bool {
	return vm.binaryNumeric(func(a, b float64) (float64, bool, string) {
		if b == 0 {
			return 0, false, "division by zero"
		}
		r := math.Mod(a, b)
		if r != 0 && (r < 0) != (b < 0) {
			r += b
		}
		return r, true, ""
	})
}

func (vm *VM) execPow() bool {
	return vm.binaryNumeric(func(a, b float64) (float64, bool, string) { return math.Pow(a, b), true, "" })
}

func (vm *VM) execNegate() bool {
	v := vm.pop()
	n, ok := numericOf(v)
	if !ok {
		vm.Throw("Exception", "operand must be a number")
		return false
	}
	vm.push(value.Number(-n))
	return true
}

func (vm *VM) execNot() bool {
	v := vm.pop()
	vm.push(value.Bool(v.IsFalsey()))
	return true
}

// toInt truncates a Number to an int64 for bitwise ops (spec section 4.1,
// "Bitwise ops coerce operands to integer via truncation").
func toInt(v value.Value) (int64, bool) {
	n, ok := numericOf(v)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

func (vm *VM) binaryBitwise(op func(a, b int64) int64) bool {
	b := vm.pop()
	a := vm.pop()
	ia, ok1 := toInt(a)
	ib, ok2 := toInt(b)
	if !ok1 || !ok2 {
		return vm.typeError2("bitwise", a, b)
	}
	vm.push(value.Number(float64(op(ia, ib))))
	return true
}

func (vm *VM) execBitAnd() bool   { return vm.binaryBitwise(func(a, b int64) int64 { return a & b }) }
func (vm *VM) execBitOr() bool    { return vm.binaryBitwise(func(a, b int64) int64 { return a | b }) }
func (vm *VM) execBitXor() bool   { return vm.binaryBitwise(func(a, b int64) int64 { return a ^ b }) }
func (vm *VM) execLeftShift() bool {
	return vm.binaryBitwise(func(a, b int64) int64 { return a << uint(b) })
}
func (vm *VM) execRightShift() bool {
	return vm.binaryBitwise(func(a, b int64) int64 { return a >> uint(b) })
}

func (vm *VM) execBitNot() bool {
	v := vm.pop()
	i, ok := toInt(v)
	if !ok {
		vm.Throw("Exception", "operand must be a number")
		return false
	}
	vm.push(value.Number(float64(^i)))
	return true
}

// execLess/execGreater implement OP_LESS/OP_GREATER: Numbers compare
// numerically, Strings compare lexicographically; any other pairing is a
// type error.
func (vm *VM) execCompare(lessThan bool) bool {
	b := vm.pop()
	a := vm.pop()
	if a.IsNumber() && b.IsNumber() {
		if lessThan {
			vm.push(value.Bool(a.AsNumber() < b.AsNumber()))
		} else {
			vm.push(value.Bool(a.AsNumber() > b.AsNumber()))
		}
		return true
	}
	if a.IsObjType(value.TString) && b.IsObjType(value.TString) {
		sa := a.AsObj().(*value.ObjString).Chars
		sb := b.AsObj().(*value.ObjString).Chars
		if lessThan {
			vm.push(value.Bool(sa < sb))
		} else {
			vm.push(value.Bool(sa > sb))
		}
		return true
	}
	return vm.typeError2("comparison", a, b)
}

func (vm *VM) execEqual() bool {
	b := vm.pop()
	a := vm.pop()
	vm.push(value.Bool(a.Equals(b)))
	return true
}

func (vm *VM) typeError2(op string, a, b value.Value) bool {
	vm.Throw("Exception", "unsupported operand types for "+op+": '"+a.TypeName()+"' and '"+b.TypeName()+"'")
	return false
}
