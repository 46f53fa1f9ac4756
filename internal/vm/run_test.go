package vm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/compiler"
	"vellum/internal/value"
)

// run compiles and executes src on a fresh VM, returning everything written
// to stdout. It fails the test immediately on a compile or fatal error;
// runtime exceptions are returned to the caller via the second result so
// tests can assert on them directly.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	mod := value.NewModule("", "<test>")
	machine := New(Config{Stdout: &out})
	fn, err := compiler.Compile(src, "<test>", mod, machine.GC())
	require.NoError(t, err, "compile error for: %s", src)
	ierr := machine.Interpret(fn)
	machine.Flush()
	return out.String(), ierr
}

func TestSeedEcho(t *testing.T) {
	out, err := run(t, `echo 1 + 2 * 3`)
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestSeedRangeConcat(t *testing.T) {
	out, err := run(t, `var s = ""; for i in 0..3 { s += to_string(i) } echo s`)
	require.NoError(t, err)
	require.Equal(t, "012\n", out)
}

func TestSeedInheritance(t *testing.T) {
	out, err := run(t, `class A { f() { return 1 } } class B < A { f() { return parent.f() + 1 } } echo B().f()`)
	require.NoError(t, err)
	require.Equal(t, "2\n", out)
}

func TestSeedTryCatchFinally(t *testing.T) {
	out, err := run(t, `try { die Exception("x") } catch Exception as e { echo e.message } finally { echo "f" }`)
	require.NoError(t, err)
	require.Equal(t, "x\nf\n", out)
}

func TestSeedDictRemoveKeys(t *testing.T) {
	out, err := run(t, `var d = {a: 1, b: 2}; d.remove("a"); echo d.keys()`)
	require.NoError(t, err)
	require.Equal(t, "[b]\n", out)
}

func TestSeedVariadic(t *testing.T) {
	out, err := run(t, `def add(...) { var s = 0 for x in __args__ { s += x } return s } echo add(1,2,3,4)`)
	require.NoError(t, err)
	require.Equal(t, "10\n", out)
}

// TestCatchTypeFiltering exercises spec section 4.4's "a handler matches if
// its class name appears in the exception's class chain": a catch clause
// naming a type the thrown exception isn't an instance of must not catch it,
// letting propagation continue outward.
func TestCatchTypeFiltering(t *testing.T) {
	out, err := run(t, `
class NotFoundError < Exception { }
try {
  try {
    die Exception("boom")
  } catch NotFoundError as e {
    echo "wrong handler"
  }
} catch Exception as e {
  echo "right handler: " + e.message
}
`)
	require.NoError(t, err)
	require.Equal(t, "right handler: boom\n", out)
}

// TestCatchTypeFilteringSubclassMatches checks the other direction: a catch
// clause for a superclass must still catch a thrown subclass instance.
func TestCatchTypeFilteringSubclassMatches(t *testing.T) {
	out, err := run(t, `
class MyError < Exception { }
try {
  die MyError("specific")
} catch Exception as e {
  echo e.message
}
`)
	require.NoError(t, err)
	require.Equal(t, "specific\n", out)
}

func TestUnhandledExceptionPropagates(t *testing.T) {
	_, err := run(t, `die Exception("unhandled")`)
	require.Error(t, err)
	var unhandled *UnhandledException
	require.ErrorAs(t, err, &unhandled)
}

// Boundary behaviors from spec section 8.
func TestBoundaryIndexing(t *testing.T) {
	out, err := run(t, `var s = "hello"; echo s[-5]; echo s[4]`)
	require.NoError(t, err)
	require.Equal(t, "h\no\n", out)
}

func TestBoundaryIndexingOutOfRangeRaises(t *testing.T) {
	_, err := run(t, `var s = "hello"; echo s[5]`)
	require.Error(t, err)
}

func TestBoundaryListMultiplyZero(t *testing.T) {
	out, err := run(t, `echo [1,2,3] * 0`)
	require.NoError(t, err)
	require.Equal(t, "[]\n", out)
}

func TestBoundaryStringMultiply(t *testing.T) {
	out, err := run(t, `echo "ab" * 3`)
	require.NoError(t, err)
	require.Equal(t, "ababab\n", out)
}

func TestBoundaryNilStringConcat(t *testing.T) {
	out, err := run(t, `echo nil + "x"; echo "x" + nil`)
	require.NoError(t, err)
	require.Equal(t, "x\nx\n", out)
}

func TestBoundaryStackOverflow(t *testing.T) {
	_, err := run(t, `def f() { return f() } f()`)
	require.Error(t, err)
}

// Round-trip laws from spec section 8.
func TestRoundTripIntToString(t *testing.T) {
	out, err := run(t, `echo int(to_string(42))`)
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestRoundTripListClone(t *testing.T) {
	out, err := run(t, `
var a = [1, 2, 3]
var b = a.clone()
b.push(4)
echo a
echo b
`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n[1, 2, 3, 4]\n", out)
}

func TestDictKeyOrderPreservedModuloDeletion(t *testing.T) {
	out, err := run(t, `
var d = {}
d.set("z", 1)
d.set("a", 2)
d.set("m", 3)
d.remove("a")
echo d.keys()
`)
	require.NoError(t, err)
	require.Equal(t, "[z, m]\n", out)
}

// Floor divide by zero must raise (spec section 9).
func TestFloorDivideByZeroRaises(t *testing.T) {
	_, err := run(t, `echo 1 // 0`)
	require.Error(t, err)
}

func TestSortTotalOrder(t *testing.T) {
	out, err := run(t, `var l = [3, 1, 2]; sort(l); echo l`)
	require.NoError(t, err)
	require.Equal(t, "[1, 2, 3]\n", out)
}
