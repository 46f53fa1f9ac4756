package stdlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/gc"
	"vellum/internal/value"
)

// fakeCaller is a minimal vm.Caller for exercising native module functions
// without needing a full VM/compiler pipeline.
type fakeCaller struct {
	g         *gc.GC
	thrown    string
	thrownMsg string
}

func newFakeCaller() *fakeCaller { return &fakeCaller{g: gc.New(1 << 20)} }

func (c *fakeCaller) GC() *gc.GC                        { return c.g }
func (c *fakeCaller) Protect(v value.Value) value.Value { return c.g.Protect(v) }
func (c *fakeCaller) ProtectMark() int                  { return c.g.ProtectionMark() }
func (c *fakeCaller) ClearProtection(mark int)          { c.g.ClearProtection(mark) }
func (c *fakeCaller) Push(v value.Value)                {}
func (c *fakeCaller) Pop() value.Value                  { return value.Nil }
func (c *fakeCaller) Throw(class, message string) bool {
	c.thrown = class
	c.thrownMsg = message
	return false
}

func TestStructPackUnpackU32RoundTrips(t *testing.T) {
	c := newFakeCaller()
	packed, ok := structPackU32(c, []value.Value{value.Number(305419896)}) // 0x12345678
	require.True(t, ok)
	require.True(t, packed.IsObjType(value.TBytes))

	unpacked, ok := structUnpackU32(c, []value.Value{packed})
	require.True(t, ok)
	require.Equal(t, 305419896.0, unpacked.AsNumber())
}

func TestStructPackUnpackU64RoundTrips(t *testing.T) {
	c := newFakeCaller()
	packed, ok := structPackU64(c, []value.Value{value.Number(1234567890123)})
	require.True(t, ok)

	unpacked, ok := structUnpackU64(c, []value.Value{packed})
	require.True(t, ok)
	require.Equal(t, 1234567890123.0, unpacked.AsNumber())
}

func TestStructUnpackU32RejectsWrongLength(t *testing.T) {
	c := newFakeCaller()
	_, ok := structUnpackU32(c, []value.Value{value.FromObj(c.g.NewBytes([]byte{1, 2, 3}))})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestStructPackU32RejectsNonNumericArgument(t *testing.T) {
	c := newFakeCaller()
	_, ok := structPackU32(c, []value.Value{c.g.InternStringValue("nope")})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}
