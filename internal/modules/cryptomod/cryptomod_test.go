package cryptomod

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vellum/internal/gc"
	"vellum/internal/value"
)

type fakeCaller struct {
	g      *gc.GC
	thrown string
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
	return false
}

func TestHashSHA256KnownVector(t *testing.T) {
	c := newFakeCaller()
	out, ok := hashSHA256(c, []value.Value{c.g.InternStringValue("abc")})
	require.True(t, ok)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", value.ToString(out))
}

func TestHashSHA256IsDeterministic(t *testing.T) {
	c := newFakeCaller()
	a, _ := hashSHA256(c, []value.Value{c.g.InternStringValue("hello")})
	b, _ := hashSHA256(c, []value.Value{c.g.InternStringValue("hello")})
	require.Equal(t, value.ToString(a), value.ToString(b))
}

func TestHashBcryptRoundTrips(t *testing.T) {
	c := newFakeCaller()
	hashed, ok := hashBcrypt(c, []value.Value{c.g.InternStringValue("correct horse")})
	require.True(t, ok)

	verified, ok := hashBcryptVerify(c, []value.Value{hashed, c.g.InternStringValue("correct horse")})
	require.True(t, ok)
	require.True(t, verified.AsBool())

	wrong, ok := hashBcryptVerify(c, []value.Value{hashed, c.g.InternStringValue("wrong")})
	require.True(t, ok)
	require.False(t, wrong.AsBool())
}

func TestHashSHA256WrongArgCountThrows(t *testing.T) {
	c := newFakeCaller()
	_, ok := hashSHA256(c, nil)
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}
