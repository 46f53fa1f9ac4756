package datemod

import (
	"strings"
	"testing"
	"time"

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

func TestDateStrftimeFormatsKnownInstant(t *testing.T) {
	c := newFakeCaller()
	// 2021-01-02T03:04:05Z
	ts := time.Date(2021, 1, 2, 3, 4, 5, 0, time.UTC).Unix()
	out, ok := dateStrftime(c, []value.Value{value.Number(float64(ts)), c.g.InternStringValue("%Y-%m-%d")})
	require.True(t, ok)
	require.Equal(t, "2021-01-02", value.ToString(out))
}

func TestDateStrftimeRejectsWrongArgCount(t *testing.T) {
	c := newFakeCaller()
	_, ok := dateStrftime(c, []value.Value{value.Number(0)})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestDateStrftimeRejectsNonNumericFirstArg(t *testing.T) {
	c := newFakeCaller()
	_, ok := dateStrftime(c, []value.Value{c.g.InternStringValue("nope"), c.g.InternStringValue("%Y")})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestDateAgoHumanizesPast(t *testing.T) {
	c := newFakeCaller()
	past := time.Now().Add(-2 * time.Hour).Unix()
	out, ok := dateAgo(c, []value.Value{value.Number(float64(past))})
	require.True(t, ok)
	require.True(t, strings.Contains(value.ToString(out), "ago"))
}

func TestDateNowReturnsCurrentUnixSeconds(t *testing.T) {
	before := time.Now().Unix()
	out, ok := dateNow(nil, nil)
	after := time.Now().Unix()
	require.True(t, ok)
	require.GreaterOrEqual(t, out.AsNumber(), float64(before))
	require.LessOrEqual(t, out.AsNumber(), float64(after))
}
