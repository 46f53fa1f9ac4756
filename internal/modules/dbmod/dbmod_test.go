package dbmod

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

func TestDriverNameMapsFriendlyAliases(t *testing.T) {
	cases := map[string]string{
		"mysql":      "mysql",
		"postgres":   "postgres",
		"postgresql": "postgres",
		"mssql":      "sqlserver",
		"sqlserver":  "sqlserver",
		"sqlite":     "sqlite",
		"sqlite3":    "sqlite",
	}
	for alias, want := range cases {
		got, ok := driverName(alias)
		require.True(t, ok, "alias %q should resolve", alias)
		require.Equal(t, want, got)
	}
}

func TestDriverNameRejectsUnknown(t *testing.T) {
	_, ok := driverName("oracle")
	require.False(t, ok)
}

func TestToGoConvertsScriptValuesToDriverArgs(t *testing.T) {
	c := newFakeCaller()
	require.Nil(t, toGo(value.Nil))
	require.Equal(t, true, toGo(value.Bool(true)))
	require.Equal(t, 3.0, toGo(value.Number(3)))
	require.Equal(t, "hi", toGo(c.g.InternStringValue("hi")))
}

func TestFromGoConvertsDriverResultsToScriptValues(t *testing.T) {
	c := newFakeCaller()
	require.True(t, fromGo(c, nil).IsNil())
	require.True(t, fromGo(c, true).AsBool())
	require.Equal(t, 42.0, fromGo(c, int64(42)).AsNumber())
	require.Equal(t, 3.5, fromGo(c, 3.5).AsNumber())
	require.Equal(t, "row", value.ToString(fromGo(c, []byte("row"))))
	require.Equal(t, "str", value.ToString(fromGo(c, "str")))
}

func TestDbOpenUnknownDriverThrows(t *testing.T) {
	c := newFakeCaller()
	_, ok := dbOpen(c, []value.Value{c.g.InternStringValue("oracle"), c.g.InternStringValue("dsn")})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestDbOpenWrongArgCountThrows(t *testing.T) {
	c := newFakeCaller()
	_, ok := dbOpen(c, []value.Value{c.g.InternStringValue("sqlite")})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestHandleOfRejectsNonPointer(t *testing.T) {
	c := newFakeCaller()
	_, ok := handleOf(c, value.Number(1))
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}
