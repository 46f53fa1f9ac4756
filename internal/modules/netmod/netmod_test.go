package netmod

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
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

// echoServer upgrades every request to a WebSocket and echoes back whatever
// text message it receives, so socketDial/socketSend/socketRecv can be
// exercised end-to-end against a real local socket.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSocketDialSendRecvRoundTrip(t *testing.T) {
	srv := echoServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/"

	c := newFakeCaller()
	handle, ok := socketDial(c, []value.Value{c.g.InternStringValue(url)})
	require.True(t, ok)

	_, ok = socketSend(c, []value.Value{handle, c.g.InternStringValue("ping")})
	require.True(t, ok)

	reply, ok := socketRecv(c, []value.Value{handle})
	require.True(t, ok)
	require.Equal(t, "ping", value.ToString(reply))

	_, ok = socketClose(c, []value.Value{handle})
	require.True(t, ok)
}

func TestSocketDialBadURLThrows(t *testing.T) {
	c := newFakeCaller()
	_, ok := socketDial(c, []value.Value{c.g.InternStringValue("not-a-url")})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestConnOfRejectsNonSocketHandle(t *testing.T) {
	c := newFakeCaller()
	_, ok := connOf(c, value.Number(1))
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}

func TestSocketSendWrongArgCountThrows(t *testing.T) {
	c := newFakeCaller()
	_, ok := socketSend(c, []value.Value{value.Nil})
	require.False(t, ok)
	require.Equal(t, "Exception", c.thrown)
}
