// Package netmod implements the native `_socket` module: WebSocket
// dial/send/recv/close built on gorilla/websocket (no registered function
// listens for connections), the transport collaborator spec
// section 1 scopes out of the core and section 6 describes only by
// registration-record shape.
package netmod

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func init() {
	module.Register(module.Registration{
		Name: "_socket",
		Functions: []module.FuncDesc{
			{Name: "dial", Fn: socketDial},
			{Name: "send", Fn: socketSend},
			{Name: "recv", Fn: socketRecv},
			{Name: "close", Fn: socketClose},
		},
	})
}

func asCaller(c interface{}) vm.Caller { return c.(vm.Caller) }

func socketDial(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "socket.dial(url) expects 1 argument")
	}
	conn, _, err := websocket.DefaultDialer.Dial(value.ToString(args[0]), nil)
	if err != nil {
		return value.Nil, c.Throw("Exception", "socket.dial: "+err.Error())
	}
	ptr := value.NewPointer(conn, "socket", func(p interface{}) { p.(*websocket.Conn).Close() })
	c.GC().Track(ptr)
	return value.FromObj(ptr), true
}

func connOf(c vm.Caller, v value.Value) (*websocket.Conn, bool) {
	if !v.IsObjType(value.TPointer) {
		c.Throw("Exception", "expected a socket handle")
		return nil, false
	}
	conn, ok := v.AsObj().(*value.ObjPointer).Pointer.(*websocket.Conn)
	if !ok {
		c.Throw("Exception", "expected a socket handle")
		return nil, false
	}
	return conn, true
}

func socketSend(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "socket.send(handle, message) expects 2 arguments")
	}
	conn, ok := connOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(value.ToString(args[1]))); err != nil {
		return value.Nil, c.Throw("Exception", "socket.send: "+err.Error())
	}
	return value.Nil, true
}

func socketRecv(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "socket.recv(handle) expects 1 argument")
	}
	conn, ok := connOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return value.Nil, c.Throw("Exception", "socket.recv: "+err.Error())
	}
	return c.GC().InternStringValue(string(data)), true
}

func socketClose(caller interface{}, args []value.Value) (value.Value, bool) {
	c := asCaller(caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "socket.close(handle) expects 1 argument")
	}
	conn, ok := connOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if err := conn.Close(); err != nil {
		return value.Nil, c.Throw("Exception", "socket.close: "+err.Error())
	}
	return value.Nil, true
}
