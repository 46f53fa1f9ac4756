package stdlib

import (
	"io"
	"os"

	"vellum/internal/module"
	"vellum/internal/value"
	"vellum/internal/vm"
)

func registerIO() {
	reg("_io",
		module.FuncDesc{Name: "open", Fn: ioOpen},
		module.FuncDesc{Name: "read", Fn: ioRead},
		module.FuncDesc{Name: "write", Fn: ioWrite},
		module.FuncDesc{Name: "read_all", Fn: ioReadAll},
	)
}

func ioOpen(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "io.open(path, mode) expects 2 arguments")
	}
	path := value.ToString(args[0])
	mode := value.ToString(args[1])

	var flag int
	switch mode {
	case "r":
		flag = os.O_RDONLY
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return value.Nil, c.Throw("Exception", "io.open: unknown mode '"+mode+"'")
	}

	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return value.Nil, c.Throw("Exception", "io.open: "+err.Error())
	}
	obj := value.NewFile(path, mode, f)
	c.GC().Track(obj)
	return value.FromObj(obj), true
}

func fileOf(c vm.Caller, v value.Value) (*value.ObjFile, bool) {
	if !v.IsObjType(value.TFile) {
		c.Throw("Exception", "expected a file handle")
		return nil, false
	}
	return v.AsObj().(*value.ObjFile), true
}

func ioRead(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 || !args[1].IsNumber() {
		return value.Nil, c.Throw("Exception", "io.read(handle, n) expects a handle and a byte count")
	}
	f, ok := fileOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if !f.IsOpen {
		return value.Nil, c.Throw("Exception", "io.read: file is closed")
	}
	buf := make([]byte, int(args[1].AsNumber()))
	n, err := f.Handle.Read(buf)
	if err != nil && err != io.EOF {
		return value.Nil, c.Throw("Exception", "io.read: "+err.Error())
	}
	return c.GC().InternStringValue(string(buf[:n])), true
}

func ioReadAll(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 1 {
		return value.Nil, c.Throw("Exception", "io.read_all(handle) expects 1 argument")
	}
	f, ok := fileOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if !f.IsOpen {
		return value.Nil, c.Throw("Exception", "io.read_all: file is closed")
	}
	data, err := io.ReadAll(f.Handle)
	if err != nil {
		return value.Nil, c.Throw("Exception", "io.read_all: "+err.Error())
	}
	return c.GC().InternStringValue(string(data)), true
}

func ioWrite(caller interface{}, args []value.Value) (value.Value, bool) {
	c := caller.(vm.Caller)
	if len(args) != 2 {
		return value.Nil, c.Throw("Exception", "io.write(handle, data) expects 2 arguments")
	}
	f, ok := fileOf(c, args[0])
	if !ok {
		return value.Nil, false
	}
	if !f.IsOpen {
		return value.Nil, c.Throw("Exception", "io.write: file is closed")
	}
	n, err := f.Handle.WriteString(value.ToString(args[1]))
	if err != nil {
		return value.Nil, c.Throw("Exception", "io.write: "+err.Error())
	}
	return value.Number(float64(n)), true
}
