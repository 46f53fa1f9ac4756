package value

import "os"

// ObjFile wraps an OS file handle. A zero-length Mode marks a standard
// stream (stdin/stdout/stderr); such files must never be closed by the GC
// finalizer (spec section 3).
type ObjFile struct {
	Header
	Path   string
	Mode   string
	Handle *os.File
	IsOpen bool
}

func NewFile(path, mode string, handle *os.File) *ObjFile {
	return &ObjFile{
		Header: newHeader(TFile),
		Path:   path,
		Mode:   mode,
		Handle: handle,
		IsOpen: handle != nil,
	}
}

func (f *ObjFile) Trace(push func(Value)) {}

func (f *ObjFile) IsStandardStream() bool { return f.Mode == "" }

func (f *ObjFile) Close() error {
	if !f.IsOpen || f.IsStandardStream() {
		return nil
	}
	f.IsOpen = false
	return f.Handle.Close()
}
