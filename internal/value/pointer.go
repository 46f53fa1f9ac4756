package value

// ObjPointer wraps an opaque native pointer (e.g. a *sql.DB handle from a
// native module). Its optional finalizer is invoked exactly once by the GC.
type ObjPointer struct {
	Header
	Pointer   interface{}
	Display   string
	Finalizer func(interface{})
	finalized bool
}

func NewPointer(ptr interface{}, display string, finalizer func(interface{})) *ObjPointer {
	return &ObjPointer{Header: newHeader(TPointer), Pointer: ptr, Display: display, Finalizer: finalizer}
}

func (p *ObjPointer) Trace(push func(Value)) {}

func (p *ObjPointer) Finalize() {
	if p.finalized || p.Finalizer == nil {
		return
	}
	p.finalized = true
	p.Finalizer(p.Pointer)
}
