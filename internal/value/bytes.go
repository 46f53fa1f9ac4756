package value

// ObjBytes is a mutable byte buffer; each element must be in [0, 255].
type ObjBytes struct {
	Header
	Bytes []byte
}

func NewBytes(b []byte) *ObjBytes {
	return &ObjBytes{Header: newHeader(TBytes), Bytes: b}
}

func (b *ObjBytes) Trace(push func(Value)) {}
