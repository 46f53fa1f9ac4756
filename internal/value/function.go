package value

// ObjFunction is immutable once compilation of its body ends.
type ObjFunction struct {
	Header
	Name         string
	Arity        int
	UpvalueCount int
	Variadic     bool
	Module       *ObjModule
	Chunk        *Chunk
}

func NewFunction(name string, module *ObjModule) *ObjFunction {
	return &ObjFunction{
		Header: newHeader(TFunction),
		Name:   name,
		Module: module,
		Chunk:  NewChunk(),
	}
}

func (f *ObjFunction) Trace(push func(Value)) {
	if f.Module != nil {
		push(FromObj(f.Module))
	}
	for _, c := range f.Chunk.Constants {
		push(c)
	}
}
