package value

// ObjModule is a compilation unit: exactly one Module exists per source
// path, and all closures whose Function points to it share it.
type ObjModule struct {
	Header
	Name       string
	Path       string
	Values     *Table
	Preloader  *ObjNative
	Unloader   *ObjNative
	NativeLib  interface{} // opaque dynamic-library handle, if a native module
	Imported   bool
}

func NewModule(name, path string) *ObjModule {
	return &ObjModule{
		Header: newHeader(TModule),
		Name:   name,
		Path:   path,
		Values: NewTable(),
	}
}

func (m *ObjModule) Trace(push func(Value)) {
	m.Values.Trace(push)
	if m.Preloader != nil {
		push(FromObj(m.Preloader))
	}
	if m.Unloader != nil {
		push(FromObj(m.Unloader))
	}
}
