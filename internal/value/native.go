package value

// NativeKind distinguishes how a Native callable is dispatched.
type NativeKind uint8

const (
	NativeFunction NativeKind = iota
	NativeStatic
	NativePrivate
	NativeMethod
	NativeInitializer
)

// NativeFn is the calling convention for a native callable (spec section 6,
// "Native module registration"): it receives the VM-owning caller (typed as
// interface{} here to avoid an import cycle between value and vm) and the
// slice of arguments, and returns false to signal that it raised an
// exception via the exception-throw helper.
type NativeFn func(caller interface{}, args []Value) (Value, bool)

type ObjNative struct {
	Header
	Name string
	Kind NativeKind
	Fn   NativeFn
}

func NewNative(name string, kind NativeKind, fn NativeFn) *ObjNative {
	return &ObjNative{Header: newHeader(TNative), Name: name, Kind: kind, Fn: fn}
}

func (n *ObjNative) Trace(push func(Value)) {}
