package value

// ObjClass describes a class: its methods and instance-property defaults are
// resolved by name, optionally chaining to a single superclass.
type ObjClass struct {
	Header
	Name            string
	Initializer     Value // Empty if the class has no explicit initializer
	Methods         *Table
	PropertyDefaults *Table
	StaticProperties *Table
	Super           *ObjClass
}

func NewClass(name string) *ObjClass {
	return &ObjClass{
		Header:           newHeader(TClass),
		Name:             name,
		Initializer:      Empty,
		Methods:          NewTable(),
		PropertyDefaults: NewTable(),
		StaticProperties: NewTable(),
	}
}

func (c *ObjClass) Trace(push func(Value)) {
	push(c.Initializer)
	c.Methods.Trace(push)
	c.PropertyDefaults.Trace(push)
	c.StaticProperties.Trace(push)
	if c.Super != nil {
		push(FromObj(c.Super))
	}
}

// ResolveMethod walks the superclass chain looking for a method by name.
func (c *ObjClass) ResolveMethod(name Value) (Value, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if v, ok := cls.Methods.Get(name); ok {
			return v, true
		}
	}
	return Nil, false
}

// ObjInstance carries its own property table, seeded from the class
// defaults at construction time; later mutation never affects the class.
type ObjInstance struct {
	Header
	Class      *ObjClass
	Properties *Table
}

func NewInstance(class *ObjClass) *ObjInstance {
	inst := &ObjInstance{
		Header:     newHeader(TInstance),
		Class:      class,
		Properties: NewTable(),
	}
	class.PropertyDefaults.Each(func(k, v Value) {
		inst.Properties.Set(k, v)
	})
	return inst
}

func (i *ObjInstance) Trace(push func(Value)) {
	push(FromObj(i.Class))
	i.Properties.Trace(push)
}

// ObjBoundMethod binds a receiver to a Closure; the receiver replaces slot 0
// on dispatch. Freeing a BoundMethod must not free the Closure (the GC
// traces both independently from whatever else references the closure).
type ObjBoundMethod struct {
	Header
	Receiver Value
	Closure  *ObjClosure
}

func NewBoundMethod(receiver Value, closure *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{Header: newHeader(TBoundMethod), Receiver: receiver, Closure: closure}
}

func (b *ObjBoundMethod) Trace(push func(Value)) {
	push(b.Receiver)
	push(FromObj(b.Closure))
}
