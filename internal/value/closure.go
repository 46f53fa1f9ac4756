package value

// ObjUpvalue is either open (pointing at a live stack slot, via Location)
// or closed (owning Closed once the slot is released). Open upvalues are
// threaded by the VM in a list sorted by descending stack address.
type ObjUpvalue struct {
	Header
	// Location is the absolute stack index while open; ignored once Closed.
	Location int
	Closed   Value
	IsClosed bool
	NextOpen *ObjUpvalue // intrusive link in the VM's open-upvalue list
}

func NewUpvalue(location int) *ObjUpvalue {
	return &ObjUpvalue{Header: newHeader(TUpvalue), Location: location}
}

func (u *ObjUpvalue) Trace(push func(Value)) {
	if u.IsClosed {
		push(u.Closed)
	}
}

// ObjClosure pairs an ObjFunction with the upvalue references it captured.
type ObjClosure struct {
	Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		Header:   newHeader(TClosure),
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) Trace(push func(Value)) {
	push(FromObj(c.Function))
	for _, u := range c.Upvalues {
		if u != nil {
			push(FromObj(u))
		}
	}
}
