package value

// ObjDict keeps an insertion-ordered key history alongside a hash table from
// key to value (spec section 3). Deletion compacts the key slice; no
// duplicate keys are ever present.
type ObjDict struct {
	Header
	Keys  []Value
	Table *Table
}

func NewDict() *ObjDict {
	return &ObjDict{Header: newHeader(TDict), Table: NewTable()}
}

func (d *ObjDict) Trace(push func(Value)) {
	d.Table.Trace(push)
}

// Set records insertion order for genuinely new keys only.
func (d *ObjDict) Set(key, val Value) {
	isNew := d.Table.Set(key, val)
	if isNew {
		d.Keys = append(d.Keys, key)
	}
}

func (d *ObjDict) Get(key Value) (Value, bool) {
	return d.Table.Get(key)
}

// Remove deletes the key and compacts the ordered key slice so that
// `d.keys()` afterwards equals insertion order modulo deletions.
func (d *ObjDict) Remove(key Value) bool {
	if !d.Table.Delete(key) {
		return false
	}
	for i, k := range d.Keys {
		if k.Equals(key) {
			d.Keys = append(d.Keys[:i], d.Keys[i+1:]...)
			break
		}
	}
	return true
}

func (d *ObjDict) Len() int { return len(d.Keys) }
