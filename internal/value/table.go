package value

// Table is an open-addressed hash table keyed by Value, used for globals,
// dict backing storage, module value tables, and class method/property
// tables. Deleted entries become tombstones (key = Empty) so that probing
// past them during lookup still finds later entries with colliding hashes.
type Table struct {
	entries []tableEntry
	count   int // live entries, not counting tombstones
}

type tableEntry struct {
	key    Value
	value  Value
	active bool // false both for never-used slots and for tombstones
	used   bool // true once a key has ever occupied this slot (tombstone marker)
}

const tableMaxLoad = 0.75

func NewTable() *Table {
	return &Table{}
}

func (t *Table) Count() int { return t.count }

func (t *Table) Get(key Value) (Value, bool) {
	if len(t.entries) == 0 {
		return Nil, false
	}
	e := t.find(key)
	if e == nil || !e.active {
		return Nil, false
	}
	return e.value, true
}

func (t *Table) Set(key Value, val Value) bool {
	if !key.Hashable() {
		return false
	}
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.grow()
	}
	e := t.find(key)
	isNew := !e.active
	e.key = key
	e.value = val
	e.active = true
	e.used = true
	if isNew {
		t.count++
	}
	return isNew
}

// Delete marks the slot a tombstone: key becomes Empty (the reserved
// tombstone payload from spec section 3), active becomes false, used stays
// true so probing continues past it.
func (t *Table) Delete(key Value) bool {
	if len(t.entries) == 0 {
		return false
	}
	e := t.find(key)
	if e == nil || !e.active {
		return false
	}
	e.active = false
	e.key = Empty
	t.count--
	return true
}

func (t *Table) Has(key Value) bool {
	_, ok := t.Get(key)
	return ok
}

// Keys returns live keys in bucket order (not insertion order; callers that
// need insertion order, e.g. ObjDict, keep their own ordered slice).
func (t *Table) Keys() []Value {
	keys := make([]Value, 0, t.count)
	for _, e := range t.entries {
		if e.active {
			keys = append(keys, e.key)
		}
	}
	return keys
}

func (t *Table) find(key Value) *tableEntry {
	if len(t.entries) == 0 {
		return nil
	}
	mask := uint64(len(t.entries) - 1)
	idx := key.Hash() & mask
	var tombstone *tableEntry
	for {
		e := &t.entries[idx]
		if !e.used {
			if tombstone != nil {
				return tombstone
			}
			return e
		}
		if !e.active {
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key.Equals(key) {
			return e
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table) grow() {
	newCap := 8
	if len(t.entries) > 0 {
		newCap = len(t.entries) * 2
	}
	old := t.entries
	t.entries = make([]tableEntry, newCap)
	t.count = 0
	for _, e := range old {
		if e.active {
			t.Set(e.key, e.value)
		}
	}
}

// Each calls fn for every live key/value pair. Order is bucket order.
func (t *Table) Each(fn func(k, v Value)) {
	for _, e := range t.entries {
		if e.active {
			fn(e.key, e.value)
		}
	}
}

// Trace pushes every live key and value, for GC tracing of tables embedded
// in globals/module-values/class-properties.
func (t *Table) Trace(push func(Value)) {
	for _, e := range t.entries {
		if e.active {
			push(e.key)
			push(e.value)
		}
	}
}
