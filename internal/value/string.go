package value

import "unicode/utf8"

// ObjString is interned: the GC holds at most one ObjString with a given
// (bytes, hash) pair (spec section 3, "Lifetimes & ownership").
type ObjString struct {
	Header
	Chars     string
	Hash      uint32
	RuneCount int
	IsASCII   bool
}

// NewRawString builds an ObjString without touching the intern table; only
// the GC's InternString should call this, since it is responsible for the
// interning invariant.
func NewRawString(s string) *ObjString {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	runes := len(s)
	if !ascii {
		runes = utf8.RuneCountInString(s)
	}
	return &ObjString{
		Header:    newHeader(TString),
		Chars:     s,
		Hash:      HashBytes(s),
		RuneCount: runes,
		IsASCII:   ascii,
	}
}

func (s *ObjString) Trace(push func(Value)) {}

// HashBytes is the FNV-1a variant used for both string interning keys and
// the precomputed String.Hash field.
func HashBytes(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
