package value

import "math"

// ObjRange is created by `a..b`; its iteration direction is implied by the
// sign of (Upper - Lower).
type ObjRange struct {
	Header
	Lower, Upper float64
	Span         float64
}

func NewRange(lower, upper float64) *ObjRange {
	return &ObjRange{
		Header: newHeader(TRange),
		Lower:  lower,
		Upper:  upper,
		Span:   math.Abs(upper - lower),
	}
}

func (r *ObjRange) Trace(push func(Value)) {}

func (r *ObjRange) Ascending() bool { return r.Upper >= r.Lower }
