package timeline

import "fmt"

// Interval is one closed [Begin, End] time window in seconds.
// End never precedes Begin.
type Interval struct {
	Begin float64
	End   float64
}

// NewInterval builds a closed interval. It fails if end precedes begin.
func NewInterval(begin, end float64) (Interval, error) {
	if end < begin {
		return Interval{}, fmt.Errorf("interval end %g precedes begin %g", end, begin)
	}
	return Interval{Begin: begin, End: end}, nil
}

// Length returns the duration of the interval.
func (iv Interval) Length() float64 {
	return iv.End - iv.Begin
}

// Scale multiplies both endpoints by num. Scaling by a negative number swaps
// the endpoints, which would produce an invalid interval, so it is rejected.
func (iv Interval) Scale(num float64) (Interval, error) {
	return NewInterval(iv.Begin*num, iv.End*num)
}

// OverlapsWith reports whether the two intervals overlap. Intervals that only
// share a boundary do not overlap.
func (iv Interval) OverlapsWith(other Interval) bool {
	return iv.End > other.Begin && other.End > iv.Begin
}

// OverlapsAny reports whether the interval overlaps any interval in the list.
func (iv Interval) OverlapsAny(others []Interval) bool {
	for _, other := range others {
		if iv.OverlapsWith(other) {
			return true
		}
	}
	return false
}

// OverlapError is returned when a transmit interval overlaps a receive
// interval, which the hardware must never do.
type OverlapError struct {
	A, B Interval
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("the radar transmits while receiving: [%g, %g] overlaps [%g, %g]",
		e.A.Begin, e.A.End, e.B.Begin, e.B.End)
}

// CheckOverlap returns an OverlapError if the intervals overlap.
func (iv Interval) CheckOverlap(other Interval) error {
	if iv.OverlapsWith(other) {
		return &OverlapError{A: iv, B: other}
	}
	return nil
}

// Within reports whether this interval lies inside other. Shared boundaries
// are allowed.
func (iv Interval) Within(other Interval) bool {
	return other.Begin <= iv.Begin && iv.End <= other.End
}

// WithinAny reports whether this interval lies completely inside any interval
// in the list.
func (iv Interval) WithinAny(others []Interval) bool {
	for _, other := range others {
		if iv.Within(other) {
			return true
		}
	}
	return false
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%g, %g]", iv.Begin, iv.End)
}
