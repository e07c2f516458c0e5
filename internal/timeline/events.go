package timeline

// TimedEvent is one value change at a point in time: a phase flip or a
// frequency selection.
type TimedEvent struct {
	Time  float64
	Value float64
}

// EventList is a time-ordered list of events. Events inserted through
// insertSorted keep arrival order among equal times.
type EventList []TimedEvent

// Times returns the event times in order.
func (l EventList) Times() []float64 {
	out := make([]float64, len(l))
	for i, ev := range l {
		out[i] = ev.Time
	}
	return out
}

// Values returns the event values in order.
func (l EventList) Values() []float64 {
	out := make([]float64, len(l))
	for i, ev := range l {
		out[i] = ev.Value
	}
	return out
}

// insertSorted inserts ev after all events with an earlier or equal time.
func (l EventList) insertSorted(ev TimedEvent) EventList {
	i := len(l)
	for i > 0 && l[i-1].Time > ev.Time {
		i--
	}
	l = append(l, TimedEvent{})
	copy(l[i+1:], l[i:])
	l[i] = ev
	return l
}
