package timeline

import "fmt"

// FrequencySeries is a sorted time→frequency mapping tracking which center
// frequency a receiver channel sees over the cycle. Setting the same time
// twice replaces the earlier value.
type FrequencySeries struct {
	events EventList
}

// NewFrequencySeries returns an empty series.
func NewFrequencySeries() *FrequencySeries {
	return &FrequencySeries{}
}

// Set records frequency freq from time t on.
func (f *FrequencySeries) Set(t, freq float64) {
	for i, ev := range f.events {
		if ev.Time == t {
			f.events[i].Value = freq
			return
		}
	}
	f.events = f.events.insertSorted(TimedEvent{Time: t, Value: freq})
}

// Len returns the number of recorded changes.
func (f *FrequencySeries) Len() int { return len(f.events) }

// Events returns the recorded changes in time order.
func (f *FrequencySeries) Events() EventList {
	out := make(EventList, len(f.events))
	copy(out, f.events)
	return out
}

// Frequencies returns the distinct frequencies in order of first use.
func (f *FrequencySeries) Frequencies() []float64 {
	var out []float64
	for _, ev := range f.events {
		seen := false
		for _, v := range out {
			if v == ev.Value {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, ev.Value)
		}
	}
	return out
}

// ShiftsWithin returns the frequency changes inside iv. The first entry is
// always the frequency in effect at iv.Begin; after it come the changes
// strictly inside the interval. It fails when iv begins before the first
// recorded frequency.
func (f *FrequencySeries) ShiftsWithin(iv Interval) (EventList, error) {
	i0 := -1
	for i, ev := range f.events {
		if ev.Time <= iv.Begin {
			i0 = i
		} else {
			break
		}
	}
	if i0 < 0 {
		return nil, fmt.Errorf("interval %s begins before the first recorded frequency", iv)
	}
	out := EventList{{Time: iv.Begin, Value: f.events[i0].Value}}
	for _, ev := range f.events[i0+1:] {
		if ev.Time >= iv.End {
			break
		}
		out = append(out, ev)
	}
	return out, nil
}
