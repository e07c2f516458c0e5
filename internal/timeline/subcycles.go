package timeline

import "sort"

// Subcycles collects the subcycle windows of one controller cycle together
// with, per closed subcycle, a snapshot of every stream's closed intervals.
// The snapshot is what gives each subcycle an independent timeline after the
// stream set is discarded at the boundary.
type Subcycles struct {
	list      *Stream
	snapshots []map[string][]Interval
}

// NewSubcycles returns an empty collector.
func NewSubcycles() *Subcycles {
	return &Subcycles{list: NewStream("SUBCYCLE")}
}

// IsOn reports whether a subcycle is currently open.
func (s *Subcycles) IsOn() bool { return s.list.IsOn() }

// IsOff reports whether no subcycle is currently open.
func (s *Subcycles) IsOff() bool { return s.list.IsOff() }

// TurnOn opens a new subcycle at time t.
func (s *Subcycles) TurnOn(t float64, line int) error {
	return s.list.TurnOn(t, line)
}

// TurnOff closes the current subcycle at time t and snapshots the closed
// intervals of every stream. Every stream must be off by then; a stream left
// open is a structural error naming the stream and the closing line.
func (s *Subcycles) TurnOff(t float64, line int, streams map[string]*Stream) error {
	if s.list.IsOff() {
		return &StreamError{Stream: s.list.Name(), Line: line, Msg: "is already off"}
	}

	names := make([]string, 0, len(streams))
	for name := range streams {
		names = append(names, name)
	}
	sort.Strings(names)

	snapshot := make(map[string][]Interval, len(streams))
	for _, name := range names {
		ivs, err := streams[name].Intervals()
		if err != nil {
			return &StreamError{Stream: name, Line: line,
				Msg: "is still on when its subcycle ends"}
		}
		snapshot[name] = ivs
	}

	if err := s.list.TurnOff(t, line); err != nil {
		return err
	}
	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// Len returns the number of closed subcycles.
func (s *Subcycles) Len() int { return len(s.snapshots) }

// Intervals returns the closed subcycle windows.
func (s *Subcycles) Intervals() ([]Interval, error) {
	return s.list.Intervals()
}

// Snapshot returns the stream snapshot of closed subcycle idx.
func (s *Subcycles) Snapshot(idx int) map[string][]Interval {
	return s.snapshots[idx]
}
