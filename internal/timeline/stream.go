package timeline

import "fmt"

// StreamError reports an invalid toggle on a named stream. Line is the
// controller-program line that issued the toggle; zero means no line is known.
type StreamError struct {
	Stream string
	Line   int
	Msg    string
}

func (e *StreamError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("stream %s, line %d: %s", e.Stream, e.Line, e.Msg)
	}
	return fmt.Sprintf("stream %s: %s", e.Stream, e.Msg)
}

// Stream tracks the on/off history of one named hardware line as a sequence
// of intervals. The last entry may be open (turned on, not yet off); all
// earlier entries are closed.
type Stream struct {
	name   string
	closed []Interval
	openAt float64
	open   bool
}

// NewStream returns an empty, switched-off stream.
func NewStream(name string) *Stream {
	return &Stream{name: name}
}

// Name returns the hardware line name.
func (s *Stream) Name() string { return s.name }

// IsOn reports whether the stream is currently on.
func (s *Stream) IsOn() bool { return s.open }

// IsOff reports whether the stream is currently off.
func (s *Stream) IsOff() bool { return !s.open }

// Len returns the number of entries, the open one included.
func (s *Stream) Len() int {
	if s.open {
		return len(s.closed) + 1
	}
	return len(s.closed)
}

// TurnOn opens a new entry at time t. Turning on a stream that is already on
// is a structural error.
func (s *Stream) TurnOn(t float64, line int) error {
	if s.open {
		return &StreamError{Stream: s.name, Line: line, Msg: "is already on"}
	}
	s.openAt = t
	s.open = true
	return nil
}

// TurnOff closes the open entry at time t. Turning off a stream that is
// already off, or before it was turned on, is a structural error.
func (s *Stream) TurnOff(t float64, line int) error {
	if !s.open {
		return &StreamError{Stream: s.name, Line: line, Msg: "is already off"}
	}
	iv, err := NewInterval(s.openAt, t)
	if err != nil {
		return &StreamError{Stream: s.name, Line: line,
			Msg: fmt.Sprintf("turned off at %g before it was turned on at %g", t, s.openAt)}
	}
	s.closed = append(s.closed, iv)
	s.open = false
	return nil
}

// Intervals returns the closed on-intervals. The stream must be off.
func (s *Stream) Intervals() ([]Interval, error) {
	if s.open {
		return nil, &StreamError{Stream: s.name, Msg: "is on, open intervals cannot be listed"}
	}
	out := make([]Interval, len(s.closed))
	copy(out, s.closed)
	return out, nil
}

// LastTurnOn returns the time of the most recent turn-on.
func (s *Stream) LastTurnOn() (float64, error) {
	switch {
	case s.open:
		return s.openAt, nil
	case len(s.closed) > 0:
		return s.closed[len(s.closed)-1].Begin, nil
	default:
		return 0, &StreamError{Stream: s.name, Msg: "has not been turned on yet"}
	}
}

// LastTurnOff returns the time of the most recent turn-off.
func (s *Stream) LastTurnOff() (float64, error) {
	if len(s.closed) > 0 {
		return s.closed[len(s.closed)-1].End, nil
	}
	if s.open {
		return 0, &StreamError{Stream: s.name, Msg: "is on, but has not been turned off yet"}
	}
	return 0, &StreamError{Stream: s.name, Msg: "has not been turned on yet"}
}
