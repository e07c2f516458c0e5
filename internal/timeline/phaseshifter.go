package timeline

import (
	"fmt"
	"math"
)

// Phase states the shifter can be set to, in degrees.
const (
	PhaseProper   = 0
	PhaseInverted = 180
)

// PhaseShifter records the time-ordered phase changes of the transmitter
// phase shifter.
type PhaseShifter struct {
	shifts EventList
	phases []float64
}

// NewPhaseShifter returns an empty phase shifter.
func NewPhaseShifter() *PhaseShifter {
	return &PhaseShifter{}
}

// SetPhase records a phase change at time t.
func (p *PhaseShifter) SetPhase(t, phase float64) {
	p.shifts = p.shifts.insertSorted(TimedEvent{Time: t, Value: phase})
	for _, known := range p.phases {
		if known == phase {
			return
		}
	}
	p.phases = append(p.phases, phase)
}

// Pha0 sets the shifter to the proper phase.
func (p *PhaseShifter) Pha0(t float64, line int) error {
	p.SetPhase(t, PhaseProper)
	return nil
}

// Pha180 sets the shifter to the inverted phase.
func (p *PhaseShifter) Pha180(t float64, line int) error {
	p.SetPhase(t, PhaseInverted)
	return nil
}

// Restart clears the recorded history, seeding the fresh history with the
// last phase at time zero. Used at subcycle boundaries after the history has
// been copied out.
func (p *PhaseShifter) Restart() {
	if len(p.shifts) == 0 {
		return
	}
	last := p.shifts[len(p.shifts)-1].Value
	p.shifts = nil
	p.phases = nil
	p.SetPhase(0, last)
}

// Shifts returns the recorded phase changes in time order.
func (p *PhaseShifter) Shifts() EventList {
	out := make(EventList, len(p.shifts))
	copy(out, p.shifts)
	return out
}

// ShiftsWithin returns the phase changes inside iv. If a change precedes the
// interval, the phase in effect at iv.Begin is prepended as a synthetic first
// event.
func (p *PhaseShifter) ShiftsWithin(iv Interval) EventList {
	var out EventList
	first := -1
	for i, ev := range p.shifts {
		if ev.Time < iv.Begin {
			continue
		}
		if ev.Time > iv.End {
			break
		}
		if first < 0 {
			first = i
		}
		out = append(out, ev)
	}
	if first < 0 {
		first = len(p.shifts)
	}
	if first > 0 {
		carried := TimedEvent{Time: iv.Begin, Value: p.shifts[first-1].Value}
		out = append(EventList{carried}, out...)
	}
	return out
}

// EstimateBaudLength estimates the baud length of the phase code transmitted
// within iv as the greatest common divisor of the gaps between consecutive
// phase shifts, rounded to whole nanoseconds.
//
// This is an approximation: a code whose pattern holds the same phase over
// two or more consecutive bauds has a missing shift, and the estimate comes
// out as a multiple of the true baud length without any way to detect it.
func (p *PhaseShifter) EstimateBaudLength(iv Interval) (float64, error) {
	var inside EventList
	for _, ev := range p.shifts {
		if ev.Time >= iv.Begin && ev.Time <= iv.End {
			inside = append(inside, ev)
		}
	}
	if len(inside) < 2 {
		return 0, fmt.Errorf("baud length needs at least two phase shifts within %s, have %d", iv, len(inside))
	}
	var g int64
	for i := 1; i < len(inside); i++ {
		gap := int64(math.Round((inside[i].Time - inside[i-1].Time) * 1e9))
		g = gcd(g, gap)
	}
	return float64(g) / 1e9, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
