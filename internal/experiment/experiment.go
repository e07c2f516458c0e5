// Package experiment assembles reconstructed controller timings into a
// per-subcycle view of a radar experiment and loads experiments from
// controller or console sources.
package experiment

import (
	"fmt"
	"sort"

	"github.com/kstlab/radex/internal/timeline"
	"github.com/kstlab/radex/internal/tlan"
)

// Subcycle is everything that happens between two subcycle boundaries:
// when the transmitter ran, what each channel received, the remaining
// stream settings, and the phase and frequency programs in effect.
type Subcycle struct {
	Index  int
	Window timeline.Interval

	Transmit []timeline.Interval
	// Receive holds sampling intervals per channel name (CH1..CH6).
	Receive map[string][]timeline.Interval
	// Settings holds every other stream's intervals by stream name.
	Settings map[string][]timeline.Interval

	// PhaseShifts are the phase flips inside the window, the first entry
	// carrying the phase already in effect at the window start.
	PhaseShifts timeline.EventList
	// BaudLength is the estimated modulation baud in seconds, 0 when the
	// window has too few phase shifts to estimate one.
	BaudLength float64

	// Frequencies maps channel number to the frequency program inside
	// the window. Channels that never recorded a frequency are absent.
	Frequencies map[int]timeline.EventList
}

// Experiment is a fully reconstructed experiment cycle.
type Experiment struct {
	Name   string
	Source string
	Cycle  timeline.Interval
	// FIRStart is when filtering first started; FIRStarted says whether
	// the program ever started it.
	FIRStart   float64
	FIRStarted bool
	Subcycles  []Subcycle
}

// ChannelNames lists the channels that received anything, sorted.
func (e *Experiment) ChannelNames() []string {
	seen := map[string]bool{}
	for _, sc := range e.Subcycles {
		for ch, ivs := range sc.Receive {
			if len(ivs) > 0 {
				seen[ch] = true
			}
		}
	}
	names := make([]string, 0, len(seen))
	for ch := range seen {
		names = append(names, ch)
	}
	sort.Strings(names)
	return names
}

// FromInterpreter pulls the reconstructed state out of a finished
// controller run. The interpreter must have executed a complete program,
// through its closing repeat.
func FromInterpreter(in *tlan.Interpreter, name, source string) (*Experiment, error) {
	cycles, err := in.Cycle().Intervals()
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", name, err)
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("assembling %s: the program produced no cycle", name)
	}
	firAt, firStarted := in.FIRStart()
	n := in.Subcycles().Len()
	exp := &Experiment{
		Name:       name,
		Source:     source,
		Cycle:      cycles[0],
		FIRStart:   firAt,
		FIRStarted: firStarted,
	}

	windows, err := in.Subcycles().Intervals()
	if err != nil {
		return nil, fmt.Errorf("assembling %s: %w", name, err)
	}
	for idx := 0; idx < n; idx++ {
		exp.Subcycles = append(exp.Subcycles, assembleSubcycle(in, idx, windows[idx]))
	}
	return exp, nil
}

func assembleSubcycle(in *tlan.Interpreter, idx int, window timeline.Interval) Subcycle {
	sc := Subcycle{
		Index:       idx + 1,
		Window:      window,
		Receive:     map[string][]timeline.Interval{},
		Settings:    map[string][]timeline.Interval{},
		Frequencies: map[int]timeline.EventList{},
	}
	for stream, intervals := range in.Subcycles().Snapshot(idx) {
		if len(intervals) == 0 {
			continue
		}
		switch {
		case stream == "RF":
			sc.Transmit = intervals
		case isChannelStream(stream):
			sc.Receive[stream] = intervals
		default:
			sc.Settings[stream] = intervals
		}
	}

	sc.PhaseShifts = in.Phase().ShiftsWithin(window)
	if len(sc.Transmit) > 0 {
		baud, err := in.Phase().EstimateBaudLength(sc.Transmit[0])
		if err == nil {
			sc.BaudLength = baud
		}
	}

	for ch, series := range in.Frequencies() {
		if series.Len() == 0 {
			continue
		}
		events, err := series.ShiftsWithin(window)
		if err != nil {
			continue
		}
		sc.Frequencies[ch] = events
	}
	return sc
}

func isChannelStream(name string) bool {
	if len(name) != 3 || name[0] != 'C' || name[1] != 'H' {
		return false
	}
	return name[2] >= '1' && name[2] <= '9'
}

// Renderer turns an experiment subcycle into some output form.
type Renderer interface {
	Render(exp *Experiment, subcycle int) error
}
