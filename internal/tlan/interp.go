package tlan

import (
	"log/slog"

	"github.com/kstlab/radex/internal/nco"
	"github.com/kstlab/radex/internal/timeline"
)

// Config carries the receiver configuration a controller program is replayed
// against. All frequencies are Hz, one entry per receive path.
type Config struct {
	// LO1 holds the first local-oscillator frequencies. The UHF radar has a
	// single first oscillator feeding both paths, so a single entry is valid.
	LO1 []float64
	// LO2 holds the second local-oscillator frequencies.
	LO2 []float64
	// Channels maps channel numbers (1-based) to their oscillator chains.
	// Channels not present run with the default single-entry table.
	Channels map[int]*nco.Oscillator
	// Logger receives recoverable warnings. Defaults to slog.Default.
	Logger *slog.Logger
}

// Interpreter is the controller-program state machine. It dispatches
// mnemonics onto interval streams, the phase shifter and the per-channel
// frequency series, tracks the time-control register, and validates
// cycle/subcycle structure.
type Interpreter struct {
	cycle     *timeline.Stream
	subcycles *timeline.Subcycles
	streams   map[string]*timeline.Stream
	phase     *timeline.PhaseShifter
	freqRec   map[int]*timeline.FrequencySeries
	chfreqs   map[int]*nco.Oscillator

	lo1, lo2 []float64
	tcr      float64
	endTime  float64

	firStarted bool
	firAt      float64

	log *slog.Logger
}

// New returns an interpreter for the given receiver configuration.
func New(cfg Config) *Interpreter {
	if len(cfg.LO1) == 0 {
		cfg.LO1 = []float64{812e6, 812e6}
	}
	if len(cfg.LO2) == 0 {
		cfg.LO2 = []float64{128e6, 122e6}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	chfreqs := make(map[int]*nco.Oscillator, channelCount)
	for ch := 1; ch <= channelCount; ch++ {
		if osc, ok := cfg.Channels[ch]; ok && osc != nil {
			chfreqs[ch] = osc
			continue
		}
		chfreqs[ch] = nco.Default(pathFreq(cfg.LO1, 1)/1e6, pathFreq(cfg.LO2, 1)/1e6)
	}

	freqRec := make(map[int]*timeline.FrequencySeries, channelCount)
	for ch := 1; ch <= channelCount; ch++ {
		freqRec[ch] = timeline.NewFrequencySeries()
	}

	in := &Interpreter{
		cycle:     timeline.NewStream("CYCLE"),
		subcycles: timeline.NewSubcycles(),
		phase:     timeline.NewPhaseShifter(),
		freqRec:   freqRec,
		chfreqs:   chfreqs,
		lo1:       cfg.LO1,
		lo2:       cfg.LO2,
		log:       cfg.Logger,
	}
	in.initStreams()
	return in
}

// pathFreq picks the oscillator frequency of a receive path, falling back to
// the last configured one when the oscillator has fewer outputs than paths
// (at UHF the split comes after the single first oscillator).
func pathFreq(freqs []float64, path int) float64 {
	if path >= len(freqs) {
		return freqs[len(freqs)-1]
	}
	return freqs[path]
}

// initStreams discards the stream set and creates a fresh one. Called at
// every subcycle boundary so that unrelated subcycles cannot leak state.
func (in *Interpreter) initStreams() {
	in.streams = make(map[string]*timeline.Stream)
	for _, name := range []string{streamRF, streamRXProt, streamLOProt, streamCal, streamBeam,
		streamPhasePlus, streamPhaseMinus} {
		in.streams[name] = timeline.NewStream(name)
	}
	for _, name := range channelNames() {
		in.streams[name] = timeline.NewStream(name)
	}
}

// Run replays a parsed controller program.
//
// The first command opens the cycle and the first subcycle at time zero.
// SETTCR with a positive time closes the current subcycle, validating that
// every stream is off, and opens the next one; SETTCR 0 continues the current
// subcycle and is accepted only as the very first command or immediately
// before REP. REP closes the last subcycle and the cycle, and must be the
// final command.
func (in *Interpreter) Run(cmds []Command) error {
	for idx, cmd := range cmds {
		if in.cycle.IsOff() {
			if err := in.cycle.TurnOn(0, cmd.Line); err != nil {
				return err
			}
			if err := in.subcycles.TurnOn(0, cmd.Line); err != nil {
				return err
			}
		}

		switch cmd.Mnemonic {
		case "SETTCR":
			if cmd.T > 0 {
				if err := in.closeSubcycle(cmd.T, cmd.Line); err != nil {
					return err
				}
				if err := in.subcycles.TurnOn(cmd.T, cmd.Line); err != nil {
					return err
				}
			} else {
				followedByREP := idx+1 < len(cmds) && cmds[idx+1].Mnemonic == "REP"
				if idx != 0 && !followedByREP {
					return errAt(cmd.Line, "SETTCR 0 may only open the program or immediately precede REP")
				}
			}
			in.tcr = cmd.T

		case "REP":
			if err := in.closeSubcycle(cmd.T, cmd.Line); err != nil {
				return err
			}
			if err := in.cycle.TurnOff(cmd.T, cmd.Line); err != nil {
				return err
			}
			in.endTime = cmd.T

		default:
			if err := in.exec(cmd); err != nil {
				return err
			}
		}
	}

	if in.cycle.IsOn() {
		line := 0
		if len(cmds) > 0 {
			line = cmds[len(cmds)-1].Line
		}
		return errAt(line, "program does not end with REP")
	}
	return nil
}

// RunFile parses and replays the controller program at path.
func (in *Interpreter) RunFile(path string) error {
	cmds, err := ParseFile(path)
	if err != nil {
		return err
	}
	return in.Run(cmds)
}

// closeSubcycle snapshots and closes the running subcycle and discards the
// stream set. The phase pseudo-streams may legitimately be held across the
// boundary, so an open one is closed at the boundary time instead of failing
// validation.
func (in *Interpreter) closeSubcycle(t float64, line int) error {
	for _, name := range []string{streamPhasePlus, streamPhaseMinus} {
		if in.streams[name].IsOn() {
			if err := in.streams[name].TurnOff(t, line); err != nil {
				return err
			}
		}
	}
	if err := in.subcycles.TurnOff(t, line, in.streams); err != nil {
		return err
	}
	in.initStreams()
	return nil
}

// exec dispatches one ordinary mnemonic at its resolved time. Unknown
// mnemonics are warned about and skipped.
func (in *Interpreter) exec(cmd Command) error {
	if in.cycle.IsOff() {
		return errAt(cmd.Line, "the cycle has not been started")
	}
	if in.subcycles.IsOff() {
		return errAt(cmd.Line, "no subcycle has been started yet")
	}

	act, ok := actions()[cmd.Mnemonic]
	if !ok {
		in.log.Warn("mnemonic is not modeled, skipping",
			"mnemonic", cmd.Mnemonic, "line", cmd.Line)
		return nil
	}

	t := in.tcr + cmd.T
	switch act.op {
	case opNop:
		return nil
	case opTurnOn:
		return in.streams[act.stream].TurnOn(t, cmd.Line)
	case opTurnOff:
		return in.streams[act.stream].TurnOff(t, cmd.Line)
	case opPhase0:
		in.phase.SetPhase(t, timeline.PhaseProper)
		return in.togglePhaseStreams(streamPhasePlus, streamPhaseMinus, t, cmd.Line)
	case opPhase180:
		in.phase.SetPhase(t, timeline.PhaseInverted)
		return in.togglePhaseStreams(streamPhaseMinus, streamPhasePlus, t, cmd.Line)
	case opAllOff:
		for _, name := range channelNames() {
			if in.streams[name].IsOn() {
				if err := in.streams[name].TurnOff(t, cmd.Line); err != nil {
					return err
				}
			}
		}
		return nil
	case opStartFIR:
		if !in.firStarted {
			in.firStarted = true
			in.firAt = t
		}
		return nil
	case opRouteAD:
		return in.routeAD(act, t, cmd.Line)
	case opNCOSel:
		return in.selectNCO(act.ncoLine, t, cmd.Line)
	}
	return nil
}

// togglePhaseStreams materialises a phase change as intervals on the +/-
// pseudo-streams. Repeating the current phase is a no-op.
func (in *Interpreter) togglePhaseStreams(on, off string, t float64, line int) error {
	if in.streams[off].IsOn() {
		if err := in.streams[off].TurnOff(t, line); err != nil {
			return err
		}
	}
	if in.streams[on].IsOff() {
		return in.streams[on].TurnOn(t, line)
	}
	return nil
}

// routeAD routes one receive path into a set of channel boards and records
// the resulting center frequency for every routed channel that is ready.
func (in *Interpreter) routeAD(act action, t float64, line int) error {
	for _, ch := range act.channels {
		osc, ok := in.chfreqs[ch]
		if !ok {
			continue
		}
		osc.SetLO1(pathFreq(in.lo1, act.path) / 1e6)
		osc.SetLO2(pathFreq(in.lo2, act.path) / 1e6)
		if !osc.Ready() {
			continue
		}
		f, err := osc.Frequency()
		if err != nil {
			return errAt(line, "channel %d: %v", ch, err)
		}
		in.freqRec[ch].Set(t, f*1e6)
	}
	return nil
}

// selectNCO loads NCO memory line n on every channel and records the new
// center frequencies. Selecting a line outside a channel's loaded table is a
// structural error.
func (in *Interpreter) selectNCO(n int, t float64, line int) error {
	for ch := 1; ch <= channelCount; ch++ {
		osc := in.chfreqs[ch]
		if err := osc.Select(n); err != nil {
			return errAt(line, "NCOSEL%d, channel %d: %v", n, ch, err)
		}
		f, err := osc.Frequency()
		if err != nil {
			return errAt(line, "NCOSEL%d, channel %d: %v", n, ch, err)
		}
		in.freqRec[ch].Set(t, f*1e6)
	}
	return nil
}

// Subcycles returns the collected subcycle windows and snapshots.
func (in *Interpreter) Subcycles() *timeline.Subcycles { return in.subcycles }

// Cycle returns the cycle stream.
func (in *Interpreter) Cycle() *timeline.Stream { return in.cycle }

// Phase returns the phase shifter history of the whole cycle.
func (in *Interpreter) Phase() *timeline.PhaseShifter { return in.phase }

// Frequencies returns the per-channel center-frequency series.
func (in *Interpreter) Frequencies() map[int]*timeline.FrequencySeries { return in.freqRec }

// EndTime returns the length of the replayed program in seconds.
func (in *Interpreter) EndTime() float64 { return in.endTime }

// FIRStart returns the time the receiver FIR filters were first started.
func (in *Interpreter) FIRStart() (float64, bool) { return in.firAt, in.firStarted }
