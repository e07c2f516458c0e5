package tlan

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kstlab/radex/internal/nco"
	"github.com/kstlab/radex/internal/timeline"
)

const µs = 1e-6

func quietConfig() Config {
	return Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func runProgram(t *testing.T, text string) *Interpreter {
	t.Helper()
	in := New(quietConfig())
	cmds, err := ParseProgram(text)
	require.NoError(t, err)
	require.NoError(t, in.Run(cmds))
	return in
}

const twoSubcycleProgram = `% beata-like two pulse fragment
SETTCR 0
AT   40 RFON
AT  220 RFOFF
AT 1500 ALLOFF
SETTCR 1505
AT   40 RFON
AT  220 RFOFF
AT 1500 ALLOFF
SETTCR 0
AT 3010 REP
`

func TestInterpreter_TwoSubcycleRoundTrip(t *testing.T) {
	in := runProgram(t, twoSubcycleProgram)

	sc := in.Subcycles()
	require.Equal(t, 2, sc.Len())

	windows, err := sc.Intervals()
	require.NoError(t, err)
	assert.Equal(t, []timeline.Interval{
		{Begin: 0, End: 1505 * µs},
		{Begin: 1505 * µs, End: 3010 * µs},
	}, windows)

	// Transmit intervals match the literal timestamps, offset by the TCR in
	// effect.
	assert.Equal(t, []timeline.Interval{{Begin: 40 * µs, End: 220 * µs}}, sc.Snapshot(0)["RF"])
	assert.Equal(t, []timeline.Interval{{Begin: 1545 * µs, End: 1725 * µs}}, sc.Snapshot(1)["RF"])

	assert.InDelta(t, 3010*µs, in.EndTime(), 1e-12)

	cycleIvs, err := in.Cycle().Intervals()
	require.NoError(t, err)
	assert.Equal(t, []timeline.Interval{{Begin: 0, End: 3010 * µs}}, cycleIvs)
}

func TestInterpreter_FirstCommandOpensCycle(t *testing.T) {
	// No leading SETTCR: the first observed command opens cycle and subcycle.
	in := runProgram(t, "AT 40 RFON\nAT 220 RFOFF\nAT 3010 REP\n")
	require.Equal(t, 1, in.Subcycles().Len())
	assert.Equal(t, []timeline.Interval{{Begin: 40 * µs, End: 220 * µs}},
		in.Subcycles().Snapshot(0)["RF"])
}

func TestInterpreter_ChannelLeftOpenFailsAtBoundary(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 10 CH3\nSETTCR 1505\nAT 3010 REP\n")
	require.NoError(t, err)

	var se *timeline.StreamError
	err = in.Run(cmds)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "CH3", se.Stream)
	assert.Equal(t, 3, se.Line)
}

func TestInterpreter_ChannelLeftOpenFailsAtREP(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 10 CH1\nAT 3010 REP\n")
	require.NoError(t, err)

	var se *timeline.StreamError
	err = in.Run(cmds)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "CH1", se.Stream)
}

func TestInterpreter_DoubleOnIsFatal(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 10 RFON\nAT 20 RFON\nAT 30 REP\n")
	require.NoError(t, err)

	var se *timeline.StreamError
	err = in.Run(cmds)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "RF", se.Stream)
	assert.Equal(t, 3, se.Line)
}

func TestInterpreter_MisplacedSETTCRZero(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 10 RFON\nSETTCR 0\nAT 20 RFOFF\nAT 30 REP\n")
	require.NoError(t, err)

	var terr *Error
	err = in.Run(cmds)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 3, terr.Line)
}

func TestInterpreter_MissingREP(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 10 RFON\nAT 20 RFOFF\n")
	require.NoError(t, err)

	var terr *Error
	err = in.Run(cmds)
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, terr.Msg, "REP")
}

func TestInterpreter_UnknownMnemonicWarnsAndContinues(t *testing.T) {
	var buf bytes.Buffer
	in := New(Config{Logger: slog.New(slog.NewTextHandler(&buf, nil))})
	cmds, err := ParseProgram("SETTCR 0\nAT 10 RFON\nAT 15 WIGGLE\nAT 20 RFOFF\nAT 30 REP\n")
	require.NoError(t, err)
	require.NoError(t, in.Run(cmds))

	assert.Contains(t, buf.String(), "WIGGLE")
	assert.Equal(t, []timeline.Interval{{Begin: 10 * µs, End: 20 * µs}},
		in.Subcycles().Snapshot(0)["RF"])
}

func TestInterpreter_AllOffClosesOnlyOpenChannels(t *testing.T) {
	in := runProgram(t, "SETTCR 0\nAT 10 CH1,CH4\nAT 50 CH1OFF\nAT 90 ALLOFF\nAT 100 REP\n")

	snap := in.Subcycles().Snapshot(0)
	assert.Equal(t, []timeline.Interval{{Begin: 10 * µs, End: 50 * µs}}, snap["CH1"])
	assert.Equal(t, []timeline.Interval{{Begin: 10 * µs, End: 90 * µs}}, snap["CH4"])
	assert.Empty(t, snap["CH2"])
}

func TestInterpreter_PhasePseudoStreams(t *testing.T) {
	in := runProgram(t, "SETTCR 0\nAT 10 PHA0\nAT 12 PHA180\nAT 14 PHA0\nAT 20 REP\n")

	snap := in.Subcycles().Snapshot(0)
	assert.Equal(t, []timeline.Interval{
		{Begin: 10 * µs, End: 12 * µs},
		{Begin: 14 * µs, End: 20 * µs}, // closed silently at the boundary
	}, snap["+"])
	assert.Equal(t, []timeline.Interval{{Begin: 12 * µs, End: 14 * µs}}, snap["-"])

	shifts := in.Phase().Shifts()
	require.Len(t, shifts, 3)
	assert.Equal(t, timeline.EventList{
		{Time: 10 * µs, Value: 0},
		{Time: 12 * µs, Value: 180},
		{Time: 14 * µs, Value: 0},
	}, shifts)
}

func TestInterpreter_RepeatedPhaseIsIdempotent(t *testing.T) {
	in := runProgram(t, "SETTCR 0\nAT 10 PHA0\nAT 12 PHA0\nAT 20 REP\n")
	snap := in.Subcycles().Snapshot(0)
	assert.Equal(t, []timeline.Interval{{Begin: 10 * µs, End: 20 * µs}}, snap["+"])
}

func TestInterpreter_ADRoutingRecordsDefaultFrequency(t *testing.T) {
	in := runProgram(t, "SETTCR 0\nAT 5 AD1L\nAT 100 REP\n")

	// Routing sets lo1 812 and lo2 128 (first path); the default NCO entry
	// is 8.5 MHz.
	want := (812 + 128 - 8.5) * 1e6
	for _, ch := range []int{1, 2, 3} {
		events := in.Frequencies()[ch].Events()
		require.Len(t, events, 1, "channel %d", ch)
		assert.InDelta(t, 5*µs, events[0].Time, 1e-12)
		assert.InDelta(t, want, events[0].Value, 1e-3)
	}
	assert.Equal(t, 0, in.Frequencies()[4].Len(), "right path not routed")
}

func TestInterpreter_NCOSelWithLoadedTable(t *testing.T) {
	channels := make(map[int]*nco.Oscillator)
	for ch := 1; ch <= 6; ch++ {
		osc := nco.New()
		osc.LoadTable([]float64{10.4, 10.1})
		channels[ch] = osc
	}
	cfg := quietConfig()
	cfg.Channels = channels

	in := New(cfg)
	cmds, err := ParseProgram("SETTCR 0\nAT 5 AD1L,AD1R\nAT 7 NCOSEL1\nAT 100 REP\n")
	require.NoError(t, err)
	require.NoError(t, in.Run(cmds))

	// lo1 812 MHz (single first oscillator), lo2 128 MHz on the first path.
	want := (812 + 128 - 10.1) * 1e6
	events := in.Frequencies()[2].Events()
	require.Len(t, events, 1, "no frequency before the NCO selection")
	assert.InDelta(t, want, events[0].Value, 1e-3)
}

func TestInterpreter_NCOSelOutsideTableIsFatal(t *testing.T) {
	in := New(quietConfig())
	cmds, err := ParseProgram("SETTCR 0\nAT 7 NCOSEL3\nAT 100 REP\n")
	require.NoError(t, err)

	var terr *Error
	err = in.Run(cmds)
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 2, terr.Line)
}

func TestInterpreter_STFIRKeepsFirstStart(t *testing.T) {
	in := runProgram(t, "SETTCR 0\nAT 10 STFIR\nAT 20 STFIR\nAT 30 REP\n")
	at, ok := in.FIRStart()
	require.True(t, ok)
	assert.InDelta(t, 10*µs, at, 1e-12)
}

func TestInterpreter_TCROffsetsRelativeTimes(t *testing.T) {
	in := runProgram(t, twoSubcycleProgram)
	// Second subcycle RF opens at 1505 + 40 µs.
	assert.InDelta(t, 1545*µs, in.Subcycles().Snapshot(1)["RF"][0].Begin, 1e-12)
}
