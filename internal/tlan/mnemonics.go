package tlan

import (
	"fmt"
	"sort"
	"sync"
)

// channelCount is the number of receive channel boards in a KST receiver.
const channelCount = 6

// ncoLines is the number of addressable NCO memory lines.
const ncoLines = 1024

// Names of the tracked hardware lines.
const (
	streamRF      = "RF"
	streamRXProt  = "RXPROT"
	streamLOProt  = "LOPROT"
	streamCal     = "CAL"
	streamBeam    = "BEAM"
	streamPhasePlus  = "+"
	streamPhaseMinus = "-"
)

// channelName returns the stream name of receive channel n (1-based).
func channelName(n int) string {
	return fmt.Sprintf("CH%d", n)
}

// channelNames lists the receive channel streams in order.
func channelNames() []string {
	names := make([]string, channelCount)
	for i := range names {
		names[i] = channelName(i + 1)
	}
	return names
}

type opKind int

const (
	opNop opKind = iota
	opTurnOn
	opTurnOff
	opPhase0
	opPhase180
	opAllOff
	opStartFIR
	opRouteAD
	opNCOSel
)

// action describes what one mnemonic does to the interpreter state.
type action struct {
	op       opKind
	stream   string // opTurnOn / opTurnOff
	path     int    // opRouteAD: receive path index
	channels []int  // opRouteAD: channel boards fed from that path
	ncoLine  int    // opNCOSel
}

var (
	actionTableOnce sync.Once
	actionTable     map[string]action
)

// actions returns the mnemonic dispatch table, built once on first use. The
// per-channel, per-bit and per-NCO-line families are generated rather than
// spelled out.
func actions() map[string]action {
	actionTableOnce.Do(func() {
		t := map[string]action{
			"RFON":    {op: opTurnOn, stream: streamRF},
			"RFOFF":   {op: opTurnOff, stream: streamRF},
			"RXPROT":  {op: opTurnOn, stream: streamRXProt},
			"RXPOFF":  {op: opTurnOff, stream: streamRXProt},
			"LOPROT":  {op: opTurnOn, stream: streamLOProt},
			"LOPOFF":  {op: opTurnOff, stream: streamLOProt},
			"CALON":   {op: opTurnOn, stream: streamCal},
			"CAL100":  {op: opTurnOn, stream: streamCal},
			"CALOFF":  {op: opTurnOff, stream: streamCal},
			"CAL0":    {op: opTurnOff, stream: streamCal},
			"BEAMON":  {op: opTurnOn, stream: streamBeam},
			"BEAMOFF": {op: opTurnOff, stream: streamBeam},
			"PHA0":    {op: opPhase0},
			"PHA180":  {op: opPhase180},
			"ALLOFF":  {op: opAllOff},
			"STFIR":   {op: opStartFIR},
			"AD1L":    {op: opRouteAD, path: 0, channels: []int{1, 2, 3}},
			"AD1R":    {op: opRouteAD, path: 0, channels: []int{4, 5, 6}},
			"AD2L":    {op: opRouteAD, path: 1, channels: []int{1, 2, 3}},
			"AD2R":    {op: opRouteAD, path: 1, channels: []int{4, 5, 6}},

			// Observable only inside the hardware; no timing effect here.
			"TRANS":   {op: opNop},
			"RECEV":   {op: opNop},
			"RXSYNC":  {op: opNop},
			"TXSYNC":  {op: opNop},
			"CHQPULS": {op: opNop},
			"BUFLIP":  {op: opNop},
			"STC":     {op: opNop},
			"SETTCR":  {op: opNop}, // handled by the run loop, never dispatched
		}
		for ch := 1; ch <= channelCount; ch++ {
			name := channelName(ch)
			t[name] = action{op: opTurnOn, stream: name}
			t[name+"OFF"] = action{op: opTurnOff, stream: name}
		}
		// Transmitter frequency selection is not tracked yet.
		for f := 0; f < 16; f++ {
			t[fmt.Sprintf("F%d", f)] = action{op: opNop}
		}
		for line := 0; line < ncoLines; line++ {
			t[fmt.Sprintf("NCOSEL%d", line)] = action{op: opNCOSel, ncoLine: line}
		}
		// Bits 4 and 5 go to the ADC sample gates; not of interest here, but
		// they should not be warned about either.
		for _, bit := range []int{4, 5} {
			for _, d := range []string{"R", "T"} {
				t[fmt.Sprintf("B%sX%d", d, bit)] = action{op: opNop}
				t[fmt.Sprintf("B%sX%dOFF", d, bit)] = action{op: opNop}
			}
		}
		actionTable = t
	})
	return actionTable
}

var (
	docsOnce sync.Once
	docs     map[string]string
)

// Docs returns the documentation catalog of the controller mnemonics,
// including the ones this tool only warns about. Built once on first use.
func Docs() map[string]string {
	docsOnce.Do(func() {
		d := map[string]string{
			"CHQPULS": "High output on bit 31 for 2 us, used for synchronization with external hardware.",
			"RXPROT":  "Enable receiver protector, bit 12 high.",
			"RXPOFF":  "Disable receiver protector, bit 12 low.",
			"LOPROT":  "Enable local oscillator protector, bit 6 high.",
			"LOPOFF":  "Disable local oscillator protector, bit 6 low.",
			"BEAMON":  "Enable beam in klystron, bit 13 high.",
			"BEAMOFF": "Disable beam in klystron, bit 13 low.",
			"RFON":    "Enable RF output, bit 11 high.",
			"RFOFF":   "Disable RF output, bit 11 low.",
			"PHA0":    "Set proper phase, bit 4 low.",
			"PHA180":  "Set inverted phase, bit 4 high.",
			"CALON":   "Tromsø and receivers: enable noise source for calibration, bit 15 high.",
			"CAL100":  "Enable noise source for calibration, bit 15 high.",
			"CALOFF":  "Tromsø and receivers: disable noise source, bit 15 low.",
			"CAL0":    "Disable noise source for calibration, bit 15 low.",
			"HCALON":  "Remote receivers: enable noise source in the horizontal wave guide only.",
			"HCALOFF": "Remote receivers: disable noise source in the horizontal wave guide only.",
			"VCALON":  "Remote receivers: enable noise source in the vertical wave guide only.",
			"VCALOFF": "Remote receivers: disable noise source in the vertical wave guide only.",
			"STC":     "Interrupt the crate computer to signal that new data need taking care of, bit 8 strobed.",
			"BUFLIP":  "Change side of buffer memory on the channel boards, bit 17 strobed.",
			"ALLOFF":  "Close the sampling gate on all channel boards, bits 10-15 low.",
			"REP":     "End of controller program / repeat cycle.",
			"SETTCR":  "Set the reference time in the time control register.",
			"RXSYNC":  "A 2 us pulse on bit 31 on the front of the receiver controller.",
			"TXSYNC":  "A 2 us pulse on bit 31 on the front of the transmitter controller.",
			"AD1L":    "Route input from AD 1 to channel boards 1, 2, 3.",
			"AD1R":    "Route input from AD 1 to channel boards 4, 5, 6.",
			"AD2L":    "Route input from AD 2 to channel boards 1, 2, 3.",
			"AD2R":    "Route input from AD 2 to channel boards 4, 5, 6.",
			"STFIR":   "Start the FIR filters on the channel boards, bit 16 strobed.",
			"TRANS":   "Not documented.",
			"RECEV":   "Not documented.",
		}
		for f := 0; f < 16; f++ {
			d[fmt.Sprintf("F%d", f)] = "Set transmitter frequency, bits 0-3."
		}
		for line := 0; line < ncoLines; line++ {
			d[fmt.Sprintf("NCOSEL%d", line)] = "Load the frequency of the requested memory line into the NCO, strobe bit 29."
		}
		for ch := 1; ch <= channelCount; ch++ {
			d[channelName(ch)] = fmt.Sprintf("Open the sampling gate on channel board %d, bit %d high.", ch, ch+9)
			d[channelName(ch)+"OFF"] = fmt.Sprintf("Close the sampling gate on channel board %d, bit %d low.", ch, ch+9)
		}
		for bit := 0; bit < 32; bit++ {
			d[fmt.Sprintf("BRX%d", bit)] = fmt.Sprintf("Set bit %d on the receiver controller. No checks are made.", bit)
			d[fmt.Sprintf("BRX%dOFF", bit)] = fmt.Sprintf("Clear bit %d on the receiver controller. No checks are made.", bit)
			d[fmt.Sprintf("BTX%d", bit)] = fmt.Sprintf("Set bit %d on the transmitter controller. Use with caution.", bit)
			d[fmt.Sprintf("BTX%dOFF", bit)] = fmt.Sprintf("Clear bit %d on the transmitter controller. Use with caution.", bit)
		}
		docs = d
	})
	return docs
}

// DocNames returns the documented mnemonic names in sorted order.
func DocNames() []string {
	d := Docs()
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
