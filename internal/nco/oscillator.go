package nco

import "fmt"

// defaultFrequency is the single-entry table, in MHz, a channel runs with
// when no frequency file has been loaded for it.
const defaultFrequency = 8.5

// Oscillator models the frequency chain of one receiver channel: the two
// local oscillators feeding its receive path and the NCO table it selects
// entries from. All frequencies are MHz.
type Oscillator struct {
	lo1, lo2       float64
	lo1Set, lo2Set bool
	table          []float64
	sel            int
	selected       bool
}

// New returns an oscillator with no table and no selection.
func New() *Oscillator {
	return &Oscillator{}
}

// Default returns an oscillator preloaded and preselected with the single
// default entry, the state a channel has before any frequency file is loaded.
func Default(lo1, lo2 float64) *Oscillator {
	return &Oscillator{
		lo1: lo1, lo2: lo2,
		lo1Set: true, lo2Set: true,
		table:    []float64{defaultFrequency},
		selected: true,
	}
}

// SetLO1 sets the first local-oscillator frequency.
func (o *Oscillator) SetLO1(f float64) {
	o.lo1 = f
	o.lo1Set = true
}

// SetLO2 sets the second local-oscillator frequency.
func (o *Oscillator) SetLO2(f float64) {
	o.lo2 = f
	o.lo2Set = true
}

// LoadTable installs a parsed frequency table. Any earlier selection is
// discarded.
func (o *Oscillator) LoadTable(freqs []float64) {
	o.table = append([]float64(nil), freqs...)
	o.sel = 0
	o.selected = false
}

// Select picks NCO memory line idx from the loaded table.
func (o *Oscillator) Select(idx int) error {
	if idx < 0 || idx >= len(o.table) {
		return fmt.Errorf("NCO line %d outside loaded table of %d entries", idx, len(o.table))
	}
	o.sel = idx
	o.selected = true
	return nil
}

// Ready reports whether both local oscillators are set and a table entry has
// been selected, that is whether Frequency can be derived.
func (o *Oscillator) Ready() bool {
	return o.lo1Set && o.lo2Set && o.selected
}

// Frequency returns the channel center frequency lo1 + lo2 − f_nco.
func (o *Oscillator) Frequency() (float64, error) {
	if !o.Ready() {
		return 0, fmt.Errorf("frequency requested before NCO table was loaded and selected")
	}
	return o.lo1 + o.lo2 - o.table[o.sel], nil
}
