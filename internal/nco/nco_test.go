package nco

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validTable = `NCOPAR_VS       0.1
%======================================
% cp1l_ch1
% LO1=812.0 MHz LO2=128.0 MHz
%======================================
NCO	0	 10.4	% f12
NCO	1	 10.1	% f13
NCO	2	 10.1	% f13
NCO	3	 10.4	% f12`

func TestParseTable_Valid(t *testing.T) {
	freqs, err := ParseTable(validTable)
	require.NoError(t, err)
	assert.Equal(t, []float64{10.4, 10.1, 10.1, 10.4}, freqs)
}

func TestParseTable_MissingVersionLine(t *testing.T) {
	_, err := ParseTable("NCO\t0\t 10.4\t% f12\n")
	assert.ErrorIs(t, err, ErrVersion)
}

func TestParseTable_WrongVersion(t *testing.T) {
	_, err := ParseTable("NCOPAR_VS       0.2\nNCO\t0\t 10.4\t% f12\n")
	assert.ErrorIs(t, err, ErrVersion)
}

func TestParseTable_Empty(t *testing.T) {
	_, err := ParseTable("")
	assert.ErrorIs(t, err, ErrVersion)
}

func TestParseTable_MissingCommentMarker(t *testing.T) {
	bad := "NCOPAR_VS       0.1\nNCO\t0\t 10.4\t% f12\nNCO\t1\t 10.1\t f13\n"
	_, err := ParseTable(bad)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersion)
}

func TestParseTable_IndexOutOfSequence(t *testing.T) {
	bad := "NCOPAR_VS       0.1\nNCO\t0\t 10.4\nNCO\t2\t 10.1\n"
	_, err := ParseTable(bad)
	assert.Error(t, err)
}

func TestParseTable_InvalidFrequency(t *testing.T) {
	bad := "NCOPAR_VS       0.1\nNCO\t0\t 10.4MHz\n"
	_, err := ParseTable(bad)
	assert.Error(t, err)
}

func TestOscillator_Frequency(t *testing.T) {
	o := New()
	_, err := o.Frequency()
	assert.Error(t, err, "nothing configured yet")

	o.SetLO1(812)
	o.SetLO2(128)
	o.LoadTable([]float64{10.4, 10.1})
	assert.False(t, o.Ready(), "no entry selected yet")

	require.NoError(t, o.Select(1))
	require.True(t, o.Ready())

	f, err := o.Frequency()
	require.NoError(t, err)
	assert.InDelta(t, 812+128-10.1, f, 1e-9)
}

func TestOscillator_SelectOutOfRange(t *testing.T) {
	o := New()
	o.LoadTable([]float64{10.4})
	assert.Error(t, o.Select(1))
	assert.Error(t, o.Select(-1))
}

func TestOscillator_LoadTableDiscardsSelection(t *testing.T) {
	o := Default(812, 128)
	assert.True(t, o.Ready())

	f, err := o.Frequency()
	require.NoError(t, err)
	assert.InDelta(t, 812+128-8.5, f, 1e-9)

	o.LoadTable([]float64{10.4})
	assert.False(t, o.Ready())
}
