package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupUHF(t *testing.T) {
	s, err := Lookup("UHF")
	require.NoError(t, err)
	assert.Equal(t, []float64{812}, s.LO1)
	assert.Equal(t, []float64{128, 122}, s.LO2)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("ARECIBO")
	assert.Error(t, err)
}

func TestNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"ESR", "KIR", "SOD", "UHF", "VHF"}, Names())
}

func TestRemoteSitesShareUHFChain(t *testing.T) {
	uhf, err := Lookup("UHF")
	require.NoError(t, err)
	for _, name := range []string{"KIR", "SOD"} {
		s, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, uhf.LO1, s.LO1, name)
		assert.Equal(t, uhf.LO2, s.LO2, name)
	}
}
