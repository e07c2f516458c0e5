package elan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsoleInterp(t *testing.T, radar string) *Interp {
	t.Helper()
	c, err := NewConsole(radar, "")
	require.NoError(t, err)
	return New(Options{Logger: quietLogger(), Console: c})
}

func TestConsoleSeedsSiteVariables(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	v, ok := it.Var("_radar")
	require.True(t, ok)
	assert.Equal(t, "UHF", v)
	v, ok = it.Var("_lo2")
	require.True(t, ok)
	assert.Equal(t, "128 122", v)
}

func TestIsRadarFamily(t *testing.T) {
	it := newConsoleInterp(t, "VHF")
	res, err := it.Run("isradar", "t")
	require.NoError(t, err)
	assert.Equal(t, "VHF", res)

	res, err = it.Run("isvhf", "t")
	require.NoError(t, err)
	assert.Equal(t, "True", res)

	res, err = it.Run("isuhf", "t")
	require.NoError(t, err)
	assert.Equal(t, "False", res)

	res, err = it.Run("isradar UHF VHF", "t")
	require.NoError(t, err)
	assert.Equal(t, "True", res)
}

func TestLoadRadarRecordsBinaries(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run(`
loadradar rec -f /kst/exp/manda/manda.rbin -l 163 -s 23200
loadradar trans -f /kst/exp/manda/manda.tbin
`, "t")
	require.NoError(t, err)
	assert.Equal(t, "/kst/exp/manda/manda.rbin", it.Console().Loaded.RBin)
	assert.Equal(t, "/kst/exp/manda/manda.tbin", it.Console().Loaded.TBin)
}

func TestLoadRadarAmbiguousControllerFails(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	// "i" prefixes only "ion line receiver" but "r" alone matches rbin
	// resolution; an unknown controller must fail outright.
	_, err := it.Run("loadradar bogus -f x.rbin", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matches none")
}

func TestLoadFrequencyAssignsChannels(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run("loadfrequency manda_u.nco 1,2,3", "t")
	require.NoError(t, err)
	loaded := it.Console().Loaded
	assert.Equal(t, "manda_u.nco", loaded.NCO[0])
	assert.Equal(t, "manda_u.nco", loaded.NCO[1])
	assert.Equal(t, "manda_u.nco", loaded.NCO[2])
	assert.Empty(t, loaded.NCO[3])
}

func TestLoadFrequencyTestOptionDoesNotLoad(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run("loadfrequency -T manda_u.nco 1", "t")
	require.NoError(t, err)
	assert.Empty(t, it.Console().Loaded.NCO[0])
}

func TestSelectLOUpdatesPathAndVariable(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run("selectlo pla 120", "t")
	require.NoError(t, err)
	assert.Equal(t, []float64{128, 120}, it.Console().LO2)

	v, ok := it.Var("_lo2")
	require.True(t, ok)
	assert.Equal(t, "128 120", v)
}

func TestSelectLOExplicitOscillatorAtVHF(t *testing.T) {
	it := newConsoleInterp(t, "VHF")
	_, err := it.Run("selectlo lo1 A 291", "t")
	require.NoError(t, err)
	assert.Equal(t, []float64{291, 298}, it.Console().LO1)
}

func TestSelectLOMissingOscillatorAtVHFFails(t *testing.T) {
	it := newConsoleInterp(t, "VHF")
	_, err := it.Run("selectlo A 291", "t")
	require.Error(t, err)
}

func TestArgvThroughRunExperiment(t *testing.T) {
	dir := t.TempDir()
	script := "puts [argv]\n"
	path := filepath.Join(dir, "probe.elan")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))

	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	c.SearchDirs = []string{dir}

	var out bytes.Buffer
	it := New(Options{Out: &out, Logger: quietLogger(), Console: c})
	_, err = it.Run("runexperiment probe NOW 1 CP1 fixed", "t")
	require.NoError(t, err)
	assert.Equal(t, "1 CP1 fixed\n", out.String())
}

func TestRunExperimentMissingFileFails(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run("runexperiment nosuchexp NOW", "t")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestReadFrequencyFile(t *testing.T) {
	dir := t.TempDir()
	table := "NCOPAR_VS 0.1\n% comment\nNCO 0 10.2\nNCO 1 11.7\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "freqs.nco"), []byte(table), 0o644))

	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	c.SearchDirs = []string{dir}
	it := New(Options{Logger: quietLogger(), Console: c})

	res, err := it.Run("readfrequencyfile freqs 1", "t")
	require.NoError(t, err)
	assert.Equal(t, "11.7", res)
}

func TestReadFrequencyFileMissingIsNotFatal(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	res, err := it.Run("readfrequencyfile nosuchfile 0", "t")
	require.NoError(t, err)
	assert.Equal(t, "", res)
}

func TestBlockAndCallblockShareLoadedFiles(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run(`
block setup {} {
    loadradar rec -f manda.rbin
}
callblock setup
`, "t")
	require.NoError(t, err)
	assert.Equal(t, "manda.rbin", it.Console().Loaded.RBin)
}

func TestGotoblockAbandonsScript(t *testing.T) {
	var out bytes.Buffer
	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	it := New(Options{Out: &out, Logger: quietLogger(), Console: c})
	res, err := it.Run("puts before\ngotoblock SCAN up\nputs after", "t")
	require.NoError(t, err)
	assert.Equal(t, "before\n", out.String())
	assert.Equal(t, "gotoblock SCAN up", res)
}

func TestGetStartTimeDefaults(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	res, err := it.Run("getstarttime exp", "t")
	require.NoError(t, err)
	assert.Equal(t, "-1", res)
}

func TestTimestamp(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	res, err := it.Run("timestamp 0", "t")
	require.NoError(t, err)
	assert.Equal(t, "01-01-1970 00:00:00.0", res)

	res, err = it.Run("timestamp -nodate 0", "t")
	require.NoError(t, err)
	assert.Equal(t, "00:00:00.0", res)

	res, err = it.Run("timestamp -1", "t")
	require.NoError(t, err)
	assert.Equal(t, "", res)
}

func TestStartDataRecordsCorrelator(t *testing.T) {
	it := newConsoleInterp(t, "UHF")
	_, err := it.Run("startdata manda_cor manda_expid 4.8", "t")
	require.NoError(t, err)
	assert.Equal(t, "manda_cor", it.Console().Loaded.Correlator)
}

func TestFindTlanExactStem(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"manda.tlan", "manda_old.tlan"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	c.Loaded.RBin = filepath.Join(dir, "manda.rbin")

	path, err := c.FindTlan("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "manda.tlan"), path)
}

func TestFindTlanLongestCommonPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"beata_u.tlan", "other.tlan"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	c.Loaded.RBin = filepath.Join(dir, "beata_u2.rbin")

	path, err := c.FindTlan("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "beata_u.tlan"), path)
}

func TestFindTlanWithoutRBinFails(t *testing.T) {
	c, err := NewConsole("UHF", "")
	require.NoError(t, err)
	_, err = c.FindTlan("")
	require.Error(t, err)
}
