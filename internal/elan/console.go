package elan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kstlab/radex/internal/site"
)

// channelCount is the number of receiver channels a console can address.
const channelCount = 6

// LoadedFiles is the record of what a script loaded into the radar: the
// compiled controller programs for reception and transmission, the digital
// filter, the correlator program and the per-channel NCO tables.
type LoadedFiles struct {
	RBin       string
	TBin       string
	Filter     string
	Correlator string
	NCO        [channelCount]string
}

// Console is the EROS-level state domain commands act on. It persists
// across scopes, so a file loaded inside a block stays loaded after the
// block returns.
type Console struct {
	Radar   string
	Antenna string
	// LO1 and LO2 are the local oscillator frequencies in MHz, one entry
	// per receiver path.
	LO1 []float64
	LO2 []float64

	Loaded LoadedFiles

	// SearchDirs are extra directories tried when resolving experiment
	// and frequency files, ahead of the conventional /kst/exp roots.
	SearchDirs []string

	argv       []string
	startTimes map[string]float64
}

// NewConsole builds console state for a radar site, seeding the local
// oscillators from the site table. Antenna defaults to the radar name.
func NewConsole(radar, antenna string) (*Console, error) {
	s, err := site.Lookup(radar)
	if err != nil {
		return nil, err
	}
	if antenna == "" {
		antenna = radar
	}
	return &Console{
		Radar:   radar,
		Antenna: antenna,
		LO1:     append([]float64(nil), s.LO1...),
		LO2:     append([]float64(nil), s.LO2...),
		startTimes: map[string]float64{
			"e": -1, "b": -1, "r": -1, "t": -1, "c": -1,
		},
	}, nil
}

// seedVars installs the script-visible site variables in the root scope.
func (c *Console) seedVars(it *Interp) {
	root := it.scopes[0]
	root.set("_radar", strValue(c.Radar))
	root.set("_ant", strValue(c.Antenna))
	root.set("32p", strValue(boolStr(c.Antenna == "32p")))
	root.set("42p", strValue(boolStr(c.Antenna == "42p")))
	root.set("_lo1", listValue(formatFreqs(c.LO1)))
	root.set("_lo2", listValue(formatFreqs(c.LO2)))
}

func boolStr(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func formatFreqs(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return out
}

// FindFile resolves a script-referenced file. Absolute /kst/exp/ prefixes
// are retried relative to the working directory and the configured search
// directories. It returns the containing directory, the bare experiment
// name and the resolved path.
func (c *Console) FindFile(filename, ending string) (dir, name, path string, err error) {
	name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	trimmed := strings.TrimPrefix(filename, "/kst/exp/")
	if !strings.HasSuffix(trimmed, ending) {
		trimmed += ending
	}
	candidates := []string{
		trimmed,
		filepath.Join("/kst/exp", trimmed),
		filepath.Join("kst", "exp", trimmed),
	}
	for _, d := range c.SearchDirs {
		candidates = append(candidates, filepath.Join(d, trimmed), filepath.Join(d, filepath.Base(trimmed)))
	}
	if filepath.IsAbs(filename) {
		candidates = append(candidates, filename)
	}
	for _, p := range candidates {
		if st, statErr := os.Stat(p); statErr == nil && st.Mode().IsRegular() {
			return filepath.Dir(p), name, p, nil
		}
	}
	return "", "", "", fmt.Errorf("file %q not found (looked in %s)", filename, strings.Join(candidates, ", "))
}

// FindTlan guesses which controller source the loaded reception binary was
// compiled from: the .tlan in the binary's directory whose stem matches
// exactly, or failing that shares the longest common prefix.
func (c *Console) FindTlan(overrideDir string) (string, error) {
	if c.Loaded.RBin == "" {
		return "", fmt.Errorf("no reception controller file was loaded")
	}
	dir := filepath.Dir(c.Loaded.RBin)
	if overrideDir != "" {
		dir = overrideDir
	}
	stem := strings.TrimSuffix(filepath.Base(c.Loaded.RBin), filepath.Ext(c.Loaded.RBin))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning %s for controller sources: %w", dir, err)
	}
	var tlans []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tlan") {
			tlans = append(tlans, e.Name())
		}
	}
	if len(tlans) == 0 {
		return "", fmt.Errorf("no .tlan files in %s", dir)
	}
	sort.Strings(tlans)
	for _, name := range tlans {
		if strings.TrimSuffix(name, ".tlan") == stem {
			return filepath.Join(dir, name), nil
		}
	}
	best, bestLen := "", -1
	for _, name := range tlans {
		n := commonPrefixLen(strings.TrimSuffix(name, ".tlan"), stem)
		if n > bestLen {
			best, bestLen = name, n
		}
	}
	return filepath.Join(dir, best), nil
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// lo returns the slice for oscillator 1 or 2.
func (c *Console) lo(n int) []float64 {
	if n == 1 {
		return c.LO1
	}
	return c.LO2
}
