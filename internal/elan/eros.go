package elan

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kstlab/radex/internal/nco"
)

// domainCommands is the EROS console command catalog. Most of these ran
// hardware on the real console; here the state-bearing ones record what
// they loaded or configured and the rest log what would have happened.
var domainCommands map[string]builtinFunc

func init() {
	domainCommands = map[string]builtinFunc{
		"argv":              (*Interp).erosArgv,
		"armradar":          (*Interp).erosArmRadar,
		"block":             (*Interp).erosBlock,
		"callblock":         (*Interp).erosCallBlock,
		"disablerecording":  (*Interp).erosDisableRecording,
		"getstarttime":      (*Interp).erosGetStartTime,
		"gotoblock":         (*Interp).erosGotoBlock,
		"isradar":           (*Interp).erosIsRadar,
		"isuhf":             isRadarCmd("UHF"),
		"isvhf":             isRadarCmd("VHF"),
		"isesr":             isRadarCmd("ESR"),
		"iskir":             isRadarCmd("KIR"),
		"issod":             isRadarCmd("SOD"),
		"loadfile":          (*Interp).cmdSource,
		"loadfilter":        (*Interp).erosLoadFilter,
		"loadfrequency":     (*Interp).erosLoadFrequency,
		"loadradar":         (*Interp).erosLoadRadar,
		"logbook":           (*Interp).erosLogbook,
		"readfrequencyfile": (*Interp).erosReadFrequencyFile,
		"runexperiment":     (*Interp).erosRunExperiment,
		"selectlo":          (*Interp).erosSelectLO,
		"setfrequency":      (*Interp).erosSetFrequency,
		"startdata":         (*Interp).erosStartData,
		"startradar":        (*Interp).erosStartRadar,
		"stopdata":          (*Interp).erosStopData,
		"stopradar":         (*Interp).erosStopRadar,
		"sync":              (*Interp).erosSync,
		"timestamp":         (*Interp).erosTimestamp,
		"transferlo":        (*Interp).erosTransferLO,
		"upar":              (*Interp).erosUpar,
	}
}

// controllerNames are the radar controllers a script can address by any
// unambiguous prefix.
var controllerNames = []string{
	"transmitter", "receiver", "ion line receiver", "plasma line receiver",
}

// expand resolves an abbreviation against a candidate list. The
// abbreviation must prefix exactly one candidate.
func expand(candidates []string, prefix string) (string, error) {
	var match string
	n := 0
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			match = c
			n++
		}
	}
	switch n {
	case 1:
		return match, nil
	case 0:
		return "", fmt.Errorf("%q matches none of %s", prefix, strings.Join(candidates, ", "))
	default:
		return "", fmt.Errorf("%q is ambiguous among %s", prefix, strings.Join(candidates, ", "))
	}
}

var digitsRe = regexp.MustCompile(`\d+`)

// channelNumbers extracts channel numbers from an argument like "1,2,3"
// or "ch1-ch3". Digit runs count, everything between is a separator.
func channelNumbers(arg string) ([]int, error) {
	var chs []int
	for _, m := range digitsRe.FindAllString(arg, -1) {
		n, err := strconv.Atoi(m)
		if err != nil || n < 1 || n > channelCount {
			return nil, fmt.Errorf("bad channel %q", m)
		}
		chs = append(chs, n)
	}
	if len(chs) == 0 {
		return nil, fmt.Errorf("no channels in %q", arg)
	}
	return chs, nil
}

func isRadarCmd(name string) builtinFunc {
	return func(it *Interp, si int, args []string) (result, error) {
		return result{val: boolStr(it.console.Radar == name)}, nil
	}
}

func (it *Interp) erosArgv(si int, args []string) (result, error) {
	return result{val: strings.Join(it.console.argv, " ")}, nil
}

func (it *Interp) erosArmRadar(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("armradar: missing controller name")
	}
	it.log.Info("arming radar controller", "controller", args[0])
	return result{}, nil
}

// erosBlock is proc with an entry log line: blocks are the console's named
// procedures.
func (it *Interp) erosBlock(si int, args []string) (result, error) {
	if len(args) > 0 {
		it.log.Info("defining block", "name", args[0])
	}
	return it.cmdProc(si, args)
}

// erosCallBlock evaluates its arguments as a command. Loaded-file state
// lives on the shared console, so anything the block loads is already
// visible to the caller when the call returns.
func (it *Interp) erosCallBlock(si int, args []string) (result, error) {
	return it.cmdEval(si, args)
}

func (it *Interp) erosDisableRecording(si int, args []string) (result, error) {
	rec := "ion"
	if it.console.Radar != "ESR" && len(args) > 0 {
		rec = args[0]
	}
	switch rec {
	case "ion", "pla", "all":
		it.log.Info("disabling recording", "line", rec)
	default:
		return result{}, fmt.Errorf("disablerecording: bad line %q", rec)
	}
	return result{}, nil
}

func (it *Interp) erosGetStartTime(si int, args []string) (result, error) {
	if len(args) < 1 || args[0] == "" {
		return result{}, fmt.Errorf("getstarttime: missing device")
	}
	device := strings.ToLower(args[0])[:1]
	t, ok := it.console.startTimes[device]
	if !ok {
		return result{}, fmt.Errorf("getstarttime: unknown device %q", args[0])
	}
	return result{val: strconv.FormatFloat(t, 'g', -1, 64)}, nil
}

// erosGotoBlock abandons the current script in favor of a named block.
func (it *Interp) erosGotoBlock(si int, args []string) (result, error) {
	target := strings.Join(args, " ")
	it.log.Info("leaving current block", "target", target)
	return result{val: "gotoblock " + target, flow: flowJump, jump: target}, nil
}

func (it *Interp) erosIsRadar(si int, args []string) (result, error) {
	if len(args) == 0 {
		return result{val: it.console.Radar}, nil
	}
	for _, arg := range args {
		if it.console.Radar == arg {
			return result{val: boolStr(true)}, nil
		}
	}
	return result{val: boolStr(false)}, nil
}

func (it *Interp) erosLoadFilter(si int, args []string) (result, error) {
	if len(args) < 2 {
		return result{}, fmt.Errorf("loadfilter: want a filter file and channels")
	}
	line := "ionline"
	fileIdx := 0
	if strings.HasPrefix("plasmaline", args[0]) {
		line = "plasmaline"
		fileIdx = 1
	} else if strings.HasPrefix("ionline", args[0]) {
		fileIdx = 1
	}
	if fileIdx+1 >= len(args) {
		return result{}, fmt.Errorf("loadfilter: missing channels")
	}
	file := args[fileIdx]
	chs, err := channelNumbers(args[fileIdx+1])
	if err != nil {
		return result{}, fmt.Errorf("loadfilter: %w", err)
	}
	it.console.Loaded.Filter = file
	it.log.Info("loading filter", "file", file, "line", line, "channels", chs)
	return result{}, nil
}

// recArgs parses the shared ?options? ?receiver? <x> <channels> argument
// shape of loadfrequency and its relatives.
func recArgs(args []string) (options []string, receiver, x string, chs []int, err error) {
	if len(args) < 2 {
		return nil, "", "", nil, fmt.Errorf("want at least a value and channels")
	}
	x = args[len(args)-2]
	chs, err = channelNumbers(args[len(args)-1])
	if err != nil {
		return nil, "", "", nil, err
	}
	rest := args[:len(args)-2]
	if len(rest) > 0 {
		last := rest[len(rest)-1]
		if strings.HasPrefix("plasmaline", last) {
			receiver = "plasmaline"
			rest = rest[:len(rest)-1]
		} else if strings.HasPrefix("ionline", last) {
			receiver = "ionline"
			rest = rest[:len(rest)-1]
		}
	}
	for _, opt := range rest {
		if len(opt) > 1 && opt[0] == '-' {
			options = append(options, strings.ToLower(opt[1:2]))
		}
	}
	return options, receiver, x, chs, nil
}

// erosLoadFrequency records which NCO table file goes into which channels.
func (it *Interp) erosLoadFrequency(si int, args []string) (result, error) {
	options, receiver, file, chs, err := recArgs(args)
	if err != nil {
		return result{}, fmt.Errorf("loadfrequency: %w", err)
	}
	testOnly := false
	for _, o := range options {
		if o == "t" {
			testOnly = true
		}
	}
	if !testOnly {
		for _, ch := range chs {
			it.console.Loaded.NCO[ch-1] = file
		}
	}
	it.log.Info("loading frequency table",
		"file", file, "channels", chs, "receiver", receiver, "test", testOnly)
	return result{}, nil
}

// erosLoadRadar records the compiled controller program a script loads.
// The argument shape is <controller> ?-f file? ?-l loopcount? ?-s sync?.
func (it *Interp) erosLoadRadar(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("loadradar: missing controller")
	}
	controller, err := expand(controllerNames, args[0])
	if err != nil {
		return result{}, fmt.Errorf("loadradar: %w", err)
	}
	it.log.Info("loading radar controller", "controller", controller)
	for i := 1; i+1 < len(args); i += 2 {
		opt, val := args[i], args[i+1]
		if len(opt) < 2 || opt[0] != '-' {
			return result{}, fmt.Errorf("loadradar: bad option %q", opt)
		}
		switch opt[1] {
		case 'f':
			slot, err := expand([]string{"tbin", "rbin"}, args[0][:1])
			if err != nil {
				return result{}, fmt.Errorf("loadradar: %w", err)
			}
			if slot == "rbin" {
				it.console.Loaded.RBin = val
			} else {
				it.console.Loaded.TBin = val
			}
			it.log.Info("loading compiled controller program", "slot", slot, "file", val)
		case 'l':
			n, err := strconv.Atoi(val)
			if err != nil {
				return result{}, fmt.Errorf("loadradar: bad loop count %q", val)
			}
			it.log.Info("setting loop counter", "count", n)
		case 's':
			ticks, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return result{}, fmt.Errorf("loadradar: bad sync period %q", val)
			}
			// Value is in 100 ns ticks.
			it.log.Info("setting synchronisation period", "microseconds", ticks/10)
		default:
			return result{}, fmt.Errorf("loadradar: unknown option %q", opt)
		}
	}
	return result{}, nil
}

func (it *Interp) erosLogbook(si int, args []string) (result, error) {
	it.log.Info("logbook entry", "text", strings.Join(args, " "))
	return result{}, nil
}

// erosReadFrequencyFile reads one frequency out of an NCO table file. A
// missing file is not fatal, matching console behavior where the script
// keeps running with frequencies unloaded.
func (it *Interp) erosReadFrequencyFile(si int, args []string) (result, error) {
	if len(args) < 2 {
		return result{}, fmt.Errorf("readfrequencyfile: want a file and an address")
	}
	addr, err := strconv.Atoi(args[1])
	if err != nil {
		return result{}, fmt.Errorf("readfrequencyfile: bad address %q", args[1])
	}
	_, _, path, err := it.console.FindFile(args[0], ".nco")
	if err != nil {
		it.log.Warn("frequency file not found, frequencies not loaded", "file", args[0])
		return result{}, nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return result{}, fmt.Errorf("readfrequencyfile: %w", err)
	}
	freqs, err := nco.ParseTable(string(text))
	if err != nil {
		return result{}, fmt.Errorf("readfrequencyfile: %s: %w", path, err)
	}
	if addr < 0 || addr >= len(freqs) {
		return result{}, fmt.Errorf("readfrequencyfile: address %d out of range for %d entries", addr, len(freqs))
	}
	return result{val: strconv.FormatFloat(freqs[addr], 'g', -1, 64)}, nil
}

// erosRunExperiment loads an experiment script and runs it in the calling
// scope. The calling convention is runexperiment <path> <start> <args...>;
// the trailing arguments become the script's argv.
func (it *Interp) erosRunExperiment(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("runexperiment: missing experiment file")
	}
	_, name, path, err := it.console.FindFile(args[0], ".elan")
	if err != nil {
		return result{}, fmt.Errorf("runexperiment: %w", err)
	}
	if len(args) > 2 {
		it.console.argv = append([]string(nil), args[2:]...)
	} else {
		it.console.argv = nil
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return result{}, fmt.Errorf("runexperiment: %w", err)
	}
	it.log.Info("running experiment script", "experiment", name, "path", path)
	res, err := it.evalScript(si, string(text), name)
	if err != nil {
		return result{}, err
	}
	// A gotoblock that escapes the whole script just ends it.
	res.flow = flowNormal
	return res, nil
}

// receiver path names per site, mapped to the 1-based path number.
var (
	pathsUHF = map[string]int{"i": 1, "ion": 1, "1": 1, "p": 2, "pla": 2, "2": 2}
	pathsVHF = map[string]int{"I": 1, "A": 1, "II": 2, "B": 2}
	pathsESR = map[string]int{
		"P1": 1, "U32": 1, "32U": 1, "U32m": 1, "U": 1,
		"P2": 2, "D32": 2, "32D": 2, "D32m": 2, "D": 2,
		"P3": 3, "U42": 3, "42U": 3, "U42m": 3,
		"P4": 4, "D42": 4, "42D": 4, "D42m": 4,
	}
)

// erosSelectLO reprograms one local oscillator path. The shape is
// ?lo1|lo2? <path> <MHz>; which oscillator is configurable depends on the
// site, so the explicit form is only required at VHF.
func (it *Interp) erosSelectLO(si int, args []string) (result, error) {
	if len(args) < 2 {
		return result{}, fmt.Errorf("selectlo: want a path and a frequency")
	}
	path := args[len(args)-2]
	f, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return result{}, fmt.Errorf("selectlo: bad frequency %q", args[len(args)-1])
	}

	var paths map[string]int
	switch it.console.Radar {
	case "UHF", "KIR", "SOD":
		paths = pathsUHF
	case "VHF":
		paths = pathsVHF
	case "ESR":
		paths = pathsESR
	default:
		return result{}, fmt.Errorf("selectlo: no path table for radar %q", it.console.Radar)
	}
	pathNr, ok := paths[path]
	if !ok {
		return result{}, fmt.Errorf("selectlo: unknown path %q at %s", path, it.console.Radar)
	}

	var lon int
	switch {
	case len(args) == 3:
		n := args[0][len(args[0])-1:]
		lon, err = strconv.Atoi(n)
		if err != nil || lon < 1 || lon > 2 {
			return result{}, fmt.Errorf("selectlo: bad oscillator %q", args[0])
		}
	case it.console.Radar == "UHF" || it.console.Radar == "KIR" || it.console.Radar == "SOD":
		lon = 2
	case it.console.Radar == "ESR":
		lon = 1
	default:
		return result{}, fmt.Errorf("selectlo: the oscillator must be named at %s", it.console.Radar)
	}

	lo := it.console.lo(lon)
	if pathNr > len(lo) {
		return result{}, fmt.Errorf("selectlo: path %d out of range for lo%d with %d paths", pathNr, lon, len(lo))
	}
	lo[pathNr-1] = f
	it.refreshLOVars(si)
	it.log.Info("selecting local oscillator frequency",
		"oscillator", lon, "path", path, "mhz", f)
	return result{}, nil
}

// refreshLOVars mirrors the oscillator state back into the script-visible
// variables, in the acting scope and at the root.
func (it *Interp) refreshLOVars(si int) {
	for _, sc := range []*scope{it.scopes[0], it.scopes[si]} {
		sc.set("_lo1", listValue(formatFreqs(it.console.LO1)))
		sc.set("_lo2", listValue(formatFreqs(it.console.LO2)))
	}
}

// erosSetFrequency tunes channels directly. The channels and value swap
// places relative to loadfrequency.
func (it *Interp) erosSetFrequency(si int, args []string) (result, error) {
	if len(args) < 2 {
		return result{}, fmt.Errorf("setfrequency: want channels and a frequency")
	}
	reordered := append(append([]string(nil), args[:len(args)-2]...), args[len(args)-1], args[len(args)-2])
	_, receiver, freq, chs, err := recArgs(reordered)
	if err != nil {
		return result{}, fmt.Errorf("setfrequency: %w", err)
	}
	it.log.Info("setting channel frequencies",
		"mhz", freq, "channels", chs, "receiver", receiver)
	return result{}, nil
}

// erosStartData records the correlator program. The shape is ?line?
// <corrfile> <expid> <integration> ?antenna?.
func (it *Interp) erosStartData(si int, args []string) (result, error) {
	rec := "ion"
	if len(args) > 0 {
		switch args[0] {
		case "ion", "-ion", "pla", "-pla":
			rec = strings.TrimPrefix(args[0], "-")
			args = args[1:]
		}
	}
	if len(args) < 3 {
		return result{}, fmt.Errorf("startdata: want a correlator file, an experiment id and an integration time")
	}
	if it.console.Radar != "ESR" && rec == "pla" {
		return result{}, nil
	}
	ant := it.console.Antenna
	if it.console.Radar == "ESR" {
		if len(args) < 4 {
			return result{}, fmt.Errorf("startdata: the antenna (32m or 42m) must be named at ESR")
		}
		ant = args[3]
	}
	it.console.Loaded.Correlator = args[0]
	it.log.Info("starting correlator and recorder",
		"file", args[0], "expid", args[1], "integration", args[2], "antenna", ant)
	return result{}, nil
}

func (it *Interp) erosStartRadar(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("startradar: missing start time")
	}
	spec := args[0]
	if strings.HasPrefix(strings.ToUpper(spec), "E") {
		spec = "ETIME"
	}
	it.log.Info("starting radar controllers", "at", spec)
	return result{}, nil
}

func (it *Interp) erosStopData(si int, args []string) (result, error) {
	it.log.Info("stopping correlator and recorder")
	return result{}, nil
}

func (it *Interp) erosStopRadar(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("stopradar: missing controller")
	}
	name := strings.TrimPrefix(args[0], "-")
	if strings.HasPrefix("all", name) {
		it.log.Info("stopping all radar controllers")
		return result{}, nil
	}
	controller, err := expand(controllerNames, name)
	if err != nil {
		return result{}, fmt.Errorf("stopradar: %w", err)
	}
	it.log.Info("stopping radar controller", "controller", controller)
	return result{}, nil
}

func (it *Interp) erosSync(si int, args []string) (result, error) {
	it.log.Info("sync point", "args", args)
	return result{}, nil
}

// erosTimestamp formats a unix time. Flags: -3 for millisecond fraction,
// -nodate, -noyear and -nofrac to trim fields. A negative time renders as
// an empty string.
func (it *Interp) erosTimestamp(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("timestamp: missing time")
	}
	sec, err := strconv.ParseInt(args[len(args)-1], 10, 64)
	if err != nil {
		return result{}, fmt.Errorf("timestamp: bad time %q", args[len(args)-1])
	}
	if sec < 0 {
		return result{}, nil
	}
	date, year, frac := true, true, 1
	for _, flag := range args[:len(args)-1] {
		switch flag {
		case "-3":
			frac = 3
		case "-nodate":
			date, year = false, false
		case "-noyear":
			year = false
		case "-nofrac":
			frac = 0
		default:
			return result{}, fmt.Errorf("timestamp: unknown flag %q", flag)
		}
	}
	t := time.Unix(sec, 0).UTC()
	layout := ""
	if date {
		layout = "02-01"
		if year {
			layout += "-2006"
		}
		layout += " "
	}
	layout += "15:04:05"
	if frac > 0 {
		layout += "." + strings.Repeat("0", frac)
	}
	return result{val: t.Format(layout)}, nil
}

func (it *Interp) erosTransferLO(si int, args []string) (result, error) {
	it.log.Info("transferring local oscillator control", "args", args)
	return result{}, nil
}

// erosUpar models user parameters far enough for scripts that read one:
// reads always return zero, writes are logged and dropped.
func (it *Interp) erosUpar(si int, args []string) (result, error) {
	switch {
	case len(args) == 0:
		return result{}, fmt.Errorf("upar: missing arguments")
	case args[0] == "alias":
		it.log.Info("aliasing user parameter", "args", args[1:])
		return result{}, nil
	case len(args) == 1:
		it.log.Info("reading user parameter", "name", args[0])
		return result{val: "0"}, nil
	case len(args) <= 3:
		it.log.Info("setting user parameter", "args", args)
		return result{}, nil
	default:
		return result{}, fmt.Errorf("upar: too many arguments")
	}
}
