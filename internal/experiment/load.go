package experiment

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kstlab/radex/internal/elan"
	"github.com/kstlab/radex/internal/nco"
	"github.com/kstlab/radex/internal/tlan"
)

// LoadConfig tells Load how to run a source file.
type LoadConfig struct {
	// Radar picks the site whose oscillator defaults apply. Defaults
	// to UHF.
	Radar string
	// Antenna overrides the antenna name, used at ESR.
	Antenna string
	// Args are the experiment arguments handed to a console script.
	Args []string
	// SearchDirs are extra directories for resolving files a console
	// script references. The source file's own directory is always tried.
	SearchDirs []string
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// ConsoleOut receives what the console script prints. Defaults to
	// discarding it.
	ConsoleOut io.Writer
}

// Load reconstructs an experiment from a controller program (.tlan) or a
// console script (.elan). A console script is executed first to learn which
// controller program it loads and how it tunes the receiver; the controller
// program is then replayed against that configuration.
func Load(path string, cfg LoadConfig) (*Experiment, error) {
	if cfg.Radar == "" {
		cfg.Radar = "UHF"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tlan":
		return loadTlan(path, tlan.Config{Logger: cfg.Logger}, cfg.Logger)
	case ".elan":
		return loadElan(path, cfg)
	default:
		return nil, fmt.Errorf("cannot load %q: want a .tlan or .elan file", path)
	}
}

func loadTlan(path string, tcfg tlan.Config, log *slog.Logger) (*Experiment, error) {
	in := tlan.New(tcfg)
	if err := in.RunFile(path); err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	log.Info("reconstructed controller program", "experiment", name, "source", path)
	return FromInterpreter(in, name, path)
}

func loadElan(path string, cfg LoadConfig) (*Experiment, error) {
	console, err := elan.NewConsole(cfg.Radar, cfg.Antenna)
	if err != nil {
		return nil, err
	}
	console.SearchDirs = append([]string{filepath.Dir(path)}, cfg.SearchDirs...)

	opts := elan.Options{Logger: cfg.Logger, Console: console}
	if cfg.ConsoleOut != nil {
		opts.Out = cfg.ConsoleOut
	}
	it := elan.New(opts)

	words := append([]string{"runexperiment", path, "NOW"}, cfg.Args...)
	if _, err := it.Run(strings.Join(words, " "), "console"); err != nil {
		return nil, fmt.Errorf("running console script %s: %w", path, err)
	}

	tlanPath, err := console.FindTlan("")
	if err != nil {
		return nil, fmt.Errorf("after %s: %w", path, err)
	}

	tcfg, err := controllerConfig(console, cfg.Logger)
	if err != nil {
		return nil, err
	}
	exp, err := loadTlan(tlanPath, tcfg, cfg.Logger)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	exp.Name = name
	exp.Source = path
	return exp, nil
}

// controllerConfig converts the console's oscillator state (MHz) into the
// controller interpreter's receiver configuration (Hz), loading any NCO
// tables the script assigned to channels.
func controllerConfig(console *elan.Console, log *slog.Logger) (tlan.Config, error) {
	cfg := tlan.Config{
		LO1:      scale(console.LO1, 1e6),
		LO2:      scale(console.LO2, 1e6),
		Channels: map[int]*nco.Oscillator{},
		Logger:   log,
	}
	for i, file := range console.Loaded.NCO {
		if file == "" {
			continue
		}
		_, _, path, err := console.FindFile(file, ".nco")
		if err != nil {
			log.Warn("assigned frequency file not found, channel keeps defaults",
				"channel", i+1, "file", file)
			continue
		}
		text, err := os.ReadFile(path)
		if err != nil {
			return tlan.Config{}, fmt.Errorf("reading frequency table %s: %w", path, err)
		}
		table, err := nco.ParseTable(string(text))
		if err != nil {
			return tlan.Config{}, fmt.Errorf("frequency table %s: %w", path, err)
		}
		osc := nco.New()
		// The oscillators run at the first-path mix until the program
		// routes the channel elsewhere.
		osc.SetLO1(pathDefault(console.LO1))
		osc.SetLO2(pathDefault(console.LO2))
		osc.LoadTable(table)
		cfg.Channels[i+1] = osc
	}
	return cfg, nil
}

// pathDefault picks the first receive path's frequency in MHz, falling
// back to the only entry at sites with a single shared oscillator.
func pathDefault(mhz []float64) float64 {
	if len(mhz) > 1 {
		return mhz[1]
	}
	return mhz[0]
}

func scale(vals []float64, factor float64) []float64 {
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = v * factor
	}
	return out
}
