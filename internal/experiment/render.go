package experiment

import (
	"fmt"
	"io"
	"sort"

	"github.com/kstlab/radex/internal/timeline"
)

// TextRenderer writes a plain-text timing report for one subcycle.
// Interval and event times print in microseconds relative to the cycle
// start, which is how controller programs are written and read.
type TextRenderer struct {
	W io.Writer
}

func (r TextRenderer) Render(exp *Experiment, subcycle int) error {
	if subcycle < 1 || subcycle > len(exp.Subcycles) {
		return fmt.Errorf("subcycle %d out of range, the experiment has %d", subcycle, len(exp.Subcycles))
	}
	sc := exp.Subcycles[subcycle-1]

	w := &errWriter{w: r.W}
	w.printf("experiment %s\n", exp.Name)
	w.printf("source     %s\n", exp.Source)
	w.printf("cycle      %s\n", fmtInterval(exp.Cycle))
	w.printf("subcycle   %d of %d  %s\n", sc.Index, len(exp.Subcycles), fmtInterval(sc.Window))
	if exp.FIRStarted {
		w.printf("filtering  starts at %s\n", fmtTime(exp.FIRStart))
	}

	w.printf("\ntransmit\n")
	if len(sc.Transmit) == 0 {
		w.printf("  (none)\n")
	}
	for _, iv := range sc.Transmit {
		w.printf("  %s\n", fmtInterval(iv))
	}

	w.printf("\nreceive\n")
	channels := make([]string, 0, len(sc.Receive))
	for ch := range sc.Receive {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	if len(channels) == 0 {
		w.printf("  (none)\n")
	}
	for _, ch := range channels {
		for _, iv := range sc.Receive[ch] {
			w.printf("  %-4s %s\n", ch, fmtInterval(iv))
		}
	}

	if len(sc.Settings) > 0 {
		w.printf("\nsettings\n")
		names := make([]string, 0, len(sc.Settings))
		for name := range sc.Settings {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			for _, iv := range sc.Settings[name] {
				w.printf("  %-8s %s\n", name, fmtInterval(iv))
			}
		}
	}

	if len(sc.PhaseShifts) > 0 {
		w.printf("\nphase\n")
		for _, ev := range sc.PhaseShifts {
			w.printf("  %s  %3.0f deg\n", fmtTime(ev.Time), ev.Value)
		}
		if sc.BaudLength > 0 {
			w.printf("  baud %s\n", fmtTime(sc.BaudLength))
		}
	}

	if len(sc.Frequencies) > 0 {
		w.printf("\nfrequency\n")
		chs := make([]int, 0, len(sc.Frequencies))
		for ch := range sc.Frequencies {
			chs = append(chs, ch)
		}
		sort.Ints(chs)
		for _, ch := range chs {
			for _, ev := range sc.Frequencies[ch] {
				w.printf("  CH%d  %s  %.4f MHz\n", ch, fmtTime(ev.Time), ev.Value/1e6)
			}
		}
	}
	return w.err
}

func fmtInterval(iv timeline.Interval) string {
	return fmt.Sprintf("%s - %s", fmtTime(iv.Begin), fmtTime(iv.End))
}

func fmtTime(t float64) string {
	return fmt.Sprintf("%.1f us", t*1e6)
}

type errWriter struct {
	w   io.Writer
	err error
}

func (w *errWriter) printf(format string, args ...any) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, format, args...)
}
