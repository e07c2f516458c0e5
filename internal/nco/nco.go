// Package nco handles the numerically controlled oscillator configuration of
// the receiver channels: parsing .nco table files and deriving the center
// frequency a channel sees from the two local oscillators and the selected
// table entry.
//
// The incoming signal is mixed down twice before it reaches a channel board,
// so the center frequency recorded for a channel is lo1 + lo2 − f_nco.
package nco

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ncoVersion is the only table file format this tool understands.
const ncoVersion = "0.1"

// ErrVersion is returned when a table file does not start with the expected
// NCOPAR_VS version line.
var ErrVersion = errors.New("missing or unsupported NCOPAR_VS version line")

// ParseTable parses the text of an .nco file into the frequency table, in
// MHz, indexed by NCO memory line.
//
// The first non-blank line must be `NCOPAR_VS 0.1`. Every following line is
// either a `%` comment or an `NCO <index> <frequency>` triple, with indices
// counting up from zero and an optional `%` comment suffix.
func ParseTable(text string) ([]float64, error) {
	var freqs []float64
	sawVersion := false

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if !sawVersion {
			fields := strings.Fields(line)
			if len(fields) != 2 || fields[0] != "NCOPAR_VS" || fields[1] != ncoVersion {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrVersion)
			}
			sawVersion = true
			continue
		}

		if strings.HasPrefix(line, "%") {
			continue
		}
		if idx := strings.Index(line, "%"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}

		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "NCO" {
			return nil, fmt.Errorf("line %d: malformed NCO triple %q", lineNo, line)
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil || idx != len(freqs) {
			return nil, fmt.Errorf("line %d: NCO index %q, want %d", lineNo, fields[1], len(freqs))
		}
		freq, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid frequency %q: %w", lineNo, fields[2], err)
		}
		freqs = append(freqs, freq)
	}

	if !sawVersion {
		return nil, ErrVersion
	}
	return freqs, nil
}
