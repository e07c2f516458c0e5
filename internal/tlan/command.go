package tlan

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// microsecond scales the plain-decimal time literals of controller programs
// to seconds.
const microsecond = 1e-6

// Error is a structural error in a controller program, tagged with the
// offending source line when one is known.
type Error struct {
	Line int
	Msg  string
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("controller program line %d: %s", e.Line, e.Msg)
	}
	return "controller program: " + e.Msg
}

func errAt(line int, format string, args ...any) *Error {
	return &Error{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Command is one controller instruction: mnemonic Mnemonic executed at
// subcycle-relative time T (seconds). Line is the source line, kept for error
// reporting.
type Command struct {
	T        float64
	Mnemonic string
	Line     int
}

func (c Command) String() string {
	return fmt.Sprintf("%d: %g %s", c.Line, c.T/microsecond, c.Mnemonic)
}

// ParseLine parses a single source line into its commands.
//
// Two statement forms exist: `AT <time> <mnemonics>...`, where mnemonics may
// be comma-packed and all share the given time, and `SETTCR <time>`, which
// yields a single synthetic SETTCR command. Text after `%` is a comment.
// Blank lines yield no commands.
func ParseLine(line string, lineNo int) ([]Command, error) {
	code, _, _ := strings.Cut(line, "%")
	args := strings.Fields(code)
	if len(args) == 0 {
		return nil, nil
	}

	switch args[0] {
	case "AT":
		if len(args) < 3 {
			return nil, errAt(lineNo, "line starting with 'AT' must include time and command(s)")
		}
		t, err := parseTime(args[1], lineNo)
		if err != nil {
			return nil, err
		}
		var cmds []Command
		for _, arg := range args[2:] {
			for _, mnemonic := range strings.Split(arg, ",") {
				if mnemonic == "" {
					continue
				}
				cmds = append(cmds, Command{T: t, Mnemonic: mnemonic, Line: lineNo})
			}
		}
		return cmds, nil

	case "SETTCR":
		if len(args) != 2 {
			return nil, errAt(lineNo, "SETTCR takes exactly one time argument")
		}
		t, err := parseTime(args[1], lineNo)
		if err != nil {
			return nil, err
		}
		return []Command{{T: t, Mnemonic: "SETTCR", Line: lineNo}}, nil

	default:
		return nil, errAt(lineNo, "line must start with 'AT' or 'SETTCR', use '%%' for comments")
	}
}

func parseTime(s string, lineNo int) (float64, error) {
	us, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errAt(lineNo, "invalid time %q: %v", s, err)
	}
	return us * microsecond, nil
}

// ParseProgram parses a whole controller program in file order. Parsing stops
// once a REP mnemonic has been emitted: the hardware never reaches anything
// after it.
func ParseProgram(text string) ([]Command, error) {
	var cmds []Command
	for i, line := range strings.Split(text, "\n") {
		lineCmds, err := ParseLine(line, i+1)
		if err != nil {
			return nil, err
		}
		for _, cmd := range lineCmds {
			cmds = append(cmds, cmd)
			if cmd.Mnemonic == "REP" {
				return cmds, nil
			}
		}
	}
	return cmds, nil
}

// ParseFile reads and parses the controller program at path.
func ParseFile(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read controller program: %w", err)
	}
	return ParseProgram(string(data))
}
