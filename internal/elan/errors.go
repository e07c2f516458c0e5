package elan

import (
	"fmt"
	"strings"
)

// ScriptError is an error with a position in the script that caused it. File
// is the script name shown to the operator, Line is 1-based, Char1 and Char2
// delimit the offending characters on that line (0 when unknown).
type ScriptError struct {
	File  string
	Line  int
	Char1 int
	Char2 int
	Msg   string
}

func (e *ScriptError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
	} else {
		b.WriteString("console")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ", line %d", e.Line)
	}
	if e.Char1 > 0 {
		if e.Char2 > e.Char1 {
			fmt.Fprintf(&b, ", chars %d-%d", e.Char1, e.Char2)
		} else {
			fmt.Fprintf(&b, ", char %d", e.Char1)
		}
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

func scriptErrf(file string, line, char1, char2 int, format string, args ...any) *ScriptError {
	return &ScriptError{
		File:  file,
		Line:  line,
		Char1: char1,
		Char2: char2,
		Msg:   fmt.Sprintf(format, args...),
	}
}

// VarError reports a reference to a variable that has no value in the
// current scope. The interpreter wraps it with the script position.
type VarError struct {
	Name string
}

func (e *VarError) Error() string {
	return fmt.Sprintf("no such variable %q", e.Name)
}
