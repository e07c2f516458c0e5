package elan

import (
	"fmt"
	"strconv"
	"strings"
)

// segment is a slice of a word's text, either literal or a bracketed
// command to evaluate in place.
type segment struct {
	text    string
	bracket bool
}

// splitBrackets cuts s into literal and bracket-command segments. Brackets
// preceded by a backslash or nested inside braces stay literal. An
// unterminated bracket is kept as literal text.
func splitBrackets(s string) []segment {
	var segs []segment
	var lit strings.Builder
	runes := []rune(s)
	braces := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			lit.WriteRune(r)
			lit.WriteRune(runes[i+1])
			i++
		case r == '{':
			braces++
			lit.WriteRune(r)
		case r == '}' && braces > 0:
			braces--
			lit.WriteRune(r)
		case r == '[' && braces == 0:
			end := matchBracket(runes, i)
			if end < 0 {
				lit.WriteRune(r)
				continue
			}
			if lit.Len() > 0 {
				segs = append(segs, segment{text: lit.String()})
				lit.Reset()
			}
			segs = append(segs, segment{text: string(runes[i+1 : end]), bracket: true})
			i = end
		default:
			lit.WriteRune(r)
		}
	}
	if lit.Len() > 0 {
		segs = append(segs, segment{text: lit.String()})
	}
	return segs
}

// matchBracket returns the index of the ] matching the [ at start, or -1.
func matchBracket(runes []rune, start int) int {
	depth := 0
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// substitute runs full word substitution in scope si: bracketed commands
// first, then variables, then backslash escapes.
func (it *Interp) substitute(si int, s string) (string, error) {
	s, err := it.substituteCommands(si, s)
	if err != nil {
		return "", err
	}
	s, err = it.substituteVariables(si, s, false)
	if err != nil {
		return "", err
	}
	return substituteBackslashes(s)
}

func (it *Interp) substituteCommands(si int, s string) (string, error) {
	if !strings.Contains(s, "[") {
		return s, nil
	}
	var b strings.Builder
	for _, seg := range splitBrackets(s) {
		if !seg.bracket {
			b.WriteString(seg.text)
			continue
		}
		res, err := it.evalScript(si, seg.text, "bracket")
		if err != nil {
			return "", err
		}
		b.WriteString(res.val)
	}
	return b.String(), nil
}

// substituteVariables replaces $name and ${name} references with variable
// values. A dollar sign not followed by a name stays literal, so $$a is a
// dollar sign and then the value of a. With quote set, values that do not
// parse as numbers are emitted as quoted string literals so they can feed
// an arithmetic expression.
func (it *Interp) substituteVariables(si int, s string, quote bool) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			b.WriteRune(r)
			b.WriteRune(runes[i+1])
			i++
		case r == '$':
			name, next := scanVarName(runes, i+1)
			if name == "" {
				b.WriteByte('$')
				continue
			}
			val, ok := it.scopes[si].lookup(name)
			if !ok {
				return "", &VarError{Name: name}
			}
			b.WriteString(renderValue(val.String(), quote))
			i = next - 1
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// scanVarName reads a variable name starting at index i, handling the
// ${name} form. It returns the name and the index just past it.
func scanVarName(runes []rune, i int) (string, int) {
	if i < len(runes) && runes[i] == '{' {
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == '}' {
				return string(runes[i+1 : j]), j + 1
			}
		}
		return "", i
	}
	j := i
	for j < len(runes) && isVarRune(runes[j]) {
		j++
	}
	return string(runes[i:j]), j
}

func isVarRune(r rune) bool {
	return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func renderValue(s string, quote bool) string {
	if !quote {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return strconv.Quote(s)
}

// substituteBackslashes resolves the supported escapes. The \x, \o, \u and
// \U forms are not supported and fail rather than corrupt the word. Any
// other escaped character is kept without the backslash.
func substituteBackslashes(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}
	var b strings.Builder
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '\\' {
			b.WriteRune(r)
			continue
		}
		if i+1 >= len(runes) {
			b.WriteRune(r)
			continue
		}
		i++
		switch c := runes[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'x', 'o', 'u', 'U':
			return "", fmt.Errorf("backslash escape \\%c is not supported", c)
		default:
			b.WriteRune(c)
		}
	}
	return b.String(), nil
}
