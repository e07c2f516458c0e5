package elan

import (
	"fmt"
	"strconv"
	"strings"
)

type builtinFunc func(it *Interp, si int, args []string) (result, error)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"set":       (*Interp).cmdSet,
		"expr":      (*Interp).cmdExpr,
		"iftest":    (*Interp).cmdIf,
		"forloop":   (*Interp).cmdFor,
		"incr":      (*Interp).cmdIncr,
		"append":    (*Interp).cmdAppend,
		"list":      (*Interp).cmdList,
		"llength":   (*Interp).cmdLlength,
		"lindex":    (*Interp).cmdLindex,
		"proc":      (*Interp).cmdProc,
		"puts":      (*Interp).cmdPuts,
		"globalvar": (*Interp).cmdGlobal,
		"returnval": (*Interp).cmdReturn,
		"eval":      (*Interp).cmdEval,
		"subst":     (*Interp).cmdSubst,
		"source":    (*Interp).cmdSource,
		"split":     (*Interp).cmdSplit,
		"string":    (*Interp).cmdString,
		"info":      (*Interp).cmdInfo,
	}
}

func (it *Interp) cmdSet(si int, args []string) (result, error) {
	switch len(args) {
	case 1:
		v, ok := it.scopes[si].lookup(args[0])
		if !ok {
			return result{}, &VarError{Name: args[0]}
		}
		return result{val: v.String()}, nil
	case 2:
		it.scopes[si].set(args[0], strValue(args[1]))
		return result{val: args[1]}, nil
	default:
		return result{}, fmt.Errorf("set: want a name and at most one value, got %d words", len(args))
	}
}

// truthy implements the condition convention of iftest and forloop.
func truthy(s string) bool {
	switch s {
	case "1", "true", "True", "yes":
		return true
	}
	return false
}

// cmdIf handles iftest with any number of elseif clauses and an optional
// else. The filler words "then" and "elseif" separate conditions from
// bodies; "else" acts as an always-true condition.
func (it *Interp) cmdIf(si int, args []string) (result, error) {
	type clause struct {
		cond string
		body string
		els  bool
	}
	var clauses []clause
	i := 0
	for i < len(args) {
		w := args[i]
		switch w {
		case "then", "elseif":
			i++
			continue
		case "else":
			if i+1 >= len(args) {
				return result{}, fmt.Errorf("iftest: else clause has no body")
			}
			clauses = append(clauses, clause{body: args[i+1], els: true})
			i += 2
		default:
			if i+1 >= len(args) {
				return result{}, fmt.Errorf("iftest: condition %q has no body", w)
			}
			body := args[i+1]
			if body == "then" {
				if i+2 >= len(args) {
					return result{}, fmt.Errorf("iftest: condition %q has no body", w)
				}
				body = args[i+2]
				i++
			}
			clauses = append(clauses, clause{cond: w, body: body})
			i += 2
		}
	}
	if len(clauses) == 0 {
		return result{}, fmt.Errorf("iftest: missing condition")
	}
	for _, c := range clauses {
		take := c.els
		if !take {
			v, err := it.exprEval(si, []string{c.cond})
			if err != nil {
				return result{}, err
			}
			take = truthy(v)
		}
		if take {
			return it.evalScript(si, c.body, "iftest body")
		}
	}
	return result{}, nil
}

// cmdFor is the classic four-argument loop. The iteration count is capped
// so a script with a broken exit condition fails instead of hanging the
// console.
func (it *Interp) cmdFor(si int, args []string) (result, error) {
	if len(args) != 4 {
		return result{}, fmt.Errorf("forloop: want start, test, next and body, got %d words", len(args))
	}
	start, test, next, body := args[0], args[1], args[2], args[3]
	if _, err := it.evalScript(si, start, "forloop start"); err != nil {
		return result{}, err
	}
	for i := 0; i < maxLoopIterations; i++ {
		v, err := it.exprEval(si, []string{test})
		if err != nil {
			return result{}, err
		}
		if !truthy(v) {
			return result{}, nil
		}
		res, err := it.evalScript(si, body, "forloop body")
		if err != nil {
			return result{}, err
		}
		if res.flow != flowNormal {
			return res, nil
		}
		if _, err := it.evalScript(si, next, "forloop next"); err != nil {
			return result{}, err
		}
	}
	return result{}, fmt.Errorf("forloop: exceeded %d iterations", maxLoopIterations)
}

func (it *Interp) cmdIncr(si int, args []string) (result, error) {
	if len(args) < 1 || len(args) > 2 {
		return result{}, fmt.Errorf("incr: want a name and an optional increment")
	}
	v, ok := it.scopes[si].lookup(args[0])
	if !ok {
		return result{}, &VarError{Name: args[0]}
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.String()))
	if err != nil {
		return result{}, fmt.Errorf("incr: %q is not an integer", v.String())
	}
	step := 1
	if len(args) == 2 {
		step, err = strconv.Atoi(args[1])
		if err != nil {
			return result{}, fmt.Errorf("incr: increment %q is not an integer", args[1])
		}
	}
	out := strconv.Itoa(n + step)
	it.scopes[si].set(args[0], strValue(out))
	return result{val: out}, nil
}

func (it *Interp) cmdAppend(si int, args []string) (result, error) {
	if len(args) < 1 {
		return result{}, fmt.Errorf("append: missing variable name")
	}
	var elems []string
	if v, ok := it.scopes[si].lookup(args[0]); ok {
		elems = v.fields()
	}
	elems = append(elems, args[1:]...)
	v := listValue(elems)
	it.scopes[si].set(args[0], v)
	return result{val: v.String()}, nil
}

func (it *Interp) cmdList(si int, args []string) (result, error) {
	return result{val: listValue(args).String()}, nil
}

func (it *Interp) cmdLlength(si int, args []string) (result, error) {
	if len(args) != 1 {
		return result{}, fmt.Errorf("llength: want one list")
	}
	return result{val: strconv.Itoa(len(strings.Fields(args[0])))}, nil
}

func (it *Interp) cmdLindex(si int, args []string) (result, error) {
	if len(args) != 2 {
		return result{}, fmt.Errorf("lindex: want a list and an index")
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return result{}, fmt.Errorf("lindex: index %q is not an integer", args[1])
	}
	elems := strings.Fields(args[0])
	if idx < 0 || idx >= len(elems) {
		return result{}, fmt.Errorf("lindex: index %d out of range for %d elements", idx, len(elems))
	}
	return result{val: elems[idx]}, nil
}

// cmdProc defines a procedure in the current scope. Parameters are bare
// names or {name default} pairs; defaults must trail required parameters
// and a final "args" parameter makes the procedure variadic.
func (it *Interp) cmdProc(si int, args []string) (result, error) {
	if len(args) != 3 {
		return result{}, fmt.Errorf("proc: want a name, a parameter list and a body")
	}
	name, paramSpec, body := args[0], args[1], args[2]
	words, err := ParseWords(paramSpec, "proc "+name)
	if err != nil {
		return result{}, err
	}
	p := &proc{name: name, body: body}
	seenDefault := false
	for i, w := range words {
		switch w.Env {
		case EnvBrace:
			pair, err := ParseWords(w.Text, "proc "+name)
			if err != nil {
				return result{}, err
			}
			if len(pair) != 2 {
				return result{}, fmt.Errorf("proc %s: parameter %q must be a name and a default", name, w.Text)
			}
			p.params = append(p.params, param{name: pair[0].Text, def: pair[1].Text, hasDef: true})
			seenDefault = true
		case EnvBare:
			if w.Text == "args" && i == len(words)-1 {
				p.params = append(p.params, param{name: "args"})
				p.variadic = true
				continue
			}
			if seenDefault {
				return result{}, fmt.Errorf("proc %s: required parameter %q follows a default", name, w.Text)
			}
			p.params = append(p.params, param{name: w.Text})
		default:
			return result{}, fmt.Errorf("proc %s: bad parameter %q", name, w.Text)
		}
	}
	it.scopes[si].procs[name] = p
	return result{}, nil
}

func (it *Interp) cmdPuts(si int, args []string) (result, error) {
	newline := true
	if len(args) > 0 && args[0] == "-nonewline" {
		newline = false
		args = args[1:]
	}
	text := strings.Join(args, " ")
	if newline {
		text += "\n"
	}
	if _, err := it.out.Write([]byte(text)); err != nil {
		return result{}, fmt.Errorf("puts: %w", err)
	}
	return result{}, nil
}

// cmdGlobal is a stub. Scopes copy the caller's variables on entry, so the
// names a script declares global are already visible; writes do not
// propagate back, which the experiment scripts in use never rely on.
func (it *Interp) cmdGlobal(si int, args []string) (result, error) {
	it.log.Debug("globalvar declaration ignored", "names", args)
	return result{}, nil
}

func (it *Interp) cmdReturn(si int, args []string) (result, error) {
	return result{val: strings.Join(args, " "), flow: flowReturn}, nil
}

func (it *Interp) cmdEval(si int, args []string) (result, error) {
	return it.evalScript(si, strings.Join(args, " "), "eval")
}

func (it *Interp) cmdSubst(si int, args []string) (result, error) {
	if len(args) == 0 {
		return result{}, fmt.Errorf("subst: missing string")
	}
	s, err := it.substitute(si, args[len(args)-1])
	if err != nil {
		return result{}, err
	}
	return result{val: s}, nil
}

// cmdSource logs and skips. Replaying arbitrary site files is out of the
// question offline; the experiment file itself is loaded through
// runexperiment instead.
func (it *Interp) cmdSource(si int, args []string) (result, error) {
	it.log.Info("not executing source file", "args", args)
	return result{}, nil
}

func (it *Interp) cmdSplit(si int, args []string) (result, error) {
	if len(args) != 2 {
		return result{}, fmt.Errorf("split: want a string and separator characters")
	}
	str, seps := args[0], args[1]
	if seps == "" {
		return result{val: strings.Join(strings.Fields(str), " ")}, nil
	}
	split := func(r rune) bool { return strings.ContainsRune(seps, r) }
	return result{val: listValue(strings.FieldsFunc(str, split)).String()}, nil
}

func (it *Interp) cmdString(si int, args []string) (result, error) {
	if len(args) < 2 {
		return result{}, fmt.Errorf("string: want a subcommand and a string")
	}
	switch args[0] {
	case "tolower":
		return result{val: strings.ToLower(args[1])}, nil
	default:
		return result{}, fmt.Errorf("string: unsupported subcommand %q", args[0])
	}
}

func (it *Interp) cmdInfo(si int, args []string) (result, error) {
	if len(args) != 2 || args[0] != "exists" {
		return result{}, fmt.Errorf("info: only 'info exists name' is supported")
	}
	if _, ok := it.scopes[si].lookup(args[1]); ok {
		return result{val: "1"}, nil
	}
	return result{val: "0"}, nil
}
