package elan

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// maxLoopIterations bounds every for loop so a script cannot spin forever.
const maxLoopIterations = 1000

// flowKind distinguishes a plain result from control flow escaping the
// current script.
type flowKind int

const (
	flowNormal flowKind = iota
	// flowReturn unwinds to the nearest procedure boundary.
	flowReturn
	// flowJump abandons the current script in favor of a named block.
	flowJump
)

type result struct {
	val  string
	flow flowKind
	jump string
}

// Options configures an interpreter.
type Options struct {
	// Out receives puts output. Defaults to io.Discard.
	Out io.Writer
	// Logger defaults to slog.Default.
	Logger *slog.Logger
	// Console is the EROS state domain commands act on. Nil disables the
	// domain command catalog.
	Console *Console
}

// Interp runs console scripts. The zero value is not usable, call New.
type Interp struct {
	scopes  []*scope
	out     io.Writer
	log     *slog.Logger
	console *Console
	pending int
}

// New returns an interpreter with a single empty root scope.
func New(opts Options) *Interp {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	it := &Interp{
		out:     out,
		log:     logger,
		console: opts.Console,
		pending: -1,
	}
	it.scopes = append(it.scopes, newScope(-1))
	if it.console != nil {
		it.console.seedVars(it)
	}
	return it
}

// Console returns the EROS state the interpreter mutates, or nil.
func (it *Interp) Console() *Console { return it.console }

// Run executes a script in the root scope and returns the result of its
// last command.
func (it *Interp) Run(script, name string) (string, error) {
	res, err := it.evalScript(0, script, name)
	if err != nil {
		return "", err
	}
	return res.val, nil
}

// SetVar sets a variable in the root scope.
func (it *Interp) SetVar(name, val string) {
	it.scopes[0].set(name, strValue(val))
}

// Var reads a variable from the root scope.
func (it *Interp) Var(name string) (string, bool) {
	v, ok := it.scopes[0].lookup(name)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// evalScript parses and runs a script in scope si. Control flow other than
// flowNormal stops execution and propagates to the caller.
func (it *Interp) evalScript(si int, script, name string) (result, error) {
	cmds, err := Parse(script, name)
	if err != nil {
		return result{}, err
	}
	var last result
	for _, cmd := range cmds {
		if len(cmd.Words) == 0 {
			continue
		}
		res, err := it.execute(si, cmd)
		if err != nil {
			return result{}, err
		}
		if res.flow != flowNormal {
			return res, nil
		}
		last = res
	}
	return last, nil
}

// keyword remaps for names the console grammar reserves. Scripts use the
// long forms; the short Tcl names are accepted and rewritten.
var keywordRemap = map[string]string{
	"if":     "iftest",
	"return": "returnval",
	"global": "globalvar",
	"for":    "forloop",
}

// execute substitutes one command's words and dispatches it.
func (it *Interp) execute(si int, cmd Command) (result, error) {
	words := make([]string, 0, len(cmd.Words))
	for _, w := range cmd.Words {
		switch w.Env {
		case EnvBrace:
			words = append(words, w.Text)
		case EnvBracket:
			res, err := it.evalScript(si, w.Text, "bracket")
			if err != nil {
				return result{}, it.position(err, cmd, w)
			}
			if res.flow != flowNormal {
				return res, nil
			}
			words = append(words, res.val)
		default:
			s, err := it.substitute(si, w.Text)
			if err != nil {
				return result{}, it.position(err, cmd, w)
			}
			words = append(words, s)
		}
	}
	name := words[0]
	if mapped, ok := keywordRemap[name]; ok {
		name = mapped
	}
	args := words[1:]

	sc := it.scopes[si]
	entry := logEntry{words: append([]string{name}, args...), child: -1}
	sc.log = append(sc.log, logEntry{})
	slot := len(sc.log) - 1

	res, err := it.dispatch(si, name, args, cmd)
	if err != nil {
		return result{}, it.position(err, cmd, cmd.Words[0])
	}
	entry.result = res.val
	if p, ok := popPendingChild(it); ok {
		entry.child = p
	}
	sc.log[slot] = entry
	return res, nil
}

// pendingChild carries the scope index a procedure call created up to the
// caller's log entry.
func popPendingChild(it *Interp) (int, bool) {
	if it.pending < 0 {
		return -1, false
	}
	p := it.pending
	it.pending = -1
	return p, true
}

func (it *Interp) dispatch(si int, name string, args []string, cmd Command) (result, error) {
	if fn, ok := builtins[name]; ok {
		return fn(it, si, args)
	}
	if p, ok := it.findProc(si, name); ok {
		return it.callProc(si, p, args)
	}
	if it.console != nil {
		if fn, ok := domainCommands[name]; ok {
			return fn(it, si, args)
		}
	}
	return result{}, fmt.Errorf("unknown command %q", name)
}

// callProc binds arguments into a fresh child scope and runs the body.
// A trailing "args" parameter collects surplus arguments; otherwise the
// call must match the signature exactly (defaults fill from the left of
// the optional tail).
func (it *Interp) callProc(si int, p *proc, args []string) (result, error) {
	child := it.childScope(si)
	sc := it.scopes[child]

	n := len(p.params)
	for i, prm := range p.params {
		if p.variadic && i == n-1 {
			sc.set(prm.name, strValue(strings.Join(args[min(i, len(args)):], " ")))
			break
		}
		if i < len(args) {
			sc.set(prm.name, strValue(args[i]))
		} else if prm.hasDef {
			sc.set(prm.name, strValue(prm.def))
		} else {
			return result{}, fmt.Errorf("%s: missing argument %q", p.name, prm.name)
		}
	}
	if !p.variadic && len(args) > n {
		return result{}, fmt.Errorf("%s: too many arguments, want %d, got %d", p.name, n, len(args))
	}

	res, err := it.evalScript(child, p.body, "proc "+p.name)
	if err != nil {
		return result{}, err
	}
	it.pending = child
	if res.flow == flowReturn {
		return result{val: res.val}, nil
	}
	return res, nil
}

// position attaches a command's source span to errors that lack one.
func (it *Interp) position(err error, cmd Command, w Word) error {
	var se *ScriptError
	if errors.As(err, &se) {
		return err
	}
	return &ScriptError{
		File:  cmd.File,
		Line:  w.Line,
		Char1: cmd.Char1,
		Char2: cmd.Char2,
		Msg:   err.Error(),
	}
}

// Callings walks the root scope's log, descending into procedure calls,
// and collects every executed command whose name is in names (all commands
// when names is empty).
func (it *Interp) Callings(names ...string) [][]string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out [][]string
	it.walkLog(0, want, &out)
	return out
}

func (it *Interp) walkLog(si int, want map[string]bool, out *[][]string) {
	for _, e := range it.scopes[si].log {
		if len(e.words) == 0 {
			continue
		}
		if len(want) == 0 || want[e.words[0]] {
			*out = append(*out, append([]string(nil), e.words...))
		}
		if e.child >= 0 {
			it.walkLog(e.child, want, out)
		}
	}
}
