package elan

import "strings"

// value is a variable's contents. List-building commands keep the elements
// so later list operations stay cheap; everything else sees the elements
// joined with single spaces.
type value struct {
	str  string
	list []string
	isL  bool
}

func strValue(s string) value   { return value{str: s} }
func listValue(l []string) value { return value{list: l, isL: true} }

func (v value) String() string {
	if v.isL {
		return strings.Join(v.list, " ")
	}
	return v.str
}

// fields returns the value as list elements.
func (v value) fields() []string {
	if v.isL {
		return append([]string(nil), v.list...)
	}
	return strings.Fields(v.str)
}

// logEntry records one executed command in a scope: the substituted words,
// the result, and the index of the child scope a procedure call created
// (-1 otherwise). The log is what lets callers recover which domain
// commands a script issued, and with what arguments.
type logEntry struct {
	words  []string
	result string
	child  int
}

// scope holds the variables and procedures visible to a running script.
// parent indexes the interpreter's arena, -1 for the root scope. Variables
// are private to the scope; procedures resolve up the parent chain.
type scope struct {
	parent int
	vars   map[string]value
	procs  map[string]*proc
	log    []logEntry
}

func newScope(parent int) *scope {
	return &scope{
		parent: parent,
		vars:   make(map[string]value),
		procs:  make(map[string]*proc),
	}
}

func (sc *scope) lookup(name string) (value, bool) {
	v, ok := sc.vars[name]
	return v, ok
}

func (sc *scope) set(name string, v value) {
	sc.vars[name] = v
}

// param is one procedure parameter, possibly with a default value.
type param struct {
	name   string
	def    string
	hasDef bool
}

type proc struct {
	name     string
	params   []param
	variadic bool
	body     string
}

// findProc resolves a procedure by walking the parent chain starting at
// scope si.
func (it *Interp) findProc(si int, name string) (*proc, bool) {
	for si >= 0 {
		sc := it.scopes[si]
		if p, ok := sc.procs[name]; ok {
			return p, true
		}
		si = sc.parent
	}
	return nil, false
}

// childScope allocates a scope whose variables are a copy of the caller's.
func (it *Interp) childScope(parent int) int {
	sc := newScope(parent)
	for k, v := range it.scopes[parent].vars {
		sc.vars[k] = v
	}
	it.scopes = append(it.scopes, sc)
	return len(it.scopes) - 1
}
