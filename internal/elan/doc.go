// Package elan interprets the console scripting language operators use to
// configure and launch radar experiments.
//
// The language is a Tcl dialect: commands are lists of words separated by
// newlines or semicolons, words are bare, double-quoted (substitution
// applies), brace-delimited (taken literally) or bracket-delimited (a nested
// command whose result replaces the word). Substitution runs commands first,
// then variables, then backslash escapes.
//
// The interpreter executes commands against a tree of scopes owned by an
// arena: a procedure call clones the caller's variables into a child scope,
// so callees never alias caller state. Domain commands from the EROS console
// catalog mutate a small piece of persistent state, most importantly which
// compiled controller file was loaded and how the receiver oscillators are
// configured. That state is the package's real output: it tells the
// controller interpreter what to replay.
package elan
