// Package tlan interprets radar controller programs.
//
// A controller program is a plain-text file with one statement per line,
// toggling named hardware signal lines at microsecond timestamps:
//
//	SETTCR 0
//	AT   40 RFON,PHA0
//	AT  220 RFOFF
//	AT 1500 ALLOFF
//	SETTCR 1505
//	...
//	AT 3010 REP
//
// AT lines execute one or more comma-packed mnemonics at a time relative to
// the time-control register; SETTCR moves the register and delimits
// subcycles; REP ends the cycle. `%` starts a comment.
//
// The interpreter replays a parsed program against per-line interval streams
// and validates that every opened stream is closed before its subcycle ends.
// Mnemonics outside the modeled subset are reported as warnings and skipped,
// since real programs routinely contain hardware details this tool does not
// track.
package tlan
