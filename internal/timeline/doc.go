// Package timeline holds the time-domain data structures the controller
// interpreter builds its output from: closed intervals, named on/off streams,
// timed event lists, the phase shifter history, per-channel frequency series,
// and the per-subcycle snapshot collector.
//
// All times are seconds. The controller language works at microsecond
// resolution, so every duration in here is exactly representable; the baud
// estimator additionally rounds to whole nanoseconds before taking GCDs.
package timeline
