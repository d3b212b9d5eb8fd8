// Package scheduler provides the timer scheduling loop for micetimer.
// It owns one countdown source per timer, all registered with a single
// multiplexer, and runs on one goroutine that blocks only in the
// multiplexer wait.
//
// When a source fires, the loop drains it, dispatches the timer's command
// synchronously and then re-arms the source as a fresh one-shot of the
// timer's interval, measured from the moment the command finished.
// Expirations that pile up while the loop is busy collapse into a single
// run; missed cycles are not caught up. A long-running command therefore
// delays every other due timer until it returns.
//
// Timers without an interval fire once. A timer whose re-arm fails goes
// dormant for the rest of the process lifetime.
package scheduler
