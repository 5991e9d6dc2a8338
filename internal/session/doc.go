// Package session models one scanpi invocation: the chosen format and
// resolution, the remote batch directory, and an ordered list of page
// results moving through pending, scanned, transferred, and failed states.
//
// The session is created per run, mutated only by the workflow controller,
// and summarized into the history store on every status transition.
package session
