// Package dispatch routes parsed text commands to registered handlers.
//
// A Dispatcher runs the full pipeline for one input line: parse, validate,
// permission check, cache lookup, handler execution, cache write, history
// append and observer notification. Failures at any stage surface as
// structured results rather than raw errors or panics.
package dispatch
