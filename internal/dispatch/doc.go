// Package dispatch maps task commands onto daemon operations.
//
// A Dispatcher holds a flat table from Command to handler, checked at
// construction to cover the whole vocabulary. Handlers either finish the
// invocation themselves or return a daemon progress stream, which the
// dispatcher hands to a stream.Handler that watches it for error records.
package dispatch
