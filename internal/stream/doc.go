// Package stream interprets the long-lived JSON response streams returned by
// image pull, push and build calls.
//
// A transport-level success does not mean the operation succeeded: the daemon
// reports failures as records carrying an "error" field in the middle of an
// otherwise healthy stream. Handler watches for that sentinel while an
// Indicator animates a status line, and resolves a Completion exactly once.
package stream
