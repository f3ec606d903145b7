// Package internal contains shared types and utilities for dockertask.
//
// It provides configuration loading, the Writer output sink, opaque option
// maps, invocation sessions, and cleanup orchestration used by the dispatch
// and docker packages.
package internal
