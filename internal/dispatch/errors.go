package dispatch

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidInvocation marks invocations rejected before any daemon call:
// a missing command or a missing required field.
var ErrInvalidInvocation = errors.New("invalid invocation")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInvocation, fmt.Sprintf(format, args...))
}

// UnsupportedCommandError is returned for a command outside the vocabulary.
type UnsupportedCommandError struct {
	Command string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q\nSupported commands: %s", e.Command, vocabularyList())
}

// DaemonCallError wraps a failed daemon call.
type DaemonCallError struct {
	Command Command
	Err     error
}

func (e *DaemonCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
}

func (e *DaemonCallError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err rejected the invocation itself rather
// than reporting a daemon failure.
func IsValidation(err error) bool {
	var unsupported *UnsupportedCommandError
	return errors.Is(err, ErrInvalidInvocation) || errors.As(err, &unsupported)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
