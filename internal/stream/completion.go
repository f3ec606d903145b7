package stream

import (
	"context"
	"sync"
)

// Completion is a one-shot latch holding the outcome of an invocation. The
// first call to Succeed or Fail resolves it; every later call is ignored and
// reports false, so no code path can overwrite an outcome once observed.
type Completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Succeed resolves the completion successfully. It returns false if the
// completion was already resolved.
func (c *Completion) Succeed() bool {
	return c.resolve(nil)
}

// Fail resolves the completion with err. It returns false if the completion
// was already resolved. A nil err is treated as success.
func (c *Completion) Fail(err error) bool {
	return c.resolve(err)
}

func (c *Completion) resolve(err error) bool {
	fired := false
	c.once.Do(func() {
		c.err = err
		fired = true
		close(c.done)
	})
	return fired
}

// Done returns a channel that is closed once the completion resolves.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Resolved reports whether Succeed or Fail has been called.
func (c *Completion) Resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Err returns the failure the completion resolved with, or nil if it
// succeeded or has not resolved yet.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the completion resolves or ctx is done.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
