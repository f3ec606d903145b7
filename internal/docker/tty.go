package docker

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/cli/cli/streams"
	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockertask/internal"
)

// TTY keeps the terminal of an exec process the size of the local one.
type TTY struct {
	client     DockerClient
	execID     string
	size       func() (height, width uint)
	maxRetries int
	retryDelay time.Duration
	writer     internal.Writer
}

// NewTTY creates a TTY for exec process execID sized after out. A failed
// first resize is retried up to maxRetries times with a growing delay, since
// the process may not have its terminal yet.
func NewTTY(client DockerClient, out *streams.Out, execID string, maxRetries int, retryDelay time.Duration, writer internal.Writer) TTY {
	return TTY{
		client:     client,
		execID:     execID,
		size:       out.GetTtySize,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		writer:     writer,
	}
}

// Monitor resizes the exec terminal now and on every SIGWINCH from a
// background goroutine that exits when ctx is done. Callers scope ctx to the
// exec session.
func (t TTY) Monitor(ctx context.Context) error {
	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	go func() {
		defer signal.Stop(winch)
		t.watch(ctx, winch)
	}()

	return nil
}

func (t TTY) watch(ctx context.Context, winch <-chan os.Signal) {
	var retry <-chan time.Time
	attempts := 0
	if err := t.Resize(ctx); err != nil && t.maxRetries > 0 {
		retry = time.After(t.retryDelay)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-winch:
			if t.Resize(ctx) == nil {
				retry = nil
			}
		case <-retry:
			attempts++
			err := t.Resize(ctx)
			switch {
			case err == nil:
				retry = nil
			case attempts >= t.maxRetries:
				retry = nil
				t.writer.Warningf("failed to resize tty of exec %s: %v", t.execID, err)
			default:
				retry = time.After(time.Duration(attempts+1) * t.retryDelay)
			}
		}
	}
}

// Resize matches the exec terminal to the local terminal. A terminal
// reporting zero size is left alone.
func (t TTY) Resize(ctx context.Context) error {
	height, width := t.size()
	if height == 0 && width == 0 {
		return nil
	}

	_, err := t.client.ExecResize(ctx, t.execID, client.ExecResizeOptions{
		Height: height,
		Width:  width,
	})
	return err
}
