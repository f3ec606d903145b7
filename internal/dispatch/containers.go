package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/ryanmoran/dockertask/internal/format"
	"golang.org/x/sync/errgroup"
)

// containerAction handles the commands that act on an existing container.
// All of them require the container ID before branching on the action.
func (d *Dispatcher) containerAction(command Command) HandlerFunc {
	return func(ctx context.Context, engine Engine, inv Invocation) (Outcome, error) {
		if inv.ID == "" {
			return Outcome{}, invalid("%s requires a container id", command)
		}

		switch command {
		case CommandRm:
			d.logger.Debug("rm performs no action", "id", inv.ID)
			return Outcome{}, nil
		case CommandStart:
			return Outcome{}, d.lifecycle(engine.StartContainer(ctx, inv.ID, inv.Options))
		case CommandStop:
			return Outcome{}, d.lifecycle(engine.StopContainer(ctx, inv.ID, inv.Options))
		case CommandKill:
			return Outcome{}, d.lifecycle(engine.KillContainer(ctx, inv.ID, inv.Options))
		case CommandRestart:
			return Outcome{}, d.lifecycle(engine.RestartContainer(ctx, inv.ID, inv.Options))
		case CommandInspect:
			return Outcome{}, d.inspect(ctx, engine, inv)
		case CommandExec:
			return Outcome{}, d.exec(ctx, engine, inv)
		case CommandLogs:
			return Outcome{}, d.logs(ctx, engine, inv)
		case CommandStats:
			return Outcome{}, d.stats(ctx, engine, inv)
		default:
			return Outcome{}, &UnsupportedCommandError{Command: command.String()}
		}
	}
}

func (d *Dispatcher) lifecycle(message string, err error) error {
	if err != nil {
		return err
	}
	if message == "" {
		message = "Success!"
	}
	d.writer.Successf("%s", message)
	return nil
}

func (d *Dispatcher) inspect(ctx context.Context, engine Engine, inv Invocation) error {
	raw, err := engine.InspectContainer(ctx, inv.ID, inv.Options)
	if err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		return fmt.Errorf("failed to format inspect result: %w", err)
	}
	indented.WriteByte('\n')

	_, err = indented.WriteTo(d.output(inv))
	return err
}

// exec runs a process in the container. Stdin is fed from the process's
// standard input when AttachStdin is set; output is forwarded when
// AttachStdout or AttachStderr is set. It returns once the output ends, and
// the terminal resize watcher and stdin pump stop with it.
func (d *Dispatcher) exec(ctx context.Context, engine Engine, inv Invocation) error {
	execID, err := engine.CreateExec(ctx, inv.ID, inv.Options)
	if err != nil {
		return err
	}

	session, err := engine.StartExec(ctx, execID, inv.Options)
	if err != nil {
		return err
	}
	defer session.Close()

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	attachStdin := inv.Options.Bool("AttachStdin")
	forward := inv.Options.Bool("AttachStdout") || inv.Options.Bool("AttachStderr")
	out := d.output(inv)

	if session.TTY {
		if err := engine.MonitorExecTTY(execCtx, execID, d.out, d.writer); err != nil {
			return fmt.Errorf("failed to monitor tty size: %w", err)
		}
	}

	if attachStdin && session.TTY {
		if err := d.in.SetRawTerminal(); err != nil {
			return fmt.Errorf("failed to set stdin to raw terminal mode: %w\nYour terminal may not support TTY operations", err)
		}
		defer d.in.RestoreTerminal()
	}

	g, gctx := errgroup.WithContext(execCtx)
	outputDone := make(chan error, 1)

	if attachStdin {
		g.Go(func() error {
			err := d.stdin.copyTo(gctx, session.Conn)
			_ = session.CloseWrite()
			// Cancellation ends the pump when the exec is over
			if gctx.Err() != nil || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			if err != nil {
				d.writer.Warningf("stdin forwarding error: %v", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		switch {
		case !forward:
			_, err = io.Copy(io.Discard, session.Reader)
		case session.TTY:
			_, err = io.Copy(out, session.Reader)
		default:
			_, err = stdcopy.StdCopy(out, out, session.Reader)
		}
		if errors.Is(err, io.EOF) {
			err = nil
		}
		outputDone <- err
		return err
	})

	go func() {
		_ = g.Wait()
	}()

	select {
	case err := <-outputDone:
		if err != nil {
			return fmt.Errorf("failed to forward exec output: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) logs(ctx context.Context, engine Engine, inv Invocation) error {
	logs, err := engine.ContainerLogs(ctx, inv.ID, inv.Options)
	if err != nil {
		return err
	}
	defer logs.Close()

	out := d.output(inv)
	if logs.TTY {
		_, err = io.Copy(out, logs)
	} else {
		_, err = stdcopy.StdCopy(out, out, logs)
	}
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("failed to forward logs: %w", err)
	}

	return nil
}

// stats repaints every sample of the container's stats stream. It only
// returns when ctx is done or the stream is broken; a stream that ends
// leaves the last sample on screen until then.
func (d *Dispatcher) stats(ctx context.Context, engine Engine, inv Invocation) error {
	body, err := engine.ContainerStats(ctx, inv.ID, inv.Options)
	if err != nil {
		return err
	}
	defer body.Close()

	repainter := format.NewRepainter(d.output(inv), inv.ColumnOptions.Style)
	decoder := json.NewDecoder(body)
	for {
		var record map[string]any
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("failed to decode stats sample: %w", err)
		}

		if err := repainter.Repaint(record); err != nil {
			return err
		}
	}

	<-ctx.Done()
	return ctx.Err()
}
