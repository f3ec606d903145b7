package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/docker/cli/cli/streams"
	"github.com/moby/term"
	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/buildctx"
	"github.com/ryanmoran/dockertask/internal/docker"
	"github.com/ryanmoran/dockertask/internal/stream"
)

// Engine is the daemon capability the handlers call. docker.Client
// implements it.
type Engine interface {
	RunContainer(ctx context.Context, image string, cmd []string, out io.Writer, options internal.Options) (int64, error)
	PullImage(ctx context.Context, ref string, options internal.Options) (io.ReadCloser, error)
	PushImage(ctx context.Context, name string, options, auth internal.Options) (io.ReadCloser, error)
	TagImage(ctx context.Context, source, target string) error
	BuildImage(ctx context.Context, buildContext io.Reader, options internal.Options) (io.ReadCloser, error)
	ListContainers(ctx context.Context, options internal.Options) ([]map[string]any, error)
	CreateContainer(ctx context.Context, options internal.Options) (string, error)
	StartContainer(ctx context.Context, id string, options internal.Options) (string, error)
	StopContainer(ctx context.Context, id string, options internal.Options) (string, error)
	KillContainer(ctx context.Context, id string, options internal.Options) (string, error)
	RestartContainer(ctx context.Context, id string, options internal.Options) (string, error)
	InspectContainer(ctx context.Context, id string, options internal.Options) (json.RawMessage, error)
	CreateExec(ctx context.Context, id string, options internal.Options) (string, error)
	StartExec(ctx context.Context, execID string, options internal.Options) (docker.ExecSession, error)
	MonitorExecTTY(ctx context.Context, execID string, out *streams.Out, w internal.Writer) error
	ContainerLogs(ctx context.Context, id string, options internal.Options) (docker.LogStream, error)
	ContainerStats(ctx context.Context, id string, options internal.Options) (io.ReadCloser, error)
}

// EngineResolver returns the engine for an invocation that overrides the
// daemon connection.
type EngineResolver func(ctx context.Context, daemon internal.Options) (Engine, error)

// Outcome is a handler's result. A non-nil Stream is a daemon progress
// stream still to be consumed; Label describes it to the user.
type Outcome struct {
	Stream io.ReadCloser
	Label  string
}

// HandlerFunc performs one command against engine.
type HandlerFunc func(ctx context.Context, engine Engine, inv Invocation) (Outcome, error)

type Dispatcher struct {
	engine   Engine
	resolve  EngineResolver
	writer   internal.Writer
	logger   *log.Logger
	in       *streams.In
	stdin    *stdinFeed
	out      *streams.Out
	progress bool
	archive  func(contextDir string, files []string) (io.ReadCloser, error)
	handlers map[Command]HandlerFunc
}

type Option func(*Dispatcher)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithStreams replaces the process's standard input and output.
func WithStreams(in *streams.In, out *streams.Out) Option {
	return func(d *Dispatcher) {
		d.in = in
		d.out = out
	}
}

// WithProgress enables the animated status line for progress streams.
func WithProgress(progress bool) Option {
	return func(d *Dispatcher) { d.progress = progress }
}

// WithEngineResolver sets how invocations with daemon overrides find their
// engine. Without one, overrides are ignored.
func WithEngineResolver(resolve EngineResolver) Option {
	return func(d *Dispatcher) { d.resolve = resolve }
}

// New creates a Dispatcher and checks that every command in the vocabulary
// has a handler.
func New(engine Engine, w internal.Writer, options ...Option) (*Dispatcher, error) {
	stdin, stdout, _ := term.StdStreams()

	d := &Dispatcher{
		engine:  engine,
		writer:  w,
		logger:  log.New(io.Discard),
		in:      streams.NewIn(stdin),
		out:     streams.NewOut(stdout),
		archive: buildctx.Archive,
	}
	for _, option := range options {
		option(d)
	}
	d.stdin = newStdinFeed(d.in)

	d.handlers = map[Command]HandlerFunc{
		CommandRun:             d.run,
		CommandPull:            d.pull,
		CommandPush:            d.push,
		CommandBuild:           d.build,
		CommandTag:             d.tag,
		CommandPs:              d.ps,
		CommandCreateContainer: d.createContainer,
		CommandRm:              d.containerAction(CommandRm),
		CommandStart:           d.containerAction(CommandStart),
		CommandStop:            d.containerAction(CommandStop),
		CommandKill:            d.containerAction(CommandKill),
		CommandRestart:         d.containerAction(CommandRestart),
		CommandInspect:         d.containerAction(CommandInspect),
		CommandExec:            d.containerAction(CommandExec),
		CommandLogs:            d.containerAction(CommandLogs),
		CommandStats:           d.containerAction(CommandStats),
	}

	if err := checkHandlers(d.handlers); err != nil {
		return nil, err
	}

	return d, nil
}

func checkHandlers(handlers map[Command]HandlerFunc) error {
	var errs []error
	for _, command := range Vocabulary {
		if handlers[command] == nil {
			errs = append(errs, fmt.Errorf("no handler bound for command %q", command))
		}
	}
	if len(handlers) != len(Vocabulary) {
		errs = append(errs, fmt.Errorf("handler table has %d entries for %d commands", len(handlers), len(Vocabulary)))
	}
	return errors.Join(errs...)
}

// Dispatch validates command and runs it. Validation failures are returned
// before any daemon call. A failed daemon call is returned as a
// *DaemonCallError; an error record inside a progress stream as a
// *stream.DaemonReportedError.
func (d *Dispatcher) Dispatch(ctx context.Context, command string, inv Invocation) error {
	cmd, err := ParseCommand(command)
	if err != nil {
		return err
	}

	engine := d.engine
	if len(inv.Daemon) > 0 && d.resolve != nil {
		engine, err = d.resolve(ctx, inv.Daemon)
		if err != nil {
			return &DaemonCallError{Command: cmd, Err: err}
		}
	}

	d.logger.Debug("dispatching command", "command", cmd, "id", inv.ID, "image", inv.Image, "repoTag", inv.RepoTag, "name", inv.Name)

	outcome, err := d.handlers[cmd](ctx, engine, inv)
	if err != nil {
		if errors.Is(err, ErrInvalidInvocation) || isCancellation(err) {
			return err
		}
		return &DaemonCallError{Command: cmd, Err: err}
	}

	if outcome.Stream == nil {
		return nil
	}

	defer outcome.Stream.Close()
	return stream.NewHandler(d.writer, d.progress).Handle(ctx, outcome.Stream, outcome.Label, stream.NewCompletion())
}

func (d *Dispatcher) output(inv Invocation) io.Writer {
	if inv.Output != nil {
		return inv.Output
	}
	return d.out
}
