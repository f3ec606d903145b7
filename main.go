package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/moby/term"
	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/dispatch"
	"github.com/ryanmoran/dockertask/internal/docker"
	"github.com/ryanmoran/dockertask/internal/format"
	"github.com/ryanmoran/dockertask/internal/taskfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// errInterrupted ends a run that was cancelled by a signal.
var errInterrupted = errors.New("interrupted")

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic occurred", "panic", r)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := internal.NewStandardWriter()
	err := newRootCommand(w, connect).ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, errInterrupted):
		stop()
		os.Exit(130)
	default:
		w.Errorf("%s", err)
		stop()
		os.Exit(1)
	}
}

// connector opens an engine for a daemon configuration and returns the
// function that releases it.
type connector func(ctx context.Context, config internal.DaemonConfig) (dispatch.Engine, func() error, error)

func connect(ctx context.Context, config internal.DaemonConfig) (dispatch.Engine, func() error, error) {
	client, err := docker.NewDefaultClient(ctx, config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create docker client: %w\nMake sure Docker is installed and running (try 'docker ps')", err)
	}

	return client, func() error {
		client.Close()
		return nil
	}, nil
}

type app struct {
	writer  internal.Writer
	connect connector
	viper   *viper.Viper
	logger  *log.Logger
	config  internal.Config
}

func newRootCommand(w internal.Writer, connect connector) *cobra.Command {
	a := &app{
		writer:  w,
		connect: connect,
		viper:   viper.New(),
		logger:  log.NewWithOptions(os.Stderr, log.Options{Level: log.WarnLevel, Prefix: "dockertask"}),
	}

	root := &cobra.Command{
		Use:   "dockertask",
		Short: "Run container tasks declared in a YAML task file",
		Long: `dockertask runs named tasks against a Docker daemon. Each task in the task
file names one command (run, pull, push, build, tag, ps, create-container,
start, stop, kill, restart, rm, inspect, exec, logs, stats) and its options.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	flags := root.PersistentFlags()
	flags.StringP("file", "f", internal.DefaultTasksFile, "task file to read")
	flags.String("log-level", internal.DefaultLogLevel, "diagnostic log level (debug, info, warn, error)")
	flags.String("host", "", "daemon socket to connect to")
	flags.Bool("progress", false, "animate a status line while streaming daemon progress")
	for key, flag := range map[string]string{
		"tasks_file":  "file",
		"log_level":   "log-level",
		"daemon.host": "host",
		"progress":    "progress",
	} {
		_ = a.viper.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "run <task>...",
			Short: "Run tasks in order",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), args)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the tasks in the task file",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.list()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				a.writer.Printf("dockertask %s\n", version)
			},
		},
	)

	return root
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	workingDirectory, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current working directory: %w\nThis is a system error - check file system permissions", err)
	}

	a.config, err = internal.LoadConfig(a.viper, workingDirectory, term.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		return err
	}

	level, err := log.ParseLevel(a.config.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.config.LogLevel, err)
	}
	a.logger.SetLevel(level)

	return nil
}

// task is a resolved entry of the task file, ready to dispatch.
type task struct {
	name       string
	command    string
	invocation dispatch.Invocation
}

// run dispatches the named tasks in order. Every task is resolved before the
// daemon is contacted. Invalid invocations abort the run; daemon failures are
// reported and the run moves on to the next task.
func (a *app) run(ctx context.Context, names []string) error {
	file, err := taskfile.Load(a.config.TasksFile)
	if err != nil {
		return err
	}

	tasks := make([]task, 0, len(names))
	for _, name := range names {
		session := internal.NewSession(name)
		command, inv, err := file.Invocation(name, session.ContainerName())
		if err != nil {
			return err
		}
		if _, err := dispatch.ParseCommand(command); err != nil {
			return fmt.Errorf("task %q: %w", name, err)
		}
		tasks = append(tasks, task{name: name, command: command, invocation: inv})
	}

	cleanupMgr := internal.NewCleanupManager(a.logger)
	defer cleanupMgr.Execute()

	engines := newEngineCache(a.connect, a.config.Daemon, cleanupMgr)
	engine, err := engines.get(ctx, a.config.Daemon)
	if err != nil {
		return err
	}

	d, err := dispatch.New(engine, a.writer,
		dispatch.WithLogger(a.logger),
		dispatch.WithProgress(a.config.Progress),
		dispatch.WithEngineResolver(engines.resolve),
	)
	if err != nil {
		return err
	}

	failed := 0
	for _, t := range tasks {
		a.logger.Debug("running task", "task", t.name, "command", t.command)

		err := d.Dispatch(ctx, t.command, t.invocation)
		switch {
		case err == nil:
		case dispatch.IsValidation(err):
			return fmt.Errorf("task %q: %w", t.name, err)
		case ctx.Err() != nil:
			return errInterrupted
		default:
			a.writer.Errorf("task %q: %s", t.name, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tasks failed", failed, len(tasks))
	}

	return nil
}

func (a *app) list() error {
	file, err := taskfile.Load(a.config.TasksFile)
	if err != nil {
		return err
	}

	records := make([]map[string]any, 0, len(file.Names))
	for _, name := range file.Names {
		records = append(records, map[string]any{"Task": name, "Command": file.Tasks[name].Command})
	}

	return format.RenderTable(a.writer.GetWriter(), []string{"Task", "Command"}, records, format.TableOptions{Style: "plain"})
}
