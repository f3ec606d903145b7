package docker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockertask/internal"
)

// Container addresses a single container on the daemon by ID. Name is used
// only in error messages and defaults to the ID.
type Container struct {
	client DockerClient

	ID   string
	Name string
}

// NewContainer addresses the container with the given ID.
func NewContainer(client DockerClient, id string) Container {
	return Container{client: client, ID: id, Name: id}
}

// LogStream is a container log stream. When TTY is false the stream is
// multiplexed and must be split with stdcopy.
type LogStream struct {
	io.ReadCloser
	TTY bool
}

// Start starts the container. Returns an error if the container fails to start,
// which may indicate a misconfiguration or an unhealthy Docker daemon.
func (c Container) Start(ctx context.Context, options internal.Options) error {
	var startOptions client.ContainerStartOptions
	if err := options.Decode(&startOptions); err != nil {
		return err
	}

	_, err := c.client.ContainerStart(ctx, c.ID, startOptions)
	if err != nil {
		return fmt.Errorf("failed to start container %q: %w\n%s", c.Name, err, hint(err))
	}

	return nil
}

// Stop stops the container. Options may carry "Signal" and "Timeout"
// (seconds before the daemon kills it).
func (c Container) Stop(ctx context.Context, options internal.Options) error {
	var stopOptions client.ContainerStopOptions
	if err := options.Decode(&stopOptions); err != nil {
		return err
	}

	_, err := c.client.ContainerStop(ctx, c.ID, stopOptions)
	if err != nil {
		return fmt.Errorf("failed to stop container %q: %w\n%s", c.Name, err, hint(err))
	}

	return nil
}

// Kill sends a signal to the container, SIGKILL unless options name another.
func (c Container) Kill(ctx context.Context, options internal.Options) error {
	var killOptions client.ContainerKillOptions
	if err := options.Decode(&killOptions); err != nil {
		return err
	}

	_, err := c.client.ContainerKill(ctx, c.ID, killOptions)
	if err != nil {
		return fmt.Errorf("failed to kill container %q: %w\n%s", c.Name, err, hint(err))
	}

	return nil
}

func (c Container) Restart(ctx context.Context, options internal.Options) error {
	var restartOptions client.ContainerRestartOptions
	if err := options.Decode(&restartOptions); err != nil {
		return err
	}

	_, err := c.client.ContainerRestart(ctx, c.ID, restartOptions)
	if err != nil {
		return fmt.Errorf("failed to restart container %q: %w\n%s", c.Name, err, hint(err))
	}

	return nil
}

// Inspect returns the daemon's raw inspect document for the container.
func (c Container) Inspect(ctx context.Context, options internal.Options) (json.RawMessage, error) {
	result, err := c.client.ContainerInspect(ctx, c.ID, client.ContainerInspectOptions{
		Size: options.Bool("size"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to inspect container %q: %w\n%s", c.Name, err, hint(err))
	}

	if len(result.Raw) > 0 {
		return result.Raw, nil
	}

	raw, err := json.Marshal(result.Container)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inspect result for container %q: %w", c.Name, err)
	}

	return raw, nil
}

// CreateExec prepares an exec process in the container and returns its ID.
// Options decode onto client.ExecCreateOptions (Cmd, Env, Tty, AttachStdin, ...).
func (c Container) CreateExec(ctx context.Context, options internal.Options) (string, error) {
	var execOptions client.ExecCreateOptions
	if err := options.Decode(&execOptions); err != nil {
		return "", err
	}

	result, err := c.client.ExecCreate(ctx, c.ID, execOptions)
	if err != nil {
		return "", fmt.Errorf("failed to create exec in container %q: %w\n%s", c.Name, err, hint(err))
	}

	return result.ID, nil
}

// Logs opens the container's log stream. Stdout and stderr are both included
// unless options select one of them.
func (c Container) Logs(ctx context.Context, options internal.Options) (LogStream, error) {
	var logOptions client.ContainerLogsOptions
	if err := options.Decode(&logOptions); err != nil {
		return LogStream{}, err
	}
	if !logOptions.ShowStdout && !logOptions.ShowStderr {
		logOptions.ShowStdout = true
		logOptions.ShowStderr = true
	}

	inspect, err := c.client.ContainerInspect(ctx, c.ID, client.ContainerInspectOptions{})
	if err != nil {
		return LogStream{}, fmt.Errorf("failed to inspect container %q: %w\n%s", c.Name, err, hint(err))
	}

	tty := false
	if inspect.Container.Config != nil {
		tty = inspect.Container.Config.Tty
	}

	body, err := c.client.ContainerLogs(ctx, c.ID, logOptions)
	if err != nil {
		return LogStream{}, fmt.Errorf("failed to read logs of container %q: %w\n%s", c.Name, err, hint(err))
	}

	return LogStream{ReadCloser: body, TTY: tty}, nil
}

// Stats opens the container's resource usage stream. Samples are streamed
// unless options set "stream" to false.
func (c Container) Stats(ctx context.Context, options internal.Options) (io.ReadCloser, error) {
	statsOptions := client.ContainerStatsOptions{Stream: true}
	if _, ok := options.Lookup("stream"); ok {
		statsOptions.Stream = options.Bool("stream")
	}

	result, err := c.client.ContainerStats(ctx, c.ID, statsOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats of container %q: %w\n%s", c.Name, err, hint(err))
	}

	return result.Body, nil
}

// Wait blocks until the container is no longer running and returns its exit
// status.
func (c Container) Wait(ctx context.Context) (int64, error) {
	return c.WaitFor(ctx, container.WaitConditionNotRunning)()
}

// WaitFor registers a wait for condition with the daemon right away and
// returns a function that blocks until it is met. Registering before Start
// lets callers observe containers that exit and are removed immediately.
func (c Container) WaitFor(ctx context.Context, condition container.WaitCondition) func() (int64, error) {
	wait := c.client.ContainerWait(ctx, c.ID, client.ContainerWaitOptions{
		Condition: condition,
	})

	return func() (int64, error) {
		select {
		case err := <-wait.Error:
			return 0, fmt.Errorf("failed to wait for container %q: %w\nDocker daemon may have encountered an error", c.Name, err)
		case status := <-wait.Result:
			if status.Error != nil && status.Error.Message != "" {
				return status.StatusCode, fmt.Errorf("container %q failed to exit cleanly: %s", c.Name, status.Error.Message)
			}
			return status.StatusCode, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
