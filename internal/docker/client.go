package docker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/moby/moby/api/pkg/stdcopy"
	"github.com/moby/moby/api/types/container"
	"github.com/moby/moby/api/types/registry"
	"github.com/moby/moby/client"
	"github.com/ryanmoran/dockertask/internal"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTTYRetries is the number of retry attempts for the initial exec
	// TTY resize. The exec process may not be ready on the first attempt.
	DefaultTTYRetries = 10

	// DefaultRetryDelay is the base delay between TTY resize retry attempts.
	// Each retry multiplies this by (retry+1): 10ms, 20ms, 30ms, etc.
	DefaultRetryDelay = 10 * time.Millisecond
)

type Client struct {
	client DockerClient

	TTYRetries int
	RetryDelay time.Duration
}

// NewClient creates a Client that wraps the provided Docker client interface.
func NewClient(dockerClient DockerClient) Client {
	return Client{
		client:     dockerClient,
		TTYRetries: DefaultTTYRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// NewDefaultClient creates a Client connected to the daemon described by
// config. Unset fields fall back to the DOCKER_* environment variables. If
// config names a minimum API version, the daemon is pinged and rejected when
// it is older.
func NewDefaultClient(ctx context.Context, config internal.DaemonConfig) (Client, error) {
	opts := []client.Opt{client.FromEnv}
	if config.Host != "" {
		opts = append(opts, client.WithHost(config.Host))
	}
	if config.TLSCA != "" || config.TLSCert != "" || config.TLSKey != "" {
		opts = append(opts, client.WithTLSClientConfig(config.TLSCA, config.TLSCert, config.TLSKey))
	}
	if config.APIVersion != "" {
		opts = append(opts, client.WithAPIVersion(config.APIVersion))
	} else {
		opts = append(opts, client.WithAPIVersionNegotiation())
	}

	cli, err := client.New(opts...)
	if err != nil {
		return Client{}, fmt.Errorf("failed to create docker client: %w\nEnsure Docker is running and DOCKER_HOST is set correctly", err)
	}

	c := NewClient(cli)
	if config.MinAPIVersion != "" {
		if _, err := c.CheckAPIVersion(ctx, config.MinAPIVersion); err != nil {
			c.Close()
			return Client{}, err
		}
	}

	return c, nil
}

// Close closes the underlying Docker client connection.
func (c Client) Close() {
	c.client.Close()
}

// Ping pings the Docker daemon and returns the API version if successful.
func (c Client) Ping(ctx context.Context) (string, error) {
	ping, err := c.client.Ping(ctx, client.PingOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to ping docker daemon: %w\n%s", err, hint(err))
	}
	return ping.APIVersion, nil
}

// CheckAPIVersion pings the daemon and fails if its API version is older than
// minimum. It returns the daemon's API version.
func (c Client) CheckAPIVersion(ctx context.Context, minimum string) (string, error) {
	want, err := semver.NewVersion(minimum)
	if err != nil {
		return "", fmt.Errorf("invalid minimum API version %q: %w", minimum, err)
	}

	version, err := c.Ping(ctx)
	if err != nil {
		return "", err
	}

	got, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("daemon reported unparseable API version %q: %w", version, err)
	}

	if got.LessThan(want) {
		return "", fmt.Errorf("daemon API version %s is older than the required %s\nUpgrade Docker or lower daemon.min_api_version", version, minimum)
	}

	return version, nil
}

// RunContainer creates a container from image, streams its stdout and stderr
// to out, starts it, and waits for it to exit (or to be removed, with
// HostConfig.AutoRemove). It returns the exit status.
// Container configuration is decoded from options (container.Config fields,
// plus "HostConfig" and "name").
func (c Client) RunContainer(ctx context.Context, image string, cmd []string, out io.Writer, options internal.Options) (int64, error) {
	config, hostConfig, name, err := containerConfig(options)
	if err != nil {
		return 0, err
	}
	config.Image = image
	if len(cmd) > 0 {
		config.Cmd = cmd
	}
	config.AttachStdout = true
	config.AttachStderr = true

	created, err := c.create(ctx, config, hostConfig, name)
	if err != nil {
		return 0, err
	}

	response, err := c.client.ContainerAttach(ctx, created.ID, client.ContainerAttachOptions{
		Stream: true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to attach to container %q: %w\nContainer may have exited prematurely or Docker API is unreachable", created.Name, err)
	}
	defer response.Close()

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if config.Tty {
			_, err = io.Copy(out, response.Reader)
		} else {
			_, err = stdcopy.StdCopy(out, out, response.Reader)
		}
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to forward output of container %q: %w", created.Name, err)
		}
		return nil
	})

	condition := container.WaitConditionNextExit
	if hostConfig != nil && hostConfig.AutoRemove {
		condition = container.WaitConditionRemoved
	}
	waitExit := created.WaitFor(ctx, condition)

	if err := created.Start(ctx, nil); err != nil {
		return 0, err
	}

	status, err := waitExit()
	if err != nil {
		if ctx.Err() != nil {
			_ = created.Stop(context.WithoutCancel(ctx), nil)
		}
		return 0, err
	}

	if err := g.Wait(); err != nil {
		return status, err
	}

	return status, nil
}

// PullImage starts pulling ref and returns the daemon's JSON progress stream.
func (c Client) PullImage(ctx context.Context, ref string, options internal.Options) (io.ReadCloser, error) {
	var pullOptions client.ImagePullOptions
	if err := options.Decode(&pullOptions); err != nil {
		return nil, err
	}

	response, err := c.client.ImagePull(ctx, ref, pullOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to pull image %q: %w\n%s", ref, err, hint(err))
	}

	return response, nil
}

// PushImage starts pushing name and returns the daemon's JSON progress
// stream. A non-empty auth map is encoded as the registry credentials.
func (c Client) PushImage(ctx context.Context, name string, options, auth internal.Options) (io.ReadCloser, error) {
	var pushOptions client.ImagePushOptions
	if err := options.Decode(&pushOptions); err != nil {
		return nil, err
	}

	if len(auth) > 0 {
		encoded, err := encodeAuth(auth)
		if err != nil {
			return nil, err
		}
		pushOptions.RegistryAuth = encoded
	}

	response, err := c.client.ImagePush(ctx, name, pushOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to push image %q: %w\n%s", name, err, hint(err))
	}

	return response, nil
}

// TagImage adds the target reference to the source image.
func (c Client) TagImage(ctx context.Context, source, target string) error {
	_, err := c.client.ImageTag(ctx, client.ImageTagOptions{
		Source: source,
		Target: target,
	})
	if err != nil {
		return fmt.Errorf("failed to tag image %q as %q: %w\n%s", source, target, err, hint(err))
	}

	return nil
}

// BuildImage sends buildContext (a tar stream) to the daemon and returns the
// JSON build output. Options decode onto client.ImageBuildOptions; "t" may
// name one tag or a list of tags.
func (c Client) BuildImage(ctx context.Context, buildContext io.Reader, options internal.Options) (io.ReadCloser, error) {
	buildOptions := client.ImageBuildOptions{Remove: true}
	if err := options.Decode(&buildOptions); err != nil {
		return nil, err
	}

	if tags, ok := options.Lookup("t"); ok {
		switch t := tags.(type) {
		case string:
			buildOptions.Tags = append(buildOptions.Tags, t)
		case []any:
			for _, tag := range t {
				buildOptions.Tags = append(buildOptions.Tags, fmt.Sprint(tag))
			}
		case []string:
			buildOptions.Tags = append(buildOptions.Tags, t...)
		}
	}

	response, err := c.client.ImageBuild(ctx, buildContext, buildOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to build image %v: %w\nCheck Docker daemon logs for details", buildOptions.Tags, err)
	}

	return response.Body, nil
}

// ListContainers returns the daemon's container summaries as generic records
// keyed by their API field names (ID, Names, Image, Status, ...).
func (c Client) ListContainers(ctx context.Context, options internal.Options) ([]map[string]any, error) {
	var decoded struct {
		All     bool
		Size    bool
		Limit   int
		Filters map[string][]string
	}
	if err := options.Decode(&decoded); err != nil {
		return nil, err
	}

	listOptions := client.ContainerListOptions{
		All:   decoded.All,
		Size:  decoded.Size,
		Limit: decoded.Limit,
	}
	if len(decoded.Filters) > 0 {
		listOptions.Filters = make(client.Filters)
		for term, values := range decoded.Filters {
			listOptions.Filters.Add(term, values...)
		}
	}

	result, err := c.client.ContainerList(ctx, listOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w\n%s", err, hint(err))
	}

	encoded, err := json.Marshal(result.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode container list: %w", err)
	}

	records := []map[string]any{}
	if err := json.Unmarshal(encoded, &records); err != nil {
		return nil, fmt.Errorf("failed to decode container list: %w", err)
	}

	return records, nil
}

// CreateContainer creates a container from options and returns its ID.
func (c Client) CreateContainer(ctx context.Context, options internal.Options) (string, error) {
	config, hostConfig, name, err := containerConfig(options)
	if err != nil {
		return "", err
	}

	created, err := c.create(ctx, config, hostConfig, name)
	if err != nil {
		return "", err
	}

	return created.ID, nil
}

func (c Client) StartContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	return "", c.container(id).Start(ctx, options)
}

func (c Client) StopContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	return "", c.container(id).Stop(ctx, options)
}

func (c Client) KillContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	return "", c.container(id).Kill(ctx, options)
}

func (c Client) RestartContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	return "", c.container(id).Restart(ctx, options)
}

func (c Client) InspectContainer(ctx context.Context, id string, options internal.Options) (json.RawMessage, error) {
	return c.container(id).Inspect(ctx, options)
}

func (c Client) CreateExec(ctx context.Context, id string, options internal.Options) (string, error) {
	return c.container(id).CreateExec(ctx, options)
}

// StartExec attaches to a created exec process, which starts it.
func (c Client) StartExec(ctx context.Context, execID string, options internal.Options) (ExecSession, error) {
	tty := options.Bool("Tty")

	result, err := c.client.ExecAttach(ctx, execID, client.ExecAttachOptions{TTY: tty})
	if err != nil {
		return ExecSession{}, fmt.Errorf("failed to start exec %q: %w\n%s", execID, err, hint(err))
	}

	response := result.HijackedResponse
	return ExecSession{
		ID:         execID,
		TTY:        tty,
		Conn:       response.Conn,
		Reader:     response.Reader,
		closeWrite: response.CloseWrite,
	}, nil
}

func (c Client) ContainerLogs(ctx context.Context, id string, options internal.Options) (LogStream, error) {
	return c.container(id).Logs(ctx, options)
}

func (c Client) ContainerStats(ctx context.Context, id string, options internal.Options) (io.ReadCloser, error) {
	return c.container(id).Stats(ctx, options)
}

func (c Client) container(id string) Container {
	return NewContainer(c.client, id)
}

func (c Client) create(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, name string) (Container, error) {
	response, err := c.client.ContainerCreate(ctx, client.ContainerCreateOptions{
		Config:     config,
		HostConfig: hostConfig,
		Name:       name,
	})
	if err != nil {
		return Container{}, fmt.Errorf("failed to create container %q from image %q: %w\n%s", name, config.Image, err, hint(err))
	}

	created := c.container(response.ID)
	if name != "" {
		created.Name = name
	}
	return created, nil
}

// containerConfig splits create options into the container config, the host
// config found under "HostConfig", and the container name under "name".
func containerConfig(options internal.Options) (*container.Config, *container.HostConfig, string, error) {
	config := &container.Config{}
	if err := options.Decode(config); err != nil {
		return nil, nil, "", err
	}

	var hostConfig *container.HostConfig
	if sub := options.Sub("HostConfig"); len(sub) > 0 {
		hostConfig = &container.HostConfig{}
		if err := sub.Decode(hostConfig); err != nil {
			return nil, nil, "", err
		}
	}

	return config, hostConfig, options.String("name"), nil
}

func encodeAuth(auth internal.Options) (string, error) {
	var config registry.AuthConfig
	if err := auth.Decode(&config); err != nil {
		return "", fmt.Errorf("invalid registry credentials: %w", err)
	}

	encoded, err := json.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to encode registry credentials: %w", err)
	}

	return base64.URLEncoding.EncodeToString(encoded), nil
}
