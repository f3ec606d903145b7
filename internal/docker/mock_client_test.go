package docker_test

import (
	"context"
	"errors"
	"io"

	containertypes "github.com/moby/moby/api/types/container"
	"github.com/moby/moby/client"
)

// mockDockerClient is a mock implementation of docker.DockerClient for testing
type mockDockerClient struct {
	imagePullFunc        func(ctx context.Context, ref string, options client.ImagePullOptions) (client.ImagePullResponse, error)
	imagePushFunc        func(ctx context.Context, image string, options client.ImagePushOptions) (client.ImagePushResponse, error)
	imageTagFunc         func(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error)
	imageBuildFunc       func(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error)
	containerCreateFunc  func(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error)
	containerStartFunc   func(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error)
	containerStopFunc    func(ctx context.Context, containerID string, options client.ContainerStopOptions) (client.ContainerStopResult, error)
	containerKillFunc    func(ctx context.Context, containerID string, options client.ContainerKillOptions) (client.ContainerKillResult, error)
	containerRestartFunc func(ctx context.Context, containerID string, options client.ContainerRestartOptions) (client.ContainerRestartResult, error)
	containerInspectFunc func(ctx context.Context, containerID string, options client.ContainerInspectOptions) (client.ContainerInspectResult, error)
	containerAttachFunc  func(ctx context.Context, containerID string, options client.ContainerAttachOptions) (client.ContainerAttachResult, error)
	containerWaitFunc    func(ctx context.Context, containerID string, options client.ContainerWaitOptions) client.ContainerWaitResult
	containerLogsFunc    func(ctx context.Context, containerID string, options client.ContainerLogsOptions) (client.ContainerLogsResult, error)
	containerStatsFunc   func(ctx context.Context, containerID string, options client.ContainerStatsOptions) (client.ContainerStatsResult, error)
	containerListFunc    func(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error)
	execCreateFunc       func(ctx context.Context, containerID string, options client.ExecCreateOptions) (client.ExecCreateResult, error)
	execAttachFunc       func(ctx context.Context, execID string, options client.ExecAttachOptions) (client.ExecAttachResult, error)
	execResizeFunc       func(ctx context.Context, execID string, options client.ExecResizeOptions) (client.ExecResizeResult, error)
	pingFunc             func(ctx context.Context, options client.PingOptions) (client.PingResult, error)
	closeFunc            func() error
}

func (m *mockDockerClient) ImagePull(ctx context.Context, ref string, options client.ImagePullOptions) (client.ImagePullResponse, error) {
	if m.imagePullFunc != nil {
		return m.imagePullFunc(ctx, ref, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) ImagePush(ctx context.Context, image string, options client.ImagePushOptions) (client.ImagePushResponse, error) {
	if m.imagePushFunc != nil {
		return m.imagePushFunc(ctx, image, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) ImageTag(ctx context.Context, options client.ImageTagOptions) (client.ImageTagResult, error) {
	if m.imageTagFunc != nil {
		return m.imageTagFunc(ctx, options)
	}
	return client.ImageTagResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ImageBuild(ctx context.Context, buildContext io.Reader, options client.ImageBuildOptions) (client.ImageBuildResult, error) {
	if m.imageBuildFunc != nil {
		return m.imageBuildFunc(ctx, buildContext, options)
	}
	return client.ImageBuildResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerCreate(ctx context.Context, options client.ContainerCreateOptions) (client.ContainerCreateResult, error) {
	if m.containerCreateFunc != nil {
		return m.containerCreateFunc(ctx, options)
	}
	return client.ContainerCreateResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerStart(ctx context.Context, containerID string, options client.ContainerStartOptions) (client.ContainerStartResult, error) {
	if m.containerStartFunc != nil {
		return m.containerStartFunc(ctx, containerID, options)
	}
	return client.ContainerStartResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerStop(ctx context.Context, containerID string, options client.ContainerStopOptions) (client.ContainerStopResult, error) {
	if m.containerStopFunc != nil {
		return m.containerStopFunc(ctx, containerID, options)
	}
	return client.ContainerStopResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerKill(ctx context.Context, containerID string, options client.ContainerKillOptions) (client.ContainerKillResult, error) {
	if m.containerKillFunc != nil {
		return m.containerKillFunc(ctx, containerID, options)
	}
	return client.ContainerKillResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerRestart(ctx context.Context, containerID string, options client.ContainerRestartOptions) (client.ContainerRestartResult, error) {
	if m.containerRestartFunc != nil {
		return m.containerRestartFunc(ctx, containerID, options)
	}
	return client.ContainerRestartResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerInspect(ctx context.Context, containerID string, options client.ContainerInspectOptions) (client.ContainerInspectResult, error) {
	if m.containerInspectFunc != nil {
		return m.containerInspectFunc(ctx, containerID, options)
	}
	return client.ContainerInspectResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerAttach(ctx context.Context, containerID string, options client.ContainerAttachOptions) (client.ContainerAttachResult, error) {
	if m.containerAttachFunc != nil {
		return m.containerAttachFunc(ctx, containerID, options)
	}
	return client.ContainerAttachResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerWait(ctx context.Context, containerID string, options client.ContainerWaitOptions) client.ContainerWaitResult {
	if m.containerWaitFunc != nil {
		return m.containerWaitFunc(ctx, containerID, options)
	}
	errCh := make(chan error, 1)
	resCh := make(chan containertypes.WaitResponse, 1)
	errCh <- errors.New("not implemented")
	return client.ContainerWaitResult{Error: errCh, Result: resCh}
}

func (m *mockDockerClient) ContainerLogs(ctx context.Context, containerID string, options client.ContainerLogsOptions) (client.ContainerLogsResult, error) {
	if m.containerLogsFunc != nil {
		return m.containerLogsFunc(ctx, containerID, options)
	}
	return nil, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerStats(ctx context.Context, containerID string, options client.ContainerStatsOptions) (client.ContainerStatsResult, error) {
	if m.containerStatsFunc != nil {
		return m.containerStatsFunc(ctx, containerID, options)
	}
	return client.ContainerStatsResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ContainerList(ctx context.Context, options client.ContainerListOptions) (client.ContainerListResult, error) {
	if m.containerListFunc != nil {
		return m.containerListFunc(ctx, options)
	}
	return client.ContainerListResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ExecCreate(ctx context.Context, containerID string, options client.ExecCreateOptions) (client.ExecCreateResult, error) {
	if m.execCreateFunc != nil {
		return m.execCreateFunc(ctx, containerID, options)
	}
	return client.ExecCreateResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ExecAttach(ctx context.Context, execID string, options client.ExecAttachOptions) (client.ExecAttachResult, error) {
	if m.execAttachFunc != nil {
		return m.execAttachFunc(ctx, execID, options)
	}
	return client.ExecAttachResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) ExecResize(ctx context.Context, execID string, options client.ExecResizeOptions) (client.ExecResizeResult, error) {
	if m.execResizeFunc != nil {
		return m.execResizeFunc(ctx, execID, options)
	}
	return client.ExecResizeResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) Ping(ctx context.Context, options client.PingOptions) (client.PingResult, error) {
	if m.pingFunc != nil {
		return m.pingFunc(ctx, options)
	}
	return client.PingResult{}, errors.New("not implemented")
}

func (m *mockDockerClient) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}
