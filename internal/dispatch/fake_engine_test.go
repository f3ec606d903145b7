package dispatch_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/docker/cli/cli/streams"
	"github.com/ryanmoran/dockertask/internal"
	"github.com/ryanmoran/dockertask/internal/docker"
)

type fakeEngine struct {
	RunContainerFunc     func(ctx context.Context, image string, cmd []string, out io.Writer, options internal.Options) (int64, error)
	PullImageFunc        func(ctx context.Context, ref string, options internal.Options) (io.ReadCloser, error)
	PushImageFunc        func(ctx context.Context, name string, options, auth internal.Options) (io.ReadCloser, error)
	TagImageFunc         func(ctx context.Context, source, target string) error
	BuildImageFunc       func(ctx context.Context, buildContext io.Reader, options internal.Options) (io.ReadCloser, error)
	ListContainersFunc   func(ctx context.Context, options internal.Options) ([]map[string]any, error)
	CreateContainerFunc  func(ctx context.Context, options internal.Options) (string, error)
	StartContainerFunc   func(ctx context.Context, id string, options internal.Options) (string, error)
	StopContainerFunc    func(ctx context.Context, id string, options internal.Options) (string, error)
	KillContainerFunc    func(ctx context.Context, id string, options internal.Options) (string, error)
	RestartContainerFunc func(ctx context.Context, id string, options internal.Options) (string, error)
	InspectContainerFunc func(ctx context.Context, id string, options internal.Options) (json.RawMessage, error)
	CreateExecFunc       func(ctx context.Context, id string, options internal.Options) (string, error)
	StartExecFunc        func(ctx context.Context, execID string, options internal.Options) (docker.ExecSession, error)
	MonitorExecTTYFunc   func(ctx context.Context, execID string, out *streams.Out, w internal.Writer) error
	ContainerLogsFunc    func(ctx context.Context, id string, options internal.Options) (docker.LogStream, error)
	ContainerStatsFunc   func(ctx context.Context, id string, options internal.Options) (io.ReadCloser, error)

	mu    sync.Mutex
	calls []string
}

var errNotImplemented = errors.New("not implemented")

func (f *fakeEngine) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeEngine) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeEngine) RunContainer(ctx context.Context, image string, cmd []string, out io.Writer, options internal.Options) (int64, error) {
	f.record("RunContainer")
	if f.RunContainerFunc != nil {
		return f.RunContainerFunc(ctx, image, cmd, out, options)
	}
	return 0, errNotImplemented
}

func (f *fakeEngine) PullImage(ctx context.Context, ref string, options internal.Options) (io.ReadCloser, error) {
	f.record("PullImage")
	if f.PullImageFunc != nil {
		return f.PullImageFunc(ctx, ref, options)
	}
	return nil, errNotImplemented
}

func (f *fakeEngine) PushImage(ctx context.Context, name string, options, auth internal.Options) (io.ReadCloser, error) {
	f.record("PushImage")
	if f.PushImageFunc != nil {
		return f.PushImageFunc(ctx, name, options, auth)
	}
	return nil, errNotImplemented
}

func (f *fakeEngine) TagImage(ctx context.Context, source, target string) error {
	f.record("TagImage")
	if f.TagImageFunc != nil {
		return f.TagImageFunc(ctx, source, target)
	}
	return errNotImplemented
}

func (f *fakeEngine) BuildImage(ctx context.Context, buildContext io.Reader, options internal.Options) (io.ReadCloser, error) {
	f.record("BuildImage")
	if f.BuildImageFunc != nil {
		return f.BuildImageFunc(ctx, buildContext, options)
	}
	return nil, errNotImplemented
}

func (f *fakeEngine) ListContainers(ctx context.Context, options internal.Options) ([]map[string]any, error) {
	f.record("ListContainers")
	if f.ListContainersFunc != nil {
		return f.ListContainersFunc(ctx, options)
	}
	return nil, errNotImplemented
}

func (f *fakeEngine) CreateContainer(ctx context.Context, options internal.Options) (string, error) {
	f.record("CreateContainer")
	if f.CreateContainerFunc != nil {
		return f.CreateContainerFunc(ctx, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) StartContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	f.record("StartContainer")
	if f.StartContainerFunc != nil {
		return f.StartContainerFunc(ctx, id, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) StopContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	f.record("StopContainer")
	if f.StopContainerFunc != nil {
		return f.StopContainerFunc(ctx, id, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) KillContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	f.record("KillContainer")
	if f.KillContainerFunc != nil {
		return f.KillContainerFunc(ctx, id, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) RestartContainer(ctx context.Context, id string, options internal.Options) (string, error) {
	f.record("RestartContainer")
	if f.RestartContainerFunc != nil {
		return f.RestartContainerFunc(ctx, id, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) InspectContainer(ctx context.Context, id string, options internal.Options) (json.RawMessage, error) {
	f.record("InspectContainer")
	if f.InspectContainerFunc != nil {
		return f.InspectContainerFunc(ctx, id, options)
	}
	return nil, errNotImplemented
}

func (f *fakeEngine) CreateExec(ctx context.Context, id string, options internal.Options) (string, error) {
	f.record("CreateExec")
	if f.CreateExecFunc != nil {
		return f.CreateExecFunc(ctx, id, options)
	}
	return "", errNotImplemented
}

func (f *fakeEngine) StartExec(ctx context.Context, execID string, options internal.Options) (docker.ExecSession, error) {
	f.record("StartExec")
	if f.StartExecFunc != nil {
		return f.StartExecFunc(ctx, execID, options)
	}
	return docker.ExecSession{}, errNotImplemented
}

func (f *fakeEngine) MonitorExecTTY(ctx context.Context, execID string, out *streams.Out, w internal.Writer) error {
	f.record("MonitorExecTTY")
	if f.MonitorExecTTYFunc != nil {
		return f.MonitorExecTTYFunc(ctx, execID, out, w)
	}
	return nil
}

func (f *fakeEngine) ContainerLogs(ctx context.Context, id string, options internal.Options) (docker.LogStream, error) {
	f.record("ContainerLogs")
	if f.ContainerLogsFunc != nil {
		return f.ContainerLogsFunc(ctx, id, options)
	}
	return docker.LogStream{}, errNotImplemented
}

func (f *fakeEngine) ContainerStats(ctx context.Context, id string, options internal.Options) (io.ReadCloser, error) {
	f.record("ContainerStats")
	if f.ContainerStatsFunc != nil {
		return f.ContainerStatsFunc(ctx, id, options)
	}
	return nil, errNotImplemented
}

// syncBuffer guards a bytes.Buffer shared between a handler goroutine and the
// test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type mockWriter struct {
	out *syncBuffer
	err *syncBuffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{out: &syncBuffer{}, err: &syncBuffer{}}
}

func (m *mockWriter) Print(v ...interface{})                 { fmt.Fprint(m.out, v...) }
func (m *mockWriter) Printf(format string, v ...interface{}) { fmt.Fprintf(m.out, format, v...) }
func (m *mockWriter) Println(v ...interface{})               { fmt.Fprintln(m.out, v...) }
func (m *mockWriter) Successf(format string, v ...interface{}) {
	fmt.Fprintf(m.out, ">> "+format+"\n", v...)
}
func (m *mockWriter) Warning(v ...interface{}) { fmt.Fprintln(m.err, append([]interface{}{"Warning:"}, v...)...) }
func (m *mockWriter) Warningf(format string, v ...interface{}) {
	fmt.Fprintf(m.err, "Warning: "+format+"\n", v...)
}
func (m *mockWriter) Errorf(format string, v ...interface{}) {
	fmt.Fprintf(m.err, "Error: "+format+"\n", v...)
}
func (m *mockWriter) Fatal(v ...interface{}) { fmt.Fprintln(m.err, append([]interface{}{"Fatal:"}, v...)...) }
func (m *mockWriter) Fatalf(format string, v ...interface{}) {
	fmt.Fprintf(m.err, "Fatal: "+format+"\n", v...)
}
func (m *mockWriter) GetWriter() io.Writer { return m.out }

// multiplexed frames payload the way the daemon does for non-TTY streams.
func multiplexed(stream byte, payload string) []byte {
	header := make([]byte, 8)
	header[0] = stream
	binary.BigEndian.PutUint32(header[4:], uint32(len(payload)))
	return append(header, payload...)
}
