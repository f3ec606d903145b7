package docker

import (
	"context"
	"io"
	"net"

	"github.com/docker/cli/cli/streams"
	"github.com/ryanmoran/dockertask/internal"
)

// ExecSession is an attached exec process. Reader yields its output, which is
// multiplexed unless TTY is set. Writes to Conn feed its stdin.
type ExecSession struct {
	ID     string
	TTY    bool
	Conn   net.Conn
	Reader io.Reader

	closeWrite func() error
}

// CloseWrite signals end of stdin to the exec process.
func (s ExecSession) CloseWrite() error {
	if s.closeWrite != nil {
		return s.closeWrite()
	}
	if s.Conn != nil {
		if cw, ok := s.Conn.(interface{ CloseWrite() error }); ok {
			return cw.CloseWrite()
		}
	}
	return nil
}

// Close releases the hijacked connection.
func (s ExecSession) Close() error {
	if s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}

// MonitorExecTTY keeps the exec process's TTY the size of out, resizing it
// now and on every SIGWINCH until ctx is done. It does nothing when out is
// not a terminal.
func (c Client) MonitorExecTTY(ctx context.Context, execID string, out *streams.Out, w internal.Writer) error {
	if !out.IsTerminal() {
		return nil
	}
	return NewTTY(c.client, out, execID, c.TTYRetries, c.RetryDelay, w).Monitor(ctx)
}
