package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ryanmoran/dockertask/internal"
)

// DaemonReportedError is a failure the daemon embedded in a response stream
// after the call itself had already succeeded at the transport level.
type DaemonReportedError struct {
	Label   string
	Message string
}

func (e *DaemonReportedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

// clearLine returns the cursor to column zero and erases the status line.
const clearLine = "\r\033[K"

// message is the subset of a daemon progress record the handler inspects.
type message struct {
	Error       string `json:"error"`
	ErrorDetail *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errorDetail"`
}

func (m message) errorMessage() string {
	if m.Error != "" {
		return m.Error
	}
	if m.ErrorDetail != nil {
		return m.ErrorDetail.Message
	}
	return ""
}

// Handler consumes the JSON progress streams returned by pull, push and build.
type Handler struct {
	writer   internal.Writer
	progress bool
	interval time.Duration
	frames   []string
}

// NewHandler creates a Handler reporting through w. When progress is false no
// status line is animated, which keeps piped output free of carriage returns.
func NewHandler(w internal.Writer, progress bool) Handler {
	return Handler{
		writer:   w,
		progress: progress,
		interval: DefaultInterval,
		frames:   DefaultFrames,
	}
}

// WithInterval returns a copy of h that repaints at the given interval.
func (h Handler) WithInterval(interval time.Duration) Handler {
	h.interval = interval
	return h
}

// Handle reads body to the end, scanning every record for an error sentinel
// while a progress indicator labelled with label runs. The first sentinel
// fails completion with a *DaemonReportedError and stops reading; reaching
// the end of the stream without one writes a success confirmation and
// succeeds completion. The indicator is stopped and its line cleared before
// any terminal output on every path. Handle returns the resolved outcome.
func (h Handler) Handle(ctx context.Context, body io.Reader, label string, completion *Completion) error {
	indicator := NewIndicator(h.writer.GetWriter(), h.interval, h.frames)
	if h.progress {
		indicator.Start(label)
	}

	finish := sync.OnceFunc(func() {
		indicator.Stop()
		if h.progress {
			fmt.Fprint(h.writer.GetWriter(), clearLine)
		}
	})
	defer finish()

	decoder := json.NewDecoder(body)
	for {
		if err := ctx.Err(); err != nil {
			finish()
			completion.Fail(err)
			return completion.Err()
		}

		var record message
		err := decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			finish()
			completion.Fail(fmt.Errorf("failed to decode %q response: %w\nThe daemon may have returned malformed JSON", label, err))
			return completion.Err()
		}

		if msg := record.errorMessage(); msg != "" {
			finish()
			completion.Fail(&DaemonReportedError{Label: label, Message: msg})
			return completion.Err()
		}
	}

	finish()
	if completion.Succeed() {
		h.writer.Successf("%s: success!", label)
	}
	return completion.Err()
}
