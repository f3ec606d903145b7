package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
)

// stdinFeed reads standard input on a single goroutine for the life of the
// Dispatcher. Exec sessions take chunks from it only while they run, so input
// typed after one exec ends is left for the next one instead of being read by
// a pump that has nowhere to send it.
type stdinFeed struct {
	in     io.Reader
	start  sync.Once
	chunks chan []byte
	err    error
}

func newStdinFeed(in io.Reader) *stdinFeed {
	return &stdinFeed{in: in, chunks: make(chan []byte)}
}

func (f *stdinFeed) read() {
	for {
		buf := make([]byte, 32*1024)
		n, err := f.in.Read(buf)
		if n > 0 {
			f.chunks <- buf[:n]
		}
		if err != nil {
			f.err = err
			close(f.chunks)
			return
		}
	}
}

// copyTo forwards input to w until input ends or ctx is done. The end of
// input is not an error.
func (f *stdinFeed) copyTo(ctx context.Context, w io.Writer) error {
	f.start.Do(func() { go f.read() })

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-f.chunks:
			if !ok {
				if errors.Is(f.err, io.EOF) {
					return nil
				}
				return f.err
			}
			if _, err := w.Write(chunk); err != nil {
				return err
			}
		}
	}
}
