package stream_test

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// syncBuffer guards a bytes.Buffer so the indicator goroutine and the test
// can share it.
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
