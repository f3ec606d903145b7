package docker_test

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

type mockWriter struct {
	mu  sync.Mutex
	buf *bytes.Buffer
}

func newMockWriter() *mockWriter {
	return &mockWriter{buf: &bytes.Buffer{}}
}

func (m *mockWriter) write(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf.WriteString(s)
}

func (m *mockWriter) Print(v ...any)                 { m.write(fmt.Sprint(v...)) }
func (m *mockWriter) Printf(format string, v ...any) { m.write(fmt.Sprintf(format, v...)) }
func (m *mockWriter) Println(v ...any)               { m.write(fmt.Sprintln(v...)) }
func (m *mockWriter) Successf(format string, v ...any) {
	m.write(">> " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) Warning(v ...any) { m.write("Warning: " + fmt.Sprintln(v...)) }
func (m *mockWriter) Warningf(format string, v ...any) {
	m.write("Warning: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) Errorf(format string, v ...any) {
	m.write("Error: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) Fatal(v ...any) { m.write("Fatal: " + fmt.Sprintln(v...)) }
func (m *mockWriter) Fatalf(format string, v ...any) {
	m.write("Fatal: " + fmt.Sprintf(format, v...) + "\n")
}
func (m *mockWriter) GetWriter() io.Writer { return m.buf }

func (m *mockWriter) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}
