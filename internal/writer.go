package internal

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Writer is the output sink every command reports through. Callers decide
// where output lands; library code never prints to the process streams
// directly.
type Writer interface {
	// Print writes a message to the output stream.
	Print(v ...interface{})
	// Printf writes a formatted message to the output stream.
	Printf(format string, v ...interface{})
	// Println writes a message with a newline to the output stream.
	Println(v ...interface{})
	// Successf writes a one-line confirmation for a finished operation.
	Successf(format string, v ...interface{})
	// Warning writes a warning message to the error stream.
	Warning(v ...interface{})
	// Warningf writes a formatted warning message to the error stream.
	Warningf(format string, v ...interface{})
	// Errorf reports a failed operation without terminating the process.
	Errorf(format string, v ...interface{})
	// Fatal writes an error message and signals a fatal error.
	Fatal(v ...interface{})
	// Fatalf writes a formatted error message and signals a fatal error.
	Fatalf(format string, v ...interface{})
	// GetWriter returns the underlying io.Writer for direct writing.
	GetWriter() io.Writer
}

// StandardWriter implements Writer on top of an output and an error stream.
type StandardWriter struct {
	out io.Writer
	err io.Writer

	ok   *color.Color
	fail *color.Color
	warn *color.Color
}

// NewStandardWriter creates a Writer that outputs to stdout and stderr.
func NewStandardWriter() *StandardWriter {
	return NewCustomWriter(os.Stdout, os.Stderr)
}

// NewCustomWriter creates a Writer with custom output streams.
// The out stream is used for normal output, while err is used for warnings and errors.
func NewCustomWriter(out, err io.Writer) *StandardWriter {
	return &StandardWriter{
		out:  out,
		err:  err,
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		warn: color.New(color.FgYellow),
	}
}

func (w *StandardWriter) Print(v ...interface{}) {
	fmt.Fprint(w.out, v...)
}

func (w *StandardWriter) Printf(format string, v ...interface{}) {
	fmt.Fprintf(w.out, format, v...)
}

func (w *StandardWriter) Println(v ...interface{}) {
	fmt.Fprintln(w.out, v...)
}

// Successf writes a green ">>" marker followed by the formatted message.
func (w *StandardWriter) Successf(format string, v ...interface{}) {
	w.ok.Fprint(w.out, ">> ")
	fmt.Fprintf(w.out, format+"\n", v...)
}

// Warning writes a warning message to the error stream with a "Warning: " prefix.
func (w *StandardWriter) Warning(v ...interface{}) {
	w.warn.Fprint(w.err, "Warning: ")
	fmt.Fprintln(w.err, v...)
}

// Warningf writes a formatted warning message to the error stream with a "Warning: " prefix.
func (w *StandardWriter) Warningf(format string, v ...interface{}) {
	w.warn.Fprint(w.err, "Warning: ")
	fmt.Fprintf(w.err, format+"\n", v...)
}

// Errorf writes a red "Error: " prefix and the formatted message to the error stream.
func (w *StandardWriter) Errorf(format string, v ...interface{}) {
	w.fail.Fprint(w.err, "Error: ")
	fmt.Fprintf(w.err, format+"\n", v...)
}

// Fatal writes an error message to the error stream and exits the program with status 1.
func (w *StandardWriter) Fatal(v ...interface{}) {
	fmt.Fprintln(w.err, v...)
	os.Exit(1)
}

// Fatalf writes a formatted error message to the error stream and exits the program with status 1.
func (w *StandardWriter) Fatalf(format string, v ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", v...)
	os.Exit(1)
}

func (w *StandardWriter) GetWriter() io.Writer {
	return w.out
}
