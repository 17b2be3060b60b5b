// Package logger provides diagnostic logging for the release manager.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=logger.go -destination=mocks/logger.gen.go -package=mocks

// Logger interface provides logging capabilities.
type Logger interface {
	// Logf logs a formatted progress or debug message.
	Logf(format string, args ...interface{})
	// Warnf logs a formatted warning for a condition that was skipped or overridden.
	Warnf(format string, args ...interface{})
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

// NewNoopLogger creates a new noop logger.
func NewNoopLogger() Logger {
	return &noopLogger{}
}

// Logf does nothing for noop logger.
func (n *noopLogger) Logf(_ string, _ ...interface{}) {}

// Warnf does nothing for noop logger.
func (n *noopLogger) Warnf(_ string, _ ...interface{}) {}

// writerLogger is a thread-safe logger writing to an io.Writer.
type writerLogger struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewDefaultLogger creates a logger that writes every message to stderr.
func NewDefaultLogger() Logger {
	return NewWriterLogger(os.Stderr, true)
}

// NewQuietLogger creates a logger that only writes warnings to stderr.
func NewQuietLogger() Logger {
	return NewWriterLogger(os.Stderr, false)
}

// NewWriterLogger creates a logger writing to out. Logf lines are dropped unless verbose is set.
func NewWriterLogger(out io.Writer, verbose bool) Logger {
	return &writerLogger{out: out, verbose: verbose}
}

// Logf writes a formatted message when verbose output is enabled.
func (w *writerLogger) Logf(format string, args ...interface{}) {
	if !w.verbose {
		return
	}
	w.write("", format, args...)
}

// Warnf always writes a formatted warning.
func (w *writerLogger) Warnf(format string, args ...interface{}) {
	w.write("warning: ", format, args...)
}

func (w *writerLogger) write(prefix, format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, prefix+format+"\n", args...)
}
