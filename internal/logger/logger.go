// Package logger provides levelled logging for prcache.
//
// Debug and Info messages are only printed in verbose mode (the --verbose
// flag); warnings and errors are always printed. Services receive a *Logger
// at construction; the package-level functions write through Default().
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// sink is the output state shared by a logger and the loggers named from it.
type sink struct {
	mu      sync.RWMutex
	verbose bool
	output  io.Writer
}

// Logger writes level-prefixed lines to a shared output.
type Logger struct {
	sink *sink
	name string
}

var std = New(os.Stderr, false)

// New creates a logger writing to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{sink: &sink{verbose: verbose, output: w}}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	return New(io.Discard, false)
}

// Default returns the process-wide logger used by the package-level functions.
func Default() *Logger {
	return std
}

// Named returns a logger sharing l's output that prefixes messages with name.
func (l *Logger) Named(name string) *Logger {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &Logger{sink: l.sink, name: name}
}

// SetVerbose enables or disables verbose logging.
func (l *Logger) SetVerbose(v bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func (l *Logger) IsVerbose() bool {
	l.sink.mu.RLock()
	defer l.sink.mu.RUnlock()
	return l.sink.verbose
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Debug prints a message if verbose mode is enabled.
func (l *Logger) Debug(format string, args ...any) {
	l.print(true, "DEBUG", format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func (l *Logger) Info(format string, args ...any) {
	l.print(true, "INFO", format, args...)
}

// Warn prints a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.print(false, "WARN", format, args...)
}

// Error prints an error message.
func (l *Logger) Error(format string, args ...any) {
	l.print(false, "ERROR", format, args...)
}

func (l *Logger) print(verboseOnly bool, level, format string, args ...any) {
	if l == nil {
		return
	}
	// Writes take the exclusive lock so lines from concurrent callers never interleave.
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if verboseOnly && !l.sink.verbose {
		return
	}
	if l.name != "" {
		format = l.name + ": " + format
	}
	fmt.Fprintf(l.sink.output, "["+level+"] "+format+"\n", args...)
}

// SetVerbose enables or disables verbose logging on the default logger.
func SetVerbose(v bool) {
	std.SetVerbose(v)
}

// IsVerbose returns true if the default logger is verbose.
func IsVerbose() bool {
	return std.IsVerbose()
}

// SetOutput sets the output writer of the default logger.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	std.Debug(format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	std.Info(format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	std.Warn(format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	std.Error(format, args...)
}
