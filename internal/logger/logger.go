// Package logger provides the migration log sink.
// A Sink is constructed explicitly and handed to every pipeline that needs
// it; its internal lock serialises output so concurrently running pipelines
// never interleave log lines. A package-level default sink writing to stderr
// is kept for the CLI layer.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Sink is a mutex-serialised leveled logger.
// Info, Warn and Error always print; Debug only when verbose is enabled.
type Sink struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// New creates a sink writing to w.
func New(w io.Writer) *Sink {
	return &Sink{out: w}
}

// SetVerbose enables or disables debug output.
func (s *Sink) SetVerbose(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verbose = v
}

// IsVerbose returns true if debug output is enabled.
func (s *Sink) IsVerbose() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verbose
}

// SetOutput sets the output writer. Useful for testing.
func (s *Sink) SetOutput(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out = w
}

// Debug prints a message if verbose mode is enabled.
func (s *Sink) Debug(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.verbose {
		fmt.Fprintf(s.out, "[DEBUG] "+format+"\n", args...)
	}
}

// Info prints an informational message.
func (s *Sink) Info(format string, args ...any) {
	s.printf("[INFO] ", format, args...)
}

// Warn prints a warning message.
func (s *Sink) Warn(format string, args ...any) {
	s.printf("[WARN] ", format, args...)
}

// Error prints an error message.
func (s *Sink) Error(format string, args ...any) {
	s.printf("[ERROR] ", format, args...)
}

// Section prints a section header, visually separating migration phases.
func (s *Sink) Section(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "\n=== "+format+" ===\n", args...)
}

// printf writes exactly one line under the lock.
func (s *Sink) printf(prefix, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, prefix+format+"\n", args...)
}

// defaultSink is the process-wide sink used by the package-level helpers.
var defaultSink = New(os.Stderr)

// Default returns the package-level sink.
func Default() *Sink { return defaultSink }

// SetVerbose enables or disables debug output on the default sink.
func SetVerbose(v bool) { defaultSink.SetVerbose(v) }

// IsVerbose reports the default sink's verbose state.
func IsVerbose() bool { return defaultSink.IsVerbose() }

// SetOutput sets the default sink's output writer.
func SetOutput(w io.Writer) { defaultSink.SetOutput(w) }

// Debug prints a debug message on the default sink.
func Debug(format string, args ...any) { defaultSink.Debug(format, args...) }

// Info prints an informational message on the default sink.
func Info(format string, args ...any) { defaultSink.Info(format, args...) }

// Warn prints a warning message on the default sink.
func Warn(format string, args ...any) { defaultSink.Warn(format, args...) }

// Error prints an error message on the default sink.
func Error(format string, args ...any) { defaultSink.Error(format, args...) }
