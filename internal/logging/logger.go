package logging

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Logger writes progress lines and, in verbose mode, diagnostics with timing.
// It is safe to share between worker goroutines.
type Logger struct {
	Writer  io.Writer
	Verbose bool
	// RunID tags verbose lines so interleaved output from parallel runs can
	// be told apart.
	RunID string

	mu *sync.Mutex
}

func New(writer io.Writer, verbose bool, runID string) Logger {
	return Logger{Writer: writer, Verbose: verbose, RunID: runID, mu: &sync.Mutex{}}
}

func (l Logger) Infof(format string, args ...any) {
	if l.Writer == nil {
		return
	}
	if l.mu != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
	}
	fmt.Fprintf(l.Writer, format+"\n", args...)
}

func (l Logger) Warnf(format string, args ...any) {
	l.Infof("Warning: "+format, args...)
}

func (l Logger) Verbosef(format string, args ...any) {
	if !l.Verbose {
		return
	}
	if l.RunID != "" {
		l.Infof("Verbose [%s]: "+format, append([]any{l.RunID}, args...)...)
		return
	}
	l.Infof("Verbose: "+format, args...)
}

// Measure returns a stop function that logs the elapsed time when called.
func (l Logger) Measure(label string) func() {
	if !l.Verbose {
		return func() {}
	}
	start := time.Now()
	return func() {
		elapsed := time.Since(start).Round(time.Millisecond)
		l.Verbosef("%s took %s", label, elapsed)
	}
}
