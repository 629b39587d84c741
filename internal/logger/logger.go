// Package logger provides diagnostic and status output for the tabula CLI.
//
// Diagnostics (Debug, Info) are only emitted in verbose mode and go to
// stderr through a charmbracelet/log logger. Warnings are always emitted.
// Status lines are the plain human-readable progress messages every
// operation prints (for example "Library not found.") and go to stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	status  io.Writer = os.Stdout
	backend           = newBackend(os.Stderr, false)
)

func newBackend(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "tabula",
		ReportTimestamp: false,
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	backend = newBackend(output, v)
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for diagnostic logs.
// Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	backend = newBackend(w, verbose)
}

// SetStatusOutput sets the writer that receives status lines.
// Defaults to os.Stdout.
func SetStatusOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	status = w
}

// Debug logs a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Debugf(format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info logs an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Infof(format, args...)
}

// Warn logs a warning. Warnings are emitted regardless of verbose mode.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	backend.Warnf(format, args...)
}

// Status prints a plain status line.
func Status(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(status, format+"\n", args...)
}
