// Package logger provides leveled logging for the campus CLI.
// Debug and Info messages are printed only in verbose mode (--verbose);
// warnings and errors are always printed. All output goes to stderr so it
// never mixes with answers written to stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func write(always bool, level, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if !always && !verbose {
		return
	}
	fmt.Fprintf(output, "["+level+"] "+prefix+format+"\n", args...)
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) { write(false, "DEBUG", "", format, args...) }

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) { write(false, "INFO", "", format, args...) }

// Warn prints a warning.
func Warn(format string, args ...any) { write(true, "WARN", "", format, args...) }

// Error prints an error.
func Error(format string, args ...any) { write(true, "ERROR", "", format, args...) }

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Logger prefixes every message with a component name.
type Logger struct {
	prefix string
}

// For returns a Logger whose messages read "component: message".
func For(component string) Logger {
	return Logger{prefix: component + ": "}
}

// Debug prints a message if verbose mode is enabled.
func (l Logger) Debug(format string, args ...any) { write(false, "DEBUG", l.prefix, format, args...) }

// Info prints an informational message if verbose mode is enabled.
func (l Logger) Info(format string, args ...any) { write(false, "INFO", l.prefix, format, args...) }

// Warn prints a warning.
func (l Logger) Warn(format string, args ...any) { write(true, "WARN", l.prefix, format, args...) }

// Error prints an error.
func (l Logger) Error(format string, args ...any) { write(true, "ERROR", l.prefix, format, args...) }
