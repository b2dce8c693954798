package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Logger writes leveled, printf-style messages to the console and,
// optionally, to a log file.
type Logger struct {
	Verbose bool

	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	fileLog *os.File
	muted   bool
}

// New creates a Logger writing to stdout and stderr.
func New(verbose bool) *Logger {
	return NewWithWriters(verbose, os.Stdout, os.Stderr)
}

// NewWithWriters creates a Logger with explicit console writers.
func NewWithWriters(verbose bool, out, errOut io.Writer) *Logger {
	return &Logger{
		Verbose: verbose,
		out:     out,
		errOut:  errOut,
	}
}

// Discard returns a Logger that prints nothing.
func Discard() *Logger {
	return NewWithWriters(false, io.Discard, io.Discard)
}

// SetFileLog mirrors every message, including debug output, to path.
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// SetProgressActive suppresses console info/warn output while a progress
// indicator owns the terminal line. File output is unaffected.
func (l *Logger) SetProgressActive(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.muted = active
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("INFO", format, args...)
}

// Debug logs detailed messages only in verbose mode
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Verbose {
		l.write("DEBUG", format, args...)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileLog != nil {
		l.fileLog.WriteString(fmt.Sprintf("[DEBUG] "+format+"\n", args...))
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write("WARN", format, args...)
}

// Error logs error messages to stderr, regardless of progress state.
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("[ERROR] "+format+"\n", args...)
	fmt.Fprint(l.errOut, msg)

	if l.fileLog != nil {
		l.fileLog.WriteString(msg)
	}
}

func (l *Logger) write(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format+"\n", args...)
	if level != "INFO" {
		msg = "[" + level + "] " + msg
	}

	if l.Verbose || !l.muted {
		fmt.Fprint(l.out, msg)
	}
	if l.fileLog != nil {
		l.fileLog.WriteString(msg)
	}
}
