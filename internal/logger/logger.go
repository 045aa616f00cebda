package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultMaxLines is how many lines a Logger keeps in memory before dropping the oldest.
const DefaultMaxLines = 1000

// Logger stores timestamped lines in memory and appends them to a file on disk.
// It is safe for concurrent use; the force pass may report from several goroutines.
type Logger struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	file     *os.File
	echo     io.Writer
	now      func() time.Time
}

// New returns a Logger appending to path, creating its directory. An empty path
// keeps lines in memory only.
func New(path string) (*Logger, error) {
	l := &Logger{maxLines: DefaultMaxLines, now: time.Now}
	if path == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l.file = f
	return l, nil
}

// SetEcho copies every stamped line to w as well (e.g. os.Stderr). nil disables it.
func (l *Logger) SetEcho(w io.Writer) {
	l.mu.Lock()
	l.echo = w
	l.mu.Unlock()
}

// Log appends a line prefixed with [timestamp].
func (l *Logger) Log(line string) {
	stamped := "[" + l.now().Format("2006-01-02 15:04:05") + "] " + line

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, stamped)
	if over := len(l.lines) - l.maxLines; over > 0 {
		l.lines = append(l.lines[:0], l.lines[over:]...)
	}
	if l.file != nil {
		_, _ = l.file.WriteString(stamped + "\n")
	}
	if l.echo != nil {
		_, _ = io.WriteString(l.echo, stamped+"\n")
	}
}

// Logf is Log with fmt.Sprintf formatting.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Lines returns a copy of the stored lines, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

// Close closes the log file. The Logger keeps working in memory afterwards.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
