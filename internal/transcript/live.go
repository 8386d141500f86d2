package transcript

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// LiveWriter appends timestamped lines to one file for the whole run.
type LiveWriter struct {
	f *os.File
}

// CreateLive truncates or creates path.
func CreateLive(path string) (*LiveWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &LiveWriter{f: f}, nil
}

// FormatLine renders "[HH:MM:SS] text".
func FormatLine(at time.Time, text string) string {
	// Keep one window per line.
	text = strings.Join(strings.Fields(text), " ")
	return fmt.Sprintf("[%s] %s", at.Format("15:04:05"), text)
}

// WriteLine writes one full line and flushes it to disk.
func (w *LiveWriter) WriteLine(at time.Time, text string) (string, error) {
	line := FormatLine(at, text)
	if _, err := w.f.WriteString(line + "\n"); err != nil {
		return line, err
	}
	return line, w.f.Sync()
}

// Close closes the underlying file.
func (w *LiveWriter) Close() error {
	return w.f.Close()
}
