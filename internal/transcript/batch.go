package transcript

import (
	"os"
	"path/filepath"
	"strings"
)

// Batch accumulates the parts of one video in order.
type Batch struct {
	sb    strings.Builder
	parts int
}

// Add appends one part followed by a space.
func (b *Batch) Add(text string) {
	b.sb.WriteString(text)
	b.sb.WriteByte(' ')
	b.parts++
}

// Parts returns how many windows were added.
func (b *Batch) Parts() int { return b.parts }

// String returns the concatenated transcript.
func (b *Batch) String() string { return b.sb.String() }

// WriteFile writes the whole transcript at once.
func (b *Batch) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
