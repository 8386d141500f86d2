package audio

import (
	"fmt"
	"time"
)

// Window is one contiguous slice of a longer recording.
type Window struct {
	Index    int
	Offset   time.Duration
	Duration time.Duration
}

// End returns the exclusive end of the window.
func (w Window) End() time.Duration {
	return w.Offset + w.Duration
}

func (w Window) String() string {
	return fmt.Sprintf("part %d: %s-%s", w.Index+1, w.Offset, w.End())
}

// Split cuts [0, total) into ceil(total/size) windows of length size; the last
// one holds the remainder. A non-positive total or size yields no windows.
func Split(total, size time.Duration) []Window {
	if total <= 0 || size <= 0 {
		return nil
	}
	n := int((total + size - 1) / size)
	out := make([]Window, 0, n)
	for i := 0; i < n; i++ {
		off := time.Duration(i) * size
		d := size
		if rest := total - off; rest < d {
			d = rest
		}
		out = append(out, Window{Index: i, Offset: off, Duration: d})
	}
	return out
}
