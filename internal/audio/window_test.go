package audio

import (
	"testing"
	"time"
)

func TestSplitScenario(t *testing.T) {
	ws := Split(25*time.Second, 10*time.Second)
	want := []time.Duration{10 * time.Second, 10 * time.Second, 5 * time.Second}
	if len(ws) != len(want) {
		t.Fatalf("got %d windows want %d", len(ws), len(want))
	}
	for i, w := range ws {
		if w.Index != i || w.Duration != want[i] {
			t.Fatalf("window %d = %+v", i, w)
		}
	}
}

func TestSplitCoversRangeExactlyOnce(t *testing.T) {
	sizes := []time.Duration{time.Second, 7 * time.Second, 60 * time.Second}
	totals := []time.Duration{
		1, time.Second, 59 * time.Second, 60 * time.Second, 61 * time.Second,
		3*time.Minute + 1500*time.Millisecond, 2 * time.Hour,
	}
	for _, size := range sizes {
		for _, total := range totals {
			ws := Split(total, size)
			wantN := int(total / size)
			rem := total % size
			if rem != 0 {
				wantN++
			}
			if len(ws) != wantN {
				t.Fatalf("Split(%v,%v): %d windows want %d", total, size, len(ws), wantN)
			}
			var cursor time.Duration
			for _, w := range ws {
				if w.Offset != cursor {
					t.Fatalf("Split(%v,%v): gap/overlap at %v (cursor %v)", total, size, w.Offset, cursor)
				}
				if w.Duration <= 0 || w.Duration > size {
					t.Fatalf("Split(%v,%v): bad duration %v", total, size, w.Duration)
				}
				cursor = w.End()
			}
			if cursor != total {
				t.Fatalf("Split(%v,%v): covers [0,%v)", total, size, cursor)
			}
			last := ws[len(ws)-1].Duration
			if rem != 0 && last != rem {
				t.Fatalf("Split(%v,%v): last %v want %v", total, size, last, rem)
			}
			if rem == 0 && last != size {
				t.Fatalf("Split(%v,%v): last %v want %v", total, size, last, size)
			}
		}
	}
}

func TestSplitDegenerate(t *testing.T) {
	if ws := Split(0, time.Second); len(ws) != 0 {
		t.Fatalf("empty recording should have no windows: %v", ws)
	}
	if ws := Split(time.Second, 0); len(ws) != 0 {
		t.Fatalf("zero window size should have no windows: %v", ws)
	}
}
