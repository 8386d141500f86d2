package audio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func ramp(frames, channels int) []int16 {
	out := make([]int16, frames*channels)
	for i := range out {
		out[i] = int16(i % 30000)
	}
	return out
}

func TestWriteAndReadWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wav")
	in := &Buffer{Samples: ramp(4000, 2), SampleRate: 8000, Channels: 2}
	if err := WriteWAV(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}

	info, err := Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.SampleRate != 8000 || info.Channels != 2 || info.BitDepth != 16 || info.Frames != 4000 {
		t.Fatalf("info = %+v", info)
	}
	if info.Duration() != 500*time.Millisecond {
		t.Fatalf("duration = %v", info.Duration())
	}

	out, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("samples %d want %d", len(out.Samples), len(in.Samples))
	}
	for i := range in.Samples {
		if in.Samples[i] != out.Samples[i] {
			t.Fatalf("sample %d = %d want %d", i, out.Samples[i], in.Samples[i])
		}
	}
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.wav")
	if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadWAV(path); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
	if _, err := Stat(path); !errors.Is(err, ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV from Stat, got %v", err)
	}
}

func TestMonoDownmix(t *testing.T) {
	b := &Buffer{Samples: []int16{16384, -16384, 16384, 16384}, SampleRate: 8000, Channels: 2}
	m := b.Mono()
	if len(m) != 2 || m[0] != 0 || m[1] != 0.5 {
		t.Fatalf("mono = %v", m)
	}
}

func TestMonoAtSameRateIsPassthrough(t *testing.T) {
	b := &Buffer{Samples: []int16{0, 16384, -16384}, SampleRate: SpeechRate, Channels: 1}
	m, err := MonoAt(b, SpeechRate)
	if err != nil {
		t.Fatalf("mono at: %v", err)
	}
	if len(m) != 3 || m[1] != 0.5 || m[2] != -0.5 {
		t.Fatalf("samples = %v", m)
	}
}

func TestMonoAtKeepsWindowLength(t *testing.T) {
	b := &Buffer{Samples: ramp(44100, 2), SampleRate: 44100, Channels: 2}
	m, err := MonoAt(b, SpeechRate)
	if err != nil {
		t.Fatalf("mono at: %v", err)
	}
	// One second in, one second out; the resampler tail must not be dropped.
	if diff := len(m) - SpeechRate; diff < -32 || diff > 32 {
		t.Fatalf("resampled length = %d want about %d", len(m), SpeechRate)
	}
}
