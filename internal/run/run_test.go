package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/audio"
	"transcritor/internal/config"
)

// scriptRecognizer answers each call with the next scripted reply.
type scriptRecognizer struct {
	mu      sync.Mutex
	replies []reply
	calls   []string
}

type reply struct {
	text string
	err  error
	hook func()
}

func (s *scriptRecognizer) Recognize(_ context.Context, wavPath string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, wavPath)
	if len(s.replies) == 0 {
		return "", asr.ErrUnrecognized
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	if r.hook != nil {
		r.hook()
	}
	return r.text, r.err
}

func (s *scriptRecognizer) Close() error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	root := t.TempDir()
	cfg.Paths.TranscriptDir = filepath.Join(root, "transcrição")
	cfg.Paths.VideoDir = filepath.Join(root, "video_transcrição")
	cfg.Paths.AudioDir = filepath.Join(root, "audio_extraído")
	cfg.Audio.TempDir = filepath.Join(root, "tmp")
	if err := os.MkdirAll(cfg.Audio.TempDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return cfg
}

func writeTone(path string, d time.Duration, rate int) error {
	n := int(d.Seconds() * float64(rate))
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i % 2000)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return audio.WriteWAV(path, &audio.Buffer{Samples: samples, SampleRate: rate, Channels: 1})
}

var errBoom = errors.New("boom")
