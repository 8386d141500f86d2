package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/logging"
	"transcritor/internal/media"
)

// fakeExtractor writes a tone of the configured length instead of calling ffmpeg.
type fakeExtractor struct {
	length time.Duration
	fail   map[string]bool
	seen   []string
}

func (f *fakeExtractor) Extract(_ context.Context, videoPath, wavPath string) error {
	f.seen = append(f.seen, filepath.Base(videoPath))
	if f.fail[filepath.Base(videoPath)] {
		return &media.ExtractError{Video: videoPath, Err: errBoom}
	}
	return writeTone(wavPath, f.length, 8000)
}

func newBatch(t *testing.T, files []string, ex Extractor, rec asr.Recognizer) *Batch {
	cfg := testConfig(t)
	cfg.Video.ChunkSec = 1
	if err := os.MkdirAll(filepath.Join(cfg.Paths.VideoDir, "clips.mp4"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(cfg.Paths.VideoDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return &Batch{
		Config:     cfg,
		Logger:     logging.NewTestLogger(),
		Extractor:  ex,
		Recognizer: rec,
	}
}

func TestBatchProcessesAllowListedVideos(t *testing.T) {
	ex := &fakeExtractor{length: 2500 * time.Millisecond}
	rec := &scriptRecognizer{replies: []reply{
		{text: "olá"},
		{err: asr.ErrUnrecognized},
		{text: "tchau"},
		{err: &asr.RequestError{Backend: "openai", Err: errBoom}},
		{text: "b dois"},
		{text: "b três"},
	}}
	b := newBatch(t, []string{"a.mp4", "notes.txt", "b.MKV"}, ex, rec)

	sum, err := b.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sum.Processed != 2 || sum.Skipped != 2 || len(sum.Failed) != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if strings.Join(ex.seen, ",") != "a.mp4,b.MKV" {
		t.Fatalf("extracted %v", ex.seen)
	}

	a, err := os.ReadFile(filepath.Join(b.Config.Paths.TranscriptDir, "a.txt"))
	if err != nil {
		t.Fatalf("read a.txt: %v", err)
	}
	if want := "olá [Parte 2 não reconhecida] tchau "; string(a) != want {
		t.Fatalf("a.txt = %q want %q", a, want)
	}
	bb, err := os.ReadFile(filepath.Join(b.Config.Paths.TranscriptDir, "b.txt"))
	if err != nil {
		t.Fatalf("read b.txt: %v", err)
	}
	if want := "[Erro na requisição da parte 1: boom] b dois b três "; string(bb) != want {
		t.Fatalf("b.txt = %q want %q", bb, want)
	}
	if _, err := os.Stat(filepath.Join(b.Config.Paths.AudioDir, "a.wav")); err != nil {
		t.Fatalf("extracted audio should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(b.Config.Paths.TranscriptDir, "notes.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("unsupported file should produce no transcript")
	}
}

func TestBatchExtractionFailureSkipsVideo(t *testing.T) {
	ex := &fakeExtractor{length: 500 * time.Millisecond, fail: map[string]bool{"a.mp4": true}}
	rec := &scriptRecognizer{replies: []reply{{text: "só o c"}}}
	b := newBatch(t, []string{"a.mp4", "c.avi"}, ex, rec)
	b.Config.Video.KeepAudio = false

	sum, err := b.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "a.mp4") {
		t.Fatalf("err = %v, want failure naming a.mp4", err)
	}
	if sum.Processed != 1 || len(sum.Failed) != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(b.Config.Paths.TranscriptDir, "a.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("failed video should have no transcript")
	}
	c, err := os.ReadFile(filepath.Join(b.Config.Paths.TranscriptDir, "c.txt"))
	if err != nil || string(c) != "só o c " {
		t.Fatalf("c.txt = %q err = %v", c, err)
	}
	if _, err := os.Stat(filepath.Join(b.Config.Paths.AudioDir, "c.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("extracted audio should be removed when keep_audio is false")
	}
}

func TestBatchStopsBetweenVideosWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &fakeExtractor{length: time.Second}
	b := newBatch(t, []string{"a.mp4"}, ex, &scriptRecognizer{})

	if _, err := b.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(ex.seen) != 0 {
		t.Fatalf("no video should be processed after cancel")
	}
}

func TestBatchCancelDuringLastPartWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ex := &fakeExtractor{length: 1500 * time.Millisecond}
	rec := &scriptRecognizer{replies: []reply{
		{text: "um"},
		{hook: cancel, err: &asr.RequestError{Backend: "openai", Err: context.Canceled}},
	}}
	b := newBatch(t, []string{"a.mp4"}, ex, rec)

	sum, err := b.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if sum.Processed != 0 || len(sum.Failed) != 0 {
		t.Fatalf("interrupted video should not be counted: %+v", sum)
	}
	if _, err := os.Stat(filepath.Join(b.Config.Paths.TranscriptDir, "a.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("interrupted video should have no transcript, stat err = %v", err)
	}
}

func TestSupportedIsCaseInsensitive(t *testing.T) {
	b := &Batch{Config: testConfig(t)}
	for name, want := range map[string]bool{
		"a.mp4": true, "A.MP4": true, "b.Avi": true, "c.mkv": true,
		"d.mov": false, "mp4": false, "notes.txt": false,
	} {
		if got := b.Supported(name); got != want {
			t.Fatalf("Supported(%q) = %v want %v", name, got, want)
		}
	}
}
