//go:build whisper

package asr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"transcritor/internal/audio"
	"transcritor/internal/config"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/sirupsen/logrus"
)

// whisperRecognizer transcribes locally with whisper.cpp.
type whisperRecognizer struct {
	logger   logrus.FieldLogger
	language string

	mu    sync.Mutex
	model whisper.Model
}

func newWhisperRecognizer(cfg *config.Config, logger logrus.FieldLogger) (Recognizer, error) {
	path := os.ExpandEnv(cfg.ASR.ModelPath)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("whisper model %s: %w (run: transcritor models download)", path, err)
	}
	model, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	return &whisperRecognizer{
		logger:   logger,
		language: baseLanguage(cfg.ASR.Language),
		model:    model,
	}, nil
}

func (r *whisperRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	buf, err := audio.ReadWAV(wavPath)
	if err != nil {
		return "", err
	}
	mono, err := audio.MonoAt(buf, audio.SpeechRate)
	if err != nil {
		return "", err
	}
	samples := make([]float32, len(mono))
	for i, s := range mono {
		samples[i] = float32(s)
	}
	if err := ctx.Err(); err != nil {
		return "", &RequestError{Backend: "whisper", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	wctx, err := r.model.NewContext()
	if err != nil {
		return "", &RequestError{Backend: "whisper", Err: err}
	}
	wctx.SetThreads(uint(runtime.NumCPU()))
	if r.language != "" {
		if err := wctx.SetLanguage(r.language); err != nil {
			r.logger.Warnf("set language: %v", err)
		}
	}
	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", &RequestError{Backend: "whisper", Err: err}
	}
	var b strings.Builder
	for {
		seg, err := wctx.NextSegment()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return "", &RequestError{Backend: "whisper", Err: err}
		}
		b.WriteString(seg.Text)
		if !strings.HasSuffix(seg.Text, " ") {
			b.WriteByte(' ')
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" || text == "[BLANK_AUDIO]" {
		return "", ErrUnrecognized
	}
	return text, nil
}

func (r *whisperRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.model.Close()
}
