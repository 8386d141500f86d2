package asr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"transcritor/internal/config"
	"transcritor/internal/vad"

	"github.com/sirupsen/logrus"
)

// ErrUnrecognized means the service heard no intelligible speech.
var ErrUnrecognized = errors.New("speech not recognized")

// RequestError wraps a failed call to a recognition backend.
type RequestError struct {
	Backend string
	Err     error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Backend, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Recognizer converts one WAV file into text.
type Recognizer interface {
	// Recognize returns the recognized text, ErrUnrecognized, or a *RequestError.
	Recognize(ctx context.Context, wavPath string) (string, error)
	Close() error
}

// Outcome classifies a recognition attempt.
type Outcome int

const (
	Recognized Outcome = iota
	Unrecognized
	RequestFailed
)

func (o Outcome) String() string {
	switch o {
	case Recognized:
		return "recognized"
	case Unrecognized:
		return "unrecognized"
	default:
		return "request_failed"
	}
}

// Result is what the writers need from one window.
type Result struct {
	Outcome Outcome
	Text    string
	Err     error
}

// Transcribe runs rec once on wavPath. It never retries.
func Transcribe(ctx context.Context, rec Recognizer, wavPath string) Result {
	text, err := rec.Recognize(ctx, wavPath)
	switch {
	case errors.Is(err, ErrUnrecognized):
		return Result{Outcome: Unrecognized}
	case err != nil:
		var rerr *RequestError
		if errors.As(err, &rerr) {
			return Result{Outcome: RequestFailed, Err: rerr.Err}
		}
		return Result{Outcome: RequestFailed, Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Outcome: Unrecognized}
	}
	return Result{Outcome: Recognized, Text: text}
}

// NewRecognizer builds the backend selected by asr.backend, wrapped in the
// speech gate when vad.enabled is set.
func NewRecognizer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (Recognizer, error) {
	var (
		rec Recognizer
		err error
	)
	switch cfg.ASR.Backend {
	case "openai":
		rec, err = newOpenAIRecognizer(cfg)
	case "gemini":
		rec, err = newGeminiRecognizer(ctx, cfg)
	case "whisper":
		rec, err = newWhisperRecognizer(cfg, logger)
	default:
		err = fmt.Errorf("unknown asr backend %q", cfg.ASR.Backend)
	}
	if err != nil {
		return nil, err
	}
	if cfg.VAD.Enabled {
		det := vad.Detector{Mode: cfg.VAD.Aggressiveness, MinRatio: cfg.VAD.MinSpeechRatio}
		rec = WithSpeechGate(rec, det, logger)
	}
	return rec, nil
}

// baseLanguage turns "pt-BR" into "pt" for APIs that take ISO-639-1 codes.
func baseLanguage(tag string) string {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
