package asr

import (
	"context"

	"transcritor/internal/audio"

	"github.com/sirupsen/logrus"
)

// SpeechDetector decides whether a buffer is worth sending to a backend.
type SpeechDetector interface {
	HasSpeech(buf *audio.Buffer) (bool, error)
}

type gatedRecognizer struct {
	next   Recognizer
	det    SpeechDetector
	logger logrus.FieldLogger
}

// WithSpeechGate answers ErrUnrecognized for silent recordings without calling next.
func WithSpeechGate(next Recognizer, det SpeechDetector, logger logrus.FieldLogger) Recognizer {
	return &gatedRecognizer{next: next, det: det, logger: logger}
}

func (g *gatedRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	buf, err := audio.ReadWAV(wavPath)
	if err != nil {
		return "", err
	}
	speech, err := g.det.HasSpeech(buf)
	if err != nil {
		g.logger.Warnf("speech gate: %v; sending anyway", err)
		return g.next.Recognize(ctx, wavPath)
	}
	if !speech {
		g.logger.Debugf("speech gate: no voice in %s", wavPath)
		return "", ErrUnrecognized
	}
	return g.next.Recognize(ctx, wavPath)
}

func (g *gatedRecognizer) Close() error { return g.next.Close() }
