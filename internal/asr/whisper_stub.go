//go:build !whisper

package asr

import (
	"errors"

	"transcritor/internal/config"

	"github.com/sirupsen/logrus"
)

func newWhisperRecognizer(_ *config.Config, _ logrus.FieldLogger) (Recognizer, error) {
	return nil, errors.New("whisper backend: build with '-tags whisper' (whisper.cpp required)")
}
