package asr

import (
	"context"
	"errors"
	"strings"
	"time"

	"transcritor/internal/config"

	openai "github.com/sashabaranov/go-openai"
)

type openAIRecognizer struct {
	client   *openai.Client
	model    string
	language string
	timeout  time.Duration
}

func newOpenAIRecognizer(cfg *config.Config) (Recognizer, error) {
	if cfg.ASR.APIKey == "" {
		return nil, errors.New("openai backend: OPENAI_API_KEY is not set")
	}
	c := openai.DefaultConfig(cfg.ASR.APIKey)
	if cfg.ASR.BaseURL != "" {
		c.BaseURL = cfg.ASR.BaseURL
	}
	model := cfg.ASR.Model
	if model == "" {
		model = openai.Whisper1
	}
	return &openAIRecognizer{
		client:   openai.NewClientWithConfig(c),
		model:    model,
		language: baseLanguage(cfg.ASR.Language),
		timeout:  cfg.RequestTimeout(),
	}, nil
}

func (r *openAIRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: wavPath,
		Language: r.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", &RequestError{Backend: "openai", Err: err}
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnrecognized
	}
	return text, nil
}

func (r *openAIRecognizer) Close() error { return nil }
