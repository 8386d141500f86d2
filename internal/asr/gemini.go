package asr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"transcritor/internal/config"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	noSpeechToken      = "<<NO_SPEECH>>"
)

type geminiRecognizer struct {
	client   *genai.Client
	model    string
	language string
	timeout  time.Duration
}

func newGeminiRecognizer(ctx context.Context, cfg *config.Config) (Recognizer, error) {
	if cfg.ASR.APIKey == "" {
		return nil, errors.New("gemini backend: GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.ASR.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	model := cfg.ASR.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &geminiRecognizer{
		client:   client,
		model:    model,
		language: cfg.ASR.Language,
		timeout:  cfg.RequestTimeout(),
	}, nil
}

func (r *geminiRecognizer) prompt() string {
	return fmt.Sprintf("Transcribe the speech in this audio verbatim. The spoken language is %s. "+
		"Reply with the transcript only, without timestamps or commentary. "+
		"If there is no intelligible speech, reply with exactly %s.", r.language, noSpeechToken)
}

func (r *geminiRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", err
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	resp, err := r.client.Models.GenerateContent(ctx, r.model, []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(r.prompt()),
			genai.NewPartFromBytes(data, "audio/wav"),
		},
	}}, nil)
	if err != nil {
		return "", &RequestError{Backend: "gemini", Err: err}
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" || strings.Contains(text, noSpeechToken) {
		return "", ErrUnrecognized
	}
	return text, nil
}

func (r *geminiRecognizer) Close() error { return nil }
