package asr

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"transcritor/internal/audio"
	"transcritor/internal/config"
	"transcritor/internal/logging"
)

type stubRecognizer struct {
	text  string
	err   error
	calls int
}

func (s *stubRecognizer) Recognize(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func (s *stubRecognizer) Close() error { return nil }

func TestTranscribeClassifiesOutcomes(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	cases := []struct {
		name    string
		rec     *stubRecognizer
		outcome Outcome
		text    string
		errText string
	}{
		{"recognized", &stubRecognizer{text: "  bom dia a todos "}, Recognized, "bom dia a todos", ""},
		{"sentinel", &stubRecognizer{err: ErrUnrecognized}, Unrecognized, "", ""},
		{"empty text", &stubRecognizer{text: "   "}, Unrecognized, "", ""},
		{"request error", &stubRecognizer{err: &RequestError{Backend: "openai", Err: netErr}}, RequestFailed, "", "connection refused"},
		{"plain error", &stubRecognizer{err: errors.New("disk full")}, RequestFailed, "", "disk full"},
	}
	for _, c := range cases {
		res := Transcribe(context.Background(), c.rec, "x.wav")
		if res.Outcome != c.outcome || res.Text != c.text {
			t.Fatalf("%s: got %+v", c.name, res)
		}
		if c.errText != "" && (res.Err == nil || !strings.Contains(res.Err.Error(), c.errText)) {
			t.Fatalf("%s: err = %v", c.name, res.Err)
		}
		if c.rec.calls != 1 {
			t.Fatalf("%s: recognizer called %d times, want exactly once", c.name, c.rec.calls)
		}
	}
}

func TestRequestErrorUnwrap(t *testing.T) {
	base := context.DeadlineExceeded
	err := error(&RequestError{Backend: "gemini", Err: base})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected unwrap to deadline exceeded")
	}
	if err.Error() != "gemini: context deadline exceeded" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestBaseLanguage(t *testing.T) {
	for in, want := range map[string]string{"pt-BR": "pt", "pt_br": "pt", "en": "en", " PT ": "pt", "": ""} {
		if got := baseLanguage(in); got != want {
			t.Fatalf("baseLanguage(%q) = %q want %q", in, got, want)
		}
	}
}

type fixedDetector struct {
	speech bool
	err    error
}

func (d fixedDetector) HasSpeech(*audio.Buffer) (bool, error) { return d.speech, d.err }

func TestSpeechGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.wav")
	if err := audio.WriteWAV(path, &audio.Buffer{Samples: make([]int16, 1600), SampleRate: 16000, Channels: 1}); err != nil {
		t.Fatal(err)
	}
	logger := logging.NewTestLogger()

	next := &stubRecognizer{text: "olá"}
	silent := WithSpeechGate(next, fixedDetector{speech: false}, logger)
	if _, err := silent.Recognize(context.Background(), path); !errors.Is(err, ErrUnrecognized) {
		t.Fatalf("silent window should be unrecognized, got %v", err)
	}
	if next.calls != 0 {
		t.Fatalf("backend should not be called for silence")
	}

	voiced := WithSpeechGate(next, fixedDetector{speech: true}, logger)
	if got, err := voiced.Recognize(context.Background(), path); err != nil || got != "olá" {
		t.Fatalf("voiced window: %q %v", got, err)
	}

	broken := WithSpeechGate(next, fixedDetector{err: errors.New("vad down")}, logger)
	if got, err := broken.Recognize(context.Background(), path); err != nil || got != "olá" {
		t.Fatalf("detector failure should fall through: %q %v", got, err)
	}
}

func TestNewRecognizerRequiresKey(t *testing.T) {
	cfg, _ := config.Default()
	cfg.ASR.Backend = "openai"
	cfg.ASR.APIKey = ""
	if _, err := NewRecognizer(context.Background(), cfg, logging.NewTestLogger()); err == nil {
		t.Fatalf("expected missing key error")
	}
	cfg.ASR.Backend = "telepathy"
	if _, err := NewRecognizer(context.Background(), cfg, logging.NewTestLogger()); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
