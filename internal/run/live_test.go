package run

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/audio"
	"transcritor/internal/logging"
)

var testDevices = []audio.Device{
	{Index: 0, Name: "Microfone (Realtek)", HostAPI: "MME", MaxInputChannels: 2},
	{Index: 1, Name: "Mixagem estéreo (Realtek)", HostAPI: "MME", MaxInputChannels: 2},
}

// fakeCapturer writes a short WAV per call and cancels the run after limit calls.
type fakeCapturer struct {
	dir    string
	limit  int
	cancel context.CancelFunc
	paths  []string
	dev    audio.Device
}

func (f *fakeCapturer) Capture(ctx context.Context, dev audio.Device, d time.Duration) (string, error) {
	f.dev = dev
	if len(f.paths) == f.limit {
		f.cancel()
		return "", ctx.Err()
	}
	tmp, err := os.CreateTemp(f.dir, "captura-*.wav")
	if err != nil {
		return "", err
	}
	_ = tmp.Close()
	if err := writeTone(tmp.Name(), 100*time.Millisecond, 8000); err != nil {
		return "", err
	}
	f.paths = append(f.paths, tmp.Name())
	return tmp.Name(), nil
}

func newLive(t *testing.T, c Capturer, rec asr.Recognizer) *Live {
	cfg := testConfig(t)
	clock := time.Date(2024, 5, 6, 14, 3, 0, 0, time.Local)
	return &Live{
		Config:     cfg,
		Logger:     logging.NewTestLogger(),
		Devices:    func() ([]audio.Device, error) { return testDevices, nil },
		Capturer:   c,
		Recognizer: rec,
		Now: func() time.Time {
			clock = clock.Add(10 * time.Second)
			return clock
		},
	}
}

func TestLiveWritesOneLinePerWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &scriptRecognizer{replies: []reply{
		{text: "bom dia a todos"},
		{err: asr.ErrUnrecognized},
		{err: &asr.RequestError{Backend: "openai", Err: errBoom}},
	}}
	capt := &fakeCapturer{limit: 3, cancel: cancel}
	l := newLive(t, capt, rec)
	capt.dir = l.Config.Audio.TempDir

	if err := l.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if capt.dev.Index != 1 {
		t.Fatalf("captured from %+v, want the loopback device", capt.dev)
	}
	data, err := os.ReadFile(l.Config.LiveTranscriptPath())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	want := "[14:03:10] bom dia a todos\n" +
		"[14:03:20] [Fala não reconhecida]\n" +
		"[14:03:30] [Erro na requisição: boom]\n"
	if string(data) != want {
		t.Fatalf("transcript:\n%s\nwant:\n%s", data, want)
	}
	for _, p := range capt.paths {
		if _, err := os.Stat(p); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("temp capture %s not removed", p)
		}
	}
}

func TestLiveCancelDuringRecognitionWritesNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &scriptRecognizer{replies: []reply{
		{text: "primeira"},
		{hook: cancel, err: &asr.RequestError{Backend: "openai", Err: context.Canceled}},
	}}
	capt := &fakeCapturer{limit: 10, cancel: cancel}
	l := newLive(t, capt, rec)
	capt.dir = l.Config.Audio.TempDir

	if err := l.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(l.Config.LiveTranscriptPath())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 || lines[0] != "[14:03:10] primeira" {
		t.Fatalf("lines = %q", lines)
	}
}

func TestLiveWithoutLoopbackCreatesNoFile(t *testing.T) {
	l := newLive(t, &fakeCapturer{}, &scriptRecognizer{})
	l.Devices = func() ([]audio.Device, error) { return testDevices[:1], nil }

	err := l.Run(context.Background())
	if !errors.Is(err, audio.ErrNoLoopbackDevice) {
		t.Fatalf("err = %v, want ErrNoLoopbackDevice", err)
	}
	if _, err := os.Stat(l.Config.LiveTranscriptPath()); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("transcript should not exist, stat err = %v", err)
	}
}

func TestLiveUsesPreselectedDevice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	capt := &fakeCapturer{limit: 1, cancel: cancel}
	l := newLive(t, capt, &scriptRecognizer{replies: []reply{{text: "ok"}}})
	capt.dir = l.Config.Audio.TempDir
	l.Devices = func() ([]audio.Device, error) {
		t.Fatalf("devices should not be listed again")
		return nil, nil
	}
	l.Device = &testDevices[1]

	if err := l.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if capt.dev.Name != testDevices[1].Name {
		t.Fatalf("captured from %+v", capt.dev)
	}
}

func TestLiveCaptureFailureAborts(t *testing.T) {
	l := newLive(t, failingCapturer{}, &scriptRecognizer{})
	err := l.Run(context.Background())
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want capture failure", err)
	}
}

type failingCapturer struct{}

func (failingCapturer) Capture(context.Context, audio.Device, time.Duration) (string, error) {
	return "", errBoom
}
