package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/audio"
	"transcritor/internal/config"
	"transcritor/internal/hook"
	"transcritor/internal/transcript"

	"github.com/sirupsen/logrus"
)

// Capturer records one window from dev into a temporary WAV file and returns its path.
type Capturer interface {
	Capture(ctx context.Context, dev audio.Device, d time.Duration) (string, error)
}

// DeviceSource enumerates the host's audio devices.
type DeviceSource func() ([]audio.Device, error)

// Live records system audio window by window and appends one line per window.
// Capture and recognition alternate on one goroutine, so audio played while a
// window is being recognized is not captured.
type Live struct {
	Config     *config.Config
	Logger     logrus.FieldLogger
	Devices    DeviceSource
	Capturer   Capturer
	Recognizer asr.Recognizer
	Hook       *hook.Runner
	Now        func() time.Time
	// Device, when set, skips selection in Run.
	Device *audio.Device

	metrics metrics
}

// SelectDevice picks the loopback device the run will record from.
func (l *Live) SelectDevice() (audio.Device, error) {
	devs, err := l.Devices()
	if err != nil {
		return audio.Device{}, err
	}
	idx, err := audio.SelectLoopback(devs, audio.Criteria{
		Preferred: l.Config.Audio.DeviceName,
		Names:     l.Config.Audio.LoopbackNames,
		HostAPIs:  l.Config.Audio.LoopbackHostAPI,
	})
	if err != nil {
		return audio.Device{}, fmt.Errorf("%w among %d devices; enable \"Stereo Mix\" or set audio.device_name", err, len(devs))
	}
	return devs[idx], nil
}

// Run loops until ctx is cancelled. Device selection happens before the
// transcript file is touched, so a missing device leaves no output behind.
func (l *Live) Run(ctx context.Context) (err error) {
	if l.Device == nil {
		dev, err := l.SelectDevice()
		if err != nil {
			return err
		}
		l.Device = &dev
	}
	dev := *l.Device
	l.Logger.Infof("capture device: %s (id %d, api %s, %d input channels)", dev.Name, dev.Index, dev.HostAPI, dev.MaxInputChannels)

	if err := os.MkdirAll(l.Config.Paths.TranscriptDir, 0o755); err != nil {
		return err
	}
	path := l.Config.LiveTranscriptPath()
	w, err := transcript.CreateLive(path)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	l.Logger.Infof("transcript will be saved to %s", path)

	if l.Config.Metrics.Enabled {
		mctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go l.metrics.serve(mctx, l.Config.Metrics.Addr, l.Logger)
	}

	for ctx.Err() == nil {
		if err := l.cycle(ctx, dev, w, path); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				break
			}
			return err
		}
	}
	l.Logger.Info("transcription interrupted by user")
	return nil
}

// cycle captures, recognizes and writes one window. A cancelled context
// anywhere in the cycle means nothing is written.
func (l *Live) cycle(ctx context.Context, dev audio.Device, w *transcript.LiveWriter, path string) error {
	window := l.Config.Window()
	l.Logger.Debugf("capturing %s of system audio", window)
	start := time.Now()
	wav, err := l.Capturer.Capture(ctx, dev, window)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("capture from %q: %w", dev.Name, err)
	}
	defer func() {
		if err := os.Remove(wav); err != nil && !errors.Is(err, os.ErrNotExist) {
			l.Logger.Warnf("remove temp audio: %v", err)
		}
	}()
	captured := time.Since(start)
	at := l.now()

	start = time.Now()
	res := asr.Transcribe(ctx, l.Recognizer, wav)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	l.metrics.observe(res, captured, time.Since(start))

	text := transcript.LiveText(res)
	line, err := w.WriteLine(at, text)
	if err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	l.Logger.Info(line)
	if res.Outcome == asr.RequestFailed {
		l.Logger.Warnf("recognition failed: %v", res.Err)
	}

	if l.Hook.Enabled() && res.Outcome == asr.Recognized {
		job := hook.Job{Text: text, Source: "live", File: path, Timestamp: at}
		if err := l.Hook.Run(ctx, job); err != nil {
			l.Logger.Warnf("hook: %v", err)
		}
	}
	return nil
}

func (l *Live) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}
