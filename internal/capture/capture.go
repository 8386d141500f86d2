package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"transcritor/internal/audio"

	"github.com/gordonklaus/portaudio"
)

// ListDevices enumerates all devices known to PortAudio, in host order.
func ListDevices() ([]audio.Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	out := make([]audio.Device, 0, len(devs))
	for i, d := range devs {
		out = append(out, fromPortAudio(i, d))
	}
	return out, nil
}

func fromPortAudio(i int, d *portaudio.DeviceInfo) audio.Device {
	host := ""
	if d.HostApi != nil {
		host = d.HostApi.Name
	}
	return audio.Device{
		Index:             i,
		Name:              d.Name,
		HostAPI:           host,
		MaxInputChannels:  d.MaxInputChannels,
		DefaultSampleRate: d.DefaultSampleRate,
	}
}

// Recorder captures fixed-length windows from one input device.
type Recorder struct {
	SampleRate int
	// Channels overrides the device maximum when positive.
	Channels int
	TempDir  string
}

// Capture records d of audio from dev, blocking until done, and writes it to a
// temporary WAV file whose path is returned. The caller removes the file.
// A cancelled ctx aborts the recording and discards what was captured.
func (r Recorder) Capture(ctx context.Context, dev audio.Device, d time.Duration) (string, error) {
	buf, err := r.Record(ctx, dev, d)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(r.TempDir, "captura-*.wav")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	_ = tmp.Close()
	if err := audio.WriteWAV(path, buf); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Record captures d of interleaved 16-bit PCM from dev.
func (r Recorder) Record(ctx context.Context, dev audio.Device, d time.Duration) (*audio.Buffer, error) {
	channels := dev.MaxInputChannels
	if r.Channels > 0 && r.Channels < channels {
		channels = r.Channels
	}
	if channels <= 0 {
		return nil, fmt.Errorf("device %q has no input channels", dev.Name)
	}
	if r.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", r.SampleRate)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if dev.Index < 0 || dev.Index >= len(devs) {
		return nil, fmt.Errorf("device %d (%s) disappeared", dev.Index, dev.Name)
	}
	info := devs[dev.Index]

	// 100ms reads keep cancellation responsive.
	framesPerBuffer := r.SampleRate / 10
	total := int(d * time.Duration(r.SampleRate) / time.Second)
	chunk := make([]int16, framesPerBuffer*channels)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: channels,
			Latency:  info.DefaultHighInputLatency,
		},
		SampleRate:      float64(r.SampleRate),
		FramesPerBuffer: framesPerBuffer,
	}, &chunk)
	if err != nil {
		return nil, fmt.Errorf("open stream on %q (%d ch @ %d Hz): %w", dev.Name, channels, r.SampleRate, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	samples := make([]int16, 0, total*channels)
	for captured := 0; captured < total; {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
			return nil, fmt.Errorf("stream read: %w", err)
		}
		n := framesPerBuffer
		if rest := total - captured; rest < n {
			n = rest
		}
		samples = append(samples, chunk[:n*channels]...)
		captured += n
	}
	return &audio.Buffer{Samples: samples, SampleRate: r.SampleRate, Channels: channels}, nil
}
