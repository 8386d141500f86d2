package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrInvalidWAV is returned for files that are not PCM WAV.
var ErrInvalidWAV = errors.New("not a valid PCM wav file")

// Buffer holds interleaved 16-bit PCM.
type Buffer struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Duration returns the playback length of the buffer.
func (b *Buffer) Duration() time.Duration {
	return durationOf(int64(b.Frames()), b.SampleRate)
}

// Mono downmixes to a single channel of float64 samples in [-1, 1].
func (b *Buffer) Mono() []float64 {
	frames := b.Frames()
	out := make([]float64, frames)
	if frames == 0 {
		return out
	}
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < b.Channels; c++ {
			sum += int(b.Samples[i*b.Channels+c])
		}
		out[i] = float64(sum) / float64(b.Channels) / 32768.0
	}
	return out
}

// WriteWAV encodes buf as 16-bit PCM WAV at path.
func WriteWAV(path string, buf *Buffer) (err error) {
	if buf.Channels <= 0 || buf.SampleRate <= 0 {
		return fmt.Errorf("write wav: bad format %d Hz x %d ch", buf.SampleRate, buf.Channels)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := wav.NewEncoder(f, buf.SampleRate, 16, buf.Channels, 1)
	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, len(buf.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range buf.Samples {
		ib.Data[i] = int(s)
	}
	if err := enc.Write(ib); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

// ReadWAV decodes a whole WAV file into memory.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &Buffer{
		Samples:    toInt16(ib.Data, int(d.BitDepth)),
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
	}, nil
}

// Info describes a WAV file without decoding its samples.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int64
}

// Duration returns the playback length.
func (i Info) Duration() time.Duration {
	return durationOf(i.Frames, i.SampleRate)
}

// Stat reads the header of a WAV file.
func Stat(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()
	d := wav.NewDecoder(f)
	return statDecoder(path, d)
}

func statDecoder(path string, d *wav.Decoder) (Info, error) {
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	if err := d.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%s: seek pcm: %w", path, err)
	}
	info := Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	frameBytes := int64(info.Channels * info.BitDepth / 8)
	if frameBytes <= 0 || info.SampleRate <= 0 {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidWAV)
	}
	info.Frames = d.PCMLen() / frameBytes
	return info, nil
}

func toInt16(data []int, bitDepth int) []int16 {
	out := make([]int16, len(data))
	switch {
	case bitDepth == 8:
		// 8-bit WAV is unsigned.
		for i, v := range data {
			out[i] = int16((v - 128) << 8)
		}
	case bitDepth > 16:
		shift := uint(bitDepth - 16)
		for i, v := range data {
			out[i] = int16(v >> shift)
		}
	default:
		for i, v := range data {
			out[i] = int16(v)
		}
	}
	return out
}

func durationOf(frames int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

func frameAt(d time.Duration, rate int) int64 {
	return int64(d) * int64(rate) / int64(time.Second)
}
