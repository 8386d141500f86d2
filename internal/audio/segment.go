package audio

import (
	"fmt"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Clip is one window of a longer recording, materialized as its own WAV file.
// The file only exists for the duration of the Segmenter callback.
type Clip struct {
	Window
	Path string
}

// Segmenter walks a WAV file in fixed windows.
type Segmenter struct {
	Size    time.Duration
	TempDir string
}

// Plan returns the windows Each would visit for the file at path.
func (s Segmenter) Plan(path string) ([]Window, Info, error) {
	info, err := Stat(path)
	if err != nil {
		return nil, Info{}, err
	}
	return Split(info.Duration(), s.Size), info, nil
}

// Each reads the windows of path in order and calls fn with each one written
// to a temporary WAV clip. The clip is removed once fn returns. Iteration stops
// at the first error.
func (s Segmenter) Each(path string, fn func(Clip) error) error {
	if s.Size <= 0 {
		return fmt.Errorf("segment %s: window size must be positive", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	info, err := statDecoder(path, d)
	if err != nil {
		return err
	}
	windows := Split(info.Duration(), s.Size)
	for i, w := range windows {
		start := frameAt(w.Offset, info.SampleRate)
		end := frameAt(w.End(), info.SampleRate)
		if i == len(windows)-1 || end > info.Frames {
			end = info.Frames
		}
		buf, err := readFrames(d, info, int(end-start))
		if err != nil {
			return fmt.Errorf("read %s: %w", w, err)
		}
		if err := s.emit(w, buf, fn); err != nil {
			return err
		}
	}
	return nil
}

func (s Segmenter) emit(w Window, buf *Buffer, fn func(Clip) error) error {
	tmp, err := os.CreateTemp(s.TempDir, fmt.Sprintf("parte-%03d-*.wav", w.Index+1))
	if err != nil {
		return err
	}
	path := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(path)

	if err := WriteWAV(path, buf); err != nil {
		return err
	}
	return fn(Clip{Window: w, Path: path})
}

func readFrames(d *wav.Decoder, info Info, frames int) (*Buffer, error) {
	want := frames * info.Channels
	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: info.Channels, SampleRate: info.SampleRate},
		Data:   make([]int, want),
	}
	got := 0
	for got < want {
		chunk := &goaudio.IntBuffer{Format: ib.Format, Data: ib.Data[got:]}
		n, err := d.PCMBuffer(chunk)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		got += n
	}
	return &Buffer{
		Samples:    toInt16(ib.Data[:got], info.BitDepth),
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
	}, nil
}
