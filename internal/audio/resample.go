package audio

import (
	"fmt"

	resampling "github.com/tphakala/go-audio-resampling"
)

// SpeechRate is the rate expected by the speech gate and the local whisper model.
const SpeechRate = 16000

// MonoAt downmixes buf and converts it to rate, returning float samples in [-1, 1].
func MonoAt(buf *Buffer, rate int) ([]float64, error) {
	mono := buf.Mono()
	if buf.SampleRate == rate || len(mono) == 0 {
		return mono, nil
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(buf.SampleRate),
		OutputRate: float64(rate),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, fmt.Errorf("create resampler: %w", err)
	}
	out, err := rs.Process(mono)
	if err != nil {
		return nil, fmt.Errorf("resample %d->%d: %w", buf.SampleRate, rate, err)
	}
	// Flush drains the filter delay line.
	tail, err := rs.Flush()
	if err != nil {
		return nil, fmt.Errorf("flush resampler: %w", err)
	}
	return append(out, tail...), nil
}
