package vad

import (
	"encoding/binary"
	"fmt"
	"math"

	"transcritor/internal/audio"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// frameSamples is 20ms at audio.SpeechRate.
const frameSamples = audio.SpeechRate / 50

// Detector flags recordings that carry no voice at all.
type Detector struct {
	// Mode is the WebRTC aggressiveness, 0 (least) to 3 (most).
	Mode int
	// MinRatio is the fraction of voiced frames needed to call it speech.
	MinRatio float64
}

// HasSpeech reports whether buf contains enough voiced frames.
func (s Detector) HasSpeech(buf *audio.Buffer) (bool, error) {
	samples, err := audio.MonoAt(buf, audio.SpeechRate)
	if err != nil {
		return false, err
	}
	frames := len(samples) / frameSamples
	if frames == 0 {
		return false, nil
	}

	v, err := webrtcvad.New()
	if err != nil {
		return false, fmt.Errorf("vad init: %w", err)
	}
	if err := v.SetMode(s.Mode); err != nil {
		return false, fmt.Errorf("vad mode: %w", err)
	}

	frame := make([]byte, frameSamples*2)
	voiced := 0
	for i := 0; i < frames; i++ {
		encodePCM16(frame, samples[i*frameSamples:(i+1)*frameSamples])
		active, err := v.Process(audio.SpeechRate, frame)
		if err != nil {
			return false, fmt.Errorf("vad process: %w", err)
		}
		if active {
			voiced++
		}
	}
	return float64(voiced)/float64(frames) >= s.MinRatio && voiced > 0, nil
}

func encodePCM16(dst []byte, samples []float64) {
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, s))
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(int16(v*32767)))
	}
}
