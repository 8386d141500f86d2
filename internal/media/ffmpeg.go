package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrFFmpegNotFound is returned when the ffmpeg binary cannot be resolved.
var ErrFFmpegNotFound = errors.New("ffmpeg not found")

// ExtractError reports a failed audio extraction for one video.
type ExtractError struct {
	Video  string
	Err    error
	Stderr string
}

func (e *ExtractError) Error() string {
	msg := fmt.Sprintf("extract audio from %s: %v", filepath.Base(e.Video), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Extractor pulls the audio track out of a video container with ffmpeg.
type Extractor struct {
	FFmpegPath string
	SampleRate int
}

// Extract writes the audio track of videoPath as mono PCM WAV to wavPath.
// Any failure, including a video without an audio stream, is an *ExtractError
// and leaves no output file behind.
func (x Extractor) Extract(ctx context.Context, videoPath, wavPath string) error {
	bin, err := x.binary()
	if err != nil {
		return &ExtractError{Video: videoPath, Err: err}
	}
	if _, err := os.Stat(videoPath); err != nil {
		return &ExtractError{Video: videoPath, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(wavPath), 0o755); err != nil {
		return &ExtractError{Video: videoPath, Err: err}
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, x.args(videoPath, wavPath)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(wavPath)
		return &ExtractError{Video: videoPath, Err: err, Stderr: lastLine(stderr.String())}
	}
	if fi, err := os.Stat(wavPath); err != nil || fi.Size() == 0 {
		_ = os.Remove(wavPath)
		return &ExtractError{Video: videoPath, Err: errors.New("ffmpeg produced no audio")}
	}
	return nil
}

// ffmpeg -y -i in -vn -ac 1 -ar 16000 -acodec pcm_s16le -f wav out
func (x Extractor) args(videoPath, wavPath string) []string {
	rate := x.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-y", "-i", videoPath,
		"-vn",
		"-ac", "1", "-ar", strconv.Itoa(rate),
		"-acodec", "pcm_s16le",
		"-f", "wav",
		wavPath,
	}
}

func (x Extractor) binary() (string, error) {
	name := x.FFmpegPath
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFFmpegNotFound, err)
	}
	return path, nil
}

// Version returns the first line of `ffmpeg -version`.
func (x Extractor) Version(ctx context.Context) (string, error) {
	bin, err := x.binary()
	if err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
