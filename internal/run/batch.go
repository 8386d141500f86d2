package run

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/audio"
	"transcritor/internal/config"
	"transcritor/internal/hook"
	"transcritor/internal/transcript"

	"github.com/sirupsen/logrus"
)

// Extractor writes the audio track of a video to a WAV file.
type Extractor interface {
	Extract(ctx context.Context, videoPath, wavPath string) error
}

// Summary counts what a batch run did.
type Summary struct {
	Processed int
	Skipped   int
	Failed    []string
}

// Batch transcribes every allow-listed video in the video folder, one at a time.
type Batch struct {
	Config     *config.Config
	Logger     logrus.FieldLogger
	Extractor  Extractor
	Recognizer asr.Recognizer
	Hook       *hook.Runner
}

// Run processes the video folder. A failed video is logged and skipped; the
// returned error reports how many failed once the folder is done.
func (b *Batch) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	entries, err := os.ReadDir(b.Config.Paths.VideoDir)
	if err != nil {
		return sum, fmt.Errorf("list videos: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		name := e.Name()
		if e.IsDir() || !b.Supported(name) {
			b.Logger.Infof("skipping unsupported file: %s", name)
			sum.Skipped++
			continue
		}
		b.Logger.Infof("processing video: %s", name)
		if err := b.ProcessVideo(ctx, name); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return sum, err
			}
			b.Logger.Errorf("video %s: %v", name, err)
			sum.Failed = append(sum.Failed, name)
			continue
		}
		sum.Processed++
	}
	if n := len(sum.Failed); n > 0 {
		return sum, fmt.Errorf("%d of %d videos failed: %s", n, n+sum.Processed, strings.Join(sum.Failed, ", "))
	}
	return sum, nil
}

// Supported reports whether name has an allow-listed extension.
func (b *Batch) Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext != "" && slices.ContainsFunc(b.Config.Video.Extensions, func(allowed string) bool {
		return strings.EqualFold(allowed, ext)
	})
}

// ProcessVideo runs extract, segment, transcribe and write for one file in
// the video folder. The transcript is written only after every part is done.
func (b *Batch) ProcessVideo(ctx context.Context, name string) error {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	videoPath := filepath.Join(b.Config.Paths.VideoDir, name)
	wavPath := filepath.Join(b.Config.Paths.AudioDir, base+".wav")
	outPath := filepath.Join(b.Config.Paths.TranscriptDir, base+".txt")

	b.Logger.Infof("extracting audio from %s", name)
	if err := b.Extractor.Extract(ctx, videoPath, wavPath); err != nil {
		return err
	}
	b.Logger.Infof("audio extracted to %s", wavPath)
	if !b.Config.Video.KeepAudio {
		defer os.Remove(wavPath)
	}

	seg := audio.Segmenter{Size: b.Config.Chunk(), TempDir: b.Config.Audio.TempDir}
	plan, info, err := seg.Plan(wavPath)
	if err != nil {
		return fmt.Errorf("read extracted audio: %w", err)
	}
	b.Logger.Infof("splitting %s of audio into %d parts", info.Duration().Round(time.Second), len(plan))

	var doc transcript.Batch
	err = seg.Each(wavPath, func(c audio.Clip) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.Logger.Infof("transcribing part %d of %d (%s-%s)", c.Index+1, len(plan), c.Offset, c.End())
		res := asr.Transcribe(ctx, b.Recognizer, c.Path)
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Outcome == asr.RequestFailed {
			b.Logger.Warnf("part %d: %v", c.Index+1, res.Err)
		}
		doc.Add(transcript.PartText(c.Index, res))
		return nil
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(b.Config.Paths.TranscriptDir, 0o755); err != nil {
		return err
	}
	if err := doc.WriteFile(outPath); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	b.Logger.Infof("transcript saved to %s", outPath)

	if b.Hook.Enabled() {
		job := hook.Job{Text: doc.String(), Source: name, File: outPath, Timestamp: time.Now()}
		if err := b.Hook.Run(ctx, job); err != nil {
			b.Logger.Warnf("hook: %v", err)
		}
	}
	return nil
}
