package control

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"transcritor/internal/asr"
	"transcritor/internal/config"
	"transcritor/internal/hook"
	"transcritor/internal/logging"
	"transcritor/internal/media"
	"transcritor/internal/run"

	"github.com/spf13/cobra"
)

// NewVideosCmd transcribes every supported video in the video folder.
func NewVideosCmd(cfgPath *string) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "videos",
		Short: "Transcribe every video in the video folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(*cfgPath, o)
			if err != nil {
				return err
			}
			if err := config.EnsureDirs(cfg); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logging.ForRun(logger, "videos")
			rec, err := asr.NewRecognizer(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			b := &run.Batch{
				Config: cfg,
				Logger: log,
				Extractor: media.Extractor{
					FFmpegPath: cfg.Video.FFmpegPath,
					SampleRate: cfg.Video.SampleRate,
				},
				Recognizer: rec,
				Hook:       hook.NewRunner(cfg, log),
			}
			sum, err := b.Run(ctx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "processed %d, skipped %d, failed %d\n", sum.Processed, sum.Skipped, len(sum.Failed))
			return err
		},
	}
	cmd.Flags().Float64Var(&o.chunk, "chunk", 0, "segment length in seconds (default from config)")
	cmd.Flags().StringVar(&o.backend, "backend", "", "recognition backend: openai, gemini or whisper")
	return cmd
}
