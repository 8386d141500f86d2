package control

import (
	"os"
	"os/signal"
	"syscall"

	"transcritor/internal/asr"
	"transcritor/internal/capture"
	"transcritor/internal/hook"
	"transcritor/internal/logging"
	"transcritor/internal/run"

	"github.com/spf13/cobra"
)

// NewLiveCmd records system audio and appends a line per window until Ctrl+C.
func NewLiveCmd(cfgPath *string) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Transcribe system audio (loopback) until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(*cfgPath, o)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log := logging.ForRun(logger, "live")
			l := &run.Live{
				Config:  cfg,
				Logger:  log,
				Devices: capture.ListDevices,
				Capturer: capture.Recorder{
					SampleRate: cfg.Audio.SampleRate,
					Channels:   cfg.Audio.Channels,
					TempDir:    cfg.Audio.TempDir,
				},
				Hook: hook.NewRunner(cfg, log),
			}
			// A missing loopback device is reported before backend errors.
			dev, err := l.SelectDevice()
			if err != nil {
				return err
			}
			l.Device = &dev

			rec, err := asr.NewRecognizer(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()
			l.Recognizer = rec
			log.Info("live transcription started (Ctrl+C to stop)")
			return l.Run(ctx)
		},
	}
	cmd.Flags().Float64Var(&o.window, "window", 0, "capture window in seconds (default from config)")
	cmd.Flags().StringVar(&o.backend, "backend", "", "recognition backend: openai, gemini or whisper")
	cmd.Flags().StringVar(&o.metricsAddr, "metrics-addr", "", "serve /metrics on this address")
	return cmd
}
