package control

import (
	"fmt"
	"time"

	"transcritor/internal/asr"
	"transcritor/internal/hook"
	"transcritor/internal/logging"
	"transcritor/internal/transcript"

	"github.com/spf13/cobra"
)

// NewTranscribeCmd transcribes a single WAV file and optionally fires the hook.
func NewTranscribeCmd(cfgPath *string) *cobra.Command {
	var o overrides
	cmd := &cobra.Command{
		Use:   "transcribe <wavfile>",
		Short: "Transcribe a WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := load(*cfgPath, o)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			log := logging.ForRun(logger, "transcribe")
			rec, err := asr.NewRecognizer(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			file := args[0]
			res := asr.Transcribe(ctx, rec, file)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), transcript.LiveText(res))
			if res.Outcome == asr.RequestFailed {
				return res.Err
			}

			if wantHook, _ := cmd.Flags().GetBool("hook"); !wantHook || res.Outcome != asr.Recognized {
				return nil
			}
			r := hook.NewRunner(cfg, log)
			if !r.Enabled() {
				return fmt.Errorf("no hook configured; set hook.command")
			}
			return r.Run(ctx, hook.Job{Text: res.Text, Source: "transcribe", File: file, Timestamp: time.Now()})
		},
	}
	cmd.Flags().Bool("hook", false, "also send through configured hook")
	cmd.Flags().StringVar(&o.backend, "backend", "", "recognition backend: openai, gemini or whisper")
	return cmd
}
