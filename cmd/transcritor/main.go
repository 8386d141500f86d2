package main

import (
	"fmt"
	"os"

	"transcritor/internal/control"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	root := &cobra.Command{
		Use:   "transcritor",
		Short: "Transcritor: live meeting and batch video transcription",
		Long: `Transcritor records system audio through a loopback device and writes one
timestamped line every few seconds, or extracts the audio of every video in a
folder and writes one transcript per video.

Key commands:
  live                      Transcribe system audio until Ctrl+C
  videos                    Transcribe every video in video_transcrição/
  devices list|set          Show input devices and the loopback pick
  transcribe <wav>          Transcribe a single WAV file
  doctor                    Check ffmpeg, PortAudio, keys, folders
  models list|download|set  Manage whisper.cpp models (local backend)
  tail-log|test-hook        Log tail, manual hook

Notable flags/env:
  --backend openai|gemini|whisper
  --metrics-addr <addr>     Enable /metrics (Prometheus text) for live
  Env overrides: TRANSCRITOR_BACKEND, TRANSCRITOR_LANGUAGE,
                 TRANSCRITOR_LOG_LEVEL/FORMAT, TRANSCRITOR_METRICS_ADDR,
                 TRANSCRITOR_VAD_ENABLED; keys OPENAI_API_KEY, GEMINI_API_KEY`,
		Example: `  transcritor live --window 15
  transcritor videos --chunk 45
  transcritor devices list
  transcritor live --backend gemini --metrics-addr 127.0.0.1:9318
  transcritor models download ggml-medium-q5_1.bin
  transcritor test-hook "ata da reunião"`,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
	}

	root.Version = version
	root.SetVersionTemplate("Transcritor v{{.Version}}\n")

	cfgPath := root.PersistentFlags().StringP("config", "c", "", "Path to config file (TOML). Defaults to ~/.config/transcritor/config.toml")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(control.NewLiveCmd(cfgPath))
	root.AddCommand(control.NewVideosCmd(cfgPath))
	root.AddCommand(control.NewDevicesCmd(cfgPath))
	root.AddCommand(control.NewTranscribeCmd(cfgPath))
	root.AddCommand(control.NewDoctorCmd(cfgPath))
	root.AddCommand(control.NewModelsCmd(cfgPath))
	root.AddCommand(control.NewTailLogCmd(cfgPath))
	root.AddCommand(control.NewTestHookCmd(cfgPath))

	applyColorHelp(root)

	if err := root.Execute(); err != nil {
		return err
	}
	return nil
}

func applyColorHelp(root *cobra.Command) {
	const (
		boldBlue = "\033[1;34m"
		green    = "\033[32m"
		bold     = "\033[1m"
		dim      = "\033[2m"
		reset    = "\033[0m"
	)
	root.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if cmd != root {
			_, _ = fmt.Fprintln(out, cmd.UsageString())
			return
		}
		write := func(format string, args ...any) { _, _ = fmt.Fprintf(out, format, args...) }
		writeln := func(line string) { _, _ = fmt.Fprintln(out, line) }

		write("%sTranscritor%s: live meeting and batch video transcription %s(v%s)%s\n", boldBlue, reset, dim, version, reset)
		write("%sCaptures or extracts audio, sends each window to a speech service, writes text.%s\n\n", dim, reset)

		write("%sUsage%s\n", bold, reset)
		write("  transcritor [command] [flags]\n\n")

		write("%sKey commands%s\n", bold, reset)
		writeln("  live                        record system audio, one line per window")
		writeln("  videos                      transcribe every video in video_transcrição/")
		writeln("  devices list|set            input devices and the loopback pick")
		writeln("  transcribe <wav>            transcribe one WAV file")
		writeln("  doctor                      check ffmpeg/portaudio/keys/folders")
		writeln("  models list|download|set    manage whisper.cpp models")
		writeln("  tail-log                    show last log lines")
		writeln("  test-hook \"text\"            invoke hook manually")
		writeln("")

		write("%sNotable flags & env%s\n", bold, reset)
		writeln("  --backend <name>        openai (default), gemini or whisper")
		writeln("  --window/--chunk <sec>  live window / video segment length")
		writeln("  --metrics-addr <addr>   enable /metrics (Prometheus) for live")
		writeln("  -c, --config <path>     config file (default ~/.config/transcritor/config.toml)")
		writeln("  Env: OPENAI_API_KEY, GEMINI_API_KEY (or .env in the working dir),")
		writeln("       TRANSCRITOR_BACKEND=gemini, TRANSCRITOR_LOG_LEVEL=debug,")
		writeln("       TRANSCRITOR_LOG_FORMAT=json, TRANSCRITOR_VAD_ENABLED=1")
		writeln("")

		write("%sExamples%s\n", bold, reset)
		writeln("  transcritor live --window 15")
		writeln("  transcritor videos --chunk 45")
		writeln("  transcritor devices list")
		writeln("  transcritor live --backend gemini --metrics-addr 127.0.0.1:9318")
		writeln("  transcritor models download ggml-medium-q5_1.bin")
		writeln("  transcritor test-hook \"ata da reunião\"")
		writeln("")

		write("%sCommands%s\n", bold, reset)
		for _, c := range cmd.Commands() {
			if c.Hidden {
				continue
			}
			write("  %s%-15s%s %s\n", green, c.Name(), reset, c.Short)
		}
	})
}
