package control

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"transcritor/internal/audio"
	"transcritor/internal/capture"
	"transcritor/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	pickedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	loopbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff9f"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// NewDevicesCmd groups device subcommands.
func NewDevicesCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"device", "dev"},
		Short:   "List capture devices and pick the loopback source",
	}
	cmd.AddCommand(newDevicesListCmd(cfgPath))
	cmd.AddCommand(newDevicesSetCmd(cfgPath))
	return cmd
}

type deviceRow struct {
	audio.Device
	Loopback bool `json:"loopback"`
	Selected bool `json:"selected"`
}

func deviceRows(devs []audio.Device, c audio.Criteria) []deviceRow {
	picked, _ := audio.SelectLoopback(devs, c)
	rows := make([]deviceRow, 0, len(devs))
	for i, d := range devs {
		if d.MaxInputChannels < 1 {
			continue
		}
		rows = append(rows, deviceRow{Device: d, Loopback: audio.IsLoopback(d, c), Selected: i == picked})
	}
	return rows
}

func criteria(cfg *config.Config) audio.Criteria {
	return audio.Criteria{
		Preferred: cfg.Audio.DeviceName,
		Names:     cfg.Audio.LoopbackNames,
		HostAPIs:  cfg.Audio.LoopbackHostAPI,
	}
}

func newDevicesListCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			devs, err := capture.ListDevices()
			if err != nil {
				return err
			}
			rows := deviceRows(devs, criteria(cfg))
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(rows)
			}
			renderDevices(cmd.OutOrStdout(), rows)
			if runtime.GOOS == "windows" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("tip: enable \"Stereo Mix\" under Sound > Recording if no loopback device appears"))
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "output JSON")
	return cmd
}

func renderDevices(w io.Writer, rows []deviceRow) {
	for _, r := range rows {
		line := fmt.Sprintf("[%d] %s (%s, in %d ch, %.0f Hz)", r.Index, r.Name, r.HostAPI, r.MaxInputChannels, r.DefaultSampleRate)
		switch {
		case r.Selected:
			line = pickedStyle.Render(line + " <- live")
		case r.Loopback:
			line = loopbackStyle.Render(line + " (loopback)")
		default:
			line = dimStyle.Render(line)
		}
		_, _ = fmt.Fprintln(w, line)
	}
}

func newDevicesSetCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "Prefer a device by name for the live pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			cfg.Audio.DeviceName = args[0]
			if err := config.Save(cfg, cfg.Paths.ConfigPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "device set to %q in %s\n", args[0], cfg.Paths.ConfigPath)
			return nil
		},
	}
}
