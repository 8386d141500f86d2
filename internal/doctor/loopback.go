package doctor

import (
	"fmt"

	"transcritor/internal/audio"
	"transcritor/internal/capture"
	"transcritor/internal/config"
)

// checkLoopback initializes PortAudio and reports the device live would record from.
func checkLoopback(cfg *config.Config) Result {
	devs, err := capture.ListDevices()
	if err != nil {
		return Result{Name: "portaudio", Pass: false, Detail: fmt.Sprintf("init failed: %v", err)}
	}
	return loopbackResult(devs, audio.Criteria{
		Preferred: cfg.Audio.DeviceName,
		Names:     cfg.Audio.LoopbackNames,
		HostAPIs:  cfg.Audio.LoopbackHostAPI,
	})
}

func loopbackResult(devs []audio.Device, c audio.Criteria) Result {
	idx, err := audio.SelectLoopback(devs, c)
	if err != nil {
		return Result{Name: "loopback", Pass: false, Detail: fmt.Sprintf("%v among %d devices; enable \"Stereo Mix\"", err, len(devs))}
	}
	d := devs[idx]
	return Result{Name: "loopback", Pass: true, Detail: fmt.Sprintf("[%d] %s (%s)", d.Index, d.Name, d.HostAPI)}
}
