package audio

import (
	"errors"
	"strings"
)

// ErrNoLoopbackDevice is returned when no input device looks like a loopback source.
var ErrNoLoopbackDevice = errors.New("no loopback capture device found")

// Device describes one audio device as reported by the host.
type Device struct {
	Index             int     `json:"index"`
	Name              string  `json:"name"`
	HostAPI           string  `json:"host_api"`
	MaxInputChannels  int     `json:"channels"`
	DefaultSampleRate float64 `json:"default_sample_rate"`
}

// Criteria drives SelectLoopback.
type Criteria struct {
	// Preferred, when set, wins over the markers.
	Preferred string
	// Names are substrings of device names that indicate loopback capture.
	Names []string
	// HostAPIs are substrings of host API names that support loopback capture.
	HostAPIs []string
}

// SelectLoopback returns the position in devs of the first input-capable device
// matching c. Enumeration order breaks ties.
func SelectLoopback(devs []Device, c Criteria) (int, error) {
	if p := strings.ToLower(strings.TrimSpace(c.Preferred)); p != "" {
		for i, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), p) {
				return i, nil
			}
		}
	}
	for i, d := range devs {
		if IsLoopback(d, c) {
			return i, nil
		}
	}
	return -1, ErrNoLoopbackDevice
}

// IsLoopback reports whether d matches the loopback markers in c.
func IsLoopback(d Device, c Criteria) bool {
	if d.MaxInputChannels <= 0 {
		return false
	}
	return containsAny(strings.ToLower(d.Name), c.Names) ||
		containsAny(strings.ToLower(d.HostAPI), c.HostAPIs)
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" && strings.Contains(s, n) {
			return true
		}
	}
	return false
}
