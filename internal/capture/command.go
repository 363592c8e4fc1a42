package capture

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedPlatform reports that no capture backend exists for the
// running platform and mode combination. This is a configuration error and is
// never retried.
var ErrUnsupportedPlatform = errors.New("capture: unsupported platform for recording")

// Settings holds the device knobs the capture command is built from.
type Settings struct {
	PulseDevice string
	Display     string
	VideoSize   string
	Framerate   int
}

// Supported reports whether the platform and mode combination can record.
func Supported(goos string, video bool) bool {
	if video {
		return goos == "linux"
	}
	return goos == "linux" || goos == "darwin"
}

// buildArgs selects the ffmpeg argument list for the platform and mode.
// Video capture grabs the X display plus the pulse monitor; audio-only uses
// the pulse monitor on Linux and avfoundation on macOS.
func buildArgs(goos string, video bool, settings Settings, audioPath, videoPath string) ([]string, error) {
	if video {
		if goos != "linux" {
			return nil, fmt.Errorf("%w: video capture requires linux/x11, running on %s", ErrUnsupportedPlatform, goos)
		}
		return []string{
			"-f", "x11grab",
			"-video_size", settings.VideoSize,
			"-framerate", strconv.Itoa(settings.Framerate),
			"-i", settings.Display + "+0,0",
			"-f", "pulse",
			"-i", settings.PulseDevice,
			"-c:v", "libx264",
			"-preset", "ultrafast",
			"-crf", "23",
			"-c:a", "libopus",
			"-b:a", "128k",
			"-ac", "1",
			"-ar", "48000",
			videoPath,
		}, nil
	}

	switch goos {
	case "darwin":
		return []string{
			"-f", "avfoundation",
			"-i", ":0",
			"-acodec", "libopus",
			"-b:a", "128k",
			"-ac", "1",
			"-ar", "48000",
			audioPath,
		}, nil
	case "linux":
		return []string{
			"-f", "pulse",
			"-i", settings.PulseDevice,
			"-af", "aresample=async=1000",
			"-acodec", "libopus",
			"-application", "audio",
			"-b:a", "256k",
			"-vbr", "on",
			"-frame_duration", "60",
			"-ac", "1",
			"-ar", "48000",
			audioPath,
		}, nil
	default:
		return nil, fmt.Errorf("%w: audio capture not available on %s", ErrUnsupportedPlatform, goos)
	}
}
