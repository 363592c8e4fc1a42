package deps

import (
	"fmt"
	"runtime"

	"meetbot/internal/capture"
	"meetbot/internal/config"
)

// Requirements lists the external binaries the bot needs with the configured
// commands filled in.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Capture.FFmpegBinary,
			Description: "Records meeting audio and video",
		},
		{
			Name:        "Chromedriver",
			Command:     cfg.Browser.ChromedriverBinary,
			Description: "Drives the headless browser session",
		},
	}
}

// CheckPlatform reports whether the running platform can capture in the
// requested mode.
func CheckPlatform(video bool) Status {
	mode := "audio"
	if video {
		mode = "audio+video"
	}
	status := Status{
		Name:        "Capture platform",
		Command:     runtime.GOOS,
		Description: fmt.Sprintf("Host support for %s recording", mode),
	}
	if !capture.Supported(runtime.GOOS, video) {
		status.Detail = fmt.Sprintf("%s capture is not supported on %s", mode, runtime.GOOS)
		return status
	}
	status.Available = true
	return status
}
