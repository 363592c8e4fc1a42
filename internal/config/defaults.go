package config

const (
	defaultOutputDir             = "~/.local/share/meetbot/out"
	defaultLogDir                = "~/.local/share/meetbot/logs"
	defaultWebDriverURL          = "http://127.0.0.1:9515"
	defaultChromedriverBinary    = "chromedriver"
	defaultBrowserRequestTimeout = 30
	defaultConditionWait         = 5
	defaultPageLoadWait          = 10
	defaultFFmpegBinary          = "ffmpeg"
	defaultPulseDevice           = "virtual-sink.monitor"
	defaultVideoSize             = "1920x1080"
	defaultFramerate             = 30
	defaultCaptureStopTimeout    = 10
	defaultTickSeconds           = 2
	defaultRetryBackoffSeconds   = 12
	defaultLowAttendanceGrace    = 300
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Browser: Browser{
			WebDriverURL:       defaultWebDriverURL,
			RequestTimeout:     defaultBrowserRequestTimeout,
			ConditionWait:      defaultConditionWait,
			PageLoadWait:       defaultPageLoadWait,
			ChromedriverBinary: defaultChromedriverBinary,
		},
		Capture: Capture{
			FFmpegBinary: defaultFFmpegBinary,
			PulseDevice:  defaultPulseDevice,
			VideoSize:    defaultVideoSize,
			Framerate:    defaultFramerate,
			StopTimeout:  defaultCaptureStopTimeout,
		},
		Session: Session{
			TickSeconds:               defaultTickSeconds,
			RetryBackoffSeconds:       defaultRetryBackoffSeconds,
			LowAttendanceGraceSeconds: defaultLowAttendanceGrace,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
