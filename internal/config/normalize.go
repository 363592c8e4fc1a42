package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeBrowser(); err != nil {
		return err
	}
	c.normalizeCapture()
	c.normalizeSession()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeBrowser() error {
	c.Browser.WebDriverURL = strings.TrimRight(strings.TrimSpace(c.Browser.WebDriverURL), "/")
	if c.Browser.WebDriverURL == "" {
		c.Browser.WebDriverURL = defaultWebDriverURL
	}
	if strings.TrimSpace(c.Browser.ChromedriverBinary) == "" {
		c.Browser.ChromedriverBinary = defaultChromedriverBinary
	}
	if c.Browser.RequestTimeout <= 0 {
		c.Browser.RequestTimeout = defaultBrowserRequestTimeout
	}
	if c.Browser.ConditionWait <= 0 {
		c.Browser.ConditionWait = defaultConditionWait
	}
	if c.Browser.PageLoadWait <= 0 {
		c.Browser.PageLoadWait = defaultPageLoadWait
	}
	var err error
	if c.Browser.ExtensionDir, err = expandPath(c.Browser.ExtensionDir); err != nil {
		return fmt.Errorf("browser.extension_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCapture() {
	if strings.TrimSpace(c.Capture.FFmpegBinary) == "" {
		c.Capture.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Capture.PulseDevice) == "" {
		c.Capture.PulseDevice = defaultPulseDevice
	}
	if strings.TrimSpace(c.Capture.Display) == "" {
		if display := os.Getenv("DISPLAY"); display != "" {
			c.Capture.Display = display
		} else {
			c.Capture.Display = ":0"
		}
	}
	if strings.TrimSpace(c.Capture.VideoSize) == "" {
		c.Capture.VideoSize = defaultVideoSize
	}
	if c.Capture.Framerate <= 0 {
		c.Capture.Framerate = defaultFramerate
	}
	if c.Capture.StopTimeout <= 0 {
		c.Capture.StopTimeout = defaultCaptureStopTimeout
	}
}

func (c *Config) normalizeSession() {
	if c.Session.TickSeconds <= 0 {
		c.Session.TickSeconds = defaultTickSeconds
	}
	if c.Session.RetryBackoffSeconds <= 0 {
		c.Session.RetryBackoffSeconds = defaultRetryBackoffSeconds
	}
	if c.Session.LowAttendanceGraceSeconds <= 0 {
		c.Session.LowAttendanceGraceSeconds = defaultLowAttendanceGrace
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
