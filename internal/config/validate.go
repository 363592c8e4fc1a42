package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateBrowser() error {
	parsed, err := url.Parse(c.Browser.WebDriverURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("browser.webdriver_url %q is not a valid URL", c.Browser.WebDriverURL)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if strings.TrimSpace(c.Capture.FFmpegBinary) == "" {
		return errors.New("capture.ffmpeg_binary must be set")
	}
	if !strings.Contains(c.Capture.VideoSize, "x") {
		return fmt.Errorf("capture.video_size %q must look like WIDTHxHEIGHT", c.Capture.VideoSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
