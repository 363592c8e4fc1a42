package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Browser contains configuration for the WebDriver endpoint the bot drives.
type Browser struct {
	WebDriverURL       string `toml:"webdriver_url"`
	RequestTimeout     int    `toml:"request_timeout"`
	ConditionWait      int    `toml:"condition_wait"`
	PageLoadWait       int    `toml:"page_load_wait"`
	ChromedriverBinary string `toml:"chromedriver_binary"`
	ExtensionDir       string `toml:"extension_dir"`
}

// Capture contains configuration for the external ffmpeg capture process.
type Capture struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	PulseDevice  string `toml:"pulse_device"`
	Display      string `toml:"display"`
	VideoSize    string `toml:"video_size"`
	Framerate    int    `toml:"framerate"`
	StopTimeout  int    `toml:"stop_timeout"`
}

// Session contains session timing policy.
type Session struct {
	TickSeconds               int `toml:"tick_seconds"`
	RetryBackoffSeconds       int `toml:"retry_backoff_seconds"`
	LowAttendanceGraceSeconds int `toml:"low_attendance_grace_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration object.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Browser Browser `toml:"browser"`
	Capture Capture `toml:"capture"`
	Session Session `toml:"session"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the canonical configuration file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "meetbot", "config.toml"), nil
}

// Load reads configuration from the provided path, falling back to the default
// location and then to built-in defaults when no file exists. It returns the
// resolved config, the path that was consulted, and whether a file was found.
func Load(path string) (*Config, string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, "", false, err
		}
		resolved = defaultPath
	} else {
		expanded, err := ExpandPath(resolved)
		if err != nil {
			return nil, "", false, err
		}
		resolved = expanded
	}

	cfg := Default()
	found := false
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		found = true
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Defaults apply.
	default:
		return nil, resolved, false, fmt.Errorf("read config %s: %w", resolved, err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolved, found, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, resolved, found, err
	}
	return &cfg, resolved, found, nil
}

// EnsureDirectories creates the output and log directories if missing.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves tilde-prefixed paths against the user home directory.
func ExpandPath(pathValue string) (string, error) {
	expanded, err := expandPath(pathValue)
	if err != nil {
		return "", err
	}
	return expanded, nil
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Clean(trimmed), nil
}

// CreateSample writes the embedded sample configuration to the given path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
