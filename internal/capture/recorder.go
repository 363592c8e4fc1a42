package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"meetbot/internal/logging"
)

var newCommand = exec.Command

// Option configures the recorder.
type Option func(*Recorder)

// WithGOOS overrides platform detection (primarily for tests).
func WithGOOS(goos string) Option {
	return func(r *Recorder) {
		if goos != "" {
			r.goos = goos
		}
	}
}

// Recorder owns the external capture process. At most one process is live at
// any time; Start with a live handle is a no-op, as is Stop without one.
type Recorder struct {
	binary      string
	goos        string
	settings    Settings
	stopTimeout time.Duration
	logger      *slog.Logger

	cmd *exec.Cmd
}

// New constructs a recorder around the given ffmpeg binary.
func New(binary string, settings Settings, stopTimeout time.Duration, logger *slog.Logger, opts ...Option) (*Recorder, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if stopTimeout <= 0 {
		stopTimeout = 10 * time.Second
	}
	recorder := &Recorder{
		binary:      binary,
		goos:        runtime.GOOS,
		settings:    settings,
		stopTimeout: stopTimeout,
		logger:      logging.WithComponent(logger, "capture"),
	}
	for _, opt := range opts {
		opt(recorder)
	}
	return recorder, nil
}

// Running reports whether a capture process is live.
func (r *Recorder) Running() bool {
	return r.cmd != nil
}

// Start launches the capture process for the requested mode. The process is
// detached into its own process group so it keeps recording while the monitor
// loop sleeps and survives until Stop.
func (r *Recorder) Start(audioPath, videoPath string, video bool) error {
	if r.cmd != nil {
		return nil
	}

	args, err := buildArgs(r.goos, video, r.settings, audioPath, videoPath)
	if err != nil {
		return err
	}

	cmd := newCommand(r.binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", r.binary, err)
	}
	r.cmd = cmd

	output := audioPath
	if video {
		output = videoPath
	}
	r.logger.Info("recording started",
		logging.String("binary", r.binary),
		logging.String("output", output),
		logging.Bool("video", video),
	)
	return nil
}

// Stop requests graceful termination, waits up to the stop timeout, and
// force-kills the process group if it does not exit. Calling Stop with no
// live process is a no-op.
func (r *Recorder) Stop() error {
	if r.cmd == nil || r.cmd.Process == nil {
		r.logger.Info("no recording to stop")
		return nil
	}

	pid := r.cmd.Process.Pid
	cmd := r.cmd
	r.cmd = nil

	if err := unix.Kill(-pid, unix.SIGTERM); err != nil && !errors.Is(err, unix.ESRCH) {
		r.logger.Warn("terminate capture process group", logging.Error(err))
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		r.logWaitResult(err)
	case <-time.After(r.stopTimeout):
		r.logger.Warn("capture process did not exit in time, killing it",
			logging.Duration("stop_timeout", r.stopTimeout))
		if err := unix.Kill(-pid, unix.SIGKILL); err != nil && !errors.Is(err, unix.ESRCH) {
			return fmt.Errorf("kill capture process group: %w", err)
		}
		r.logWaitResult(<-done)
	}
	return nil
}

func (r *Recorder) logWaitResult(err error) {
	if err == nil {
		r.logger.Info("recording stopped")
		return
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ffmpeg exits non-zero when terminated by signal; that is the
		// expected shutdown path.
		r.logger.Info("recording stopped", logging.String("exit", exitErr.String()))
		return
	}
	r.logger.Warn("wait for capture process", logging.Error(err))
}
