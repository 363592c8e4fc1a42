package botrun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"meetbot/internal/artifacts"
	"meetbot/internal/browser"
	"meetbot/internal/capture"
	"meetbot/internal/config"
	"meetbot/internal/history"
	"meetbot/internal/logging"
	"meetbot/internal/meetlink"
	"meetbot/internal/session"
	"meetbot/internal/zoomweb"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

// ErrAlreadyRunning indicates another bot session holds the instance lock.
// Capture devices are host-exclusive, so only one session may run at a time.
var ErrAlreadyRunning = errors.New("another bot session is already running")

// Options carries the per-session request.
type Options struct {
	MeetingLink          string
	BotName              string
	MinRecordTime        time.Duration
	MaxWaitingTime       time.Duration
	StartTimeUTC         time.Time
	EndTimeUTC           time.Time
	PresignedCombinedURL string
	PresignedAudioURL    string
	Video                bool
}

// Result summarizes a finished session.
type Result struct {
	SessionID string
	MeetingID string
	Outcome   session.Outcome
	OutputDir string
}

// Run executes one bot session to completion and records it in history.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Result, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	details, err := meetlink.Parse(opts.MeetingLink)
	if err != nil {
		return nil, fmt.Errorf("parse meeting link: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	lock := flock.New(filepath.Join(cfg.Paths.LogDir, "meetbot.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	store, err := history.Open(cfg.Paths.LogDir)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	sess := session.New(session.Params{
		MeetingID:      details.MeetingID,
		Passcode:       details.Passcode,
		BotName:        opts.BotName,
		MinRecordTime:  opts.MinRecordTime,
		MaxWaitingTime: opts.MaxWaitingTime,
		StartTimeUTC:   opts.StartTimeUTC,
		EndTimeUTC:     opts.EndTimeUTC,
		VideoEnabled:   opts.Video,
		BaseOutputDir:  cfg.Paths.OutputDir,

		PresignedCombinedURL: opts.PresignedCombinedURL,
		PresignedAudioURL:    opts.PresignedAudioURL,
	})
	runLogger := logger.With(
		logging.String(logging.FieldSessionID, sess.ID),
		logging.String(logging.FieldMeetingID, sess.MeetingID),
	)

	driver, err := browser.NewClient(cfg.Browser.WebDriverURL, time.Duration(cfg.Browser.RequestTimeout)*time.Second)
	if err != nil {
		return nil, err
	}
	sessionOpts := browser.SessionOptions{
		// Video capture grabs the X display, which needs a rendered window.
		Headless:     !opts.Video,
		UserDataDir:  filepath.Join(os.TempDir(), "meetbot-"+sess.ID),
		ExtensionDir: cfg.Browser.ExtensionDir,
		UserAgent:    userAgent,
	}
	if err := driver.StartSession(ctx, sessionOpts); err != nil {
		return nil, err
	}

	if err := store.Begin(ctx, history.Record{
		ID:           sess.ID,
		MeetingID:    sess.MeetingID,
		BotName:      sess.BotName,
		VideoEnabled: sess.VideoEnabled,
		OutputDir:    sess.OutputDir,
		StartedAt:    time.Now().UTC(),
	}); err != nil {
		_ = driver.Quit(context.WithoutCancel(ctx))
		return nil, err
	}

	controller, err := buildController(cfg, sess, driver, runLogger)
	if err != nil {
		_ = driver.Quit(context.WithoutCancel(ctx))
		return nil, err
	}

	runLogger.Info("bot session starting",
		logging.String("bot_name", sess.BotName),
		logging.Bool("video", sess.VideoEnabled),
		logging.Duration("max_waiting_time", sess.MaxWaitingTime),
		logging.Duration("min_record_time", sess.MinRecordTime),
	)
	outcome := controller.Run(ctx)

	finishCtx := context.WithoutCancel(ctx)
	if err := store.Finish(finishCtx, history.Record{
		ID:               sess.ID,
		Title:            savedTitle(sess.TranscriptPath()),
		Outcome:          string(outcome),
		RecordingStarted: sess.RecordingStarted,
		Retries:          sess.Retries,
		EndedAt:          controller.EndedAt(),
	}); err != nil {
		runLogger.Error("record session outcome", logging.Error(err))
	}

	return &Result{
		SessionID: sess.ID,
		MeetingID: sess.MeetingID,
		Outcome:   outcome,
		OutputDir: sess.OutputDir,
	}, nil
}

func buildController(cfg *config.Config, sess *session.Session, driver *browser.Client, logger *slog.Logger) (*session.Controller, error) {
	clock := session.NewClock()
	conditionWait := time.Duration(cfg.Browser.ConditionWait) * time.Second

	joiner := zoomweb.NewJoiner(driver, clock, zoomweb.JoinConfig{
		MeetingID:     sess.MeetingID,
		Passcode:      sess.Passcode,
		BotName:       sess.BotName,
		ConditionWait: conditionWait,
		PageLoadWait:  time.Duration(cfg.Browser.PageLoadWait) * time.Second,
	}, logger)
	observer := zoomweb.NewObserver(driver, conditionWait, logger)

	recorder, err := capture.New(cfg.Capture.FFmpegBinary, capture.Settings{
		PulseDevice: cfg.Capture.PulseDevice,
		Display:     cfg.Capture.Display,
		VideoSize:   cfg.Capture.VideoSize,
		Framerate:   cfg.Capture.Framerate,
	}, time.Duration(cfg.Capture.StopTimeout)*time.Second, logger)
	if err != nil {
		return nil, err
	}

	finalizer := artifacts.NewFinalizer(
		zoomweb.NewTranscriptSource(driver),
		artifacts.NewUploader(0),
		sess.PresignedCombinedURL,
		sess.PresignedAudioURL,
		logger,
	)

	return session.NewController(sess, session.Config{
		Tick:               time.Duration(cfg.Session.TickSeconds) * time.Second,
		RetryBackoff:       time.Duration(cfg.Session.RetryBackoffSeconds) * time.Second,
		LowAttendanceGrace: time.Duration(cfg.Session.LowAttendanceGraceSeconds) * time.Second,
	}, session.Deps{
		Observer:  observer,
		Joiner:    joiner,
		Recorder:  recorder,
		Finalizer: finalizer,
		Browser:   driver,
		Clock:     clock,
		Logger:    logger,
	})
}

// savedTitle recovers the meeting title from the transcript document written
// during finalization, empty when no transcript was saved.
func savedTitle(transcriptPath string) string {
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return ""
	}
	var doc artifacts.Document
	if err := json.Unmarshal(data, &doc); err != nil || doc.Title == nil {
		return ""
	}
	return *doc.Title
}
