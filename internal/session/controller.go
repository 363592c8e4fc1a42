package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"meetbot/internal/artifacts"
	"meetbot/internal/logging"
)

// Outcome names the condition that ended a session.
type Outcome string

const (
	OutcomeWaitTimeout        Outcome = "wait_timeout"
	OutcomeMinDurationReached Outcome = "min_duration_reached"
	OutcomeLowAttendance      Outcome = "low_attendance_timeout"
	OutcomeRemovedOrEnded     Outcome = "removed_or_ended"
	OutcomeFatalError         Outcome = "fatal_error"
	OutcomeCanceled           Outcome = "canceled"

	// outcomeRetry never ends a session; it routes the loop back through the
	// join sequence.
	outcomeRetry Outcome = "retry"
)

// Signals is the observation set produced each monitor tick. Any subset may
// be true simultaneously; ParticipantCount is -1 when unknown.
type Signals struct {
	Admitted         bool
	Denied           bool
	RemovedOrEnded   bool
	WaitingRoom      bool
	ParticipantCount int
}

// Observer interprets the meeting page each tick. A returned error is fatal
// and ends monitoring; negative observations are not errors.
type Observer interface {
	Observe(ctx context.Context) (Signals, error)
}

// Joiner drives the join sequence against the meeting page.
type Joiner interface {
	Join(ctx context.Context) error
	Rejoin(ctx context.Context) error
}

// Recorder supervises the external capture process.
type Recorder interface {
	Start(audioPath, videoPath string, video bool) error
	Stop() error
}

// Finalizer persists and ships session artifacts during shutdown.
type Finalizer interface {
	CaptureTranscript(ctx context.Context, bundle artifacts.Bundle) error
	PackageAndUpload(ctx context.Context, bundle artifacts.Bundle)
}

// Browser is the slice of the driving resource the controller releases.
type Browser interface {
	Quit(ctx context.Context) error
}

// Config is the controller timing policy.
type Config struct {
	Tick               time.Duration
	RetryBackoff       time.Duration
	LowAttendanceGrace time.Duration
}

// Deps wires the controller's collaborators.
type Deps struct {
	Observer  Observer
	Joiner    Joiner
	Recorder  Recorder
	Finalizer Finalizer
	Browser   Browser
	Clock     Clock
	Logger    *slog.Logger
}

// Controller owns the session state machine. It is single-threaded: all
// state mutation happens on the goroutine running Run.
type Controller struct {
	sess   *Session
	cfg    Config
	clock  Clock
	timers *TimerSet
	logger *slog.Logger

	observer  Observer
	joiner    Joiner
	recorder  Recorder
	finalizer Finalizer
	browser   Browser

	outcome Outcome
	endedAt time.Time
}

// NewController constructs a controller for one session.
func NewController(sess *Session, cfg Config, deps Deps) (*Controller, error) {
	if sess == nil {
		return nil, errors.New("session required")
	}
	if deps.Observer == nil || deps.Joiner == nil || deps.Recorder == nil || deps.Finalizer == nil {
		return nil, errors.New("controller requires observer, joiner, recorder, and finalizer")
	}
	clock := deps.Clock
	if clock == nil {
		clock = NewClock()
	}
	if cfg.Tick <= 0 {
		cfg.Tick = 2 * time.Second
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 12 * time.Second
	}
	if cfg.LowAttendanceGrace <= 0 {
		cfg.LowAttendanceGrace = 5 * time.Minute
	}
	logger := logging.WithComponent(deps.Logger, "controller").With(
		logging.String(logging.FieldSessionID, sess.ID),
		logging.String(logging.FieldMeetingID, sess.MeetingID),
	)
	return &Controller{
		sess:      sess,
		cfg:       cfg,
		clock:     clock,
		timers:    NewTimerSet(clock, cfg.LowAttendanceGrace),
		logger:    logger,
		observer:  deps.Observer,
		joiner:    deps.Joiner,
		recorder:  deps.Recorder,
		finalizer: deps.Finalizer,
		browser:   deps.Browser,
	}, nil
}

// Outcome reports the condition that ended the session.
func (c *Controller) Outcome() Outcome {
	return c.outcome
}

// EndedAt reports when the ending path ran.
func (c *Controller) EndedAt() time.Time {
	return c.endedAt
}

// Run executes the session to completion: join, monitor, retry on denial, and
// finalize. It always routes through the single ending path before returning,
// whatever ends the session.
func (c *Controller) Run(ctx context.Context) Outcome {
	// Finalization must proceed even when the run context is already gone.
	defer c.End(context.WithoutCancel(ctx))

	c.sess.Phase = PhaseJoining
	if err := c.joiner.Join(ctx); err != nil {
		c.logger.Error("initial join sequence", logging.Error(err))
		c.outcome = OutcomeFatalError
		return c.outcome
	}

	c.sess.Phase = PhaseMonitoring
	c.timers.StartMonitoring()

	for {
		outcome := c.monitor(ctx)
		if outcome != outcomeRetry {
			c.outcome = outcome
			return c.outcome
		}

		c.sess.Phase = PhaseRetrying
		c.sess.NeedRetry = false
		c.sess.Retries++
		c.logger.Info("join denied, retrying",
			logging.Int("attempt", c.sess.Retries),
			logging.Duration("backoff", c.cfg.RetryBackoff),
			logging.Duration("elapsed", c.timers.Elapsed()),
		)
		c.clock.Sleep(ctx, c.cfg.RetryBackoff)
		if ctx.Err() != nil {
			c.outcome = OutcomeCanceled
			return c.outcome
		}
		if err := c.joiner.Rejoin(ctx); err != nil {
			c.logger.Error("retry join sequence", logging.Error(err))
			c.outcome = OutcomeFatalError
			return c.outcome
		}
		c.sess.Phase = PhaseMonitoring
	}
}

// monitor runs the poll loop until a terminal condition or a retry request.
// Timer signals are evaluated in a fixed order each tick (wait-timeout,
// min-duration, low-attendance) so concurrent expiries resolve
// deterministically.
func (c *Controller) monitor(ctx context.Context) Outcome {
	c.logger.Info("monitoring meeting", logging.Duration("elapsed", c.timers.Elapsed()))

	for {
		if ctx.Err() != nil {
			return OutcomeCanceled
		}

		if !c.sess.RecordingStarted {
			if c.timers.WaitTimedOut(c.sess.MaxWaitingTime) {
				c.logger.Info("maximum waiting time exceeded",
					logging.Duration("max_waiting_time", c.sess.MaxWaitingTime))
				return OutcomeWaitTimeout
			}
		} else if c.timers.MinDurationReached(c.sess.RecordingStartedAt, c.sess.MinRecordTime) {
			c.logger.Info("minimum recording time reached",
				logging.Duration("min_record_time", c.sess.MinRecordTime))
			return OutcomeMinDurationReached
		}

		signals, err := c.observer.Observe(ctx)
		if err != nil {
			c.logger.Error("observer failure, stopping monitoring", logging.Error(err))
			return OutcomeFatalError
		}

		if signals.RemovedOrEnded {
			c.logger.Info("removed from meeting or meeting ended")
			return OutcomeRemovedOrEnded
		}

		if signals.Admitted && !c.sess.RecordingStarted {
			if err := c.startRecording(); err != nil {
				return OutcomeFatalError
			}
		}

		if signals.Denied {
			c.sess.NeedRetry = true
			c.logger.Info("join request denied, scheduling retry")
			return outcomeRetry
		}

		if signals.WaitingRoom {
			c.logger.Info("waiting to be admitted to the meeting",
				logging.Duration("elapsed", c.timers.Elapsed()))
		} else if c.sess.RecordingStarted {
			switch c.timers.ObserveAttendance(signals.ParticipantCount) {
			case GraceArmed:
				c.logger.Info("participant count low, grace timer armed",
					logging.Int("participants", signals.ParticipantCount))
			case GraceRunning:
				c.logger.Info("participant count still low",
					logging.Duration("grace_remaining", c.timers.GraceRemaining()))
			case GraceExpired:
				c.logger.Info("participant count stayed low past grace period")
				return OutcomeLowAttendance
			case AttendanceRecovered:
				c.logger.Info("participant count recovered, grace timer disarmed")
			}
		}

		c.clock.Sleep(ctx, c.cfg.Tick)
	}
}

func (c *Controller) startRecording() error {
	c.logger.Info("admitted to the meeting, starting recording")
	if err := os.MkdirAll(c.sess.OutputDir, 0o755); err != nil {
		c.logger.Error("create session output directory", logging.Error(err))
		return err
	}
	if err := c.recorder.Start(c.sess.AudioPath(), c.sess.VideoPath(), c.sess.VideoEnabled); err != nil {
		c.logger.Error("start recording", logging.Error(err))
		return err
	}
	c.sess.RecordingStarted = true
	c.sess.RecordingStartedAt = c.clock.Now()
	return nil
}

// End executes the single idempotent shutdown path: transcript capture,
// recorder stop, packaging and upload, then browser release. Every step is
// best-effort so later cleanup still runs when an earlier step fails.
func (c *Controller) End(ctx context.Context) {
	if c.sess.Ended {
		return
	}
	c.sess.Ended = true
	c.sess.Phase = PhaseEnding
	c.endedAt = c.clock.Now()
	if c.outcome == "" {
		c.outcome = OutcomeFatalError
	}
	c.logger.Info("ending session", logging.String("outcome", string(c.outcome)))

	bundle := c.bundle()
	if c.sess.RecordingStarted {
		if err := c.finalizer.CaptureTranscript(ctx, bundle); err != nil {
			c.logger.Error("save transcript", logging.Error(err))
		}
	}
	if err := c.recorder.Stop(); err != nil {
		c.logger.Error("stop recording", logging.Error(err))
	}
	if c.sess.RecordingStarted {
		c.finalizer.PackageAndUpload(ctx, bundle)
	}
	if c.browser != nil {
		if err := c.browser.Quit(ctx); err != nil {
			c.logger.Error("close browser", logging.Error(err))
		}
	}

	c.sess.Phase = PhaseEnded
	c.logger.Info("session ended", logging.String("outcome", string(c.outcome)))
}

func (c *Controller) bundle() artifacts.Bundle {
	return artifacts.Bundle{
		TranscriptPath: c.sess.TranscriptPath(),
		AudioPath:      c.sess.AudioPath(),
		VideoPath:      c.sess.VideoPath(),
		ArchivePath:    c.sess.ArchivePath(),
		StartedAt:      c.sess.RecordingStartedAt,
		EndedAt:        c.endedAt,
	}
}
