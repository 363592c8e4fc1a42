package zoomweb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"meetbot/internal/browser"
	"meetbot/internal/logging"
	"meetbot/internal/session"
)

// JoinConfig carries the identity and timing knobs for the join sequence.
type JoinConfig struct {
	MeetingID     string
	Passcode      string
	BotName       string
	ConditionWait time.Duration
	PageLoadWait  time.Duration
}

// Joiner performs the join choreography against the Zoom web client: navigate
// to the join page, connect audio, force mute and camera-off, fill in the
// passcode and display name, and submit.
type Joiner struct {
	driver browser.Driver
	clock  session.Clock
	cfg    JoinConfig
	logger *slog.Logger
}

// NewJoiner constructs a joiner for one meeting.
func NewJoiner(driver browser.Driver, clock session.Clock, cfg JoinConfig, logger *slog.Logger) *Joiner {
	if cfg.ConditionWait <= 0 {
		cfg.ConditionWait = 5 * time.Second
	}
	if cfg.PageLoadWait <= 0 {
		cfg.PageLoadWait = 10 * time.Second
	}
	if clock == nil {
		clock = session.NewClock()
	}
	return &Joiner{
		driver: driver,
		clock:  clock,
		cfg:    cfg,
		logger: logging.WithComponent(logger, "joiner").With(
			logging.String(logging.FieldMeetingID, cfg.MeetingID)),
	}
}

// JoinURL is the web-client entry point for the meeting.
func (j *Joiner) JoinURL() string {
	return "https://zoom.us/wc/join/" + j.cfg.MeetingID
}

// Join navigates to the meeting and runs the full join sequence. Navigation
// failures and an invalid meeting link are fatal; individual element
// interactions are best-effort because the client renders them inconsistently
// and the monitoring loop detects the overall result.
func (j *Joiner) Join(ctx context.Context) error {
	if err := j.navigate(ctx); err != nil {
		return err
	}
	return j.fillAndSubmit(ctx)
}

// Rejoin refreshes the client and repeats the join sequence after a denial.
func (j *Joiner) Rejoin(ctx context.Context) error {
	j.logger.Info("retrying to join the meeting")
	if err := j.driver.Refresh(ctx); err != nil && !errors.Is(err, browser.ErrNotFound) {
		return fmt.Errorf("refresh before rejoin: %w", err)
	}
	return j.Join(ctx)
}

func (j *Joiner) navigate(ctx context.Context) error {
	j.logger.Info("navigating to meeting", logging.String("url", j.JoinURL()))
	if err := j.driver.Navigate(ctx, j.JoinURL()); err != nil {
		return fmt.Errorf("navigate to meeting: %w", err)
	}
	j.clock.Sleep(ctx, 2*time.Second)

	_, err := j.driver.WaitForAny(ctx, []browser.Selector{selInvalidLink, selErrorBanner}, j.cfg.PageLoadWait)
	switch {
	case err == nil:
		return errors.New("meeting link is invalid")
	case errors.Is(err, browser.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("check meeting link: %w", err)
	}
}

func (j *Joiner) fillAndSubmit(ctx context.Context) error {
	if err := j.try(ctx, "connect audio", j.driver.FindAndClick(ctx, selJoinAudio, j.cfg.ConditionWait)); err != nil {
		return err
	}
	j.clock.Sleep(ctx, time.Second)

	if err := j.ensureToggle(ctx, selAudioToggle, "Mute", "audio muted"); err != nil {
		return err
	}
	if err := j.ensureToggle(ctx, selVideoToggle, "Stop Video", "video stopped"); err != nil {
		return err
	}
	j.clock.Sleep(ctx, time.Second)

	if j.cfg.Passcode != "" {
		if err := j.try(ctx, "enter passcode", j.driver.FindAndType(ctx, selPasscode, j.cfg.Passcode, j.cfg.ConditionWait)); err != nil {
			return err
		}
	}
	if err := j.try(ctx, "enter display name", j.driver.FindAndType(ctx, selBotName, j.cfg.BotName, j.cfg.ConditionWait)); err != nil {
		return err
	}
	j.clock.Sleep(ctx, 2*time.Second)

	if err := j.try(ctx, "submit join", j.driver.FindAndClick(ctx, selJoinButton, j.cfg.ConditionWait)); err != nil {
		return err
	}
	j.clock.Sleep(ctx, 4*time.Second)
	return nil
}

// ensureToggle clicks the toggle only when its aria-label names the action
// that would silence it. An "Unmute" or "Start Video" label means the desired
// state already holds.
func (j *Joiner) ensureToggle(ctx context.Context, sel browser.Selector, activeLabel, desc string) error {
	label, err := j.driver.GetAttribute(ctx, sel, "aria-label", j.cfg.ConditionWait)
	if err != nil {
		return j.try(ctx, "inspect "+desc+" toggle", err)
	}
	if label != activeLabel {
		j.logger.Debug("toggle already in desired state", logging.String("state", desc))
		return nil
	}
	if err := j.try(ctx, "ensure "+desc, j.driver.FindAndClick(ctx, sel, j.cfg.ConditionWait)); err != nil {
		return err
	}
	j.logger.Info(desc)
	return nil
}

// try downgrades recoverable element failures to a warning. A lost driving
// session is never recoverable and is always surfaced.
func (j *Joiner) try(ctx context.Context, op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, browser.ErrSessionLost):
		return fmt.Errorf("%s: %w", op, err)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		j.logger.Warn(op+" did not complete", logging.Error(err))
		return nil
	}
}
