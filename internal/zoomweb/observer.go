package zoomweb

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"meetbot/internal/browser"
	"meetbot/internal/logging"
	"meetbot/internal/session"
)

// Observer reads the meeting page once per controller tick and condenses what
// it sees into lifecycle signals. Absent elements are negative observations;
// only a lost or failing driving session is an error.
type Observer struct {
	driver        browser.Driver
	conditionWait time.Duration
	logger        *slog.Logger
}

// NewObserver constructs an observer with the given bounded wait per probe.
func NewObserver(driver browser.Driver, conditionWait time.Duration, logger *slog.Logger) *Observer {
	if conditionWait <= 0 {
		conditionWait = 5 * time.Second
	}
	return &Observer{
		driver:        driver,
		conditionWait: conditionWait,
		logger:        logging.WithComponent(logger, "observer"),
	}
}

// Observe runs the per-tick probe sequence: meeting gone, platform denial,
// admission, host denial, unmute request, waiting room, attendee count.
func (o *Observer) Observe(ctx context.Context) (session.Signals, error) {
	signals := session.Signals{ParticipantCount: -1}

	gone, err := o.present(ctx, selRemoved, selLeftMeeting, selEndedByHost, selCallEnded)
	if err != nil {
		return signals, err
	}
	if gone {
		signals.RemovedOrEnded = true
		return signals, nil
	}

	// A platform-level denial renders in the generic error banner and is not
	// retryable, unlike a host clicking deny.
	platformDenied, err := o.platformDenied(ctx)
	if err != nil {
		return signals, err
	}
	if platformDenied {
		o.logger.Error("join request denied by the platform")
		signals.RemovedOrEnded = true
		return signals, nil
	}

	signals.Admitted, err = o.present(ctx, selParticipants)
	if err != nil {
		return signals, err
	}

	signals.Denied, err = o.present(ctx, selJoinDenied)
	if err != nil {
		return signals, err
	}

	if err := o.declineUnmuteRequest(ctx); err != nil {
		return signals, err
	}

	signals.WaitingRoom, err = o.present(ctx, selWaitingAdmit, selWaitingHostStart, selWaitingHostHere)
	if err != nil {
		return signals, err
	}

	if !signals.WaitingRoom {
		signals.ParticipantCount = o.attendeeCount(ctx)
	}
	return signals, nil
}

// present reports whether any of the selectors matches within the bounded
// wait.
func (o *Observer) present(ctx context.Context, sels ...browser.Selector) (bool, error) {
	_, err := o.driver.WaitForAny(ctx, sels, o.conditionWait)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, browser.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (o *Observer) platformDenied(ctx context.Context) (bool, error) {
	text, err := o.driver.GetText(ctx, selErrorBanner, o.conditionWait)
	switch {
	case errors.Is(err, browser.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	if text != "" {
		o.logger.Warn("error banner displayed", logging.String("text", text))
	}
	return strings.Contains(text, deniedByPlatformText), nil
}

// declineUnmuteRequest keeps the bot muted when the host asks it to unmute.
// Both probes are best-effort.
func (o *Observer) declineUnmuteRequest(ctx context.Context) error {
	requested, err := o.present(ctx, selUnmuteRequest)
	if err != nil {
		return err
	}
	if !requested {
		return nil
	}
	o.logger.Info("unmute requested by host, staying muted")
	if err := o.driver.FindAndClick(ctx, selMuteButton, o.conditionWait); err != nil {
		if errors.Is(err, browser.ErrSessionLost) {
			return err
		}
		o.logger.Warn("mute control not clickable", logging.Error(err))
	}
	return nil
}

// attendeeCount reads the footer participant counter, -1 when unreadable.
func (o *Observer) attendeeCount(ctx context.Context) int {
	text, err := o.driver.GetText(ctx, selAttendeeCount, o.conditionWait)
	if err != nil {
		o.logger.Debug("attendee counter not found")
		return -1
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return -1
	}
	return count
}
