package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"meetbot/internal/artifacts"
	"meetbot/internal/session"
)

type scriptedObserver struct {
	tick   int
	script func(tick int) (session.Signals, error)
}

func (o *scriptedObserver) Observe(context.Context) (session.Signals, error) {
	o.tick++
	return o.script(o.tick)
}

type fakeJoiner struct {
	joins   int
	rejoins int
	err     error
}

func (j *fakeJoiner) Join(context.Context) error {
	j.joins++
	return j.err
}

func (j *fakeJoiner) Rejoin(context.Context) error {
	j.rejoins++
	return j.err
}

type fakeRecorder struct {
	starts   int
	stops    int
	startErr error
}

func (r *fakeRecorder) Start(audioPath, videoPath string, video bool) error {
	if r.startErr != nil {
		return r.startErr
	}
	r.starts++
	return nil
}

func (r *fakeRecorder) Stop() error {
	r.stops++
	return nil
}

type fakeFinalizer struct {
	captures int
	packages int
}

func (f *fakeFinalizer) CaptureTranscript(context.Context, artifacts.Bundle) error {
	f.captures++
	return nil
}

func (f *fakeFinalizer) PackageAndUpload(context.Context, artifacts.Bundle) {
	f.packages++
}

type fakeBrowser struct {
	quits int
}

func (b *fakeBrowser) Quit(context.Context) error {
	b.quits++
	return nil
}

type fixture struct {
	sess      *session.Session
	clock     *fakeClock
	observer  *scriptedObserver
	joiner    *fakeJoiner
	recorder  *fakeRecorder
	finalizer *fakeFinalizer
	browser   *fakeBrowser
}

func newFixture(t *testing.T, params session.Params, script func(tick int) (session.Signals, error)) (*session.Controller, *fixture) {
	t.Helper()
	if params.BaseOutputDir == "" {
		params.BaseOutputDir = t.TempDir()
	}
	if params.BotName == "" {
		params.BotName = "Meet Assistant"
	}
	if params.MeetingID == "" {
		params.MeetingID = "1234567890"
	}
	fx := &fixture{
		sess:      session.New(params),
		clock:     newFakeClock(),
		observer:  &scriptedObserver{script: script},
		joiner:    &fakeJoiner{},
		recorder:  &fakeRecorder{},
		finalizer: &fakeFinalizer{},
		browser:   &fakeBrowser{},
	}
	controller, err := session.NewController(fx.sess, session.Config{
		Tick:               2 * time.Second,
		RetryBackoff:       12 * time.Second,
		LowAttendanceGrace: 5 * time.Minute,
	}, session.Deps{
		Observer:  fx.observer,
		Joiner:    fx.joiner,
		Recorder:  fx.recorder,
		Finalizer: fx.finalizer,
		Browser:   fx.browser,
		Clock:     fx.clock,
	})
	if err != nil {
		t.Fatalf("NewController returned error: %v", err)
	}
	return controller, fx
}

func waiting(count int) session.Signals {
	return session.Signals{WaitingRoom: true, ParticipantCount: count}
}

func admitted(count int) session.Signals {
	return session.Signals{Admitted: true, ParticipantCount: count}
}

func TestWaitTimeoutEndsSessionWithoutRecording(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: 5 * time.Second,
		MinRecordTime:  time.Hour,
	}, func(int) (session.Signals, error) {
		return waiting(-1), nil
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeWaitTimeout {
		t.Fatalf("outcome = %v, want wait_timeout", outcome)
	}
	if fx.recorder.starts != 0 {
		t.Errorf("recording started %d times, want 0", fx.recorder.starts)
	}
	if fx.finalizer.captures != 0 || fx.finalizer.packages != 0 {
		t.Errorf("finalizer ran for a session that never recorded: captures=%d packages=%d",
			fx.finalizer.captures, fx.finalizer.packages)
	}
	if fx.recorder.stops != 1 {
		t.Errorf("recorder stop calls = %d, want 1", fx.recorder.stops)
	}
	if fx.browser.quits != 1 {
		t.Errorf("browser quit calls = %d, want 1", fx.browser.quits)
	}
	if fx.sess.Phase != session.PhaseEnded {
		t.Errorf("phase = %v, want ended", fx.sess.Phase)
	}
}

func TestAdmissionStartsRecordingExactlyOnce(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  6 * time.Second,
	}, func(int) (session.Signals, error) {
		// Admitted stays true every tick; the controller must not restart
		// the recorder.
		return admitted(4), nil
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeMinDurationReached {
		t.Fatalf("outcome = %v, want min_duration_reached", outcome)
	}
	if fx.recorder.starts != 1 {
		t.Errorf("recorder starts = %d, want exactly 1", fx.recorder.starts)
	}
	if !fx.sess.RecordingStarted {
		t.Error("session does not record that recording started")
	}
	if fx.finalizer.captures != 1 || fx.finalizer.packages != 1 {
		t.Errorf("finalizer calls = %d/%d, want 1/1", fx.finalizer.captures, fx.finalizer.packages)
	}
}

func TestDeniedJoinRetriesWithCumulativeElapsedTime(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: 10 * time.Second,
		MinRecordTime:  time.Hour,
	}, func(tick int) (session.Signals, error) {
		if tick == 1 {
			return session.Signals{Denied: true, ParticipantCount: -1}, nil
		}
		return waiting(-1), nil
	})

	outcome := ctrl.Run(context.Background())

	// The 12s retry backoff alone exhausts the 10s waiting budget: elapsed
	// time carries across the retry instead of resetting.
	if outcome != session.OutcomeWaitTimeout {
		t.Fatalf("outcome = %v, want wait_timeout", outcome)
	}
	if fx.joiner.rejoins != 1 {
		t.Errorf("rejoin calls = %d, want 1", fx.joiner.rejoins)
	}
	if fx.sess.Retries != 1 {
		t.Errorf("retries = %d, want 1", fx.sess.Retries)
	}
	if fx.sess.NeedRetry {
		t.Error("NeedRetry still set after retry was consumed")
	}
}

func TestLowAttendanceTimeoutEndsSession(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  time.Hour,
	}, func(int) (session.Signals, error) {
		return admitted(1), nil
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeLowAttendance {
		t.Fatalf("outcome = %v, want low_attendance_timeout", outcome)
	}
	if fx.recorder.starts != 1 {
		t.Errorf("recorder starts = %d, want 1", fx.recorder.starts)
	}
}

func TestAttendanceRecoveryPreventsLowAttendanceTimeout(t *testing.T) {
	ctrl, _ := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  10 * time.Minute,
	}, func(tick int) (session.Signals, error) {
		// Low for nearly the whole grace window, then others join.
		if tick <= 140 {
			return admitted(1), nil
		}
		return admitted(5), nil
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeMinDurationReached {
		t.Fatalf("outcome = %v, want min_duration_reached (recovery must disarm grace)", outcome)
	}
}

func TestRemovalEndsSession(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  time.Hour,
	}, func(tick int) (session.Signals, error) {
		if tick < 3 {
			return admitted(4), nil
		}
		return session.Signals{RemovedOrEnded: true, ParticipantCount: -1}, nil
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeRemovedOrEnded {
		t.Fatalf("outcome = %v, want removed_or_ended", outcome)
	}
	if fx.finalizer.captures != 1 {
		t.Errorf("transcript captures = %d, want 1", fx.finalizer.captures)
	}
}

func TestObserverFatalErrorEndsSession(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  time.Hour,
	}, func(int) (session.Signals, error) {
		return session.Signals{}, errors.New("driving session lost")
	})

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeFatalError {
		t.Fatalf("outcome = %v, want fatal_error", outcome)
	}
	if fx.browser.quits != 1 {
		t.Errorf("browser quit calls = %d, want 1", fx.browser.quits)
	}
}

func TestRecorderStartFailureIsFatal(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  time.Hour,
	}, func(int) (session.Signals, error) {
		return admitted(3), nil
	})
	fx.recorder.startErr = errors.New("unsupported platform for recording")

	outcome := ctrl.Run(context.Background())

	if outcome != session.OutcomeFatalError {
		t.Fatalf("outcome = %v, want fatal_error", outcome)
	}
	if fx.sess.RecordingStarted {
		t.Error("RecordingStarted must stay false when the recorder fails")
	}
}

func TestEndRunsCleanupExactlyOnce(t *testing.T) {
	ctrl, fx := newFixture(t, session.Params{
		// Both removal and the waiting budget fire on the same tick; the
		// cleanup sequence must still run once.
		MaxWaitingTime: 2 * time.Second,
		MinRecordTime:  time.Hour,
	}, func(tick int) (session.Signals, error) {
		return session.Signals{RemovedOrEnded: true, ParticipantCount: -1}, nil
	})

	ctrl.Run(context.Background())
	ctrl.End(context.Background())
	ctrl.End(context.Background())

	if fx.recorder.stops != 1 {
		t.Errorf("recorder stop calls = %d, want 1", fx.recorder.stops)
	}
	if fx.browser.quits != 1 {
		t.Errorf("browser quit calls = %d, want 1", fx.browser.quits)
	}
}

func TestCanceledContextEndsPromptly(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl, fx := newFixture(t, session.Params{
		MaxWaitingTime: time.Hour,
		MinRecordTime:  time.Hour,
	}, func(int) (session.Signals, error) {
		return waiting(-1), nil
	})

	outcome := ctrl.Run(ctx)

	if outcome != session.OutcomeCanceled {
		t.Fatalf("outcome = %v, want canceled", outcome)
	}
	if fx.browser.quits != 1 {
		t.Errorf("browser quit calls = %d, want 1 even when canceled", fx.browser.quits)
	}
}
