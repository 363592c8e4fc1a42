package session

import "time"

// AttendanceVerdict reports the state of the low-attendance grace timer after
// one participant-count observation.
type AttendanceVerdict int

const (
	// AttendanceOK means other participants are present and no grace timer
	// is running.
	AttendanceOK AttendanceVerdict = iota
	// AttendanceRecovered means the count rose above one and a running grace
	// timer was disarmed.
	AttendanceRecovered
	// GraceArmed means the count just dropped to one or less and the grace
	// deadline was armed.
	GraceArmed
	// GraceRunning means the count is still one or less but the deadline has
	// not elapsed.
	GraceRunning
	// GraceExpired means the count stayed at one or less past the deadline.
	GraceExpired
)

// TimerSet derives every timeout from elapsed monotonic time, recomputed each
// poll tick. Nothing is persisted, which keeps the timers immune to
// sleep-induced scheduling jitter and lets elapsed time carry cumulatively
// across a join retry.
type TimerSet struct {
	clock Clock
	grace time.Duration

	monitorStart  time.Time
	graceDeadline time.Time
}

// NewTimerSet constructs a timer set with the given low-attendance grace
// period.
func NewTimerSet(clock Clock, grace time.Duration) *TimerSet {
	return &TimerSet{clock: clock, grace: grace}
}

// StartMonitoring records the monitoring start instant. Subsequent calls are
// no-ops so elapsed time accumulates across retries instead of resetting.
func (t *TimerSet) StartMonitoring() {
	if t.monitorStart.IsZero() {
		t.monitorStart = t.clock.Now()
	}
}

// Elapsed is the cumulative time since monitoring first began.
func (t *TimerSet) Elapsed() time.Duration {
	if t.monitorStart.IsZero() {
		return 0
	}
	return t.clock.Now().Sub(t.monitorStart)
}

// WaitTimedOut reports whether the pre-admission waiting budget is exhausted.
func (t *TimerSet) WaitTimedOut(maxWait time.Duration) bool {
	return t.Elapsed() > maxWait
}

// MinDurationReached reports whether the recording has run for at least the
// configured minimum.
func (t *TimerSet) MinDurationReached(recordingStart time.Time, minRecord time.Duration) bool {
	if recordingStart.IsZero() {
		return false
	}
	return t.clock.Now().Sub(recordingStart) > minRecord
}

// ObserveAttendance feeds one participant-count observation into the grace
// timer. A count of one or less (including -1, unknown) arms the deadline; a
// recovery above one disarms it.
func (t *TimerSet) ObserveAttendance(count int) AttendanceVerdict {
	now := t.clock.Now()
	if count > 1 {
		if !t.graceDeadline.IsZero() {
			t.graceDeadline = time.Time{}
			return AttendanceRecovered
		}
		return AttendanceOK
	}
	if t.graceDeadline.IsZero() {
		t.graceDeadline = now.Add(t.grace)
		return GraceArmed
	}
	if now.After(t.graceDeadline) || now.Equal(t.graceDeadline) {
		return GraceExpired
	}
	return GraceRunning
}

// GraceRemaining is the time left before the low-attendance deadline, zero
// when the timer is disarmed.
func (t *TimerSet) GraceRemaining() time.Duration {
	if t.graceDeadline.IsZero() {
		return 0
	}
	remaining := t.graceDeadline.Sub(t.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}
