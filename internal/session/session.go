package session

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Phase identifies where a session is in its lifecycle.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseJoining
	PhaseMonitoring
	PhaseRetrying
	PhaseEnding
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseJoining:
		return "joining"
	case PhaseMonitoring:
		return "monitoring"
	case PhaseRetrying:
		return "retrying"
	case PhaseEnding:
		return "ending"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Params carries the configured bounds for a new session.
type Params struct {
	MeetingID      string
	Passcode       string
	BotName        string
	MinRecordTime  time.Duration
	MaxWaitingTime time.Duration
	StartTimeUTC   time.Time
	EndTimeUTC     time.Time
	VideoEnabled   bool
	BaseOutputDir  string

	PresignedCombinedURL string
	PresignedAudioURL    string
}

// Session is the single mutable state record for one meeting attendance.
// It is owned exclusively by the Controller; other components receive it as
// an explicit parameter and never retain it.
type Session struct {
	ID             string
	MeetingID      string
	Passcode       string
	BotName        string
	MinRecordTime  time.Duration
	MaxWaitingTime time.Duration
	StartTimeUTC   time.Time
	EndTimeUTC     time.Time
	VideoEnabled   bool
	OutputDir      string

	PresignedCombinedURL string
	PresignedAudioURL    string

	Phase              Phase
	RecordingStarted   bool
	RecordingStartedAt time.Time
	Ended              bool
	NeedRetry          bool
	Retries            int
}

// New creates a session with a generated unique id and its own output
// directory beneath the configured base.
func New(params Params) *Session {
	id := uuid.NewString()
	return &Session{
		ID:             id,
		MeetingID:      params.MeetingID,
		Passcode:       params.Passcode,
		BotName:        params.BotName,
		MinRecordTime:  params.MinRecordTime,
		MaxWaitingTime: params.MaxWaitingTime,
		StartTimeUTC:   params.StartTimeUTC,
		EndTimeUTC:     params.EndTimeUTC,
		VideoEnabled:   params.VideoEnabled,
		OutputDir:      filepath.Join(params.BaseOutputDir, id),

		PresignedCombinedURL: params.PresignedCombinedURL,
		PresignedAudioURL:    params.PresignedAudioURL,

		Phase: PhaseInit,
	}
}

// TranscriptPath is the session transcript JSON location.
func (s *Session) TranscriptPath() string {
	return filepath.Join(s.OutputDir, s.ID+".json")
}

// AudioPath is the session audio recording location.
func (s *Session) AudioPath() string {
	return filepath.Join(s.OutputDir, s.ID+".opus")
}

// VideoPath is the session video recording location, empty when video
// recording is disabled.
func (s *Session) VideoPath() string {
	if !s.VideoEnabled {
		return ""
	}
	return filepath.Join(s.OutputDir, s.ID+".mp4")
}

// ArchivePath is the combined archive location.
func (s *Session) ArchivePath() string {
	return filepath.Join(s.OutputDir, s.ID+".tar")
}
