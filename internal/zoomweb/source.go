package zoomweb

import (
	"context"
	"encoding/json"
	"fmt"

	"meetbot/internal/browser"
)

// localStorage keys populated by the transcript extension while the meeting
// runs.
const (
	storageKeyTranscript = "transcript"
	storageKeyChat       = "chatMessages"
	storageKeyTitle      = "meetingTitle"
)

// TranscriptSource recovers the extension's collected payloads from the
// page's localStorage at session end.
type TranscriptSource struct {
	driver browser.Driver
}

// NewTranscriptSource constructs a source backed by the given driver.
func NewTranscriptSource(driver browser.Driver) *TranscriptSource {
	return &TranscriptSource{driver: driver}
}

// Transcript returns the collected transcript entries, nil when none were
// stored.
func (s *TranscriptSource) Transcript(ctx context.Context) (json.RawMessage, error) {
	return s.storedJSON(ctx, storageKeyTranscript)
}

// ChatMessages returns the collected chat messages, nil when none were
// stored.
func (s *TranscriptSource) ChatMessages(ctx context.Context) (json.RawMessage, error) {
	return s.storedJSON(ctx, storageKeyChat)
}

// MeetingTitle returns the stored meeting title, empty when absent.
func (s *TranscriptSource) MeetingTitle(ctx context.Context) (string, error) {
	value, err := s.storedString(ctx, storageKeyTitle)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// storedJSON reads a localStorage item that itself holds serialized JSON.
func (s *TranscriptSource) storedJSON(ctx context.Context, key string) (json.RawMessage, error) {
	value, err := s.storedString(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == nil || *value == "" {
		return nil, nil
	}
	if !json.Valid([]byte(*value)) {
		return nil, fmt.Errorf("localStorage %q holds invalid JSON", key)
	}
	return json.RawMessage(*value), nil
}

func (s *TranscriptSource) storedString(ctx context.Context, key string) (*string, error) {
	raw, err := s.driver.ExecuteScript(ctx, "return window.localStorage.getItem(arguments[0]);", key)
	if err != nil {
		return nil, fmt.Errorf("read localStorage %q: %w", key, err)
	}
	var value *string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("decode localStorage %q: %w", key, err)
	}
	return value, nil
}
