package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Source provides the client-side payloads the transcript extension collects
// during the meeting.
type Source interface {
	Transcript(ctx context.Context) (json.RawMessage, error)
	ChatMessages(ctx context.Context) (json.RawMessage, error)
	MeetingTitle(ctx context.Context) (string, error)
}

// Document is the transcript JSON written at session end.
type Document struct {
	Title            *string         `json:"title"`
	MeetingStartTime *string         `json:"meeting_start_time"`
	MeetingEndTime   *string         `json:"meeting_end_time"`
	Transcript       json.RawMessage `json:"transcript"`
	ChatMessages     json.RawMessage `json:"chat_messages"`
}

// BuildDocument pulls every payload from the source, degrading each missing or
// malformed field to null rather than failing.
func BuildDocument(ctx context.Context, source Source, startedAt, endedAt time.Time) Document {
	doc := Document{
		MeetingStartTime: formatInstant(startedAt),
		MeetingEndTime:   formatInstant(endedAt),
	}
	if source == nil {
		return doc
	}
	if title, err := source.MeetingTitle(ctx); err == nil && title != "" {
		doc.Title = &title
	}
	if transcript, err := source.Transcript(ctx); err == nil {
		doc.Transcript = transcript
	}
	if chat, err := source.ChatMessages(ctx); err == nil {
		doc.ChatMessages = chat
	}
	return doc
}

// WriteDocument persists the transcript document to path.
func WriteDocument(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure transcript directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write transcript %s: %w", path, err)
	}
	return nil
}

func formatInstant(instant time.Time) *string {
	if instant.IsZero() {
		return nil
	}
	formatted := instant.UTC().Format(time.RFC3339)
	return &formatted
}
