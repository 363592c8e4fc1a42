package history_test

import (
	"context"
	"testing"
	"time"

	"meetbot/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBeginAndFinishRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	started := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	err := store.Begin(ctx, history.Record{
		ID:           "sess-1",
		MeetingID:    "1234567890",
		BotName:      "Meet Assistant",
		VideoEnabled: true,
		OutputDir:    "/tmp/out/sess-1",
		StartedAt:    started,
	})
	if err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}

	err = store.Finish(ctx, history.Record{
		ID:               "sess-1",
		Title:            "weekly   sync",
		Outcome:          "min_duration_reached",
		RecordingStarted: true,
		Retries:          1,
		EndedAt:          started.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Finish returned error: %v", err)
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List returned %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != "sess-1" || rec.MeetingID != "1234567890" {
		t.Errorf("unexpected identity fields: %+v", rec)
	}
	if rec.Title != "Weekly Sync" {
		t.Errorf("title = %q, want normalized Weekly Sync", rec.Title)
	}
	if rec.Outcome != "min_duration_reached" {
		t.Errorf("outcome = %q", rec.Outcome)
	}
	if !rec.RecordingStarted || !rec.VideoEnabled {
		t.Errorf("flags lost: %+v", rec)
	}
	if rec.Retries != 1 {
		t.Errorf("retries = %d, want 1", rec.Retries)
	}
	if !rec.StartedAt.Equal(started) {
		t.Errorf("started at = %v, want %v", rec.StartedAt, started)
	}
	if !rec.EndedAt.Equal(started.Add(2 * time.Hour)) {
		t.Errorf("ended at = %v", rec.EndedAt)
	}
}

func TestFinishUnknownSession(t *testing.T) {
	store := openStore(t)
	if err := store.Finish(context.Background(), history.Record{ID: "missing"}); err == nil {
		t.Fatal("Finish must fail for an unknown session")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := store.Begin(ctx, history.Record{
			ID:        id,
			MeetingID: "555",
			BotName:   "Meet Assistant",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Begin(%s) returned error: %v", id, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List returned %d records, want 2", len(records))
	}
	if records[0].ID != "c" || records[1].ID != "b" {
		t.Errorf("order = %s,%s want c,b", records[0].ID, records[1].ID)
	}
}

func TestReopenKeepsSchema(t *testing.T) {
	dir := t.TempDir()
	store, err := history.Open(dir)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Begin(context.Background(), history.Record{ID: "x", MeetingID: "1", BotName: "b"}); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := history.Open(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("List returned %d records after reopen, want 1", len(records))
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "  weekly   sync  ", "Weekly Sync"},
		{"keeps existing caps", "Q3 OKR Review", "Q3 OKR Review"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := history.NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
