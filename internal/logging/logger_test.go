package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"meetbot/internal/logging"
)

func TestNewWritesToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "meetbot.log")

	logger, err := logging.New(logging.Options{
		Level:       "debug",
		Format:      "json",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("session started", logging.String(logging.FieldSessionID, "abc"))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"session_id":"abc"`) {
		t.Fatalf("log output missing session id field: %s", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithComponentToleratesNilLogger(t *testing.T) {
	logger := logging.WithComponent(nil, "controller")
	// Must not panic and must swallow output.
	logger.Info("ignored")
}
