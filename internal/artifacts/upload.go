package artifacts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Content types for the two upload destinations.
const (
	ContentTypeTar  = "application/x-tar"
	ContentTypeOpus = "audio/opus"
)

// Task describes one upload: a local payload, a presigned destination, and
// the content type the destination expects. Each task executes at most once.
type Task struct {
	Path        string
	URL         string
	ContentType string
}

// Uploader performs blocking PUT uploads to presigned URLs.
type Uploader struct {
	client *http.Client
}

// NewUploader constructs an uploader with the given per-request timeout.
func NewUploader(timeout time.Duration) *Uploader {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Uploader{client: &http.Client{Timeout: timeout}}
}

// Upload PUTs the payload bytes to the task destination. Any status outside
// 2xx is a failure; the caller decides whether that matters.
func (u *Uploader) Upload(ctx context.Context, task Task) error {
	file, err := os.Open(task.Path)
	if err != nil {
		return fmt.Errorf("open upload payload %s: %w", task.Path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat upload payload %s: %w", task.Path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, task.URL, file)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", task.ContentType)
	req.ContentLength = info.Size()

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", task.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("upload %s returned %d: %s", task.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
