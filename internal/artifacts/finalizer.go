package artifacts

import (
	"context"
	"log/slog"
	"time"

	"meetbot/internal/logging"
)

// Bundle names the output locations and instants for one session's artifacts.
// It is assembled once, at session end, and never mutated afterwards.
type Bundle struct {
	TranscriptPath string
	AudioPath      string
	VideoPath      string
	ArchivePath    string
	StartedAt      time.Time
	EndedAt        time.Time
}

// Finalizer captures the transcript and ships the session artifacts.
type Finalizer struct {
	source      Source
	uploader    *Uploader
	combinedURL string
	audioURL    string
	logger      *slog.Logger
}

// NewFinalizer constructs a finalizer. Either presigned URL may be empty, in
// which case the corresponding upload is skipped.
func NewFinalizer(source Source, uploader *Uploader, combinedURL, audioURL string, logger *slog.Logger) *Finalizer {
	return &Finalizer{
		source:      source,
		uploader:    uploader,
		combinedURL: combinedURL,
		audioURL:    audioURL,
		logger:      logging.WithComponent(logger, "finalizer"),
	}
}

// CaptureTranscript collects the transcript payloads and writes the session
// transcript document. Missing payloads degrade to null fields; only a write
// failure is reported.
func (f *Finalizer) CaptureTranscript(ctx context.Context, bundle Bundle) error {
	doc := BuildDocument(ctx, f.source, bundle.StartedAt, bundle.EndedAt)
	if err := WriteDocument(bundle.TranscriptPath, doc); err != nil {
		return err
	}
	f.logger.Info("transcript saved", logging.String("path", bundle.TranscriptPath))
	return nil
}

// PackageAndUpload builds the combined archive when a combined destination is
// configured and uploads every configured artifact. Upload failures are
// logged and never abort the remaining tasks.
func (f *Finalizer) PackageAndUpload(ctx context.Context, bundle Bundle) {
	tasks := make([]Task, 0, 2)

	if f.combinedURL != "" {
		archivePath, err := CreateArchive(bundle.ArchivePath, []string{bundle.TranscriptPath, bundle.AudioPath}, f.logger)
		switch {
		case err != nil:
			f.logger.Error("package combined archive", logging.Error(err))
		case archivePath == "":
			f.logger.Warn("no combined archive produced, skipping upload")
		default:
			tasks = append(tasks, Task{Path: archivePath, URL: f.combinedURL, ContentType: ContentTypeTar})
		}
	}
	if f.audioURL != "" {
		tasks = append(tasks, Task{Path: bundle.AudioPath, URL: f.audioURL, ContentType: ContentTypeOpus})
	}

	for _, task := range tasks {
		if f.uploader == nil {
			return
		}
		if err := f.uploader.Upload(ctx, task); err != nil {
			f.logger.Error("upload artifact", logging.String("path", task.Path), logging.Error(err))
			continue
		}
		f.logger.Info("artifact uploaded",
			logging.String("path", task.Path),
			logging.String("content_type", task.ContentType),
		)
	}
}
