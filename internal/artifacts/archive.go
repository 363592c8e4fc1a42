package artifacts

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"meetbot/internal/logging"
)

// CreateArchive packages the given input files into a tar archive at
// archivePath. Inputs that do not exist are skipped with a warning. When no
// input exists at all, no archive is created and an empty path is returned.
func CreateArchive(archivePath string, inputs []string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	present := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				logger.Warn("archive input missing, skipping", logging.String("path", input))
				continue
			}
			return "", fmt.Errorf("stat archive input %s: %w", input, err)
		}
		present = append(present, input)
	}
	if len(present) == 0 {
		logger.Warn("no archive inputs exist, skipping archive", logging.String("path", archivePath))
		return "", nil
	}

	file, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive %s: %w", archivePath, err)
	}
	defer file.Close()

	writer := tar.NewWriter(file)
	for _, input := range present {
		if err := addFile(writer, input); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalize archive %s: %w", archivePath, err)
	}
	if err := file.Sync(); err != nil {
		return "", fmt.Errorf("sync archive %s: %w", archivePath, err)
	}
	return archivePath, nil
}

func addFile(writer *tar.Writer, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive input %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat archive input %s: %w", path, err)
	}
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("build archive header for %s: %w", path, err)
	}
	header.Name = filepath.Base(path)
	if err := writer.WriteHeader(header); err != nil {
		return fmt.Errorf("write archive header for %s: %w", path, err)
	}
	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("copy %s into archive: %w", path, err)
	}
	return nil
}
