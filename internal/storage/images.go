package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/nexuscampus/campusmap/internal/observability/metrics"
)

// ImageStore writes uploaded event images to a local directory served under
// /uploads/. Filenames are random UUIDs plus the original extension so
// concurrent uploads can never collide.
//
// File writes are not transactional with the database: an insert failing
// after a successful save leaves an orphaned file. That matches the system
// this replaces and is documented rather than papered over.
type ImageStore struct {
	dir    string
	logger *slog.Logger
}

// NewImageStore creates the upload directory if needed
func NewImageStore(dir string, logger *slog.Logger) (*ImageStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &ImageStore{dir: dir, logger: logger}, nil
}

// Dir returns the directory images are stored in
func (s *ImageStore) Dir() string {
	return s.dir
}

// Save writes an uploaded image and returns its public URL path.
func (s *ImageStore) Save(file io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}
	filename := uuid.NewString() + ext

	path := filepath.Join(s.dir, filename)
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	metrics.ObserveImageStored()
	s.logger.Debug("image saved", slog.String("file", filename))
	return "/uploads/" + filename, nil
}

// Remove deletes a previously saved image by its public URL path. Removal
// is best effort; a leftover file is logged, not surfaced.
func (s *ImageStore) Remove(imageURL string) {
	const prefix = "/uploads/"
	if !strings.HasPrefix(imageURL, prefix) {
		return
	}
	filename := filepath.Base(strings.TrimPrefix(imageURL, prefix))

	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove image file",
			slog.String("file", filename),
			slog.String("error", err.Error()),
		)
	}
}
