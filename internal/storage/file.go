package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tanat44/SmartCam/internal/models"
)

// FileSource serves a JSON dump shaped [camera][day][{time, label}].
// The dump carries its own day extent, so the requested range is not applied.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading the dump at path on every Fetch.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Fetch reads and decodes the dump.
func (f *FileSource) Fetch(ctx context.Context, start, end time.Time) (models.RawEvents, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadFile(f.path)
}

// ReadFile decodes a raw event dump.
func ReadFile(path string) (models.RawEvents, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %w", ErrSourceUnavailable, path, err)
	}

	var raw models.RawEvents
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal %s: %w", ErrSourceUnavailable, path, err)
	}
	if len(raw) == 0 {
		return nil, ErrNoData
	}
	return raw, nil
}

// WriteFile writes raw as a JSON dump. The file is written to a temporary path
// and renamed into place so readers never observe a partial dump.
func WriteFile(path string, raw models.RawEvents, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dump: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
