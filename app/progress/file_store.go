package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// fileRecord is the on-disk shape. updatedAt is epoch milliseconds.
type fileRecord struct {
	Percent   *int   `json:"percent"`
	Source    string `json:"source,omitempty"`
	Current   int    `json:"current,omitempty"`
	Total     int    `json:"total,omitempty"`
	UpdatedAt int64  `json:"updatedAt"`
}

// FileStore keeps the record as a JSON file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load treats a missing, unreadable or out-of-range cache as no cache.
func (s *FileStore) Load(ctx context.Context) (*Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var stored fileRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		slog.Warn("Ignoring unparsable progress cache", "path", s.path, "error", err)
		return nil, nil
	}
	if stored.Percent == nil {
		return nil, nil
	}

	record := Record{
		Percent: *stored.Percent,
		Source:  ParseSource(stored.Source),
		Current: stored.Current,
		Total:   stored.Total,
	}
	if stored.UpdatedAt > 0 {
		record.UpdatedAt = time.UnixMilli(stored.UpdatedAt)
	}

	if err := record.Validate(); err != nil {
		slog.Warn("Ignoring invalid progress cache", "path", s.path, "error", err)
		return nil, nil
	}

	return &record, nil
}

// Save replaces the cache file through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	percent := record.Percent
	stored := fileRecord{
		Percent:   &percent,
		Source:    string(record.Source),
		Current:   record.Current,
		Total:     record.Total,
		UpdatedAt: record.UpdatedAt.UnixMilli(),
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache record: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set cache file mode: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}
