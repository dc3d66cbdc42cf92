package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/andocmdo/eink-display-control-panel/log"
	"github.com/andocmdo/eink-display-control-panel/models"
)

var logger = log.GetLogger("Store")

// FileStore keeps the snapshot in a single JSON file
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the location of the JSON document
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file is an empty snapshot.
func (s *FileStore) Load(ctx context.Context) (*models.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("path", s.path).Msg("no snapshot yet, starting empty")
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return Decode(data, s.path)
}

// Save writes the snapshot atomically (write to temp, then rename)
func (s *FileStore) Save(ctx context.Context, snap *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(snap)
	if err != nil {
		return &WriteError{Target: s.path, Err: err}
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &WriteError{Target: s.path, Err: fmt.Errorf("failed to create parent directory: %w", err)}
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return &WriteError{Target: s.path, Err: err}
	}

	logger.Debug().
		Str("path", s.path).
		Int("weather", len(snap.Weather)).
		Int("stocks", len(snap.Stocks)).
		Int("todos", len(snap.Todos)).
		Msg("snapshot saved")
	return nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so the rename stays on one filesystem
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	// Ensure temp file is cleaned up on error
	defer func() {
		if tmpFile != nil {
			tmpFile.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return err
	}

	// Sync to ensure data is written
	if err := tmpFile.Sync(); err != nil {
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	// Success: clear defer cleanup
	tmpFile = nil
	return nil
}
