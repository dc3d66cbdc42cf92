// Package store persists the single dashboard snapshot.
//
// Every operation loads, mutates and saves the whole document. There is no
// locking or versioning: concurrent writers race and the last save wins.
package store

import (
	"context"
	"fmt"

	"github.com/andocmdo/eink-display-control-panel/models"
)

// Store loads and saves the dashboard snapshot
type Store interface {
	// Load returns the persisted snapshot, or an empty one if nothing has
	// been saved yet. Unparseable content yields a *CorruptError.
	Load(ctx context.Context) (*models.Snapshot, error)

	// Save replaces the persisted snapshot. Readers never observe a
	// partially written document. I/O failures yield a *WriteError.
	Save(ctx context.Context, snap *models.Snapshot) error
}

// CorruptError reports persisted bytes that do not decode into a snapshot
type CorruptError struct {
	Source string
	Err    error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("snapshot %s is corrupt: %v", e.Source, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// WriteError reports a failure to persist the snapshot
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write snapshot %s: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
