package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/store"
)

const defaultSnapshotName = "dashboard"

// SnapshotStore keeps the dashboard document in a single SQLite row. It uses
// the same JSON encoding as the file store, so documents can be copied
// between backends.
type SnapshotStore struct {
	db   *DB
	name string
}

// NewSnapshotStore returns a store.Store backed by the database
func NewSnapshotStore(d *DB) *SnapshotStore {
	return &SnapshotStore{db: d, name: defaultSnapshotName}
}

// Load returns the stored snapshot, or an empty one if no row exists
func (s *SnapshotStore) Load(ctx context.Context) (*models.Snapshot, error) {
	var document string
	err := s.db.conn.QueryRowContext(ctx,
		"SELECT document FROM snapshots WHERE name = ?", s.name,
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	return store.Decode([]byte(document), s.source())
}

// Save upserts the snapshot row in one statement
func (s *SnapshotStore) Save(ctx context.Context, snap *models.Snapshot) error {
	data, err := store.Encode(snap)
	if err != nil {
		return &store.WriteError{Target: s.source(), Err: err}
	}

	_, err = s.db.conn.ExecContext(ctx, `
		INSERT INTO snapshots (name, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			document = excluded.document,
			updated_at = excluded.updated_at
	`, s.name, string(data), NowMs())
	if err != nil {
		return &store.WriteError{Target: s.source(), Err: err}
	}
	return nil
}

func (s *SnapshotStore) source() string {
	return s.db.path + "#" + s.name
}
