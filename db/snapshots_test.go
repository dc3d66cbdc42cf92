package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/andocmdo/eink-display-control-panel/models"
	"github.com/andocmdo/eink-display-control-panel/store"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(Config{Path: filepath.Join(t.TempDir(), "app", "test.sqlite")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenAppliesMigrations(t *testing.T) {
	d := openTestDB(t)

	version, err := d.CurrentVersion()
	if err != nil {
		t.Fatal(err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1, got %d", version)
	}
}

func TestSnapshotStore_EmptyThenRoundTrip(t *testing.T) {
	d := openTestDB(t)
	s := NewSnapshotStore(d)
	ctx := context.Background()

	snap, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Weather)+len(snap.Stocks)+len(snap.Todos) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	snap.Stocks = append(snap.Stocks, models.StockEntry{Ticker: "AAPL", Price: models.StringPtr("$1.00")})
	snap.Todos = append(snap.Todos, models.TodoItem{ID: "x", Text: "hello"})
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Second save overwrites the same row
	snap.Todos[0].Text = "updated"
	if err := s.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Todos) != 1 || got.Todos[0].Text != "updated" {
		t.Errorf("unexpected todos %+v", got.Todos)
	}
	if models.Deref(got.Stocks[0].Price, "") != "$1.00" {
		t.Errorf("unexpected stocks %+v", got.Stocks)
	}
}

func TestSnapshotStore_CorruptRow(t *testing.T) {
	d := openTestDB(t)
	s := NewSnapshotStore(d)

	_, err := d.conn.Exec(
		"INSERT INTO snapshots (name, document, updated_at) VALUES (?, ?, ?)",
		defaultSnapshotName, "not json", NowMs(),
	)
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.Load(context.Background())
	var corrupt *store.CorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected *store.CorruptError, got %v", err)
	}
}
