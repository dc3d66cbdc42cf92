package db

import "database/sql"

func init() {
	RegisterMigration(Migration{
		Version:     1,
		Description: "Snapshot document table",
		Up:          migration001Snapshots,
	})
}

func migration001Snapshots(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			name TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}
