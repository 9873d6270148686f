package db

import (
	"fmt"
)

// runMigrations applies database migrations for existing databases
func (db *DB) runMigrations() error {
	// Migration 1: datasets gained label and commit_count
	if err := db.migration001DatasetSummary(); err != nil {
		return fmt.Errorf("migration 001: %w", err)
	}

	// Migration 2: datasets gained the commit time range
	if err := db.migration002CommitRange(); err != nil {
		return fmt.Errorf("migration 002: %w", err)
	}

	return nil
}

func (db *DB) hasColumn(table, column string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM pragma_table_info(?)
		WHERE name = ?
	`, table, column).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (db *DB) addColumn(table, column, decl string) error {
	has, err := db.hasColumn(table, column)
	if err != nil {
		return err
	}
	if has {
		return nil
	}

	_, err = db.conn.Exec(fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s;`, table, column, decl))
	if err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}
	return nil
}

// migration001DatasetSummary adds label and commit_count and backfills the count
func (db *DB) migration001DatasetSummary() error {
	if err := db.addColumn("datasets", "label", "TEXT"); err != nil {
		return err
	}

	hadCount, err := db.hasColumn("datasets", "commit_count")
	if err != nil {
		return err
	}
	if hadCount {
		return nil
	}

	if err := db.addColumn("datasets", "commit_count", "INTEGER DEFAULT 0"); err != nil {
		return err
	}

	_, err = db.conn.Exec(`
		UPDATE datasets
		SET commit_count = (SELECT COUNT(DISTINCT commit_id) FROM lines WHERE lines.dataset_id = datasets.id)
	`)
	if err != nil {
		return fmt.Errorf("backfill commit_count: %w", err)
	}
	return nil
}

// migration002CommitRange adds first_commit_at and last_commit_at. Existing
// rows keep them empty and are filled on the next import of the same file.
func (db *DB) migration002CommitRange() error {
	if err := db.addColumn("datasets", "first_commit_at", "TEXT"); err != nil {
		return err
	}
	return db.addColumn("datasets", "last_commit_at", "TEXT")
}
