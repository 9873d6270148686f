package db

import (
	"database/sql"
	"time"
)

// Stats represents database statistics
type Stats struct {
	TotalDatasets  int
	TotalLines     int
	TotalCommits   int
	TotalFiles     int
	OldestCommit   time.Time
	NewestCommit   time.Time
	LastImport     time.Time
	TopAuthor      string
	TopAuthorLines int
}

// GetStats returns comprehensive database statistics
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	err := db.QueryRow("SELECT COUNT(*) FROM datasets").Scan(&stats.TotalDatasets)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COUNT(*) FROM lines").Scan(&stats.TotalLines)
	if err != nil {
		return nil, err
	}

	// Commit and file ids are only unique within a dataset
	err = db.QueryRow("SELECT COUNT(*) FROM (SELECT DISTINCT dataset_id, commit_id FROM lines)").Scan(&stats.TotalCommits)
	if err != nil {
		return nil, err
	}

	err = db.QueryRow("SELECT COUNT(*) FROM (SELECT DISTINCT dataset_id, file FROM lines)").Scan(&stats.TotalFiles)
	if err != nil {
		return nil, err
	}

	if stats.TotalDatasets == 0 {
		return stats, nil
	}

	datasets, err := db.ListDatasets()
	if err != nil {
		return nil, err
	}

	// Stored offsets differ between rows, so compare instants rather than text
	for _, ds := range datasets {
		if !ds.FirstCommitAt.IsZero() && (stats.OldestCommit.IsZero() || ds.FirstCommitAt.Before(stats.OldestCommit)) {
			stats.OldestCommit = ds.FirstCommitAt
		}
		if ds.LastCommitAt.After(stats.NewestCommit) {
			stats.NewestCommit = ds.LastCommitAt
		}
		if ds.ImportedAt.After(stats.LastImport) {
			stats.LastImport = ds.ImportedAt
		}
	}

	var topAuthor sql.NullString
	err = db.QueryRow(`
		SELECT author, COUNT(*) as count
		FROM lines
		GROUP BY author
		ORDER BY count DESC
		LIMIT 1
	`).Scan(&topAuthor, &stats.TopAuthorLines)

	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	if topAuthor.Valid {
		stats.TopAuthor = topAuthor.String
	}

	return stats, nil
}
