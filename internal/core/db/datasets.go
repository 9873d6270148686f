package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/neilberkman/locscope/internal/core/models"
)

// Dataset is one imported loc.csv
type Dataset struct {
	ID            int64
	SourcePath    string
	FileHash      string
	FileSize      int64
	FileMtime     time.Time
	Label         string
	RowCount      int
	CommitCount   int
	FirstCommitAt time.Time
	LastCommitAt  time.Time
	ImportedAt    time.Time
}

// SaveDataset stores a dataset and its rows in one transaction and returns
// the new dataset id. Row order is kept in the seq column.
func (db *DB) SaveDataset(ds Dataset, rows []models.LineChange) (int64, error) {
	commits := make(map[string]struct{})
	var first, last time.Time
	for _, r := range rows {
		commits[r.CommitID] = struct{}{}
		if first.IsZero() || r.Datetime.Before(first) {
			first = r.Datetime
		}
		if last.IsZero() || r.Datetime.After(last) {
			last = r.Datetime
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`
		INSERT INTO datasets
		(source_path, file_hash, file_size, file_mtime, label, row_count, commit_count, first_commit_at, last_commit_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ds.SourcePath, ds.FileHash, ds.FileSize, formatTimestamp(ds.FileMtime), ds.Label,
		len(rows), len(commits), formatTimestamp(first), formatTimestamp(last))
	if err != nil {
		return 0, fmt.Errorf("insert dataset: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get dataset id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lines
		(dataset_id, seq, commit_id, file, line, type, depth, length, author, date, time, timezone, datetime, day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare line insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rows {
		_, err := stmt.Exec(id, i, r.CommitID, r.File, r.Line, r.Type, r.Depth, r.Length,
			r.Author, r.Date, r.Time, r.Timezone, formatTimestamp(r.Datetime), formatTimestamp(r.Day))
		if err != nil {
			return 0, fmt.Errorf("insert line %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit dataset: %w", err)
	}
	return id, nil
}

// LoadLines returns a dataset's rows in their original order
func (db *DB) LoadLines(datasetID int64) ([]models.LineChange, error) {
	rows, err := db.conn.Query(`
		SELECT commit_id, file, line, COALESCE(type, ''), depth, length,
		       COALESCE(author, ''), COALESCE(date, ''), COALESCE(time, ''), COALESCE(timezone, ''),
		       datetime, COALESCE(day, '')
		FROM lines
		WHERE dataset_id = ?
		ORDER BY seq
	`, datasetID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var lines []models.LineChange
	for rows.Next() {
		var l models.LineChange
		var datetime, day string
		if err := rows.Scan(&l.CommitID, &l.File, &l.Line, &l.Type, &l.Depth, &l.Length,
			&l.Author, &l.Date, &l.Time, &l.Timezone, &datetime, &day); err != nil {
			return nil, err
		}

		l.Datetime, err = time.Parse(timestampLayout, datetime)
		if err != nil {
			return nil, fmt.Errorf("line %d of dataset %d: bad datetime %q: %w", len(lines), datasetID, datetime, err)
		}
		if day != "" {
			l.Day = parseTimestamp(day)
		}
		lines = append(lines, l)
	}

	return lines, rows.Err()
}

const datasetColumns = `
	id, source_path, file_hash, COALESCE(file_size, 0), COALESCE(file_mtime, ''), COALESCE(label, ''),
	COALESCE(row_count, 0), COALESCE(commit_count, 0),
	COALESCE(first_commit_at, ''), COALESCE(last_commit_at, ''), COALESCE(imported_at, '')
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDataset(s rowScanner) (Dataset, error) {
	var ds Dataset
	var mtime, first, last, imported string
	err := s.Scan(&ds.ID, &ds.SourcePath, &ds.FileHash, &ds.FileSize, &mtime, &ds.Label,
		&ds.RowCount, &ds.CommitCount, &first, &last, &imported)
	if err != nil {
		return ds, err
	}
	ds.FileMtime = parseTimestamp(mtime)
	ds.FirstCommitAt = parseTimestamp(first)
	ds.LastCommitAt = parseTimestamp(last)
	ds.ImportedAt = parseTimestamp(imported)
	return ds, nil
}

// GetDataset returns the dataset with id, or nil if there is none
func (db *DB) GetDataset(id int64) (*Dataset, error) {
	ds, err := scanDataset(db.conn.QueryRow(`SELECT `+datasetColumns+` FROM datasets WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// LatestDataset returns the most recently imported dataset, or nil if the
// database is empty
func (db *DB) LatestDataset() (*Dataset, error) {
	ds, err := scanDataset(db.conn.QueryRow(`SELECT ` + datasetColumns + ` FROM datasets ORDER BY id DESC LIMIT 1`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDatasets returns every dataset, newest first
func (db *DB) ListDatasets() ([]Dataset, error) {
	rows, err := db.conn.Query(`SELECT ` + datasetColumns + ` FROM datasets ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var datasets []Dataset
	for rows.Next() {
		ds, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, rows.Err()
}

// DeleteDataset removes a dataset and, by cascade, its lines
func (db *DB) DeleteDataset(id int64) error {
	res, err := db.conn.Exec(`DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("dataset %d not found", id)
	}
	return nil
}

// FindCommitsByFile returns the ids of commits in a dataset that touched
// file. A bare file name also matches any path ending in /name.
func (db *DB) FindCommitsByFile(datasetID int64, file string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT commit_id
		FROM lines
		WHERE dataset_id = ? AND (file = ? OR file LIKE ?)
		GROUP BY commit_id
		ORDER BY MIN(seq)
	`, datasetID, file, "%/"+file)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FindImport returns the dataset created by the last successful import of
// a file with this hash, if that dataset still exists
func (db *DB) FindImport(fileHash string) (int64, bool, error) {
	var id int64
	err := db.conn.QueryRow(`
		SELECT l.dataset_id
		FROM import_log l
		JOIN datasets d ON d.id = l.dataset_id
		WHERE l.file_hash = ? AND l.status = 'success'
		ORDER BY l.id DESC
		LIMIT 1
	`, fileHash).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LogImport records an import attempt. datasetID is 0 when nothing was stored.
func (db *DB) LogImport(filePath, fileHash string, datasetID int64, rows int, status, errMsg string) error {
	var ds interface{}
	if datasetID > 0 {
		ds = datasetID
	}
	_, err := db.conn.Exec(`
		INSERT INTO import_log (file_path, file_hash, dataset_id, rows_imported, status, error_message)
		VALUES (?, ?, ?, ?, ?, ?)
	`, filePath, fileHash, ds, rows, status, errMsg)
	return err
}
