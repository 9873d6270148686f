package db

func (db *DB) initSchema() error {
	schema := `
	-- One row per imported loc.csv
	CREATE TABLE IF NOT EXISTS datasets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_path TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		file_size INTEGER,
		file_mtime TEXT,
		label TEXT,
		row_count INTEGER DEFAULT 0,
		commit_count INTEGER DEFAULT 0,
		first_commit_at TEXT,
		last_commit_at TEXT,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_datasets_file_hash ON datasets(file_hash);
	CREATE INDEX IF NOT EXISTS idx_datasets_imported_at ON datasets(imported_at);

	-- Line changes, in source order per dataset
	CREATE TABLE IF NOT EXISTS lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		dataset_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		commit_id TEXT NOT NULL,
		file TEXT NOT NULL,
		line INTEGER NOT NULL,
		type TEXT,
		depth INTEGER NOT NULL DEFAULT 0,
		length INTEGER NOT NULL DEFAULT 0,
		author TEXT,
		date TEXT,
		time TEXT,
		timezone TEXT,
		datetime TEXT NOT NULL,
		day TEXT,
		UNIQUE (dataset_id, seq),
		FOREIGN KEY (dataset_id) REFERENCES datasets(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_lines_commit ON lines(dataset_id, commit_id);
	CREATE INDEX IF NOT EXISTS idx_lines_file ON lines(dataset_id, file);
	CREATE INDEX IF NOT EXISTS idx_lines_author ON lines(author);

	-- Import log table
	CREATE TABLE IF NOT EXISTS import_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		file_hash TEXT NOT NULL,
		dataset_id INTEGER,
		imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		rows_imported INTEGER,
		status TEXT CHECK(status IN ('success', 'skipped', 'failed')),
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_import_log_file_hash ON import_log(file_hash);
	`

	_, err := db.conn.Exec(schema)
	return err
}
