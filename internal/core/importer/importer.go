package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/pkg/loccsv"
)

// Importer handles importing loc.csv files into the database
type Importer struct {
	db  *db.DB
	log logrus.FieldLogger
}

// Options control a single import
type Options struct {
	Label string // defaults to the file name
	Force bool   // import even if an identical file was imported before
}

// Result describes what an import did
type Result struct {
	Path      string
	DatasetID int64
	Rows      int
	Commits   int
	Skipped   bool // identical file already imported; DatasetID is the existing one
}

// New creates a new importer
func New(database *db.DB, log logrus.FieldLogger) *Importer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Importer{db: database, log: log}
}

// ImportFile parses one loc.csv and stores it as a dataset. A malformed
// row rejects the whole file and nothing is stored.
func (i *Importer) ImportFile(path string, opts Options) (*Result, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	log := i.log.WithField("path", path)

	hash, err := computeFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	if !opts.Force {
		existing, found, err := i.db.FindImport(hash)
		if err != nil {
			return nil, fmt.Errorf("failed to check import log: %w", err)
		}
		if found {
			log.WithField("dataset", existing).Info("file already imported, skipping")
			if err := i.db.LogImport(path, hash, existing, 0, "skipped", ""); err != nil {
				return nil, fmt.Errorf("failed to record import: %w", err)
			}
			ds, err := i.db.GetDataset(existing)
			if err != nil {
				return nil, err
			}
			res := &Result{Path: path, DatasetID: existing, Skipped: true}
			if ds != nil {
				res.Rows, res.Commits = ds.RowCount, ds.CommitCount
			}
			return res, nil
		}
	}

	parsed, err := loccsv.ParseFile(path)
	if err != nil {
		if logErr := i.db.LogImport(path, hash, 0, 0, "failed", err.Error()); logErr != nil {
			log.WithError(logErr).Warn("failed to record failed import")
		}
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	label := opts.Label
	if label == "" {
		label = filepath.Base(path)
	}

	id, err := i.db.SaveDataset(db.Dataset{
		SourcePath: path,
		FileHash:   hash,
		FileSize:   parsed.FileSize,
		FileMtime:  parsed.FileMtime,
		Label:      label,
	}, parsed.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}

	if err := i.db.LogImport(path, hash, id, len(parsed.Rows), "success", ""); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	ds, err := i.db.GetDataset(id)
	if err != nil {
		return nil, err
	}

	res := &Result{Path: path, DatasetID: id, Rows: len(parsed.Rows)}
	if ds != nil {
		res.Commits = ds.CommitCount
	}

	log.WithFields(logrus.Fields{
		"dataset": id,
		"rows":    res.Rows,
		"commits": res.Commits,
	}).Info("imported dataset")

	return res, nil
}

// ImportFiles imports each path in turn and stops at the first failure
func (i *Importer) ImportFiles(paths []string, opts Options, progress ProgressCallback) ([]*Result, error) {
	results := make([]*Result, 0, len(paths))
	for _, path := range paths {
		res, err := i.ImportFile(path, opts)
		if err != nil {
			return results, err
		}
		results = append(results, res)

		if progress != nil {
			detail := fmt.Sprintf("%d rows, %d commits", res.Rows, res.Commits)
			if res.Skipped {
				detail = "already imported"
			}
			progress.Update(filepath.Base(res.Path), detail)
		}
	}

	if progress != nil {
		progress.Finish()
	}
	return results, nil
}

func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
