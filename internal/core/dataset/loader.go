// Package dataset resolves which history a command works on and loads it
// into a timeline.
package dataset

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/timeline"
	"github.com/neilberkman/locscope/pkg/loccsv"
)

// Source says where to look for data. CSVPath wins, then DatasetID, then the
// latest imported dataset, then FallbackCSV if that file exists.
type Source struct {
	DB          *db.DB
	CSVPath     string
	DatasetID   int64
	FallbackCSV string
	Log         logrus.FieldLogger
}

// Loaded is a resolved history
type Loaded struct {
	Timeline *timeline.Timeline
	Dataset  *db.Dataset // nil when read straight from a CSV
	Origin   string      // file path or "dataset N"; empty when nothing was found
}

// Load resolves src and builds the timeline. Finding no data at all is not
// an error; the timeline is simply empty.
func Load(src Source) (*Loaded, error) {
	log := src.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	if src.CSVPath != "" {
		return loadCSV(src.CSVPath, log)
	}

	if src.DB != nil {
		var ds *db.Dataset
		var err error
		if src.DatasetID > 0 {
			ds, err = src.DB.GetDataset(src.DatasetID)
			if err == nil && ds == nil {
				return nil, fmt.Errorf("dataset %d not found", src.DatasetID)
			}
		} else {
			ds, err = src.DB.LatestDataset()
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read datasets: %w", err)
		}

		if ds != nil {
			rows, err := src.DB.LoadLines(ds.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load dataset %d: %w", ds.ID, err)
			}
			tl := timeline.New(rows)
			log.WithFields(logrus.Fields{
				"dataset": ds.ID,
				"rows":    len(rows),
				"commits": tl.Len(),
			}).Debug("loaded dataset")
			return &Loaded{Timeline: tl, Dataset: ds, Origin: fmt.Sprintf("dataset %d (%s)", ds.ID, ds.Label)}, nil
		}
	}

	if src.FallbackCSV != "" {
		if _, err := os.Stat(src.FallbackCSV); err == nil {
			return loadCSV(src.FallbackCSV, log)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	log.Debug("no dataset found")
	return &Loaded{Timeline: timeline.New(nil)}, nil
}

func loadCSV(path string, log logrus.FieldLogger) (*Loaded, error) {
	parsed, err := loccsv.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	tl := timeline.New(parsed.Rows)
	log.WithFields(logrus.Fields{
		"path":    path,
		"rows":    len(parsed.Rows),
		"commits": tl.Len(),
	}).Debug("loaded csv")
	return &Loaded{Timeline: tl, Origin: path}, nil
}
