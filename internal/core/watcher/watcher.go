// Package watcher re-imports loc.csv files as they change on disk.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/importer"
)

// DefaultSettle is how long a file must stay quiet before it is imported
const DefaultSettle = 250 * time.Millisecond

// Stats tracks watcher activity
type Stats struct {
	StartTime  time.Time
	Imported   int
	Skipped    int
	Errors     int
	LastImport time.Time
	LastError  error
}

// Watcher imports a single loc.csv, or every .csv in a directory, whenever
// it is written. Unchanged files are skipped by content hash.
type Watcher struct {
	imp     *importer.Importer
	watcher *fsnotify.Watcher
	path    string
	isDir   bool
	label   string
	settle  time.Duration
	log     logrus.FieldLogger

	mu    sync.Mutex
	stats Stats
}

// Options configure a Watcher
type Options struct {
	Label  string        // dataset label; defaults to the file name
	Settle time.Duration // defaults to DefaultSettle
}

// New creates a watcher for path, which must exist
func New(database *db.DB, path string, opts Options, log logrus.FieldLogger) (*Watcher, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch path does not exist: %s", path)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}

	return &Watcher{
		imp:     importer.New(database, log),
		watcher: fw,
		path:    abs,
		isDir:   info.IsDir(),
		label:   opts.Label,
		settle:  settle,
		log:     log.WithField("path", abs),
		stats:   Stats{StartTime: time.Now()},
	}, nil
}

// Stats returns a snapshot of the counters
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run imports what is already there, then watches until ctx is done.
// Import failures are logged and counted; they do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	// Editors replace files by rename, so watch the directory
	dir := w.path
	if !w.isDir {
		dir = filepath.Dir(w.path)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Info("watching for changes")

	w.syncAll()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(tickInterval(w.settle))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher shutting down")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed unexpectedly")
			}
			if w.shouldProcess(event) {
				w.log.WithField("op", event.Op.String()).Debug("file event")
				pending[event.Name] = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			w.recordError(err)

		case now := <-ticker.C:
			for name, seen := range pending {
				if now.Sub(seen) >= w.settle {
					delete(pending, name)
					w.importFile(name)
				}
			}
		}
	}
}

// tickInterval is how often pending files are checked: half the settle
// time, but never under a millisecond
func tickInterval(settle time.Duration) time.Duration {
	if tick := settle / 2; tick >= time.Millisecond {
		return tick
	}
	return time.Millisecond
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if w.isDir {
		return strings.EqualFold(filepath.Ext(event.Name), ".csv")
	}
	return filepath.Clean(event.Name) == w.path
}

func (w *Watcher) syncAll() {
	if !w.isDir {
		w.importFile(w.path)
		return
	}

	matches, err := filepath.Glob(filepath.Join(w.path, "*.csv"))
	if err != nil {
		w.recordError(err)
		return
	}
	for _, m := range matches {
		w.importFile(m)
	}
}

func (w *Watcher) importFile(path string) {
	res, err := w.imp.ImportFile(path, importer.Options{Label: w.label})

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.stats.Errors++
		w.stats.LastError = err
		w.log.WithError(err).Warn("import failed")
		return
	}
	if res.Skipped {
		w.stats.Skipped++
		return
	}
	w.stats.Imported++
	w.stats.LastImport = time.Now()
}

func (w *Watcher) recordError(err error) {
	w.mu.Lock()
	w.stats.Errors++
	w.stats.LastError = err
	w.mu.Unlock()
	w.log.WithError(err).Warn("watcher error")
}
