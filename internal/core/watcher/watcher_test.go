package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/db"
)

const header = "commit,file,line,type,depth,length,author,date,time,timezone,datetime\n"

func row(commit, file string, line int, datetime string) string {
	return commit + "," + file + "," + strconv.Itoa(line) + ",js,0,10,Ada,2024-01-01,10:00,+00:00," + datetime + "\n"
}

func newTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
}

func datasetCount(t *testing.T, database *db.DB) int {
	t.Helper()
	list, err := database.ListDatasets()
	require.NoError(t, err)
	return len(list)
}

func TestNew_MissingPath(t *testing.T) {
	_, err := New(newTestDB(t), filepath.Join(t.TempDir(), "nope.csv"), Options{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestTickInterval(t *testing.T) {
	assert.Equal(t, 125*time.Millisecond, tickInterval(DefaultSettle))
	assert.Equal(t, time.Millisecond, tickInterval(time.Nanosecond))
	assert.Equal(t, time.Millisecond, tickInterval(time.Millisecond))
}

func TestWatcher_TinySettle(t *testing.T) {
	database := newTestDB(t)
	path := filepath.Join(t.TempDir(), "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+row("a1", "main.js", 1, "2024-01-01T10:00:00Z")), 0644))

	log, _ := test.NewNullLogger()
	w, err := New(database, path, Options{Settle: time.Nanosecond}, log)
	require.NoError(t, err)
	startWatcher(t, w)

	require.Eventually(t, func() bool { return w.Stats().Imported == 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_File(t *testing.T) {
	database := newTestDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+row("a1", "main.js", 1, "2024-01-01T10:00:00Z")), 0644))

	log, _ := test.NewNullLogger()
	w, err := New(database, path, Options{Settle: 50 * time.Millisecond}, log)
	require.NoError(t, err)
	startWatcher(t, w)

	require.Eventually(t, func() bool { return w.Stats().Imported == 1 }, 5*time.Second, 20*time.Millisecond,
		"existing file imported on start")

	// Unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.csv"), []byte(header), 0644))

	updated := header + row("a1", "main.js", 1, "2024-01-01T10:00:00Z") + row("b2", "main.js", 2, "2024-01-02T10:00:00Z")
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	require.Eventually(t, func() bool { return w.Stats().Imported == 2 }, 5*time.Second, 20*time.Millisecond)

	latest, err := database.LatestDataset()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.CommitCount)
	assert.Equal(t, "loc.csv", latest.Label)
	assert.Equal(t, 2, datasetCount(t, database))
}

func TestWatcher_Directory(t *testing.T) {
	database := newTestDB(t)
	dir := t.TempDir()

	log, _ := test.NewNullLogger()
	w, err := New(database, dir, Options{Settle: 50 * time.Millisecond, Label: "site"}, log)
	require.NoError(t, err)
	startWatcher(t, w)

	// Give the initial sync a moment; the directory is empty
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, w.Stats().Imported)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte(header+row("a1", "x.js", 1, "2024-01-01T10:00:00Z")), 0644))

	require.Eventually(t, func() bool { return w.Stats().Imported == 1 }, 5*time.Second, 20*time.Millisecond)

	latest, err := database.LatestDataset()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "site", latest.Label)
}

func TestWatcher_BadFileKeepsWatching(t *testing.T) {
	database := newTestDB(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "loc.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"a1,x.js,zero,js,0,1,Ada,2024-01-01,10:00,+00:00,2024-01-01T10:00:00Z\n"), 0644))

	log, _ := test.NewNullLogger()
	w, err := New(database, path, Options{Settle: 50 * time.Millisecond}, log)
	require.NoError(t, err)
	startWatcher(t, w)

	require.Eventually(t, func() bool { return w.Stats().Errors == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, w.Stats().LastError.Error(), "line")

	require.NoError(t, os.WriteFile(path, []byte(header+row("a1", "x.js", 1, "2024-01-01T10:00:00Z")), 0644))
	require.Eventually(t, func() bool { return w.Stats().Imported == 1 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 1, datasetCount(t, database))
}
