package dataset

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/pkg/loccsv"
)

const sampleCSV = "../../../pkg/loccsv/testdata/loc.csv"

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestLoad_CSV(t *testing.T) {
	loaded, err := Load(Source{CSVPath: sampleCSV, Log: quietLog()})
	require.NoError(t, err)

	assert.Equal(t, sampleCSV, loaded.Origin)
	assert.Nil(t, loaded.Dataset)
	assert.Equal(t, 4, loaded.Timeline.Len())
}

func TestLoad_CSVErrors(t *testing.T) {
	_, err := Load(Source{CSVPath: "../../../pkg/loccsv/testdata/malformed.csv", Log: quietLog()})
	var rowErr *loccsv.RowError
	assert.ErrorAs(t, err, &rowErr)

	_, err = Load(Source{CSVPath: "/nonexistent/loc.csv", Log: quietLog()})
	assert.Error(t, err)
}

func TestLoad_LatestDataset(t *testing.T) {
	database := openDB(t)
	parsed, err := loccsv.ParseFile(sampleCSV)
	require.NoError(t, err)

	_, err = database.SaveDataset(db.Dataset{SourcePath: "old.csv", FileHash: "1", Label: "old"}, parsed.Rows[:2])
	require.NoError(t, err)
	latest, err := database.SaveDataset(db.Dataset{SourcePath: "new.csv", FileHash: "2", Label: "new"}, parsed.Rows)
	require.NoError(t, err)

	loaded, err := Load(Source{DB: database, FallbackCSV: "/nonexistent/loc.csv", Log: quietLog()})
	require.NoError(t, err)

	require.NotNil(t, loaded.Dataset)
	assert.Equal(t, latest, loaded.Dataset.ID)
	assert.Equal(t, 4, loaded.Timeline.Len())
	assert.Contains(t, loaded.Origin, "new")
}

func TestLoad_DatasetID(t *testing.T) {
	database := openDB(t)
	parsed, err := loccsv.ParseFile(sampleCSV)
	require.NoError(t, err)

	first, err := database.SaveDataset(db.Dataset{SourcePath: "a.csv", FileHash: "1"}, parsed.Rows[:2])
	require.NoError(t, err)
	_, err = database.SaveDataset(db.Dataset{SourcePath: "b.csv", FileHash: "2"}, parsed.Rows)
	require.NoError(t, err)

	loaded, err := Load(Source{DB: database, DatasetID: first, Log: quietLog()})
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Timeline.Len())

	_, err = Load(Source{DB: database, DatasetID: 99, Log: quietLog()})
	assert.Error(t, err)
}

func TestLoad_FallsBackToCSV(t *testing.T) {
	database := openDB(t)

	loaded, err := Load(Source{DB: database, FallbackCSV: sampleCSV, Log: quietLog()})
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, loaded.Origin)
	assert.Equal(t, 4, loaded.Timeline.Len())
}

func TestLoad_NothingIsEmptyNotError(t *testing.T) {
	database := openDB(t)

	loaded, err := Load(Source{DB: database, FallbackCSV: "/nonexistent/loc.csv", Log: quietLog()})
	require.NoError(t, err)
	assert.Empty(t, loaded.Origin)
	assert.Equal(t, 0, loaded.Timeline.Len())
	assert.True(t, loaded.Timeline.Full().Empty())
}
