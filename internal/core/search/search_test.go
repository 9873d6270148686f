package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/models"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func history() []models.Commit {
	d := func(day, hour int) time.Time { return time.Date(2024, 3, day, hour, 0, 0, 0, time.UTC) }
	return aggregate.Commits([]models.LineChange{
		{CommitID: "9f2c1e0", Author: "Ann Lee", Datetime: d(1, 9), File: "index.html", Line: 1},
		{CommitID: "4b7d3aa", Author: "Bob", Datetime: d(5, 14), File: "src/main.js", Line: 1},
		{CommitID: "4b7d3aa", Author: "Bob", Datetime: d(5, 14), File: "src/style.css", Line: 1},
		{CommitID: "c81e07b", Author: "Ann Lee", Datetime: d(10, 20), File: "src/main.js", Line: 2},
	})
}

func ids(commits []models.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.ID
	}
	return out
}

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		check func(t *testing.T, f Filters)
	}{
		{
			name:  "plain text",
			query: "main js",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "main js", f.Query)
				assert.False(t, f.HasAfter)
				assert.False(t, f.HasBefore)
			},
		},
		{
			name:  "author and file",
			query: "author:ann file:main.js refactor",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "ann", f.Author)
				assert.Equal(t, "main.js", f.File)
				assert.Equal(t, "refactor", f.Query)
			},
		},
		{
			name:  "date bounds cover whole days",
			query: "after:2024-03-05 before:2024-03-05",
			check: func(t *testing.T, f Filters) {
				require.True(t, f.HasAfter)
				require.True(t, f.HasBefore)
				assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), f.AfterDate)
				assert.Equal(t, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), f.BeforeDate)
			},
		},
		{
			name:  "date is after",
			query: "date:yesterday",
			check: func(t *testing.T, f Filters) {
				require.True(t, f.HasAfter)
				assert.True(t, f.AfterDate.Before(now))
			},
		},
		{
			name:  "unparseable date is dropped",
			query: "before:someday",
			check: func(t *testing.T, f Filters) {
				assert.False(t, f.HasBefore)
				assert.Empty(t, f.Query)
			},
		},
		{
			name:  "unknown key stays in text",
			query: "http://example.com",
			check: func(t *testing.T, f Filters) {
				assert.Equal(t, "http://example.com", f.Query)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, ParseQuery(tt.query, now))
		})
	}
}

func TestCommits(t *testing.T) {
	commits := history()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filters", "", []string{"9f2c1e0", "4b7d3aa", "c81e07b"}},
		{"author substring", "author:ann", []string{"9f2c1e0", "c81e07b"}},
		{"file substring", "file:main.js", []string{"4b7d3aa", "c81e07b"}},
		{"after", "after:2024-03-05", []string{"4b7d3aa", "c81e07b"}},
		{"before", "before:2024-03-05", []string{"9f2c1e0", "4b7d3aa"}},
		{"id prefix", "4b7", []string{"4b7d3aa"}},
		{"text matches file", "style", []string{"4b7d3aa"}},
		{"combined", "author:ann file:main.js", []string{"c81e07b"}},
		{"nothing", "author:zed", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := ParseQuery(tt.query, now)
			assert.Equal(t, tt.want, ids(Commits(commits, f)))
		})
	}
}

func TestFilters_Empty(t *testing.T) {
	assert.True(t, ParseQuery("", now).Empty())
	assert.True(t, Filters{}.Empty())
	assert.False(t, ParseQuery("author:ann", now).Empty())
}
