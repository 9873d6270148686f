package timeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/models"
)

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func exampleRows() []models.LineChange {
	return []models.LineChange{
		{CommitID: "a", Datetime: at("2024-01-01T10:15"), File: "x.js", Line: 1, Type: "js", Depth: 1, Length: 10},
		{CommitID: "a", Datetime: at("2024-01-01T10:15"), File: "x.js", Line: 2, Type: "js", Depth: 1, Length: 5},
		{CommitID: "b", Datetime: at("2024-01-02T08:00"), File: "y.css", Line: 1, Type: "css", Depth: 0, Length: 20},
	}
}

func randomRows(r *rand.Rand, n int) []models.LineChange {
	base := at("2024-01-01T00:00")
	var rows []models.LineChange
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%03d", i)
		// coarse steps so ties happen
		when := base.Add(time.Duration(r.Intn(200)) * time.Hour)
		for l := 1; l <= 1+r.Intn(4); l++ {
			rows = append(rows, models.LineChange{CommitID: id, Datetime: when, File: "f.go", Line: l})
		}
	}
	r.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
	return rows
}

func ids(commits []models.Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.ID
	}
	return out
}

func TestSelect_Examples(t *testing.T) {
	commits := aggregate.Commits(exampleRows())

	assert.Equal(t, []string{"a"}, ids(Select(commits, at("2024-01-01T23:59"))))
	assert.Equal(t, []string{"a"}, ids(Select(commits, at("2023-12-31T00:00"))), "fallback to earliest commit")
	assert.Equal(t, []string{"a", "b"}, ids(Select(commits, at("2024-01-02T08:00"))), "boundary is inclusive")
	assert.Equal(t, []string{"a", "b"}, ids(Select(commits, at("2099-01-01T00:00"))))
}

func TestSelect_EmptyHistory(t *testing.T) {
	got := Select(nil, at("2024-01-01T00:00"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelect_ReturnsFreshSlice(t *testing.T) {
	commits := aggregate.Commits(exampleRows())
	got := Select(commits, at("2024-01-02T08:00"))
	got[0] = models.Commit{ID: "overwritten"}
	assert.Equal(t, "a", commits[0].ID)
}

func TestSelect_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for trial := 0; trial < 100; trial++ {
		commits := aggregate.Commits(randomRows(r, 1+r.Intn(20)))
		require.True(t, aggregate.IsSorted(commits))

		first := commits[0].Datetime
		cutoffs := []time.Time{first.Add(-time.Hour), first, commits[len(commits)-1].Datetime}
		for i := 0; i < 10; i++ {
			cutoffs = append(cutoffs, first.Add(time.Duration(r.Intn(220))*time.Hour-time.Duration(r.Intn(60))*time.Minute))
		}

		for _, cutoff := range cutoffs {
			got := Select(commits, cutoff)

			// contiguous prefix
			require.LessOrEqual(t, len(got), len(commits))
			assert.Equal(t, ids(commits[:len(got)]), ids(got))

			// same result as a plain filter, or the fallback
			var filtered []models.Commit
			for _, c := range commits {
				if !c.Datetime.After(cutoff) {
					filtered = append(filtered, c)
				}
			}
			if len(filtered) == 0 {
				assert.Equal(t, []string{commits[0].ID}, ids(got))
			} else {
				assert.Equal(t, ids(filtered), ids(got))
			}

			// monotonic in the cutoff
			later := cutoff.Add(time.Duration(r.Intn(100)) * time.Hour)
			wider := Select(commits, later)
			require.GreaterOrEqual(t, len(wider), len(got))
			assert.Equal(t, ids(got), ids(wider[:len(got)]))
		}
	}
}

func TestRowDerivationsAgree(t *testing.T) {
	r := rand.New(rand.NewSource(3))

	for trial := 0; trial < 50; trial++ {
		rows := randomRows(r, 1+r.Intn(15))
		tl := New(rows)
		commits := tl.Commits()

		for i := 0; i < 10; i++ {
			cutoff := commits[0].Datetime.Add(time.Duration(r.Intn(220)) * time.Hour)
			view := tl.At(cutoff)
			direct := FilterRows(rows, cutoff)

			assert.False(t, view.Fallback)
			assert.ElementsMatch(t, direct, view.Lines)
		}
	}
}

func TestTimeline_Views(t *testing.T) {
	tl := New(exampleRows())
	require.Equal(t, 2, tl.Len())

	full := tl.Full()
	assert.Equal(t, []string{"a", "b"}, ids(full.Commits))
	assert.Len(t, full.Lines, 3)
	assert.InDelta(t, 100, full.Position, 1e-9)
	assert.False(t, full.Fallback)

	early := tl.At(at("2023-06-01T00:00"))
	assert.True(t, early.Fallback)
	assert.Equal(t, []string{"a"}, ids(early.Commits))
	assert.Len(t, early.Lines, 2)
	assert.InDelta(t, 0, early.Position, 1e-9)

	start := tl.AtPosition(0)
	assert.Equal(t, []string{"a"}, ids(start.Commits))
	assert.False(t, start.Fallback)

	step := tl.AtCommit(tl.Commits()[1])
	assert.Equal(t, []string{"a", "b"}, ids(step.Commits))

	latest, ok := step.Latest()
	require.True(t, ok)
	assert.Equal(t, "b", latest.ID)
}

func TestTimeline_Empty(t *testing.T) {
	tl := New(nil)

	v := tl.Full()
	assert.True(t, v.Empty())
	assert.Empty(t, v.Lines)
	assert.False(t, v.Fallback)

	_, ok := v.Latest()
	assert.False(t, ok)
}

func TestTimeline_Find(t *testing.T) {
	tl := New([]models.LineChange{
		{CommitID: "abc123", Datetime: at("2024-01-01T10:00"), File: "a", Line: 1},
		{CommitID: "abd456", Datetime: at("2024-01-02T10:00"), File: "a", Line: 1},
	})

	c, ok := tl.Find("abc")
	require.True(t, ok)
	assert.Equal(t, "abc123", c.ID)

	_, ok = tl.Find("ab")
	assert.False(t, ok, "ambiguous prefix")

	_, ok = tl.Find("zzz")
	assert.False(t, ok)
}

func TestTimeline_ResolveCutoff(t *testing.T) {
	tl := New(exampleRows())

	v := tl.Resolve(Cutoff{ByPosition: true, Position: 0})
	assert.Equal(t, []string{"a"}, ids(v.Commits))

	v = tl.Resolve(Cutoff{Time: at("2024-01-02T08:00")})
	assert.Equal(t, []string{"a", "b"}, ids(v.Commits))
}
