// Package timeline selects the part of a commit history visible at a time
// cutoff.
package timeline

import (
	"sort"
	"strings"
	"time"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/models"
)

// Prefix returns k such that commits[:k] are exactly the commits at or before
// cutoff. commits must be sorted ascending by datetime.
func Prefix(commits []models.Commit, cutoff time.Time) int {
	return sort.Search(len(commits), func(i int) bool {
		return commits[i].Datetime.After(cutoff)
	})
}

// Select returns a fresh slice holding the commits at or before cutoff.
//
// When the history is non-empty but nothing is that old, the earliest commit
// alone is returned instead of an empty view. An empty history selects
// nothing.
func Select(commits []models.Commit, cutoff time.Time) []models.Commit {
	if len(commits) == 0 {
		return []models.Commit{}
	}

	k := Prefix(commits, cutoff)
	if k == 0 {
		k = 1
	}

	out := make([]models.Commit, k)
	copy(out, commits[:k])
	return out
}

// FilterRows selects rows directly by row datetime. Because every row carries
// its commit's datetime this matches the lines of Select's commits whenever
// the fallback does not apply; View uses the commit-based derivation.
func FilterRows(rows []models.LineChange, cutoff time.Time) []models.LineChange {
	out := make([]models.LineChange, 0)
	for _, r := range rows {
		if !r.Datetime.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// View is the filtered state for one cutoff. Each event produces a new View;
// nothing mutates an existing one.
type View struct {
	Cutoff   time.Time
	Position float64
	Commits  []models.Commit
	Lines    []models.LineChange
	// Fallback is set when the cutoff predates every commit and the
	// earliest commit was substituted.
	Fallback bool
}

// Empty reports whether the view has nothing to show
func (v View) Empty() bool {
	return len(v.Commits) == 0
}

// Latest returns the newest commit in the view
func (v View) Latest() (models.Commit, bool) {
	if len(v.Commits) == 0 {
		return models.Commit{}, false
	}
	return v.Commits[len(v.Commits)-1], true
}

// Timeline holds the full, immutable history of a dataset and derives views
// from it.
type Timeline struct {
	rows    []models.LineChange
	commits []models.Commit
	scale   Scale
}

// New aggregates rows into commits and builds the time scale
func New(rows []models.LineChange) *Timeline {
	owned := make([]models.LineChange, len(rows))
	copy(owned, rows)

	commits := aggregate.Commits(owned)
	return &Timeline{
		rows:    owned,
		commits: commits,
		scale:   NewScale(commits),
	}
}

// Len is the number of commits in the full history
func (tl *Timeline) Len() int {
	return len(tl.commits)
}

// Commits returns the full history, ascending by datetime
func (tl *Timeline) Commits() []models.Commit {
	out := make([]models.Commit, len(tl.commits))
	copy(out, tl.commits)
	return out
}

// Rows returns every ingested row in source order
func (tl *Timeline) Rows() []models.LineChange {
	out := make([]models.LineChange, len(tl.rows))
	copy(out, tl.rows)
	return out
}

// Scale returns the time/position mapping of the full history
func (tl *Timeline) Scale() Scale {
	return tl.scale
}

// Full is the view at the latest commit
func (tl *Timeline) Full() View {
	return tl.AtPosition(PositionMax)
}

// At derives the view for a cutoff time
func (tl *Timeline) At(cutoff time.Time) View {
	return tl.view(cutoff, tl.scale.ToPosition(cutoff))
}

// AtPosition derives the view for a slider position
func (tl *Timeline) AtPosition(p float64) View {
	p = ClampPosition(p)
	return tl.view(tl.scale.ToDatetime(p), p)
}

// AtCommit derives the view a narrative step produces: the step's commit
// datetime becomes the cutoff.
func (tl *Timeline) AtCommit(c models.Commit) View {
	return tl.At(c.Datetime)
}

// Resolve derives the view for a parsed cutoff expression
func (tl *Timeline) Resolve(c Cutoff) View {
	if c.ByPosition {
		return tl.AtPosition(c.Position)
	}
	return tl.At(c.Time)
}

// Find returns the commit whose id equals or starts with id. An ambiguous
// prefix finds nothing.
func (tl *Timeline) Find(id string) (models.Commit, bool) {
	var found models.Commit
	matches := 0
	for _, c := range tl.commits {
		if c.ID == id {
			return c, true
		}
		if id != "" && strings.HasPrefix(c.ID, id) {
			found = c
			matches++
		}
	}
	return found, matches == 1
}

func (tl *Timeline) view(cutoff time.Time, position float64) View {
	commits := Select(tl.commits, cutoff)
	return View{
		Cutoff:   cutoff,
		Position: position,
		Commits:  commits,
		Lines:    aggregate.Lines(commits),
		Fallback: len(tl.commits) > 0 && Prefix(tl.commits, cutoff) == 0,
	}
}
