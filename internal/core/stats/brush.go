package stats

import (
	"time"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/models"
)

// Region is a rectangle over commit time (x) and hour of day (y). Bounds are
// inclusive.
type Region struct {
	From, To         time.Time
	MinHour, MaxHour float64
}

// IsZero reports whether no region is set
func (r Region) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero() && r.MinHour == 0 && r.MaxHour == 0
}

// Contains reports whether c falls inside the region
func (r Region) Contains(c models.Commit) bool {
	if r.IsZero() {
		return false
	}
	return !c.Datetime.Before(r.From) && !c.Datetime.After(r.To) &&
		r.MinHour <= c.HourFrac && c.HourFrac <= r.MaxHour
}

// Brush returns the commits inside region, in input order
func Brush(commits []models.Commit, region Region) []models.Commit {
	out := make([]models.Commit, 0)
	for _, c := range commits {
		if region.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// SelectionLanguages is the language breakdown for a brush selection. An
// empty selection falls back to every commit in base.
func SelectionLanguages(base []models.Commit, region Region) []LanguageShare {
	selected := Brush(base, region)
	if len(selected) == 0 {
		selected = base
	}
	return Languages(aggregate.Lines(selected))
}
