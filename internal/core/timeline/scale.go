package timeline

import (
	"math"
	"time"

	"github.com/neilberkman/locscope/internal/core/models"
)

// Slider range of a Scale
const (
	PositionMin = 0.0
	PositionMax = 100.0
)

// Scale maps the time extent of a commit history linearly onto slider
// positions [0, 100] and back. Inputs outside either range are clamped.
type Scale struct {
	min, max time.Time
}

// NewScale builds the mapping from the earliest and latest commit datetimes.
// An empty history gives a zero Scale.
func NewScale(commits []models.Commit) Scale {
	var s Scale
	for i, c := range commits {
		if i == 0 || c.Datetime.Before(s.min) {
			s.min = c.Datetime
		}
		if i == 0 || c.Datetime.After(s.max) {
			s.max = c.Datetime
		}
	}
	return s
}

// Domain returns the earliest and latest instants covered
func (s Scale) Domain() (time.Time, time.Time) {
	return s.min, s.max
}

// ToPosition maps t onto [0, 100]. A zero-width domain maps everything to
// the midpoint.
func (s Scale) ToPosition(t time.Time) float64 {
	span := s.max.Sub(s.min)
	if span <= 0 {
		return (PositionMin + PositionMax) / 2
	}
	switch {
	case !t.After(s.min):
		return PositionMin
	case !t.Before(s.max):
		return PositionMax
	}
	return PositionMax * float64(t.Sub(s.min)) / float64(span)
}

// ToDatetime is the inverse of ToPosition. The endpoints map exactly onto
// the domain bounds so that position 100 always includes the last commit.
func (s Scale) ToDatetime(p float64) time.Time {
	span := s.max.Sub(s.min)
	if span <= 0 {
		return s.min
	}
	switch {
	case math.IsNaN(p), p <= PositionMin:
		return s.min
	case p >= PositionMax:
		return s.max
	}
	return s.min.Add(time.Duration(p / PositionMax * float64(span)))
}

// ClampPosition limits p to the slider range. NaN maps to PositionMin.
func ClampPosition(p float64) float64 {
	if math.IsNaN(p) || p < PositionMin {
		return PositionMin
	}
	if p > PositionMax {
		return PositionMax
	}
	return p
}
