package models

import "time"

// Commit aggregates every LineChange sharing one commit id.
//
// The provenance fields come from the first row seen for the commit. The
// rows themselves are held privately and only reachable through Lines, so
// the default JSON encoding and struct comparison stay small.
type Commit struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	Timezone   string    `json:"timezone"`
	Datetime   time.Time `json:"datetime"`
	HourFrac   float64   `json:"hourFrac"`
	TotalLines int       `json:"totalLines"`

	lines []LineChange
}

// NewCommit builds a commit from its rows. rows must be non-empty and all
// carry the same commit id; the slice is copied.
func NewCommit(id string, rows []LineChange) Commit {
	first := rows[0]
	owned := make([]LineChange, len(rows))
	copy(owned, rows)

	return Commit{
		ID:         id,
		Author:     first.Author,
		Date:       first.Date,
		Time:       first.Time,
		Timezone:   first.Timezone,
		Datetime:   first.Datetime,
		HourFrac:   HourFrac(first.Datetime),
		TotalLines: len(owned),
		lines:      owned,
	}
}

// Lines returns the rows owned by the commit in source order. Callers get a
// copy and may not mutate the commit through it.
func (c Commit) Lines() []LineChange {
	out := make([]LineChange, len(c.lines))
	copy(out, c.lines)
	return out
}

// EachLine calls fn for every owned row without copying.
func (c Commit) EachLine(fn func(LineChange)) {
	for _, l := range c.lines {
		fn(l)
	}
}

// HourFrac is the wall-clock hour of t in its own offset, plus minutes as a
// fraction. Always in [0, 24).
func HourFrac(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

// File is a display grouping of lines by path. It is rebuilt on every view.
type File struct {
	Name  string       `json:"name"`
	Type  string       `json:"type"`
	Lines []LineChange `json:"-"`
}

// LineCount is the number of lines in the group
func (f File) LineCount() int {
	return len(f.Lines)
}
