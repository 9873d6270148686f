package models

import (
	"errors"
	"time"
)

// LineChange is one row of the loc table: a single line of code as it stood
// at a given commit.
type LineChange struct {
	CommitID string    `json:"commit"`
	File     string    `json:"file"`
	Line     int       `json:"line"` // 1-based
	Type     string    `json:"type"` // language / file type tag
	Depth    int       `json:"depth"`
	Length   int       `json:"length"`
	Author   string    `json:"author"`
	Date     string    `json:"date"`     // verbatim from source
	Time     string    `json:"time"`     // verbatim from source
	Timezone string    `json:"timezone"` // verbatim from source, e.g. "-08:00"
	Datetime time.Time `json:"datetime"`
	Day      time.Time `json:"day"` // Date at midnight in Timezone
}

// Validate checks the invariants a parsed row must hold
func (l *LineChange) Validate() error {
	if l.CommitID == "" {
		return errors.New("commit is required")
	}
	if l.File == "" {
		return errors.New("file is required")
	}
	if l.Line < 1 {
		return errors.New("line must be positive")
	}
	if l.Depth < 0 {
		return errors.New("depth must be non-negative")
	}
	if l.Length < 0 {
		return errors.New("length must be non-negative")
	}
	if l.Datetime.IsZero() {
		return errors.New("datetime is required")
	}
	return nil
}
