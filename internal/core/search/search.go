// Package search filters a commit history by author, file, date range and
// free text.
package search

import (
	"strings"
	"time"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

// Filters represents parsed filters from a query
type Filters struct {
	Query      string // free text: commit id prefix, author or file substring
	Author     string
	File       string
	AfterDate  time.Time
	BeforeDate time.Time
	HasAfter   bool
	HasBefore  bool
}

// ParseQuery extracts filters from a query string. Supports:
//   - author:<name>, file:<path>
//   - after:yesterday, before:2024-11-01, date:last-week (same as after:)
//
// Anything else is free text. Dates that cannot be parsed are dropped.
func ParseQuery(query string, now time.Time) Filters {
	filters := Filters{}
	var queryParts []string

	for _, token := range strings.Fields(query) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			queryParts = append(queryParts, token)
			continue
		}

		switch strings.ToLower(key) {
		case "author":
			filters.Author = value
		case "file":
			filters.File = value
		case "after", "date":
			if t, ok := parseBound(value, now, false); ok {
				filters.AfterDate, filters.HasAfter = t, true
			}
		case "before":
			if t, ok := parseBound(value, now, true); ok {
				filters.BeforeDate, filters.HasBefore = t, true
			}
		default:
			queryParts = append(queryParts, token)
		}
	}

	filters.Query = strings.Join(queryParts, " ")
	return filters
}

// parseBound reads a date for after:/before:. A bare date covers the whole
// day, so after: starts at midnight and before: ends at the day's last instant.
func parseBound(s string, now time.Time, end bool) (time.Time, bool) {
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		if end {
			return t.AddDate(0, 0, 1).Add(-time.Nanosecond), true
		}
		return t, true
	}

	// last-week, 3-days-ago
	for _, expr := range []string{s, strings.ReplaceAll(s, "-", " ")} {
		c, err := timeline.ParseCutoff(expr, now)
		if err == nil && !c.ByPosition {
			return c.Time, true
		}
	}
	return time.Time{}, false
}

// Empty reports whether no filter is set
func (f Filters) Empty() bool {
	return f.Query == "" && f.Author == "" && f.File == "" && !f.HasAfter && !f.HasBefore
}

// Match reports whether c passes every filter
func (f Filters) Match(c models.Commit) bool {
	if f.HasAfter && c.Datetime.Before(f.AfterDate) {
		return false
	}
	if f.HasBefore && c.Datetime.After(f.BeforeDate) {
		return false
	}
	if f.Author != "" && !containsFold(c.Author, f.Author) {
		return false
	}
	if f.File != "" && !touches(c, f.File) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.HasPrefix(strings.ToLower(c.ID), q) && !containsFold(c.Author, q) && !touches(c, q) {
			return false
		}
	}
	return true
}

// Commits returns the commits matching f, keeping their order
func Commits(commits []models.Commit, f Filters) []models.Commit {
	out := make([]models.Commit, 0, len(commits))
	for _, c := range commits {
		if f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

func touches(c models.Commit, file string) bool {
	found := false
	c.EachLine(func(l models.LineChange) {
		if !found && containsFold(l.File, file) {
			found = true
		}
	})
	return found
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
