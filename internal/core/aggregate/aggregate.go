// Package aggregate groups line-level rows into commits.
package aggregate

import (
	"sort"

	"github.com/neilberkman/locscope/internal/core/models"
)

// Commits groups rows by commit id and returns one Commit per id, sorted
// ascending by datetime.
//
// Grouping is stable: ids keep their first-occurrence order before the sort,
// rows keep source order within a commit, and the first row seen for an id
// supplies its provenance. Commits with equal datetimes therefore come out in
// first-occurrence order every time.
func Commits(rows []models.LineChange) []models.Commit {
	order := make([]string, 0)
	groups := make(map[string][]models.LineChange)

	for _, row := range rows {
		if _, ok := groups[row.CommitID]; !ok {
			order = append(order, row.CommitID)
		}
		groups[row.CommitID] = append(groups[row.CommitID], row)
	}

	commits := make([]models.Commit, 0, len(order))
	for _, id := range order {
		commits = append(commits, models.NewCommit(id, groups[id]))
	}

	SortByTime(commits)
	return commits
}

// SortByTime stable-sorts commits ascending by datetime in place
func SortByTime(commits []models.Commit) {
	sort.SliceStable(commits, func(i, j int) bool {
		return commits[i].Datetime.Before(commits[j].Datetime)
	})
}

// IsSorted reports whether commits are non-decreasing in datetime
func IsSorted(commits []models.Commit) bool {
	for i := 1; i < len(commits); i++ {
		if commits[i].Datetime.Before(commits[i-1].Datetime) {
			return false
		}
	}
	return true
}

// Lines flattens the rows owned by commits, in commit order
func Lines(commits []models.Commit) []models.LineChange {
	total := 0
	for _, c := range commits {
		total += c.TotalLines
	}

	out := make([]models.LineChange, 0, total)
	for _, c := range commits {
		c.EachLine(func(l models.LineChange) {
			out = append(out, l)
		})
	}
	return out
}
