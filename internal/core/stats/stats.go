// Package stats computes the summary panel, language and file breakdowns for
// a filtered view.
package stats

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/models"
)

// Placeholder shown for statistics that have no value
const Placeholder = "–"

// Day periods, in bucket order
const (
	Night     = "Night"
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
)

// Summary is the statistics panel for one view
type Summary struct {
	Commits     int    `json:"commits"`
	Files       int    `json:"files"`
	TotalLOC    int    `json:"totalLoc"`
	MaxDepth    int    `json:"maxDepth"`
	LongestLine int    `json:"longestLine"`
	MaxLines    int    `json:"maxLines"`
	PeakPeriod  string `json:"peakPeriod"`
	// Empty is set when there was nothing to summarise; the numeric fields
	// are then zero and should be shown as Placeholder.
	Empty bool `json:"empty"`
}

// DayPeriod buckets t by its wall-clock hour
func DayPeriod(t time.Time) string {
	switch h := t.Hour(); {
	case h < 6:
		return Night
	case h < 12:
		return Morning
	case h < 18:
		return Afternoon
	default:
		return Evening
	}
}

// Summarize computes the statistics panel for lines and the commits they
// belong to.
func Summarize(lines []models.LineChange, commits []models.Commit) Summary {
	if len(lines) == 0 || len(commits) == 0 {
		return Summary{PeakPeriod: Placeholder, Empty: true}
	}

	s := Summary{
		Commits:  len(commits),
		TotalLOC: len(lines),
	}

	fileMax := make(map[string]int)
	var periods []string
	periodCount := make(map[string]int)

	for i, l := range lines {
		if i == 0 || l.Depth > s.MaxDepth {
			s.MaxDepth = l.Depth
		}
		if i == 0 || l.Length > s.LongestLine {
			s.LongestLine = l.Length
		}
		if cur, ok := fileMax[l.File]; !ok || l.Line > cur {
			fileMax[l.File] = l.Line
		}

		p := DayPeriod(l.Datetime)
		if _, ok := periodCount[p]; !ok {
			periods = append(periods, p)
		}
		periodCount[p]++
	}

	s.Files = len(fileMax)
	for _, n := range fileMax {
		if n > s.MaxLines {
			s.MaxLines = n
		}
	}

	s.PeakPeriod = Placeholder
	best := 0
	for _, p := range periods {
		if periodCount[p] > best {
			best = periodCount[p]
			s.PeakPeriod = p
		}
	}

	return s
}

// Row is one labelled line of the statistics panel
type Row struct {
	Label string
	Value string
}

// Rows formats the panel. An empty summary still counts its commits, files
// and lines as 0; only the extremes and the peak period show Placeholder.
func (s Summary) Rows() []Row {
	count := func(n int) string {
		return humanize.Comma(int64(n))
	}
	extreme := func(n int) string {
		if s.Empty {
			return Placeholder
		}
		return humanize.Comma(int64(n))
	}
	peak := s.PeakPeriod
	if s.Empty || peak == "" {
		peak = Placeholder
	}

	return []Row{
		{"Commits", count(s.Commits)},
		{"Files", count(s.Files)},
		{"Total LOC", count(s.TotalLOC)},
		{"Max depth", extreme(s.MaxDepth)},
		{"Longest line", extreme(s.LongestLine)},
		{"Max lines", extreme(s.MaxLines)},
		{"Peak period", peak},
	}
}

// LanguageShare is one row of the language breakdown
type LanguageShare struct {
	Type  string  `json:"type"`
	Lines int     `json:"lines"`
	Share float64 `json:"share"` // fraction of all lines, 0..1
}

// Languages counts lines per type in first-occurrence order
func Languages(lines []models.LineChange) []LanguageShare {
	out := make([]LanguageShare, 0)
	if len(lines) == 0 {
		return out
	}

	pos := make(map[string]int)
	for _, l := range lines {
		i, ok := pos[l.Type]
		if !ok {
			i = len(out)
			pos[l.Type] = i
			out = append(out, LanguageShare{Type: l.Type})
		}
		out[i].Lines++
	}

	for i := range out {
		out[i].Share = float64(out[i].Lines) / float64(len(lines))
	}
	return out
}

// Files groups the lines of commits by path. Groups are ordered by line count,
// largest first; ties keep first-occurrence order. A file's type is the type
// of its first line.
func Files(commits []models.Commit) []models.File {
	files := make([]models.File, 0)
	pos := make(map[string]int)

	for _, l := range aggregate.Lines(commits) {
		i, ok := pos[l.File]
		if !ok {
			i = len(files)
			pos[l.File] = i
			files = append(files, models.File{Name: l.File, Type: l.Type})
		}
		files[i].Lines = append(files[i].Lines, l)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return len(files[i].Lines) > len(files[j].Lines)
	})
	return files
}

// FilesTouched counts the distinct files a commit changed
func FilesTouched(c models.Commit) int {
	seen := make(map[string]struct{})
	c.EachLine(func(l models.LineChange) {
		seen[l.File] = struct{}{}
	})
	return len(seen)
}
