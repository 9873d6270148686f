// Package narrative renders the per-commit story steps shown alongside the
// timeline.
package narrative

import (
	"fmt"

	"github.com/cbroglie/mustache"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/stats"
)

// DatetimeLayout is how step text spells out a commit time
const DatetimeLayout = "Monday, January 2, 2006 at 3:04 PM"

// Step is one narrative step: a commit and the text told about it
type Step struct {
	Index  int // 0-based position in the history
	Commit models.Commit
	URL    string
	Text   string
}

// Renderer turns commits into steps using mustache templates
type Renderer struct {
	step *mustache.Template
	url  *mustache.Template
}

// NewRenderer parses the step and commit URL templates. An empty URL
// template leaves step URLs empty.
func NewRenderer(stepTemplate, urlTemplate string) (*Renderer, error) {
	step, err := mustache.ParseString(stepTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse step template: %w", err)
	}

	r := &Renderer{step: step}
	if urlTemplate != "" {
		r.url, err = mustache.ParseString(urlTemplate)
		if err != nil {
			return nil, fmt.Errorf("parse commit url template: %w", err)
		}
	}
	return r, nil
}

// URL renders the commit URL for c
func (r *Renderer) URL(c models.Commit) string {
	if r.url == nil {
		return ""
	}
	out, err := r.url.Render(map[string]interface{}{
		"id":     c.ID,
		"author": c.Author,
	})
	if err != nil {
		return ""
	}
	return out
}

// Steps renders one step per commit. commits must be the full history in
// ascending order so that "first" and "since previous" are meaningful.
func (r *Renderer) Steps(commits []models.Commit) ([]Step, error) {
	steps := make([]Step, 0, len(commits))
	for i := range commits {
		s, err := r.Step(commits, i)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// Step renders the step for commits[i]
func (r *Renderer) Step(commits []models.Commit, i int) (Step, error) {
	c := commits[i]
	url := r.URL(c)

	sincePrevious := ""
	if i > 0 {
		sincePrevious = humanize.RelTime(c.Datetime, commits[i-1].Datetime, "earlier", "later")
	}

	data := map[string]interface{}{
		"id":             c.ID,
		"short_id":       ShortID(c.ID),
		"url":            url,
		"author":         c.Author,
		"datetime":       c.Datetime.Format(DatetimeLayout),
		"first":          i == 0,
		"ordinal":        humanize.Ordinal(i + 1),
		"total_lines":    humanize.Comma(int64(c.TotalLines)),
		"files_touched":  stats.FilesTouched(c),
		"since_previous": sincePrevious,
	}

	text, err := r.step.Render(data)
	if err != nil {
		return Step{}, fmt.Errorf("render step for commit %s: %w", c.ID, err)
	}

	return Step{Index: i, Commit: c, URL: url, Text: text}, nil
}

// ShortID abbreviates a commit hash the way git does
func ShortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}
