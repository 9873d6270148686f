package narrative

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/aggregate"
	"github.com/neilberkman/locscope/internal/core/config"
	"github.com/neilberkman/locscope/internal/core/models"
)

func history() []models.Commit {
	first := time.Date(2024, 1, 1, 10, 15, 0, 0, time.UTC)
	second := first.Add(72 * time.Hour)
	return aggregate.Commits([]models.LineChange{
		{CommitID: "9f2c1e0aa", Author: "Ann", Datetime: first, File: "index.html", Line: 1, Type: "html"},
		{CommitID: "9f2c1e0aa", Author: "Ann", Datetime: first, File: "index.html", Line: 2, Type: "html"},
		{CommitID: "4b7d3aa", Author: "Ann", Datetime: second, File: "style.css", Line: 1, Type: "css"},
		{CommitID: "4b7d3aa", Author: "Ann", Datetime: second, File: "main.js", Line: 1, Type: "js"},
	})
}

func TestSteps_DefaultTemplate(t *testing.T) {
	r, err := NewRenderer(config.DefaultStepTemplate, "")
	require.NoError(t, err)

	steps, err := r.Steps(history())
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, 0, steps[0].Index)
	assert.Equal(t, "9f2c1e0aa", steps[0].Commit.ID)
	assert.Contains(t, steps[0].Text, "On Monday, January 1, 2024 at 10:15 AM")
	assert.Contains(t, steps[0].Text, "my first commit, and it was glorious")
	assert.Contains(t, steps[0].Text, "I edited 2 lines across 1 files")
	assert.NotContains(t, steps[0].Text, "<", "no url without a url template")

	assert.Contains(t, steps[1].Text, "another glorious commit")
	assert.NotContains(t, steps[1].Text, "my first commit")
	assert.Contains(t, steps[1].Text, "I edited 2 lines across 2 files")
}

func TestSteps_Empty(t *testing.T) {
	r, err := NewRenderer(config.DefaultStepTemplate, "")
	require.NoError(t, err)

	steps, err := r.Steps(nil)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestURL(t *testing.T) {
	commits := history()

	r, err := NewRenderer(config.DefaultStepTemplate, "https://github.com/me/site/commit/{{id}}")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/me/site/commit/9f2c1e0aa", r.URL(commits[0]))

	s, err := r.Step(commits, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/me/site/commit/9f2c1e0aa", s.URL)
	assert.Contains(t, s.Text, "<https://github.com/me/site/commit/9f2c1e0aa>")

	noURL, err := NewRenderer(config.DefaultStepTemplate, "")
	require.NoError(t, err)
	assert.Empty(t, noURL.URL(commits[0]))
}

func TestStep_TemplateFields(t *testing.T) {
	commits := history()

	r, err := NewRenderer("{{ordinal}} {{short_id}} by {{author}}{{#since_previous}}, {{since_previous}}{{/since_previous}}", "")
	require.NoError(t, err)

	s, err := r.Step(commits, 0)
	require.NoError(t, err)
	assert.Equal(t, "1st 9f2c1e0 by Ann", s.Text)

	s, err = r.Step(commits, 1)
	require.NoError(t, err)
	assert.Equal(t, "2nd 4b7d3aa by Ann, 3 days later", s.Text)
}

func TestNewRenderer_BadTemplate(t *testing.T) {
	_, err := NewRenderer("{{#first}}unclosed", "")
	assert.Error(t, err)

	_, err = NewRenderer("ok", "{{#id}}")
	assert.Error(t, err)
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "9f2c1e0", ShortID("9f2c1e0aa"))
	assert.Equal(t, "abc", ShortID("abc"))
}
