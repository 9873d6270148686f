package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/locscope/internal/core/config"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/timeline"
	"github.com/neilberkman/locscope/pkg/loccsv"
)

func newTestHandlers(t *testing.T) *handlers {
	t.Helper()

	parsed, err := loccsv.ParseFile("../../../pkg/loccsv/testdata/loc.csv")
	require.NoError(t, err)
	tl := timeline.New(parsed.Rows)

	renderer, err := narrative.NewRenderer(config.DefaultStepTemplate, "https://example.com/c/{{id}}")
	require.NoError(t, err)

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	return &handlers{
		load:     func() (*timeline.Timeline, error) { return tl, nil },
		renderer: renderer,
		limit:    config.DefaultLimit,
		log:      log,
		now:      func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
}

type toolFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func call(t *testing.T, fn toolFunc, args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := fn(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return res, text.Text
}

func TestWindowSummary(t *testing.T) {
	h := newTestHandlers(t)

	res, body := call(t, h.windowSummary, map[string]interface{}{"cutoff": "2024-02-04T00:00:00-08:00"})
	require.False(t, res.IsError, body)

	var got WindowSummary
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 2, got.Commits)
	assert.Equal(t, 4, got.TotalCommits)
	assert.False(t, got.Fallback)
	assert.Equal(t, 4, got.Summary.TotalLOC)
	require.Len(t, got.Languages, 2)
	assert.Equal(t, "html", got.Languages[0].Type)
	require.NotNil(t, got.Latest)
	assert.Equal(t, "4b7d3aa", got.Latest.ID)
	assert.Equal(t, "https://example.com/c/4b7d3aa", got.Latest.URL)
}

func TestWindowSummary_DefaultsToEnd(t *testing.T) {
	h := newTestHandlers(t)

	_, body := call(t, h.windowSummary, nil)

	var got WindowSummary
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 4, got.Commits)
	assert.Equal(t, timeline.PositionMax, got.Position)
	assert.Equal(t, 10, got.Summary.TotalLOC)
}

func TestWindowSummary_Fallback(t *testing.T) {
	h := newTestHandlers(t)

	_, body := call(t, h.windowSummary, map[string]interface{}{"cutoff": "2001-01-01"})

	var got WindowSummary
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.True(t, got.Fallback)
	assert.Equal(t, 1, got.Commits)
	assert.Equal(t, "9f2c1e0", got.Latest.ID)
}

func TestWindowSummary_BadCutoff(t *testing.T) {
	h := newTestHandlers(t)

	res, body := call(t, h.windowSummary, map[string]interface{}{"cutoff": "qqqzzz"})
	assert.True(t, res.IsError)
	assert.Contains(t, body, "unrecognised cutoff")
}

func TestWindowSummary_NonFinitePosition(t *testing.T) {
	h := newTestHandlers(t)

	for _, cutoff := range []string{"pos:NaN", "NaN%", "pos:Inf"} {
		res, body := call(t, h.windowSummary, map[string]interface{}{"cutoff": cutoff})
		assert.True(t, res.IsError, cutoff)
		assert.Contains(t, body, "finite", cutoff)
	}
}

func TestWindowSummary_LoadError(t *testing.T) {
	h := newTestHandlers(t)
	h.load = func() (*timeline.Timeline, error) { return nil, errors.New("disk on fire") }

	res, body := call(t, h.windowSummary, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, body, "disk on fire")
}

func TestListCommits(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{"all newest first", nil, []string{"e03f5d9", "c81e07b", "4b7d3aa", "9f2c1e0"}},
		{"cutoff", map[string]interface{}{"cutoff": "30%"}, []string{"4b7d3aa", "9f2c1e0"}},
		{"limit", map[string]interface{}{"limit": 1}, []string{"e03f5d9"}},
		{"file filter", map[string]interface{}{"query": "file:index.html"}, []string{"c81e07b", "9f2c1e0"}},
		{"no match", map[string]interface{}{"query": "author:nobody"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, body := call(t, h.listCommits, tt.args)

			var got struct {
				Commits []CommitSummary `json:"commits"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))

			ids := []string{}
			for _, c := range got.Commits {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCommitDetail(t *testing.T) {
	h := newTestHandlers(t)

	res, body := call(t, h.commitDetail, map[string]interface{}{"commit_id": "c81e", "include_lines": true})
	require.False(t, res.IsError, body)

	var got CommitDetail
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "c81e07b", got.ID)
	assert.Equal(t, "Ada Park", got.Author)
	assert.Equal(t, 4, got.TotalLines)
	assert.Equal(t, 2, got.FilesTouched)
	assert.Equal(t, "Afternoon", got.DayPeriod)
	assert.InDelta(t, 14.5, got.HourFrac, 1e-9)
	require.Len(t, got.Files, 2)
	assert.Equal(t, FileSummary{Name: "global.js", Type: "js", Lines: 3}, got.Files[0])
	assert.Len(t, got.Lines, 4)
}

func TestCommitDetail_Errors(t *testing.T) {
	h := newTestHandlers(t)

	res, body := call(t, h.commitDetail, map[string]interface{}{})
	assert.True(t, res.IsError)
	assert.Contains(t, body, "commit_id is required")

	res, body = call(t, h.commitDetail, map[string]interface{}{"commit_id": "ffff"})
	assert.True(t, res.IsError)
	assert.Contains(t, body, "commit not found")
}

func TestFileBreakdown(t *testing.T) {
	h := newTestHandlers(t)

	_, body := call(t, h.fileBreakdown, map[string]interface{}{"limit": 2})

	var got struct {
		Files []FileSummary `json:"files"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Files, 2)
	assert.Equal(t, "index.html", got.Files[0].Name)
	assert.Equal(t, 3, got.Files[0].Lines)
	assert.Equal(t, "global.js", got.Files[1].Name)
}

func TestStory(t *testing.T) {
	h := newTestHandlers(t)

	_, body := call(t, h.story, map[string]interface{}{"cutoff": "2024-02-10T23:00:00-08:00", "limit": 2})

	var got struct {
		Steps []StoryStep `json:"steps"`
		Total int         `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, 4, got.Total)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, 1, got.Steps[0].Index)
	assert.Equal(t, "4b7d3aa", got.Steps[0].Commit)
	assert.Equal(t, "c81e07b", got.Steps[1].Commit)
	assert.Contains(t, got.Steps[1].Text, "another glorious commit")
	assert.Equal(t, "https://example.com/c/c81e07b", got.Steps[1].URL)
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, newServer(newTestHandlers(t)))
}
