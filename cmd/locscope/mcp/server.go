package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/neilberkman/locscope/internal/core/config"
	"github.com/neilberkman/locscope/internal/core/dataset"
	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/search"
	"github.com/neilberkman/locscope/internal/core/stats"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

const timestampLayout = time.RFC3339

// Options configure StartServer. DBPath is ignored when CSVPath is set.
type Options struct {
	DBPath    string
	CSVPath   string
	DatasetID int64
	Config    *config.Config
	Log       *logrus.Logger
}

// WindowSummaryArgs defines arguments for the window_summary tool
type WindowSummaryArgs struct {
	Cutoff string `json:"cutoff,omitempty" jsonschema:"description=Cutoff: date, RFC 3339 time, pos:NN, NN%, start, end or natural language (default: end)"`
}

// ListCommitsArgs defines arguments for the list_commits tool
type ListCommitsArgs struct {
	Cutoff string `json:"cutoff,omitempty"`
	Query  string `json:"query,omitempty" jsonschema:"description=Filter: author:NAME file:PATH after:DATE before:DATE and free text"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max commits to return, newest first"`
}

// CommitDetailArgs defines arguments for the commit_detail tool
type CommitDetailArgs struct {
	CommitID     string `json:"commit_id" jsonschema:"description=Commit id or unique prefix,required"`
	IncludeLines bool   `json:"include_lines,omitempty"`
}

// FileBreakdownArgs defines arguments for the file_breakdown tool
type FileBreakdownArgs struct {
	Cutoff string `json:"cutoff,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// StoryArgs defines arguments for the story tool
type StoryArgs struct {
	Cutoff string `json:"cutoff,omitempty" jsonschema:"description=Only tell the story up to this cutoff"`
	Limit  int    `json:"limit,omitempty" jsonschema:"description=Max steps to return, counted from the cutoff backwards"`
}

// WindowSummary is the view at a cutoff
type WindowSummary struct {
	Cutoff       string                `json:"cutoff"`
	Position     float64               `json:"position"`
	Fallback     bool                  `json:"fallback"`
	Commits      int                   `json:"commits"`
	TotalCommits int                   `json:"total_commits"`
	Summary      stats.Summary         `json:"summary"`
	Languages    []stats.LanguageShare `json:"languages"`
	Latest       *CommitSummary        `json:"latest,omitempty"`
}

// CommitSummary represents a commit in list results
type CommitSummary struct {
	ID           string `json:"id"`
	Author       string `json:"author"`
	Datetime     string `json:"datetime"`
	DayPeriod    string `json:"day_period"`
	TotalLines   int    `json:"total_lines"`
	FilesTouched int    `json:"files_touched"`
	URL          string `json:"url,omitempty"`
}

// CommitDetail is the full tooltip for one commit
type CommitDetail struct {
	CommitSummary
	Date     string              `json:"date"`
	Time     string              `json:"time"`
	Timezone string              `json:"timezone"`
	HourFrac float64             `json:"hour_frac"`
	Files    []FileSummary       `json:"files"`
	Lines    []models.LineChange `json:"lines,omitempty"`
}

// FileSummary represents one file's share of a view
type FileSummary struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Lines int    `json:"lines"`
}

// StoryStep is one rendered narrative step
type StoryStep struct {
	Index  int    `json:"index"`
	Commit string `json:"commit"`
	URL    string `json:"url,omitempty"`
	Text   string `json:"text"`
}

// handlers serve tool calls. load is called for every request so that a
// dataset imported while the server runs is picked up.
type handlers struct {
	load     func() (*timeline.Timeline, error)
	renderer *narrative.Renderer
	limit    int
	log      logrus.FieldLogger
	now      func() time.Time
}

// StartServer starts the MCP server on stdio
func StartServer(opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	var database *db.DB
	if opts.CSVPath == "" {
		var err error
		database, err = db.New(opts.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if closeErr := database.Close(); closeErr != nil {
				log.WithError(closeErr).Error("failed to close database")
			}
		}()
	}

	renderer, err := narrative.NewRenderer(cfg.StepTemplate, cfg.CommitURLTemplate)
	if err != nil {
		return err
	}

	h := &handlers{
		load: func() (*timeline.Timeline, error) {
			loaded, err := dataset.Load(dataset.Source{
				DB:          database,
				CSVPath:     opts.CSVPath,
				DatasetID:   opts.DatasetID,
				FallbackCSV: cfg.DataPath,
				Log:         log,
			})
			if err != nil {
				return nil, err
			}
			return loaded.Timeline, nil
		},
		renderer: renderer,
		limit:    cfg.DefaultLimit,
		log:      log,
		now:      time.Now,
	}

	log.WithField("db", opts.DBPath).Debug("starting MCP server")
	return server.ServeStdio(newServer(h))
}

func newServer(h *handlers) *server.MCPServer {
	s := server.NewMCPServer(
		"locscope",
		"1.0.0",
	)

	summaryTool := mcp.NewTool("window_summary",
		mcp.WithDescription("Summary statistics and language breakdown of the commits at or before a cutoff"),
		mcp.WithString("cutoff",
			mcp.Description("Cutoff: '2024-02-10', '2024-02-10T14:30:00-08:00', 'pos:50', '50%', 'start', 'end', '3 days ago' (default: end)")),
	)
	s.AddTool(summaryTool, h.windowSummary)

	listTool := mcp.NewTool("list_commits",
		mcp.WithDescription("List the commits at or before a cutoff, newest first, optionally filtered"),
		mcp.WithString("cutoff",
			mcp.Description("Cutoff expression (default: end)")),
		mcp.WithString("query",
			mcp.Description("Filter, e.g. 'author:ada file:main.js after:2024-02-01 fix'")),
		mcp.WithNumber("limit",
			mcp.Description("Max commits to return")),
	)
	s.AddTool(listTool, h.listCommits)

	detailTool := mcp.NewTool("commit_detail",
		mcp.WithDescription("Who, when and what for one commit, with its files and optionally every changed line"),
		mcp.WithString("commit_id",
			mcp.Required(),
			mcp.Description("Commit id or unique prefix")),
		mcp.WithBoolean("include_lines",
			mcp.Description("Include every changed line")),
	)
	s.AddTool(detailTool, h.commitDetail)

	filesTool := mcp.NewTool("file_breakdown",
		mcp.WithDescription("Files touched by the commits at or before a cutoff, largest first"),
		mcp.WithString("cutoff",
			mcp.Description("Cutoff expression (default: end)")),
		mcp.WithNumber("limit",
			mcp.Description("Max files to return")),
	)
	s.AddTool(filesTool, h.fileBreakdown)

	storyTool := mcp.NewTool("story",
		mcp.WithDescription("The narrative of the history, one step per commit"),
		mcp.WithString("cutoff",
			mcp.Description("Only tell the story up to this cutoff (default: end)")),
		mcp.WithNumber("limit",
			mcp.Description("Max steps, counted back from the cutoff")),
	)
	s.AddTool(storyTool, h.story)

	return s
}

func decodeArgs(request mcp.CallToolRequest, v interface{}) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	if err := json.Unmarshal(argsBytes, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

// viewAt loads the history and resolves a cutoff expression against it
func (h *handlers) viewAt(expr string) (*timeline.Timeline, timeline.View, error) {
	tl, err := h.load()
	if err != nil {
		return nil, timeline.View{}, fmt.Errorf("load failed: %w", err)
	}
	if strings.TrimSpace(expr) == "" {
		return tl, tl.Full(), nil
	}
	c, err := timeline.ParseCutoff(expr, h.now())
	if err != nil {
		return nil, timeline.View{}, err
	}
	return tl, tl.Resolve(c), nil
}

func (h *handlers) limitOr(n int) int {
	if n > 0 {
		return n
	}
	if h.limit > 0 {
		return h.limit
	}
	return config.DefaultLimit
}

func (h *handlers) commitSummary(c models.Commit) CommitSummary {
	return CommitSummary{
		ID:           c.ID,
		Author:       c.Author,
		Datetime:     c.Datetime.Format(timestampLayout),
		DayPeriod:    stats.DayPeriod(c.Datetime),
		TotalLines:   c.TotalLines,
		FilesTouched: stats.FilesTouched(c),
		URL:          h.renderer.URL(c),
	}
}

func fileSummaries(files []models.File) []FileSummary {
	out := make([]FileSummary, 0, len(files))
	for _, f := range files {
		out = append(out, FileSummary{Name: f.Name, Type: f.Type, Lines: f.LineCount()})
	}
	return out
}

func (h *handlers) windowSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args WindowSummaryArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tl, view, err := h.viewAt(args.Cutoff)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := WindowSummary{
		Position:     view.Position,
		Fallback:     view.Fallback,
		Commits:      len(view.Commits),
		TotalCommits: tl.Len(),
		Summary:      stats.Summarize(view.Lines, view.Commits),
		Languages:    stats.Languages(view.Lines),
	}
	if !view.Cutoff.IsZero() {
		result.Cutoff = view.Cutoff.Format(timestampLayout)
	}
	if latest, ok := view.Latest(); ok {
		cs := h.commitSummary(latest)
		result.Latest = &cs
	}

	h.log.WithFields(logrus.Fields{"tool": "window_summary", "commits": result.Commits}).Debug("served")
	return jsonResult(result)
}

func (h *handlers) listCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ListCommitsArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, view, err := h.viewAt(args.Cutoff)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matched := search.Commits(view.Commits, search.ParseQuery(args.Query, h.now()))
	limit := h.limitOr(args.Limit)

	commits := []CommitSummary{}
	for i := len(matched) - 1; i >= 0 && len(commits) < limit; i-- {
		commits = append(commits, h.commitSummary(matched[i]))
	}

	h.log.WithFields(logrus.Fields{"tool": "list_commits", "commits": len(commits)}).Debug("served")
	return jsonResult(map[string]interface{}{
		"commits": commits,
		"matched": len(matched),
	})
}

func (h *handlers) commitDetail(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args CommitDetailArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if args.CommitID == "" {
		return mcp.NewToolResultError("commit_id is required"), nil
	}

	tl, err := h.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	c, ok := tl.Find(args.CommitID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("commit not found: %s", args.CommitID)), nil
	}

	detail := CommitDetail{
		CommitSummary: h.commitSummary(c),
		Date:          c.Date,
		Time:          c.Time,
		Timezone:      c.Timezone,
		HourFrac:      c.HourFrac,
		Files:         fileSummaries(stats.Files([]models.Commit{c})),
	}
	if args.IncludeLines {
		detail.Lines = c.Lines()
	}
	return jsonResult(detail)
}

func (h *handlers) fileBreakdown(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args FileBreakdownArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	_, view, err := h.viewAt(args.Cutoff)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	files := fileSummaries(stats.Files(view.Commits))
	total := len(files)
	if limit := h.limitOr(args.Limit); len(files) > limit {
		files = files[:limit]
	}

	return jsonResult(map[string]interface{}{
		"files": files,
		"total": total,
	})
}

func (h *handlers) story(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args StoryArgs
	if err := decodeArgs(request, &args); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tl, view, err := h.viewAt(args.Cutoff)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Steps are numbered against the full history, then cut at the view
	all, err := h.renderer.Steps(tl.Commits())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	visible := all[:len(view.Commits)]

	if limit := h.limitOr(args.Limit); len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	steps := make([]StoryStep, 0, len(visible))
	for _, s := range visible {
		steps = append(steps, StoryStep{Index: s.Index, Commit: s.Commit.ID, URL: s.URL, Text: s.Text})
	}
	return jsonResult(map[string]interface{}{
		"steps": steps,
		"total": len(all),
	})
}
