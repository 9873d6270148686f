package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/neilberkman/locscope/internal/core/dataset"
	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

// datetimeLayout is the short form used in tables
const datetimeLayout = "2006-01-02 15:04 -07:00"

// history is an opened data source. Close releases the database, if any.
type history struct {
	*dataset.Loaded
	db *db.DB
}

func (h *history) Close() {
	if h.db != nil {
		_ = h.db.Close()
	}
}

// openHistory resolves --csv, --dataset and the database into a timeline.
// The database is not touched when --csv is given.
func openHistory() (*history, error) {
	h := &history{}
	if csvPath == "" {
		database, err := db.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		h.db = database
	}

	loaded, err := dataset.Load(dataset.Source{
		DB:          h.db,
		CSVPath:     csvPath,
		DatasetID:   datasetID,
		FallbackCSV: cfg.DataPath,
		Log:         logger,
	})
	if err != nil {
		h.Close()
		return nil, err
	}
	h.Loaded = loaded

	if loaded.Origin == "" {
		fmt.Fprintln(os.Stderr, "No data found. Run 'locscope import loc.csv' or pass --csv.")
	}
	return h, nil
}

// resolveView parses an --at expression; empty means the whole history
func resolveView(tl *timeline.Timeline, at string) (timeline.View, error) {
	if strings.TrimSpace(at) == "" {
		return tl.Full(), nil
	}
	c, err := timeline.ParseCutoff(at, time.Now())
	if err != nil {
		return timeline.View{}, err
	}
	return tl.Resolve(c), nil
}

// describeView is the one-line header printed above view output
func describeView(tl *timeline.Timeline, v timeline.View) string {
	if tl.Len() == 0 {
		return "Empty history"
	}
	s := fmt.Sprintf("Cutoff %s (%.0f%%): %s of %s commits",
		v.Cutoff.Format(datetimeLayout), v.Position,
		humanize.Comma(int64(len(v.Commits))), humanize.Comma(int64(tl.Len())))
	if v.Fallback {
		s += " (before the first commit, showing it anyway)"
	}
	return s
}

func newTable(w io.Writer) table.Writer {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.SeparateRows = false
	return tbl
}

func newRenderer() (*narrative.Renderer, error) {
	return narrative.NewRenderer(cfg.StepTemplate, cfg.CommitURLTemplate)
}

func limitOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return cfg.DefaultLimit
}
