package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/stats"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

var (
	statsAt        string
	statsLanguages bool
	statsHours     string
	statsBetween   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show summary statistics for the view at a cutoff",
	Long: `Display the summary panel for the commits visible at the cutoff:
commits, files, total LOC, max depth, longest line, max lines and the
period of the day with the most lines.

--hours and --between brush a region of the commit scatter (time by hour
of day) and break its lines down by language. An empty brush falls back
to the whole view.

Examples:
  locscope stats
  locscope stats --at 50% --languages
  locscope stats --hours 18-24 --between 2024-02-01..2024-02-29`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsAt, "at", "", "Cutoff: date, time, pos:NN, NN%, or natural language")
	statsCmd.Flags().BoolVar(&statsLanguages, "languages", false, "Show the language breakdown")
	statsCmd.Flags().StringVar(&statsHours, "hours", "", "Brush hours of day, e.g. 9-17")
	statsCmd.Flags().StringVar(&statsBetween, "between", "", "Brush dates, e.g. 2024-02-01..2024-02-29")
}

func runStats(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	view, err := resolveView(h.Timeline, statsAt)
	if err != nil {
		return err
	}

	fmt.Println(describeView(h.Timeline, view))
	fmt.Println()

	s := stats.Summarize(view.Lines, view.Commits)

	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"Statistic", "Value"})
	for _, r := range s.Rows() {
		tbl.AppendRow([]interface{}{r.Label, r.Value})
	}
	tbl.Render()

	brushing := statsHours != "" || statsBetween != ""
	if !statsLanguages && !brushing {
		return nil
	}

	langs := stats.Languages(view.Lines)
	title := "Languages"
	if brushing {
		region, err := parseRegion(h.Timeline, statsBetween, statsHours)
		if err != nil {
			return err
		}
		selected := stats.Brush(view.Commits, region)
		langs = stats.SelectionLanguages(view.Commits, region)
		if len(selected) == 0 {
			title = "Languages (brush selected nothing, showing the whole view)"
		} else {
			title = fmt.Sprintf("Languages in brushed region (%d commits)", len(selected))
		}
	}

	fmt.Println()
	fmt.Println(title)
	printLanguages(langs)
	return nil
}

func printLanguages(langs []stats.LanguageShare) {
	if len(langs) == 0 {
		fmt.Println("  none")
		return
	}
	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"Type", "Lines", "Share"})
	for _, l := range langs {
		tbl.AppendRow([]interface{}{l.Type, humanize.Comma(int64(l.Lines)), fmt.Sprintf("%.1f%%", l.Share*100)})
	}
	tbl.Render()
}

// parseRegion builds a brush region. A missing date range spans the whole
// history and missing hours span the whole day.
func parseRegion(tl *timeline.Timeline, between, hours string) (stats.Region, error) {
	from, to := tl.Scale().Domain()
	region := stats.Region{From: from, To: to, MinHour: 0, MaxHour: 24}

	if between != "" {
		a, b, ok := strings.Cut(between, "..")
		if !ok {
			return region, fmt.Errorf("invalid --between %q, want FROM..TO", between)
		}
		now := time.Now()
		start, err := timeline.ParseCutoff(a, now)
		if err != nil {
			return region, err
		}
		end, err := timeline.ParseCutoff(b, now)
		if err != nil {
			return region, err
		}
		region.From = tl.Resolve(start).Cutoff
		region.To = tl.Resolve(end).Cutoff
		// A bare start date means the start of that day
		if d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(a), now.Location()); err == nil {
			region.From = d
		}
	}

	if hours != "" {
		lo, hi, ok := strings.Cut(hours, "-")
		if !ok {
			return region, fmt.Errorf("invalid --hours %q, want FROM-TO", hours)
		}
		minHour, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		if err != nil {
			return region, fmt.Errorf("invalid --hours %q: %w", hours, err)
		}
		maxHour, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if err != nil {
			return region, fmt.Errorf("invalid --hours %q: %w", hours, err)
		}
		if minHour > maxHour {
			minHour, maxHour = maxHour, minHour
		}
		region.MinHour, region.MaxHour = minHour, maxHour
	}

	return region, nil
}
