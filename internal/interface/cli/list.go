package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/search"
	"github.com/neilberkman/locscope/internal/core/stats"
)

var (
	listAt     string
	listAuthor string
	listFile   string
	listQuery  string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the commits visible at a cutoff",
	Long: `List commits at or before the cutoff, newest first.

Examples:
  locscope list
  locscope list --at 2024-02-10 --limit 5
  locscope list --author ada --file main.js
  locscope list -q "after:last-month 4b7"`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listAt, "at", "", "Cutoff: date, time, pos:NN, NN%, or natural language")
	listCmd.Flags().StringVar(&listAuthor, "author", "", "Filter by author")
	listCmd.Flags().StringVar(&listFile, "file", "", "Filter by file path")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Filter query (author:, file:, after:, before:, text)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum number of commits to display (default from config)")
}

func runList(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	view, err := resolveView(h.Timeline, listAt)
	if err != nil {
		return err
	}

	filters := search.ParseQuery(listQuery, time.Now())
	if listAuthor != "" {
		filters.Author = listAuthor
	}
	if listFile != "" {
		filters.File = listFile
	}
	commits := search.Commits(view.Commits, filters)

	fmt.Println(describeView(h.Timeline, view))
	fmt.Println()

	if len(commits) == 0 {
		fmt.Println("No commits found")
		return nil
	}

	limit := limitOrDefault(listLimit)
	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"#", "Commit", "Author", "Datetime", "Lines", "Files"})
	shown := 0
	for i := len(commits) - 1; i >= 0 && shown < limit; i-- {
		c := commits[i]
		tbl.AppendRow([]interface{}{
			i + 1,
			narrative.ShortID(c.ID),
			truncate(c.Author, 24),
			c.Datetime.Format(datetimeLayout),
			humanize.Comma(int64(c.TotalLines)),
			stats.FilesTouched(c),
		})
		shown++
	}
	if len(commits) > shown {
		tbl.AppendFooter([]interface{}{"", fmt.Sprintf("%d more", len(commits)-shown)})
	}
	tbl.Render()

	return nil
}

// truncate shortens s to maxLen runes with an ellipsis
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
