package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/search"
)

var findFile string

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find commits that touched a file",
	Long: `Find every commit that changed a file. A bare file name matches that
name in any directory.

Examples:
  locscope find --file global.js
  locscope find --file meta/main.js`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringVar(&findFile, "file", "", "File path or name")
}

func runFind(cmd *cobra.Command, args []string) error {
	if findFile == "" {
		fmt.Println("Please specify --file")
		fmt.Println()
		return cmd.Help()
	}

	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	commits, err := findByFile(h, findFile)
	if err != nil {
		return err
	}

	if len(commits) == 0 {
		fmt.Printf("No commits found touching: %s\n", findFile)
		return nil
	}

	fmt.Printf("Found %d commit(s) touching %s:\n\n", len(commits), findFile)

	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"Commit", "Author", "Datetime", "Lines in file", "Lines total"})
	for _, c := range commits {
		inFile := 0
		c.EachLine(func(l models.LineChange) {
			if matchesFile(l.File, findFile) {
				inFile++
			}
		})
		tbl.AppendRow([]interface{}{
			narrative.ShortID(c.ID),
			truncate(c.Author, 24),
			c.Datetime.Format(datetimeLayout),
			inFile,
			humanize.Comma(int64(c.TotalLines)),
		})
	}
	tbl.Render()
	return nil
}

// findByFile asks the database when the history is a stored dataset and
// scans the timeline otherwise. Results are in time order.
func findByFile(h *history, file string) ([]models.Commit, error) {
	if h.Dataset == nil || h.db == nil {
		out := search.Commits(h.Timeline.Commits(), search.Filters{File: file})
		// search matches substrings; find wants the path or a trailing name
		exact := out[:0]
		for _, c := range out {
			touched := false
			c.EachLine(func(l models.LineChange) {
				touched = touched || matchesFile(l.File, file)
			})
			if touched {
				exact = append(exact, c)
			}
		}
		return exact, nil
	}

	ids, err := h.db.FindCommitsByFile(h.Dataset.ID, file)
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var out []models.Commit
	for _, c := range h.Timeline.Commits() {
		if wanted[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func matchesFile(path, file string) bool {
	return path == file || strings.HasSuffix(path, "/"+file)
}
