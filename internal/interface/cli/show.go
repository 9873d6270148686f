package cli

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/stats"
)

var (
	showLines bool
	showCopy  bool
)

var showCmd = &cobra.Command{
	Use:   "show <commit>",
	Short: "Show details of one commit",
	Long: `Show a commit's author, time, size and files. The commit may be given
as any unique prefix of its id.

Examples:
  locscope show 4b7d3aa
  locscope show 4b7 --lines
  locscope show 4b7 --copy      Copy the commit URL to the clipboard`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showLines, "lines", false, "List every changed line")
	showCmd.Flags().BoolVar(&showCopy, "copy", false, "Copy the commit URL to the clipboard")
}

func runShow(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	c, ok := h.Timeline.Find(args[0])
	if !ok {
		return fmt.Errorf("commit %q not found (or prefix is ambiguous)", args[0])
	}

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	url := renderer.URL(c)

	fmt.Printf("Commit:   %s\n", c.ID)
	fmt.Printf("Author:   %s\n", c.Author)
	fmt.Printf("Date:     %s (%s)\n", c.Datetime.Format("Monday, January 2, 2006 3:04 PM -07:00"), humanize.Time(c.Datetime))
	fmt.Printf("Recorded: %s %s %s\n", c.Date, c.Time, c.Timezone)
	fmt.Printf("Period:   %s (hour %.2f)\n", stats.DayPeriod(c.Datetime), c.HourFrac)
	fmt.Printf("Lines:    %s in %d files\n", humanize.Comma(int64(c.TotalLines)), stats.FilesTouched(c))
	if url != "" {
		fmt.Printf("URL:      %s\n", url)
	}
	fmt.Println()

	files := stats.Files([]models.Commit{c})
	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"File", "Type", "Lines"})
	for _, f := range files {
		tbl.AppendRow([]interface{}{f.Name, f.Type, f.LineCount()})
	}
	tbl.Render()

	if showLines {
		fmt.Println()
		lines := newTable(os.Stdout)
		lines.AppendHeader([]interface{}{"File", "Line", "Type", "Depth", "Length"})
		c.EachLine(func(l models.LineChange) {
			lines.AppendRow([]interface{}{l.File, l.Line, l.Type, l.Depth, l.Length})
		})
		lines.Render()
	}

	if showCopy {
		if url == "" {
			return fmt.Errorf("no commit_url_template configured, nothing to copy")
		}
		if err := clipboard.WriteAll(url); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		fmt.Println()
		fmt.Println("✓ Copied commit URL to clipboard")
	}

	return nil
}
