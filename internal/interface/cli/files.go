package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/stats"
)

var (
	filesAt    string
	filesLimit int
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Show files by line count at a cutoff",
	Long: `Group the lines visible at the cutoff by file, largest first.
Each dot is roughly one line, scaled down for large files.

Examples:
  locscope files
  locscope files --at "last week" --limit 50`,
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)
	filesCmd.Flags().StringVar(&filesAt, "at", "", "Cutoff: date, time, pos:NN, NN%, or natural language")
	filesCmd.Flags().IntVar(&filesLimit, "limit", 0, "Maximum number of files to display (default from config)")
}

// dotWidth caps the dot bar in the files table
const dotWidth = 40

func runFiles(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	view, err := resolveView(h.Timeline, filesAt)
	if err != nil {
		return err
	}

	fmt.Println(describeView(h.Timeline, view))
	fmt.Println()

	files := stats.Files(view.Commits)
	if len(files) == 0 {
		fmt.Println("No files")
		return nil
	}

	limit := limitOrDefault(filesLimit)
	largest := files[0].LineCount()

	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"File", "Type", "Lines", ""})
	for i, f := range files {
		if i >= limit {
			tbl.AppendFooter([]interface{}{fmt.Sprintf("%d more", len(files)-limit)})
			break
		}
		tbl.AppendRow([]interface{}{f.Name, f.Type, humanize.Comma(int64(f.LineCount())), dots(f.LineCount(), largest)})
	}
	tbl.Render()
	return nil
}

// dots draws n as a bar of at most dotWidth dots, relative to largest
func dots(n, largest int) string {
	if n <= 0 || largest <= 0 {
		return ""
	}
	width := n
	if largest > dotWidth {
		width = n * dotWidth / largest
	}
	if width < 1 {
		width = 1
	}
	return strings.Repeat("•", width)
}
