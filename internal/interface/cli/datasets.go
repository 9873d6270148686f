package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/db"
)

var datasetsDelete int64

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List imported datasets and database statistics",
	Long: `List every imported loc.csv, newest first, followed by totals for the
whole database. Commands use the newest dataset unless --dataset is given.

Examples:
  locscope datasets
  locscope datasets --delete 3`,
	RunE: runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	datasetsCmd.Flags().Int64Var(&datasetsDelete, "delete", 0, "Delete the dataset with this id")
}

func runDatasets(cmd *cobra.Command, args []string) error {
	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	if datasetsDelete > 0 {
		if err := database.DeleteDataset(datasetsDelete); err != nil {
			return err
		}
		fmt.Printf("Deleted dataset %d\n\n", datasetsDelete)
	}

	datasets, err := database.ListDatasets()
	if err != nil {
		return fmt.Errorf("failed to list datasets: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets found. Run 'locscope import loc.csv' to import one.")
		return nil
	}

	tbl := newTable(os.Stdout)
	tbl.AppendHeader([]interface{}{"ID", "Label", "Rows", "Commits", "History", "Size", "Imported"})
	for _, ds := range datasets {
		span := ""
		if !ds.FirstCommitAt.IsZero() {
			span = ds.FirstCommitAt.Format("2006-01-02") + " … " + ds.LastCommitAt.Format("2006-01-02")
		}
		tbl.AppendRow([]interface{}{
			ds.ID,
			truncate(ds.Label, 30),
			humanize.Comma(int64(ds.RowCount)),
			humanize.Comma(int64(ds.CommitCount)),
			span,
			humanize.Bytes(uint64(ds.FileSize)),
			humanize.Time(ds.ImportedAt),
		})
	}
	tbl.Render()

	st, err := database.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println()
	fmt.Println("Database Statistics")
	fmt.Println("===================")
	fmt.Printf("Datasets:    %s\n", humanize.Comma(int64(st.TotalDatasets)))
	fmt.Printf("Lines:       %s\n", humanize.Comma(int64(st.TotalLines)))
	fmt.Printf("Commits:     %s\n", humanize.Comma(int64(st.TotalCommits)))
	fmt.Printf("Files:       %s\n", humanize.Comma(int64(st.TotalFiles)))
	if !st.OldestCommit.IsZero() {
		fmt.Printf("History:     %s to %s\n", st.OldestCommit.Format("Jan 2, 2006"), st.NewestCommit.Format("Jan 2, 2006"))
	}
	if st.TopAuthor != "" {
		fmt.Printf("Top author:  %s (%s lines)\n", st.TopAuthor, humanize.Comma(int64(st.TopAuthorLines)))
	}
	if info, err := os.Stat(dbPath); err == nil {
		fmt.Printf("Size:        %s\n", humanize.Bytes(uint64(info.Size())))
	}

	return nil
}
