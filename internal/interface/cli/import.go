package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/db"
	"github.com/neilberkman/locscope/internal/core/importer"
)

var (
	importLabel string
	importForce bool
)

var importCmd = &cobra.Command{
	Use:   "import [loc.csv...]",
	Short: "Import loc.csv files into the database",
	Long: `Parse one or more loc.csv files and store each as a dataset.

Files already imported (same SHA-256) are skipped unless --force is given.
Without arguments the configured data_path is imported.

Examples:
  locscope import
  locscope import ./loc.csv
  locscope import site/loc.csv --label site`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importLabel, "label", "", "Dataset label (default: file name)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "Import even if the file was imported before")
}

func runImport(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.DataPath}
	}

	fmt.Printf("Database: %s\n\n", dbPath)

	database, err := db.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = database.Close()
	}()

	imp := importer.New(database, logger)
	progress := importer.NewProgressReporter(os.Stdout, len(paths))

	results, err := imp.ImportFiles(paths, importer.Options{Label: importLabel, Force: importForce}, progress)
	if err != nil {
		fmt.Println()
		return fmt.Errorf("import failed: %w", err)
	}

	for _, res := range results {
		if res.Skipped {
			fmt.Printf("  %s: already imported as dataset %d\n", res.Path, res.DatasetID)
			continue
		}
		fmt.Printf("  %s: dataset %d, %s rows, %s commits\n", res.Path, res.DatasetID,
			humanize.Comma(int64(res.Rows)), humanize.Comma(int64(res.Commits)))
	}

	return nil
}
