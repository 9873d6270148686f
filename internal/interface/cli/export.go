package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/stats"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

var (
	exportAt     string
	exportLines  bool
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the view at a cutoff as JSON",
	Long: `Export the commits, summary and breakdowns visible at the cutoff as JSON.

Examples:
  locscope export
  locscope export --at 2024-02-10 --lines -o view.json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportAt, "at", "", "Cutoff: date, time, pos:NN, NN%, or natural language")
	exportCmd.Flags().BoolVar(&exportLines, "lines", false, "Include every line change")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: stdout)")
}

type exportFile struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Lines int    `json:"lines"`
}

type exportView struct {
	Cutoff    time.Time             `json:"cutoff"`
	Position  float64               `json:"position"`
	Fallback  bool                  `json:"fallback"`
	Total     int                   `json:"totalCommits"`
	Summary   stats.Summary         `json:"summary"`
	Languages []stats.LanguageShare `json:"languages"`
	Files     []exportFile          `json:"files"`
	Commits   []models.Commit       `json:"commits"`
	Lines     []models.LineChange   `json:"lines,omitempty"`
}

func buildExport(tl *timeline.Timeline, view timeline.View, withLines bool) exportView {
	out := exportView{
		Cutoff:    view.Cutoff,
		Position:  view.Position,
		Fallback:  view.Fallback,
		Total:     tl.Len(),
		Summary:   stats.Summarize(view.Lines, view.Commits),
		Languages: stats.Languages(view.Lines),
		Files:     []exportFile{},
		Commits:   view.Commits,
	}
	for _, f := range stats.Files(view.Commits) {
		out.Files = append(out.Files, exportFile{Name: f.Name, Type: f.Type, Lines: f.LineCount()})
	}
	if withLines {
		out.Lines = view.Lines
	}
	return out
}

func runExport(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	view, err := resolveView(h.Timeline, exportAt)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(buildExport(h.Timeline, view, exportLines), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode view: %w", err)
	}

	if exportOutput == "" {
		fmt.Println(string(data))
		return nil
	}

	outputPath := exportOutput
	if !filepath.IsAbs(outputPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		outputPath = filepath.Join(cwd, outputPath)
	}

	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d commits to: %s\n", len(view.Commits), outputPath)
	return nil
}
