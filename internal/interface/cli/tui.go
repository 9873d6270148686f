package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/interface/tui"
)

var tuiAt string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive timeline",
	Long: `Launch an interactive terminal UI: drag the cutoff with ←/→, watch the
summary, files and languages change, and step through the story.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiAt, "at", "", "Initial cutoff (default: latest commit)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	renderer, err := newRenderer()
	if err != nil {
		return err
	}

	view, err := resolveView(h.Timeline, tuiAt)
	if err != nil {
		return err
	}

	model := tui.New(h.Timeline, renderer, tui.Options{
		Origin: h.Origin,
		View:   view,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
