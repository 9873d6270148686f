package cli

import (
	"fmt"

	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/neilberkman/locscope/internal/core/narrative"
)

var (
	storyLimit int
	storyWidth int
)

var storyCmd = &cobra.Command{
	Use:   "story",
	Short: "Tell the history one commit at a time",
	Long: `Print one narrative step per commit, oldest first.

The wording comes from ~/.config/locscope/step_template.txt when present
(mustache; fields: id, short_id, url, author, datetime, first, ordinal,
total_lines, files_touched, since_previous).`,
	RunE: runStory,
}

func init() {
	rootCmd.AddCommand(storyCmd)
	storyCmd.Flags().IntVar(&storyLimit, "limit", 0, "Only the first N steps (default: all)")
	storyCmd.Flags().IntVar(&storyWidth, "width", 80, "Wrap text at this width")
}

func runStory(cmd *cobra.Command, args []string) error {
	h, err := openHistory()
	if err != nil {
		return err
	}
	defer h.Close()

	renderer, err := newRenderer()
	if err != nil {
		return err
	}

	commits := h.Timeline.Commits()
	steps, err := renderer.Steps(commits)
	if err != nil {
		return err
	}

	if storyLimit > 0 && len(steps) > storyLimit {
		steps = steps[:storyLimit]
	}

	for _, s := range steps {
		fmt.Printf("%d. %s\n", s.Index+1, narrative.ShortID(s.Commit.ID))
		fmt.Println(wordwrap.String(s.Text, storyWidth))
		fmt.Println()
	}
	return nil
}
