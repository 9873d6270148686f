package tui

func (m Model) viewHelp() string {
	help := `
locscope - Help
═══════════════

TIMELINE
────────
  ←/→, h/l     Move the cutoff by 1%
  H/L          Move the cutoff by 10%
  [/], p/n     Previous/next commit
  g/G          First/last commit
  t            Go to a time (2024-02-10, 3 days ago, 50%, start, end)
  /            Filter commits (author:, file:, after:, before:, text)
  c, enter     Commits at the cutoff
  s            Story: one step per commit
  y            Copy the newest commit's URL

COMMITS
───────
  ↑/↓, j/k     Navigate
  enter        Commit details
  y            Copy commit URL (or id)
  esc          Back to the timeline

STORY
─────
  ←/→          Previous/next step; the cutoff follows
  g/G          First/last step
  esc          Back to the timeline

  ?            Toggle this help
  q            Quit (or go back)

Press any key to return
`

	return helpStyle.Render(help)
}
