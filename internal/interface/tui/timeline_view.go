package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/stats"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

const cutoffLayout = "Mon Jan 2, 2006 3:04 PM -07:00"

func (m Model) updateTimeline(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		return m.moveBy(-smallStep), nil
	case key.Matches(msg, m.keys.Right):
		return m.moveBy(smallStep), nil
	case key.Matches(msg, m.keys.JumpLeft):
		return m.moveBy(-largeStep), nil
	case key.Matches(msg, m.keys.JumpRight):
		return m.moveBy(largeStep), nil
	case key.Matches(msg, m.keys.Start):
		return m.setView(m.tl.AtPosition(timeline.PositionMin)), nil
	case key.Matches(msg, m.keys.End):
		return m.setView(m.tl.Full()), nil
	case key.Matches(msg, m.keys.PrevCommit):
		return m.stepCommit(-1), nil
	case key.Matches(msg, m.keys.NextCommit):
		return m.stepCommit(1), nil
	case key.Matches(msg, m.keys.Cutoff):
		return m.openPrompt(cutoffPrompt)
	case key.Matches(msg, m.keys.Filter):
		return m.openPrompt(filterPrompt)
	case key.Matches(msg, m.keys.Story):
		m.mode = storyView
		return m.refreshStory(), nil
	case key.Matches(msg, m.keys.Commits), key.Matches(msg, m.keys.Open):
		m.mode = commitsView
		return m, nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyLatestURL()
	}
	return m, nil
}

func (m Model) copyLatestURL() tea.Cmd {
	latest, ok := m.view.Latest()
	if !ok || m.renderer == nil {
		return nil
	}
	url := m.renderer.URL(latest)
	if url == "" {
		return func() tea.Msg {
			return errMsg{fmt.Errorf("no commit_url_template configured")}
		}
	}
	return copyToClipboard(url, "commit URL")
}

func (m Model) viewTimeline() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("locscope"))
	if m.origin != "" {
		b.WriteString("  " + originStyle.Render(m.origin))
	}
	b.WriteString("\n\n")

	if m.tl.Len() == 0 {
		b.WriteString("No commits. Import a loc.csv with 'locscope import' or pass --csv.\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	b.WriteString(renderSlider(m.tl, m.view, width-8))
	b.WriteString(fmt.Sprintf(" %3.0f%%\n", m.view.Position))

	header := fmt.Sprintf("%s  %s of %s commits",
		cutoffStyle.Render(m.view.Cutoff.Format(cutoffLayout)),
		humanize.Comma(int64(len(m.view.Commits))),
		humanize.Comma(int64(m.tl.Len())))
	b.WriteString(header + "\n")
	if m.view.Fallback {
		b.WriteString(fallbackStyle.Render("Before the first commit; showing it anyway") + "\n")
	}
	if !m.filters.Empty() {
		b.WriteString(labelStyle.Render("filter: ") + filterSummary(m.filters) + "\n")
	}
	b.WriteString("\n")

	summary := renderSummary(stats.Summarize(m.view.Lines, m.view.Commits))
	langs := renderLanguages(stats.Languages(m.view.Lines), 24)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, summary, " ", langs))
	b.WriteString("\n")

	used := lipgloss.Height(b.String()) + 3
	maxFiles := m.height - used
	if m.height <= 0 {
		maxFiles = 10
	}
	b.WriteString(renderFiles(stats.Files(m.view.Commits), maxFiles, width))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderSlider draws the track with a tick per commit and the knob at the
// view's position
func renderSlider(tl *timeline.Timeline, v timeline.View, width int) string {
	if width < 10 {
		width = 10
	}
	cells := make([]string, width)
	for i := range cells {
		cells[i] = excludedTickStyle.Render("─")
	}

	col := func(p float64) int {
		c := int(math.Round(p / timeline.PositionMax * float64(width-1)))
		if c < 0 {
			c = 0
		}
		if c >= width {
			c = width - 1
		}
		return c
	}

	scale := tl.Scale()
	included := len(v.Commits)
	for i, c := range tl.Commits() {
		if i < included {
			cells[col(scale.ToPosition(c.Datetime))] = includedTickStyle.Render("•")
		} else {
			cells[col(scale.ToPosition(c.Datetime))] = excludedTickStyle.Render("·")
		}
	}
	cells[col(v.Position)] = knobStyle.Render("◆")

	return strings.Join(cells, "")
}

func renderSummary(s stats.Summary) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Summary"))
	for _, r := range s.Rows() {
		b.WriteString(fmt.Sprintf("\n%s %s", labelStyle.Render(fmt.Sprintf("%-13s", r.Label)), r.Value))
	}
	return panelStyle.Render(b.String())
}

func renderLanguages(langs []stats.LanguageShare, barWidth int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render("Languages"))
	if len(langs) == 0 {
		b.WriteString("\n" + stats.Placeholder)
	}
	for _, l := range langs {
		filled := int(math.Round(l.Share * float64(barWidth)))
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		b.WriteString(fmt.Sprintf("\n%-6s %s %5.1f%%", l.Type, bar, l.Share*100))
	}
	return panelStyle.Render(b.String())
}

// renderFiles lists files largest first, each with a dot per line scaled to
// fit the width
func renderFiles(files []models.File, maxRows, width int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(fmt.Sprintf("Files (%d)", len(files))))
	if len(files) == 0 {
		return b.String()
	}
	if maxRows < 1 {
		maxRows = 1
	}

	nameWidth := 0
	for i, f := range files {
		if i >= maxRows {
			break
		}
		if n := len([]rune(f.Name)); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 40 {
		nameWidth = 40
	}

	barWidth := width - nameWidth - 12
	if barWidth < 5 {
		barWidth = 5
	}
	largest := files[0].LineCount()

	for i, f := range files {
		if i >= maxRows {
			b.WriteString("\n" + labelStyle.Render(fmt.Sprintf("… %d more", len(files)-maxRows)))
			break
		}
		n := f.LineCount()
		dots := n
		if largest > barWidth {
			dots = n * barWidth / largest
		}
		if dots < 1 {
			dots = 1
		}
		b.WriteString(fmt.Sprintf("\n%-*s %6s %s", nameWidth, truncate(f.Name, nameWidth),
			humanize.Comma(int64(n)), dotStyle.Render(strings.Repeat("•", dots))))
	}
	return b.String()
}

// truncate shortens s to maxLen runes with an ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen || maxLen < 2 {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
