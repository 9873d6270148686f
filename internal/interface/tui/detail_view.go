package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/stats"
)

func (m Model) refreshDetail() Model {
	if m.detail == nil {
		return m
	}
	m.viewport.SetContent(m.renderDetail(*m.detail))
	m.viewport.GotoTop()
	return m
}

// renderDetail is the commit tooltip: who, when, how much, and where
func (m Model) renderDetail(c models.Commit) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-10s", label)) + value + "\n")
	}
	row("Commit", c.ID)
	row("Author", c.Author)
	row("Date", c.Datetime.Format("Monday, January 2, 2006"))
	row("Time", fmt.Sprintf("%s (%s, %s)", c.Datetime.Format("3:04 PM -07:00"), stats.DayPeriod(c.Datetime), humanize.Time(c.Datetime)))
	row("Lines", fmt.Sprintf("%s edited in %d files", humanize.Comma(int64(c.TotalLines)), stats.FilesTouched(c)))
	if m.renderer != nil {
		if url := m.renderer.URL(c); url != "" {
			row("URL", url)
		}
	}
	b.WriteString("\n")

	files := stats.Files([]models.Commit{c})
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}
	b.WriteString(renderFiles(files, len(files), width))
	b.WriteString("\n\n")

	b.WriteString(panelTitleStyle.Render("Lines") + "\n")
	c.EachLine(func(l models.LineChange) {
		b.WriteString(fmt.Sprintf("  %s:%d  %s  depth %d  length %d\n", l.File, l.Line, l.Type, l.Depth, l.Length))
	})
	return b.String()
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back(), nil
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCommit()
	case key.Matches(msg, m.keys.Start):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.End):
		m.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		// Move the cutoff to this commit and show the timeline
		if m.detail != nil {
			m.mode = timelineView
			return m.setView(m.tl.AtCommit(*m.detail)), nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewDetail() string {
	header := titleStyle.Render("Commit")
	footer := helpStyle.Render("j/k scroll • enter go to this commit • y copy url • esc back • q quit")
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}
