package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/neilberkman/locscope/internal/core/narrative"
)

// refreshStory re-renders the steps with the current one highlighted and
// scrolls it into view
func (m Model) refreshStory() Model {
	width := m.viewport.Width - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	offset := 0
	for i, s := range m.steps {
		block := renderStep(s, width)
		if i == m.step {
			offset = lipgloss.Height(b.String()) - 1
			block = currentStepStyle.Render(block)
		} else {
			block = stepStyle.Render(block)
		}
		b.WriteString(block)
		b.WriteString("\n\n")
	}

	m.viewport.SetContent(b.String())
	if offset < 0 {
		offset = 0
	}
	m.viewport.SetYOffset(offset)
	return m
}

func renderStep(s narrative.Step, width int) string {
	title := fmt.Sprintf("%d. %s", s.Index+1, narrative.ShortID(s.Commit.ID))
	return panelTitleStyle.Render(title) + "\n" + wordwrap.String(s.Text, width)
}

// goToStep moves the cutoff to step i's commit
func (m Model) goToStep(i int) Model {
	if len(m.steps) == 0 {
		return m
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.steps) {
		i = len(m.steps) - 1
	}
	m = m.setView(m.tl.AtCommit(m.steps[i].Commit))
	// Commits sharing a datetime share a view; keep the step that was asked for
	m.step = i
	if m.mode == storyView {
		m = m.refreshStory()
	}
	return m
}

func (m Model) updateStory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Story):
		return m.back(), nil
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.PrevCommit):
		return m.goToStep(m.step - 1), nil
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.NextCommit):
		return m.goToStep(m.step + 1), nil
	case key.Matches(msg, m.keys.Start):
		return m.goToStep(0), nil
	case key.Matches(msg, m.keys.End):
		return m.goToStep(len(m.steps) - 1), nil
	case key.Matches(msg, m.keys.Copy):
		if m.step < len(m.steps) && m.steps[m.step].URL != "" {
			return m, copyToClipboard(m.steps[m.step].URL, "commit URL")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) viewStory() string {
	header := titleStyle.Render("Story")
	if len(m.steps) > 0 {
		header += "  " + labelStyle.Render(fmt.Sprintf("step %d of %d • cutoff %s",
			m.step+1, len(m.steps), m.view.Cutoff.Format(cutoffLayout)))
	}
	if len(m.steps) == 0 {
		return header + "\n\nNothing to tell yet.\n\n" + helpStyle.Render("esc back • q quit")
	}

	footer := helpStyle.Render("←/→ previous/next step • g/G first/last • y copy url • esc back • q quit")
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}
	return header + "\n" + m.viewport.View() + "\n" + footer
}
