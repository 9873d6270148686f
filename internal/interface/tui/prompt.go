package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/locscope/internal/core/search"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

type promptKind int

const (
	cutoffPrompt promptKind = iota
	filterPrompt
)

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prevMode = m.mode
	m.mode = promptView
	m.prompt = kind
	m.status = ""

	m.input.Reset()
	switch kind {
	case cutoffPrompt:
		m.input.Prompt = "Go to: "
		m.input.Placeholder = "2024-02-10, 3 days ago, 50%, start, end"
	case filterPrompt:
		m.input.Prompt = "Filter: "
		m.input.Placeholder = "author:ada file:main.js after:2024-02-01 text"
		m.input.SetValue(filterQuery(m.filters))
	}
	m.input.Focus()
	return m, textinput.Blink
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return m.back(), nil

	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()

		switch m.prompt {
		case cutoffPrompt:
			if value == "" {
				return m.back(), nil
			}
			c, err := timeline.ParseCutoff(value, m.now())
			if err != nil {
				m.status = err.Error()
				m.input.Focus()
				return m, nil
			}
			m = m.back()
			return m.setView(m.tl.Resolve(c)), nil

		case filterPrompt:
			m.filters = search.ParseQuery(value, m.now())
			m = m.back()
			m = m.setView(m.view)
			if m.mode == timelineView && !m.filters.Empty() {
				m.mode = commitsView
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) viewPrompt() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("locscope") + "\n\n")
	b.WriteString(m.input.View() + "\n\n")
	if m.status != "" {
		b.WriteString(fallbackStyle.Render(m.status) + "\n\n")
	}
	b.WriteString(helpStyle.Render("enter apply • esc cancel"))
	return b.String()
}

// filterQuery turns filters back into the text that produces them
func filterQuery(f search.Filters) string {
	var parts []string
	if f.Author != "" {
		parts = append(parts, "author:"+f.Author)
	}
	if f.File != "" {
		parts = append(parts, "file:"+f.File)
	}
	if f.HasAfter {
		parts = append(parts, "after:"+f.AfterDate.Format("2006-01-02"))
	}
	if f.HasBefore {
		parts = append(parts, "before:"+f.BeforeDate.Format("2006-01-02"))
	}
	if f.Query != "" {
		parts = append(parts, f.Query)
	}
	return strings.Join(parts, " ")
}

// filterSummary describes active filters for the header
func filterSummary(f search.Filters) string {
	s := filterQuery(f)
	if s == "" {
		return "none"
	}
	return fmt.Sprintf("%s (/ to change)", s)
}
