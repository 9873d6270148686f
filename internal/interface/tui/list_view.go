package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/stats"
)

type commitListItem struct {
	commit models.Commit
}

func (i commitListItem) FilterValue() string {
	return i.commit.ID + " " + i.commit.Author
}

func (i commitListItem) Title() string {
	return fmt.Sprintf("%s  %s", narrative.ShortID(i.commit.ID), i.commit.Author)
}

func (i commitListItem) Description() string {
	return fmt.Sprintf("%s | %s lines | %d files | %s",
		i.commit.Datetime.Format("2006-01-02 15:04 -07:00"),
		humanize.Comma(int64(i.commit.TotalLines)),
		stats.FilesTouched(i.commit),
		stats.DayPeriod(i.commit.Datetime))
}

type commitDelegate struct {
	list.DefaultDelegate
}

func (d commitDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(commitListItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	title := c.Title()
	desc := c.Description()
	if index == m.Index() {
		title = selectedItemStyle.Render(title)
		desc = selectedItemStyle.Faint(true).Render(desc)
	} else {
		title = itemStyle.Render(title)
		desc = itemStyle.Render(desc)
	}

	_, _ = fmt.Fprintf(w, "%s\n%s", title, desc)
}

func newCommitList(width, height int) list.Model {
	delegate := commitDelegate{DefaultDelegate: list.NewDefaultDelegate()}

	l := list.New(nil, delegate, width, height)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false) // / opens our own filter prompt
	return l
}

// commitItems lists commits newest first
func commitItems(commits []models.Commit) []list.Item {
	items := make([]list.Item, 0, len(commits))
	for i := len(commits) - 1; i >= 0; i-- {
		items = append(items, commitListItem{commit: commits[i]})
	}
	return items
}

func (m Model) selectedCommit() (models.Commit, bool) {
	if selected, ok := m.list.SelectedItem().(commitListItem); ok {
		return selected.commit, true
	}
	return models.Commit{}, false
}

func (m Model) updateCommits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m.back(), nil

	case key.Matches(msg, m.keys.Open):
		if c, ok := m.selectedCommit(); ok {
			m.detail = &c
			m.mode = detailView
			return m.refreshDetail(), nil
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		return m.openPrompt(filterPrompt)

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCommit()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// copyCommit copies the selected commit's URL, or its id when no URL
// template is configured
func (m Model) copyCommit() tea.Cmd {
	c, ok := m.selectedCommit()
	if m.mode == detailView && m.detail != nil {
		c, ok = *m.detail, true
	}
	if !ok {
		return nil
	}
	if m.renderer != nil {
		if url := m.renderer.URL(c); url != "" {
			return copyToClipboard(url, "commit URL")
		}
	}
	return copyToClipboard(c.ID, "commit id")
}

func (m Model) viewCommits() string {
	header := titleStyle.Render(fmt.Sprintf("Commits at %s", m.view.Cutoff.Format(cutoffLayout)))
	if !m.filters.Empty() {
		header += "  " + labelStyle.Render("filter: "+filterSummary(m.filters))
	}

	footer := helpStyle.Render("↑/↓ navigate • enter details • y copy url • / filter • esc back • q quit")
	if m.status != "" {
		footer = statusStyle.Render(m.status) + "\n" + footer
	}

	if len(m.list.Items()) == 0 {
		return header + "\n\nNo commits match.\n\n" + footer
	}
	return header + "\n" + m.list.View() + "\n" + footer
}
