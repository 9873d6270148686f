package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/neilberkman/locscope/internal/core/models"
	"github.com/neilberkman/locscope/internal/core/narrative"
	"github.com/neilberkman/locscope/internal/core/search"
	"github.com/neilberkman/locscope/internal/core/timeline"
)

type viewMode int

const (
	timelineView viewMode = iota
	commitsView
	detailView
	storyView
	promptView
	helpView
)

// Slider steps, in position units
const (
	smallStep = 1.0
	largeStep = 10.0
)

// Options configure a new Model
type Options struct {
	Origin string        // where the data came from, shown in the header
	View   timeline.View // initial view; zero means the latest commit
}

// Model is the interactive timeline. Every cutoff change replaces view with
// a freshly derived timeline.View.
type Model struct {
	tl       *timeline.Timeline
	renderer *narrative.Renderer
	origin   string

	mode     viewMode
	prevMode viewMode // where esc goes from help and prompts

	view    timeline.View
	filters search.Filters

	keys     keyMap
	help     help.Model
	list     list.Model
	viewport viewport.Model
	input    textinput.Model
	prompt   promptKind

	steps  []narrative.Step
	step   int
	detail *models.Commit

	status string
	width  int
	height int
	err    error

	now func() time.Time
}

// New builds the model for tl. renderer renders story steps and commit URLs.
func New(tl *timeline.Timeline, renderer *narrative.Renderer, opts Options) Model {
	m := Model{
		tl:       tl,
		renderer: renderer,
		origin:   opts.Origin,
		mode:     timelineView,
		keys:     defaultKeyMap(),
		help:     help.New(),
		list:     newCommitList(80, 20),
		viewport: viewport.New(80, 20),
		input:    textinput.New(),
		now:      time.Now,
	}

	if renderer != nil {
		steps, err := renderer.Steps(tl.Commits())
		if err != nil {
			m.err = err
		}
		m.steps = steps
	}

	v := opts.View
	if v.Commits == nil && v.Cutoff.IsZero() {
		v = tl.Full()
	}
	return m.setView(v)
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Current returns the current filtered state
func (m Model) Current() timeline.View {
	return m.view
}

// setView replaces the current view and refreshes everything derived from it
func (m Model) setView(v timeline.View) Model {
	m.view = v
	m.list.SetItems(commitItems(search.Commits(v.Commits, m.filters)))
	if latest, ok := v.Latest(); ok {
		for i, s := range m.steps {
			if s.Commit.ID == latest.ID {
				m.step = i
				break
			}
		}
	}
	if m.mode == storyView {
		m = m.refreshStory()
	}
	return m
}

// moveBy shifts the slider by delta position units
func (m Model) moveBy(delta float64) Model {
	return m.setView(m.tl.AtPosition(m.view.Position + delta))
}

// stepCommit moves the cutoff to the previous (delta < 0) or next commit
// with a different datetime from the newest one in the view
func (m Model) stepCommit(delta int) Model {
	latest, ok := m.view.Latest()
	if !ok {
		return m
	}
	commits := m.tl.Commits()
	if delta < 0 {
		for i := len(commits) - 1; i >= 0; i-- {
			if commits[i].Datetime.Before(latest.Datetime) {
				return m.setView(m.tl.AtCommit(commits[i]))
			}
		}
		return m
	}
	for _, c := range commits {
		if c.Datetime.After(latest.Datetime) {
			return m.setView(m.tl.AtCommit(c))
		}
	}
	return m
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-3)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.input.Width = msg.Width - 20
		switch m.mode {
		case storyView:
			m = m.refreshStory()
		case detailView:
			m = m.refreshDetail()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		// Prompts own the keyboard, including q
		if m.mode == promptView {
			return m.updatePrompt(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.mode == timelineView {
				return m, tea.Quit
			}
			return m.back(), nil

		case key.Matches(msg, m.keys.Help):
			if m.mode == helpView {
				return m.back(), nil
			}
			m.prevMode = m.mode
			m.mode = helpView
			return m, nil
		}

		switch m.mode {
		case timelineView:
			return m.updateTimeline(msg)
		case commitsView:
			return m.updateCommits(msg)
		case detailView:
			return m.updateDetail(msg)
		case storyView:
			return m.updateStory(msg)
		case helpView:
			return m.back(), nil
		}

	case tea.MouseMsg:
		switch m.mode {
		case storyView, detailView:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case copiedMsg:
		m.status = "✓ Copied " + msg.what
		return m, clearStatusAfter(2 * time.Second)

	case clearStatusMsg:
		m.status = ""
		return m, nil

	case errMsg:
		m.status = "Error: " + msg.err.Error()
		return m, clearStatusAfter(4 * time.Second)
	}

	return m, nil
}

// back leaves the current mode
func (m Model) back() Model {
	switch m.mode {
	case helpView, promptView:
		m.mode = m.prevMode
	case detailView:
		m.mode = commitsView
	default:
		m.mode = timelineView
	}
	return m
}

func (m Model) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit"
	}

	switch m.mode {
	case commitsView:
		return m.viewCommits()
	case detailView:
		return m.viewDetail()
	case storyView:
		return m.viewStory()
	case promptView:
		return m.viewPrompt()
	case helpView:
		return m.viewHelp()
	}
	return m.viewTimeline()
}
