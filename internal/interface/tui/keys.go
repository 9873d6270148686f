package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left,
	Right,
	JumpLeft,
	JumpRight,
	Start,
	End,
	PrevCommit,
	NextCommit,
	Cutoff,
	Filter,
	Story,
	Commits,
	Open,
	Copy,
	Help,
	Back,
	Quit key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.PrevCommit, k.NextCommit, k.Cutoff, k.Story, k.Commits, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.JumpLeft, k.JumpRight, k.Start, k.End},
		{k.PrevCommit, k.NextCommit, k.Cutoff, k.Filter},
		{k.Story, k.Commits, k.Open, k.Copy},
		{k.Help, k.Back, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "earlier"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "later"),
		),
		JumpLeft: key.NewBinding(
			key.WithKeys("shift+left", "H"),
			key.WithHelp("H", "10% earlier"),
		),
		JumpRight: key.NewBinding(
			key.WithKeys("shift+right", "L"),
			key.WithHelp("L", "10% later"),
		),
		Start: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first commit"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "last commit"),
		),
		PrevCommit: key.NewBinding(
			key.WithKeys("[", "p"),
			key.WithHelp("[", "prev commit"),
		),
		NextCommit: key.NewBinding(
			key.WithKeys("]", "n"),
			key.WithHelp("]", "next commit"),
		),
		Cutoff: key.NewBinding(
			key.WithKeys("t", ":"),
			key.WithHelp("t", "go to time"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter commits"),
		),
		Story: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "story"),
		),
		Commits: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "commits"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy commit url"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
