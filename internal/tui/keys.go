package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Scale  key.Binding
	Add    key.Binding
	Delete key.Binding
	Grab   key.Binding
	Submit key.Binding
	Help   key.Binding
	Quit   key.Binding

	// Add box.
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "slider -")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "slider +")),
		Scale:  key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "scale")),
		Add:    key.NewBinding(key.WithKeys("a", "+"), key.WithHelp("a", "add item")),
		Delete: key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		Grab:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "grab/drop")),
		Submit: key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "continue")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),

		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Grab, k.Submit, k.Help}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Grab, k.Cancel},
		{k.Left, k.Right, k.Scale},
		{k.Add, k.Delete, k.Submit, k.Quit},
	}
}
