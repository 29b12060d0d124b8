package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the app uses. Each screen shows a subset in the
// help footer.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Camera  key.Binding
	Gallery key.Binding
	Shutter key.Binding
	Cancel  key.Binding
	Submit  key.Binding
	Retake  key.Binding
	Repick  key.Binding
	Add     key.Binding
	Remove  key.Binding
	Cook    key.Binding
	Back    key.Binding
	Again   key.Binding
	Over    key.Binding
	Scroll  key.Binding
	Enter   key.Binding
	Done    key.Binding
	Dismiss key.Binding
	Home    key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Camera: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "camera"),
		),
		Gallery: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload"),
		),
		Shutter: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "take photo"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "a"),
			key.WithHelp("enter", "analyze"),
		),
		Retake: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retake"),
		),
		Repick: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "other photo"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "i", "tab"),
			key.WithHelp("a", "add"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "remove"),
		),
		Cook: key.NewBinding(
			key.WithKeys("g", "ctrl+g"),
			key.WithHelp("g", "generate recipe"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b", "back to ingredients"),
		),
		Again: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "regenerate"),
		),
		Over: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start over"),
		),
		Scroll: key.NewBinding(
			key.WithKeys("up", "down", "pgup", "pgdown"),
			key.WithHelp("↑/↓", "scroll"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add ingredient"),
		),
		Done: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc", "done typing"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc"),
			key.WithHelp("enter", "dismiss"),
		),
		Home: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "home"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// bindings adapts a slice of bindings to help.KeyMap
type bindings []key.Binding

// ShortHelp returns keybindings to be shown in the mini help view
func (b bindings) ShortHelp() []key.Binding { return b }

// FullHelp returns keybindings for the expanded help view
func (b bindings) FullHelp() [][]key.Binding { return [][]key.Binding{b} }
