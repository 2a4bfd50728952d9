package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keySet is a flat help.KeyMap built for the current context
type keySet []key.Binding

// ShortHelp returns keybindings to be shown in the mini help view
func (k keySet) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(k))
	for _, b := range k {
		if b.Enabled() {
			out = append(out, b)
		}
	}
	return out
}

// FullHelp returns keybindings for the expanded help view, four per column
func (k keySet) FullHelp() [][]key.Binding {
	short := k.ShortHelp()
	var cols [][]key.Binding
	for len(short) > 0 {
		n := min(4, len(short))
		cols = append(cols, short[:n])
		short = short[n:]
	}
	return cols
}

// keyMap holds every binding the app uses. Screens pick the ones that apply.
type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Back  key.Binding
	Help  key.Binding
	Quit  key.Binding

	// Lease screen
	StartReturn key.Binding
	CancelFlow  key.Binding
	ToggleKeys  key.Binding
	ToggleItems key.Binding
	Finalize    key.Binding
	Accept      key.Binding
	Unschedule  key.Binding
	BillReady   key.Binding
	Documents   key.Binding
	Pay         key.Binding
	Ask         key.Binding
	Presets     key.Binding

	// Modals
	Yes      key.Binding
	No       key.Binding
	Score    key.Binding
	Feedback key.Binding
	Submit   key.Binding
	Dismiss  key.Binding

	// Assistant
	Send     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		StartReturn: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "start return"),
		),
		CancelFlow: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel return"),
		),
		ToggleKeys: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "keys in console"),
		),
		ToggleItems: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "personal items"),
		),
		Finalize: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finalize return"),
		),
		Accept: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "accept selection"),
		),
		Unschedule: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unschedule"),
		),
		BillReady: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bill ready"),
		),
		Documents: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "documents"),
		),
		Pay: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pay final bill"),
		),
		Ask: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "ask assistant"),
		),
		Presets: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "debug: Pre-60/T-60/T-0/T+1"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "authorize"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
		Score: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "score"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "feedback"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
	}
}
