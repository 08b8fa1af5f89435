package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	Submit           key.Binding
	RefreshRateLimit key.Binding
	Reconnect        key.Binding
	ToggleLogs       key.Binding
	CycleTheme       key.Binding
	Quit             key.Binding

	// Result scrolling
	PageUp   key.Binding
	PageDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Analyze"),
		),
		RefreshRateLimit: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("^r", "Rate limit"),
		),
		Reconnect: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("^o", "Reconnect"),
		),
		ToggleLogs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^l", "Logs"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("^t", "Theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("^c", "Quit"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "Scroll down"),
		),
	}
}

// commandBindings are the bindings listed in the command bar, in order.
func (k keyMap) commandBindings() []key.Binding {
	return []key.Binding{
		k.Submit,
		k.RefreshRateLimit,
		k.Reconnect,
		k.ToggleLogs,
		k.CycleTheme,
		k.Quit,
	}
}
