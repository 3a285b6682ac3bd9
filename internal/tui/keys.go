package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Start     key.Binding
	Stop      key.Binding
	Focus     key.Binding
	Press     key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Layer     key.Binding
	Faster    key.Binding
	Slower    key.Binding
	PitchUp   key.Binding
	PitchDown key.Binding
	Answers   key.Binding
	Refresh   key.Binding
	Help      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Start:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "start")),
		Stop:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "stop")),
		Focus:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "edit profile/speed")),
		Press:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "press key")),
		Up:        key.NewBinding(key.WithKeys("up"), key.WithHelp("↑↓←→", "select key")),
		Down:      key.NewBinding(key.WithKeys("down")),
		Left:      key.NewBinding(key.WithKeys("left")),
		Right:     key.NewBinding(key.WithKeys("right")),
		Layer:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "123/ABC")),
		Faster:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup/pgdn", "speed")),
		Slower:    key.NewBinding(key.WithKeys("pgdown")),
		PitchUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("[/]", "pitch")),
		PitchDown: key.NewBinding(key.WithKeys("[")),
		Answers:   key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "show/hide answers")),
		Refresh:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		Help:      key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "help")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Stop, k.Focus, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Stop, k.Focus, k.Refresh},
		{k.Up, k.Press, k.Layer},
		{k.Faster, k.PitchUp, k.Answers},
		{k.Help, k.Quit},
	}
}

// setCapabilities disables bindings for components that are not wired.
func (k *keyMap) setCapabilities(keyboard, audio bool) {
	for _, b := range []*key.Binding{&k.Press, &k.Up, &k.Down, &k.Left, &k.Right, &k.Layer} {
		b.SetEnabled(keyboard)
	}
	k.PitchUp.SetEnabled(audio)
	k.PitchDown.SetEnabled(audio)
}
