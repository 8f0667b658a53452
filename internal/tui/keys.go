package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left, Right, Up, Down                 key.Binding
	MoveLeft, MoveRight, MoveUp, MoveDown key.Binding
	Grab                                  key.Binding
	Drop                                  key.Binding
	Cancel                                key.Binding
	Delete                                key.Binding
	Confirm                               key.Binding
	Deny                                  key.Binding
	Quit                                  key.Binding
	ForceQuit                             key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "column")),
		Right:     key.NewBinding(key.WithKeys("l", "right")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "card")),
		Down:      key.NewBinding(key.WithKeys("j", "down")),
		MoveLeft:  key.NewBinding(key.WithKeys("H", "shift+left"), key.WithHelp("H/L", "move across")),
		MoveRight: key.NewBinding(key.WithKeys("L", "shift+right")),
		MoveUp:    key.NewBinding(key.WithKeys("K", "shift+up"), key.WithHelp("J/K", "reorder")),
		MoveDown:  key.NewBinding(key.WithKeys("J", "shift+down")),
		Grab:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pick up")),
		Drop:      key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Delete:    key.NewBinding(key.WithKeys("d", "D"), key.WithHelp("d", "delete")),
		Confirm:   key.NewBinding(key.WithKeys("y", "Y")),
		Deny:      key.NewBinding(key.WithKeys("n", "N", "esc", "q")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// boardHelp lists the bindings shown in the status bar while browsing.
func (k keyMap) boardHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.Grab, k.MoveLeft, k.MoveUp, k.Delete, k.Quit}
}

// dragHelp lists the bindings shown while a card is held.
func (k keyMap) dragHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.Drop, k.Cancel}
}
