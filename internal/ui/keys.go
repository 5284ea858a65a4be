package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	}
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Quit, k.Help} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit, k.Help}} }
