package tui

import (
	"mdchat/internal/modal"

	"github.com/charmbracelet/bubbles/key"
)

// keyMap 只用于帮助行展示；按键语义由 modal.Machine 决定。
type keyMap struct {
	mode modal.Mode

	Send      key.Binding
	Newline   key.Binding
	Normal    key.Binding
	Insert    key.Binding
	Scroll    key.Binding
	Page      key.Binding
	Ends      key.Binding
	Refresh   key.Binding
	Theme     key.Binding
	Model     key.Binding
	Copy      key.Binding
	Quit      key.Binding
	Interrupt key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:   key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"), key.WithHelp("alt+enter", "newline")),
		Normal:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "normal mode")),
		Insert:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "insert")),
		Scroll:    key.NewBinding(key.WithKeys("j", "k"), key.WithHelp("j/k", "scroll")),
		Page:      key.NewBinding(key.WithKeys("J", "K"), key.WithHelp("J/K", "page")),
		Ends:      key.NewBinding(key.WithKeys("g", "G"), key.WithHelp("g/G", "top/bottom")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload history")),
		Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Model:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "model")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy reply")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp 按当前模式返回提示。
func (k keyMap) ShortHelp() []key.Binding {
	if k.mode == modal.ModeInsert {
		return []key.Binding{k.Send, k.Newline, k.Normal, k.Interrupt}
	}
	return []key.Binding{k.Insert, k.Scroll, k.Page, k.Ends, k.Refresh, k.Theme, k.Model, k.Copy, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Newline, k.Normal},
		{k.Insert, k.Scroll, k.Page, k.Ends},
		{k.Refresh, k.Theme, k.Model, k.Copy, k.Quit},
	}
}
