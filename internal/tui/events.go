package tui

import (
	"mdchat/internal/modal"

	tea "github.com/charmbracelet/bubbletea"
)

// keyEvent 把终端按键转换成状态机事件。终端无法区分 shift+enter，
// 换行只能靠 alt+enter 或 ctrl+j。
func keyEvent(msg tea.KeyMsg) modal.Event {
	mods := modal.Modifiers{Alt: msg.Alt}
	switch msg.Type {
	case tea.KeyCtrlC:
		return modal.Event{Kind: modal.EventInterrupt}
	case tea.KeyEsc:
		return modal.Event{Kind: modal.EventEscape, Mods: mods}
	case tea.KeyEnter:
		return modal.Event{Kind: modal.EventEnter, Mods: mods}
	case tea.KeyTab:
		return modal.Event{Kind: modal.EventTab, Mods: mods}
	case tea.KeyShiftTab:
		mods.Shift = true
		return modal.Event{Kind: modal.EventTab, Mods: mods}
	case tea.KeySpace:
		return modal.Key(' ', mods)
	case tea.KeyRunes:
		if msg.Paste || len(msg.Runes) != 1 {
			return modal.Event{Kind: modal.EventOther, Mods: mods}
		}
		return modal.Key(msg.Runes[0], mods)
	}
	return modal.Event{Kind: modal.EventOther, Mods: mods}
}
