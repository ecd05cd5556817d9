package modal

import "unicode"

// DefaultLineStep 是 j/k 每次滚动的行数。
const DefaultLineStep = 3

// Machine 把输入事件按模式解释为模式切换、滚动请求或动作。
type Machine struct {
	mode     Mode
	scroll   Scroll
	lineStep float64
}

// NewMachine 创建状态机，初始为 Insert 以便直接输入。
func NewMachine(lineStep float64) *Machine {
	if lineStep <= 0 {
		lineStep = DefaultLineStep
	}
	return &Machine{mode: ModeInsert, lineStep: lineStep}
}

func (m *Machine) Mode() Mode        { return m.mode }
func (m *Machine) Scroll() *Scroll   { return &m.scroll }
func (m *Machine) LineStep() float64 { return m.lineStep }

// Handle 处理一个事件。consumed 为 true 时事件不应再交给输入框。
// Normal 下所有按键都被消费；Insert 下只消费 Escape 与发送。
func (m *Machine) Handle(ev Event) (action Action, consumed bool) {
	if ev.Kind == EventInterrupt {
		return ActionQuit, true
	}
	if m.mode == ModeInsert {
		return m.handleInsert(ev)
	}
	return m.handleNormal(ev), true
}

func (m *Machine) handleInsert(ev Event) (Action, bool) {
	switch ev.Kind {
	case EventEscape:
		m.mode = ModeNormal
		return ActionNone, true
	case EventEnter:
		if ev.Mods.Shift || ev.Mods.Alt {
			return ActionNone, false
		}
		return ActionSend, true
	case EventSendButton:
		return ActionSend, true
	default:
		return ActionNone, false
	}
}

func (m *Machine) handleNormal(ev Event) Action {
	switch ev.Kind {
	case EventFocusInput:
		m.mode = ModeInsert
		return ActionNone
	case EventTab:
		if ev.Mods.Shift {
			return ActionPrevModel
		}
		return ActionNextModel
	case EventKey:
		return m.handleNormalKey(ev.Rune, ev.Mods)
	default:
		return ActionNone
	}
}

func (m *Machine) handleNormalKey(r rune, mods Modifiers) Action {
	if mods.Ctrl || mods.Alt || mods.Cmd {
		return ActionNone
	}
	shift := mods.Shift || unicode.IsUpper(r)
	plain := !shift

	s := &m.scroll
	switch unicode.ToLower(r) {
	case 'i':
		if plain {
			m.mode = ModeInsert
		}
	case 'r':
		if plain {
			return ActionRefresh
		}
	case 'j':
		if shift {
			s.Down(s.viewportHeight)
		} else {
			s.Down(m.lineStep)
		}
	case 'k':
		if shift {
			s.Up(s.viewportHeight)
		} else {
			s.Up(m.lineStep)
		}
	case 'g':
		if shift {
			s.Bottom()
		} else {
			s.Top()
		}
	case 't':
		if plain {
			return ActionToggleTheme
		}
	case 'y':
		if plain {
			return ActionCopy
		}
	case 'q':
		if plain {
			return ActionQuit
		}
	}
	return ActionNone
}
