package modal

// Mode 是编辑模式：Normal 用于导航与命令，Insert 用于输入文本。
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeInsert:
		return "INSERT"
	default:
		return "UNKNOWN"
	}
}

// Modifiers 是按键时按下的修饰键。
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Cmd   bool
}

// Any 报告是否按下了任意修饰键。
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Cmd
}

type EventKind int

const (
	EventKey EventKind = iota
	EventEscape
	EventEnter
	EventTab
	EventInterrupt
	EventFocusInput
	EventSendButton
	EventOther
)

// Event 是一帧内的离散输入事件。EventKey 时 Rune 为按下的字符。
type Event struct {
	Kind EventKind
	Rune rune
	Mods Modifiers
}

// Key 构造字符按键事件。
func Key(r rune, mods Modifiers) Event {
	return Event{Kind: EventKey, Rune: r, Mods: mods}
}

// Action 是状态机要求调用方执行的动作。
type Action int

const (
	ActionNone Action = iota
	ActionSend
	ActionRefresh
	ActionToggleTheme
	ActionNextModel
	ActionPrevModel
	ActionCopy
	ActionQuit
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSend:
		return "send"
	case ActionRefresh:
		return "refresh"
	case ActionToggleTheme:
		return "toggle_theme"
	case ActionNextModel:
		return "next_model"
	case ActionPrevModel:
		return "prev_model"
	case ActionCopy:
		return "copy"
	case ActionQuit:
		return "quit"
	default:
		return "unknown"
	}
}
