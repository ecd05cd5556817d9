package chat

// Phase 表示当前唯一允许的在途操作。聊天请求与历史刷新共用这一个许可。
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingChat
	PhaseAwaitingHistory
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingChat:
		return "awaiting_chat"
	case PhaseAwaitingHistory:
		return "awaiting_history"
	default:
		return "unknown"
	}
}
