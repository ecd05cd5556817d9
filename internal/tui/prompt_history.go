package tui

import "strings"

// inputHistory 记录已发送的输入，插入模式下在输入框首行/末行用上下箭头回溯。
// pos == len(sent) 表示不在回溯中。
type inputHistory struct {
	sent  []string
	pos   int
	draft string
	limit int
}

func newInputHistory(limit int) *inputHistory {
	if limit <= 0 {
		limit = 100
	}
	return &inputHistory{limit: limit}
}

// Record 追加一条输入；与上一条相同则不重复记录。
func (h *inputHistory) Record(text string) {
	defer h.reset()
	if strings.TrimSpace(text) == "" {
		return
	}
	if n := len(h.sent); n > 0 && h.sent[n-1] == text {
		return
	}
	h.sent = append(h.sent, text)
	if over := len(h.sent) - h.limit; over > 0 {
		h.sent = append([]string(nil), h.sent[over:]...)
	}
}

func (h *inputHistory) reset() {
	h.pos = len(h.sent)
	h.draft = ""
}

// Older 返回更早的一条；第一次回溯时保存当前草稿。
func (h *inputHistory) Older(current string) (string, bool) {
	if h.pos == 0 || len(h.sent) == 0 {
		return "", false
	}
	if h.pos == len(h.sent) {
		h.draft = current
	}
	h.pos--
	return h.sent[h.pos], true
}

// Newer 返回更新的一条；越过最新一条时还原草稿。
func (h *inputHistory) Newer() (string, bool) {
	if h.pos >= len(h.sent) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.sent) {
		draft := h.draft
		h.draft = ""
		return draft, true
	}
	return h.sent[h.pos], true
}
