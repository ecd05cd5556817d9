package tui

import (
	"fmt"
	"strings"
	"time"

	"mdchat/internal/chat"
	"mdchat/internal/modal"
	"mdchat/internal/tui/render"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// busyLabel 返回忙碌阶段的文案，带已等待秒数；空闲时返回空串。
func busyLabel(phase chat.Phase, since, now time.Time) string {
	var header string
	switch phase {
	case chat.PhaseAwaitingChat:
		header = "Waiting for reply"
	case chat.PhaseAwaitingHistory:
		header = "Loading history"
	default:
		return ""
	}
	if since.IsZero() || now.Before(since) {
		return header
	}
	return fmt.Sprintf("%s (%ds)", header, int(now.Sub(since).Seconds()))
}

func modeBadge(mode modal.Mode, theme render.Theme) string {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if mode == modal.ModeNormal {
		style = style.Background(theme.Accent).Foreground(lipgloss.Color("#FFFFFF"))
	} else {
		style = style.Background(theme.UserLabel).Foreground(lipgloss.Color("#FFFFFF"))
	}
	return style.Render(mode.String())
}

// statusText 拼接状态行的纯文本部分并按宽度截断。
func statusText(model, busy, notice string, width int) string {
	parts := []string{"model: " + model}
	if busy != "" {
		parts = append(parts, busy)
	}
	if notice != "" {
		parts = append(parts, notice)
	}
	text := strings.Join(parts, " • ")
	if width <= 0 {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}
