package render

import (
	"strings"

	"mdchat/internal/agent"

	"github.com/charmbracelet/lipgloss"
)

// Transcript 把消息渲染成视口行，并按消息缓存渲染结果。
// 宽度或主题变化时整体失效；历史替换后按内容比对逐条失效。
type Transcript struct {
	width int
	theme Theme
	md    *Markdown
	cache []cachedBlock
}

type cachedBlock struct {
	msg   agent.Message
	lines []string
}

func NewTranscript(theme Theme) *Transcript {
	return &Transcript{theme: theme, md: NewMarkdown(theme.GlamourStyle())}
}

func (t *Transcript) SetWidth(width int) {
	if t.width == width {
		return
	}
	t.width = width
	t.cache = nil
}

func (t *Transcript) SetTheme(theme Theme) {
	t.theme = theme
	t.md.SetStyle(theme.GlamourStyle())
	t.cache = nil
}

func (t *Transcript) Theme() Theme { return t.theme }

// Lines 渲染全部消息，消息之间空一行。
func (t *Transcript) Lines(msgs []agent.Message) []string {
	if len(t.cache) > len(msgs) {
		t.cache = t.cache[:len(msgs)]
	}
	var out []string
	for i, msg := range msgs {
		if i < len(t.cache) && t.cache[i].msg == msg {
			out = append(out, t.cache[i].lines...)
			continue
		}
		lines := t.renderMessage(msg)
		if i < len(t.cache) {
			t.cache[i] = cachedBlock{msg: msg, lines: lines}
			t.cache = t.cache[:i+1]
		} else {
			t.cache = append(t.cache, cachedBlock{msg: msg, lines: lines})
		}
		out = append(out, lines...)
	}
	return out
}

func (t *Transcript) renderMessage(msg agent.Message) []string {
	width := t.width
	if width <= 0 {
		width = 80
	}
	bodyWidth := width - 2
	if bodyWidth < 1 {
		bodyWidth = width
	}
	indent := lipgloss.NewStyle().PaddingLeft(2)

	var label string
	var body []string
	switch msg.Role {
	case agent.RoleUser:
		label = t.theme.Label(t.theme.UserLabel).Render("You")
		body = wrapText(strings.TrimRight(msg.Content, "\n"), bodyWidth)
	case agent.RoleAssistant:
		label = t.theme.Label(t.theme.Accent).Render("Assistant")
		rendered := t.md.Render(msg.Content, bodyWidth)
		body = strings.Split(rendered, "\n")
	default:
		label = t.theme.Label(t.theme.Muted).Render("System")
		style := t.theme.MutedStyle()
		if strings.HasPrefix(msg.Content, "Error") {
			style = t.theme.WarningStyle()
		}
		for _, l := range wrapText(strings.TrimRight(msg.Content, "\n"), bodyWidth) {
			body = append(body, style.Render(l))
		}
	}

	lines := make([]string, 0, len(body)+2)
	lines = append(lines, label)
	for _, l := range body {
		lines = append(lines, indent.Render(l))
	}
	lines = append(lines, "")
	return lines
}
