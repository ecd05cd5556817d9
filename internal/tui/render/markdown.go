package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown 按宽度与样式缓存 glamour 渲染器。渲染失败时退回原文。
type Markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func NewMarkdown(style string) *Markdown {
	return &Markdown{style: style}
}

// SetStyle 切换 glamour 样式，下次渲染时重建渲染器。
func (m *Markdown) SetStyle(style string) {
	if m.style == style {
		return
	}
	m.style = style
	m.renderer = nil
}

func (m *Markdown) Render(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	r := m.rendererFor(width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) rendererFor(width int) *glamour.TermRenderer {
	if width < 10 {
		width = 10
	}
	if m.renderer != nil && m.width == width {
		return m.renderer
	}
	style := m.style
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	m.renderer = r
	m.width = width
	return r
}
