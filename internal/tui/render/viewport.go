package render

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Viewport 包装 bubbles viewport：内容 diff 感知，偏移由外部滚动状态驱动。
type Viewport struct {
	viewport.Model
	lastLines []string
}

func NewViewport(width, height int) Viewport {
	vp := viewport.New(width, height)
	vp.MouseWheelDelta = 3
	return Viewport{Model: vp}
}

// Resize 更新宽高；宽度变化时清空行缓存。
func (v *Viewport) Resize(width, height int) {
	if v == nil {
		return
	}
	if v.Width != width {
		v.Invalidate()
	}
	v.Width = width
	v.Height = height
}

// HandleUpdate 代理 bubbles 的 Update（鼠标滚轮等）。
func (v *Viewport) HandleUpdate(msg tea.Msg) tea.Cmd {
	if v == nil {
		return nil
	}
	var cmd tea.Cmd
	v.Model, cmd = v.Model.Update(msg)
	return cmd
}

// SetLines 在内容变化时更新视口，不改变当前偏移（超出范围时由 viewport 裁剪）。
func (v *Viewport) SetLines(lines []string) bool {
	if v == nil {
		return false
	}
	if slices.Equal(lines, v.lastLines) {
		return false
	}
	v.lastLines = append([]string(nil), lines...)
	v.SetContent(strings.Join(lines, "\n"))
	return true
}

// Apply 把目标偏移交给视口裁剪，返回实际渲染的偏移。ok 为 false 时只读回当前偏移。
func (v *Viewport) Apply(target float64, ok bool) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if ok {
		v.SetYOffset(int(target))
	}
	return float64(v.YOffset), nil
}

// Invalidate 清空已缓存的行，强制下次 SetLines 全量更新。
func (v *Viewport) Invalidate() {
	if v == nil {
		return
	}
	v.lastLines = nil
}
