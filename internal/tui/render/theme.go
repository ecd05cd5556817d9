package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme 是深色/浅色两套配色。
type Theme struct {
	Dark bool

	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Warning   lipgloss.Color
	Border    lipgloss.Color
	UserLabel lipgloss.Color
}

// DetectDark 探测终端背景是否为深色。
func DetectDark() bool {
	return termenv.HasDarkBackground()
}

func NewTheme(dark bool) Theme {
	if dark {
		return Theme{
			Dark:      true,
			Accent:    lipgloss.Color("#7D56F4"),
			Muted:     lipgloss.Color("#7D7A85"),
			Warning:   lipgloss.Color("#FFB454"),
			Border:    lipgloss.Color("#5E6472"),
			UserLabel: lipgloss.Color("#4FB3FF"),
		}
	}
	return Theme{
		Accent:    lipgloss.Color("#5A3FD1"),
		Muted:     lipgloss.Color("#6B6875"),
		Warning:   lipgloss.Color("#B45309"),
		Border:    lipgloss.Color("#A0A4AE"),
		UserLabel: lipgloss.Color("#0B6BCB"),
	}
}

// GlamourStyle 返回对应的 glamour 内置样式名。
func (t Theme) GlamourStyle() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}

func (t Theme) Label(color lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

func (t Theme) MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}
