package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/model"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorAccent)).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorMuted))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorInfo)).Width(6)

	textAreaStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(config.ColorMuted)).
			Padding(0, 1)

	focusedTextAreaStyle = textAreaStyle.BorderForeground(lipgloss.Color(config.ColorAccent))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color(config.ColorInfo)).
			Padding(0, 1)

	toggleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorMuted)).Padding(0, 1)
	activeToggleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorAccent)).Underline(true).Padding(0, 1)

	sendStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#282828")).
			Background(lipgloss.Color(config.ColorAccent)).
			Padding(0, 2)

	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorError)).Bold(true)
)

func notifyStyle(typ model.NotifyType) lipgloss.Style {
	color := config.ColorInfo
	switch typ {
	case model.NotifySuccess:
		color = config.ColorSuccess
	case model.NotifyWarning:
		color = config.ColorAccent
	case model.NotifyError:
		color = config.ColorError
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
