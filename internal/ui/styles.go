package ui

import "github.com/charmbracelet/lipgloss"

const (
	accent    = lipgloss.Color("#2EC4B6")
	accentDim = lipgloss.Color("#8FD9D1")
	muted     = lipgloss.Color("#6B7280")
	danger    = lipgloss.Color("#FF4757")
	warning   = lipgloss.Color("#FFB84D")
	plain     = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Foreground(accentDim).
			Bold(true).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(plain).
			Width(24)

	FocusedLabelStyle = LabelStyle.
				Foreground(accent).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(plain).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 4)

	ActiveButtonStyle = ButtonStyle.
				Foreground(accent).
				BorderForeground(accent).
				Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(accentDim)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warning).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Padding(1, 3)
)
