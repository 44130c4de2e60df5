// Package ui renders command line output: status labels, progress bars and
// tables.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	Text     = lipgloss.Color("#cdd6f4")
	Subtext0 = lipgloss.Color("#a6adc8")
	Surface0 = lipgloss.Color("#313244")
	Surface2 = lipgloss.Color("#585b70")

	Pink   = lipgloss.Color("#f5c2e7")
	Mauve  = lipgloss.Color("#cba6f7")
	Red    = lipgloss.Color("#f38ba8")
	Peach  = lipgloss.Color("#fab387")
	Yellow = lipgloss.Color("#f9e2af")
	Green  = lipgloss.Color("#a6e3a1")
	Teal   = lipgloss.Color("#94e2d5")
	Blue   = lipgloss.Color("#89b4fa")
)

var (
	TitleStyle   = lipgloss.NewStyle().Foreground(Pink).Bold(true)
	SubtleStyle  = lipgloss.NewStyle().Foreground(Subtext0)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Red).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(Peach)
	SuccessStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)

	HeaderStyle = lipgloss.NewStyle().Foreground(Blue).Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Foreground(Text).Padding(0, 1)

	ProgressBarEmptyStyle = lipgloss.NewStyle().Foreground(Surface0)

	StatusIdle      = lipgloss.NewStyle().Foreground(Subtext0)
	StatusActive    = lipgloss.NewStyle().Foreground(Teal).Bold(true)
	StatusRequested = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	StatusPaused    = lipgloss.NewStyle().Foreground(Peach).Bold(true)
	StatusCompleted = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusCancelled = lipgloss.NewStyle().Foreground(Mauve).Bold(true)
	StatusFailed    = lipgloss.NewStyle().Foreground(Red).Bold(true)
)
