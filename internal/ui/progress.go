package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NamanBalaji/vidvault/internal/progress"
	"github.com/NamanBalaji/vidvault/internal/status"
)

// ProgressBar returns a styled progress bar.
func ProgressBar(width int, fraction float64, s status.Status) string {
	if width <= 0 {
		return ""
	}

	fraction = progress.Clamp(fraction)

	filledWidth := int(float64(width) * fraction)
	emptyWidth := width - filledWidth

	filledStr := strings.Repeat("█", filledWidth)
	emptyStr := strings.Repeat("░", emptyWidth)

	filledStyle := lipgloss.NewStyle().Foreground(statusStyle(s).GetForeground())

	return filledStyle.Render(filledStr) + ProgressBarEmptyStyle.Render(emptyStr)
}

// ProgressLine renders "label [bar] 42%".
func ProgressLine(label string, width int, fraction float64, s status.Status) string {
	return fmt.Sprintf("%s %s %3.0f%%", label, ProgressBar(width, fraction, s), progress.Clamp(fraction)*100)
}

// StatusLabel renders the lowercase status name in its color.
func StatusLabel(s status.Status) string {
	return statusStyle(s).Render(status.String(s))
}

func statusStyle(s status.Status) lipgloss.Style {
	switch s {
	case status.Active:
		return StatusActive
	case status.Requested:
		return StatusRequested
	case status.Paused:
		return StatusPaused
	case status.Completed:
		return StatusCompleted
	case status.Cancelled:
		return StatusCancelled
	case status.Failed:
		return StatusFailed
	default:
		return StatusIdle
	}
}
