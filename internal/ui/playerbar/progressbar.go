package playerbar

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mediastore/internal/ui/render"
)

// RenderProgressBar renders a line-style progress bar of exactly width
// cells: "━━━━───". Unknown durations render an empty bar.
func RenderProgressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	var ratio float64
	if duration > 0 {
		ratio = min(float64(position)/float64(duration), 1)
	}
	filled := min(int(float64(width)*ratio), width)
	return progressBarFilled().Render(strings.Repeat("━", filled)) +
		progressBarEmpty().Render(strings.Repeat("─", width-filled))
}

// timeLabel renders "1:23 / 3:58", or just the position when the
// duration is unknown.
func timeLabel(position, duration time.Duration) string {
	if duration <= 0 {
		return render.Duration(position)
	}
	return render.Duration(position) + " / " + render.Duration(duration)
}

func width(s string) int { return lipgloss.Width(s) }
