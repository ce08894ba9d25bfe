// Package queuepanel renders the pending playback targets: the FIFO
// queue followed by the track an announcement suspended.
package queuepanel

import (
	"fmt"
	"strings"

	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/ui/render"
	"github.com/llehouerou/mediastore/internal/ui/styles"
)

const (
	queuedSymbol    = "·"
	suspendedSymbol = "↺"
)

// Model holds the panel contents and size.
type Model struct {
	tracks    []playback.Track
	suspended *playback.Track
	width     int
	height    int
}

// New creates an empty panel.
func New() Model {
	return Model{}
}

// SetSize sets the panel dimensions, borders included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetQueue replaces the displayed queue and suspended track.
func (m *Model) SetQueue(tracks []playback.Track, suspended *playback.Track) {
	m.tracks = tracks
	m.suspended = suspended
}

// Len returns the number of pending targets shown.
func (m Model) Len() int {
	n := len(m.tracks)
	if m.suspended != nil {
		n++
	}
	return n
}

// View renders the panel.
func (m Model) View() string {
	if m.width < 4 || m.height < 4 {
		return ""
	}
	s := styles.T().S()
	inner := m.width - 2
	rows := m.height - 4 // borders, header, separator

	header := render.TruncateAndPad(fmt.Sprintf("Up next (%d)", m.Len()), inner)
	lines := []string{s.Title.Render(header), render.Separator(inner)}

	entries := m.entries(inner)
	if len(entries) > rows {
		more := len(entries) - rows + 1
		entries = append(entries[:rows-1], s.Subtle.Render(render.TruncateAndPad(fmt.Sprintf("  +%d more", more), inner)))
	}
	lines = append(lines, entries...)
	for len(lines) < rows+2 {
		lines = append(lines, strings.Repeat(" ", inner))
	}
	return s.Panel.Width(inner).Render(strings.Join(lines, "\n"))
}

func (m Model) entries(inner int) []string {
	s := styles.T().S()
	out := make([]string, 0, m.Len())
	for i, t := range m.tracks {
		style := s.Base
		if t.Announcement {
			style = s.Announcement
		}
		out = append(out, style.Render(line(fmt.Sprintf("%s %d.", queuedSymbol, i+1), t, inner)))
	}
	if t := m.suspended; t != nil {
		label := line(suspendedSymbol, *t, inner-len(" @ 0:00"))
		out = append(out, s.Suspended.Render(label+" @ "+render.Duration(t.Position)))
	}
	return out
}

// line lays out "<prefix> <title>  <storage>" in width cells.
func line(prefix string, t playback.Track, width int) string {
	title := t.Title
	if title == "" {
		title = t.ID
	}
	left := prefix + " " + title
	right := t.Storage
	leftWidth := max(width-len(right)-2, width/2)
	return render.TruncateAndPad(render.Row(render.TruncateAndPad(left, leftWidth), right, width), width)
}
