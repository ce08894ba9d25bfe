// Package playerbar renders the one-line now-playing bar of the console.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/llehouerou/mediastore/internal/playback"
	"github.com/llehouerou/mediastore/internal/player"
	"github.com/llehouerou/mediastore/internal/ui/render"
)

// Height is the rendered height: top border, content, bottom border.
const Height = 3

// State holds everything needed to render the player bar.
type State struct {
	Playing      bool
	Paused       bool
	ID           string
	Storage      string
	Announcement bool
	Title        string
	Artist       string
	Position     time.Duration
	Duration     time.Duration
	Format       string // "MP3", "FLAC", "WAV"
	SampleRate   int
	Volume       float64
	Muted        bool
}

// NewState builds a State from a coordinator snapshot and, when
// available, the driver's metadata for the current source.
func NewState(snap playback.Snapshot, info *player.TrackInfo) State {
	if snap.Current == nil || !snap.State.IsActive() {
		return State{}
	}
	s := State{
		Playing:      snap.State == playback.StatePlaying,
		Paused:       snap.State == playback.StatePaused,
		ID:           snap.Current.ID,
		Storage:      snap.Current.Storage,
		Announcement: snap.Current.Announcement,
		Title:        snap.Current.Title,
		Position:     snap.Position,
		Duration:     snap.Current.Duration,
	}
	if info != nil {
		if info.Title != "" {
			s.Title = info.Title
		}
		s.Artist = info.Artist
		s.Format = info.Format
		s.SampleRate = info.SampleRate
		if s.Duration == 0 {
			s.Duration = info.Duration
		}
	}
	return s
}

// Render returns the player bar for the given width, or "" when nothing
// is loaded.
func Render(s State, w int) string {
	if !s.Playing && !s.Paused {
		return ""
	}
	// border and padding
	inner := max(w-6, 0)

	status := playSymbol
	if s.Paused {
		status = pauseSymbol
	}

	title := s.Title
	if title == "" {
		title = s.ID
	}
	titleRender := titleStyle().Render
	if s.Announcement {
		title = announceSymbol + " " + title
		titleRender = announcementStyle().Render
	}

	var metaParts []string
	if s.Artist != "" {
		metaParts = append(metaParts, s.Artist)
	}
	metaParts = append(metaParts, s.Storage)
	if s.Format != "" {
		format := s.Format
		if s.SampleRate > 0 {
			format = fmt.Sprintf("%s %.1fkHz", format, float64(s.SampleRate)/1000)
		}
		metaParts = append(metaParts, format)
	}
	meta := strings.Join(metaParts, " · ")

	timeStr := timeLabel(s.Position, s.Duration)
	vol := RenderVolume(s.Volume, s.Muted)

	const sep = "   "
	const minBar = 10
	fixed := width(status+"  ") + width(timeStr) + width(vol) + 3*width(sep) + minBar
	avail := inner - fixed

	var content strings.Builder
	used := 0
	switch {
	case width(title)+width(sep)+width(meta) <= avail:
		content.WriteString(titleRender(render.Sanitize(title)))
		content.WriteString(sep)
		content.WriteString(metaStyle().Render(meta))
		used = width(title) + width(sep) + width(meta)
	default:
		maxTitle := max(avail, 10)
		t := render.Truncate(title, maxTitle)
		content.WriteString(titleRender(t))
		used = width(t)
	}

	barWidth := max(inner-used-fixed+minBar, 5)
	content.WriteString(sep)
	content.WriteString(status)
	content.WriteString("  ")
	content.WriteString(RenderProgressBar(s.Position, s.Duration, barWidth))
	content.WriteString(sep)
	content.WriteString(progressTimeStyle().Render(timeStr))
	content.WriteString(sep)
	content.WriteString(vol)

	return barStyle().Padding(0, 2).Width(max(w-2, 0)).Render(content.String())
}
