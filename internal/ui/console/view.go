package console

import (
	"fmt"
	"strings"

	"github.com/llehouerou/mediastore/internal/ui/playerbar"
	"github.com/llehouerou/mediastore/internal/ui/render"
	"github.com/llehouerou/mediastore/internal/ui/styles"
)

const (
	headerHeight = 1
	barHeight    = playerbar.Height
	footerHeight = 1
)

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	s := styles.T().S()

	state := strings.ToLower(m.snap.State.String())
	title := styles.ApplyBoldGradient("mediastore", styles.T().Primary, styles.T().Secondary)
	header := render.Row(" "+title, s.Muted.Render(state+" "), m.width)

	bar := playerbar.Render(m.playerState(), m.width)
	if bar == "" {
		bar = s.Panel.Width(max(m.width-2, 0)).Render(s.Subtle.Render(render.Pad("  nothing playing", max(m.width-2, 0))))
	}

	parts := []string{header, bar}
	if m.showHelp {
		parts = append(parts, m.helpView())
	} else if q := m.queue.View(); q != "" {
		parts = append(parts, q)
	}
	parts = append(parts, m.footer())
	return strings.Join(parts, "\n")
}

func (m Model) playerState() playerbar.State {
	st := playerbar.NewState(m.snap, m.drv.TrackInfo())
	if m.mixer != nil {
		st.Volume = m.mixer.Volume()
		st.Muted = m.mixer.Muted()
	}
	return st
}

func (m Model) helpView() string {
	s := styles.T().S()
	inner := max(m.width-2, 0)
	help := m.keys.Help()
	lines := make([]string, 0, len(help))
	for _, l := range help {
		lines = append(lines, render.TruncateAndPad("  "+l, inner))
	}
	return s.Panel.Width(inner).Render(strings.Join(lines, "\n"))
}

func (m Model) footer() string {
	s := styles.T().S()
	if m.lastErr != "" {
		return s.Error.Render(render.Truncate(" "+m.lastErr, m.width))
	}
	hint := fmt.Sprintf(" %d pending · ? help · q quit", m.queue.Len())
	return s.Subtle.Render(render.Truncate(hint, m.width))
}
