// Package styles holds the console color palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and pre-built styles for the console.
type Theme struct {
	Primary   lipgloss.Color // playing track, focused border
	Secondary lipgloss.Color // announcements

	FgBase   lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	Border lipgloss.Color

	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color

	styles *Styles
}

// Styles contains pre-built lipgloss styles.
type Styles struct {
	Base         lipgloss.Style
	Muted        lipgloss.Style
	Subtle       lipgloss.Style
	Title        lipgloss.Style
	Playing      lipgloss.Style
	Announcement lipgloss.Style
	Suspended    lipgloss.Style
	Error        lipgloss.Style
	Warning      lipgloss.Style
	Panel        lipgloss.Style
}

var defaultTheme = Theme{
	Primary:   lipgloss.Color("#a78bfa"),
	Secondary: lipgloss.Color("#f1a208"),

	FgBase:   lipgloss.Color("#c0c0c0"),
	FgMuted:  lipgloss.Color("#808080"),
	FgSubtle: lipgloss.Color("#585858"),

	Border: lipgloss.Color("#585858"),

	Success: lipgloss.Color("#42b883"),
	Error:   lipgloss.Color("#ff5555"),
	Warning: lipgloss.Color("#f1a208"),
}

// T returns the default theme.
func T() *Theme {
	return &defaultTheme
}

// S returns the pre-built styles for this theme.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:         base,
		Muted:        lipgloss.NewStyle().Foreground(t.FgMuted),
		Subtle:       lipgloss.NewStyle().Foreground(t.FgSubtle),
		Title:        base.Bold(true),
		Playing:      lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Announcement: lipgloss.NewStyle().Foreground(t.Secondary).Bold(true),
		Suspended:    lipgloss.NewStyle().Foreground(t.FgMuted).Italic(true),
		Error:        lipgloss.NewStyle().Foreground(t.Error),
		Warning:      lipgloss.NewStyle().Foreground(t.Warning),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),
	}
}
