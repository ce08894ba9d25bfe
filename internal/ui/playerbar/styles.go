package playerbar

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/mediastore/internal/ui/styles"
)

const (
	playSymbol     = "▶"
	pauseSymbol    = "⏸"
	announceSymbol = "📢"
)

func barStyle() lipgloss.Style { return styles.T().S().Panel }

func titleStyle() lipgloss.Style { return styles.T().S().Title }

func announcementStyle() lipgloss.Style { return styles.T().S().Announcement }

func metaStyle() lipgloss.Style { return styles.T().S().Muted }

func progressBarFilled() lipgloss.Style { return styles.T().S().Playing }

func progressBarEmpty() lipgloss.Style { return styles.T().S().Subtle }

func progressTimeStyle() lipgloss.Style { return styles.T().S().Muted }
