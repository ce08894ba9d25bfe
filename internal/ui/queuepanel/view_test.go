package queuepanel

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/llehouerou/mediastore/internal/playback"
)

// stripANSI removes ANSI escape codes from a string for easier testing.
func stripANSI(s string) string {
	re := regexp.MustCompile(`\x1b\[[0-9;]*m`)
	return re.ReplaceAllString(s, "")
}

func track(id string) playback.Track {
	return playback.Track{ID: id, Storage: "sounds", Title: id}
}

func TestView_Empty(t *testing.T) {
	m := New()
	m.SetSize(40, 8)
	out := stripANSI(m.View())
	if !strings.Contains(out, "Up next (0)") {
		t.Errorf("empty panel should show 'Up next (0)', got:\n%s", out)
	}
	if got := strings.Count(out, "\n") + 1; got != 8 {
		t.Errorf("panel height = %d, want 8", got)
	}
}

func TestView_TooSmall(t *testing.T) {
	m := New()
	m.SetSize(3, 3)
	if got := m.View(); got != "" {
		t.Errorf("tiny panel should render nothing, got %q", got)
	}
}

func TestView_QueueThenSuspended(t *testing.T) {
	m := New()
	m.SetSize(50, 10)
	suspended := track("radio")
	suspended.Position = 95 * time.Second
	m.SetQueue([]playback.Track{track("chime"), track("door")}, &suspended)

	out := stripANSI(m.View())
	if !strings.Contains(out, "Up next (3)") {
		t.Errorf("header should count queue and suspended:\n%s", out)
	}
	chime := strings.Index(out, "1. chime")
	door := strings.Index(out, "2. door")
	radio := strings.Index(out, suspendedSymbol+" radio")
	if chime < 0 || door < 0 || radio < 0 {
		t.Fatalf("missing entries:\n%s", out)
	}
	if chime >= door || door >= radio {
		t.Errorf("entries out of order:\n%s", out)
	}
	if !strings.Contains(out, "@ 1:35") {
		t.Errorf("suspended position missing:\n%s", out)
	}
}

func TestView_Overflow(t *testing.T) {
	m := New()
	m.SetSize(40, 6) // two entry rows
	m.SetQueue([]playback.Track{track("a"), track("b"), track("c"), track("d")}, nil)

	out := stripANSI(m.View())
	if !strings.Contains(out, "1. a") {
		t.Errorf("first entry missing:\n%s", out)
	}
	if strings.Contains(out, "2. b") {
		t.Errorf("overflowed entry shown:\n%s", out)
	}
	if !strings.Contains(out, "+3 more") {
		t.Errorf("overflow marker missing:\n%s", out)
	}
}

func TestLen(t *testing.T) {
	m := New()
	if m.Len() != 0 {
		t.Errorf("Len() = %d", m.Len())
	}
	s := track("x")
	m.SetQueue([]playback.Track{track("a")}, &s)
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}
