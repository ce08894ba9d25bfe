package styles

import (
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestApplyBoldGradient_KeepsText(t *testing.T) {
	for _, text := range []string{"", "x", "mediastore", "héllo 🔔"} {
		got := ansi.ReplaceAllString(ApplyBoldGradient(text, T().Primary, T().Secondary), "")
		if got != text {
			t.Errorf("ApplyBoldGradient(%q) stripped = %q", text, got)
		}
	}
}

func TestToColorful_FallsBackForANSI(t *testing.T) {
	gray := toColorful(lipgloss.Color("240"))
	r, g, b := gray.RGB255()
	if r != 128 || g != 128 || b != 128 {
		t.Errorf("toColorful(240) = %d,%d,%d, want neutral gray", r, g, b)
	}
	purple := toColorful(T().Primary)
	if purple.Hex() != "#a78bfa" {
		t.Errorf("toColorful(primary) = %s", purple.Hex())
	}
}

func TestTheme_StylesCached(t *testing.T) {
	if T().S() != T().S() {
		t.Error("S() should build styles once")
	}
}
