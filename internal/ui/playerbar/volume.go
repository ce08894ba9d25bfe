package playerbar

import "fmt"

// RenderVolume renders the volume indicator, e.g. "vol  80%" or
// "muted  80%".
func RenderVolume(volume float64, muted bool) string {
	label := "vol"
	if muted {
		label = "muted"
	}
	return progressTimeStyle().Render(fmt.Sprintf("%s %3d%%", label, int(volume*100+0.5)))
}
