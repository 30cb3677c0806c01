package playerbar

import "fmt"

// RenderVolume renders the volume indicator.
// Format: "vol 100%" or "muted 80%" when muted
func RenderVolume(volume float64, muted bool) string {
	pct := int(volume*100 + 0.5)
	if muted {
		return metaStyle().Render(fmt.Sprintf("muted %3d%%", pct))
	}
	return progressTimeStyle().Render(fmt.Sprintf("vol %3d%%", pct))
}
