//go:build linux

package mpris

import (
	"strings"

	"github.com/llehouerou/essai/internal/playback"
)

// artURL returns the cover to advertise as mpris:artUrl. MPRIS clients
// fetch http(s) URLs themselves; anything else is dropped.
func artURL(t playback.Track) string {
	u := strings.TrimSpace(t.CoverURL)
	if strings.HasPrefix(u, "https://") || strings.HasPrefix(u, "http://") {
		return u
	}
	return ""
}
