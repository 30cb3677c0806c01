// internal/app/view.go
package app

import (
	"strings"

	"github.com/llehouerou/essai/internal/ui/playerbar"
)

// View renders the queue panel, the player bar and the help line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.playback.Snapshot()
	favorite := snap.Track != nil && m.favorites != nil && m.favorites.Contains(snap.Track.ID)
	bar := playerbar.Render(playerbar.NewState(snap, favorite, m.Notice), m.Width)
	helpView := m.Help.View(m.keys)

	var sections []string
	if m.QueueVisible {
		if q := m.Queue.View(); q != "" {
			sections = append(sections, q)
		}
	}
	sections = append(sections, bar, helpView)
	return strings.Join(sections, "\n")
}
