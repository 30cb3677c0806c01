package queuepanel

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/essai/internal/playlist"
)

// View renders the queue panel.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	header := headerStyle.Render(fit(fmt.Sprintf("Queue (%d/%d)", m.playing+1, len(m.tracks)), m.width))
	lines := []string{header, separatorStyle.Render(strings.Repeat("─", m.width))}

	for i := range m.listHeight() {
		idx := i + m.offset
		if idx >= len(m.tracks) {
			lines = append(lines, strings.Repeat(" ", m.width))
			continue
		}
		lines = append(lines, m.renderTrackLine(m.tracks[idx], idx))
	}

	return strings.Join(lines, "\n")
}

// renderTrackLine renders one entry: marker, title and artist columns.
func (m Model) renderTrackLine(track playlist.Track, idx int) string {
	prefix := "  "
	if idx == m.playing {
		prefix = playingSymbol + " "
	}

	contentWidth := max(m.width-2, 0)
	titleWidth := contentWidth / 2
	artistWidth := contentWidth - titleWidth

	line := prefix + fit(track.Title, titleWidth) + fit(track.DisplayArtist(), artistWidth)
	return m.trackStyle(idx).Render(line)
}

func (m Model) trackStyle(idx int) lipgloss.Style {
	isCursor := idx == m.cursor
	isPlaying := idx == m.playing
	isPlayed := m.playing >= 0 && idx < m.playing

	switch {
	case isCursor && isPlaying:
		return cursorStyle.Inherit(playingStyle)
	case isCursor && isPlayed:
		return cursorStyle.Inherit(dimmedStyle)
	case isCursor:
		return cursorStyle
	case isPlaying:
		return playingStyle
	case isPlayed:
		return dimmedStyle
	default:
		return trackStyle
	}
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
