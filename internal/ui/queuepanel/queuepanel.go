// Package queuepanel renders the playing queue and lets the user jump to
// an entry.
package queuepanel

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/keymap"
	"github.com/llehouerou/essai/internal/playlist"
)

// scrollMargin is the number of rows kept visible around the cursor.
const scrollMargin = 2

// JumpToTrackMsg is sent when the user selects a track to jump to.
type JumpToTrackMsg struct {
	Index int
}

// Model represents the queue panel state.
type Model struct {
	tracks  []playlist.Track
	playing int
	cursor  int
	offset  int
	width   int
	height  int
}

// New creates an empty queue panel.
func New() Model {
	return Model{playing: -1}
}

// SetQueue replaces the displayed queue. The cursor follows the playing
// entry when the queue itself changed.
func (m *Model) SetQueue(tracks []playlist.Track, playing int) {
	changed := len(tracks) != len(m.tracks)
	if !changed {
		for i := range tracks {
			if tracks[i].ID != m.tracks[i].ID {
				changed = true
				break
			}
		}
	}
	m.tracks = tracks
	m.playing = playing
	if changed && playing >= 0 {
		m.cursor = playing
	}
	m.clampCursor()
}

// SetSize sets the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampCursor()
}

// Cursor returns the highlighted index.
func (m Model) Cursor() int {
	return m.cursor
}

// Len returns the number of queued tracks.
func (m Model) Len() int {
	return len(m.tracks)
}

// HandleAction applies a queue action. It reports whether the action was
// consumed.
func (m *Model) HandleAction(a keymap.Action) (bool, tea.Cmd) {
	switch a {
	case keymap.ActionMoveDown:
		m.moveCursor(1)
	case keymap.ActionMoveUp:
		m.moveCursor(-1)
	case keymap.ActionJumpStart:
		m.cursor = 0
		m.clampCursor()
	case keymap.ActionJumpEnd:
		m.cursor = len(m.tracks) - 1
		m.clampCursor()
	case keymap.ActionSelect:
		if len(m.tracks) == 0 {
			return true, nil
		}
		idx := m.cursor
		return true, func() tea.Msg { return JumpToTrackMsg{Index: idx} }
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor in range and visible.
func (m *Model) clampCursor() {
	n := len(m.tracks)
	if n == 0 {
		m.cursor, m.offset = 0, 0
		return
	}
	m.cursor = max(0, min(m.cursor, n-1))

	rows := m.listHeight()
	if rows <= 0 {
		m.offset = 0
		return
	}
	margin := min(scrollMargin, (rows-1)/2)
	if m.cursor-margin < m.offset {
		m.offset = m.cursor - margin
	}
	if m.cursor+margin >= m.offset+rows {
		m.offset = m.cursor + margin - rows + 1
	}
	m.offset = max(0, min(m.offset, n-rows))
}

func (m Model) listHeight() int {
	// header + separator
	return m.height - 2
}
