// internal/app/handlers_playback.go
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/keymap"
	"github.com/llehouerou/essai/internal/playback"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// handlePlaybackAction runs a transport, volume or mode action.
func (m *Model) handlePlaybackAction(a keymap.Action) (tea.Cmd, bool) {
	svc := m.playback
	switch a {
	case keymap.ActionPlayPause:
		return m.handlePlayPause(), true
	case keymap.ActionStop:
		return m.reportErr(errmsg.OpPlaybackStart, svc.Stop()), true
	case keymap.ActionNextTrack:
		return m.reportErr(errmsg.OpPlaybackStart, svc.Next()), true
	case keymap.ActionPrevTrack:
		return m.reportErr(errmsg.OpPlaybackStart, svc.Previous()), true
	case keymap.ActionSeekForward:
		return m.seekBy(seekStep), true
	case keymap.ActionSeekBack:
		return m.seekBy(-seekStep), true
	case keymap.ActionVolumeUp:
		svc.SetVolume(min(svc.Volume()+volumeStep, 1))
	case keymap.ActionVolumeDown:
		svc.SetVolume(max(svc.Volume()-volumeStep, 0))
	case keymap.ActionToggleMute:
		svc.ToggleMute()
	case keymap.ActionCycleRepeat:
		svc.CycleRepeatMode()
	case keymap.ActionToggleShuffle:
		svc.ToggleShuffle()
	default:
		return nil, false
	}
	return nil, true
}

// handlePlayPause toggles playback. A stopped or failed track is loaded
// again from the start.
func (m *Model) handlePlayPause() tea.Cmd {
	snap := m.playback.Snapshot()
	switch snap.State {
	case playback.StatePlaying, playback.StatePaused:
		return m.reportErr(errmsg.OpPlaybackStart, m.playback.Toggle())
	case playback.StateStopped, playback.StateFailed, playback.StateIdle:
		if snap.Track == nil {
			return nil
		}
		return PlayIndexCmd(m.playback, snap.Queue, snap.Index)
	default:
		return nil
	}
}

func (m *Model) seekBy(delta time.Duration) tea.Cmd {
	snap := m.playback.Snapshot()
	if snap.Track == nil {
		return nil
	}
	pos := max(snap.Position+delta, 0)
	if snap.Duration > 0 {
		pos = min(pos, snap.Duration)
	}
	return m.reportErr(errmsg.OpPlaybackSeek, m.playback.Seek(pos))
}

// reportErr shows err in the status line.
func (m *Model) reportErr(op errmsg.Op, err error) tea.Cmd {
	if err == nil {
		return nil
	}
	m.logger.Warn("playback command failed", "op", op, "err", err)
	return m.setNotice(errmsg.Format(op, err))
}
