// internal/app/update_playback.go
package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/playback"
)

// handlePlaybackMsg routes playback-related messages.
func (m Model) handlePlaybackMsg(msg PlaybackMessage) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		return m.handleTick()
	case ServiceStateChangedMsg:
		return m.handleServiceStateChanged(msg)
	case ServiceTrackChangedMsg:
		return m.handleServiceTrackChanged(msg)
	case ServiceQueueChangedMsg:
		m.Queue.SetQueue(msg.Tracks, msg.Index)
		return m, tea.Batch(m.WatchServiceEvents(), m.SaveQueueCmd(msg.Tracks, msg.Index))
	case ServiceRefreshMsg:
		return m, m.WatchServiceEvents()
	case ServiceErrorMsg:
		return m.handleServiceError(msg)
	case ServiceClosedMsg:
		if m.quitting {
			return m, nil
		}
		return m, tea.Quit
	case PlayResultMsg:
		// Failures are reported through the error event.
		if msg.Err != nil && !errors.Is(msg.Err, playback.ErrSuperseded) {
			m.logger.Debug("play request ended", "track", msg.TrackID, "err", msg.Err)
		}
		return m, nil
	}
	return m, nil
}

// handleTick feeds the scrobbler and keeps ticking while a track is
// loading or playing.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	snap := m.playback.Snapshot()
	switch snap.State {
	case playback.StatePlaying:
		if m.scrobbler != nil && snap.Track != nil {
			m.scrobbler.Progress(snap.Track.ID, snap.Position, snap.Duration)
		}
		return m, TickCmd()
	case playback.StateLoading:
		return m, TickCmd()
	default:
		m.ticking = false
		return m, nil
	}
}

// handleServiceStateChanged starts the progress ticker and announces a
// track once it actually plays.
func (m Model) handleServiceStateChanged(msg ServiceStateChangedMsg) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.WatchServiceEvents()}

	if (msg.Current == playback.StatePlaying || msg.Current == playback.StateLoading) && !m.ticking {
		m.ticking = true
		cmds = append(cmds, TickCmd())
	}

	if msg.Current == playback.StatePlaying {
		if track := m.playback.CurrentTrack(); track != nil && track.ID != m.notifiedID {
			m.notifiedID = track.ID
			cmds = append(cmds, m.trackStartedCmd(*track))
		}
	}

	return m, tea.Batch(cmds...)
}

// handleServiceTrackChanged moves the queue cursor and persists the queue.
func (m Model) handleServiceTrackChanged(msg ServiceTrackChangedMsg) (tea.Model, tea.Cmd) {
	m.notifiedID = ""
	snap := m.playback.Snapshot()
	m.Queue.SetQueue(snap.Queue, msg.Index)
	return m, tea.Batch(m.WatchServiceEvents(), m.SaveQueueCmd(snap.Queue, msg.Index))
}

// handleServiceError shows a load failure in the status line and as a
// desktop notification.
func (m Model) handleServiceError(msg ServiceErrorMsg) (tea.Model, tea.Cmd) {
	e := msg.Event
	m.logger.Warn("playback error",
		"op", e.Operation, "track", e.TrackID, "skipping", e.Skipping, "err", e.Err)

	text := errmsg.FormatWith(errmsg.OpPlaybackLoad, e.Title, e.Err)
	if e.Skipping {
		text += ", skipping"
	}

	cmds := []tea.Cmd{m.WatchServiceEvents(), m.setNotice(text)}
	if m.notifier != nil {
		n := m.notifier
		reason := errmsg.Describe(e.Err)
		cmds = append(cmds, m.notifyCmd(func() error {
			return n.LoadFailed(e.Title, reason, e.Skipping)
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) trackStartedCmd(track playback.Track) tea.Cmd {
	if m.notifier == nil {
		return nil
	}
	n := m.notifier
	return m.notifyCmd(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return n.TrackStarted(ctx, track)
	})
}
