// internal/app/update.go
package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/keymap"
	"github.com/llehouerou/essai/internal/lastfm"
	"github.com/llehouerou/essai/internal/ui/playerbar"
	"github.com/llehouerou/essai/internal/ui/queuepanel"
)

// Update handles messages and returns updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case queuepanel.JumpToTrackMsg:
		snap := m.playback.Snapshot()
		return m, PlayIndexCmd(m.playback, snap.Queue, msg.Index)

	case NoticeExpiredMsg:
		if msg.Version == m.noticeVersion {
			m.Notice = ""
		}
		return m, nil

	case lastfm.RetryPendingMsg:
		if m.scrobbler == nil {
			return m, nil
		}
		return m, tea.Batch(lastfm.RetryPendingCmd(m.scrobbler), lastfm.RetryTickCmd())

	case lastfm.RetryResultMsg:
		if msg.Err != nil {
			m.logger.Warn("pending scrobble retry failed", "err", msg.Err)
		} else if msg.Succeeded+msg.Failed > 0 {
			m.logger.Info("pending scrobbles retried", "succeeded", msg.Succeeded, "failed", msg.Failed)
		}
		return m, nil

	case PlaybackMessage:
		return m.handlePlaybackMsg(msg)

	case UserDataMessage:
		return m.handleUserDataMsg(msg)
	}

	return m, nil
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.Width = msg.Width
	m.Height = msg.Height
	m.Help.Width = msg.Width
	m.resizeComponents()
	return m, nil
}

// resizeComponents gives the queue panel the space above the player bar
// and help line.
func (m *Model) resizeComponents() {
	queueHeight := max(m.Height-playerbar.Height-1, 0)
	m.Queue.SetSize(m.Width, queueHeight)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.keys.Resolve(msg.String())
	if action == "" {
		return m, nil
	}

	if m.QueueVisible {
		if ok, cmd := m.Queue.HandleAction(action); ok {
			return m, cmd
		}
	}

	switch action {
	case keymap.ActionQuit:
		return m.quit()
	case keymap.ActionHelp:
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil
	case keymap.ActionToggleQueue:
		m.QueueVisible = !m.QueueVisible
		return m, nil
	case keymap.ActionToggleFavorite:
		return m.handleToggleFavorite()
	}

	if cmd, handled := m.handlePlaybackAction(action); handled {
		return m, cmd
	}
	return m, nil
}

// quit closes the playback service and exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.playback.Close(); err != nil {
		m.logger.Warn("closing playback", "err", err)
	}
	return m, tea.Quit
}

func (m Model) handleToggleFavorite() (tea.Model, tea.Cmd) {
	track := m.playback.CurrentTrack()
	if track == nil {
		return m, nil
	}
	if m.favorites == nil {
		return m, m.setNotice("Log in to manage favorites")
	}
	return m, m.ToggleFavoriteCmd(*track)
}

// handleUserDataMsg routes account request results.
func (m Model) handleUserDataMsg(msg UserDataMessage) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case FavoriteToggledMsg:
		if msg.Err != nil {
			m.logger.Warn("favorite toggle failed", "track", msg.TrackID, "err", msg.Err)
			return m, m.setNotice(errmsg.FormatWith(errmsg.OpFavoriteToggle, msg.Title, msg.Err))
		}
		if msg.Favorite {
			return m, m.setNotice("Added to favorites")
		}
		return m, m.setNotice("Removed from favorites")

	case FavoritesLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("loading favorites failed", "err", msg.Err)
			return m, m.setNotice(errmsg.Format(errmsg.OpFavoritesLoad, msg.Err))
		}
		m.logger.Debug("favorites loaded", "count", msg.Count)

	case QueueSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("saving queue failed", "err", msg.Err)
		}
	}
	return m, nil
}
