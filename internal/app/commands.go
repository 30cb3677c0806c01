// internal/app/commands.go
package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/state"
)

const (
	tickInterval   = 250 * time.Millisecond
	noticeDuration = 6 * time.Second
	requestTimeout = 15 * time.Second
)

// TickCmd returns a command that sends TickMsg after tickInterval.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// NoticeExpiredCmd returns a command that clears the notice with the given
// version once it has been displayed long enough.
func NoticeExpiredCmd(version int) tea.Cmd {
	return tea.Tick(noticeDuration, func(_ time.Time) tea.Msg {
		return NoticeExpiredMsg{Version: version}
	})
}

// WatchServiceEvents returns a command that waits for playback service events.
// It listens on all subscription channels and converts events to tea.Msg.
func (m Model) WatchServiceEvents() tea.Cmd {
	sub := m.sub
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-sub.StateChanged:
			return ServiceStateChangedMsg{Previous: e.Previous, Current: e.Current}
		case e := <-sub.TrackChanged:
			return ServiceTrackChangedMsg{Track: e.Current, Index: e.Index}
		case e := <-sub.QueueChanged:
			return ServiceQueueChangedMsg{Tracks: e.Tracks, Index: e.Index}
		case e := <-sub.Error:
			return ServiceErrorMsg{Event: e}
		case <-sub.PositionChanged:
			return ServiceRefreshMsg{}
		case <-sub.VolumeChanged:
			return ServiceRefreshMsg{}
		case <-sub.ModeChanged:
			return ServiceRefreshMsg{}
		case <-sub.Done:
			return ServiceClosedMsg{}
		}
	}
}

// PlayTrackCmd starts queue[index] with queue as the new session.
func PlayTrackCmd(svc playback.Service, queue []playback.Track, index int) tea.Cmd {
	if index < 0 || index >= len(queue) {
		return nil
	}
	track := queue[index]
	return func() tea.Msg {
		err := svc.PlayTrack(context.Background(), &track, queue, index)
		return PlayResultMsg{TrackID: track.ID, Err: err}
	}
}

// PlayIndexCmd starts the entry at index of the current queue, keeping its
// order.
func PlayIndexCmd(svc playback.Service, queue []playback.Track, index int) tea.Cmd {
	if index < 0 || index >= len(queue) {
		return nil
	}
	id := queue[index].ID
	return func() tea.Msg {
		err := svc.PlayIndex(context.Background(), index)
		return PlayResultMsg{TrackID: id, Err: err}
	}
}

// ToggleFavoriteCmd flips the favorite status of track.
func (m Model) ToggleFavoriteCmd(track playback.Track) tea.Cmd {
	set := m.favorites
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		on, err := set.Toggle(ctx, track)
		return FavoriteToggledMsg{TrackID: track.ID, Title: track.Title, Favorite: on, Err: err}
	}
}

// LoadFavoritesCmd fetches the favorite set.
func (m Model) LoadFavoritesCmd() tea.Cmd {
	set := m.favorites
	if set == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tracks, err := set.Refresh(ctx)
		return FavoritesLoadedMsg{Count: len(tracks), Err: err}
	}
}

// SaveQueueCmd persists the queue so the next session can resume it.
func (m Model) SaveQueueCmd(tracks []playback.Track, index int) tea.Cmd {
	store := m.store
	if store == nil || len(tracks) == 0 {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		err := store.SaveQueue(ctx, state.QueueState{
			CurrentIndex: index,
			Tracks:       tracks,
			SavedAt:      time.Now(),
		})
		return QueueSavedMsg{Err: err}
	}
}

// notifyCmd runs a desktop notification off the update loop.
func (m Model) notifyCmd(fn func() error) tea.Cmd {
	logger := m.logger
	return func() tea.Msg {
		if err := fn(); err != nil {
			logger.Debug("notification failed", "err", err)
		}
		return nil
	}
}
