// Package app contains the terminal player: the bubbletea model driving a
// playback.Service.
package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/essai/internal/playback"
)

// Message category interfaces for type-based routing in Update().
// External messages (from other packages) cannot implement these interfaces,
// so they are handled separately in the Update() switch.

// PlaybackMessage is implemented by messages related to audio playback.
type PlaybackMessage interface {
	tea.Msg
	playbackMessage()
}

// UserDataMessage is implemented by messages carrying results of account
// requests (favorites, saved queue).
type UserDataMessage interface {
	tea.Msg
	userDataMessage()
}

// TickMsg is sent periodically while playing to refresh the progress bar.
type TickMsg time.Time

func (TickMsg) playbackMessage() {}

// ServiceStateChangedMsg is sent when the transport state changes.
type ServiceStateChangedMsg struct {
	Previous playback.State
	Current  playback.State
}

func (ServiceStateChangedMsg) playbackMessage() {}

// ServiceTrackChangedMsg is sent when a load starts on a track.
type ServiceTrackChangedMsg struct {
	Track *playback.Track
	Index int
}

func (ServiceTrackChangedMsg) playbackMessage() {}

// ServiceQueueChangedMsg is sent when the queue contents or order change.
type ServiceQueueChangedMsg struct {
	Tracks []playback.Track
	Index  int
}

func (ServiceQueueChangedMsg) playbackMessage() {}

// ServiceRefreshMsg is sent for events that only need a redraw (position,
// volume and mode changes).
type ServiceRefreshMsg struct{}

func (ServiceRefreshMsg) playbackMessage() {}

// ServiceErrorMsg is sent when a track fails to load or play.
type ServiceErrorMsg struct {
	Event playback.ErrorEvent
}

func (ServiceErrorMsg) playbackMessage() {}

// ServiceClosedMsg is sent when the playback service is closed.
type ServiceClosedMsg struct{}

func (ServiceClosedMsg) playbackMessage() {}

// PlayResultMsg carries the outcome of a PlayTrack or PlayIndex call.
type PlayResultMsg struct {
	TrackID string
	Err     error
}

func (PlayResultMsg) playbackMessage() {}

// FavoriteToggledMsg carries the outcome of a favorite toggle.
type FavoriteToggledMsg struct {
	TrackID  string
	Title    string
	Favorite bool
	Err      error
}

func (FavoriteToggledMsg) userDataMessage() {}

// FavoritesLoadedMsg is sent when the favorite set was fetched.
type FavoritesLoadedMsg struct {
	Count int
	Err   error
}

func (FavoritesLoadedMsg) userDataMessage() {}

// QueueSavedMsg is sent after the queue was persisted.
type QueueSavedMsg struct {
	Err error
}

func (QueueSavedMsg) userDataMessage() {}

// NoticeExpiredMsg clears the status line notice.
// The Version field is used to ignore stale timeouts when a newer notice
// replaced the one that scheduled it.
type NoticeExpiredMsg struct {
	Version int
}
