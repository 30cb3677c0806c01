// internal/playback/state.go
package playback

import "github.com/llehouerou/essai/internal/playlist"

// State represents the transport state.
//
//	Idle ──PlayTrack──► Loading ──ready──► Playing ◄──Toggle──► Paused
//	                      │                  │
//	                      └─timeout/error────┴──► Failed ──retry──► Loading
//
// Next at the end of the queue without repeat leaves the track loaded in
// Paused. Stop moves any state to Stopped.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateStopped
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a source is loaded (playing or paused).
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// RepeatMode defines the repeat behavior.
type RepeatMode = playlist.RepeatMode

const (
	RepeatOff = playlist.RepeatOff
	RepeatAll = playlist.RepeatAll
	RepeatOne = playlist.RepeatOne
)
