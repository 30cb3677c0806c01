package playback

import "time"

// StateChange is emitted when the transport state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when a load starts on a track.
//
// Emitted by:
//   - PlayTrack and PlayIndex
//   - Next/Previous when they move to another index or reload
//   - auto-advance after a failure
//   - Ended, when the queue advances on its own
//
// NOT emitted by:
//   - repeat one restarts and "go to start" on Previous (only a seek)
//   - Toggle/Stop
//
// The host handles track-related side effects (notifications, now playing)
// in response to this event.
type TrackChange struct {
	Previous      *Track
	Current       *Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents or order change.
type QueueChange struct {
	Tracks []Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	RepeatMode RepeatMode
	Shuffle    bool
}

// VolumeChange is emitted when the volume level or mute flag changes.
type VolumeChange struct {
	Volume float64
	Muted  bool
}

// PositionChange is emitted when a seek occurs, including a restored
// position.
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when a load or playback error occurs.
type ErrorEvent struct {
	Operation string // e.g., "load", "play"
	TrackID   string
	Title     string
	Err       error
	Skipping  bool // the next queue entry will be tried after the retry delay
}
