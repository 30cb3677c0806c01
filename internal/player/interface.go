// internal/player/interface.go
package player

import "time"

// Interface defines the media element contract for dependency injection and
// testing.
type Interface interface {
	// Load starts fetching and decoding url in the background and returns
	// the generation tagging every event of this load.
	Load(url string) uint64
	Play() error
	Pause()
	Stop()
	SeekTo(pos time.Duration)
	SetVolume(level float64)
	SetMuted(muted bool)
	State() State
	Position() time.Duration
	Duration() time.Duration
	Events() <-chan Event
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)

// EventType identifies a media element event.
type EventType int

const (
	// EventReady reports the media is decoded and can play. Duration is set.
	EventReady EventType = iota
	// EventTime is a periodic position report while playing.
	EventTime
	// EventEnded reports playback reached the end.
	EventEnded
	// EventFailed reports a fetch, decode or output error.
	EventFailed
)

// Event is emitted by a media element.
type Event struct {
	Gen      uint64
	Type     EventType
	Position time.Duration
	Duration time.Duration
	Err      error
}
