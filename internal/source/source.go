// Package source defines the capability interface shared by every audio
// backend the playback controller can drive.
package source

import (
	"time"

	"github.com/llehouerou/essai/internal/playlist"
)

// Source is one audio backend. Exactly one is active at a time.
//
// Load is asynchronous: readiness or failure is reported on Events tagged
// with the load id passed in. Implementations must tag every event with the
// id of the load it belongs to so that the controller can discard events of
// superseded loads.
type Source interface {
	// Kind reports which track locators the source accepts.
	Kind() playlist.SourceKind

	// Load starts loading locator (a media URL or a video id).
	Load(id uint64, locator string)
	// Play starts or resumes the loaded media.
	Play() error
	// Pause suspends playback, keeping the position.
	Pause()
	// Stop halts playback and unloads the media.
	Stop()
	// Seek moves the playback position.
	Seek(pos time.Duration)
	// SetVolume sets the output level in [0,1].
	SetVolume(level float64)
	// SetMuted silences output without altering the level.
	SetMuted(muted bool)

	// Events delivers backend events in the order they are raised.
	Events() <-chan Event

	// Close releases the backend. The events channel is closed.
	Close() error
}

// EventType identifies a source event.
type EventType int

const (
	// CanPlay reports the loaded media is ready to start.
	CanPlay EventType = iota
	// TimeUpdate carries the current position.
	TimeUpdate
	// DurationChange carries a newly known duration.
	DurationChange
	// Ended reports playback reached the end of the media.
	Ended
	// Error reports a load or runtime failure.
	Error
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case CanPlay:
		return "canplay"
	case TimeUpdate:
		return "timeupdate"
	case DurationChange:
		return "durationchange"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a notification raised by a Source.
type Event struct {
	Load     uint64 // id passed to the Load call this event belongs to
	Type     EventType
	Position time.Duration // TimeUpdate
	Duration time.Duration // DurationChange
	Err      error         // Error
}

// EventBufferSize is the capacity sources use for their event channel.
const EventBufferSize = 64
