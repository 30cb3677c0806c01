package embed

import (
	"fmt"
	"time"
)

// PlayerState is the state reported by an embeddable video player.
type PlayerState int

const (
	StateUnstarted PlayerState = iota
	StateCued
	StateBuffering
	StatePlaying
	StatePaused
	StateEnded
)

// String returns the state name.
func (s PlayerState) String() string {
	switch s {
	case StateUnstarted:
		return "unstarted"
	case StateCued:
		return "cued"
	case StateBuffering:
		return "buffering"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	default:
		return fmt.Sprintf("PlayerState(%d)", int(s))
	}
}

// BackendEventType identifies a backend notification.
type BackendEventType int

const (
	// BackendReady is raised once, when the player accepts commands.
	BackendReady BackendEventType = iota
	// BackendStateChange reports a new player state for a video.
	BackendStateChange
	// BackendError reports a failure for a video.
	BackendError
)

// BackendEvent is a notification from a Backend. The player does not push
// time updates; position and duration are read with CurrentTime and
// Duration.
type BackendEvent struct {
	Type    BackendEventType
	// Load is the tag passed to the LoadVideo call the event belongs to,
	// zero for BackendReady.
	Load    uint64
	VideoID string
	State   PlayerState
	Err     error
}

// Backend is an embeddable video player used only for its audio track.
// Commands issued before BackendReady are not allowed.
type Backend interface {
	// LoadVideo cues the video. Readiness is reported by a state change
	// to Cued, or to Playing when playback was requested. Every later
	// event for this load carries load.
	LoadVideo(load uint64, videoID string)
	Play()
	Pause()
	Stop()
	SeekTo(pos time.Duration)
	SetVolume(level float64)
	SetMuted(muted bool)
	CurrentTime() time.Duration
	Duration() time.Duration
	Events() <-chan BackendEvent
	Close() error
}
