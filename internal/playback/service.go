// Package playback implements the playback session controller: the single
// owner of what is playing, the queue it was launched from, and the
// transport, volume and mode state, driving one source.Source at a time.
package playback

import (
	"context"
	"errors"
	"time"

	"github.com/llehouerou/essai/internal/playlist"
)

// Track is a queue entry.
type Track = playlist.Track

var (
	// ErrClosed is returned by operations on a closed service.
	ErrClosed = errors.New("playback service closed")
	// ErrSuperseded is returned by PlayTrack or PlayIndex when a newer
	// load replaced it before it became playable.
	ErrSuperseded = errors.New("load superseded")
	// ErrLoadTimeout is reported when a source does not become playable in
	// time.
	ErrLoadTimeout = errors.New("load timed out")
	// ErrNoSource is reported when no source handles a track's kind.
	ErrNoSource = errors.New("no source for track")
)

// Service defines the playback service contract.
//
// Transport commands on an empty session are silent no-ops returning nil.
type Service interface {
	// PlayTrack replaces the queue with queue and starts track. It blocks
	// until the track is playing, fails, is superseded or ctx is done.
	// Cancelling ctx only abandons the wait.
	PlayTrack(ctx context.Context, track *Track, queue []Track, index int) error
	// PlayIndex starts the queue entry at index, keeping the current queue
	// and its shuffle order. It waits like PlayTrack.
	PlayIndex(ctx context.Context, index int) error

	// Playback control
	Toggle() error
	Next() error
	Previous() error
	Seek(pos time.Duration) error
	Stop() error

	// Volume
	SetVolume(level float64)
	ToggleMute() bool

	// Mode control
	SetRepeatMode(mode RepeatMode)
	CycleRepeatMode() RepeatMode
	SetShuffle(enabled bool)
	ToggleShuffle() bool

	// State queries
	Snapshot() Snapshot
	State() State
	Position() time.Duration
	Duration() time.Duration
	CurrentTrack() *Track
	QueueTracks() []Track
	QueueCurrentIndex() int
	RepeatMode() RepeatMode
	Shuffle() bool
	Volume() float64
	Muted() bool

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	State    State
	Track    *Track
	Queue    []Track
	Index    int
	Position time.Duration
	Duration time.Duration
	Volume   float64
	Muted    bool
	Repeat   RepeatMode
	Shuffle  bool
}

// AudibleVolume returns the effective output level.
func (s Snapshot) AudibleVolume() float64 {
	if s.Muted {
		return 0
	}
	return s.Volume
}

// Settings are the user preferences that survive restarts.
type Settings struct {
	Volume  float64
	Muted   bool
	Repeat  RepeatMode
	Shuffle bool
}

// SavedPosition is a persisted playback position.
type SavedPosition struct {
	TrackID  string
	Position time.Duration
}

// PositionStore persists the position of the playing track.
type PositionStore interface {
	// LoadPosition returns the stored record. ok is false when none exists.
	LoadPosition(ctx context.Context) (pos SavedPosition, ok bool, err error)
	// SavePosition overwrites the stored record.
	SavePosition(ctx context.Context, pos SavedPosition) error
}

// Recorder is notified once per successful track start. Errors are logged
// and never affect playback.
type Recorder interface {
	RecordPlay(ctx context.Context, track Track) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, track Track) error

// RecordPlay calls f.
func (f RecorderFunc) RecordPlay(ctx context.Context, track Track) error {
	return f(ctx, track)
}
