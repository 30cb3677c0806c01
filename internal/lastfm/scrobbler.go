package lastfm

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/state"
)

const maxAttempts = 10

// API is the subset of Client used by the Scrobbler.
type API interface {
	UpdateNowPlaying(track ScrobbleTrack) error
	Scrobble(track ScrobbleTrack) error
}

// PendingStore queues scrobbles that could not be submitted.
type PendingStore interface {
	AddPendingScrobble(s state.PendingScrobble) error
	GetPendingScrobbles() ([]state.PendingScrobble, error)
	DeletePendingScrobble(id int64) error
	UpdatePendingScrobbleAttempt(id int64, errMsg string) error
}

// Compile-time check.
var _ playback.Recorder = (*Scrobbler)(nil)

// Scrobbler reports plays to Last.fm. It receives track starts as a
// playback.Recorder and scrobbles once enough of the track has played.
type Scrobbler struct {
	api   API
	store PendingStore
	log   *log.Logger
	now   func() time.Time

	mu        sync.Mutex
	current   *playback.Track
	startedAt time.Time
	scrobbled bool
}

// NewScrobbler creates a scrobbler. store may be nil, failed scrobbles
// are then dropped.
func NewScrobbler(api API, store PendingStore, logger *log.Logger) *Scrobbler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Scrobbler{api: api, store: store, log: logger, now: time.Now}
}

// RecordPlay starts tracking t and sends "now playing".
func (s *Scrobbler) RecordPlay(_ context.Context, t playback.Track) error {
	s.mu.Lock()
	s.current = &t
	s.startedAt = s.now()
	s.scrobbled = false
	s.mu.Unlock()

	return s.api.UpdateNowPlaying(FromTrack(t, s.startedAt))
}

// Progress reports the position of the playing track. The track is
// scrobbled once, when the position qualifies. duration overrides the
// catalog value when known.
func (s *Scrobbler) Progress(trackID string, position, duration time.Duration) {
	s.mu.Lock()
	if s.current == nil || s.current.ID != trackID || s.scrobbled {
		s.mu.Unlock()
		return
	}
	track := FromTrack(*s.current, s.startedAt)
	if duration > 0 {
		track.Duration = duration
	}
	if !ShouldScrobble(track.Duration, position) {
		s.mu.Unlock()
		return
	}
	s.scrobbled = true
	s.mu.Unlock()

	if err := s.api.Scrobble(track); err != nil {
		s.log.Warn("scrobble failed, queued", "track", track.Track, "err", err)
		s.enqueue(track)
	}
}

func (s *Scrobbler) enqueue(track ScrobbleTrack) {
	if s.store == nil {
		return
	}
	err := s.store.AddPendingScrobble(state.PendingScrobble{
		Artist:       track.Artist,
		Track:        track.Track,
		DurationSecs: int(track.Duration.Seconds()),
		Timestamp:    track.Timestamp,
	})
	if err != nil {
		s.log.Warn("queueing scrobble", "err", err)
	}
}

// RetryPending resubmits queued scrobbles. Entries that failed too often
// are skipped.
func (s *Scrobbler) RetryPending() (succeeded, failed int, err error) {
	if s.store == nil {
		return 0, 0, nil
	}
	pending, err := s.store.GetPendingScrobbles()
	if err != nil {
		return 0, 0, err
	}

	for i := range pending {
		p := &pending[i]
		if p.Attempts >= maxAttempts {
			continue
		}

		track := ScrobbleTrack{
			Artist:    p.Artist,
			Track:     p.Track,
			Duration:  time.Duration(p.DurationSecs) * time.Second,
			Timestamp: p.Timestamp,
		}
		if err := s.api.Scrobble(track); err != nil {
			failed++
			_ = s.store.UpdatePendingScrobbleAttempt(p.ID, err.Error())
		} else {
			succeeded++
			_ = s.store.DeletePendingScrobble(p.ID)
		}
	}
	return succeeded, failed, nil
}
