package lastfm

import (
	"time"

	"github.com/llehouerou/essai/internal/playlist"
)

// Scrobble thresholds from the Last.fm API rules.
const (
	minScrobbleDuration = 30 * time.Second
	maxScrobbleWait     = 4 * time.Minute
)

// ScrobbleTrack contains track metadata for scrobbling.
type ScrobbleTrack struct {
	Artist    string
	Track     string
	Duration  time.Duration
	Timestamp time.Time // When playback started
}

// FromTrack builds the scrobble metadata of a catalog track.
func FromTrack(t playlist.Track, started time.Time) ScrobbleTrack {
	return ScrobbleTrack{
		Artist:    t.DisplayArtist(),
		Track:     t.Title,
		Duration:  t.Duration,
		Timestamp: started,
	}
}

// ShouldScrobble reports whether played time qualifies a track of the
// given duration for a scrobble: longer than 30 seconds and played for
// half its length or four minutes.
func ShouldScrobble(duration, played time.Duration) bool {
	if duration <= minScrobbleDuration {
		return false
	}
	return played >= min(duration/2, maxScrobbleWait)
}
