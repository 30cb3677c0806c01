// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/lastfm"
	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/player"
	"github.com/llehouerou/essai/internal/ytaudio"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalog operations
	OpTracksLoad    Op = "load tracks"
	OpTrackLoad     Op = "load track"
	OpSearch        Op = "search"
	OpGenresLoad    Op = "load genres"
	OpRecentLoad    Op = "load recently played"
	OpFavoritesLoad Op = "load favorites"

	// Playlist operations
	OpPlaylistsLoad    Op = "load playlists"
	OpPlaylistLoad     Op = "load playlist"
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"

	// Account operations
	OpLogin  Op = "log in"
	OpLogout Op = "log out"

	// Queue operations
	OpQueueLoad Op = "load queue"
	OpQueueSave Op = "save queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"
	OpPlaybackLoad  Op = "play track"

	// Favorites
	OpFavoriteToggle Op = "update favorites"

	// Last.fm
	OpLastfmAuth       Op = "link Last.fm account"
	OpLastfmScrobble   Op = "scrobble"
	OpLastfmNowPlaying Op = "update now playing"

	// Settings
	OpSettingsSave Op = "save settings"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Describe returns a short readable reason for err, translating the
// errors users can act on.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrTokenExpired):
		return "session expired, please log in again"
	case errors.Is(err, api.ErrUnauthorized):
		return "not logged in"
	case errors.Is(err, api.ErrNotFound):
		return "not found"
	case errors.Is(err, playback.ErrLoadTimeout):
		return "track took too long to load"
	case errors.Is(err, player.ErrUnsupportedFormat):
		return "unsupported audio format"
	case errors.Is(err, player.ErrTooLarge):
		return "file too large"
	case errors.Is(err, ytaudio.ErrNoStream):
		return "no playable audio for this video"
	case errors.Is(err, lastfm.ErrNotAuthenticated):
		return "Last.fm account not linked"
	}
	return err.Error()
}

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %s", op, Describe(err))
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %s", op, context, Describe(err))
}
