// Package favorites keeps the user's favorite set in sync with the server.
// Toggles apply locally at once; when several toggles of the same track
// race, the last one issued wins.
package favorites

import (
	"context"
	"sync"

	"github.com/llehouerou/essai/internal/playlist"
)

// API is the server side of the favorite set.
type API interface {
	Favorites(ctx context.Context) ([]playlist.Track, error)
	AddFavorite(ctx context.Context, trackID string) error
	RemoveFavorite(ctx context.Context, trackID string) error
}

// Set is the local favorite set.
type Set struct {
	api API

	mu  sync.Mutex
	ids map[string]bool
	seq map[string]uint64
}

// New creates an empty set backed by api.
func New(api API) *Set {
	return &Set{
		api: api,
		ids: make(map[string]bool),
		seq: make(map[string]uint64),
	}
}

// Refresh replaces the local set with the server's.
func (s *Set) Refresh(ctx context.Context) ([]playlist.Track, error) {
	tracks, err := s.api.Favorites(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.ids)
	for _, t := range tracks {
		s.ids[t.ID] = true
	}
	return tracks, nil
}

// Contains reports whether the track is a favorite.
func (s *Set) Contains(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids[trackID]
}

// Len returns the number of favorites.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Toggle flips the track's favorite state and returns the new state. On
// server failure the flip is reverted unless a later toggle of the same
// track superseded it.
func (s *Set) Toggle(ctx context.Context, track playlist.Track) (bool, error) {
	s.mu.Lock()
	want := !s.ids[track.ID]
	s.set(track.ID, want)
	s.seq[track.ID]++
	seq := s.seq[track.ID]
	s.mu.Unlock()

	var err error
	if want {
		err = s.api.AddFavorite(ctx, track.ID)
	} else {
		err = s.api.RemoveFavorite(ctx, track.ID)
	}
	if err == nil {
		return want, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq[track.ID] == seq {
		s.set(track.ID, !want)
	}
	return s.ids[track.ID], err
}

func (s *Set) set(id string, on bool) {
	if on {
		s.ids[id] = true
		return
	}
	delete(s.ids, id)
}
