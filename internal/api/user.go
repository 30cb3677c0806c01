package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/llehouerou/essai/internal/playback"
)

var _ playback.Recorder = (*Client)(nil)

// Favorites lists the user's favorite tracks.
func (c *Client) Favorites(ctx context.Context) ([]Track, error) {
	var tracks []Track
	if err := c.do(ctx, http.MethodGet, "/user/favorites", nil, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AddFavorite marks a track as favorite.
func (c *Client) AddFavorite(ctx context.Context, trackID string) error {
	return c.do(ctx, http.MethodPost, "/user/favorites/"+escape(trackID), nil, nil, nil)
}

// RemoveFavorite unmarks a favorite track.
func (c *Client) RemoveFavorite(ctx context.Context, trackID string) error {
	return c.do(ctx, http.MethodDelete, "/user/favorites/"+escape(trackID), nil, nil, nil)
}

// RecentlyPlayed lists the user's history, most recent first.
func (c *Client) RecentlyPlayed(ctx context.Context) ([]PlayedTrack, error) {
	var tracks []PlayedTrack
	if err := c.do(ctx, http.MethodGet, "/user/recently-played", nil, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// AddRecentlyPlayed appends a track to the history.
func (c *Client) AddRecentlyPlayed(ctx context.Context, trackID string) error {
	return c.do(ctx, http.MethodPost, "/user/recently-played", nil, trackRef{TrackID: trackID}, nil)
}

// RecordPlay adds the track to the history and bumps its play count.
// Anonymous sessions only count the play.
func (c *Client) RecordPlay(ctx context.Context, track Track) error {
	var errs []error
	if c.HasToken() {
		errs = append(errs, c.AddRecentlyPlayed(ctx, track.ID))
	}
	errs = append(errs, c.IncrementPlay(ctx, track.ID))
	return errors.Join(errs...)
}
