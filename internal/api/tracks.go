package api

import (
	"context"
	"net/http"
	"net/url"
)

// Tracks lists the catalog, filtered by genre when non-empty.
func (c *Client) Tracks(ctx context.Context, genre string) ([]Track, error) {
	var query url.Values
	if genre != "" {
		query = url.Values{"genre": {genre}}
	}
	var tracks []Track
	if err := c.do(ctx, http.MethodGet, "/tracks", query, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Track fetches one track.
func (c *Client) Track(ctx context.Context, id string) (*Track, error) {
	var t Track
	if err := c.do(ctx, http.MethodGet, "/tracks/"+escape(id), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Featured lists the featured tracks.
func (c *Client) Featured(ctx context.Context) ([]Track, error) {
	var tracks []Track
	if err := c.do(ctx, http.MethodGet, "/tracks/featured", nil, nil, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// Genres lists the catalog genres.
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	if err := c.do(ctx, http.MethodGet, "/tracks/genres", nil, nil, &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// Search finds tracks matching query.
func (c *Client) Search(ctx context.Context, query string) ([]Track, error) {
	var tracks []Track
	if err := c.do(ctx, http.MethodPost, "/tracks/search", nil, searchRequest{Query: query}, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// IncrementPlay bumps the track's play counter.
func (c *Client) IncrementPlay(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/tracks/"+escape(id)+"/play", nil, nil, nil)
}
