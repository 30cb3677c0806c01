package api

import (
	"context"
	"net/http"
)

// Playlists lists the user's playlists without their tracks.
func (c *Client) Playlists(ctx context.Context) ([]Playlist, error) {
	var lists []Playlist
	if err := c.do(ctx, http.MethodGet, "/playlists", nil, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Playlist fetches a playlist with its tracks.
func (c *Client) Playlist(ctx context.Context, id string) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodGet, "/playlists/"+escape(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlaylist creates an empty playlist.
func (c *Client) CreatePlaylist(ctx context.Context, in PlaylistInput) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodPost, "/playlists", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlaylist renames or redescribes a playlist.
func (c *Client) UpdatePlaylist(ctx context.Context, id string, in PlaylistInput) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodPut, "/playlists/"+escape(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePlaylist removes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/playlists/"+escape(id), nil, nil, nil)
}

// AddToPlaylist appends a track.
func (c *Client) AddToPlaylist(ctx context.Context, playlistID, trackID string) error {
	path := "/playlists/" + escape(playlistID) + "/tracks"
	return c.do(ctx, http.MethodPost, path, nil, trackRef{TrackID: trackID}, nil)
}

// RemoveFromPlaylist removes a track.
func (c *Client) RemoveFromPlaylist(ctx context.Context, playlistID, trackID string) error {
	path := "/playlists/" + escape(playlistID) + "/tracks/" + escape(trackID)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
