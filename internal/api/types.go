// Package api provides a client for the essai catalog server.
package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/llehouerou/essai/internal/playlist"
)

// Track is a catalog track.
type Track = playlist.Track

// ID is a server identifier. The server sends numbers or strings.
type ID string

// UnmarshalJSON accepts JSON strings and numbers.
func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("decode id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as text.
func (id ID) String() string {
	return string(id)
}

// Credentials are the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// User is the authenticated account.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Session is returned by login and register.
type Session struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// Playlist is a user playlist. Tracks is only filled by Playlist.
type Playlist struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Tracks      []Track `json:"tracks,omitempty"`
}

// PlaylistInput creates or updates a playlist.
type PlaylistInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type trackRef struct {
	TrackID string `json:"trackId"`
}

// PlayedTrack is a history entry.
type PlayedTrack struct {
	Track
	PlayedAt time.Time
}

var playedAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes a track object carrying a played_at timestamp.
// Unparseable timestamps leave PlayedAt zero.
func (p *PlayedTrack) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, &p.Track); err != nil {
		return err
	}
	var raw struct {
		PlayedAt string `json:"played_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.PlayedAt = time.Time{}
	for _, layout := range playedAtLayouts {
		if t, err := time.Parse(layout, raw.PlayedAt); err == nil {
			p.PlayedAt = t
			break
		}
	}
	return nil
}
