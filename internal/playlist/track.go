package playlist

import (
	"encoding/json"
	"time"
)

// SourceKind identifies which backend supplies a track's audio.
type SourceKind int

const (
	// SourceStream is a direct streamable media URL.
	SourceStream SourceKind = iota
	// SourceEmbed is an external video platform id used as an audio source.
	SourceEmbed
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceStream:
		return "stream"
	case SourceEmbed:
		return "embed"
	default:
		return "unknown"
	}
}

// Track is a catalog track. Tracks are immutable once fetched; the queue
// holds copies.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Genre    string
	AudioURL string // direct media URL
	VideoID  string // external video id
	CoverURL string
	Duration time.Duration // catalog value, the loaded source is authoritative
}

// Kind reports which backend plays the track.
func (t Track) Kind() SourceKind {
	if t.AudioURL == "" && t.VideoID != "" {
		return SourceEmbed
	}
	return SourceStream
}

// Locator returns the URL or video id handed to the backend.
func (t Track) Locator() string {
	if t.Kind() == SourceEmbed {
		return t.VideoID
	}
	return t.AudioURL
}

// DisplayArtist returns the artist or a placeholder.
func (t Track) DisplayArtist() string {
	if t.Artist == "" {
		return "Unknown Artist"
	}
	return t.Artist
}

type trackJSON struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist,omitempty"`
	Genre    string  `json:"genre,omitempty"`
	AudioURL string  `json:"audio_url,omitempty"`
	VideoID  string  `json:"youtube_id,omitempty"`
	CoverURL string  `json:"cover_image_url,omitempty"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// MarshalJSON encodes the track in the REST API shape.
func (t Track) MarshalJSON() ([]byte, error) {
	return json.Marshal(trackJSON{
		ID:       t.ID,
		Title:    t.Title,
		Artist:   t.Artist,
		Genre:    t.Genre,
		AudioURL: t.AudioURL,
		VideoID:  t.VideoID,
		CoverURL: t.CoverURL,
		Duration: t.Duration.Seconds(),
	})
}

// UnmarshalJSON decodes the REST API shape. Numeric ids are accepted.
func (t *Track) UnmarshalJSON(data []byte) error {
	var raw struct {
		trackJSON
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*t = Track{
		ID:       id,
		Title:    raw.Title,
		Artist:   raw.Artist,
		Genre:    raw.Genre,
		AudioURL: raw.AudioURL,
		VideoID:  raw.VideoID,
		CoverURL: raw.CoverURL,
		Duration: time.Duration(raw.Duration * float64(time.Second)),
	}
	return nil
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
