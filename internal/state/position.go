package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/llehouerou/essai/internal/playback"
)

// positionRecord is the stored shape of the playback position.
type positionRecord struct {
	TrackID  string  `json:"trackId"`
	Position float64 `json:"position"` // seconds
}

// EncodePosition returns the stored form of p.
func EncodePosition(p playback.SavedPosition) (string, error) {
	b, err := json.Marshal(positionRecord{TrackID: p.TrackID, Position: p.Position.Seconds()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodePosition parses the stored form of a position.
func DecodePosition(s string) (playback.SavedPosition, error) {
	var r positionRecord
	if err := json.Unmarshal([]byte(s), &r); err != nil {
		return playback.SavedPosition{}, fmt.Errorf("decoding saved position: %w", err)
	}
	return playback.SavedPosition{
		TrackID:  r.TrackID,
		Position: time.Duration(r.Position * float64(time.Second)),
	}, nil
}

// LoadPosition returns the stored position record.
func (m *Manager) LoadPosition(ctx context.Context) (playback.SavedPosition, bool, error) {
	v, ok, err := getValue(ctx, m.db, PositionKey)
	if err != nil || !ok {
		return playback.SavedPosition{}, false, err
	}
	p, err := DecodePosition(v)
	if err != nil {
		return playback.SavedPosition{}, false, err
	}
	return p, true, nil
}

// SavePosition overwrites the stored position record.
func (m *Manager) SavePosition(ctx context.Context, p playback.SavedPosition) error {
	v, err := EncodePosition(p)
	if err != nil {
		return err
	}
	return setValue(ctx, m.db, PositionKey, v)
}
