package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/llehouerou/essai/internal/playlist"
)

const (
	trackTimeout = 5000
	errorTimeout = 8000
)

// Player turns playback events into notifications. Each notice replaces
// the previous one so the desktop shows a single entry.
type Player struct {
	n      Notifier
	covers *CoverCache

	mu     sync.Mutex
	lastID uint32
}

// NewPlayer wraps n. covers may be nil to skip cover art.
func NewPlayer(n Notifier, covers *CoverCache) *Player {
	return &Player{n: n, covers: covers}
}

// TrackStarted announces the track that just started.
func (p *Player) TrackStarted(ctx context.Context, t playlist.Track) error {
	icon := "audio-x-generic"
	if p.covers != nil {
		if path, err := p.covers.Path(ctx, t.CoverURL); err == nil && path != "" {
			icon = path
		}
	}
	return p.send(Notification{
		Title:   t.Title,
		Body:    t.DisplayArtist(),
		Icon:    icon,
		Timeout: trackTimeout,
		Urgency: UrgencyLow,
	})
}

// LoadFailed reports a track that could not be played.
func (p *Player) LoadFailed(title, reason string, skipping bool) error {
	body := reason
	if skipping {
		body += "\nSkipping to the next track"
	}
	return p.send(Notification{
		Title:   fmt.Sprintf("Cannot play %q", title),
		Body:    body,
		Icon:    "dialog-warning",
		Timeout: errorTimeout,
		Urgency: UrgencyNormal,
	})
}

func (p *Player) send(n Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	n.ReplacesID = p.lastID
	id, err := p.n.Notify(n)
	if err != nil {
		return err
	}
	if id != 0 {
		p.lastID = id
	}
	return nil
}
