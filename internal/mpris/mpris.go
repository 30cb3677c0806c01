//go:build linux

// Package mpris exposes the playback session on the MPRIS D-Bus interface
// so media keys and desktop widgets can drive it.
package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"

	"github.com/llehouerou/essai/internal/playback"
)

// Adapter connects the playback service to MPRIS over D-Bus.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	sub    *playback.Subscription
	logger *log.Logger
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates and starts a new MPRIS adapter. logger may be nil.
func New(service playback.Service, logger *log.Logger) (*Adapter, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &Adapter{
		logger: logger.With("component", "mpris"),
		done:   make(chan struct{}),
	}

	a.server = server.NewServer("essai", &rootAdapter{}, &playerAdapter{service: service, logger: a.logger})
	a.events = events.NewEventHandler(a.server)
	a.sub = service.Subscribe()

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		if err := a.server.Listen(); err != nil {
			a.logger.Warn("mpris listen failed", "err", err)
		}
	}()
	go func() {
		defer a.wg.Done()
		a.watch()
	}()

	return a, nil
}

// watch forwards session events as PropertiesChanged signals.
func (a *Adapter) watch() {
	for {
		var err error
		select {
		case <-a.done:
			return
		case <-a.sub.Done:
			return
		case <-a.sub.StateChanged:
			err = a.events.Player.OnPlayPause()
		case <-a.sub.TrackChanged:
			err = a.events.Player.OnTitle()
		case <-a.sub.VolumeChanged:
			err = a.events.Player.OnVolume()
		case e := <-a.sub.PositionChanged:
			err = a.events.Player.OnSeek(types.Microseconds(e.Position.Microseconds()))
		case <-a.sub.ModeChanged:
			err = a.events.Player.OnOptions()
		case <-a.sub.QueueChanged:
			err = a.events.Player.OnOptions()
		case <-a.sub.Error:
		}
		if err != nil {
			a.logger.Debug("mpris signal failed", "err", err)
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	close(a.done)
	err := a.server.Stop()
	a.wg.Wait()
	return err
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // Not supported
}

func (r *rootAdapter) Quit() error {
	return nil // Not supported - app manages its own lifecycle
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "Essai", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp4", "audio/ogg", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and optional interfaces.
type playerAdapter struct {
	service playback.Service
	logger  *log.Logger
}

func (p *playerAdapter) Next() error {
	return p.service.Next()
}

func (p *playerAdapter) Previous() error {
	return p.service.Previous()
}

func (p *playerAdapter) Pause() error {
	if p.service.State() == playback.StatePlaying {
		return p.service.Toggle()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	return p.resume(true)
}

func (p *playerAdapter) Stop() error {
	return p.service.Stop()
}

func (p *playerAdapter) Play() error {
	return p.resume(false)
}

// resume resumes a paused track or restarts a stopped or failed one. With
// toggle set a playing track is paused.
func (p *playerAdapter) resume(toggle bool) error {
	snap := p.service.Snapshot()
	switch snap.State {
	case playback.StatePlaying:
		if toggle {
			return p.service.Toggle()
		}
		return nil
	case playback.StatePaused:
		return p.service.Toggle()
	case playback.StateLoading:
		return nil
	}
	if snap.Track == nil {
		return nil
	}
	// Restarting blocks until the source is ready; D-Bus calls must not.
	go func() {
		if err := p.service.PlayIndex(context.Background(), snap.Index); err != nil {
			p.logger.Debug("mpris restart failed", "index", snap.Index, "err", err)
		}
	}()
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	return p.service.Seek(p.service.Position() + time.Duration(offset)*time.Microsecond)
}

func (p *playerAdapter) SetPosition(trackID string, position types.Microseconds) error {
	track := p.service.CurrentTrack()
	if track == nil || trackID != formatTrackID(track.ID) {
		return nil // stale request for another track
	}
	return p.service.Seek(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.service.State() {
	case playback.StatePlaying:
		return types.PlaybackStatusPlaying, nil
	case playback.StatePaused, playback.StateLoading:
		return types.PlaybackStatusPaused, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	track := p.service.CurrentTrack()
	if track == nil {
		return types.Metadata{}, nil
	}

	length := p.service.Duration()
	if length <= 0 {
		length = track.Duration
	}

	return types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(track.ID)),
		Length:  types.Microseconds(length.Microseconds()),
		Title:   track.Title,
		Artist:  []string{track.DisplayArtist()},
		ArtUrl:  artURL(*track),
	}, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.service.Snapshot().AudibleVolume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.service.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.service.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	n := len(p.service.QueueTracks())
	if n == 0 {
		return false, nil
	}
	return p.service.RepeatMode() != playback.RepeatOff || p.service.QueueCurrentIndex() < n-1, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.service.QueueTracks()) > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.service.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return p.service.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return p.service.State().IsActive(), nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	switch p.service.RepeatMode() {
	case playback.RepeatOne:
		return types.LoopStatusTrack, nil
	case playback.RepeatAll:
		return types.LoopStatusPlaylist, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	switch status {
	case types.LoopStatusNone:
		p.service.SetRepeatMode(playback.RepeatOff)
	case types.LoopStatusTrack:
		p.service.SetRepeatMode(playback.RepeatOne)
	case types.LoopStatusPlaylist:
		p.service.SetRepeatMode(playback.RepeatAll)
	}
	return nil
}

// Shuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) Shuffle() (bool, error) {
	return p.service.Shuffle(), nil
}

// SetShuffle implements OrgMprisMediaPlayer2PlayerAdapterShuffle.
func (p *playerAdapter) SetShuffle(shuffle bool) error {
	p.service.SetShuffle(shuffle)
	return nil
}

func formatTrackID(id string) string {
	h := fnv.New64a()
	h.Write([]byte(id))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
