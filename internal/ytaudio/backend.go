// Package ytaudio implements an embeddable video player backend that plays
// the audio track of external videos. It reports state changes only, like
// an iframe player; position and duration are read on demand.
package ytaudio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/player"
	"github.com/llehouerou/essai/internal/source/embed"
)

// Compile-time check.
var _ embed.Backend = (*Backend)(nil)

// Backend resolves videos with a Resolver and plays them through a media
// element it owns.
type Backend struct {
	r   Resolver
	p   player.Interface
	log *log.Logger

	mu       sync.Mutex
	video    string
	load     uint64 // embed tag of the current video
	gen      uint64 // player generation of the current video
	autoplay bool
	seek     *time.Duration // requested while resolving
	cancel   context.CancelFunc

	events      chan embed.BackendEvent
	emitMu      sync.Mutex
	closed      bool
	done        chan struct{}
	readyCancel context.CancelFunc
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a backend. BackendReady is raised once r reports ready.
func New(p player.Interface, r Resolver, opts ...Option) *Backend {
	b := &Backend{
		r:      r,
		p:      p,
		log:    log.New(io.Discard),
		events: make(chan embed.BackendEvent, 16),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.readyCancel = cancel
	b.wg.Add(2)
	go func() {
		defer b.wg.Done()
		b.waitReady(ctx)
	}()
	go func() {
		defer b.wg.Done()
		b.forward()
	}()
	return b
}

func (b *Backend) waitReady(ctx context.Context) {
	if err := b.r.Ready(ctx); err != nil {
		b.log.Error("video backend unavailable", "err", err)
		return
	}
	b.emit(embed.BackendEvent{Type: embed.BackendReady})
}

// LoadVideo resolves videoID and loads its audio. Events of this load are
// tagged with load.
func (b *Backend) LoadVideo(load uint64, videoID string) {
	b.mu.Lock()
	if b.isClosed() {
		b.mu.Unlock()
		return
	}
	b.resetLocked()
	b.video, b.load = videoID, load
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.resolve(ctx, load, videoID)
	}()
}

func (b *Backend) resolve(ctx context.Context, load uint64, videoID string) {
	url, err := b.r.Resolve(ctx, videoID)

	b.mu.Lock()
	if ctx.Err() != nil || b.load != load {
		b.mu.Unlock()
		return
	}
	b.cancel = nil
	if err != nil {
		b.mu.Unlock()
		b.log.Warn("resolve failed", "video", videoID, "err", err)
		b.emit(embed.BackendEvent{Type: embed.BackendError, Load: load, VideoID: videoID, Err: err})
		return
	}
	b.gen = b.p.Load(url)
	if b.seek != nil {
		b.p.SeekTo(*b.seek)
		b.seek = nil
	}
	b.mu.Unlock()
	b.log.Debug("resolved", "video", videoID)
}

// resetLocked abandons the current video.
func (b *Backend) resetLocked() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.video = ""
	b.load = 0
	b.gen = 0
	b.autoplay = false
	b.seek = nil
}

// Play starts playback, or once the video is loaded.
func (b *Backend) Play() {
	b.mu.Lock()
	if b.video == "" {
		b.mu.Unlock()
		return
	}
	if b.gen == 0 || !b.p.State().CanPlay() {
		b.autoplay = true
		b.mu.Unlock()
		return
	}
	load, video := b.load, b.video
	err := b.p.Play()
	b.mu.Unlock()

	if err != nil {
		b.emit(embed.BackendEvent{Type: embed.BackendError, Load: load, VideoID: video, Err: err})
		return
	}
	b.emit(embed.BackendEvent{Type: embed.BackendStateChange, Load: load, VideoID: video, State: embed.StatePlaying})
}

func (b *Backend) Pause() {
	b.mu.Lock()
	b.autoplay = false
	if b.video == "" || !b.p.State().CanPause() {
		b.mu.Unlock()
		return
	}
	load, video := b.load, b.video
	b.p.Pause()
	b.mu.Unlock()
	b.emit(embed.BackendEvent{Type: embed.BackendStateChange, Load: load, VideoID: video, State: embed.StatePaused})
}

func (b *Backend) Stop() {
	b.mu.Lock()
	b.resetLocked()
	b.mu.Unlock()
	b.p.Stop()
}

func (b *Backend) SeekTo(pos time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.video != "" && b.gen == 0 {
		b.seek = &pos
		return
	}
	b.p.SeekTo(pos)
}

func (b *Backend) SetVolume(level float64) { b.p.SetVolume(level) }

func (b *Backend) SetMuted(muted bool) { b.p.SetMuted(muted) }

func (b *Backend) CurrentTime() time.Duration { return b.p.Position() }

func (b *Backend) Duration() time.Duration { return b.p.Duration() }

func (b *Backend) Events() <-chan embed.BackendEvent { return b.events }

// Close releases the player and closes the events channel.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.resetLocked()
		close(b.done)
		b.mu.Unlock()
		b.readyCancel()
		err = b.p.Close()
		b.wg.Wait()

		b.emitMu.Lock()
		b.closed = true
		close(b.events)
		b.emitMu.Unlock()
	})
	return err
}

// forward turns media element events of the current video into player
// state changes. Time reports are not forwarded.
func (b *Backend) forward() {
	for e := range b.p.Events() {
		b.mu.Lock()
		if b.gen == 0 || e.Gen != b.gen {
			b.mu.Unlock()
			continue
		}
		load, video := b.load, b.video

		var out embed.BackendEvent
		switch e.Type {
		case player.EventReady:
			state := embed.StateCued
			if b.autoplay {
				b.autoplay = false
				if err := b.p.Play(); err != nil {
					b.mu.Unlock()
					b.emit(embed.BackendEvent{Type: embed.BackendError, Load: load, VideoID: video, Err: err})
					continue
				}
				state = embed.StatePlaying
			}
			out = embed.BackendEvent{Type: embed.BackendStateChange, Load: load, VideoID: video, State: state}
		case player.EventEnded:
			out = embed.BackendEvent{Type: embed.BackendStateChange, Load: load, VideoID: video, State: embed.StateEnded}
		case player.EventFailed:
			out = embed.BackendEvent{Type: embed.BackendError, Load: load, VideoID: video, Err: e.Err}
		default:
			b.mu.Unlock()
			continue
		}
		b.mu.Unlock()
		b.emit(out)
	}
}

func (b *Backend) isClosed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *Backend) emit(e embed.BackendEvent) {
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.events <- e:
	case <-b.done:
	}
}
