// Package stream adapts a URL-addressed media element to source.Source.
package stream

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/player"
	"github.com/llehouerou/essai/internal/playlist"
	"github.com/llehouerou/essai/internal/source"
)

// Compile-time check.
var _ source.Source = (*Source)(nil)

// Source plays direct media URLs through a player.Interface it owns.
type Source struct {
	p   player.Interface
	log *log.Logger

	mu   sync.Mutex
	load uint64 // controller load id
	gen  uint64 // player generation of that load, 0 when unloaded

	events    chan source.Event
	done      chan struct{}
	fwdDone   chan struct{}
	closeOnce sync.Once
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// New wraps p. The source takes ownership of p and closes it on Close.
func New(p player.Interface, opts ...Option) *Source {
	s := &Source{
		p:       p,
		log:     log.New(io.Discard),
		events:  make(chan source.Event, source.EventBufferSize),
		done:    make(chan struct{}),
		fwdDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.forward()
	return s
}

func (s *Source) Kind() playlist.SourceKind { return playlist.SourceStream }

// Load starts loading url. Events of any earlier load are discarded from
// here on.
func (s *Source) Load(id uint64, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load = id
	s.gen = s.p.Load(url)
	s.log.Debug("load", "id", id, "gen", s.gen, "url", url)
}

func (s *Source) Play() error { return s.p.Play() }

func (s *Source) Pause() { s.p.Pause() }

func (s *Source) Stop() {
	s.mu.Lock()
	s.gen = 0
	s.mu.Unlock()
	s.p.Stop()
}

func (s *Source) Seek(pos time.Duration) { s.p.SeekTo(pos) }

func (s *Source) SetVolume(level float64) { s.p.SetVolume(level) }

func (s *Source) SetMuted(muted bool) { s.p.SetMuted(muted) }

func (s *Source) Events() <-chan source.Event { return s.events }

// Close closes the player and then the events channel.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.p.Close()
		<-s.fwdDone
	})
	return err
}

// forward translates player events of the current generation until the
// player's channel closes.
func (s *Source) forward() {
	defer close(s.fwdDone)
	defer close(s.events)
	for e := range s.p.Events() {
		s.mu.Lock()
		current := s.gen != 0 && e.Gen == s.gen
		id := s.load
		s.mu.Unlock()
		if !current {
			continue
		}
		for _, out := range translate(id, e) {
			select {
			case s.events <- out:
			case <-s.done:
				return
			}
		}
	}
}

// translate maps one player event to the source vocabulary. Readiness
// reports the duration before CanPlay.
func translate(id uint64, e player.Event) []source.Event {
	switch e.Type {
	case player.EventReady:
		return []source.Event{
			{Load: id, Type: source.DurationChange, Duration: e.Duration},
			{Load: id, Type: source.CanPlay},
		}
	case player.EventTime:
		return []source.Event{{Load: id, Type: source.TimeUpdate, Position: e.Position}}
	case player.EventEnded:
		return []source.Event{{Load: id, Type: source.Ended}}
	case player.EventFailed:
		return []source.Event{{Load: id, Type: source.Error, Err: e.Err}}
	}
	return nil
}
