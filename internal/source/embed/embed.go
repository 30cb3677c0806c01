// Package embed adapts an embeddable video player to source.Source.
//
// Commands issued before the player signals readiness are buffered and
// coalesced, latest wins: one load, one transport intent (play or pause),
// one seek, one volume and one mute. On readiness they are replayed in the
// order volume, mute, load, seek, play. A pause intent replays nothing. A
// Stop before readiness drops the pending load, seek and intent.
//
// Backend events are matched to the load that raised them by a tag handed
// to LoadVideo, so reloading the same video ignores the previous load's
// events.
//
// The player does not push time updates, so while it reports Playing the
// source polls CurrentTime and Duration at a fixed interval. Polling stops
// on any other state, on Stop and on Close.
package embed

import (
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/playlist"
	"github.com/llehouerou/essai/internal/source"
)

// DefaultPollInterval is the time update period while playing.
const DefaultPollInterval = 100 * time.Millisecond

// Compile-time check.
var _ source.Source = (*Source)(nil)

type intent int

const (
	intentNone intent = iota
	intentPlay
	intentPause
)

// pending holds commands issued before the backend is ready.
type pending struct {
	load    bool
	loadID  uint64
	video   string
	intent  intent
	seek    bool
	seekPos time.Duration
	volume  *float64
	muted   *bool
}

// Source plays external videos through a Backend.
type Source struct {
	b            Backend
	log          *log.Logger
	pollInterval time.Duration

	mu       sync.Mutex
	ready    bool
	pending  pending
	load     uint64
	gen      uint64 // backend tag of the current load
	video    string // current video, empty when stopped
	canPlay  bool   // CanPlay raised for the current video
	polling  bool
	duration time.Duration // last reported duration

	events    chan source.Event
	wake      chan struct{}
	done      chan struct{}
	runDone   chan struct{}
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

// WithPollInterval sets the time update period while playing.
func WithPollInterval(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// New wraps b and starts consuming its events. The source owns b.
func New(b Backend, opts ...Option) *Source {
	s := &Source{
		b:            b,
		log:          log.New(io.Discard),
		pollInterval: DefaultPollInterval,
		events:       make(chan source.Event, source.EventBufferSize),
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
		runDone:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

func (s *Source) Kind() playlist.SourceKind { return playlist.SourceEmbed }

// Load cues videoID.
func (s *Source) Load(id uint64, videoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.load, s.pending.loadID, s.pending.video = true, id, videoID
		return
	}
	s.loadLocked(id, videoID)
}

func (s *Source) loadLocked(id uint64, videoID string) {
	s.load, s.video = id, videoID
	s.gen++
	s.canPlay = false
	s.duration = 0
	s.setPollingLocked(false)
	s.b.LoadVideo(s.gen, videoID)
}

// Play starts playback. Before readiness the request is buffered.
func (s *Source) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.intent = intentPlay
		return nil
	}
	s.b.Play()
	return nil
}

func (s *Source) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.intent = intentPause
		return
	}
	s.b.Pause()
}

// Stop halts playback and forgets the current video.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.load = false
		s.pending.seek = false
		s.pending.intent = intentNone
		return
	}
	s.video = ""
	s.canPlay = false
	s.setPollingLocked(false)
	s.b.Stop()
}

func (s *Source) Seek(pos time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.seek, s.pending.seekPos = true, pos
		return
	}
	s.b.SeekTo(pos)
}

func (s *Source) SetVolume(level float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.volume = &level
		return
	}
	s.b.SetVolume(level)
}

func (s *Source) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		s.pending.muted = &muted
		return
	}
	s.b.SetMuted(muted)
}

// Ready reports whether the backend accepts commands.
func (s *Source) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Polling reports whether time updates are being polled.
func (s *Source) Polling() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polling
}

func (s *Source) Events() <-chan source.Event { return s.events }

// Close stops polling, closes the events channel and then the backend.
func (s *Source) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.runDone
		close(s.events)
		err = s.b.Close()
	})
	return err
}

func (s *Source) setPollingLocked(on bool) {
	if s.polling == on {
		return
	}
	s.polling = on
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// run consumes backend events and drives the poll ticker.
func (s *Source) run() {
	defer close(s.runDone)

	var (
		ticker *time.Ticker
		tick   <-chan time.Time
	)
	syncTicker := func() {
		on := s.Polling()
		switch {
		case on && ticker == nil:
			ticker = time.NewTicker(s.pollInterval)
			tick = ticker.C
		case !on && ticker != nil:
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	backend := s.b.Events()
	for {
		select {
		case e, ok := <-backend:
			if !ok {
				backend = nil
				continue
			}
			if !s.emit(s.handle(e)...) {
				return
			}
			syncTicker()
		case <-tick:
			if !s.emit(s.poll()...) {
				return
			}
		case <-s.wake:
			syncTicker()
		case <-s.done:
			return
		}
	}
}

func (s *Source) emit(events ...source.Event) bool {
	for _, e := range events {
		select {
		case s.events <- e:
		case <-s.done:
			return false
		}
	}
	return true
}

// handle applies a backend event and returns the source events it raises.
func (s *Source) handle(e BackendEvent) []source.Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.Type == BackendReady {
		if !s.ready {
			s.ready = true
			s.replayLocked()
		}
		return nil
	}
	if s.video == "" || e.Load != s.gen {
		s.log.Debug("dropping stale backend event",
			"video", e.VideoID, "load", e.Load, "current", s.gen)
		return nil
	}

	id := s.load
	if e.Type == BackendError {
		s.setPollingLocked(false)
		return []source.Event{{Load: id, Type: source.Error, Err: e.Err}}
	}

	var out []source.Event
	switch e.State {
	case StateCued, StatePlaying, StatePaused:
		if !s.canPlay {
			s.canPlay = true
			if d := s.b.Duration(); d > 0 {
				s.duration = d
				out = append(out, source.Event{Load: id, Type: source.DurationChange, Duration: d})
			}
			out = append(out, source.Event{Load: id, Type: source.CanPlay})
		}
	case StateEnded:
		out = append(out, source.Event{Load: id, Type: source.Ended})
	}
	s.setPollingLocked(e.State == StatePlaying)
	return out
}

func (s *Source) replayLocked() {
	p := s.pending
	s.pending = pending{}
	if p.volume != nil {
		s.b.SetVolume(*p.volume)
	}
	if p.muted != nil {
		s.b.SetMuted(*p.muted)
	}
	if p.load {
		s.loadLocked(p.loadID, p.video)
	}
	if p.seek {
		s.b.SeekTo(p.seekPos)
	}
	if p.intent == intentPlay {
		s.b.Play()
	}
}

// poll reads the position and, when it changed, the duration.
func (s *Source) poll() []source.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.polling || s.video == "" {
		return nil
	}
	id := s.load
	out := []source.Event{{Load: id, Type: source.TimeUpdate, Position: s.b.CurrentTime()}}
	if d := s.b.Duration(); d > 0 && d != s.duration {
		s.duration = d
		out = append(out, source.Event{Load: id, Type: source.DurationChange, Duration: d})
	}
	return out
}
