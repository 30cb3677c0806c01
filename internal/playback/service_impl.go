// internal/playback/service_impl.go
package playback

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/playlist"
	"github.com/llehouerou/essai/internal/source"
)

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// pendingLoad is the load a PlayTrack caller (or an internal advance) is
// waiting on.
type pendingLoad struct {
	seq   uint64
	reply chan<- error // nil for internal loads
}

// serviceImpl serializes every command, source event and timer callback
// through one goroutine (run). Fields below "loop-owned" are only touched
// from that goroutine; readers go through the published snapshot.
type serviceImpl struct {
	cfg        Config
	log        *log.Logger
	store      PositionStore
	recorders  []Recorder
	rng        *rand.Rand
	onSettings func(Settings)

	sources []source.Source

	cmds     chan func()
	events   chan source.Event
	done     chan struct{}
	loopDone chan struct{}
	closed   sync.Once

	fwd sync.WaitGroup // source event forwarders
	bg  sync.WaitGroup // store and recorder calls

	// loop-owned
	queue     *playlist.PlayingQueue
	active    source.Source
	state     State
	position  time.Duration
	duration  time.Duration
	volume    float64
	muted     bool
	atEnd     bool // stopped at the end of the queue; resume restarts
	loadSeq   uint64
	pending   *pendingLoad
	restoring bool // position restore requested for loadSeq
	loadTimer *time.Timer
	retry     *time.Timer
	persist   *time.Ticker
	outbox    []func()

	mu   sync.RWMutex
	snap Snapshot

	subs   []*Subscription
	subsMu sync.RWMutex
}

// New creates a playback service driving the given sources and starts its
// loop. Nil sources are skipped; at most one source per kind is used. The
// service owns the sources and closes them on Close.
func New(sources []source.Source, opts ...Option) Service {
	s := &serviceImpl{
		cfg:      DefaultConfig(),
		log:      log.New(io.Discard),
		cmds:     make(chan func()),
		events:   make(chan source.Event, source.EventBufferSize),
		done:     make(chan struct{}),
		loopDone: make(chan struct{}),
		queue:    playlist.NewQueue(),
		volume:   1,
	}
	for _, src := range sources {
		if src != nil {
			s.sources = append(s.sources, src)
		}
	}
	for _, opt := range opts {
		opt(s)
	}

	s.persist = time.NewTicker(s.cfg.PersistInterval)
	s.publish()

	for _, src := range s.sources {
		s.fwd.Add(1)
		go s.forward(src)
	}
	go s.run()
	return s
}

// forward copies one source's events into the loop, preserving order.
func (s *serviceImpl) forward(src source.Source) {
	defer s.fwd.Done()
	for e := range src.Events() {
		select {
		case s.events <- e:
		case <-s.done:
			return
		}
	}
}

func (s *serviceImpl) run() {
	defer close(s.loopDone)
	for {
		select {
		case fn := <-s.cmds:
			fn()
		case e := <-s.events:
			s.handleEvent(e)
		case <-s.persist.C:
			s.savePosition()
		case <-s.done:
			s.shutdown()
			s.publish()
			s.flush()
			return
		}
		s.publish()
		s.flush()
	}
}

// after queues fn to run once the current step is published, so that a
// caller woken by fn observes the new state.
func (s *serviceImpl) after(fn func()) {
	s.outbox = append(s.outbox, fn)
}

func (s *serviceImpl) flush() {
	for _, fn := range s.outbox {
		fn()
	}
	s.outbox = nil
}

// do runs fn on the loop and waits for it. Returns false if the service
// is closed.
func (s *serviceImpl) do(fn func()) bool {
	ran := make(chan struct{})
	select {
	case s.cmds <- func() { fn(); s.after(func() { close(ran) }) }:
	case <-s.done:
		return false
	}
	<-ran
	return true
}

// post queues fn on the loop without waiting. Used by timers.
func (s *serviceImpl) post(fn func()) {
	select {
	case s.cmds <- fn:
	case <-s.done:
	}
}

// shutdown releases loop-owned resources. Runs on the loop.
func (s *serviceImpl) shutdown() {
	s.persist.Stop()
	s.stopTimers()
	if s.pending != nil {
		s.resolve(ErrClosed)
	}
	if s.active != nil {
		s.active.Stop()
	}
}

// Close stops the loop, its timers and the sources, then closes every
// subscription. Safe to call more than once.
func (s *serviceImpl) Close() error {
	s.closed.Do(func() {
		close(s.done)
		<-s.loopDone

		for _, src := range s.sources {
			if err := src.Close(); err != nil {
				s.log.Warn("closing source", "kind", src.Kind(), "err", err)
			}
		}
		s.fwd.Wait()
		s.bg.Wait()

		s.subsMu.Lock()
		for _, sub := range s.subs {
			sub.close()
		}
		s.subs = nil
		s.subsMu.Unlock()
	})
	return nil
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	select {
	case <-s.done:
		sub.close()
		return sub
	default:
	}
	s.subs = append(s.subs, sub)
	return sub
}

func (s *serviceImpl) broadcast(fn func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		fn(sub)
	}
}

// publish copies the loop state into the snapshot readers see.
func (s *serviceImpl) publish() {
	snap := Snapshot{
		State:    s.state,
		Queue:    s.queue.Tracks(),
		Index:    s.queue.CurrentIndex(),
		Position: s.position,
		Duration: s.duration,
		Volume:   s.volume,
		Muted:    s.muted,
		Repeat:   s.queue.RepeatMode(),
		Shuffle:  s.queue.Shuffle(),
	}
	if t := s.queue.Current(); t != nil {
		c := *t
		snap.Track = &c
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns a consistent copy of the session state.
func (s *serviceImpl) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Queue = append([]Track(nil), s.snap.Queue...)
	return snap
}

// State returns the current transport state.
func (s *serviceImpl) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.State
}

// Position returns the current playback position.
func (s *serviceImpl) Position() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Position
}

// Duration returns the duration reported by the loaded source.
func (s *serviceImpl) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Duration
}

// CurrentTrack returns the current track, or nil if none.
func (s *serviceImpl) CurrentTrack() *Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Track == nil {
		return nil
	}
	t := *s.snap.Track
	return &t
}

// QueueTracks returns a copy of the queue in play order.
func (s *serviceImpl) QueueTracks() []Track {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Track(nil), s.snap.Queue...)
}

// QueueCurrentIndex returns the current queue index (-1 if none).
func (s *serviceImpl) QueueCurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Index
}

// RepeatMode returns the current repeat mode.
func (s *serviceImpl) RepeatMode() RepeatMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Repeat
}

// Shuffle returns whether shuffle is enabled.
func (s *serviceImpl) Shuffle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Shuffle
}

// Volume returns the stored volume level, independent of mute.
func (s *serviceImpl) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Volume
}

// Muted returns whether output is muted.
func (s *serviceImpl) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Muted
}

// setState changes the transport state and notifies subscribers.
func (s *serviceImpl) setState(st State) {
	if st == s.state {
		return
	}
	prev := s.state
	s.state = st
	s.broadcast(func(sub *Subscription) {
		sub.sendState(StateChange{Previous: prev, Current: st})
	})
}

func (s *serviceImpl) emitQueue() {
	e := QueueChange{Tracks: s.queue.Tracks(), Index: s.queue.CurrentIndex()}
	s.broadcast(func(sub *Subscription) { sub.sendQueue(e) })
}

func (s *serviceImpl) emitMode() {
	e := ModeChange{RepeatMode: s.queue.RepeatMode(), Shuffle: s.queue.Shuffle()}
	s.broadcast(func(sub *Subscription) { sub.sendMode(e) })
	s.settingsChanged()
}

func (s *serviceImpl) emitVolume() {
	e := VolumeChange{Volume: s.volume, Muted: s.muted}
	s.broadcast(func(sub *Subscription) { sub.sendVolume(e) })
	s.settingsChanged()
}

func (s *serviceImpl) emitPosition() {
	pos := s.position
	s.broadcast(func(sub *Subscription) { sub.sendPosition(pos) })
}

func (s *serviceImpl) emitError(e ErrorEvent) {
	s.broadcast(func(sub *Subscription) { sub.sendError(e) })
}

func (s *serviceImpl) settingsChanged() {
	if s.onSettings == nil {
		return
	}
	s.onSettings(Settings{
		Volume:  s.volume,
		Muted:   s.muted,
		Repeat:  s.queue.RepeatMode(),
		Shuffle: s.queue.Shuffle(),
	})
}

// background runs fn outside the loop; Close waits for it.
func (s *serviceImpl) background(timeout time.Duration, fn func(ctx context.Context)) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		fn(ctx)
	}()
}

// clampVolume bounds level to [0,1]; NaN yields fallback.
func clampVolume(level, fallback float64) float64 {
	if math.IsNaN(level) {
		return fallback
	}
	return max(0, min(1, level))
}
