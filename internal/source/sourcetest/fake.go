// Package sourcetest provides a scriptable source.Source for tests.
package sourcetest

import (
	"errors"
	"sync"
	"time"

	"github.com/llehouerou/essai/internal/playlist"
	"github.com/llehouerou/essai/internal/source"
)

// Compile-time check.
var _ source.Source = (*Fake)(nil)

// Call is one recorded method invocation.
type Call struct {
	Method  string
	Load    uint64
	Locator string
	Pos     time.Duration
	Volume  float64
	Muted   bool
}

// Fake records every call and lets tests raise events by hand.
type Fake struct {
	mu sync.Mutex

	kind    playlist.SourceKind
	events  chan source.Event
	calls   []Call
	lastID  uint64
	locator string
	playing bool
	volume  float64
	muted   bool
	closed  bool

	// AutoReady makes Load immediately raise DurationChange then CanPlay.
	AutoReady bool
	// ReadyDuration is the duration reported by AutoReady.
	ReadyDuration time.Duration
	// PlayErr is returned by Play when set.
	PlayErr error
}

// New creates a fake source of the given kind.
func New(kind playlist.SourceKind) *Fake {
	return &Fake{
		kind:   kind,
		events: make(chan source.Event, source.EventBufferSize),
		volume: 1,
	}
}

func (f *Fake) record(c Call) {
	f.calls = append(f.calls, c)
}

func (f *Fake) Kind() playlist.SourceKind { return f.kind }

func (f *Fake) Load(id uint64, locator string) {
	f.mu.Lock()
	f.record(Call{Method: "Load", Load: id, Locator: locator})
	f.lastID = id
	f.locator = locator
	f.playing = false
	auto, dur := f.AutoReady, f.ReadyDuration
	f.mu.Unlock()

	if auto {
		f.Emit(source.Event{Load: id, Type: source.DurationChange, Duration: dur})
		f.Emit(source.Event{Load: id, Type: source.CanPlay})
	}
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Play"})
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.playing = true
	return nil
}

func (f *Fake) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Pause"})
	f.playing = false
}

func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Stop"})
	f.playing = false
}

func (f *Fake) Seek(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "Seek", Pos: pos})
}

func (f *Fake) SetVolume(level float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "SetVolume", Volume: level})
	f.volume = level
}

func (f *Fake) SetMuted(muted bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Method: "SetMuted", Muted: muted})
	f.muted = muted
}

func (f *Fake) Events() <-chan source.Event { return f.events }

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.events)
	return nil
}

// Emit raises an event. Events raised after Close are dropped.
func (f *Fake) Emit(e source.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.events <- e
}

// LastLoad returns the id of the most recent Load call.
func (f *Fake) LastLoad() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastID
}

// Ready raises CanPlay for the most recent load.
func (f *Fake) Ready() {
	f.Emit(source.Event{Load: f.LastLoad(), Type: source.CanPlay})
}

// ReadyWithDuration raises DurationChange then CanPlay for the most recent load.
func (f *Fake) ReadyWithDuration(d time.Duration) {
	id := f.LastLoad()
	f.Emit(source.Event{Load: id, Type: source.DurationChange, Duration: d})
	f.Emit(source.Event{Load: id, Type: source.CanPlay})
}

// Fail raises an Error for the most recent load.
func (f *Fake) Fail(err error) {
	if err == nil {
		err = errors.New("sourcetest: load failed")
	}
	f.Emit(source.Event{Load: f.LastLoad(), Type: source.Error, Err: err})
}

// End raises Ended for the most recent load.
func (f *Fake) End() {
	f.Emit(source.Event{Load: f.LastLoad(), Type: source.Ended})
}

// Tick raises a TimeUpdate for the most recent load.
func (f *Fake) Tick(pos time.Duration) {
	f.Emit(source.Event{Load: f.LastLoad(), Type: source.TimeUpdate, Position: pos})
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded calls of one method.
func (f *Fake) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log.
func (f *Fake) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// Locator returns the locator of the most recent Load.
func (f *Fake) Locator() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.locator
}

// Playing reports whether Play was the last transport call.
func (f *Fake) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}

// Volume returns the last level set.
func (f *Fake) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// Muted returns the last mute flag set.
func (f *Fake) Muted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted
}
