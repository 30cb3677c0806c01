package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. Loads never complete on their own;
// tests drive them with Ready, Fail, End and Tick.
type Mock struct {
	mu       sync.Mutex
	gen      uint64
	state    State
	position time.Duration
	duration time.Duration
	volume   float64
	muted    bool
	playErr  error
	loads    []string
	seeks    []time.Duration
	closed   bool
	events   chan Event
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:  Stopped,
		volume: 1,
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) Load(url string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.loads = append(m.loads, url)
	m.state = Loading
	m.position, m.duration = 0, 0
	return m.gen
}

func (m *Mock) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playErr != nil {
		return m.playErr
	}
	if !m.state.CanPlay() && m.state != Playing {
		return ErrNotLoaded
	}
	m.state = Playing
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	m.position = 0
}

func (m *Mock) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeks = append(m.seeks, pos)
	m.position = pos
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = level
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event { return m.events }

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
	return nil
}

// Test helpers

// Gen returns the generation of the last load.
func (m *Mock) Gen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Ready completes the current load.
func (m *Mock) Ready(d time.Duration) {
	m.mu.Lock()
	m.state = Ready
	m.duration = d
	gen := m.gen
	m.mu.Unlock()
	m.Emit(Event{Gen: gen, Type: EventReady, Duration: d})
}

// Fail fails the current load or playback.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	m.state = Stopped
	gen := m.gen
	m.mu.Unlock()
	m.Emit(Event{Gen: gen, Type: EventFailed, Err: err})
}

// End reports the end of the media.
func (m *Mock) End() {
	m.mu.Lock()
	m.state = Ready
	m.position = m.duration
	gen := m.gen
	m.mu.Unlock()
	m.Emit(Event{Gen: gen, Type: EventEnded})
}

// Tick reports a position.
func (m *Mock) Tick(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	gen := m.gen
	m.mu.Unlock()
	m.Emit(Event{Gen: gen, Type: EventTime, Position: pos})
}

// Emit sends e unless the mock is closed.
func (m *Mock) Emit(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- e
}

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) Loads() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loads...)
}

func (m *Mock) Seeks() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seeks...)
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
