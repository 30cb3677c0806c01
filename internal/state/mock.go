package state

import (
	"context"
	"sync"

	"github.com/llehouerou/essai/internal/playback"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	mu       sync.Mutex
	position *playback.SavedPosition
	settings *playback.Settings
	token    string
	queue    *QueueState
	saves    int
	closed   bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) LoadPosition(context.Context) (playback.SavedPosition, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.position == nil {
		return playback.SavedPosition{}, false, nil
	}
	return *m.position, true, nil
}

func (m *Mock) SavePosition(_ context.Context, p playback.SavedPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = &p
	m.saves++
	return nil
}

func (m *Mock) Settings() (playback.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return defaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Mock) SaveSettings(s playback.Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
}

func (m *Mock) Token() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Mock) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *Mock) DeleteToken() error {
	return m.SaveToken("")
}

func (m *Mock) GetQueue(context.Context) (*QueueState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queue == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	q := *m.queue
	return &q, nil
}

func (m *Mock) SaveQueue(_ context.Context, state QueueState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = &state
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetPosition(p playback.SavedPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = &p
}

// PositionSaves returns how many times SavePosition was called.
func (m *Mock) PositionSaves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
