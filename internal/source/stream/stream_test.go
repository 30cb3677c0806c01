package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/essai/internal/player"
	"github.com/llehouerou/essai/internal/playlist"
	"github.com/llehouerou/essai/internal/source"
)

func next(t *testing.T, s *Source) source.Event {
	t.Helper()
	select {
	case e, ok := <-s.Events():
		require.True(t, ok, "events channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for source event")
		return source.Event{}
	}
}

func TestSource_Kind(t *testing.T) {
	s := New(player.NewMock())
	defer s.Close()
	assert.Equal(t, playlist.SourceStream, s.Kind())
}

func TestSource_ReadyBecomesDurationThenCanPlay(t *testing.T) {
	m := player.NewMock()
	s := New(m)
	defer s.Close()

	s.Load(7, "https://cdn.example/a.mp3")
	assert.Equal(t, []string{"https://cdn.example/a.mp3"}, m.Loads())

	m.Ready(3 * time.Minute)
	assert.Equal(t, source.Event{Load: 7, Type: source.DurationChange, Duration: 3 * time.Minute}, next(t, s))
	assert.Equal(t, source.Event{Load: 7, Type: source.CanPlay}, next(t, s))

	require.NoError(t, s.Play())
	assert.Equal(t, player.Playing, m.State())

	m.Tick(2 * time.Second)
	assert.Equal(t, source.Event{Load: 7, Type: source.TimeUpdate, Position: 2 * time.Second}, next(t, s))

	m.End()
	assert.Equal(t, source.Event{Load: 7, Type: source.Ended}, next(t, s))
}

func TestSource_FailureBecomesError(t *testing.T) {
	m := player.NewMock()
	s := New(m)
	defer s.Close()

	boom := errors.New("decode failed")
	s.Load(3, "u")
	m.Fail(boom)

	e := next(t, s)
	assert.Equal(t, source.Error, e.Type)
	assert.Equal(t, uint64(3), e.Load)
	assert.ErrorIs(t, e.Err, boom)
}

func TestSource_DropsEventsOfOlderGenerations(t *testing.T) {
	m := player.NewMock()
	s := New(m)
	defer s.Close()

	s.Load(1, "a")
	oldGen := m.Gen()
	s.Load(2, "b")

	m.Emit(player.Event{Gen: oldGen, Type: player.EventReady, Duration: time.Minute})
	m.Ready(2 * time.Minute)

	e := next(t, s)
	assert.Equal(t, uint64(2), e.Load)
	assert.Equal(t, 2*time.Minute, e.Duration)
}

func TestSource_StopDropsLateEvents(t *testing.T) {
	m := player.NewMock()
	s := New(m)
	defer s.Close()

	s.Load(1, "a")
	s.Stop()
	assert.Equal(t, player.Stopped, m.State())

	m.Ready(time.Minute) // late completion of the stopped load
	s.Load(2, "b")
	m.Ready(2 * time.Minute)

	e := next(t, s)
	assert.Equal(t, uint64(2), e.Load)
}

func TestSource_ForwardsControls(t *testing.T) {
	m := player.NewMock()
	s := New(m)
	defer s.Close()

	s.Load(1, "a")
	m.Ready(time.Minute)
	s.Seek(30 * time.Second)
	s.SetVolume(0.4)
	s.SetMuted(true)

	assert.Equal(t, []time.Duration{30 * time.Second}, m.Seeks())
	assert.InDelta(t, 0.4, m.Volume(), 1e-9)
	assert.True(t, m.Muted())

	require.NoError(t, s.Play())
	s.Pause()
	assert.Equal(t, player.Paused, m.State())
}

func TestSource_PlayErrorIsReturned(t *testing.T) {
	m := player.NewMock()
	m.SetPlayError(errors.New("no device"))
	s := New(m)
	defer s.Close()

	assert.Error(t, s.Play())
}

func TestSource_CloseClosesEvents(t *testing.T) {
	m := player.NewMock()
	s := New(m)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, ok := <-s.Events()
	assert.False(t, ok)
}
