//go:build linux

package mpris

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/charmbracelet/log"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/essai/internal/playback"
)

// fakeService implements the calls the adapter makes. The embedded nil
// interface panics on anything else.
type fakeService struct {
	playback.Service

	snap    playback.Snapshot
	toggles int
	seeks   []time.Duration
	repeat  playback.RepeatMode
	shuffle bool
	volume  float64
	jumps   chan int
	jumpErr error
}

func (f *fakeService) PlayIndex(_ context.Context, index int) error {
	f.jumps <- index
	return f.jumpErr
}

func (f *fakeService) Snapshot() playback.Snapshot { return f.snap }
func (f *fakeService) State() playback.State { return f.snap.State }
func (f *fakeService) Position() time.Duration { return f.snap.Position }
func (f *fakeService) Duration() time.Duration { return f.snap.Duration }
func (f *fakeService) CurrentTrack() *playback.Track { return f.snap.Track }
func (f *fakeService) QueueTracks() []playback.Track { return f.snap.Queue }
func (f *fakeService) QueueCurrentIndex() int { return f.snap.Index }
func (f *fakeService) RepeatMode() playback.RepeatMode {
	return f.repeat
}
func (f *fakeService) SetRepeatMode(m playback.RepeatMode) { f.repeat = m }
func (f *fakeService) Shuffle() bool { return f.shuffle }
func (f *fakeService) SetShuffle(on bool) { f.shuffle = on }
func (f *fakeService) SetVolume(v float64) { f.volume = v }

func (f *fakeService) Toggle() error {
	f.toggles++
	return nil
}

func (f *fakeService) Seek(pos time.Duration) error {
	f.seeks = append(f.seeks, pos)
	return nil
}

func playingService() *fakeService {
	track := &playback.Track{ID: "t1", Title: "One", Duration: 3 * time.Minute}
	return &fakeService{snap: playback.Snapshot{
		State:    playback.StatePlaying,
		Track:    track,
		Queue:    []playback.Track{*track, {ID: "t2"}},
		Index:    0,
		Position: 10 * time.Second,
		Duration: 181 * time.Second,
		Volume:   0.5,
	}}
}

func TestPlayerAdapter_RestartKeepsQueue(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		svc := playingService()
		svc.snap.State = playback.StateStopped
		svc.snap.Index = 1
		svc.jumps = make(chan int, 1)
		svc.jumpErr = errors.New("device busy")
		p := &playerAdapter{service: svc, logger: logger}

		require.NoError(t, p.PlayPause())
		synctest.Wait()

		select {
		case got := <-svc.jumps:
			assert.Equal(t, 1, got)
		default:
			t.Fatal("PlayPause on a stopped track should restart it")
		}
		assert.Equal(t, 0, svc.toggles)
		assert.Contains(t, buf.String(), "mpris restart failed")
		assert.Contains(t, buf.String(), "device busy")
	})
}

func TestPlayerAdapter_PlayPause(t *testing.T) {
	svc := playingService()
	p := &playerAdapter{service: svc}

	require.NoError(t, p.Play())
	assert.Equal(t, 0, svc.toggles, "Play while playing is a no-op")

	require.NoError(t, p.PlayPause())
	assert.Equal(t, 1, svc.toggles)

	require.NoError(t, p.Pause())
	assert.Equal(t, 2, svc.toggles)

	svc.snap.State = playback.StatePaused
	require.NoError(t, p.Pause())
	assert.Equal(t, 2, svc.toggles, "Pause while paused is a no-op")
	require.NoError(t, p.Play())
	assert.Equal(t, 3, svc.toggles)
}

func TestPlayerAdapter_Seek(t *testing.T) {
	svc := playingService()
	p := &playerAdapter{service: svc}

	require.NoError(t, p.Seek(types.Microseconds(5*time.Second/time.Microsecond)))
	require.NoError(t, p.SetPosition(formatTrackID("t1"), types.Microseconds(time.Minute/time.Microsecond)))
	require.NoError(t, p.SetPosition(formatTrackID("other"), 0))

	assert.Equal(t, []time.Duration{15 * time.Second, time.Minute}, svc.seeks)
}

func TestPlayerAdapter_Metadata(t *testing.T) {
	svc := playingService()
	p := &playerAdapter{service: svc}

	meta, err := p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "One", meta.Title)
	assert.Equal(t, []string{"Unknown Artist"}, meta.Artist)
	assert.Equal(t, types.Microseconds(181*time.Second/time.Microsecond), meta.Length)

	svc.snap.Duration = 0
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Equal(t, types.Microseconds(3*time.Minute/time.Microsecond), meta.Length)

	svc.snap.Track = nil
	meta, err = p.Metadata()
	require.NoError(t, err)
	assert.Empty(t, meta.Title)
}

func TestPlayerAdapter_Status(t *testing.T) {
	tests := []struct {
		state playback.State
		want  types.PlaybackStatus
	}{
		{playback.StatePlaying, types.PlaybackStatusPlaying},
		{playback.StatePaused, types.PlaybackStatusPaused},
		{playback.StateLoading, types.PlaybackStatusPaused},
		{playback.StateStopped, types.PlaybackStatusStopped},
		{playback.StateFailed, types.PlaybackStatusStopped},
		{playback.StateIdle, types.PlaybackStatusStopped},
	}
	for _, tt := range tests {
		svc := &fakeService{snap: playback.Snapshot{State: tt.state}}
		got, err := (&playerAdapter{service: svc}).PlaybackStatus()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.state.String())
	}
}

func TestPlayerAdapter_Navigation(t *testing.T) {
	svc := playingService()
	p := &playerAdapter{service: svc}

	next, _ := p.CanGoNext()
	assert.True(t, next)

	svc.snap.Index = 1
	next, _ = p.CanGoNext()
	assert.False(t, next, "last track without repeat")

	svc.repeat = playback.RepeatAll
	next, _ = p.CanGoNext()
	assert.True(t, next)

	svc.snap.Queue = nil
	next, _ = p.CanGoNext()
	assert.False(t, next)
	prev, _ := p.CanGoPrevious()
	assert.False(t, prev)
}

func TestPlayerAdapter_Modes(t *testing.T) {
	svc := playingService()
	p := &playerAdapter{service: svc}

	require.NoError(t, p.SetLoopStatus(types.LoopStatusTrack))
	status, _ := p.LoopStatus()
	assert.Equal(t, types.LoopStatusTrack, status)

	require.NoError(t, p.SetLoopStatus(types.LoopStatusPlaylist))
	assert.Equal(t, playback.RepeatAll, svc.repeat)

	require.NoError(t, p.SetShuffle(true))
	on, _ := p.Shuffle()
	assert.True(t, on)

	require.NoError(t, p.SetVolume(0.25))
	assert.InDelta(t, 0.25, svc.volume, 1e-9)

	vol, _ := p.Volume()
	assert.InDelta(t, 0.5, vol, 1e-9)
	svc.snap.Muted = true
	vol, _ = p.Volume()
	assert.Zero(t, vol)
}
