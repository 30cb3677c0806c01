package playback

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
)

// Config holds the controller timings.
type Config struct {
	// LoadTimeout bounds the time a source has to become playable.
	LoadTimeout time.Duration
	// RetryDelay is the pause before trying the next track after a failure.
	RetryDelay time.Duration
	// PersistInterval is the period of position saves while playing.
	PersistInterval time.Duration
	// RestartThreshold is the position past which Previous restarts the
	// current track instead of moving back.
	RestartThreshold time.Duration
	// RecordTimeout bounds each Recorder call.
	RecordTimeout time.Duration
}

// DefaultConfig returns the default timings.
func DefaultConfig() Config {
	return Config{
		LoadTimeout:      10 * time.Second,
		RetryDelay:       time.Second,
		PersistInterval:  5 * time.Second,
		RestartThreshold: 3 * time.Second,
		RecordTimeout:    10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = d.LoadTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.PersistInterval <= 0 {
		c.PersistInterval = d.PersistInterval
	}
	if c.RestartThreshold < 0 {
		c.RestartThreshold = d.RestartThreshold
	}
	if c.RecordTimeout <= 0 {
		c.RecordTimeout = d.RecordTimeout
	}
	return c
}

// Option configures a Service.
type Option func(*serviceImpl)

// WithConfig sets the controller timings. Zero values keep the defaults.
func WithConfig(cfg Config) Option {
	return func(s *serviceImpl) { s.cfg = cfg.withDefaults() }
}

// WithPositionStore enables position persistence and restore.
func WithPositionStore(store PositionStore) Option {
	return func(s *serviceImpl) { s.store = store }
}

// WithRecorder adds a recorder notified of every successful track start.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) {
		if r != nil {
			s.recorders = append(s.recorders, r)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *serviceImpl) {
		if logger != nil {
			s.log = logger
		}
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(rng *rand.Rand) Option {
	return func(s *serviceImpl) { s.rng = rng }
}

// WithInitialSettings restores volume, mute, repeat and shuffle.
func WithInitialSettings(st Settings) Option {
	return func(s *serviceImpl) {
		s.volume = clampVolume(st.Volume, s.volume)
		s.muted = st.Muted
		s.queue.SetRepeatMode(st.Repeat)
		s.queue.SetShuffle(st.Shuffle, s.rng)
	}
}

// OnSettingsChange registers fn, called with the new settings whenever
// volume, mute, repeat or shuffle change. fn runs on the controller
// goroutine and must not call back into the Service.
func OnSettingsChange(fn func(Settings)) Option {
	return func(s *serviceImpl) { s.onSettings = fn }
}
