package playback

import "time"

// Toggle flips between playing and paused. No-op unless a track is loaded.
func (s *serviceImpl) Toggle() error {
	var err error
	if !s.do(func() { err = s.toggle() }) {
		return ErrClosed
	}
	return err
}

func (s *serviceImpl) toggle() error {
	switch s.state {
	case StatePlaying:
		s.active.Pause()
		s.setState(StatePaused)
	case StatePaused:
		if s.atEnd {
			s.atEnd = false
			s.seekTo(0)
		}
		if err := s.active.Play(); err != nil {
			s.fail(s.loadSeq, err)
			return err
		}
		s.setState(StatePlaying)
	default:
	}
	return nil
}

// Next advances the queue according to the repeat mode.
func (s *serviceImpl) Next() error {
	if !s.do(s.advance) {
		return ErrClosed
	}
	return nil
}

// advance moves to the next entry. Repeat one restarts the current track,
// the end of the queue wraps with repeat all and otherwise pauses on the
// last track.
func (s *serviceImpl) advance() {
	if s.queue.IsEmpty() {
		return
	}
	if s.queue.RepeatMode() == RepeatOne {
		s.restart()
		return
	}
	idx, ok := s.queue.NextIndex()
	if !ok {
		s.stopAtEnd()
		return
	}
	s.load(idx, nil)
}

// restart plays the current track from 0 without moving in the queue.
func (s *serviceImpl) restart() {
	switch s.state {
	case StatePlaying, StatePaused:
		s.atEnd = false
		s.seekTo(0)
		// Play also resumes a source that just reported Ended.
		if err := s.active.Play(); err != nil {
			s.fail(s.loadSeq, err)
			return
		}
		s.setState(StatePlaying)
	case StateLoading:
		// Already starting from 0.
	default:
		s.load(s.queue.CurrentIndex(), nil)
	}
}

// stopAtEnd leaves the last track loaded and paused.
func (s *serviceImpl) stopAtEnd() {
	switch s.state {
	case StatePlaying:
		s.active.Pause()
		s.setState(StatePaused)
		s.atEnd = true
	case StatePaused:
		s.atEnd = true
	case StateLoading, StateFailed:
		s.supersede()
		if s.active != nil {
			s.active.Stop()
		}
		s.position = 0
		s.setState(StateStopped)
	default:
	}
}

// Previous restarts the current track when past the restart threshold,
// otherwise moves back one entry (wrapping with repeat all).
func (s *serviceImpl) Previous() error {
	if !s.do(s.previous) {
		return ErrClosed
	}
	return nil
}

func (s *serviceImpl) previous() {
	if s.queue.IsEmpty() {
		return
	}
	if s.position > s.cfg.RestartThreshold {
		if s.state.IsActive() {
			s.atEnd = false
			s.seekTo(0)
			return
		}
		s.load(s.queue.CurrentIndex(), nil)
		return
	}
	idx, _ := s.queue.PreviousIndex()
	s.load(idx, nil)
}

// Seek moves the position, clamped to [0, duration] once the duration is
// known. No-op when nothing is loading or loaded.
func (s *serviceImpl) Seek(pos time.Duration) error {
	if !s.do(func() { s.seekTo(pos) }) {
		return ErrClosed
	}
	return nil
}

func (s *serviceImpl) seekTo(pos time.Duration) {
	if s.active == nil || !(s.state == StateLoading || s.state.IsActive()) {
		return
	}
	pos = max(pos, 0)
	if s.duration > 0 {
		pos = min(pos, s.duration)
	}
	s.active.Seek(pos)
	s.position = pos
	s.emitPosition()
}

// Stop halts playback and unloads the source. The queue is kept.
func (s *serviceImpl) Stop() error {
	if !s.do(func() {
		s.supersede()
		if s.active != nil {
			s.active.Stop()
		}
		s.position = 0
		s.atEnd = false
		if s.queue.IsEmpty() {
			return
		}
		s.setState(StateStopped)
	}) {
		return ErrClosed
	}
	return nil
}

// SetVolume stores level (clamped to [0,1], NaN ignored) and applies it.
// The mute flag is left untouched.
func (s *serviceImpl) SetVolume(level float64) {
	s.do(func() {
		v := clampVolume(level, s.volume)
		if v == s.volume {
			return
		}
		s.volume = v
		if s.active != nil {
			s.active.SetVolume(v)
		}
		s.emitVolume()
	})
}

// ToggleMute flips the mute flag and returns it. The stored volume level is
// preserved.
func (s *serviceImpl) ToggleMute() bool {
	var muted bool
	s.do(func() {
		s.muted = !s.muted
		if s.active != nil {
			s.active.SetMuted(s.muted)
		}
		s.emitVolume()
		muted = s.muted
	})
	return muted
}

// SetRepeatMode sets the repeat mode.
func (s *serviceImpl) SetRepeatMode(mode RepeatMode) {
	s.do(func() {
		if s.queue.RepeatMode() == mode {
			return
		}
		s.queue.SetRepeatMode(mode)
		s.emitMode()
	})
}

// CycleRepeatMode cycles off → all → one → off.
func (s *serviceImpl) CycleRepeatMode() RepeatMode {
	var mode RepeatMode
	s.do(func() {
		mode = s.queue.CycleRepeatMode()
		s.emitMode()
	})
	return mode
}

// SetShuffle enables or disables shuffle.
func (s *serviceImpl) SetShuffle(enabled bool) {
	s.do(func() {
		if s.queue.Shuffle() == enabled {
			return
		}
		s.queue.SetShuffle(enabled, s.rng)
		s.emitQueue()
		s.emitMode()
	})
}

// ToggleShuffle flips shuffle. The current track keeps playing; only its
// index moves.
func (s *serviceImpl) ToggleShuffle() bool {
	var on bool
	s.do(func() {
		on = s.queue.ToggleShuffle(s.rng)
		s.emitQueue()
		s.emitMode()
	})
	return on
}
