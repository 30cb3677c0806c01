package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/llehouerou/essai/internal/source"
)

// PlayTrack replaces the queue and starts track, waiting for the outcome.
func (s *serviceImpl) PlayTrack(ctx context.Context, track *Track, queue []Track, index int) error {
	if track == nil {
		return nil
	}
	reply := make(chan error, 1)
	t := *track
	if !s.do(func() {
		s.queue.Replace(t, queue, index, s.rng)
		s.emitQueue()
		s.load(s.queue.CurrentIndex(), reply)
	}) {
		return ErrClosed
	}
	return waitLoad(ctx, reply)
}

// PlayIndex starts the queue entry at index without touching the queue
// order, waiting for the outcome. An out of range index is a no-op.
func (s *serviceImpl) PlayIndex(ctx context.Context, index int) error {
	reply := make(chan error, 1)
	if !s.do(func() {
		if index < 0 || index >= s.queue.Len() {
			reply <- nil
			return
		}
		s.load(index, reply)
	}) {
		return ErrClosed
	}
	return waitLoad(ctx, reply)
}

func waitLoad(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// load starts loading the queue entry at index on the matching source.
// Any pending load is superseded. reply, if non-nil, receives the outcome.
func (s *serviceImpl) load(index int, reply chan<- error) {
	prev := s.queue.Current()
	var prevTrack *Track
	if prev != nil {
		c := *prev
		prevTrack = &c
	}
	prevIndex := s.queue.CurrentIndex()

	s.supersede()

	track := s.queue.JumpTo(index)
	if track == nil {
		if reply != nil {
			s.after(func() { reply <- nil })
		}
		return
	}
	t := *track

	s.loadSeq++
	seq := s.loadSeq
	s.pending = &pendingLoad{seq: seq, reply: reply}
	s.restoring = false
	s.atEnd = false

	if s.active != nil {
		s.active.Stop()
	}
	s.active = s.sourceFor(t)
	s.position, s.duration = 0, 0
	s.setState(StateLoading)
	s.broadcast(func(sub *Subscription) {
		sub.sendTrack(TrackChange{
			Previous:      prevTrack,
			Current:       &t,
			PreviousIndex: prevIndex,
			Index:         index,
		})
	})

	if s.active == nil {
		s.fail(seq, fmt.Errorf("%w: %s", ErrNoSource, t.Kind()))
		return
	}

	s.log.Debug("loading track", "id", t.ID, "title", t.Title, "source", t.Kind(), "load", seq)
	s.active.SetVolume(s.volume)
	s.active.SetMuted(s.muted)
	s.active.Load(seq, t.Locator())

	s.loadTimer = time.AfterFunc(s.cfg.LoadTimeout, func() {
		s.post(func() {
			if s.pending != nil && s.pending.seq == seq {
				s.fail(seq, ErrLoadTimeout)
			}
		})
	})
}

func (s *serviceImpl) sourceFor(t Track) source.Source {
	for _, src := range s.sources {
		if src.Kind() == t.Kind() {
			return src
		}
	}
	return nil
}

// supersede drops the pending load and any scheduled retry.
func (s *serviceImpl) supersede() {
	s.stopTimers()
	if s.pending != nil {
		s.resolve(ErrSuperseded)
	}
}

func (s *serviceImpl) stopTimers() {
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
	if s.retry != nil {
		s.retry.Stop()
		s.retry = nil
	}
}

// resolve completes the pending load with err.
func (s *serviceImpl) resolve(err error) {
	if s.pending == nil {
		return
	}
	if reply := s.pending.reply; reply != nil {
		s.after(func() { reply <- err })
	}
	s.pending = nil
}

// handleEvent applies a source event. Events of any load other than the
// latest are stale and dropped.
func (s *serviceImpl) handleEvent(e source.Event) {
	if e.Load != s.loadSeq || s.active == nil {
		return
	}
	switch e.Type {
	case source.CanPlay:
		s.handleReady(e.Load)
	case source.TimeUpdate:
		if s.state == StatePlaying || s.state == StatePaused {
			s.position = e.Position
		}
	case source.DurationChange:
		s.duration = e.Duration
		if !s.restoring {
			s.restoring = true
			s.restorePosition(e.Load)
		}
	case source.Ended:
		if s.state == StatePlaying {
			s.log.Debug("track ended", "load", e.Load)
			s.advance()
		}
	case source.Error:
		if s.state == StateLoading || s.state.IsActive() {
			s.fail(e.Load, e.Err)
		}
	}
}

// handleReady starts playback once the pending load can play.
func (s *serviceImpl) handleReady(seq uint64) {
	if s.pending == nil || s.pending.seq != seq {
		return
	}
	if s.loadTimer != nil {
		s.loadTimer.Stop()
		s.loadTimer = nil
	}
	if err := s.active.Play(); err != nil {
		s.fail(seq, err)
		return
	}
	s.setState(StatePlaying)
	s.resolve(nil)

	if t := s.queue.Current(); t != nil {
		s.log.Info("playing", "id", t.ID, "title", t.Title, "artist", t.Artist)
		s.record(*t)
	}
}

// record notifies every recorder in the background.
func (s *serviceImpl) record(t Track) {
	for _, r := range s.recorders {
		s.background(s.cfg.RecordTimeout, func(ctx context.Context) {
			if err := r.RecordPlay(ctx, t); err != nil {
				s.log.Warn("recording play", "id", t.ID, "err", err)
			}
		})
	}
}

// fail marks the load (or the playing track) as failed and schedules the
// next queue entry. Timeouts and source errors share this path. Auto-skip
// only moves forward and never wraps, so a queue of failing tracks is
// exhausted after at most one attempt each.
func (s *serviceImpl) fail(seq uint64, err error) {
	if seq != s.loadSeq {
		return
	}
	s.stopTimers()
	s.resolve(err)
	if s.active != nil {
		s.active.Stop()
	}
	s.setState(StateFailed)

	idx := s.queue.CurrentIndex()
	next := idx + 1
	skipping := next < s.queue.Len()

	e := ErrorEvent{Operation: "load", Err: err, Skipping: skipping}
	if t := s.queue.Current(); t != nil {
		e.TrackID, e.Title = t.ID, t.Title
	}
	s.log.Warn("track failed", "id", e.TrackID, "index", idx, "err", err, "skipping", skipping)
	s.emitError(e)

	if !skipping {
		return
	}
	s.retry = time.AfterFunc(s.cfg.RetryDelay, func() {
		s.post(func() {
			if s.loadSeq != seq || s.state != StateFailed {
				return
			}
			s.log.Info("skipping to next track", "index", next)
			s.load(next, nil)
		})
	})
}

// savePosition persists the position while something is playing.
func (s *serviceImpl) savePosition() {
	if s.store == nil || s.state != StatePlaying || s.position <= 0 {
		return
	}
	t := s.queue.Current()
	if t == nil {
		return
	}
	rec := SavedPosition{TrackID: t.ID, Position: s.position}
	s.background(s.cfg.PersistInterval, func(ctx context.Context) {
		if err := s.store.SavePosition(ctx, rec); err != nil {
			s.log.Warn("saving position", "err", err)
		}
	})
}

// restorePosition reads the stored record for the load seq and applies it
// if the load is still current and the record is for its track.
func (s *serviceImpl) restorePosition(seq uint64) {
	t := s.queue.Current()
	if s.store == nil || t == nil {
		return
	}
	trackID := t.ID
	s.background(s.cfg.LoadTimeout, func(ctx context.Context) {
		rec, ok, err := s.store.LoadPosition(ctx)
		if err != nil {
			s.log.Warn("loading saved position", "err", err)
			return
		}
		if !ok || rec.TrackID != trackID || rec.Position <= 0 {
			return
		}
		s.post(func() {
			if s.loadSeq != seq || s.active == nil {
				return
			}
			if cur := s.queue.Current(); cur == nil || cur.ID != trackID {
				return
			}
			s.log.Debug("restoring position", "id", trackID, "position", rec.Position)
			s.seekTo(rec.Position)
		})
	})
}
