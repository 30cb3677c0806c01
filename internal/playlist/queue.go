package playlist

import "math/rand/v2"

// RepeatMode defines what happens when the queue runs out.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// Next returns the mode that follows m in the off → all → one cycle.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

// PlayingQueue is the ordered playback context with its current position.
//
// When shuffle is enabled the pre-shuffle order is kept so that disabling
// shuffle restores it exactly. The current index always follows the
// current track's identity across reorders.
type PlayingQueue struct {
	playlist     *Playlist
	original     []Track // pre-shuffle order, nil when shuffle is off
	currentIndex int     // -1 if empty
	repeat       RepeatMode
	shuffle      bool
}

// NewQueue creates a new empty playing queue.
func NewQueue() *PlayingQueue {
	return &PlayingQueue{
		playlist:     NewPlaylist(),
		currentIndex: -1,
	}
}

// Current returns the current track, or nil if the queue is empty.
func (q *PlayingQueue) Current() *Track {
	return q.playlist.Track(q.currentIndex)
}

// CurrentIndex returns the index of the current track (-1 if none).
func (q *PlayingQueue) CurrentIndex() int {
	return q.currentIndex
}

// Tracks returns a copy of the queue in play order.
func (q *PlayingQueue) Tracks() []Track {
	return q.playlist.Tracks()
}

// Track returns the track at index, or nil.
func (q *PlayingQueue) Track(index int) *Track {
	return q.playlist.Track(index)
}

// Len returns the number of tracks in the queue.
func (q *PlayingQueue) Len() int {
	return q.playlist.Len()
}

// IsEmpty returns true if the queue has no tracks.
func (q *PlayingQueue) IsEmpty() bool {
	return q.playlist.Len() == 0
}

// IndexOf returns the play-order index of the track with id, or -1.
func (q *PlayingQueue) IndexOf(id string) int {
	return q.playlist.IndexOf(id)
}

// Replace installs a new playback context and makes track current.
//
// An empty context becomes [track]. The index is trusted when it points at
// track; otherwise track is looked up by id, and when it is not part of the
// context at all the queue becomes [track]. With shuffle enabled, the given
// order is kept as the restore snapshot and the play order is shuffled.
// Returns the resolved current index.
func (q *PlayingQueue) Replace(track Track, tracks []Track, index int, rng *rand.Rand) int {
	ctx := NewPlaylist(tracks...)
	switch {
	case ctx.Len() == 0:
		ctx = NewPlaylist(track)
		index = 0
	case index >= 0 && index < ctx.Len() && ctx.Track(index).ID == track.ID:
	default:
		index = ctx.IndexOf(track.ID)
		if index < 0 {
			ctx = NewPlaylist(track)
			index = 0
		}
	}

	q.playlist = ctx
	q.currentIndex = index
	q.original = nil
	if q.shuffle {
		q.original = ctx.Tracks()
		q.reorder(track.ID, func() { shuffleTracks(q.playlist, rng) })
	}
	return q.currentIndex
}

// JumpTo sets the current index. Returns the track there, or nil if the
// index is out of range (the index is then left unchanged).
func (q *PlayingQueue) JumpTo(index int) *Track {
	if index < 0 || index >= q.playlist.Len() {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// Clear removes all tracks and resets the position.
func (q *PlayingQueue) Clear() {
	q.playlist.Clear()
	q.original = nil
	q.currentIndex = -1
}

// NextIndex returns the index to advance to under the current repeat mode.
// ok is false when the queue is exhausted (repeat off at the last track)
// or empty.
func (q *PlayingQueue) NextIndex() (index int, ok bool) {
	if q.IsEmpty() {
		return -1, false
	}
	if q.repeat == RepeatOne {
		return q.currentIndex, true
	}
	next := q.currentIndex + 1
	if next >= q.playlist.Len() {
		if q.repeat != RepeatAll {
			return q.currentIndex, false
		}
		next = 0
	}
	return next, true
}

// PreviousIndex returns the index to step back to: wraps to the end with
// repeat all, otherwise clamps at 0.
func (q *PlayingQueue) PreviousIndex() (index int, ok bool) {
	if q.IsEmpty() {
		return -1, false
	}
	prev := q.currentIndex - 1
	if prev < 0 {
		if q.repeat == RepeatAll {
			return q.playlist.Len() - 1, true
		}
		return 0, true
	}
	return prev, true
}

// HasNext reports whether a track follows the current one without wrapping.
func (q *PlayingQueue) HasNext() bool {
	return q.currentIndex >= 0 && q.currentIndex < q.playlist.Len()-1
}

// RepeatMode returns the current repeat mode.
func (q *PlayingQueue) RepeatMode() RepeatMode {
	return q.repeat
}

// SetRepeatMode sets the repeat mode.
func (q *PlayingQueue) SetRepeatMode(mode RepeatMode) {
	q.repeat = mode
}

// CycleRepeatMode advances off → all → one → off and returns the new mode.
func (q *PlayingQueue) CycleRepeatMode() RepeatMode {
	q.repeat = q.repeat.Next()
	return q.repeat
}

// Shuffle reports whether shuffle is enabled.
func (q *PlayingQueue) Shuffle() bool {
	return q.shuffle
}

// SetShuffle enables or disables shuffle.
func (q *PlayingQueue) SetShuffle(enabled bool, rng *rand.Rand) {
	if enabled == q.shuffle {
		return
	}
	q.ToggleShuffle(rng)
}

// ToggleShuffle flips shuffle and returns the new state.
//
// Enabling snapshots the current order and applies a uniform random
// permutation. Disabling restores the snapshot. In both cases the current
// index is recomputed by locating the current track in the new order,
// falling back to 0.
func (q *PlayingQueue) ToggleShuffle(rng *rand.Rand) bool {
	var currentID string
	if t := q.Current(); t != nil {
		currentID = t.ID
	}

	if !q.shuffle {
		q.shuffle = true
		q.original = q.playlist.Tracks()
		q.reorder(currentID, func() { shuffleTracks(q.playlist, rng) })
		return true
	}

	q.shuffle = false
	restored := q.original
	q.original = nil
	if restored != nil {
		q.reorder(currentID, func() { q.playlist = NewPlaylist(restored...) })
	}
	return false
}

// reorder applies fn to the play order then relocates the current index.
func (q *PlayingQueue) reorder(currentID string, fn func()) {
	fn()
	if q.playlist.Len() == 0 {
		q.currentIndex = -1
		return
	}
	idx := q.playlist.IndexOf(currentID)
	if idx < 0 {
		idx = 0
	}
	q.currentIndex = idx
}

// shuffleTracks applies a Fisher–Yates permutation.
func shuffleTracks(p *Playlist, rng *rand.Rand) {
	for i := p.Len() - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1) //nolint:gosec // shuffle order, not security
		}
		p.Swap(i, j)
	}
}

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatAll:
		return "All"
	case RepeatOne:
		return "One"
	default:
		return "Unknown"
	}
}
