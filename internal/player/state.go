// internal/player/state.go
package player

// State represents the media element state machine.
//
//	┌──────────┐  load  ┌──────────┐ decoded ┌──────────┐
//	│  Stopped │───────▶│  Loading │────────▶│  Ready   │◀──┐
//	└──────────┘        └──────────┘         └──────────┘   │
//	     ▲                   │ failed            │ play     │ ended
//	     └───────────────────┘                   ▼          │
//	                                        ┌──────────┐    │
//	                                        │  Playing │────┘
//	                                        └──────────┘
//	                                          ▲     │ pause
//	                                     play │     ▼
//	                                        ┌──────────┐
//	                                        │  Paused  │
//	                                        └──────────┘
//
// Valid transitions:
//   - Stopped → Loading (via Load; any state may reload)
//   - Loading → Ready   (media decoded)
//   - Loading → Stopped (fetch or decode failed)
//   - Ready   → Playing (via Play)
//   - Playing → Paused  (via Pause)
//   - Paused  → Playing (via Play)
//   - Playing → Ready   (end of media, position left at the end)
//   - any     → Stopped (via Stop)
//
// Invalid/No-op transitions (handled gracefully):
//   - Pause outside Playing (ignored)
//   - Play while Playing (ignored)
//   - Play while Stopped or Loading (ErrNotLoaded)
type State int

const (
	Stopped State = iota
	Loading
	Ready
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if playback is active (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// IsLoaded returns true if decoded media is held.
func (s State) IsLoaded() bool {
	return s == Ready || s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanPlay returns true if Play would start or resume output.
func (s State) CanPlay() bool {
	return s == Ready || s == Paused
}
