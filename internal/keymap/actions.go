// Package keymap defines key bindings and action dispatch for the player.
package keymap

// Action represents a user-triggerable action.
type Action string

const (
	// Global actions
	ActionQuit        Action = "quit"
	ActionHelp        Action = "help"
	ActionToggleQueue Action = "toggle_queue"

	// Playback actions
	ActionPlayPause      Action = "play_pause"
	ActionStop           Action = "stop"
	ActionNextTrack      Action = "next_track"
	ActionPrevTrack      Action = "prev_track"
	ActionSeekForward    Action = "seek_forward"
	ActionSeekBack       Action = "seek_back"
	ActionVolumeUp       Action = "volume_up"
	ActionVolumeDown     Action = "volume_down"
	ActionToggleMute     Action = "toggle_mute"
	ActionCycleRepeat    Action = "cycle_repeat"
	ActionToggleShuffle  Action = "toggle_shuffle"
	ActionToggleFavorite Action = "toggle_favorite"

	// Queue panel actions
	ActionMoveUp    Action = "move_up"
	ActionMoveDown  Action = "move_down"
	ActionJumpStart Action = "jump_start"
	ActionJumpEnd   Action = "jump_end"
	ActionSelect    Action = "select" // enter - play the highlighted track
)
