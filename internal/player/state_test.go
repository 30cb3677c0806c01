package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "Stopped"},
		{Loading, "Loading"},
		{Ready, "Ready"},
		{Playing, "Playing"},
		{Paused, "Paused"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_Predicates(t *testing.T) {
	tests := []struct {
		state    State
		active   bool
		loaded   bool
		canPause bool
		canPlay  bool
	}{
		{Stopped, false, false, false, false},
		{Loading, false, false, false, false},
		{Ready, false, true, false, true},
		{Playing, true, true, true, false},
		{Paused, true, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.state.IsLoaded(); got != tt.loaded {
				t.Errorf("IsLoaded() = %v, want %v", got, tt.loaded)
			}
			if got := tt.state.CanPause(); got != tt.canPause {
				t.Errorf("CanPause() = %v, want %v", got, tt.canPause)
			}
			if got := tt.state.CanPlay(); got != tt.canPlay {
				t.Errorf("CanPlay() = %v, want %v", got, tt.canPlay)
			}
		})
	}
}
