package keymap

import (
	"slices"
	"testing"

	"github.com/charmbracelet/bubbles/help"
)

var testBindings = []Binding{
	{ActionQuit, []string{"q", "ctrl+c"}, "Quit", "global"},
	{ActionPlayPause, []string{" "}, "Play/pause", "playback"},
	{ActionNextTrack, []string{"n"}, "Next track", "playback"},
	{ActionMoveUp, []string{"k", "up"}, "Move up", "queue"},
	{ActionMoveDown, []string{"j", "down"}, "Move down", "queue"},
}

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(testBindings)

	tests := []struct {
		key  string
		want Action
	}{
		{"q", ActionQuit},
		{"ctrl+c", ActionQuit},
		{" ", ActionPlayPause},
		{"n", ActionNextTrack},
		{"up", ActionMoveUp},
		{"j", ActionMoveDown},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.key); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestResolver_FirstBindingWins(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionStop, []string{"x"}, "Stop", "playback"},
		{ActionQuit, []string{"x", "q"}, "Quit", "global"},
	})

	if got := r.Resolve("x"); got != ActionStop {
		t.Errorf("Resolve(x) = %q, want %q", got, ActionStop)
	}
	if got := r.Resolve("q"); got != ActionQuit {
		t.Errorf("Resolve(q) = %q, want %q", got, ActionQuit)
	}
}

func TestResolver_KeysFor(t *testing.T) {
	r := NewResolver([]Binding{
		{ActionToggleMute, []string{"m", "M"}, "Mute", "playback"},
		{ActionToggleMute, []string{"m"}, "Mute", "queue"},
		{ActionQuit, []string{"q"}, "Quit", "global"},
	})

	tests := []struct {
		action Action
		want   []string
	}{
		{ActionToggleMute, []string{"m", "M"}},
		{ActionQuit, []string{"q"}},
		{Action("unknown"), nil},
	}
	for _, tt := range tests {
		if got := r.KeysFor(tt.action); !slices.Equal(got, tt.want) {
			t.Errorf("KeysFor(%q) = %v, want %v", tt.action, got, tt.want)
		}
	}
}

func TestResolver_DefaultBindings(t *testing.T) {
	r := NewResolver(Bindings)

	tests := map[string]Action{
		" ":     ActionPlayPause,
		"space": ActionPlayPause,
		"n":     ActionNextTrack,
		"p":     ActionPrevTrack,
		"left":  ActionSeekBack,
		"right": ActionSeekForward,
		"+":     ActionVolumeUp,
		"-":     ActionVolumeDown,
		"m":     ActionToggleMute,
		"r":     ActionCycleRepeat,
		"s":     ActionToggleShuffle,
		"f":     ActionToggleFavorite,
		"q":     ActionQuit,
	}
	for k, want := range tests {
		if got := r.Resolve(k); got != want {
			t.Errorf("Resolve(%q) = %q, want %q", k, got, want)
		}
	}
}

func TestResolver_ShortHelp(t *testing.T) {
	r := NewResolver(testBindings)

	got := r.ShortHelp()
	// Only the short-help actions present in the bindings, in that order.
	want := []string{"space", "n", "q"}
	if len(got) != len(want) {
		t.Fatalf("ShortHelp() has %d bindings, want %d", len(got), len(want))
	}
	for i, b := range got {
		if b.Help().Key != want[i] {
			t.Errorf("ShortHelp()[%d] = %q, want %q", i, b.Help().Key, want[i])
		}
	}
}

func TestResolver_FullHelp(t *testing.T) {
	r := NewResolver(testBindings)

	cols := r.FullHelp()
	if len(cols) != 3 {
		t.Fatalf("FullHelp() has %d columns, want 3", len(cols))
	}
	wantLens := []int{2, 2, 1} // playback, queue, global
	for i, c := range cols {
		if len(c) != wantLens[i] {
			t.Errorf("column %d has %d bindings, want %d", i, len(c), wantLens[i])
		}
	}
}

func TestResolver_FullHelpSkipsEmptyContexts(t *testing.T) {
	r := NewResolver([]Binding{{ActionQuit, []string{"q"}, "Quit", "global"}})
	if cols := r.FullHelp(); len(cols) != 1 {
		t.Errorf("FullHelp() has %d columns, want 1", len(cols))
	}
}

func TestResolver_ImplementsHelpKeyMap(t *testing.T) {
	var _ help.KeyMap = NewResolver(nil)
}

func TestResolver_Empty(t *testing.T) {
	r := NewResolver(nil)
	if got := r.Resolve("q"); got != "" {
		t.Errorf("Resolve on empty resolver = %q, want empty", got)
	}
	if keys := r.KeysFor(ActionQuit); keys != nil {
		t.Errorf("KeysFor on empty resolver = %v, want nil", keys)
	}
	if got := r.ShortHelp(); len(got) != 0 {
		t.Errorf("ShortHelp on empty resolver = %v, want none", got)
	}
}
