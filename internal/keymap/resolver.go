package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// Help contexts in FullHelp column order.
var helpContexts = []string{"playback", "queue", "global"}

// ShortHelpActions are the actions listed on the one-line help.
var ShortHelpActions = []Action{
	ActionPlayPause, ActionNextTrack, ActionPrevTrack,
	ActionToggleFavorite, ActionHelp, ActionQuit,
}

// Resolver maps key strings to actions. It also implements help.KeyMap.
type Resolver struct {
	bindings []Binding
	byKey    map[string]Action
	byAction map[Action][]string
}

// NewResolver creates a resolver from bindings. When two bindings share a
// key, the first one wins.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: bindings,
		byKey:    make(map[string]Action),
		byAction: make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, k := range b.Keys {
			if _, taken := r.byKey[k]; !taken {
				r.byKey[k] = b.Action
			}
			if !slices.Contains(r.byAction[b.Action], k) {
				r.byAction[b.Action] = append(r.byAction[b.Action], k)
			}
		}
	}
	return r
}

// Resolve returns the action for a key, or "" if unbound.
func (r *Resolver) Resolve(k string) Action {
	return r.byKey[k]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(a Action) []string {
	return r.byAction[a]
}

// ShortHelp returns the bindings of ShortHelpActions.
func (r *Resolver) ShortHelp() []key.Binding {
	var short []Binding
	for _, a := range ShortHelpActions {
		for _, b := range r.bindings {
			if b.Action == a {
				short = append(short, b)
				break
			}
		}
	}
	return Help(short)
}

// FullHelp returns one column per context.
func (r *Resolver) FullHelp() [][]key.Binding {
	cols := make([][]key.Binding, 0, len(helpContexts))
	for _, c := range helpContexts {
		if bs := ByContext(r.bindings, c); len(bs) > 0 {
			cols = append(cols, Help(bs))
		}
	}
	return cols
}
