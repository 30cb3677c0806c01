// internal/app/app.go
package app

import (
	"context"
	"io"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/llehouerou/essai/internal/favorites"
	"github.com/llehouerou/essai/internal/keymap"
	"github.com/llehouerou/essai/internal/lastfm"
	"github.com/llehouerou/essai/internal/notify"
	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/state"
	"github.com/llehouerou/essai/internal/ui/queuepanel"
)

// QueueStore persists the playing queue.
type QueueStore interface {
	SaveQueue(ctx context.Context, st state.QueueState) error
}

// Deps are the collaborators of the model. Only Playback is required.
type Deps struct {
	Playback  playback.Service
	Favorites *favorites.Set    // nil when logged out
	Store     QueueStore        // nil disables queue persistence
	Scrobbler *lastfm.Scrobbler // nil when Last.fm is not linked
	Notifier  *notify.Player    // nil disables desktop notifications
	Logger    *log.Logger

	// Initial session, started when the program runs.
	Queue []playback.Track
	Index int
}

// Model is the root application model.
type Model struct {
	playback  playback.Service
	sub       *playback.Subscription
	favorites *favorites.Set
	store     QueueStore
	scrobbler *lastfm.Scrobbler
	notifier  *notify.Player
	logger    *log.Logger
	keys      *keymap.Resolver

	initialQueue []playback.Track
	initialIndex int

	Queue        queuepanel.Model
	QueueVisible bool
	Help         help.Model

	ticking       bool
	notifiedID    string
	Notice        string
	noticeVersion int
	quitting      bool

	Width  int
	Height int
}

// New creates the model and subscribes to the playback service.
func New(deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return Model{
		playback:     deps.Playback,
		sub:          deps.Playback.Subscribe(),
		favorites:    deps.Favorites,
		store:        deps.Store,
		scrobbler:    deps.Scrobbler,
		notifier:     deps.Notifier,
		logger:       logger,
		keys:         keymap.NewResolver(keymap.Bindings),
		initialQueue: deps.Queue,
		initialIndex: deps.Index,
		Queue:        queuepanel.New(),
		Help:         help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.WatchServiceEvents(),
		PlayTrackCmd(m.playback, m.initialQueue, m.initialIndex),
		m.LoadFavoritesCmd(),
	}
	if m.scrobbler != nil {
		cmds = append(cmds, lastfm.RetryPendingCmd(m.scrobbler), lastfm.RetryTickCmd())
	}
	return tea.Batch(cmds...)
}

// setNotice shows msg in the status line until it expires.
func (m *Model) setNotice(msg string) tea.Cmd {
	m.noticeVersion++
	m.Notice = msg
	return NoticeExpiredCmd(m.noticeVersion)
}
