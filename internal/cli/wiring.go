package cli

import (
	"context"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/cache"
	"github.com/llehouerou/essai/internal/config"
	"github.com/llehouerou/essai/internal/favorites"
	"github.com/llehouerou/essai/internal/lastfm"
	"github.com/llehouerou/essai/internal/mpris"
	"github.com/llehouerou/essai/internal/notify"
	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/player"
	"github.com/llehouerou/essai/internal/source"
	"github.com/llehouerou/essai/internal/source/embed"
	"github.com/llehouerou/essai/internal/source/stream"
	"github.com/llehouerou/essai/internal/state"
	"github.com/llehouerou/essai/internal/ytaudio"
)

// session holds everything a playing session owns.
type session struct {
	playback  playback.Service
	favorites *favorites.Set
	scrobbler *lastfm.Scrobbler
	notifier  *notify.Player

	positions *cache.PositionStore
	mpris     *mpris.Adapter
}

// newSession builds the playback controller and its integrations.
func newSession(ctx context.Context, st *state.Manager, client *api.Client) *session {
	s := &session{}
	pc := cfg.GetPlayerConfig()

	opts := []playback.Option{
		playback.WithConfig(pc.Playback()),
		playback.WithLogger(componentLogger("playback")),
		playback.WithPositionStore(s.positionStore(ctx, st)),
		playback.OnSettingsChange(st.SaveSettings),
	}

	if settings, err := st.Settings(); err != nil {
		logger.Warn("reading settings", "err", err)
	} else {
		opts = append(opts, playback.WithInitialSettings(settings))
	}

	recorders := []playback.Recorder{client}
	if s.scrobbler = newScrobbler(st); s.scrobbler != nil {
		recorders = append(recorders, s.scrobbler)
	}
	opts = append(opts, playback.WithRecorder(multiRecorder(recorders...)))

	if client.HasToken() {
		s.favorites = favorites.New(client)
	}

	s.playback = playback.New(newSources(pc), opts...)

	if cfg.Notifications.IsEnabled() {
		s.notifier = newNotifier()
	}

	if cfg.MPRIS.IsEnabled() {
		adapter, err := mpris.New(s.playback, componentLogger("mpris"))
		if err != nil {
			logger.Warn("media keys unavailable", "err", err)
		} else {
			s.mpris = adapter
		}
	}

	return s
}

// positionStore returns the shared Redis store when configured, falling
// back to the local database when Redis is unreachable.
func (s *session) positionStore(ctx context.Context, st *state.Manager) playback.PositionStore {
	if !cfg.UsesRedis() {
		return st
	}
	store, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Key:      cfg.Redis.Key,
	})
	if err != nil {
		logger.Warn("using local position store", "err", err)
		return st
	}
	s.positions = store
	return store
}

// newSources creates the stream and embed sources, each with its own
// audio player.
func newSources(pc config.PlayerConfig) []source.Source {
	playerOpts := func(name string) []player.Option {
		return []player.Option{
			player.WithMaxBytes(pc.MaxDownloadBytes()),
			player.WithTickInterval(pc.TimeUpdateInterval),
			player.WithLogger(componentLogger(name)),
		}
	}

	streamSrc := stream.New(player.New(playerOpts("player")...),
		stream.WithLogger(componentLogger("stream")))

	resolver := ytaudio.YtdlpResolver{
		Format:  cfg.Embed.YtdlpFormat,
		Proxy:   cfg.Embed.Proxy,
		Timeout: pc.LoadTimeout,
	}
	backend := ytaudio.New(player.New(playerOpts("embed-player")...), resolver,
		ytaudio.WithLogger(componentLogger("ytaudio")))
	embedSrc := embed.New(backend,
		embed.WithLogger(componentLogger("embed")),
		embed.WithPollInterval(pc.PollInterval))

	return []source.Source{streamSrc, embedSrc}
}

// newScrobbler returns a scrobbler when Last.fm is configured and linked.
func newScrobbler(st *state.Manager) *lastfm.Scrobbler {
	if !cfg.HasLastfmConfig() {
		return nil
	}
	sess, err := st.GetLastfmSession()
	if err != nil {
		logger.Warn("reading Last.fm session", "err", err)
		return nil
	}
	if sess == nil {
		return nil
	}
	client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
	client.SetSessionKey(sess.SessionKey)
	return lastfm.NewScrobbler(client, st, componentLogger("lastfm"))
}

func newNotifier() *notify.Player {
	n, err := notify.New()
	if err != nil {
		logger.Debug("desktop notifications unavailable", "err", err)
		n = notify.Disabled()
	}
	covers, err := notify.NewCoverCache("")
	if err != nil {
		logger.Debug("cover cache unavailable", "err", err)
		covers = nil
	}
	return notify.NewPlayer(n, covers)
}

// Close stops playback and releases the integrations.
func (s *session) Close() {
	if s.mpris != nil {
		if err := s.mpris.Close(); err != nil {
			logger.Debug("closing mpris", "err", err)
		}
	}
	if err := s.playback.Close(); err != nil {
		logger.Warn("closing playback", "err", err)
	}
	if s.positions != nil {
		if err := s.positions.Close(); err != nil {
			logger.Debug("closing redis", "err", err)
		}
	}
}
