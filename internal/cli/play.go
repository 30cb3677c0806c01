package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/app"
	"github.com/llehouerou/essai/internal/logging"
	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/state"
)

var (
	playSearch    string
	playPlaylist  string
	playFavorites bool
	playRecent    bool
	playGenre     string
	playResume    bool
	playIndex     int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a list of tracks",
	Long: `Fetch a list of tracks and play it in the terminal player.

Without a selector the whole catalog is queued.

Examples:
  essai play --search "blue"       # Play search results
  essai play --playlist 12         # Play a playlist
  essai play --favorites --index 3 # Play favorites from the 4th track
  essai play --resume              # Resume the last session`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	f := playCmd.Flags()
	f.StringVar(&playSearch, "search", "", "play the results of a search")
	f.StringVar(&playPlaylist, "playlist", "", "play a playlist by id")
	f.BoolVar(&playFavorites, "favorites", false, "play your favorites")
	f.BoolVar(&playRecent, "recent", false, "play your recently played tracks")
	f.StringVar(&playGenre, "genre", "", "play the tracks of a genre")
	f.BoolVar(&playResume, "resume", false, "resume the last saved queue")
	f.IntVar(&playIndex, "index", 0, "0-based index of the first track to play")
	playCmd.MarkFlagsMutuallyExclusive("search", "playlist", "favorites", "recent", "genre", "resume")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	client := newClient(st)

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	tracks, index, err := fetchQueue(ctx, st, client)
	cancel()
	if err != nil {
		return err
	}
	if len(tracks) == 0 {
		return errors.New("nothing to play")
	}
	if index < 0 || index >= len(tracks) {
		return fmt.Errorf("index %d out of range (%d tracks)", index, len(tracks))
	}

	return runPlayer(cmd.Context(), st, client, tracks, index)
}

// fetchQueue loads the list selected by the flags.
func fetchQueue(ctx context.Context, st state.Interface, client *api.Client) ([]api.Track, int, error) {
	switch {
	case playResume:
		qs, err := st.GetQueue(ctx)
		if err != nil {
			return nil, 0, err
		}
		index := qs.CurrentIndex
		if playIndex != 0 {
			index = playIndex
		}
		return qs.Tracks, index, nil

	case playSearch != "":
		tracks, err := client.Search(ctx, playSearch)
		return tracks, playIndex, err

	case playPlaylist != "":
		pl, err := client.Playlist(ctx, playPlaylist)
		if err != nil {
			return nil, 0, err
		}
		return pl.Tracks, playIndex, nil

	case playFavorites:
		if err := requireLogin(client); err != nil {
			return nil, 0, err
		}
		tracks, err := client.Favorites(ctx)
		return tracks, playIndex, err

	case playRecent:
		if err := requireLogin(client); err != nil {
			return nil, 0, err
		}
		played, err := client.RecentlyPlayed(ctx)
		if err != nil {
			return nil, 0, err
		}
		tracks := make([]api.Track, len(played))
		for i, p := range played {
			tracks[i] = p.Track
		}
		return tracks, playIndex, nil

	default:
		tracks, err := client.Tracks(ctx, playGenre)
		return tracks, playIndex, err
	}
}

// runPlayer wires the session and runs the terminal player until quit.
func runPlayer(ctx context.Context, st *state.Manager, client *api.Client, tracks []api.Track, index int) error {
	// Before the audio output opens: its C libraries write to fd 2.
	capture, err := logging.CaptureStderr(logger)
	if err != nil {
		logger.Warn("stderr capture unavailable", "err", err)
	}
	defer capture.Stop()

	sess := newSession(ctx, st, client)
	defer sess.Close()

	model := app.New(app.Deps{
		Playback:  sess.playback,
		Favorites: sess.favorites,
		Store:     st,
		Scrobbler: sess.scrobbler,
		Notifier:  sess.notifier,
		Logger:    componentLogger("app"),
		Queue:     tracks,
		Index:     index,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running player: %w", err)
	}
	return nil
}

// multiRecorder reports a play to every recorder.
func multiRecorder(recorders ...playback.Recorder) playback.Recorder {
	return playback.RecorderFunc(func(ctx context.Context, t playback.Track) error {
		var errs []error
		for _, r := range recorders {
			if err := r.RecordPlay(ctx, t); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
