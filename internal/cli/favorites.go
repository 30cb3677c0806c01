package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/favorites"
	"github.com/llehouerou/essai/internal/state"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "List favorite tracks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			if err := requireLogin(c); err != nil {
				return err
			}
			tracks, err := c.Favorites(ctx)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpFavoritesLoad, err))
			}
			writeTracks(cmd.OutOrStdout(), tracks)
			return nil
		})
	},
}

var favoritesToggleCmd = &cobra.Command{
	Use:   "toggle <track-id>",
	Short: "Add or remove a track from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			if err := requireLogin(c); err != nil {
				return err
			}
			track, err := c.Track(ctx, args[0])
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpTrackLoad, err))
			}

			set := favorites.New(c)
			if _, err := set.Refresh(ctx); err != nil {
				return errors.New(errmsg.Format(errmsg.OpFavoritesLoad, err))
			}
			on, err := set.Toggle(ctx, *track)
			if err != nil {
				return errors.New(errmsg.FormatWith(errmsg.OpFavoriteToggle, track.Title, err))
			}

			if on {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q to favorites.\n", track.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from favorites.\n", track.Title)
			}
			return nil
		})
	},
}

func init() {
	favoritesCmd.AddCommand(favoritesToggleCmd)
	rootCmd.AddCommand(favoritesCmd)
}
