package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/state"
)

var tracksGenre string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			tracks, err := c.Search(ctx, joinArgs(args))
			if err != nil {
				return err
			}
			writeTracks(cmd.OutOrStdout(), tracks)
			return nil
		})
	},
}

var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List catalog tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			tracks, err := c.Tracks(ctx, tracksGenre)
			if err != nil {
				return err
			}
			writeTracks(cmd.OutOrStdout(), tracks)
			return nil
		})
	},
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			tracks, err := c.Featured(ctx)
			if err != nil {
				return err
			}
			writeTracks(cmd.OutOrStdout(), tracks)
			return nil
		})
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List genres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			genres, err := c.Genres(ctx)
			if err != nil {
				return err
			}
			for _, g := range genres {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		})
	},
}

func init() {
	tracksCmd.Flags().StringVar(&tracksGenre, "genre", "", "only tracks of this genre")
	rootCmd.AddCommand(searchCmd, tracksCmd, featuredCmd, genresCmd)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
