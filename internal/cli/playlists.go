package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/state"
)

var playlistDescription string

var playlistsCmd = &cobra.Command{
	Use:     "playlists",
	Aliases: []string{"pl"},
	Short:   "List your playlists",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			lists, err := c.Playlists(ctx)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistsLoad, err))
			}
			if len(lists) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No playlists.")
				return nil
			}
			t := NewTableWriter(cmd.OutOrStdout(), "ID", "NAME", "TRACKS", "DESCRIPTION")
			for _, p := range lists {
				t.Row(p.ID.String(), p.Name, fmt.Sprint(len(p.Tracks)), p.Description)
			}
			t.Flush()
			return nil
		})
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist-id>",
	Short: "Show the tracks of a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			p, err := c.Playlist(ctx, args[0])
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistLoad, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Name)
			if p.Description != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", p.Description)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			writeTracks(cmd.OutOrStdout(), p.Tracks)
			return nil
		})
	},
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			p, err := c.CreatePlaylist(ctx, api.PlaylistInput{
				Name:        joinArgs(args),
				Description: playlistDescription,
			})
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistCreate, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created playlist %s (%s).\n", p.Name, p.ID)
			return nil
		})
	},
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <playlist-id> <name>",
	Short: "Rename a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			in := api.PlaylistInput{Name: joinArgs(args[1:]), Description: playlistDescription}
			p, err := c.UpdatePlaylist(ctx, args[0], in)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistRename, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed playlist to %s.\n", p.Name)
			return nil
		})
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist-id>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			if err := c.DeletePlaylist(ctx, args[0]); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistDelete, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Playlist deleted.")
			return nil
		})
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist-id> <track-id>",
	Short: "Add a track to a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			if err := c.AddToPlaylist(ctx, args[0], args[1]); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistAddTrack, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Track added.")
			return nil
		})
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist-id> <track-id>",
	Short: "Remove a track from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlaylists(func(ctx context.Context, c *api.Client) error {
			if err := c.RemoveFromPlaylist(ctx, args[0], args[1]); err != nil {
				return errors.New(errmsg.Format(errmsg.OpPlaylistRemove, err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Track removed.")
			return nil
		})
	},
}

func init() {
	playlistCreateCmd.Flags().StringVar(&playlistDescription, "description", "", "playlist description")
	playlistRenameCmd.Flags().StringVar(&playlistDescription, "description", "", "new description")
	playlistsCmd.AddCommand(playlistShowCmd, playlistCreateCmd, playlistRenameCmd,
		playlistDeleteCmd, playlistAddCmd, playlistRemoveCmd)
	rootCmd.AddCommand(playlistsCmd)
}

// withPlaylists runs fn with a logged in client.
func withPlaylists(fn func(ctx context.Context, c *api.Client) error) error {
	return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
		if err := requireLogin(c); err != nil {
			return err
		}
		return fn(ctx, c)
	})
}
