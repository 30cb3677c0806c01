package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/lastfm"
)

const (
	lastfmAuthTimeout  = 2 * time.Minute
	lastfmCallbackAddr = "127.0.0.1:0"
)

var lastfmCmd = &cobra.Command{
	Use:   "lastfm",
	Short: "Manage Last.fm scrobbling",
}

var lastfmAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Link a Last.fm account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.HasLastfmConfig() {
			return errors.New("last.fm is not configured: set lastfm.api_key and lastfm.api_secret")
		}
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		callback, err := lastfm.ListenCallback(lastfmCallbackAddr)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
		}
		defer callback.Close()

		client := lastfm.New(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		authURL := client.AuthURL(callback.URL())
		if err := lastfm.OpenBrowser(authURL); err != nil {
			logger.Debug("opening browser", "err", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Authorize essai in your browser:\n  %s\n", authURL)

		ctx, cancel := context.WithTimeout(cmd.Context(), lastfmAuthTimeout)
		token, err := callback.Wait(ctx)
		cancel()
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
		}

		username, key, err := client.GetSession(token)
		if err != nil {
			return errors.New(errmsg.Format(errmsg.OpLastfmAuth, err))
		}
		if err := st.SaveLastfmSession(username, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked Last.fm account %s.\n", username)
		return nil
	},
}

var lastfmStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the linked Last.fm account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := st.GetLastfmSession()
		if err != nil {
			return err
		}
		if sess == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No Last.fm account linked.")
			return nil
		}
		pending, err := st.GetPendingScrobbles()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked as %s since %s, %d scrobbles pending.\n",
			sess.Username, sess.LinkedAt.Format(time.DateOnly), len(pending))
		return nil
	},
}

var lastfmUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Forget the linked Last.fm account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.DeleteLastfmSession(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Last.fm account unlinked.")
		return nil
	},
}

func init() {
	lastfmCmd.AddCommand(lastfmAuthCmd, lastfmStatusCmd, lastfmUnlinkCmd)
	rootCmd.AddCommand(lastfmCmd)
}
