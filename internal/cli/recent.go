package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/errmsg"
	"github.com/llehouerou/essai/internal/state"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently played tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, _ *state.Manager, c *api.Client) error {
			if err := requireLogin(c); err != nil {
				return err
			}
			played, err := c.RecentlyPlayed(ctx)
			if err != nil {
				return errors.New(errmsg.Format(errmsg.OpRecentLoad, err))
			}
			writeRecent(cmd.OutOrStdout(), played, time.Now())
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(recentCmd)
}

// writeRecent lists plays with times relative to now.
func writeRecent(out io.Writer, played []api.PlayedTrack, now time.Time) {
	if len(played) == 0 {
		fmt.Fprintln(out, "Nothing played yet.")
		return
	}
	t := NewTableWriter(out, "WHEN", "ID", "TITLE", "ARTIST")
	for _, p := range played {
		when := "-"
		if !p.PlayedAt.IsZero() {
			when = humanize.RelTime(p.PlayedAt, now, "ago", "from now")
		}
		t.Row(when, p.ID, p.Title, p.DisplayArtist())
	}
	t.Flush()
}
