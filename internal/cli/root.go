// Package cli implements the essai command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/llehouerou/essai/internal/config"
	"github.com/llehouerou/essai/internal/logging"
)

var (
	verbose bool

	cfg       *config.Config
	logger    = logging.Discard()
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "essai",
	Short: "Play music from an essai catalog",
	Long: `Essai streams tracks from an essai music catalog server.

Tracks with a direct audio URL are streamed and decoded locally; tracks
that only reference an external video are resolved with yt-dlp.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func initConfig() error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, closer, err := logging.New(cfg.GetLogConfig(), verbose)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger, logCloser = l, closer
	logger.Debug("config loaded", "api", cfg.GetAPIConfig().BaseURL, "redis", cfg.UsesRedis())
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// componentLogger returns the logger tagged with a component name.
func componentLogger(name string) *log.Logger {
	return logger.With("component", name)
}
