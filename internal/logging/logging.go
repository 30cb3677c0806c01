// Package logging builds the application logger. The terminal belongs to
// the TUI, so log output goes to a size-rotated file.
package logging

import (
	"io"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/llehouerou/essai/internal/config"
)

const logFileName = "essai.log"

// DefaultPath returns the log file under the XDG state directory.
func DefaultPath() (string, error) {
	return xdg.StateFile(filepath.Join("essai", logFileName))
}

// ParseLevel maps a config level to a log.Level. Unknown names are Info.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// New returns a logger writing to the rotating file described by cfg.
// verbose forces the debug level. Closing the returned io.Closer releases
// the file.
func New(cfg config.LogConfig, verbose bool) (*log.Logger, io.Closer, error) {
	path := cfg.File
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	level := ParseLevel(cfg.Level)
	if verbose {
		level = log.DebugLevel
	}

	return NewWriter(w, level), w, nil
}

// NewWriter returns a timestamped logger on w.
func NewWriter(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
