//go:build windows

package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Capture is a no-op on Windows, where the audio backend is quiet.
type Capture struct{}

// CaptureStderr does nothing on Windows.
func CaptureStderr(*log.Logger) (*Capture, error) {
	return &Capture{}, nil
}

// WriteOriginal writes to stderr.
func (c *Capture) WriteOriginal(msg string) {
	_, _ = os.Stderr.WriteString(msg)
}

// Stop does nothing on Windows.
func (c *Capture) Stop() {}
