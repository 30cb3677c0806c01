//go:build !windows

package logging

import (
	"bufio"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
)

// Capture redirects file descriptor 2 into the logger. The audio backend
// and its C dependencies write there directly, which would corrupt the TUI.
type Capture struct {
	orig int
	r, w *os.File
	done chan struct{}
}

// CaptureStderr starts redirecting stderr lines to logger at Warn level.
// Must be called before the speaker is initialized. On error the program
// can continue with stderr untouched.
func CaptureStderr(logger *log.Logger) (*Capture, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}

	orig, err := syscall.Dup(int(os.Stderr.Fd()))
	if err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	if err := syscall.Dup2(int(w.Fd()), int(os.Stderr.Fd())); err != nil {
		syscall.Close(orig)
		r.Close()
		w.Close()
		return nil, err
	}

	c := &Capture{orig: orig, r: r, w: w, done: make(chan struct{})}
	l := logger.With("component", "stderr")
	go func() {
		defer close(c.done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				l.Warn(line)
			}
		}
	}()
	return c, nil
}

// WriteOriginal writes to the terminal's stderr, bypassing capture.
func (c *Capture) WriteOriginal(msg string) {
	if c == nil {
		_, _ = os.Stderr.WriteString(msg)
		return
	}
	_, _ = syscall.Write(c.orig, []byte(msg))
}

// Stop restores the original stderr and drains pending lines.
func (c *Capture) Stop() {
	if c == nil {
		return
	}
	_ = syscall.Dup2(c.orig, int(os.Stderr.Fd()))
	_ = syscall.Close(c.orig)
	c.w.Close()
	<-c.done
	c.r.Close()
}
