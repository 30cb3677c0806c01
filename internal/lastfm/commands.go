package lastfm

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RetryInterval is the period between retries of pending scrobbles.
const RetryInterval = 5 * time.Minute

// RetryPendingMsg triggers retry of pending scrobbles.
type RetryPendingMsg struct{}

// RetryResultMsg contains the result of retrying pending scrobbles.
type RetryResultMsg struct {
	Succeeded int
	Failed    int
	Err       error
}

// RetryPendingCmd retries pending scrobbles from the queue.
func RetryPendingCmd(s *Scrobbler) tea.Cmd {
	return func() tea.Msg {
		succeeded, failed, err := s.RetryPending()
		return RetryResultMsg{Succeeded: succeeded, Failed: failed, Err: err}
	}
}

// RetryTickCmd returns a command that triggers pending retry after a delay.
func RetryTickCmd() tea.Cmd {
	return tea.Tick(RetryInterval, func(_ time.Time) tea.Msg {
		return RetryPendingMsg{}
	})
}
