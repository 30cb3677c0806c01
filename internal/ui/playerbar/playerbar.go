// Package playerbar renders the now-playing bar: the current track with a
// progress line, and a status line with modes, volume and notices.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/essai/internal/playback"
	"github.com/llehouerou/essai/internal/ui/styles"
)

// Height is the rendered height: two content rows plus the border.
const Height = 4

// State holds everything needed to render the player bar.
type State struct {
	Status   playback.State
	Title    string
	Artist   string
	Genre    string
	Position time.Duration
	Duration time.Duration
	Index    int // 0-based
	Total    int
	Volume   float64
	Muted    bool
	Repeat   playback.RepeatMode
	Shuffle  bool
	Favorite bool
	Notice   string // transient message, e.g. a load failure
}

// NewState constructs a State from a session snapshot.
func NewState(snap playback.Snapshot, favorite bool, notice string) State {
	s := State{
		Status:   snap.State,
		Position: snap.Position,
		Duration: snap.Duration,
		Index:    snap.Index,
		Total:    len(snap.Queue),
		Volume:   snap.Volume,
		Muted:    snap.Muted,
		Repeat:   snap.Repeat,
		Shuffle:  snap.Shuffle,
		Favorite: favorite,
		Notice:   notice,
	}
	if t := snap.Track; t != nil {
		s.Title = t.Title
		s.Artist = t.Artist
		s.Genre = t.Genre
		if s.Duration <= 0 {
			s.Duration = t.Duration
		}
	}
	return s
}

// Render returns the player bar string for the given width.
func Render(s State, width int) string {
	innerWidth := max(width-6, 0)
	content := renderTrackLine(s, innerWidth) + "\n" + renderStatusLine(s, innerWidth)
	return barStyle().Padding(0, 2).Width(max(width-2, 0)).Render(content)
}

func statusSymbol(st playback.State) string {
	switch st {
	case playback.StatePlaying:
		return playSymbol
	case playback.StatePaused:
		return pauseSymbol
	case playback.StateLoading:
		return loadingSymbol
	case playback.StateFailed:
		return failSymbol
	}
	return stopSymbol
}

// renderTrackLine builds: Title   Artist · Genre   ▶ ━━━───   1:23 / 3:58
func renderTrackLine(s State, width int) string {
	if s.Title == "" && s.Status == playback.StateIdle {
		return metaStyle().Render("Nothing playing")
	}

	title := s.Title
	if title == "" {
		title = "Unknown Track"
	}
	if s.Favorite {
		title = "♥ " + title
	}

	var infoParts []string
	if s.Artist != "" {
		infoParts = append(infoParts, s.Artist)
	}
	if s.Genre != "" {
		infoParts = append(infoParts, s.Genre)
	}
	info := strings.Join(infoParts, " · ")

	status := statusSymbol(s.Status)
	timeStr := fmt.Sprintf("%s / %s", formatDuration(s.Position), formatDuration(s.Duration))

	separator := "   "
	sepWidth := runewidth.StringWidth(separator)
	timeWidth := runewidth.StringWidth(timeStr)
	statusWidth := runewidth.StringWidth(status + "  ")
	titleWidth := runewidth.StringWidth(title)
	infoWidth := runewidth.StringWidth(info)

	// Keep at least 10 cells for the bar
	minBarWidth := 10
	available := width - statusWidth - timeWidth - sepWidth*2 - minBarWidth

	var styledTitle, styledInfo string
	var used int
	switch {
	case info != "" && titleWidth+sepWidth+infoWidth <= available:
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(info)
		used = titleWidth + sepWidth + infoWidth
	case info != "" && titleWidth+sepWidth < available:
		maxInfo := available - titleWidth - sepWidth
		styledTitle = titleStyle().Render(title)
		styledInfo = artistStyle().Render(truncate(info, maxInfo))
		used = titleWidth + sepWidth + runewidth.StringWidth(truncate(info, maxInfo))
	default:
		maxTitle := max(available, 10)
		t := truncate(title, maxTitle)
		styledTitle = titleStyle().Render(t)
		used = runewidth.StringWidth(t)
	}

	barWidth := max(width-used-statusWidth-timeWidth-sepWidth*2, 5)

	var b strings.Builder
	b.WriteString(styledTitle)
	if styledInfo != "" {
		b.WriteString(separator)
		b.WriteString(styledInfo)
	}
	b.WriteString(separator)
	b.WriteString(status)
	b.WriteString("  ")
	b.WriteString(renderProgress(s.Position, s.Duration, barWidth))
	b.WriteString(separator)
	b.WriteString(progressTimeStyle().Render(timeStr))
	return b.String()
}

func renderProgress(position, duration time.Duration, width int) string {
	var ratio float64
	if duration > 0 {
		ratio = float64(position) / float64(duration)
	}
	filled := min(max(int(float64(width)*ratio), 0), width)
	return styles.Gradient(strings.Repeat("━", filled), progressFrom, progressTo) +
		progressBarEmpty().Render(strings.Repeat("─", width-filled))
}

// renderStatusLine builds: 3/12   repeat all   shuffle   vol 80%   notice
func renderStatusLine(s State, width int) string {
	var parts []string
	if s.Total > 0 && s.Index >= 0 {
		parts = append(parts, metaStyle().Render(fmt.Sprintf("%d/%d", s.Index+1, s.Total)))
	}
	parts = append(parts, modeLabel("repeat "+repeatLabel(s.Repeat), s.Repeat != playback.RepeatOff))
	parts = append(parts, modeLabel("shuffle", s.Shuffle))
	parts = append(parts, RenderVolume(s.Volume, s.Muted))

	line := strings.Join(parts, "   ")
	if lipgloss.Width(line) > width {
		line = ansi.Truncate(line, width, "…")
	}
	if s.Notice == "" {
		return line
	}
	room := width - lipgloss.Width(line) - 3
	if room < 5 {
		return noticeStyle().Render(truncate(s.Notice, width))
	}
	return line + "   " + noticeStyle().Render(truncate(s.Notice, room))
}

func modeLabel(label string, active bool) string {
	if active {
		return activeModeStyle().Render(label)
	}
	return metaStyle().Render(label)
}

func repeatLabel(m playback.RepeatMode) string {
	switch m {
	case playback.RepeatAll:
		return "all"
	case playback.RepeatOne:
		return "one"
	}
	return "off"
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
