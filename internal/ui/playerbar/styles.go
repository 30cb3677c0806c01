package playerbar

import "github.com/charmbracelet/lipgloss"

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	stopSymbol    = "■"
	failSymbol    = "✗"
)

func barStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240"))
}

func titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
}

func artistStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
}

func metaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
}

// Progress fill gradient.
const (
	progressFrom = lipgloss.Color("#5fafff")
	progressTo   = lipgloss.Color("#af87ff")
)

func progressBarEmpty() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
}

func progressTimeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
}

func activeModeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
}

func noticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
}
