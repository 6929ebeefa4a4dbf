// internal/ui/styles.go
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Cyan    = lipgloss.Color("#00FFFF")
	Green   = lipgloss.Color("#00FF00")
	Yellow  = lipgloss.Color("#FFD700")
	Orange  = lipgloss.Color("#FFA500")
	Red     = lipgloss.Color("#FF6B6B")
	Magenta = lipgloss.Color("#FF00FF")
	SkyBlue = lipgloss.Color("#87CEEB")
	Dim     = lipgloss.Color("#555555")
	White   = lipgloss.Color("#FFFFFF")

	speakerPalette = []lipgloss.Color{Cyan, Green, Magenta, Orange, SkyBlue, Yellow}

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	StageStyle = lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(Dim).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(Dim)

	FallbackStyle = lipgloss.NewStyle().
			Foreground(Dim).
			Italic(true)

	ActiveBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Cyan)

	StatusOK   = lipgloss.NewStyle().Foreground(Green).Bold(true)
	StatusWarn = lipgloss.NewStyle().Foreground(Orange).Bold(true)
)

// SpeakerStyle assigns each participant a stable color from the
// palette by cast position.
func SpeakerStyle(index int) lipgloss.Style {
	c := speakerPalette[index%len(speakerPalette)]
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}
