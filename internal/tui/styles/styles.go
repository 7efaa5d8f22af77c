package styles

import (
	"strings"

	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Colors, resolved from the active theme by Apply.
var (
	Primary   lipgloss.TerminalColor
	Secondary lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor

	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor

	Border    lipgloss.TerminalColor
	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	TextDim   lipgloss.TerminalColor
	Selection lipgloss.TerminalColor
)

// Text styles
var (
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Label     lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Dim       lipgloss.Style
	Playing   lipgloss.Style
	Paused    lipgloss.Style
	ErrorText lipgloss.Style
	Selected  lipgloss.Style
)

// Border styles
var (
	BorderStyle   lipgloss.Style
	FocusedBorder lipgloss.Style
)

func init() {
	Apply("auto")
}

// pick returns the color for a theme. "auto" lets lipgloss choose
// between the latte and mocha variants from the terminal background.
func pick(theme string, c func(catppuccin.Flavor) catppuccin.Color) lipgloss.TerminalColor {
	switch theme {
	case "dark":
		return lipgloss.Color(c(catppuccin.Mocha).Hex)
	case "light":
		return lipgloss.Color(c(catppuccin.Latte).Hex)
	default:
		return lipgloss.AdaptiveColor{
			Light: c(catppuccin.Latte).Hex,
			Dark:  c(catppuccin.Mocha).Hex,
		}
	}
}

// Apply rebuilds every color and style for theme: auto, dark or light.
func Apply(theme string) {
	Primary = pick(theme, catppuccin.Flavor.Mauve)
	Secondary = pick(theme, catppuccin.Flavor.Green)
	Accent = pick(theme, catppuccin.Flavor.Peach)

	Success = pick(theme, catppuccin.Flavor.Green)
	Warning = pick(theme, catppuccin.Flavor.Yellow)
	Error = pick(theme, catppuccin.Flavor.Red)

	Border = pick(theme, catppuccin.Flavor.Surface2)
	Text = pick(theme, catppuccin.Flavor.Text)
	TextMuted = pick(theme, catppuccin.Flavor.Subtext0)
	TextDim = pick(theme, catppuccin.Flavor.Overlay0)
	Selection = pick(theme, catppuccin.Flavor.Surface0)

	Title = lipgloss.NewStyle().Bold(true).Foreground(Text)
	Subtitle = lipgloss.NewStyle().Foreground(TextMuted)
	Label = lipgloss.NewStyle().Foreground(TextDim)
	Highlight = lipgloss.NewStyle().Bold(true).Foreground(Primary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	Dim = lipgloss.NewStyle().Foreground(TextDim)
	Playing = lipgloss.NewStyle().Foreground(Success)
	Paused = lipgloss.NewStyle().Foreground(Warning)
	ErrorText = lipgloss.NewStyle().Foreground(Error)
	Selected = lipgloss.NewStyle().Background(Selection)

	BorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border)
	FocusedBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
}

// Panel creates a styled panel with optional focus
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	if width < 0 {
		width = 0
	}
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// VolumeBar renders a short meter for a 0-100 level.
func VolumeBar(level, width int) string {
	filled := level * width / 100
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return lipgloss.NewStyle().Foreground(Accent).Render(strings.Repeat("▮", filled)) +
		Dim.Render(strings.Repeat("▯", width-filled))
}

// StatusIcon returns an icon for playback status
func StatusIcon(playing bool) string {
	if playing {
		return Playing.Render("▶")
	}
	return Paused.Render("⏸")
}
