package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/cinder/internal/core"
)

// TrackModel is the bubbletea model for the starting-track picker.
type TrackModel struct {
	tracks   []core.Track
	cursor   int
	offset   int
	selected int
	height   int
}

// Styles for track picker
var (
	trackTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	trackItemStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	trackSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	trackDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// NewTrackModel creates a new track picker model.
func NewTrackModel(tracks []core.Track) TrackModel {
	return TrackModel{
		tracks:   tracks,
		selected: -1,
		height:   20,
	}
}

// Init initializes the model.
func (m TrackModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m TrackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.tracks) > 0 {
				m.selected = m.cursor
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.tracks)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = len(m.tracks) - 1
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
	}

	return m, nil
}

func (m *TrackModel) visibleRows() int {
	rows := m.height - 6 // title, blank, help
	if rows < 3 {
		rows = 3
	}
	return rows
}

// View renders the model.
func (m TrackModel) View() string {
	var b strings.Builder

	b.WriteString(trackTitleStyle.Render("🎵 Start from..."))
	b.WriteString("\n\n")

	if len(m.tracks) == 0 {
		b.WriteString(trackDimStyle.Render("No tracks found"))
	} else {
		rows := m.visibleRows()
		if m.cursor < m.offset {
			m.offset = m.cursor
		}
		if m.cursor >= m.offset+rows {
			m.offset = m.cursor - rows + 1
		}
		end := m.offset + rows
		if end > len(m.tracks) {
			end = len(m.tracks)
		}

		for i := m.offset; i < end; i++ {
			t := m.tracks[i]
			line := fmt.Sprintf("%3d. %s", i+1, t.Title)
			if t.Artist != "" {
				line += trackDimStyle.Render(" — " + t.Artist)
			}

			if i == m.cursor {
				b.WriteString(trackSelectedStyle.Render("▸ " + line))
			} else {
				b.WriteString(trackItemStyle.Render("  " + line))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(trackDimStyle.Render("↑/↓ navigate • enter play • esc cancel"))

	return b.String()
}

// Selected returns the chosen playlist index, or -1 if cancelled.
func (m TrackModel) Selected() int {
	return m.selected
}

// RunTrackPicker runs the picker and returns the chosen index, or -1.
func RunTrackPicker(tracks []core.Track) (int, error) {
	model := NewTrackModel(tracks)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return -1, err
	}
	return finalModel.(TrackModel).Selected(), nil
}
