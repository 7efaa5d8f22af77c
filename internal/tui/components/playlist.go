package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/cinder/internal/core"
	"github.com/tessro/cinder/internal/tui/styles"
)

// Playlist displays the playlist with a movable selection. The selection
// is independent of the transport cursor until enter is pressed.
type Playlist struct {
	offset   int
	selected int
	filter   string
}

// NewPlaylist creates a new Playlist component
func NewPlaylist() *Playlist {
	return &Playlist{}
}

// SetFilter limits the visible rows to tracks whose title, artist or
// file name contains query, ignoring case.
func (p *Playlist) SetFilter(query string) {
	p.filter = strings.ToLower(strings.TrimSpace(query))
	p.offset = 0
}

// Filter returns the active filter.
func (p *Playlist) Filter() string {
	return p.filter
}

// Visible returns the playlist indices that pass the filter.
func (p *Playlist) Visible(tracks []core.Track) []int {
	idx := make([]int, 0, len(tracks))
	for i, t := range tracks {
		if p.matches(t) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *Playlist) matches(t core.Track) bool {
	if p.filter == "" {
		return true
	}
	for _, s := range []string{t.Title, t.Artist, t.FileName()} {
		if strings.Contains(strings.ToLower(s), p.filter) {
			return true
		}
	}
	return false
}

// SelectNext moves the selection down
func (p *Playlist) SelectNext(tracks []core.Track) {
	visible := p.Visible(tracks)
	pos := position(visible, p.selected)
	if pos < len(visible)-1 {
		p.selected = visible[pos+1]
	} else if pos < 0 && len(visible) > 0 {
		p.selected = visible[0]
	}
}

// SelectPrev moves the selection up
func (p *Playlist) SelectPrev(tracks []core.Track) {
	visible := p.Visible(tracks)
	pos := position(visible, p.selected)
	if pos > 0 {
		p.selected = visible[pos-1]
	} else if pos < 0 && len(visible) > 0 {
		p.selected = visible[0]
	}
}

// Select sets the selected playlist index.
func (p *Playlist) Select(i int) {
	if i >= 0 {
		p.selected = i
	}
}

// Selected returns the selected playlist index, or -1 when the
// selection is hidden by the filter or the playlist is empty.
func (p *Playlist) Selected(tracks []core.Track) int {
	if position(p.Visible(tracks), p.selected) < 0 {
		return -1
	}
	return p.selected
}

func position(indices []int, v int) int {
	for i, x := range indices {
		if x == v {
			return i
		}
	}
	return -1
}

// Render renders the playlist panel. current is the transport cursor.
func (p *Playlist) Render(tracks []core.Track, current, width, height int, focused bool) string {
	label := fmt.Sprintf("Playlist (%d)", len(tracks))
	if p.filter != "" {
		label = fmt.Sprintf("Playlist /%s", p.filter)
	}
	title := styles.PanelTitle(label, focused)

	var content string
	visible := p.Visible(tracks)
	switch {
	case len(tracks) == 0:
		content = styles.Muted.Render("Playlist is empty. Press o to open a file.")
	case len(visible) == 0:
		content = styles.Muted.Render("No matches")
	default:
		content = p.renderRows(tracks, visible, current, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (p *Playlist) renderRows(tracks []core.Track, visible []int, current, width, maxLines int) string {
	visibleCount := maxLines - 1 // Leave room for "more" indicator
	if visibleCount < 1 {
		visibleCount = 1
	}

	// Keep the selection on screen
	pos := position(visible, p.selected)
	if pos >= 0 {
		if pos < p.offset {
			p.offset = pos
		}
		if pos >= p.offset+visibleCount {
			p.offset = pos - visibleCount + 1
		}
	}
	if p.offset >= len(visible) {
		p.offset = 0
	}

	start := p.offset
	end := start + visibleCount
	if end > len(visible) {
		end = len(visible)
	}

	lines := make([]string, 0, end-start+1)

	// Fixed overhead: "XXX. " (5) + "▶ " (2) + " — " (3)
	const overhead = 10
	available := width - overhead
	if available < 10 {
		available = 10
	}

	for _, i := range visible[start:end] {
		track := tracks[i]
		num := fmt.Sprintf("%3d.", i+1)

		artistSpace := available / 3
		if w := runewidth.StringWidth(track.Artist); w < artistSpace {
			artistSpace = w
		}
		title := runewidth.Truncate(track.Title, available-artistSpace, "…")
		artist := runewidth.Truncate(track.Artist, artistSpace, "…")

		var line string
		if i == current {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s — %s", num, title, artist))
		} else {
			line = fmt.Sprintf("%s   %s — %s",
				styles.Dim.Render(num),
				title,
				styles.Muted.Render(artist))
		}
		if i == p.selected {
			line = styles.Selected.Render(line)
		}

		lines = append(lines, line)
	}

	if end < len(visible) {
		more := styles.Dim.Render(fmt.Sprintf("     ... and %d more", len(visible)-end))
		lines = append(lines, more)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
