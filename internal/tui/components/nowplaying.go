package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tessro/cinder/internal/core"
	"github.com/tessro/cinder/internal/transport"
	"github.com/tessro/cinder/internal/tui/styles"
)

// NowPlaying displays the loaded track
type NowPlaying struct {
	coverID string
	cover   string
}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// SetCover caches the rendered cover for the track entry id.
// An empty cover clears it.
func (n *NowPlaying) SetCover(trackID, cells string) {
	n.coverID = trackID
	n.cover = cells
}

// CoverFor reports whether a cover has already been set for trackID.
func (n *NowPlaying) CoverFor(trackID string) bool {
	return n.coverID == trackID
}

// Render renders the now playing panel
func (n *NowPlaying) Render(state *core.PlaybackState, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		content = lipgloss.JoinVertical(lipgloss.Left,
			styles.Muted.Render("No track loaded"),
			"",
			transport.FormatDisplay(0, 0),
		)
	} else {
		content = n.renderTrack(state, width-4)
		if n.cover != "" && n.coverID == state.Track.ID {
			content = lipgloss.JoinHorizontal(lipgloss.Top, n.cover, "  ", content)
		}
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

func (n *NowPlaying) renderTrack(state *core.PlaybackState, width int) string {
	track := state.Track
	if n.cover != "" {
		width -= lipgloss.Width(n.cover) + 2
	}
	if width < 20 {
		width = 20
	}

	icon := styles.StatusIcon(state.IsPlaying)
	title := styles.Title.Render(runewidth.Truncate(track.Title, width-2, "…"))
	artist := styles.Subtitle.Render(runewidth.Truncate(track.Artist, width-2, "…"))
	album := styles.Dim.Render(runewidth.Truncate(track.Album, width-2, "…"))

	// Progress bar with "mm:ss / mm:ss" underneath
	progressBar := styles.ProgressBar(state.ProgressPercent(), width)
	times := transport.FormatDisplay(state.Position, state.Duration)

	volume := fmt.Sprintf("🔊 %s %3d%%", styles.VolumeBar(state.Volume, 10), state.Volume)

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progressBar,
		styles.Muted.Render(times)+"  "+styles.Dim.Render(state.State.String()),
		"",
		renderControls(state),
		styles.Muted.Render(volume),
	)
}

func renderControls(state *core.PlaybackState) string {
	controls := styles.Dim.Render("⏮  ")

	if state.IsPlaying {
		controls += styles.Playing.Render("⏸")
	} else {
		controls += styles.Paused.Render("▶")
	}

	controls += styles.Dim.Render("  ⏹  ⏭")
	return controls
}
