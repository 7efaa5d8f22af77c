package components

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/tessro/cinder/internal/core"
)

func tracks(names ...string) []core.Track {
	out := make([]core.Track, len(names))
	for i, n := range names {
		out[i] = core.NewTrack("/m/" + n)
	}
	return out
}

func TestPlaylistSelection(t *testing.T) {
	ts := tracks("a.mp3", "b.mp3", "c.mp3")
	p := NewPlaylist()

	assert.Equal(t, 0, p.Selected(ts))
	p.SelectPrev(ts)
	assert.Equal(t, 0, p.Selected(ts), "stays at the top")

	p.SelectNext(ts)
	p.SelectNext(ts)
	p.SelectNext(ts)
	assert.Equal(t, 2, p.Selected(ts), "stays at the bottom")

	assert.Equal(t, -1, p.Selected(nil))
}

func TestPlaylistFilter(t *testing.T) {
	ts := tracks("Alpha.mp3", "beta.mp3", "alphabet.ogg")
	ts[1].Artist = "ALPHAville"
	p := NewPlaylist()

	p.SetFilter("  ALPHA ")
	assert.Equal(t, "alpha", p.Filter())
	assert.Equal(t, []int{0, 1, 2}, p.Visible(ts))

	p.SetFilter("ogg")
	assert.Equal(t, []int{2}, p.Visible(ts))
	assert.Equal(t, -1, p.Selected(ts), "selection hidden by filter")
	p.SelectNext(ts)
	assert.Equal(t, 2, p.Selected(ts))
}

func TestPlaylistRenderMarksCurrent(t *testing.T) {
	ts := tracks("a.mp3", "b.mp3")
	out := NewPlaylist().Render(ts, 1, 60, 10, true)

	assert.Contains(t, out, "Playlist (2)")
	assert.Contains(t, out, "▶ b.mp3")

	empty := NewPlaylist().Render(nil, -1, 60, 10, false)
	assert.Contains(t, empty, "Playlist is empty")
}

func TestPlaylistRenderScrollsToSelection(t *testing.T) {
	names := make([]string, 30)
	for i := range names {
		names[i] = string(rune('a'+i%26)) + ".mp3"
	}
	ts := tracks(names...)
	p := NewPlaylist()
	p.Select(25)

	out := p.Render(ts, -1, 60, 10, false)
	assert.Contains(t, out, " 26.")
	assert.NotContains(t, out, "  1.")
}

func TestNowPlayingEmpty(t *testing.T) {
	out := NewNowPlaying().Render(&core.PlaybackState{}, 60, 12, false)
	assert.Contains(t, out, "No track loaded")
	assert.Contains(t, out, "00:00 / 00:00")
}

func TestNowPlayingTrack(t *testing.T) {
	tr := core.NewTrack("/m/song.mp3")
	tr.Artist = "Cinder"
	state := &core.PlaybackState{State: core.Playing, Track: &tr, IsPlaying: true, Position: 61000, Duration: 125000, Volume: 40}

	n := NewNowPlaying()
	out := n.Render(state, 70, 14, true)
	assert.Contains(t, out, "song.mp3")
	assert.Contains(t, out, "Cinder")
	assert.Contains(t, out, "01:01 / 02:05")
	assert.Contains(t, out, "40%")

	n.SetCover(tr.ID, "[cover]")
	assert.True(t, n.CoverFor(tr.ID))
	assert.Contains(t, n.Render(state, 70, 14, true), "[cover]")

	other := core.NewTrack("/m/other.mp3")
	state.Track = &other
	assert.NotContains(t, n.Render(state, 70, 14, true), "[cover]")
}

func TestCoverCells(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		for y := 0; y < 3; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 20, A: 255})
		}
	}

	out := CoverCells(img)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2, "two pixel rows per line")
	assert.Equal(t, 4, lipgloss.Width(lines[0]))
	assert.Empty(t, CoverCells(nil))
}

func TestPushHistory(t *testing.T) {
	var entries []HistoryEntry
	for i := 0; i < MaxHistory+5; i++ {
		entries = PushHistory(entries, HistoryEntry{Track: core.NewTrack("/m/x.mp3"), PlayedAt: time.Now()})
	}
	assert.Len(t, entries, MaxHistory)

	first := core.NewTrack("/m/first.mp3")
	entries = PushHistory(entries, HistoryEntry{Track: first, Skipped: true})
	assert.Equal(t, first.ID, entries[0].Track.ID)
}

func TestHistoryRender(t *testing.T) {
	tr := core.NewTrack("/m/done.mp3")
	tr.Artist = "Someone"
	out := NewHistory().Render([]HistoryEntry{
		{Track: tr, PlayedAt: time.Now()},
		{Track: core.NewTrack("/m/skip.mp3"), PlayedAt: time.Now().Add(-2 * time.Hour), Skipped: true},
	}, 50, 10, false)

	assert.Contains(t, out, "done.mp3 — Someone")
	assert.Contains(t, out, "now")
	assert.Contains(t, out, "⏭")
	assert.Contains(t, out, "2h")

	assert.Contains(t, NewHistory().Render(nil, 50, 10, false), "No history yet")
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "now", formatTimeAgo(time.Now()))
	assert.Equal(t, "5m", formatTimeAgo(time.Now().Add(-5*time.Minute-time.Second)))
	old := time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 4", formatTimeAgo(old))
}
