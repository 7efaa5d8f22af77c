package core

import (
	"fmt"

	cerrors "github.com/tessro/cinder/internal/errors"
)

// Playlist is an ordered list of tracks with a selection cursor.
// A cursor of -1 means nothing is selected.
type Playlist struct {
	tracks []Track
	index  int
}

// NewPlaylist creates a playlist holding tracks, with no selection.
func NewPlaylist(tracks ...Track) *Playlist {
	p := &Playlist{index: -1}
	p.Add(tracks...)
	return p
}

// Add appends tracks. Duplicates are kept.
func (p *Playlist) Add(tracks ...Track) {
	p.tracks = append(p.tracks, tracks...)
}

// Tracks returns a copy of all tracks in order.
func (p *Playlist) Tracks() []Track {
	result := make([]Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// Track returns the track at i, or nil if i is out of range.
func (p *Playlist) Track(i int) *Track {
	if i < 0 || i >= len(p.tracks) {
		return nil
	}
	t := p.tracks[i]
	return &t
}

// Next moves the cursor forward, wrapping to the first track.
// From an unset cursor it selects index 0.
func (p *Playlist) Next() (*Track, error) {
	return p.step(1)
}

// Previous moves the cursor back, wrapping to the last track.
// From an unset cursor it selects the last track.
func (p *Playlist) Previous() (*Track, error) {
	return p.step(-1)
}

func (p *Playlist) step(delta int) (*Track, error) {
	n := len(p.tracks)
	if n == 0 {
		return nil, cerrors.ErrEmptyPlaylist
	}
	if p.index < 0 && delta < 0 {
		// Go's % truncates toward zero, so -2 % n would not wrap.
		p.index = n - 1
	} else {
		p.index = ((p.index+delta)%n + n) % n
	}
	return p.Track(p.index), nil
}

// SetIndex moves the cursor to i.
func (p *Playlist) SetIndex(i int) error {
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("select %d of %d tracks: %w", i, len(p.tracks), cerrors.ErrOutOfRange)
	}
	p.index = i
	return nil
}

// Current returns the selected track, or nil if nothing valid is selected.
func (p *Playlist) Current() *Track {
	return p.Track(p.index)
}

// Index returns the cursor position.
func (p *Playlist) Index() int {
	return p.index
}

// Upcoming returns tracks after the cursor.
func (p *Playlist) Upcoming() []Track {
	if p.index < 0 || p.index >= len(p.tracks)-1 {
		return nil
	}
	result := make([]Track, len(p.tracks)-p.index-1)
	copy(result, p.tracks[p.index+1:])
	return result
}

// Len returns the total number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}

// Update replaces the track at i, keeping its position.
// Used to store refreshed metadata.
func (p *Playlist) Update(i int, t Track) error {
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("update %d of %d tracks: %w", i, len(p.tracks), cerrors.ErrOutOfRange)
	}
	p.tracks[i] = t
	return nil
}
