package core

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Track represents a playable audio file.
type Track struct {
	ID        string        `json:"id"`
	Path      string        `json:"path"`
	Title     string        `json:"title"`
	Artist    string        `json:"artist"`
	Album     string        `json:"album"`
	Duration  time.Duration `json:"duration"`
	Cover     []byte        `json:"-"`
	CoverMIME string        `json:"cover_mime,omitempty"`
}

// NewTrack creates a track for path with a base-name title.
// Every call yields a distinct ID, so the same file can appear twice.
func NewTrack(path string) Track {
	return Track{
		ID:    uuid.NewString(),
		Path:  path,
		Title: filepath.Base(path),
	}
}

// FileName returns the base name of the track's path.
func (t Track) FileName() string {
	return filepath.Base(t.Path)
}

// Ext returns the lower-cased file extension, including the dot.
func (t Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}

// HasCover reports whether embedded artwork was read for the track.
func (t Track) HasCover() bool {
	return len(t.Cover) > 0
}

// WithMetadata returns a copy of t with display fields replaced by m.
// Empty fields in m keep the current value.
func (t Track) WithMetadata(m Metadata) Track {
	if m.Title != "" {
		t.Title = m.Title
	}
	if m.Artist != "" {
		t.Artist = m.Artist
	}
	if m.Album != "" {
		t.Album = m.Album
	}
	if m.Duration > 0 {
		t.Duration = m.Duration
	}
	if len(m.Cover) > 0 {
		t.Cover = m.Cover
		t.CoverMIME = m.CoverMIME
	}
	return t
}
