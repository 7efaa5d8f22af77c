// Package metadata reads display tags and cover art from audio files.
package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
)

// Unknown is shown for missing artist and album tags.
const Unknown = "Unknown"

// Reader reads tags with dhowden/tag.
type Reader struct{}

// NewReader creates a tag reader.
func NewReader() *Reader {
	return &Reader{}
}

var _ core.MetadataReader = (*Reader)(nil)

// Read returns the tags of path. When the file has no readable tags it
// returns Fallback(path) together with an error wrapping
// ErrMetadataUnavailable; callers may use the result either way.
func (r *Reader) Read(path string) (core.Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fallback(path), fmt.Errorf("%w: %w", cerrors.ErrMetadataUnavailable, err)
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return Fallback(path), fmt.Errorf("%w: %s: %w", cerrors.ErrMetadataUnavailable, filepath.Base(path), err)
	}

	return fromTags(path, m), nil
}

// Fallback is the metadata used when tags cannot be read.
func Fallback(path string) core.Metadata {
	return core.Metadata{
		Title:  filepath.Base(path),
		Artist: Unknown,
		Album:  Unknown,
	}
}

func fromTags(path string, m tag.Metadata) core.Metadata {
	out := Fallback(path)

	if v := strings.TrimSpace(m.Title()); v != "" {
		out.Title = v
	}
	if v := strings.TrimSpace(m.Artist()); v != "" {
		out.Artist = v
	} else if v := strings.TrimSpace(m.AlbumArtist()); v != "" {
		out.Artist = v
	}
	if v := strings.TrimSpace(m.Album()); v != "" {
		out.Album = v
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		out.Cover = pic.Data
		out.CoverMIME = pic.MIMEType
	}
	return out
}
