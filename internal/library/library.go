// Package library builds the startup playlist from a local folder.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
)

// DefaultExtensions are the recognized audio file extensions.
var DefaultExtensions = []string{".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac", ".wma", ".aiff"}

// IsSupported reports whether path ends in one of exts, ignoring case.
func IsSupported(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Scan lists dir, creating it when missing, and returns a track for
// every regular file with a supported extension, sorted by name.
// Subdirectories are not descended into.
func Scan(dir string, exts []string) ([]core.Track, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsSupported(entry.Name(), exts) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	tracks := make([]core.Track, 0, len(names))
	for _, name := range names {
		tracks = append(tracks, core.NewTrack(filepath.Join(dir, name)))
	}
	return tracks, nil
}

// Enrich reads tags for every track. Files whose tags cannot be read keep
// the reader's fallback values and are reported in Errors.
func Enrich(tracks []core.Track, reader core.MetadataReader) *cerrors.PartialResult[[]core.Track] {
	result := &cerrors.PartialResult[[]core.Track]{
		Data: make([]core.Track, 0, len(tracks)),
	}
	for _, t := range tracks {
		m, err := reader.Read(t.Path)
		result.AddError(err)
		result.Data = append(result.Data, t.WithMetadata(m))
	}
	return result
}

// Fingerprint hashes the ordered path list, so a rescan that found the
// same files can be detected without comparing tracks.
func Fingerprint(tracks []core.Track) (uint64, error) {
	paths := make([]string, len(tracks))
	for i, t := range tracks {
		paths[i] = t.Path
	}
	return hashstructure.Hash(paths, hashstructure.FormatV2, nil)
}
