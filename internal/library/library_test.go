package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
}

func TestIsSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.mp3", true},
		{"A.FLAC", true},
		{"dir/b.aiff", true},
		{"c.txt", false},
		{"mp3", false},
		{"cover.jpg", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSupported(tt.path, DefaultExtensions), tt.path)
	}
	assert.False(t, IsSupported("a.mp3", []string{".flac"}))
}

func TestScanFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.ogg", "A.MP3", "notes.txt", "c.wav", "cover.jpg")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755))

	tracks, err := Scan(dir, nil)
	require.NoError(t, err)

	var names []string
	for _, tr := range tracks {
		names = append(names, tr.Title)
		assert.Equal(t, dir, filepath.Dir(tr.Path))
		assert.NotEmpty(t, tr.ID)
	}
	assert.Equal(t, []string{"A.MP3", "b.ogg", "c.wav"}, names)
}

func TestScanCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "songs")

	tracks, err := Scan(dir, DefaultExtensions)
	require.NoError(t, err)
	assert.Empty(t, tracks)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

type stubReader map[string]core.Metadata

func (r stubReader) Read(path string) (core.Metadata, error) {
	if m, ok := r[path]; ok {
		return m, nil
	}
	return core.Metadata{Artist: "Unknown"}, cerrors.ErrMetadataUnavailable
}

func TestEnrich(t *testing.T) {
	tracks := []core.Track{core.NewTrack("/m/a.mp3"), core.NewTrack("/m/b.mp3")}
	reader := stubReader{"/m/a.mp3": {Title: "Alpha", Artist: "X"}}

	result := Enrich(tracks, reader)
	require.Len(t, result.Data, 2)
	assert.Equal(t, "Alpha", result.Data[0].Title)
	assert.Equal(t, "b.mp3", result.Data[1].Title)
	assert.Equal(t, "Unknown", result.Data[1].Artist)
	assert.True(t, result.HasErrors())
	assert.Len(t, result.Errors, 1)
}

func TestFingerprint(t *testing.T) {
	a := []core.Track{core.NewTrack("/m/a.mp3"), core.NewTrack("/m/b.mp3")}
	b := []core.Track{core.NewTrack("/m/a.mp3"), core.NewTrack("/m/b.mp3")}
	c := []core.Track{core.NewTrack("/m/b.mp3"), core.NewTrack("/m/a.mp3")}

	ha, err := Fingerprint(a)
	require.NoError(t, err)
	hb, err := Fingerprint(b)
	require.NoError(t, err)
	hc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, ha, hb, "ids do not affect the fingerprint")
	assert.NotEqual(t, ha, hc, "order matters")
}
