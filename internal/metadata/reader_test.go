package metadata

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/tessro/cinder/internal/errors"
)

// id3v23 builds a minimal ID3v2.3 tag holding the given text frames.
func id3v23(frames map[string]string) []byte {
	var body bytes.Buffer
	for _, id := range []string{"TIT2", "TPE1", "TALB"} {
		text, ok := frames[id]
		if !ok {
			continue
		}
		content := append([]byte{0x00}, text...)
		body.WriteString(id)
		_ = binary.Write(&body, binary.BigEndian, uint32(len(content)))
		body.Write([]byte{0x00, 0x00})
		body.Write(content)
	}

	size := body.Len()
	header := []byte{'I', 'D', '3', 0x03, 0x00, 0x00,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}
	return append(header, body.Bytes()...)
}

func TestReadID3Tags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "track.mp3")
	data := id3v23(map[string]string{"TIT2": "Ember Glow", "TPE1": "Red Orange"})
	require.NoError(t, os.WriteFile(path, append(data, make([]byte, 128)...), 0o644))

	m, err := NewReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, "Ember Glow", m.Title)
	assert.Equal(t, "Red Orange", m.Artist)
	assert.Equal(t, Unknown, m.Album)
	assert.Nil(t, m.Cover)
}

func TestReadFallsBackOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.flac")

	m, err := NewReader().Read(path)
	assert.ErrorIs(t, err, cerrors.ErrMetadataUnavailable)
	assert.Equal(t, "missing.flac", m.Title)
	assert.Equal(t, Unknown, m.Artist)
	assert.Equal(t, Unknown, m.Album)
}

func TestReadFallsBackOnUntaggedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not audio"), 0o644))

	m, err := NewReader().Read(path)
	assert.ErrorIs(t, err, cerrors.ErrMetadataUnavailable)
	assert.Equal(t, Fallback(path), m)
}

type fakeTags struct {
	tag.Metadata
	title, artist, albumArtist, album string
	picture                           *tag.Picture
}

func (f fakeTags) Title() string         { return f.title }
func (f fakeTags) Artist() string        { return f.artist }
func (f fakeTags) AlbumArtist() string   { return f.albumArtist }
func (f fakeTags) Album() string         { return f.album }
func (f fakeTags) Picture() *tag.Picture { return f.picture }

func TestFromTags(t *testing.T) {
	tests := []struct {
		name string
		tags fakeTags
		want [3]string
	}{
		{"all present", fakeTags{title: "T", artist: "A", album: "B"}, [3]string{"T", "A", "B"}},
		{"blank title", fakeTags{title: "  ", artist: "A"}, [3]string{"song.ogg", "A", Unknown}},
		{"album artist", fakeTags{albumArtist: "AA"}, [3]string{"song.ogg", "AA", Unknown}},
		{"nothing", fakeTags{}, [3]string{"song.ogg", Unknown, Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fromTags("/music/song.ogg", tt.tags)
			assert.Equal(t, tt.want, [3]string{m.Title, m.Artist, m.Album})
		})
	}
}

func TestFromTagsPicture(t *testing.T) {
	m := fromTags("a.mp3", fakeTags{picture: &tag.Picture{MIMEType: "image/png", Data: []byte{1, 2, 3}}})
	assert.Equal(t, []byte{1, 2, 3}, m.Cover)
	assert.Equal(t, "image/png", m.CoverMIME)
}

func TestThumbnail(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for x := 0; x < 200; x++ {
		for y := 0; y < 100; y++ {
			src.Set(x, y, color.RGBA{R: 255, G: 87, B: 34, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	img, err := Thumbnail(buf.Bytes(), 40, 40)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 20, img.Bounds().Dy())

	_, err = Thumbnail(nil, 40, 40)
	assert.Error(t, err)
	_, err = Thumbnail([]byte("garbage"), 40, 40)
	assert.Error(t, err)
	_, err = Thumbnail(buf.Bytes(), 0, 10)
	assert.Error(t, err)
}
