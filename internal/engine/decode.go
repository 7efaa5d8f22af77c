package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	cerrors "github.com/tessro/cinder/internal/errors"
)

const (
	extMP3  = ".mp3"
	extWAV  = ".wav"
	extOGG  = ".ogg"
	extFLAC = ".flac"
	extM4A  = ".m4a"
	extAAC  = ".aac"
	extWMA  = ".wma"
	extAIFF = ".aiff"
)

// SupportedExtensions lists every extension the engine can play.
var SupportedExtensions = []string{extMP3, extWAV, extOGG, extFLAC, extM4A, extAAC, extWMA, extAIFF}

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var nativeDecoders = map[string]decodeFunc{
	extMP3: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return mp3.Decode(f)
	},
	extWAV: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return wav.Decode(f)
	},
	extOGG: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return vorbis.Decode(f)
	},
	extFLAC: func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
		return flac.Decode(f)
	},
}

var transcoded = map[string]bool{
	extM4A:  true,
	extAAC:  true,
	extWMA:  true,
	extAIFF: true,
}

// Decoder turns a file path into a seekable stream.
type Decoder struct {
	ffmpegPath string
}

// NewDecoder creates a decoder that finds ffmpeg on PATH.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// SetFFmpegPath sets the ffmpeg binary. Empty means look it up on PATH.
func (d *Decoder) SetFFmpegPath(path string) {
	d.ffmpegPath = path
}

// Probe decodes path just far enough to report its length.
func (d *Decoder) Probe(ctx context.Context, path string) (time.Duration, error) {
	s, format, err := d.Decode(ctx, path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = s.Close() }()
	return format.SampleRate.D(s.Len()), nil
}

// CanDecode reports whether path has a playable extension.
func (d *Decoder) CanDecode(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, native := nativeDecoders[ext]
	return native || transcoded[ext]
}

// NeedsTranscode reports whether path is played through ffmpeg.
func (d *Decoder) NeedsTranscode(path string) bool {
	return transcoded[strings.ToLower(filepath.Ext(path))]
}

// Decode opens and decodes path. The returned streamer owns the file.
func (d *Decoder) Decode(ctx context.Context, path string) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if dec, ok := nativeDecoders[ext]; ok {
		f, err := os.Open(path)
		if err != nil {
			return nil, beep.Format{}, err
		}
		s, format, err := dec(f)
		if err != nil {
			_ = f.Close()
			return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		return s, format, nil
	}

	if transcoded[ext] {
		return d.transcode(ctx, path)
	}

	return nil, beep.Format{}, fmt.Errorf("%s: %w", filepath.Base(path), cerrors.ErrUnsupportedFormat)
}

// transcode converts path to 16-bit PCM WAV in memory with ffmpeg.
func (d *Decoder) transcode(ctx context.Context, path string) (beep.StreamSeekCloser, beep.Format, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, beep.Format{}, err
	}

	var buf bytes.Buffer
	cmd := ffmpeg.Input(path).Output("pipe:", ffmpeg.KwArgs{
		"format":   "wav",
		"acodec":   "pcm_s16le",
		"map":      "0:a",
		"loglevel": "error",
	}).WithOutput(&buf)

	if d.ffmpegPath != "" {
		cmd = cmd.SetFfmpegPath(d.ffmpegPath)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Run() }()

	select {
	case <-ctx.Done():
		return nil, beep.Format{}, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ffmpeg %s: %w", filepath.Base(path), err)
		}
	}

	s, format, err := decodePiped(buf.Bytes())
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("decode transcoded %s: %w", filepath.Base(path), err)
	}
	return s, format, nil
}

// decodePiped decodes WAV data written to a pipe. ffmpeg cannot seek back
// to fill in chunk sizes there and leaves 0xFFFFFFFF placeholders, which
// wav.Decode reads as a negative length.
func decodePiped(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if err := patchWAVSizes(data); err != nil {
		return nil, beep.Format{}, err
	}
	return wav.Decode(bytes.NewReader(data))
}

// patchWAVSizes rewrites the RIFF and data chunk sizes from len(data).
func patchWAVSizes(data []byte) error {
	const header = 12
	if len(data) < header || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return fmt.Errorf("not a WAV stream")
	}
	binary.LittleEndian.PutUint32(data[4:8], uint32(len(data)-8))

	for off := header; off+8 <= len(data); {
		id := string(data[off : off+4])
		if id == "data" {
			binary.LittleEndian.PutUint32(data[off+4:off+8], uint32(len(data)-off-8))
			return nil
		}
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		off += 8 + size + size%2
	}
	return fmt.Errorf("WAV stream has no data chunk")
}
