package cli

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
	"github.com/tessro/cinder/internal/engine"
	"github.com/tessro/cinder/internal/library"
	"github.com/tessro/cinder/internal/metadata"
	"github.com/tessro/cinder/internal/transport"
)

// session is the playback stack shared by the ui and play commands.
type session struct {
	dir       string
	reader    *metadata.Reader
	transport *transport.Transport
}

// libraryDir returns the folder argument, or the configured one.
func libraryDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Library.Dir
}

// scanLibrary lists dir and reads tags for every file found.
func scanLibrary(dir string, reader core.MetadataReader, l *log.Logger) ([]core.Track, error) {
	tracks, err := library.Scan(dir, cfg.Library.Extensions)
	if err != nil {
		return nil, cerrors.WithSuggestion(err, fmt.Sprintf("Check that %s is a readable folder", dir))
	}
	result := library.Enrich(tracks, reader)
	if result.HasErrors() {
		l.Debug("using file names for untagged files", "count", len(result.Errors))
	}
	l.Info("library scanned", "dir", dir, "tracks", len(result.Data))
	return result.Data, nil
}

func openSession(dir string, l *log.Logger) (*session, error) {
	reader := metadata.NewReader()
	tracks, err := scanLibrary(dir, reader, l)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.WithFFmpegPath(cfg.Playback.FFmpegPath))
	t := transport.New(eng, core.NewPlaylist(tracks...),
		transport.WithMetadata(reader),
		transport.WithAutoplay(cfg.Playback.Autoplay),
		transport.WithVolume(cfg.Playback.Volume),
		transport.WithLogger(l),
	)

	return &session{dir: dir, reader: reader, transport: t}, nil
}

func (s *session) Close() error {
	return s.transport.Close()
}
