// Package transport drives an audio engine through a small playback state
// machine on top of a playlist.
package transport

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
)

// DefaultVolume matches the initial slider position of the player.
const DefaultVolume = 70

// Transport mediates between the playlist selection and the engine.
type Transport struct {
	mu sync.Mutex

	engine   core.Engine
	playlist *core.Playlist
	reader   core.MetadataReader
	logger   *log.Logger
	autoplay bool

	state    core.State
	track    *core.Track
	position int64
	duration int64
	volume   int
	loading  bool
}

// Option configures a Transport.
type Option func(*Transport)

// WithMetadata refreshes track tags through r on every load.
func WithMetadata(r core.MetadataReader) Option {
	return func(t *Transport) {
		t.reader = r
	}
}

// WithAutoplay controls whether Load starts playback.
func WithAutoplay(enabled bool) Option {
	return func(t *Transport) {
		t.autoplay = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithVolume sets the initial volume.
func WithVolume(percent int) Option {
	return func(t *Transport) {
		t.volume = clampVolume(percent)
	}
}

// New creates a Transport over engine and playlist.
func New(engine core.Engine, playlist *core.Playlist, opts ...Option) *Transport {
	if playlist == nil {
		playlist = core.NewPlaylist()
	}
	t := &Transport{
		engine:   engine,
		playlist: playlist,
		logger:   log.New(io.Discard),
		autoplay: true,
		state:    core.Stopped,
		volume:   DefaultVolume,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.engine.SetVolume(t.volume); err != nil {
		t.logger.Warn("initial volume rejected", "volume", t.volume, "err", err)
	}
	return t
}

// Add appends tracks to the playlist.
func (t *Transport) Add(tracks ...core.Track) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.playlist.Add(tracks...)
}

// Tracks returns a copy of the playlist.
func (t *Transport) Tracks() []core.Track {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playlist.Tracks()
}

// Cursor returns the playlist selection index, -1 if unset.
func (t *Transport) Cursor() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playlist.Index()
}

// Load loads track into the engine. A second Load while one is in
// flight fails with ErrLoadInProgress.
func (t *Transport) Load(ctx context.Context, track core.Track) error {
	return t.load(ctx, track, t.autoplay, -1)
}

func (t *Transport) load(ctx context.Context, track core.Track, play bool, index int) error {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return cerrors.ErrLoadInProgress
	}
	t.loading = true
	t.state = core.Loading
	t.mu.Unlock()

	err := t.engine.Load(ctx, track.Path)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = false

	if err != nil {
		// The engine may still hold the previous stream.
		if stopErr := t.engine.Stop(); stopErr != nil {
			t.logger.Warn("stop after failed load", "err", stopErr)
		}
		t.state = core.Stopped
		t.track = nil
		t.position, t.duration = 0, 0
		t.logger.Error("load failed", "path", track.Path, "err", err)
		return fmt.Errorf("load %s: %w: %w", track.FileName(), cerrors.ErrEngineUnavailable, err)
	}

	track = t.refreshMetadata(track)
	t.track = &track
	t.position = 0
	t.duration = t.engine.DurationMs()
	if index >= 0 {
		_ = t.playlist.Update(index, track)
	}
	t.logger.Debug("loaded", "path", track.Path, "duration_ms", t.duration)

	t.state = core.Paused
	if play {
		return t.playLocked()
	}
	return nil
}

func (t *Transport) refreshMetadata(track core.Track) core.Track {
	if t.reader != nil {
		m, err := t.reader.Read(track.Path)
		if err != nil {
			t.logger.Warn("using fallback metadata", "path", track.Path, "err", err)
		}
		track = track.WithMetadata(m)
	}
	if track.Duration == 0 {
		if ms := t.engine.DurationMs(); ms > 0 {
			track.Duration = msToDuration(ms)
		}
	}
	return track
}

// Play resumes or starts the loaded track.
func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return cerrors.ErrLoadInProgress
	}
	return t.playLocked()
}

func (t *Transport) playLocked() error {
	if t.track == nil {
		return cerrors.ErrNoTrack
	}
	if err := t.engine.Play(); err != nil {
		return fmt.Errorf("play: %w: %w", cerrors.ErrEngineUnavailable, err)
	}
	t.state = core.Playing
	return nil
}

// Pause pauses the loaded track.
func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return cerrors.ErrLoadInProgress
	}
	return t.pauseLocked()
}

func (t *Transport) pauseLocked() error {
	if t.track == nil {
		return cerrors.ErrNoTrack
	}
	if err := t.engine.Pause(); err != nil {
		return fmt.Errorf("pause: %w: %w", cerrors.ErrEngineUnavailable, err)
	}
	t.state = core.Paused
	return nil
}

// Stop halts playback and rewinds. The track stays loaded.
func (t *Transport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return cerrors.ErrLoadInProgress
	}
	if err := t.engine.Stop(); err != nil {
		return fmt.Errorf("stop: %w: %w", cerrors.ErrEngineUnavailable, err)
	}
	t.state = core.Stopped
	t.position = 0
	return nil
}

// PlayPause toggles playback based on what the engine reports, since the
// engine may have stopped at the end of a track without telling us.
// With nothing loaded it starts the playlist selection.
func (t *Transport) PlayPause(ctx context.Context) error {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return cerrors.ErrLoadInProgress
	}

	if t.track == nil {
		next := t.playlist.Current()
		if next == nil {
			var err error
			if next, err = t.playlist.Next(); err != nil {
				t.mu.Unlock()
				return err
			}
		}
		index := t.playlist.Index()
		t.mu.Unlock()
		return t.load(ctx, *next, true, index)
	}
	defer t.mu.Unlock()

	if t.engine.IsPlaying() {
		return t.pauseLocked()
	}
	return t.playLocked()
}

// Next advances the playlist and plays the new track.
func (t *Transport) Next(ctx context.Context) error {
	return t.advance(ctx, (*core.Playlist).Next)
}

// Previous steps the playlist back and plays the new track.
func (t *Transport) Previous(ctx context.Context) error {
	return t.advance(ctx, (*core.Playlist).Previous)
}

func (t *Transport) advance(ctx context.Context, step func(*core.Playlist) (*core.Track, error)) error {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return cerrors.ErrLoadInProgress
	}
	track, err := step(t.playlist)
	index := t.playlist.Index()
	t.mu.Unlock()
	if err != nil {
		return err
	}
	return t.load(ctx, *track, true, index)
}

// Select moves the playlist cursor to i and plays that track.
func (t *Transport) Select(ctx context.Context, i int) error {
	return t.selectIndex(ctx, i, true)
}

// Cue moves the playlist cursor to i and loads that track paused.
func (t *Transport) Cue(ctx context.Context, i int) error {
	return t.selectIndex(ctx, i, false)
}

func (t *Transport) selectIndex(ctx context.Context, i int, play bool) error {
	t.mu.Lock()
	if t.loading {
		t.mu.Unlock()
		return cerrors.ErrLoadInProgress
	}
	if err := t.playlist.SetIndex(i); err != nil {
		t.mu.Unlock()
		return err
	}
	track := t.playlist.Current()
	t.mu.Unlock()
	return t.load(ctx, *track, play, i)
}

// Seek moves to a normalized position. Values outside [0, 1] are clamped.
func (t *Transport) Seek(fraction float64) error {
	if math.IsNaN(fraction) {
		return fmt.Errorf("seek %v: %w", fraction, cerrors.ErrInvalidSeek)
	}
	fraction = math.Max(0, math.Min(1, fraction))

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.loading {
		return cerrors.ErrLoadInProgress
	}
	if t.track == nil {
		return cerrors.ErrNoTrack
	}
	if err := t.engine.SetPositionFraction(fraction); err != nil {
		return fmt.Errorf("seek: %w: %w", cerrors.ErrEngineUnavailable, err)
	}
	t.position = int64(fraction * float64(t.duration))
	return nil
}

// SetVolume clamps percent to [0, 100], applies it and returns the
// applied level.
func (t *Transport) SetVolume(percent int) (int, error) {
	percent = clampVolume(percent)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.engine.SetVolume(percent); err != nil {
		return t.volume, fmt.Errorf("volume: %w: %w", cerrors.ErrEngineUnavailable, err)
	}
	t.volume = percent
	return percent, nil
}

// Volume returns the current volume level.
func (t *Transport) Volume() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

// Time returns the engine position in milliseconds.
func (t *Transport) Time() int64 {
	return t.engine.PositionMs()
}

// Length returns the engine duration in milliseconds.
func (t *Transport) Length() int64 {
	return t.engine.DurationMs()
}

// State returns the transport state.
func (t *Transport) State() core.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Refresh polls the engine for position and duration. If the engine
// stopped on its own while playing, the track has finished: the state
// becomes Stopped and finished is true.
func (t *Transport) Refresh() (state *core.PlaybackState, finished bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.track != nil && !t.loading {
		t.position = t.engine.PositionMs()
		t.duration = t.engine.DurationMs()
		if t.state == core.Playing && !t.engine.IsPlaying() {
			t.state = core.Stopped
			finished = true
			t.logger.Debug("track finished", "path", t.track.Path)
		}
	}
	return t.snapshotLocked(), finished
}

// Snapshot returns the current state without polling.
func (t *Transport) Snapshot() *core.PlaybackState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Transport) snapshotLocked() *core.PlaybackState {
	s := &core.PlaybackState{
		State:    t.state,
		Position: t.position,
		Duration: t.duration,
		Volume:   t.volume,
	}
	if t.track != nil {
		track := *t.track
		s.Track = &track
		s.IsPlaying = !t.loading && t.engine.IsPlaying()
	}
	return s
}

// Close releases the engine.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = core.Stopped
	t.track = nil
	return t.engine.Close()
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
