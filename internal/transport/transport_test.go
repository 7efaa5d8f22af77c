package transport

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
)

type fakeEngine struct {
	mu sync.Mutex

	loaded   string
	loads    []string
	playing  bool
	position int64
	duration int64
	volumes  []int
	seeks    []float64
	stops    int
	closed   bool

	loadErr error
	playErr error
	block   chan struct{}
	started chan struct{}
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{duration: 180000}
}

func (e *fakeEngine) Load(ctx context.Context, path string) error {
	if e.block != nil {
		e.started <- struct{}{}
		<-e.block
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads = append(e.loads, path)
	if e.loadErr != nil {
		return e.loadErr
	}
	e.loaded = path
	e.playing = false
	e.position = 0
	return nil
}

func (e *fakeEngine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *fakeEngine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.position = 0
	e.stops++
	return nil
}

func (e *fakeEngine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *fakeEngine) SetVolume(percent int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volumes = append(e.volumes, percent)
	return nil
}

func (e *fakeEngine) PositionMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *fakeEngine) DurationMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded == "" {
		return 0
	}
	return e.duration
}

func (e *fakeEngine) SetPositionFraction(f float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seeks = append(e.seeks, f)
	e.position = int64(f * float64(e.duration))
	return nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

// finish simulates the engine reaching the end of the stream.
func (e *fakeEngine) finish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playing = false
	e.position = e.duration
}

func (e *fakeEngine) lastVolume() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volumes[len(e.volumes)-1]
}

type fakeReader struct {
	meta map[string]core.Metadata
}

func (r fakeReader) Read(path string) (core.Metadata, error) {
	if m, ok := r.meta[path]; ok {
		return m, nil
	}
	return core.Metadata{Artist: "Unknown", Album: "Unknown"}, cerrors.ErrMetadataUnavailable
}

func newTransport(engine *fakeEngine, names ...string) *Transport {
	p := core.NewPlaylist()
	for _, n := range names {
		p.Add(core.NewTrack(n))
	}
	return New(engine, p)
}

func TestNewAppliesDefaultVolume(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	assert.Equal(t, DefaultVolume, tr.Volume())
	assert.Equal(t, DefaultVolume, e.lastVolume())
	assert.Equal(t, core.Stopped, tr.State())
}

func TestLoadAutoplays(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("/music/a.mp3")))

	assert.Equal(t, core.Playing, tr.State())
	assert.True(t, e.IsPlaying())
	s := tr.Snapshot()
	require.True(t, s.HasTrack())
	assert.Equal(t, "/music/a.mp3", s.Track.Path)
	assert.Equal(t, int64(180000), s.Duration)
	assert.Equal(t, 3*time.Minute, s.Track.Duration)
}

func TestLoadWithoutAutoplayPauses(t *testing.T) {
	e := newFakeEngine()
	tr := New(e, nil, WithAutoplay(false))

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("a.mp3")))
	assert.Equal(t, core.Paused, tr.State())
	assert.False(t, e.IsPlaying())
}

func TestLoadFailureLeavesStopped(t *testing.T) {
	e := newFakeEngine()
	e.loadErr = errors.New("decoder exploded")
	tr := newTransport(e)

	err := tr.Load(context.Background(), core.NewTrack("broken.mp3"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cerrors.ErrEngineUnavailable)
	assert.ErrorIs(t, err, e.loadErr)
	assert.Equal(t, core.Stopped, tr.State())
	assert.False(t, tr.Snapshot().HasTrack())
	assert.ErrorIs(t, tr.Play(), cerrors.ErrNoTrack)
}

func TestLoadFailureStopsPreviousTrack(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e, "a.mp3", "b.mp3")
	ctx := context.Background()

	require.NoError(t, tr.Next(ctx))
	require.True(t, e.IsPlaying())

	e.loadErr = errors.New("corrupt stream")
	require.ErrorIs(t, tr.Next(ctx), cerrors.ErrEngineUnavailable)
	assert.Equal(t, core.Stopped, tr.State())
	assert.False(t, e.IsPlaying(), "old stream must not keep playing")
	assert.Equal(t, 1, e.stops)

	require.NoError(t, tr.Stop())
	assert.Equal(t, 2, e.stops, "stop reaches the engine with no track loaded")
}

func TestPlayFailureAfterLoadPauses(t *testing.T) {
	e := newFakeEngine()
	e.playErr = errors.New("device gone")
	tr := newTransport(e, "a.mp3")

	err := tr.Next(context.Background())
	assert.ErrorIs(t, err, cerrors.ErrEngineUnavailable)
	assert.ErrorIs(t, err, e.playErr)
	assert.Equal(t, core.Paused, tr.State())
	assert.True(t, tr.Snapshot().HasTrack())

	e.playErr = nil
	require.NoError(t, tr.Play())
	assert.Equal(t, core.Playing, tr.State())
}

func TestConcurrentLoadRejected(t *testing.T) {
	e := newFakeEngine()
	e.block = make(chan struct{})
	e.started = make(chan struct{}, 1)
	tr := newTransport(e)

	done := make(chan error, 1)
	go func() {
		done <- tr.Load(context.Background(), core.NewTrack("first.mp3"))
	}()
	<-e.started

	assert.Equal(t, core.Loading, tr.State())
	assert.ErrorIs(t, tr.Load(context.Background(), core.NewTrack("second.mp3")), cerrors.ErrLoadInProgress)
	assert.ErrorIs(t, tr.Play(), cerrors.ErrLoadInProgress)

	close(e.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"first.mp3"}, e.loads)
	assert.Equal(t, core.Playing, tr.State())
}

func TestLoadRefreshesMetadata(t *testing.T) {
	e := newFakeEngine()
	p := core.NewPlaylist(core.NewTrack("a.mp3"), core.NewTrack("b.mp3"))
	reader := fakeReader{meta: map[string]core.Metadata{
		"a.mp3": {Title: "Alpha", Artist: "The Letters", Album: "ABC"},
	}}
	tr := New(e, p, WithMetadata(reader))

	require.NoError(t, tr.Next(context.Background()))
	s := tr.Snapshot()
	assert.Equal(t, "Alpha", s.Track.Title)
	assert.Equal(t, "The Letters", s.Track.Artist)
	assert.Equal(t, "Alpha", tr.Tracks()[0].Title, "playlist entry is refreshed")

	require.NoError(t, tr.Next(context.Background()))
	s = tr.Snapshot()
	assert.Equal(t, "b.mp3", s.Track.Title, "fallback keeps the file name")
	assert.Equal(t, "Unknown", s.Track.Artist)
	assert.Equal(t, core.Playing, s.State, "metadata failure is not fatal")
}

func TestPlayPauseTogglesOnEngineState(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e, "a.mp3")
	ctx := context.Background()

	require.NoError(t, tr.Load(ctx, core.NewTrack("a.mp3")))
	require.NoError(t, tr.Stop())
	start := e.IsPlaying()

	require.NoError(t, tr.PlayPause(ctx))
	assert.NotEqual(t, start, e.IsPlaying())
	assert.Equal(t, core.Playing, tr.State())

	require.NoError(t, tr.PlayPause(ctx))
	assert.Equal(t, start, e.IsPlaying())
	assert.Equal(t, core.Paused, tr.State())
}

func TestPlayPauseQueriesLiveEngine(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)
	ctx := context.Background()

	require.NoError(t, tr.Load(ctx, core.NewTrack("a.mp3")))
	e.finish()

	// Local state still says Playing; the engine has stopped.
	require.NoError(t, tr.PlayPause(ctx))
	assert.True(t, e.IsPlaying())
	assert.Equal(t, core.Playing, tr.State())
}

func TestPlayPauseWithNothingLoadedStartsPlaylist(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e, "a.mp3", "b.mp3")

	require.NoError(t, tr.PlayPause(context.Background()))
	assert.Equal(t, []string{"a.mp3"}, e.loads)
	assert.Equal(t, 0, tr.Cursor())
	assert.Equal(t, core.Playing, tr.State())

	empty := newTransport(newFakeEngine())
	assert.ErrorIs(t, empty.PlayPause(context.Background()), cerrors.ErrEmptyPlaylist)
}

func TestNextPreviousAlwaysPlay(t *testing.T) {
	e := newFakeEngine()
	tr := New(e, core.NewPlaylist(core.NewTrack("A"), core.NewTrack("B"), core.NewTrack("C")), WithAutoplay(false))
	ctx := context.Background()

	require.NoError(t, tr.Next(ctx))
	assert.Equal(t, core.Playing, tr.State())
	require.NoError(t, tr.Pause())

	require.NoError(t, tr.Next(ctx))
	assert.Equal(t, core.Playing, tr.State(), "advance plays even from paused")
	assert.Equal(t, "B", tr.Snapshot().Track.Path)

	require.NoError(t, tr.Previous(ctx))
	require.NoError(t, tr.Previous(ctx))
	assert.Equal(t, "C", tr.Snapshot().Track.Path)
	assert.Equal(t, []string{"A", "B", "A", "C"}, e.loads)
}

func TestNextOnEmptyPlaylistIsNoop(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	assert.ErrorIs(t, tr.Next(context.Background()), cerrors.ErrEmptyPlaylist)
	assert.ErrorIs(t, tr.Previous(context.Background()), cerrors.ErrEmptyPlaylist)
	assert.Empty(t, e.loads)
	assert.Equal(t, core.Stopped, tr.State())
}

func TestSelect(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e, "A", "B", "C")
	ctx := context.Background()

	require.NoError(t, tr.Select(ctx, 2))
	assert.Equal(t, "C", tr.Snapshot().Track.Path)
	assert.Equal(t, 2, tr.Cursor())

	err := tr.Select(ctx, 3)
	assert.ErrorIs(t, err, cerrors.ErrOutOfRange)
	assert.Equal(t, 2, tr.Cursor())
	assert.Equal(t, []string{"C"}, e.loads)
}

func TestCueLoadsPaused(t *testing.T) {
	e := newFakeEngine()
	p := core.NewPlaylist(core.NewTrack("A"), core.NewTrack("B"))
	tr := New(e, p)

	require.NoError(t, tr.Cue(context.Background(), 1))
	assert.Equal(t, core.Paused, tr.State())
	assert.Equal(t, 1, tr.Cursor())
	assert.False(t, e.IsPlaying())

	require.NoError(t, tr.PlayPause(context.Background()))
	assert.Equal(t, core.Playing, tr.State())
	assert.Equal(t, []string{"B"}, e.loads)
}

func TestStopRewinds(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)
	ctx := context.Background()

	require.NoError(t, tr.Load(ctx, core.NewTrack("a.mp3")))
	require.NoError(t, tr.Seek(0.5))
	require.NoError(t, tr.Stop())

	s := tr.Snapshot()
	assert.Equal(t, core.Stopped, s.State)
	assert.Equal(t, int64(0), s.Position)
	assert.True(t, s.HasTrack(), "stop keeps the track loaded")
	assert.Equal(t, 1, e.stops)

	require.NoError(t, tr.Play())
	assert.Equal(t, core.Playing, tr.State())
}

func TestSeekClamps(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	assert.ErrorIs(t, tr.Seek(0.5), cerrors.ErrNoTrack)

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("a.mp3")))
	require.NoError(t, tr.Seek(1.5))
	require.NoError(t, tr.Seek(-0.2))
	require.NoError(t, tr.Seek(0.25))
	assert.Equal(t, []float64{1, 0, 0.25}, e.seeks)
	assert.Equal(t, int64(45000), tr.Snapshot().Position)

	assert.ErrorIs(t, tr.Seek(math.NaN()), cerrors.ErrInvalidSeek)
	assert.Len(t, e.seeks, 3)
}

func TestSetVolumeClamps(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	tests := []struct {
		in   int
		want int
	}{
		{0, 0},
		{100, 100},
		{55, 55},
		{150, 100},
		{-3, 0},
	}
	for _, tt := range tests {
		got, err := tr.SetVolume(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.want, e.lastVolume(), "forwarded value for %d", tt.in)
	}
	assert.Equal(t, 0, tr.Volume())
}

func TestRefreshWithoutMediaShortCircuits(t *testing.T) {
	e := newFakeEngine()
	e.duration = 0
	tr := newTransport(e)

	s, finished := tr.Refresh()
	assert.False(t, finished)
	assert.Equal(t, 0.0, s.Fraction())
	assert.Equal(t, "00:00 / 00:00", FormatDisplay(s.Position, s.Duration))

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("empty.wav")))
	e.mu.Lock()
	e.position = 12345
	e.mu.Unlock()
	s, _ = tr.Refresh()
	assert.Equal(t, 0.0, s.Fraction())
	assert.Equal(t, "00:00 / 00:00", FormatDisplay(s.Position, s.Duration))
}

func TestRefreshDetectsEndOfTrack(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("a.mp3")))
	e.mu.Lock()
	e.position = 60000
	e.mu.Unlock()

	s, finished := tr.Refresh()
	assert.False(t, finished)
	assert.Equal(t, int64(60000), s.Position)
	assert.InDelta(t, 1.0/3, s.Fraction(), 1e-9)
	assert.Equal(t, "01:00 / 03:00", FormatDisplay(s.Position, s.Duration))

	e.finish()
	s, finished = tr.Refresh()
	assert.True(t, finished)
	assert.Equal(t, core.Stopped, s.State)

	_, finished = tr.Refresh()
	assert.False(t, finished, "finish is reported once")
}

func TestTimeAndLengthPassThrough(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	require.NoError(t, tr.Load(context.Background(), core.NewTrack("a.mp3")))
	e.mu.Lock()
	e.position = 4321
	e.mu.Unlock()

	assert.Equal(t, int64(4321), tr.Time())
	assert.Equal(t, int64(180000), tr.Length())
}

func TestClose(t *testing.T) {
	e := newFakeEngine()
	tr := newTransport(e)

	require.NoError(t, tr.Close())
	assert.True(t, e.closed)
	assert.False(t, tr.Snapshot().HasTrack())
}
