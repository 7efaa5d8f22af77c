// Package engine plays audio files through the system speaker using beep.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/tessro/cinder/internal/core"
)

// SpeakerRate is the output sample rate. Streams are resampled to it.
const SpeakerRate = beep.SampleRate(44100)

const bufferDuration = 100 * time.Millisecond

var (
	speakerOnce sync.Once
	speakerErr  error
)

func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(SpeakerRate, SpeakerRate.N(bufferDuration))
	})
	return speakerErr
}

// trackState bundles all resources for a single loaded file.
type trackState struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
}

func (t *trackState) Close() {
	if t.streamer != nil {
		_ = t.streamer.Close()
	}
}

// Engine implements core.Engine on top of the beep speaker.
// Stream fields are guarded by speaker.Lock once playback has started.
type Engine struct {
	decoder *Decoder

	mu       sync.Mutex
	current  *trackState
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    int
	finished bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithFFmpegPath sets the ffmpeg binary used for formats beep cannot decode.
func WithFFmpegPath(path string) Option {
	return func(e *Engine) {
		e.decoder.SetFFmpegPath(path)
	}
}

// New creates an Engine. The speaker is initialized on first load.
func New(opts ...Option) *Engine {
	e := &Engine{
		decoder: NewDecoder(),
		level:   100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ core.Engine = (*Engine)(nil)

// Load decodes path and queues it on the speaker, paused.
func (e *Engine) Load(ctx context.Context, path string) error {
	if err := initSpeaker(); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	streamer, format, err := e.decoder.Decode(ctx, path)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	speaker.Clear()
	if e.current != nil {
		e.current.Close()
	}
	e.current = &trackState{streamer: streamer, format: format}

	var s beep.Streamer = streamer
	if format.SampleRate != SpeakerRate {
		s = beep.Resample(4, format.SampleRate, SpeakerRate, streamer)
	}
	e.ctrl = &beep.Ctrl{Streamer: s, Paused: true}
	e.volume = &effects.Volume{Streamer: e.ctrl, Base: 2}
	applyLevel(e.volume, e.level)
	e.finished = false

	speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
		// Runs on the speaker goroutine with the speaker lock held.
		e.finished = true
	})))
	return nil
}

// Play resumes playback. A finished track restarts from the beginning.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}

	speaker.Lock()
	finished := e.finished
	speaker.Unlock()
	if finished {
		return e.replayLocked()
	}

	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// replayLocked rewinds a drained stream and queues it again.
func (e *Engine) replayLocked() error {
	speaker.Lock()
	err := e.current.streamer.Seek(0)
	e.finished = false
	e.ctrl.Paused = false
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
		e.finished = true
	})))
	return nil
}

// Pause pauses playback.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
	return nil
}

// Stop pauses and rewinds to the start. The file stays loaded.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	e.ctrl.Paused = true
	if e.finished {
		return nil
	}
	return e.current.streamer.Seek(0)
}

// IsPlaying reports whether audio is currently being produced.
func (e *Engine) IsPlaying() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return !e.ctrl.Paused && !e.finished
}

// SetVolume sets the level in percent. 0 mutes.
func (e *Engine) SetVolume(percent int) error {
	if percent < 0 || percent > 100 {
		return fmt.Errorf("volume %d out of range [0, 100]", percent)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.level = percent
	if e.volume == nil {
		return nil
	}
	speaker.Lock()
	applyLevel(e.volume, percent)
	speaker.Unlock()
	return nil
}

// PositionMs returns the playback position in milliseconds.
func (e *Engine) PositionMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	speaker.Lock()
	pos := e.current.streamer.Position()
	speaker.Unlock()
	return e.current.format.SampleRate.D(pos).Milliseconds()
}

// DurationMs returns the length of the loaded file in milliseconds.
func (e *Engine) DurationMs() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return 0
	}
	speaker.Lock()
	n := e.current.streamer.Len()
	speaker.Unlock()
	return e.current.format.SampleRate.D(n).Milliseconds()
}

// SetPositionFraction seeks to f of the track length.
func (e *Engine) SetPositionFraction(f float64) error {
	if math.IsNaN(f) || f < 0 || f > 1 {
		return fmt.Errorf("position %v out of range [0, 1]", f)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}

	speaker.Lock()
	n := e.current.streamer.Len()
	target := int(f * float64(n))
	if target >= n {
		target = n - 1
	}
	if target < 0 {
		target = 0
	}
	finished := e.finished
	err := e.current.streamer.Seek(target)
	paused := e.ctrl.Paused
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("seek: %w", err)
	}

	if finished {
		// The stream was drained from the mixer; queue it again.
		speaker.Lock()
		e.finished = false
		e.ctrl.Paused = paused
		speaker.Unlock()
		speaker.Play(beep.Seq(e.volume, beep.Callback(func() {
			e.finished = true
		})))
	}
	return nil
}

// Close stops output and releases the loaded file.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	speaker.Clear()
	e.current.Close()
	e.current = nil
	e.ctrl = nil
	e.volume = nil
	return nil
}

// applyLevel maps a percentage onto a base-2 volume effect.
func applyLevel(v *effects.Volume, percent int) {
	v.Silent = percent <= 0
	v.Volume = levelToGain(percent)
}

func levelToGain(percent int) float64 {
	if percent <= 0 {
		return 0
	}
	return math.Log2(float64(percent) / 100)
}
