package tail

import (
	"context"
	"time"

	"github.com/tessro/cinder/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventStop
	EventVolumeChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// Source is polled for playback state. finished reports that the
// current track reached its end since the last poll.
type Source interface {
	Refresh() (state *core.PlaybackState, finished bool)
}

// Watcher polls a source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	prev, _ := w.source.Refresh()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			curr, finished := w.source.Refresh()

			for _, e := range Diff(prev, curr, finished) {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// Diff compares two snapshots and returns the detected events.
func Diff(prev, curr *core.PlaybackState, finished bool) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First poll - no previous state
	if prev == nil {
		if curr.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if finished {
		add(EventTrackComplete)
	}

	if trackChanged(prev, curr) {
		if wasSkipped(prev) {
			add(EventTrackSkip)
		}
		if curr.HasTrack() {
			add(EventTrackChange)
		}
	} else if curr.HasTrack() {
		switch {
		case prev.State == core.Playing && curr.State == core.Paused:
			add(EventPause)
		case prev.State != core.Playing && curr.State == core.Playing:
			add(EventResume)
		case prev.State != core.Stopped && curr.State == core.Stopped && !finished:
			add(EventStop)
		}
	}

	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}

	return events
}

// trackChanged compares entry ids, so replaying a duplicate path counts.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.ID != curr.Track.ID
}

// wasSkipped returns true if the previous track was left before it ended.
func wasSkipped(state *core.PlaybackState) bool {
	if !state.HasTrack() || state.State == core.Stopped {
		return false
	}
	if state.Duration <= 0 {
		return true
	}
	// Consider skipped if progress is < 95% of duration
	threshold := float64(state.Duration) * 0.95
	return float64(state.Position) < threshold
}
