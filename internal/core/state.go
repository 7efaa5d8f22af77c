package core

// State is the transport's playback state.
type State int

const (
	Stopped State = iota
	Loading
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a point-in-time snapshot of the transport.
// Position and Duration are in milliseconds.
type PlaybackState struct {
	State     State  `json:"state"`
	Track     *Track `json:"track"`
	IsPlaying bool   `json:"is_playing"`
	Position  int64  `json:"position_ms"`
	Duration  int64  `json:"duration_ms"`
	Volume    int    `json:"volume"`
}

// HasTrack returns true if there is a loaded track.
func (s *PlaybackState) HasTrack() bool {
	return s != nil && s.Track != nil
}

// Fraction returns playback progress in [0, 1].
// It is 0 when no media is loaded.
func (s *PlaybackState) Fraction() float64 {
	if s == nil || s.Duration <= 0 {
		return 0
	}
	f := float64(s.Position) / float64(s.Duration)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s *PlaybackState) ProgressPercent() float64 {
	return s.Fraction() * 100
}
