package core

import (
	"context"
	"time"
)

// Engine is the capability set the transport needs from an audio backend.
type Engine interface {
	// Media
	Load(ctx context.Context, path string) error

	// Playback control
	Play() error
	Pause() error
	Stop() error
	SetPositionFraction(f float64) error

	// Volume control, percent in [0, 100]
	SetVolume(percent int) error

	// State queries
	IsPlaying() bool
	PositionMs() int64
	DurationMs() int64

	Close() error
}

// Metadata is the tag data read for a file.
type Metadata struct {
	Title     string
	Artist    string
	Album     string
	Duration  time.Duration
	Cover     []byte
	CoverMIME string
}

// MetadataReader reads display tags for a file.
type MetadataReader interface {
	Read(path string) (Metadata, error)
}
