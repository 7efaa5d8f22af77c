package wizard

import (
	"os"

	"golang.org/x/term"

	"github.com/tessro/cinder/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled bool
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptTrack launches the track picker if interactive mode is available.
// It returns fallback when the picker cannot run, and -1 if cancelled.
func (i *Interactive) PromptTrack(tracks []core.Track, fallback int) (int, error) {
	if !i.CanInteract() || len(tracks) < 2 {
		return fallback, nil
	}
	return RunTrackPicker(tracks)
}
