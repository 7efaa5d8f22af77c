package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/cinder/internal/core"
	cerrors "github.com/tessro/cinder/internal/errors"
	"github.com/tessro/cinder/internal/tail"
	"github.com/tessro/cinder/internal/wizard"
)

var (
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
	playInterval  time.Duration
	playPick      bool
	playStart     int
)

var playCmd = &cobra.Command{
	Use:   "play [dir]",
	Short: "Play a folder without the dashboard",
	Long: `Play every audio file in a folder and print playback events as they
happen. Tracks advance automatically unless playback.auto_advance is off.
Press Ctrl+C to stop.

Events printed:
  - Track changes (new song started)
  - Track completions (song finished)
  - Track skips (song left before it finished)
  - Pause/Resume/Stop
  - Volume changes

Examples:
  cinder play                      # Play the configured library folder
  cinder play ~/Music/album        # Play a specific folder
  cinder play --pick               # Choose the first track interactively
  cinder play -f '{{.Artist}} - {{.Title}} [{{.Duration}}]'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom format template")
	playCmd.Flags().DurationVarP(&playInterval, "interval", "i", time.Second, "poll interval")
	playCmd.Flags().BoolVar(&playPick, "pick", false, "choose the first track interactively")
	playCmd.Flags().IntVarP(&playStart, "start", "s", 1, "playlist position to start from (1-based)")

	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	s, err := openSession(libraryDir(args), logger)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	tracks := s.transport.Tracks()
	if len(tracks) == 0 {
		return cerrors.WithSuggestion(
			fmt.Errorf("%s: %w", s.dir, cerrors.ErrEmptyPlaylist),
			"Add audio files to "+s.dir+" or pass another folder")
	}

	start := playStart - 1
	if start < 0 || start >= len(tracks) {
		return fmt.Errorf("--start %d: %w (1-%d)", playStart, cerrors.ErrOutOfRange, len(tracks))
	}
	if playPick {
		start, err = wizard.NewInteractive().PromptTrack(tracks, start)
		if err != nil {
			return err
		}
		if start < 0 {
			return nil
		}
	}

	// Handle Ctrl+C gracefully
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := s.transport.Select(ctx, start); err != nil {
		return err
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!playNoEmoji && wizard.IsTerminal()),
		tail.WithTimestamp(playTimestamp),
		tail.WithTemplate(playFormat),
	)
	out := cmd.OutOrStdout()

	emit := func(e tail.Event) {
		if JSONOutput() {
			_ = writeEventJSON(out, e)
			return
		}
		_, _ = fmt.Fprintln(out, formatter.Format(e))
	}

	emit(tail.Event{Type: tail.EventTrackChange, Timestamp: time.Now(), Current: s.transport.Snapshot()})

	return follow(ctx, s.transport, playInterval, cfg.Playback.AutoAdvance, emit)
}

// player is what follow drives: a polled source that can advance.
type player interface {
	tail.Source
	Next(ctx context.Context) error
}

// follow prints events until ctx ends. On completion it advances to the
// next track, or returns when advancing is disabled.
func follow(ctx context.Context, p player, interval time.Duration, advance bool, emit func(tail.Event)) error {
	watcher := tail.NewWatcher(p, interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	stopped := false
	for event := range watcher.Events() {
		emit(event)
		if event.Type != tail.EventTrackComplete || stopped {
			continue
		}
		if !advance {
			watcher.Stop()
			stopped = true
			continue
		}
		if err := p.Next(ctx); err != nil {
			if logger != nil {
				logger.Error("advance failed", "err", err)
			}
			watcher.Stop()
			stopped = true
		}
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

type eventJSON struct {
	Type     string      `json:"type"`
	Time     time.Time   `json:"time"`
	State    string      `json:"state"`
	Track    *core.Track `json:"track,omitempty"`
	Position int64       `json:"position_ms"`
	Duration int64       `json:"duration_ms"`
	Volume   int         `json:"volume"`
}

func writeEventJSON(out io.Writer, e tail.Event) error {
	v := eventJSON{Type: e.Type.String(), Time: e.Timestamp}
	if e.Current != nil {
		v.State = e.Current.State.String()
		v.Track = e.Current.Track
		v.Position = e.Current.Position
		v.Duration = e.Current.Duration
		v.Volume = e.Current.Volume
	}
	if (e.Type == tail.EventTrackComplete || e.Type == tail.EventTrackSkip) && e.Previous != nil {
		v.Track = e.Previous.Track
	}
	return json.NewEncoder(out).Encode(v)
}
