package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/cinder/internal/logging"
	"github.com/tessro/cinder/internal/tui"
)

var (
	uiRefresh int
	uiTheme   string
)

var uiCmd = &cobra.Command{
	Use:     "ui [dir]",
	Aliases: []string{"tui"},
	Short:   "Launch interactive dashboard",
	Long: `Launch the interactive terminal dashboard.

The dashboard provides a live view with:
  • Now Playing - cover, title, artist, progress, volume
  • Playlist - every file found in the library folder
  • History - tracks finished or skipped this session

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  Space        Play/Pause
  n / p        Next / previous track
  s            Stop
  ← / →        Seek 5%
  + / -        Volume up/down
  j / k        Move selection
  Enter        Play selection
  o            Open a file
  /            Filter playlist
  y            Copy file path
  r            Rescan library folder
  Tab          Switch panel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUI,
}

func init() {
	uiCmd.Flags().IntVar(&uiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	uiCmd.Flags().StringVar(&uiTheme, "theme", "", "color theme: auto, dark or light")
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	// The dashboard owns the terminal, so logs go to a file or nowhere.
	l, closer, err := logging.OpenFile(cfg.Log.File, level)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	s, err := openSession(libraryDir(args), l)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	refresh := cfg.TUI.RefreshInterval
	if uiRefresh > 0 {
		refresh = uiRefresh
	}
	theme := cfg.TUI.Theme
	if uiTheme != "" {
		theme = uiTheme
	}

	return tui.Run(tui.Options{
		Transport:       s.transport,
		Reader:          s.reader,
		LibraryDir:      s.dir,
		Extensions:      cfg.Library.Extensions,
		RefreshInterval: time.Duration(refresh) * time.Millisecond,
		AutoAdvance:     cfg.Playback.AutoAdvance,
		ShowCover:       cfg.TUI.ShowCover,
		Theme:           theme,
		Logger:          l,
	})
}
