package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/cinder/internal/engine"
	"github.com/tessro/cinder/internal/logging"
	"github.com/tessro/cinder/internal/metadata"
	"github.com/tessro/cinder/internal/transport"
)

var listProbe bool

var listCmd = &cobra.Command{
	Use:     "list [dir]",
	Aliases: []string{"ls"},
	Short:   "List the tracks in a folder",
	Long: `List the audio files cinder would load from a folder, in playlist order,
with their tags and file sizes. Use --probe to decode each file and show
its length (formats that need ffmpeg are transcoded, which is slow).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listProbe, "probe", "p", false, "decode files to report their length")
	rootCmd.AddCommand(listCmd)
}

type listEntry struct {
	Index      int    `json:"index"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Size       int64  `json:"size"`
}

func runList(cmd *cobra.Command, args []string) error {
	l := logger
	if l == nil {
		l = logging.Discard()
	}
	dir := libraryDir(args)
	tracks, err := scanLibrary(dir, metadata.NewReader(), l)
	if err != nil {
		return err
	}

	decoder := engine.NewDecoder()
	decoder.SetFFmpegPath(cfg.Playback.FFmpegPath)

	entries := make([]listEntry, 0, len(tracks))
	var total int64
	for i, t := range tracks {
		e := listEntry{
			Index:  i + 1,
			Path:   t.Path,
			Title:  t.Title,
			Artist: t.Artist,
			Album:  t.Album,
		}
		if info, err := os.Stat(t.Path); err == nil {
			e.Size = info.Size()
			total += e.Size
		}
		if listProbe {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			d, err := decoder.Probe(ctx, t.Path)
			cancel()
			if err != nil {
				l.Warn("probe failed", "path", t.Path, "err", err)
			} else {
				e.DurationMs = d.Milliseconds()
			}
		}
		entries = append(entries, e)
	}

	out := cmd.OutOrStdout()
	if JSONOutput() {
		return writeJSON(out, entries)
	}

	if len(entries) == 0 {
		_, _ = fmt.Fprintf(out, "No audio files in %s\n", dir)
		return nil
	}

	table := NewTableWriter(out, "#", "TITLE", "ARTIST", "ALBUM", "LENGTH", "SIZE")
	for _, e := range entries {
		length := "-"
		if e.DurationMs > 0 {
			length = transport.FormatTime(e.DurationMs)
		}
		table.Row(
			strconv.Itoa(e.Index),
			TruncateString(e.Title, 40),
			TruncateString(e.Artist, 24),
			TruncateString(e.Album, 24),
			length,
			humanize.Bytes(uint64(e.Size)),
		)
	}
	table.Flush()

	_, _ = fmt.Fprintf(out, "\n%d tracks, %s\n", len(entries), humanize.Bytes(uint64(total)))
	return nil
}
