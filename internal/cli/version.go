package cli

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and decoder information",
	RunE: func(cmd *cobra.Command, args []string) error {
		ffmpegPath := ""
		if cfg != nil {
			ffmpegPath = cfg.Playback.FFmpegPath
		}
		info := currentBuild(ffmpegPath)

		out := cmd.OutOrStdout()
		if JSONOutput() {
			return writeJSON(out, info)
		}
		return info.write(out, Verbose())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	// FFmpeg is the resolved ffmpeg binary, empty when m4a, aac, wma and
	// aiff files cannot be played.
	FFmpeg string `json:"ffmpeg"`
}

// currentBuild reports ldflags values, falling back to the module
// version recorded by `go install`.
func currentBuild(ffmpegPath string) buildInfo {
	info := buildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		FFmpeg:    findFFmpeg(ffmpegPath),
	}
	if info.Version == "dev" {
		if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
	}
	return info
}

func findFFmpeg(configured string) string {
	name := configured
	if name == "" {
		name = "ffmpeg"
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}

func (b buildInfo) write(out io.Writer, details bool) error {
	if _, err := fmt.Fprintf(out, "cinder %s\n", b.Version); err != nil {
		return err
	}
	if !details {
		return nil
	}
	ffmpeg := b.FFmpeg
	if ffmpeg == "" {
		ffmpeg = "not found (m4a, aac, wma and aiff disabled)"
	}
	_, err := fmt.Fprintf(out, "  commit:     %s\n  built:      %s\n  go version: %s\n  platform:   %s\n  ffmpeg:     %s\n",
		b.Commit, b.BuildDate, b.GoVersion, b.Platform, ffmpeg)
	return err
}
