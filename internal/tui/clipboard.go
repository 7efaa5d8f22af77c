package tui

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// copyText writes text to the system clipboard. Without a clipboard
// utility (ssh sessions, bare ttys) it falls back to an OSC 52 escape,
// which most terminals forward to the local clipboard.
func copyText(text string) error {
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return copyOSC52(os.Stderr, text)
}

func copyOSC52(w io.Writer, text string) error {
	seq := osc52.New(text)
	if os.Getenv("TMUX") != "" {
		seq = seq.Tmux()
	}
	_, err := seq.WriteTo(w)
	return err
}
