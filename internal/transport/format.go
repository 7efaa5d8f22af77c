package transport

import (
	"fmt"
	"time"
)

// FormatTime renders milliseconds as zero-padded mm:ss. Minutes are not
// wrapped into hours, so 65 minutes renders as "65:00".
func FormatTime(ms int64) string {
	if ms <= 0 {
		return "00:00"
	}
	s := ms / 1000
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// FormatDisplay renders "current / total". With no media loaded
// (total <= 0) both sides are "00:00".
func FormatDisplay(position, total int64) string {
	if total <= 0 {
		return "00:00 / 00:00"
	}
	return FormatTime(position) + " / " + FormatTime(total)
}

// FormatDuration is FormatTime for a time.Duration.
func FormatDuration(d time.Duration) string {
	return FormatTime(d.Milliseconds())
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
