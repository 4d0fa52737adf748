package catalog

import "fmt"

// LyricIndex returns the line being sung at elapsedMs: the last line whose
// offset is at or before the current second. Before the first line it is 0,
// after the last line it stays on the last one. Returns -1 for no lyrics.
func LyricIndex(lines []LyricLine, elapsedMs int64) int {
	if len(lines) == 0 {
		return -1
	}
	sec := float64(elapsedMs) / 1000
	for i, l := range lines {
		if float64(l.Time) > sec {
			if i == 0 {
				return 0
			}
			return i - 1
		}
	}
	return len(lines) - 1
}

// FormatTime renders whole seconds as m:ss.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
