package breath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const maxHours = 99

// MaxDuration is the longest stage in seconds, 99:59:59.
const MaxDuration = maxHours*3600 + 59*60 + 59

// ComposeDuration turns the hours, minutes and seconds segments of a
// duration input into seconds. Hours are clamped to 0..99 and minutes and
// seconds to 0..59. Unparsable segments count as zero, and a zero total
// becomes the one second fallback used everywhere else.
func ComposeDuration(hours, minutes, seconds string) int {
	h := min(parseSegment(hours), maxHours)
	m := clampSegment(parseSegment(minutes))
	s := clampSegment(parseSegment(seconds))
	total := h*3600 + m*60 + s
	if total < fallbackDuration {
		return fallbackDuration
	}
	return total
}

// SplitDuration is the inverse of ComposeDuration for display.
func SplitDuration(seconds int) (hours, minutes, secs int) {
	if seconds < 0 {
		seconds = 0
	}
	return seconds / 3600, (seconds % 3600) / 60, seconds % 60
}

// FormatDuration renders seconds as "1h 05m 10s", dropping leading zero units.
func FormatDuration(seconds int) string {
	h, m, s := SplitDuration(seconds)
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

func parseSegment(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		// Out-of-range values fail Atoi with ErrRange.
		if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(strings.TrimSpace(raw), "-") {
			return math.MaxInt32
		}
		return 0
	}
	return n
}

func clampDuration(seconds int) int {
	return max(fallbackDuration, min(seconds, MaxDuration))
}

func clampSegment(n int) int {
	if n > 59 {
		return 59
	}
	return n
}
