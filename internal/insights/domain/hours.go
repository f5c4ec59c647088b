package domain

import (
	"fmt"
	"math"
	"time"
)

// IntervalMinutes returns the whole minutes between start and end,
// rounded half-up. A nil end means the interval is still open and
// contributes 0. Inverted intervals clamp to 0 rather than going
// negative.
func IntervalMinutes(start time.Time, end *time.Time) int {
	if end == nil {
		return 0
	}
	minutes := end.Sub(start).Minutes()
	rounded := int(math.Floor(minutes + 0.5))
	if rounded < 0 {
		return 0
	}
	return rounded
}

// FormatHours renders fractional hours for display: "0h", "45m",
// "2h", "2h 15m". Values are rounded half-up to whole minutes first, so
// 1.999h renders as "2h", not "1h 59m".
func FormatHours(hours float64) string {
	totalMinutes := int(math.Floor(hours*60 + 0.5))
	if totalMinutes <= 0 {
		return "0h"
	}

	h := totalMinutes / 60
	m := totalMinutes % 60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
