package orders

import (
	"fmt"
	"time"
)

// FormatOrderNumber renders the human-facing order number, e.g.
// ORD-20260828-000042.
func FormatOrderNumber(placedAt time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%06d", placedAt.Format("20060102"), seq)
}

// dayBounds returns the [start, end) window of the calendar day containing t.
func dayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.Add(24 * time.Hour)
}
