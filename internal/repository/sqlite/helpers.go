package sqlite

import (
	"fmt"
	"time"
)

// ============================================================================
// Timestamp Helpers
// ============================================================================

// timestampLayout sorts lexically in the same order as time
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp converts t to the stored text form
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp converts a stored timestamp back to time.Time
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
