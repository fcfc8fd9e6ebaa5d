package receipt

import "time"

// Clock supplies timestamps for log entries and creation times.
//
// Production code uses SystemClock. Tests inject a fixed or stepping
// clock (internal/testutil) so log entries and golden files are
// deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
