package button

import "time"

// SystemClock is a Clock backed by Go's monotonic clock.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a clock that reads 0 now.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis returns milliseconds since the clock was created, wrapping at 2^32
// (about 49.7 days).
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
