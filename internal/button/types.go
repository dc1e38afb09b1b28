// Package button contains the debounce and press classification state machine
// for a single active-low push button.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// The pin level and the millisecond clock are injected.
package button

import "time"

// EventKind is the result of polling a Button.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventPressed
	EventShortPress
	EventMediumPress
	EventLongPress
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "NONE"
	case EventPressed:
		return "PRESSED"
	case EventShortPress:
		return "SHORT_PRESS"
	case EventMediumPress:
		return "MEDIUM_PRESS"
	case EventLongPress:
		return "LONG_PRESS"
	}
	return "UNKNOWN"
}

// State is the debounced logical state of the button.
type State string

const (
	StatePressed  State = "PRESSED"
	StateReleased State = "RELEASED"
)

// Pin reads the electrical level of the button input.
// true = high (released under pull-up), false = low (pressed).
type Pin interface {
	Read() bool
}

// PinFunc adapts an ordinary function to Pin.
type PinFunc func() bool

// Read calls f.
func (f PinFunc) Read() bool { return f() }

// Clock is a monotonic millisecond counter. It wraps at 2^32.
type Clock interface {
	Millis() uint32
}

// ClockFunc adapts an ordinary function to Clock.
type ClockFunc func() uint32

// Millis calls f.
func (f ClockFunc) Millis() uint32 { return f() }

// Config holds the timing thresholds of a Button.
// Durations are truncated to whole milliseconds.
type Config struct {
	Debounce time.Duration
	Medium   time.Duration
	Long     time.Duration
}

// DefaultConfig returns 50ms debounce, 1s medium and 3s long thresholds.
func DefaultConfig() Config {
	return Config{
		Debounce: 50 * time.Millisecond,
		Medium:   1000 * time.Millisecond,
		Long:     3000 * time.Millisecond,
	}
}

// Event is a polled event stamped with wall-clock time, ready to be published.
type Event struct {
	Timestamp time.Time
	Kind      EventKind
	State     State
	// Dwell is the press duration; zero for EventPressed.
	Dwell time.Duration
}

// EventCounts tracks the number of each event kind since startup.
type EventCounts struct {
	Pressed int
	Short   int
	Medium  int
	Long    int
}

// Add counts one event of kind k. EventNone is ignored.
func (c *EventCounts) Add(k EventKind) {
	switch k {
	case EventPressed:
		c.Pressed++
	case EventShortPress:
		c.Short++
	case EventMediumPress:
		c.Medium++
	case EventLongPress:
		c.Long++
	}
}
