package button

import "time"

// Button debounces one active-low input and classifies completed presses.
// It is not safe for concurrent use; one goroutine owns it and calls Update
// and PollEvent.
type Button struct {
	pin   Pin
	clock Clock

	// Immutable, in milliseconds.
	debounce uint32
	medium   uint32
	long     uint32

	rawLevel    bool
	stableLevel bool
	lastChange  uint32
	pressStart  uint32
	dwell       uint32

	// Single slot: a new event overwrites one that was never polled.
	pending EventKind
}

// New creates a Button reading from pin. The pin must already be configured
// as an input with pull-up bias. The thresholds in cfg are used as given;
// Debounce < Medium < Long is expected but not checked.
func New(pin Pin, clock Clock, cfg Config) *Button {
	now := clock.Millis()
	level := pin.Read()
	return &Button{
		pin:         pin,
		clock:       clock,
		debounce:    millis(cfg.Debounce),
		medium:      millis(cfg.Medium),
		long:        millis(cfg.Long),
		rawLevel:    level,
		stableLevel: level,
		lastChange:  now,
		pressStart:  now,
		pending:     EventNone,
	}
}

// Update samples the pin and advances the state machine. It never blocks and
// is meant to be called on every iteration of a polling loop.
func (b *Button) Update() {
	reading := b.pin.Read()
	now := b.clock.Millis()

	// Any raw change restarts the debounce window.
	if reading != b.rawLevel {
		b.lastChange = now
	}

	// Unsigned subtraction stays correct across clock wraparound.
	if now-b.lastChange > b.debounce && reading != b.stableLevel {
		b.stableLevel = reading
		if !b.stableLevel {
			b.pressStart = now
			b.pending = EventPressed
		} else {
			b.dwell = now - b.pressStart
			b.pending = b.classify(b.dwell)
		}
	}

	b.rawLevel = reading
}

// PollEvent returns the pending event and clears it.
func (b *Button) PollEvent() EventKind {
	ev := b.pending
	b.pending = EventNone
	return ev
}

// Pressed reports whether the debounced level is low.
func (b *Button) Pressed() bool {
	return !b.stableLevel
}

// State returns the debounced state.
func (b *Button) State() State {
	if b.Pressed() {
		return StatePressed
	}
	return StateReleased
}

// Dwell returns the duration of the most recently classified press.
func (b *Button) Dwell() time.Duration {
	return time.Duration(b.dwell) * time.Millisecond
}

func (b *Button) classify(d uint32) EventKind {
	switch {
	case d < b.medium:
		return EventShortPress
	case d < b.long:
		return EventMediumPress
	default:
		return EventLongPress
	}
}

func millis(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}
