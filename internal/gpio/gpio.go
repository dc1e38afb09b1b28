// Package gpio provides button input reading with hardware abstraction.
// Three backends are available: the Linux GPIO character device, periph.io
// host drivers, and go-rpio memory-mapped registers.
// The fake implementation allows testing without hardware.
package gpio

import "fmt"

// Reader reads the electrical level of one input line.
type Reader interface {
	// Read returns the raw level: true = high, false = low.
	// Lines are configured with pull-up bias, so an idle button reads high
	// and a pressed button reads low.
	Read() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultPin is the BCM pin the button is wired to.
const DefaultPin = 17

// DefaultChip is the GPIO character device used by the gpiocdev backend.
const DefaultChip = "gpiochip0"

// Backend names accepted by Open.
const (
	BackendCdev   = "gpiocdev"
	BackendPeriph = "periph"
	BackendRpio   = "rpio"
)

// Backends lists the valid backend names.
var Backends = []string{BackendCdev, BackendPeriph, BackendRpio}

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// Open returns a Reader for the given BCM pin using the named backend.
// chip is only used by the gpiocdev backend.
func Open(backend, chip string, pin int) (Reader, error) {
	var (
		r   Reader
		err error
	)
	switch backend {
	case BackendCdev:
		r, err = NewCdevReader(chip, pin)
	case BackendPeriph:
		r, err = NewPeriphReader(pin)
	case BackendRpio:
		r, err = NewRpioReader(pin)
	default:
		return nil, fmt.Errorf("unknown gpio backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}
