//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// RpioReader reads a button through go-rpio's memory-mapped GPIO registers.
type RpioReader struct {
	pin rpio.Pin
}

// NewRpioReader maps the GPIO registers and configures pin as an input with pull-up.
func NewRpioReader(pin int) (*RpioReader, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open rpio: %w", err)
	}
	p := rpio.Pin(pin)
	p.Input()
	p.PullUp()
	return &RpioReader{pin: p}, nil
}

// Read returns the raw level of the pin (true = high).
func (r *RpioReader) Read() (bool, error) {
	return r.pin.Read() == rpio.High, nil
}

// Close restores pull-down bias and unmaps the registers.
func (r *RpioReader) Close() error {
	r.pin.PullDown()
	if err := rpio.Close(); err != nil {
		return fmt.Errorf("close rpio: %w", err)
	}
	return nil
}
