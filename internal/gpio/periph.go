package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PeriphReader reads a button through periph.io host drivers.
type PeriphReader struct {
	pin pgpio.PinIO
}

// NewPeriphReader initializes the periph host and configures GPIO<pin> as an
// input with pull-up.
func NewPeriphReader(pin int) (*PeriphReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	name := fmt.Sprintf("GPIO%d", pin)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("no such pin %s", name)
	}
	if err := p.In(pgpio.PullUp, pgpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure %s: %w", name, err)
	}
	return &PeriphReader{pin: p}, nil
}

// Read returns the raw level of the pin (true = high).
func (r *PeriphReader) Read() (bool, error) {
	return r.pin.Read() == pgpio.High, nil
}

// Close halts the pin.
func (r *PeriphReader) Close() error {
	if err := r.pin.Halt(); err != nil {
		return fmt.Errorf("halt %s: %w", r.pin, err)
	}
	return nil
}
