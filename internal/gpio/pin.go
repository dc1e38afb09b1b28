package gpio

// Pin adapts a Reader to the infallible pin the button state machine reads.
// A failed read returns the last good level and is kept for Err.
type Pin struct {
	r     Reader
	level bool
	err   error
}

// NewPin wraps r. Until the first successful read the level is high
// (released under pull-up).
func NewPin(r Reader) *Pin {
	return &Pin{r: r, level: true}
}

// Read returns the current level, or the last good level if the read fails.
func (p *Pin) Read() bool {
	level, err := p.r.Read()
	if err != nil {
		p.err = err
		return p.level
	}
	p.level = level
	return level
}

// Err returns the most recent read error since the last call, and clears it.
func (p *Pin) Err() error {
	err := p.err
	p.err = nil
	return err
}
