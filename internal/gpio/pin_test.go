package gpio

import (
	"errors"
	"testing"
)

// faultReader returns errors for a range of Read() calls.
type faultReader struct {
	inner      *FakeReader
	call       int
	faultStart int // first call index that returns error (inclusive)
	faultEnd   int // last call index that returns error (exclusive)
}

func (r *faultReader) Read() (bool, error) {
	i := r.call
	r.call++
	if i >= r.faultStart && i < r.faultEnd {
		return false, errors.New("gpio fault")
	}
	return r.inner.Read()
}

func (r *faultReader) Close() error { return r.inner.Close() }

func TestPinPassesLevels(t *testing.T) {
	p := NewPin(NewFakeReader([]bool{true, false, false, true}))

	for i, want := range []bool{true, false, false, true} {
		if got := p.Read(); got != want {
			t.Errorf("read %d: expected %v, got %v", i, want, got)
		}
	}
	if err := p.Err(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPinHoldsLastLevelOnError(t *testing.T) {
	r := &faultReader{
		inner:      NewFakeReader([]bool{false, true}),
		faultStart: 1,
		faultEnd:   3,
	}
	p := NewPin(r)

	if got := p.Read(); got != false {
		t.Fatalf("read 0: expected false, got %v", got)
	}
	if err := p.Err(); err != nil {
		t.Fatalf("read 0: unexpected error: %v", err)
	}

	// Faulted reads keep reporting low.
	for i := 1; i < 3; i++ {
		if got := p.Read(); got != false {
			t.Errorf("read %d: expected last good level false, got %v", i, got)
		}
		if err := p.Err(); err == nil {
			t.Errorf("read %d: expected error", i)
		}
	}

	if got := p.Read(); got != true {
		t.Errorf("read 3: expected true after recovery, got %v", got)
	}
	if err := p.Err(); err != nil {
		t.Errorf("read 3: unexpected error: %v", err)
	}
}

func TestPinErrorBeforeFirstRead(t *testing.T) {
	f := NewFakeReader([]bool{false})
	f.ReadError = errors.New("not ready")
	p := NewPin(f)

	// Released under pull-up until a read succeeds.
	if got := p.Read(); got != true {
		t.Errorf("expected default high, got %v", got)
	}
}

func TestPinErrClears(t *testing.T) {
	f := NewFakeReader([]bool{true})
	f.ReadError = errors.New("boom")
	p := NewPin(f)

	p.Read()
	if err := p.Err(); err == nil {
		t.Fatal("expected error")
	}
	if err := p.Err(); err != nil {
		t.Errorf("second Err should be nil, got %v", err)
	}
}
