package control

import (
	"math"
	"sync/atomic"
)

// AtomicFloat64 is a lock-free float64 scalar, built on atomic.Uint64
// since the standard library has no native atomic float type. Used for
// the gain factor knob, which cmd/dabmod reads once per transmission
// frame for telemetry.
type AtomicFloat64 struct {
	bits atomic.Uint64
}

// NewAtomicFloat64 creates an AtomicFloat64 holding the given initial value.
func NewAtomicFloat64(v float64) *AtomicFloat64 {
	a := &AtomicFloat64{}
	a.Store(v)
	return a
}

// Load returns the current value.
func (a *AtomicFloat64) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

// Store sets the current value.
func (a *AtomicFloat64) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

// AtomicString is a lock-free string scalar built on atomic.Pointer.
type AtomicString struct {
	p atomic.Pointer[string]
}

// NewAtomicString creates an AtomicString holding the given initial value.
func NewAtomicString(v string) *AtomicString {
	a := &AtomicString{}
	a.Store(v)
	return a
}

// Load returns the current value.
func (a *AtomicString) Load() string {
	return *a.p.Load()
}

// Store sets the current value.
func (a *AtomicString) Store(v string) {
	a.p.Store(&v)
}

// AtomicBool is a lock-free bool scalar, a thin rename of atomic.Bool
// kept here so callers only need to import this package for every knob.
type AtomicBool struct {
	b atomic.Bool
}

// NewAtomicBool creates an AtomicBool holding the given initial value.
func NewAtomicBool(v bool) *AtomicBool {
	a := &AtomicBool{}
	a.Store(v)
	return a
}

// Load returns the current value.
func (a *AtomicBool) Load() bool { return a.b.Load() }

// Store sets the current value.
func (a *AtomicBool) Store(v bool) { a.b.Store(v) }
