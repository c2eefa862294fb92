// Package daberr defines the error taxonomy shared across the EDI receive
// path and the physical-layer encoder: which errors are recoverable (the
// affected packet/fragment/frame is dropped and the pipeline continues)
// and which are fatal (the pipeline must stop).
package daberr

import "fmt"

// Protocol reports a malformed sync word, invalid TAG length, unknown
// payload type, or bad protocol-TAG value. Recoverable: drop the current
// AF packet and continue the stream.
type Protocol struct{ Msg string }

func (e *Protocol) Error() string { return "protocol: " + e.Msg }

// NewProtocol builds a Protocol error.
func NewProtocol(format string, args ...interface{}) *Protocol {
	return &Protocol{Msg: fmt.Sprintf(format, args...)}
}

// Crc reports an AF or PFT-header CRC mismatch. Recoverable: discard the
// packet/fragment and continue.
type Crc struct{ Msg string }

func (e *Crc) Error() string { return "crc: " + e.Msg }

// NewCrc builds a Crc error.
func NewCrc(format string, args ...interface{}) *Crc {
	return &Crc{Msg: fmt.Sprintf(format, args...)}
}

// Assemble reports inconsistent TAG values, invalid MID/FP, or a missing
// required TAG at assemble() time. Recoverable: drop the frame and reset
// the collector.
type Assemble struct{ Msg string }

func (e *Assemble) Error() string { return "assemble: " + e.Msg }

// NewAssemble builds an Assemble error.
func NewAssemble(format string, args ...interface{}) *Assemble {
	return &Assemble{Msg: fmt.Sprintf(format, args...)}
}

// Config reports an invalid transmission mode, invalid protection profile,
// a framesize that does not match its bitrate, or an unsupported output
// rate. Fatal: refuse to start.
type Config struct{ Msg string }

func (e *Config) Error() string { return "config: " + e.Msg }

// NewConfig builds a Config error.
func NewConfig(format string, args ...interface{}) *Config {
	return &Config{Msg: fmt.Sprintf(format, args...)}
}

// Invariant reports a detected internal contradiction (e.g. a produced ETI
// frame longer than 6144 bytes, or a flowgraph buffer size mismatch).
// Fatal: the caller must restart the pipeline.
type Invariant struct{ Msg string }

func (e *Invariant) Error() string { return "invariant violated: " + e.Msg }

// NewInvariant builds an Invariant error.
func NewInvariant(format string, args ...interface{}) *Invariant {
	return &Invariant{Msg: fmt.Sprintf(format, args...)}
}

// TransientLoss reports a Reed-Solomon decode that failed beyond its
// correction capacity. Recoverable: drop one AF packet, emit a gap marker,
// continue.
type TransientLoss struct{ Msg string }

func (e *TransientLoss) Error() string { return "transient loss: " + e.Msg }

// NewTransientLoss builds a TransientLoss error.
func NewTransientLoss(format string, args ...interface{}) *TransientLoss {
	return &TransientLoss{Msg: fmt.Sprintf(format, args...)}
}
