// Package output implements the modulator's sample sink: an io.Writer
// abstraction receiving interleaved little-endian complex64 I/Q
// samples at the configured output rate (spec_full.md section 6). The
// sink itself does not care what io.WriteCloser backs it; Open supports
// a file path or stdout.
package output

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
)

// Sink writes transmission-frame I/Q sample blocks to an underlying
// io.WriteCloser as interleaved little-endian float32 I/Q pairs (the
// wire format of a complex64), buffering writes so per-frame flushes
// do not dominate syscall overhead.
type Sink struct {
	w   *bufio.Writer
	c   io.Closer
	buf []byte
}

// Open returns a Sink backed by path. path == "-" writes to stdout
// (which is never closed by Close).
func Open(path string) (*Sink, error) {
	if path == "-" || path == "" {
		return &Sink{w: bufio.NewWriterSize(os.Stdout, 1<<20)}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Sink{w: bufio.NewWriterSize(f, 1<<20), c: f}, nil
}

// WriteSamples encodes one block of complex baseband samples as
// interleaved little-endian float32 I/Q and writes it to the sink.
func (s *Sink) WriteSamples(samples []complex128) error {
	need := len(samples) * 8
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	buf := s.buf[:need]
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(float32(real(v))))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(float32(imag(v))))
	}
	_, err := s.w.Write(buf)
	return err
}

// Flush pushes any buffered bytes to the underlying writer.
func (s *Sink) Flush() error {
	return s.w.Flush()
}

// Close flushes and, unless this sink writes to stdout, closes the
// underlying file.
func (s *Sink) Close() error {
	err := s.w.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
