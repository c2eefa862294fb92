package edi

import (
	"github.com/dbehnke/dabmod/pkg/daberr"
)

// Receiver turns a byte stream of PFT fragments and/or AF packets into a
// stream of parsed ETI frames. It is the composition of the fragment
// parser, PFTManager, AFDecoder, TagDispatcher and ETIWriter described in
// spec.md section 2's data-flow diagram; it holds no network code of its
// own, so it can be fed from a UDP listener, a TCP stream, or a test.
//
// Receiver is not safe for concurrent use: spec.md section 5 models the
// EDI receive path as a single producer feeding a bounded queue, and a
// Receiver is that producer's internal state.
type Receiver struct {
	pft        *PFTManager
	afDecoder  *AFDecoder
	dispatcher *TagDispatcher
	writer     *ETIWriter

	// OnUnknownTag, if set, is wired onto the TagDispatcher.
	OnUnknownTag func(name string)
}

// NewReceiver builds a Receiver with default PFT/AF/TAG components.
func NewReceiver() *Receiver {
	r := &Receiver{
		pft:        NewPFTManager(),
		afDecoder:  NewAFDecoder(),
		dispatcher: NewTagDispatcher(),
		writer:     NewETIWriter(),
	}
	r.dispatcher.OnUnknownTag = func(name string) {
		if r.OnUnknownTag != nil {
			r.OnUnknownTag(name)
		}
	}
	return r
}

// PushDatagram feeds one transport datagram (a single UDP payload, or one
// framed unit of a TCP stream) into the receiver. A datagram may contain
// either a PFT fragment ('P','F') or a standalone AF packet ('A','F');
// anything else is a ProtocolError.
//
// It returns the ETI frame wire bytes assembled as a result of this
// datagram, if any. Most datagrams (PFT fragments that do not yet
// complete a packet) produce no frame.
func (r *Receiver) PushDatagram(buf []byte) ([]byte, error) {
	if len(buf) < 2 {
		return nil, daberr.NewProtocol("datagram too short to carry a sync word")
	}

	switch {
	case buf[0] == 'P' && buf[1] == 'F':
		consumed, frag, err := ParseFragment(buf)
		if err != nil {
			return nil, err
		}
		if consumed == 0 {
			return nil, nil
		}
		r.pft.Push(frag)
		return r.drainAF()

	case buf[0] == 'A' && buf[1] == 'F':
		return r.handleAF(buf)

	default:
		return nil, daberr.NewProtocol("datagram: bad sync %q%q", buf[0], buf[1])
	}
}

// drainAF pulls at most one assembled AF packet out of the PFT manager
// and, if one was produced, runs it through the AF decoder and TAG
// dispatcher. Only one pseq advances per PushDatagram call, consistent
// with the PFTManager's per-push contract (spec.md section 4.3).
func (r *Receiver) drainAF() ([]byte, error) {
	payload, ready := r.pft.GetNextAF()
	if !ready || len(payload) == 0 {
		return nil, nil
	}
	return r.handleAF(payload)
}

func (r *Receiver) handleAF(buf []byte) ([]byte, error) {
	af, err := r.afDecoder.Decode(buf)
	if err != nil {
		return nil, err
	}
	if af.PayloadType != 'T' {
		return nil, daberr.NewProtocol("AF packet: unsupported payload type %q", af.PayloadType)
	}
	if err := r.dispatcher.Dispatch(r.writer, af.Payload); err != nil {
		r.writer.Reinit()
		return nil, err
	}
	frame, err := r.writer.Assemble()
	if err != nil {
		r.writer.Reinit()
		return nil, err
	}
	return frame, nil
}
