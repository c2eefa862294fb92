package edi

import "github.com/dbehnke/dabmod/pkg/daberr"

// TagItem is one decoded tag-packet item: a 4-byte ASCII name and its
// value bytes (the 4-byte bit-length header has already been validated
// and divided by 8).
type TagItem struct {
	Name  string
	Value []byte
}

// DecodeTagPacket splits a tag-packet payload into its items. Decoding
// stops (returning what was parsed so far plus an error) on a malformed
// length or truncated value.
func DecodeTagPacket(buf []byte) ([]TagItem, error) {
	var items []TagItem
	off := 0
	for off < len(buf) {
		if len(buf)-off < 8 {
			return items, daberr.NewProtocol("tag packet: %d trailing bytes, need at least 8 for a tag header", len(buf)-off)
		}
		name := string(buf[off : off+4])
		bitLen := uint32(buf[off+4])<<24 | uint32(buf[off+5])<<16 | uint32(buf[off+6])<<8 | uint32(buf[off+7])
		if bitLen%8 != 0 {
			return items, daberr.NewProtocol("tag %q: bit length %d not a multiple of 8", name, bitLen)
		}
		byteLen := int(bitLen / 8)
		off += 8
		if len(buf)-off < byteLen {
			return items, daberr.NewProtocol("tag %q: declared %d bytes, only %d available", name, byteLen, len(buf)-off)
		}
		items = append(items, TagItem{Name: name, Value: buf[off : off+byteLen]})
		off += byteLen
	}
	return items, nil
}

// TagHandler processes one decoded tag item against the ETI writer under
// construction. It returns an error to abort dispatch of the remaining
// tags in this AF packet.
type TagHandler func(w *ETIWriter, item TagItem) error

// TagDispatcher matches tag names against registered handlers using
// longest-prefix matching over 1-4 byte prefixes, and enforces that the
// protocol tag (*ptr) is the first tag seen in each AF packet.
type TagDispatcher struct {
	handlers map[string]TagHandler
	warned   map[string]bool

	// OnUnknownTag, if set, is invoked the first time a given tag name is
	// seen with no registered handler.
	OnUnknownTag func(name string)
}

// NewTagDispatcher creates a dispatcher with the core TAG handlers
// registered (*ptr, deti, est<n>, *dmy).
func NewTagDispatcher() *TagDispatcher {
	d := &TagDispatcher{
		handlers: make(map[string]TagHandler),
		warned:   make(map[string]bool),
	}
	d.Register("*ptr", handlePtr)
	d.Register("deti", handleDeti)
	d.Register("est", handleEst) // 3-byte prefix matches est0..est9
	d.Register("*dmy", handleDmy)
	return d
}

// Register installs handler for the given prefix (1-4 ASCII bytes).
func (d *TagDispatcher) Register(prefix string, handler TagHandler) {
	d.handlers[prefix] = handler
}

// lookup finds the longest registered prefix (up to 4 bytes) of name.
func (d *TagDispatcher) lookup(name string) (TagHandler, bool) {
	for n := len(name); n >= 1; n-- {
		if h, ok := d.handlers[name[:n]]; ok {
			return h, true
		}
	}
	return nil, false
}

// Dispatch processes every tag item from the given tag-packet payload in
// order against w, enforcing that *ptr arrives first. It stops at the
// first handler error or tag-packet decode error.
func (d *TagDispatcher) Dispatch(w *ETIWriter, buf []byte) error {
	items, decodeErr := DecodeTagPacket(buf)
	for _, item := range items {
		if !w.ProtocolValid && item.Name != "*ptr" {
			return daberr.NewProtocol("tag %q seen before *ptr", item.Name)
		}
		handler, ok := d.lookup(item.Name)
		if !ok {
			if !d.warned[item.Name] {
				d.warned[item.Name] = true
				if d.OnUnknownTag != nil {
					d.OnUnknownTag(item.Name)
				}
			}
			continue
		}
		if hErr := handler(w, item); hErr != nil {
			return hErr
		}
	}
	return decodeErr
}

func handlePtr(w *ETIWriter, item TagItem) error {
	if len(item.Value) != 8 {
		return daberr.NewProtocol("*ptr: expected 8 bytes, got %d", len(item.Value))
	}
	if string(item.Value[0:4]) != "DETI" {
		return daberr.NewProtocol("*ptr: expected protocol id DETI, got %q", item.Value[0:4])
	}
	major := uint16(item.Value[4])<<8 | uint16(item.Value[5])
	minor := uint16(item.Value[6])<<8 | uint16(item.Value[7])
	if major != 0 || minor != 0 {
		return daberr.NewProtocol("*ptr: expected version 0.0, got %d.%d", major, minor)
	}
	w.ProtocolValid = true
	return nil
}

func handleDmy(w *ETIWriter, item TagItem) error {
	return nil
}

func handleDeti(w *ETIWriter, item TagItem) error {
	v := item.Value
	if len(v) < 6 {
		return daberr.NewProtocol("deti: tag too short (%d bytes)", len(v))
	}
	// 16-bit header: bit15 atstf, bit14 ficf, bit13 rfudf, bits12-8 fcth,
	// bits7-0 fct.
	header := uint16(v[0])<<8 | uint16(v[1])
	atstf := header&0x8000 != 0
	ficf := header&0x4000 != 0
	fcth := uint8((header >> 8) & 0x1F)
	fct := uint8(header & 0xFF)

	ethHeader := uint32(v[2])<<24 | uint32(v[3])<<16 | uint32(v[4])<<8 | uint32(v[5])
	stat := uint8(ethHeader >> 24)
	mid := uint8((ethHeader >> 22) & 0x03)
	fp := uint8((ethHeader >> 19) & 0x07)
	mnsc := uint16(ethHeader & 0xFFFF)

	off := 6
	var utco uint8
	var seconds uint32
	var tsta uint32
	if atstf {
		if len(v) < off+8 {
			return daberr.NewProtocol("deti: atstf set but timestamp fields truncated")
		}
		utco = v[off]
		seconds = uint32(v[off+1])<<24 | uint32(v[off+2])<<16 | uint32(v[off+3])<<8 | uint32(v[off+4])
		tsta = uint32(v[off+5])<<16 | uint32(v[off+6])<<8 | uint32(v[off+7])
		off += 8
	}

	ficLen := 24 * 4
	if mid == 3 {
		ficLen = 32 * 4
	}
	if !ficf {
		ficLen = 0
	}
	if len(v) < off+ficLen {
		return daberr.NewProtocol("deti: FIC truncated, need %d bytes have %d", ficLen, len(v)-off)
	}
	fic := v[off : off+ficLen]
	off += ficLen

	w.FCT = fct
	w.FCTH = fcth
	w.FP = fp
	w.MID = mid
	w.FICF = ficf
	w.ATSTF = atstf
	w.TSTA = tsta
	w.Stat = stat
	w.UTCO = utco
	w.Seconds = seconds
	if ficf {
		w.FIC = append([]byte(nil), fic...)
	}
	w.HaveMNSC = true
	w.MNSC = mnsc
	w.FCValid = true
	return nil
}

func handleEst(w *ETIWriter, item TagItem) error {
	// item.Name is "est<n>"; n is a 1-indexed decimal subchannel number,
	// not itself needed beyond ordering since the stc list preserves
	// arrival order, matching "each subchannel's MST in the order
	// received" in the ETI writer contract.
	v := item.Value
	if len(v) < 3 {
		return daberr.NewProtocol("%s: tag too short (%d bytes)", item.Name, len(v))
	}
	sstc := uint32(v[0])<<16 | uint32(v[1])<<8 | uint32(v[2])
	scid := uint8((sstc >> 18) & 0x3F)
	sad := uint16((sstc >> 8) & 0x3FF)
	tpl := uint8(sstc & 0x3F)
	mst := append([]byte(nil), v[3:]...)

	w.Subchannels = append(w.Subchannels, Subchannel{
		SCID: scid,
		SAD:  sad,
		TPL:  tpl,
		MST:  mst,
	})
	return nil
}
