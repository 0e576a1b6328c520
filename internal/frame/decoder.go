package frame

import (
	"encoding/binary"
	"sync"
)

// KnownOpcode reports whether cmd belongs to the fixed opcode catalogue.
// Decoder drops frames carrying an unknown opcode per spec step 5; the
// catalogue itself lives in package action, which is a consumer of this
// package, not a dependency of it — so Decoder takes the predicate as a
// constructor argument instead of importing action.
type KnownOpcode func(cmd uint8) bool

// Decoder incrementally parses a byte stream into complete frames. It
// holds its own buffer and mutex because the transport may feed it from
// any reader goroutine while another goroutine calls Feed concurrently
// is never expected, but Feed is still guarded so a future concurrent
// caller can't corrupt the buffer.
type Decoder struct {
	mu      sync.Mutex
	buf     []byte
	isKnown KnownOpcode
	onDrop  func()
}

// NewDecoder creates a Decoder. isKnown may be nil, in which case every
// opcode is accepted.
func NewDecoder(isKnown KnownOpcode) *Decoder {
	return &Decoder{isKnown: isKnown}
}

// OnDrop registers a callback invoked once for every frame Feed drops
// (oversized length, or an opcode isKnown rejects). Nil disables it.
func (d *Decoder) OnDrop(fn func()) {
	d.mu.Lock()
	d.onDrop = fn
	d.mu.Unlock()
}

// Feed appends data to the internal buffer and returns every complete
// frame that can be parsed out of it, in arrival order. Trailing
// incomplete bytes are retained for the next call.
func (d *Decoder) Feed(data []byte) []Frame {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf, data...)

	var out []Frame
	for {
		f, consumed, ok := d.tryParseOne()
		if consumed == 0 {
			break
		}
		d.buf = d.buf[consumed:]
		if ok {
			out = append(out, f)
		}
	}
	return out
}

// tryParseOne attempts to parse a single frame from the front of the
// buffer. It returns the number of bytes consumed (0 meaning "need more
// data, buffer untouched") and whether a frame was actually produced —
// a malformed oversized frame is consumed (header dropped) without
// producing one.
func (d *Decoder) tryParseOne() (Frame, int, bool) {
	if len(d.buf) < HeaderSize {
		return Frame{}, 0, false
	}

	cmd := d.buf[0]
	id := binary.BigEndian.Uint16(d.buf[1:3])
	length := binary.BigEndian.Uint32(d.buf[3:7])

	if cmd == Response {
		return Frame{Command: Response, ID: id, Length: length}, HeaderSize, true
	}

	if length > MaxPayload {
		// Malformed: drop just the header and keep scanning. There is no
		// reliable frame boundary to resynchronize on otherwise, but this
		// at least prevents a single bad length from wedging the decoder
		// forever.
		if d.onDrop != nil {
			d.onDrop()
		}
		return Frame{}, HeaderSize, false
	}

	total := HeaderSize + int(length)
	if len(d.buf) < total {
		return Frame{}, 0, false
	}

	if d.isKnown != nil && !d.isKnown(cmd) {
		if d.onDrop != nil {
			d.onDrop()
		}
		return Frame{}, total, false
	}

	payload := make([]byte, length)
	copy(payload, d.buf[HeaderSize:total])
	return Frame{Command: cmd, ID: id, Length: length, Payload: payload}, total, true
}
