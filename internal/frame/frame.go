// Package frame implements the mobile-variant wire framing used by the
// Blynk-family control protocol: a fixed 7-byte header followed by an
// optional payload.
package frame

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of the mobile frame header:
// command (1) + message id (2) + status-or-length (4).
const HeaderSize = 7

// MaxPayload is the sanity cap on a declared payload length. Frames that
// claim a larger body are treated as malformed (spec step 3).
const MaxPayload = 10_000_000

// Response is the sentinel command opcode whose status-or-length field
// carries a response status code rather than a payload length.
const Response uint8 = 0

// Frame is one protocol message unit exchanged with the server.
type Frame struct {
	Command uint8
	ID      uint16
	// Length is the status-or-length field: a response status code when
	// Command == Response, otherwise the payload byte count.
	Length  uint32
	Payload []byte
}

// IsResponse reports whether f is a RESPONSE frame (no body, Length is a
// status code).
func (f Frame) IsResponse() bool { return f.Command == Response }

// Code returns the response status code carried by a RESPONSE frame. It
// is meaningless for any other frame.
func (f Frame) Code() uint32 { return f.Length }

// Encode renders f to its wire representation. A RESPONSE frame always
// encodes to exactly HeaderSize bytes regardless of its Payload field —
// RESPONSE frames carry no body on the wire.
func Encode(f Frame) []byte {
	if f.IsResponse() {
		buf := make([]byte, HeaderSize)
		buf[0] = f.Command
		binary.BigEndian.PutUint16(buf[1:3], f.ID)
		binary.BigEndian.PutUint32(buf[3:7], f.Length)
		return buf
	}

	buf := make([]byte, HeaderSize+len(f.Payload))
	buf[0] = f.Command
	binary.BigEndian.PutUint16(buf[1:3], f.ID)
	binary.BigEndian.PutUint32(buf[3:7], uint32(len(f.Payload)))
	copy(buf[HeaderSize:], f.Payload)
	return buf
}
