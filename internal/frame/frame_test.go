package frame

import (
	"bytes"
	"crypto/rand"
	"testing"
)

// TestPingPongRoundTrip pins spec.md scenario S1: Frame{cmd=6, id=42,
// length=0} encodes to exactly 06 00 2A 00 00 00 00 and decodes back to
// one Command frame with an empty payload.
func TestPingPongRoundTrip(t *testing.T) {
	f := Frame{Command: 6, ID: 42, Length: 0}
	buf := Encode(f)

	want := []byte{0x06, 0x00, 0x2A, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(buf, want) {
		t.Fatalf("Encode = %x, want %x", buf, want)
	}

	dec := NewDecoder(nil)
	got := dec.Feed(buf)
	if len(got) != 1 {
		t.Fatalf("Feed produced %d frames, want 1", len(got))
	}
	if got[0].Command != 6 || got[0].ID != 42 || len(got[0].Payload) != 0 {
		t.Fatalf("Feed = %+v, want Command=6 ID=42 empty payload", got[0])
	}
}

// TestResponseFrameIsAlwaysSevenBytes pins spec.md invariant 2: a
// RESPONSE frame always encodes to exactly HeaderSize bytes, regardless
// of the Length field, and decodes to a zero-length body.
func TestResponseFrameIsAlwaysSevenBytes(t *testing.T) {
	f := Frame{Command: Response, ID: 7, Length: 200, Payload: []byte("ignored")}
	buf := Encode(f)
	if len(buf) != HeaderSize {
		t.Fatalf("Encode len = %d, want %d", len(buf), HeaderSize)
	}

	dec := NewDecoder(nil)
	got := dec.Feed(buf)
	if len(got) != 1 || !got[0].IsResponse() || got[0].Code() != 200 {
		t.Fatalf("Feed = %+v", got)
	}
}

// TestFramingRoundTrip pins spec.md invariant 1 for a spread of
// non-RESPONSE commands and payload sizes.
func TestFramingRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"small", []byte("hello")},
		{"withNUL", []byte("a@b\x00digest\x00iOS")},
		{"large", randomBytes(t, 64*1024)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := Frame{Command: 20, ID: 1234, Payload: c.payload}
			buf := Encode(f)
			dec := NewDecoder(nil)
			got := dec.Feed(buf)
			if len(got) != 1 {
				t.Fatalf("Feed produced %d frames, want 1", len(got))
			}
			if got[0].Command != f.Command || got[0].ID != f.ID {
				t.Fatalf("Feed = %+v, want Command=%d ID=%d", got[0], f.Command, f.ID)
			}
			if !bytes.Equal(got[0].Payload, c.payload) {
				t.Fatalf("Feed payload = %x, want %x", got[0].Payload, c.payload)
			}
		})
	}
}

// TestIncrementalParsingAcrossArbitraryChunking pins spec.md invariant 3:
// feeding the same encoded stream split at any byte boundary yields the
// same frames in the same order as feeding it whole.
func TestIncrementalParsingAcrossArbitraryChunking(t *testing.T) {
	frames := []Frame{
		{Command: 2, ID: 1, Payload: []byte("a@b\x00digest\x00iOS\x001.0.0\x00App")},
		{Command: 6, ID: 2},
		{Command: Response, ID: 2, Length: 200},
		{Command: 20, ID: 3, Payload: []byte("1-1\x00vw\x0010\x00128")},
	}

	var whole []byte
	for _, f := range frames {
		whole = append(whole, Encode(f)...)
	}

	for chunkSize := 1; chunkSize <= len(whole); chunkSize++ {
		dec := NewDecoder(nil)
		var got []Frame
		for i := 0; i < len(whole); i += chunkSize {
			end := i + chunkSize
			if end > len(whole) {
				end = len(whole)
			}
			got = append(got, dec.Feed(whole[i:end])...)
		}
		if len(got) != len(frames) {
			t.Fatalf("chunkSize=%d: got %d frames, want %d", chunkSize, len(got), len(frames))
		}
		for i := range frames {
			if got[i].Command != frames[i].Command || got[i].ID != frames[i].ID {
				t.Fatalf("chunkSize=%d frame %d = %+v, want Command=%d ID=%d",
					chunkSize, i, got[i], frames[i].Command, frames[i].ID)
			}
		}
	}
}

func TestOversizedLengthIsDroppedWithoutBlocking(t *testing.T) {
	buf := make([]byte, HeaderSize)
	buf[0] = 20
	buf[3] = 0xFF
	buf[4] = 0xFF
	buf[5] = 0xFF
	buf[6] = 0xFF // length = 0xFFFFFFFF > MaxPayload

	dec := NewDecoder(nil)
	got := dec.Feed(buf)
	if len(got) != 0 {
		t.Fatalf("Feed = %+v, want no frames for an oversized length", got)
	}

	// The decoder must have dropped the malformed header rather than
	// waiting forever for a body that will never arrive.
	next := Encode(Frame{Command: 6, ID: 9})
	got = dec.Feed(next)
	if len(got) != 1 || got[0].Command != 6 {
		t.Fatalf("Feed after malformed header = %+v", got)
	}
}

func TestUnknownOpcodeIsDroppedSilently(t *testing.T) {
	dec := NewDecoder(func(cmd uint8) bool { return cmd == 6 })
	buf := Encode(Frame{Command: 250, ID: 1, Payload: []byte("x")})
	got := dec.Feed(buf)
	if len(got) != 0 {
		t.Fatalf("Feed = %+v, want unknown opcode dropped", got)
	}
}

func TestOnDropFiresForBothDropPaths(t *testing.T) {
	drops := 0
	dec := NewDecoder(func(cmd uint8) bool { return cmd == 6 })
	dec.OnDrop(func() { drops++ })

	unknown := Encode(Frame{Command: 250, ID: 1, Payload: []byte("x")})
	dec.Feed(unknown)
	if drops != 1 {
		t.Fatalf("drops after unknown opcode = %d, want 1", drops)
	}

	oversized := make([]byte, HeaderSize)
	oversized[0] = 6
	oversized[3] = 0xFF
	oversized[4] = 0xFF
	oversized[5] = 0xFF
	oversized[6] = 0xFF
	dec.Feed(oversized)
	if drops != 2 {
		t.Fatalf("drops after oversized length = %d, want 2", drops)
	}
}

func TestEncodeHardwareAppendsCRC(t *testing.T) {
	f := Frame{Command: 20, ID: 1, Payload: []byte("vw\x0010\x00128")}
	buf := EncodeHardware(f)
	if len(buf) != hardwareHeaderSize+len(f.Payload)+2 {
		t.Fatalf("EncodeHardware len = %d", len(buf))
	}
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}
