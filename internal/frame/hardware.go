package frame

import (
	"encoding/binary"

	"github.com/sigurn/crc16"
)

// hardwareHeaderSize is the companion hardware-side header: command (1)
// + message id (2) + payload length (2).
const hardwareHeaderSize = 5

var modbusTable = crc16.MakeTable(crc16.CRC16_MODBUS)

// EncodeHardware renders f using the 5-byte hardware header variant,
// trailered with a Modbus CRC16 over the header and payload. This is a
// pure, standalone encoder for adapters that bridge to hardware-side
// tooling; spec.md §9 Open Question 1 is explicit that the core transport
// never invokes it — it exists alongside Encode, not instead of it.
func EncodeHardware(f Frame) []byte {
	buf := make([]byte, hardwareHeaderSize+len(f.Payload)+2)
	buf[0] = f.Command
	binary.BigEndian.PutUint16(buf[1:3], f.ID)
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(f.Payload)))
	copy(buf[hardwareHeaderSize:], f.Payload)

	sum := crc16.Checksum(buf[:hardwareHeaderSize+len(f.Payload)], modbusTable)
	binary.BigEndian.PutUint16(buf[hardwareHeaderSize+len(f.Payload):], sum)
	return buf
}
