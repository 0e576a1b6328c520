package action

import (
	"strconv"
	"strings"
)

// PinKind distinguishes the three hardware pin address spaces a
// hardware message can target.
type PinKind int

const (
	PinUnknown PinKind = iota
	PinVirtual
	PinDigital
	PinAnalog
)

func parsePinKind(s string) PinKind {
	switch s {
	case "vw", "vr":
		return PinVirtual
	case "dw", "dr":
		return PinDigital
	case "aw", "ar":
		return PinAnalog
	default:
		return PinUnknown
	}
}

// DomainEvent is the inverse of Action: a decoded inbound frame the
// router hands to the public event stream (spec.md C6/C8).
type DomainEvent interface {
	EventOpcode() Opcode
}

// ResponseEvent is emitted for a RESPONSE frame that matched no pending
// request — spec.md scenario S4.
type ResponseEvent struct {
	ID   uint16
	Code ResponseCode
}

func (ResponseEvent) EventOpcode() Opcode { return OpResponse }

// HardwareConnectedEvent / DeviceOfflineEvent report device presence
// changes.
type HardwareConnectedEvent struct{ DashID, DeviceID int }

func (HardwareConnectedEvent) EventOpcode() Opcode { return OpHardwareConnected }

type DeviceOfflineEvent struct{ DashID, DeviceID int }

func (DeviceOfflineEvent) EventOpcode() Opcode { return OpDeviceOffline }

// PinUpdateEvent is the decoded form of a HARDWARE frame carrying a
// "vw"/"dw"/"aw" pin write, the shape virtualPinUpdate/digitalPinUpdate/
// analogPinUpdate design-note callbacks (spec.md §9) key off of.
type PinUpdateEvent struct {
	DashID, DeviceID int
	Kind             PinKind
	Pin              int
	Values           []string
}

func (PinUpdateEvent) EventOpcode() Opcode { return OpHardware }

// WidgetPropertyChangedEvent decodes a SET_WIDGET_PROPERTY frame.
type WidgetPropertyChangedEvent struct {
	DashID, DeviceID int
	Pin              string
	Property         string
	Value            string
}

func (WidgetPropertyChangedEvent) EventOpcode() Opcode { return OpSetWidgetProperty }

// ConnectionStateEvent reports a transport_state transition the session
// controller drives itself: "Up" after Connect, "Reconnecting" at each
// reconnect attempt, "Reconnected" when a reconnect succeeds, and
// "Disconnected". No event is published for Connecting.
// Attempt is the current reconnect attempt number, 0 outside a
// reconnect. It carries no wire opcode of its own (see OpConnectionState)
// and is published on the event stream alongside the optional
// Hooks.ConnectionStateChanged callback, so a Subscribe-only caller can
// observe reconnect lifecycle and attempt count too.
type ConnectionStateEvent struct {
	State   string
	Attempt int
}

func (ConnectionStateEvent) EventOpcode() Opcode { return OpConnectionState }

// AppSyncEvent / BlynkInternalEvent carry raw server-to-app text the
// caller is expected to interpret itself (they are server internals the
// core doesn't attempt to model further).
type AppSyncEvent struct{ Fields []string }

func (AppSyncEvent) EventOpcode() Opcode { return OpAppSync }

type BlynkInternalEvent struct{ Fields []string }

func (BlynkInternalEvent) EventOpcode() Opcode { return OpBlynkInternal }

// StructuredEvent is the fallback for every other known opcode: the raw
// payload is kept as RawPayload, and a caller that wants it decoded
// passes a codec and a destination to Decode.
type StructuredEvent struct {
	Cmd        Opcode
	ID         uint16
	RawPayload []byte
}

func (e StructuredEvent) EventOpcode() Opcode { return e.Cmd }

// Decode unmarshals RawPayload into v using codec.
func (e StructuredEvent) Decode(codec StructuredCodec, v any) error {
	return codec.Unmarshal(e.RawPayload, v)
}

// splitFields splits a NUL-separated payload into its fields.
func splitFields(payload []byte) []string {
	if len(payload) == 0 {
		return nil
	}
	return strings.Split(string(payload), "\x00")
}

// parseDashDevice parses the "{dashId}-{deviceId}" tuple spec.md §4.6
// requires for hardware-targeted frames.
func parseDashDevice(s string) (dashID, deviceID int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	d, err1 := strconv.Atoi(parts[0])
	dev, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return d, dev, true
}

// DecodeEvent implements the C8 inverse mapping: Frame → DomainEvent.
// cmd/id/payload come straight off a decoded frame.Frame; opcodes with no
// fixed NUL-joined layout come back as a StructuredEvent holding the raw
// payload, which its Decode method unmarshals with a codec. Unknown commands
// produce a nil event (spec.md §4.6 step 3's "unknown commands produce
// no event").
func DecodeEvent(cmd Opcode, id uint16, payload []byte) DomainEvent {
	fields := splitFields(payload)

	switch cmd {
	case OpHardwareConnected:
		if len(fields) < 1 {
			return nil
		}
		d, dev, ok := parseDashDevice(fields[0])
		if !ok {
			return nil
		}
		return HardwareConnectedEvent{DashID: d, DeviceID: dev}

	case OpDeviceOffline:
		if len(fields) < 1 {
			return nil
		}
		d, dev, ok := parseDashDevice(fields[0])
		if !ok {
			return nil
		}
		return DeviceOfflineEvent{DashID: d, DeviceID: dev}

	case OpHardware, OpHardwareSync:
		return decodeHardwareEvent(fields)

	case OpSetWidgetProperty:
		if len(fields) < 4 {
			return nil
		}
		d, dev, ok := parseDashDevice(fields[0])
		if !ok {
			return nil
		}
		return WidgetPropertyChangedEvent{
			DashID: d, DeviceID: dev,
			Pin: fields[1], Property: fields[2], Value: fields[3],
		}

	case OpAppSync:
		return AppSyncEvent{Fields: fields}

	case OpBlynkInternal:
		return BlynkInternalEvent{Fields: fields}

	default:
		if !IsKnown(uint8(cmd)) {
			return nil
		}
		return StructuredEvent{Cmd: cmd, ID: id, RawPayload: payload}
	}
}

// decodeHardwareEvent parses the "{dashId}-{deviceId}\0vw\0{pin}\0{val...}"
// shape spec.md §4.6 describes for hardware messages.
func decodeHardwareEvent(fields []string) DomainEvent {
	if len(fields) < 3 {
		return nil
	}
	d, dev, ok := parseDashDevice(fields[0])
	if !ok {
		return nil
	}
	kind := parsePinKind(fields[1])
	pin, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil
	}
	return PinUpdateEvent{
		DashID: d, DeviceID: dev,
		Kind: kind, Pin: pin, Values: fields[3:],
	}
}
