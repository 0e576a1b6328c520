package action

import (
	"fmt"
	"strings"
)

// ReplyKind mirrors correlator.Kind without action importing the
// correlator package: spec.md C8 only needs to say which of the two
// reply shapes an action expects, not how the correlator represents
// that internally.
type ReplyKind int

const (
	ReplyResponseOnly ReplyKind = iota
	ReplyDataResponse
)

// Action is anything that can be encoded into an outbound frame body.
// Concrete actions are plain structs; this interface is the seam the
// adapter layer (spec.md C8) encodes through.
type Action interface {
	// Opcode returns the wire command this action encodes to.
	Opcode() Opcode
	// Kind reports which reply shape this action's response takes.
	Kind() ReplyKind
	// Encode renders the frame body using codec for any structured
	// (JSON) sub-fields.
	Encode(codec StructuredCodec) ([]byte, error)
}

// joinFields joins UTF-8 field values with a single NUL separator, the
// body encoding spec.md §4.8 specifies for every fixed-layout command.
func joinFields(fields ...string) []byte {
	return []byte(strings.Join(fields, "\x00"))
}

// DefaultAdapter renders a into the (opcode, body) pair spec.md C8
// requires, using codec for any Structured value. Every concrete Action
// in this package already knows its own opcode and body shape; this
// function is the single seam callers (the session controller) use
// instead of calling Opcode/Encode separately, so the Action → Frame
// mapping has one named entry point.
func DefaultAdapter(a Action, codec StructuredCodec) (Opcode, []byte, error) {
	body, err := a.Encode(codec)
	if err != nil {
		return 0, nil, err
	}
	return a.Opcode(), body, nil
}

// Login is the LOGIN action. PasswordDigest must already be the
// Base64-SHA-256 material from internal/authdigest, never the raw
// password — the core's callers are responsible for hashing before
// constructing this action (spec.md §6).
type Login struct {
	Email          string
	PasswordDigest string
	AppName        string
}

func (Login) Opcode() Opcode  { return OpLogin }
func (Login) Kind() ReplyKind { return ReplyResponseOnly }
func (a Login) Encode(StructuredCodec) ([]byte, error) {
	return joinFields(a.Email, a.PasswordDigest, "iOS", "1.0.0", a.AppName), nil
}

// ShareLogin is the SHARE_LOGIN action, used by connect_with_share_token.
type ShareLogin struct {
	ShareToken string
	AppName    string
}

func (ShareLogin) Opcode() Opcode  { return OpShareLogin }
func (ShareLogin) Kind() ReplyKind { return ReplyResponseOnly }
func (a ShareLogin) Encode(StructuredCodec) ([]byte, error) {
	return joinFields(a.ShareToken, "iOS", "1.0.0", a.AppName), nil
}

// Register is the REGISTER action.
type Register struct {
	Email          string
	PasswordDigest string
	AppName        string
}

func (Register) Opcode() Opcode  { return OpRegister }
func (Register) Kind() ReplyKind { return ReplyResponseOnly }
func (a Register) Encode(StructuredCodec) ([]byte, error) {
	return joinFields(a.Email, a.PasswordDigest, a.AppName), nil
}

// Ping is the keep-alive action; it carries no body.
type Ping struct{}

func (Ping) Opcode() Opcode                              { return OpPing }
func (Ping) Kind() ReplyKind                              { return ReplyResponseOnly }
func (Ping) Encode(StructuredCodec) ([]byte, error)       { return nil, nil }

// ActivateDashboard / DeactivateDashboard carry a single integer field.
type ActivateDashboard struct{ DashID int }

func (ActivateDashboard) Opcode() Opcode  { return OpActivateDashboard }
func (ActivateDashboard) Kind() ReplyKind { return ReplyResponseOnly }
func (a ActivateDashboard) Encode(StructuredCodec) ([]byte, error) {
	return []byte(fmt.Sprintf("%d", a.DashID)), nil
}

type DeactivateDashboard struct{ DashID int }

func (DeactivateDashboard) Opcode() Opcode  { return OpDeactivateDashboard }
func (DeactivateDashboard) Kind() ReplyKind { return ReplyResponseOnly }
func (a DeactivateDashboard) Encode(StructuredCodec) ([]byte, error) {
	return []byte(fmt.Sprintf("%d", a.DashID)), nil
}

// Hardware is the HARDWARE action: a device-targeted micro-protocol
// command (e.g. "vw 10 128"). Body is
// "{dashId}-{deviceId}\0<hw-cmd-bytes>" per spec.md §4.8, where the
// space-separated tokens of Command are themselves NUL-joined
// ("1-2\0vw\010\0128").
type Hardware struct {
	DashID   int
	DeviceID int
	Command  string // e.g. "vw 10 128"
}

func (Hardware) Opcode() Opcode  { return OpHardware }
func (Hardware) Kind() ReplyKind { return ReplyResponseOnly }
func (a Hardware) Encode(StructuredCodec) ([]byte, error) {
	target := fmt.Sprintf("%d-%d", a.DashID, a.DeviceID)
	fields := strings.Split(a.Command, " ")
	return joinFields(append([]string{target}, fields...)...), nil
}

// SetWidgetProperty targets a specific pin's widget property.
type SetWidgetProperty struct {
	DashID   int
	DeviceID int
	Pin      string
	Property string
	Value    string
}

func (SetWidgetProperty) Opcode() Opcode  { return OpSetWidgetProperty }
func (SetWidgetProperty) Kind() ReplyKind { return ReplyResponseOnly }
func (a SetWidgetProperty) Encode(StructuredCodec) ([]byte, error) {
	target := fmt.Sprintf("%d-%d", a.DashID, a.DeviceID)
	return joinFields(target, a.Pin, a.Property, a.Value), nil
}

// LoadProfileGzipped requests the full profile; its reply is a
// DataResponse (spec.md scenario S5).
type LoadProfileGzipped struct{}

func (LoadProfileGzipped) Opcode() Opcode                        { return OpLoadProfileGzipped }
func (LoadProfileGzipped) Kind() ReplyKind                       { return ReplyDataResponse }
func (LoadProfileGzipped) Encode(StructuredCodec) ([]byte, error) { return nil, nil }

// Logout ends the current session at the server.
type Logout struct{}

func (Logout) Opcode() Opcode                        { return OpLogout }
func (Logout) Kind() ReplyKind                       { return ReplyResponseOnly }
func (Logout) Encode(StructuredCodec) ([]byte, error) { return nil, nil }

// Redeem exchanges a redeem code for energy/credits.
type Redeem struct{ Code string }

func (Redeem) Opcode() Opcode  { return OpRedeem }
func (Redeem) Kind() ReplyKind { return ReplyResponseOnly }
func (a Redeem) Encode(StructuredCodec) ([]byte, error) {
	return []byte(a.Code), nil
}

// GetShareToken / RefreshShareToken are the share-token issuance and
// rotation actions ShareTokenSource drives.
type GetShareToken struct{ DashID int }

func (GetShareToken) Opcode() Opcode  { return OpGetShareToken }
func (GetShareToken) Kind() ReplyKind { return ReplyDataResponse }
func (a GetShareToken) Encode(StructuredCodec) ([]byte, error) {
	return []byte(fmt.Sprintf("%d", a.DashID)), nil
}

type RefreshShareToken struct{ DashID int }

func (RefreshShareToken) Opcode() Opcode  { return OpRefreshShareToken }
func (RefreshShareToken) Kind() ReplyKind { return ReplyDataResponse }
func (a RefreshShareToken) Encode(StructuredCodec) ([]byte, error) {
	return []byte(fmt.Sprintf("%d", a.DashID)), nil
}

// Structured is the generic fallback for the remaining 80+ domain-record
// commands (CreateDash, UpdateWidget, CreateReport, ...): spec.md §1
// treats those records as opaque payloads serialized through the
// pluggable codec in a single JSON field, so one generic action type
// covers all of them instead of 80 near-identical structs.
type Structured struct {
	Cmd   Opcode
	Reply ReplyKind
	Value any
}

func (s Structured) Opcode() Opcode  { return s.Cmd }
func (s Structured) Kind() ReplyKind { return s.Reply }
func (s Structured) Encode(codec StructuredCodec) ([]byte, error) {
	if s.Value == nil {
		return nil, nil
	}
	return codec.Marshal(s.Value)
}
