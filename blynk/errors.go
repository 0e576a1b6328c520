package blynk

import (
	"errors"
	"fmt"

	"github.com/blynkgo/client/action"
)

// Kind tags every error this module surfaces to callers, per spec.md §7.
type Kind int

const (
	KindConnect Kind = iota
	KindNotConnected
	KindAuth
	KindServer
	KindTimeout
	KindConnectionClosed
	KindEncode
	KindDecode
	KindDecompress
	KindSaturated
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "Connect"
	case KindNotConnected:
		return "NotConnected"
	case KindAuth:
		return "Auth"
	case KindServer:
		return "Server"
	case KindTimeout:
		return "Timeout"
	case KindConnectionClosed:
		return "ConnectionClosed"
	case KindEncode:
		return "Encode"
	case KindDecode:
		return "Decode"
	case KindDecompress:
		return "Decompress"
	case KindSaturated:
		return "Saturated"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the error type every public Connector method returns on
// failure. Code is only meaningful for KindAuth and KindServer.
type Error struct {
	Kind Kind
	Code action.ResponseCode
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blynk: %s: %v", e.Kind, e.Err)
	}
	if e.Kind == KindAuth || e.Kind == KindServer {
		return fmt.Sprintf("blynk: %s: %s", e.Kind, e.Code)
	}
	return fmt.Sprintf("blynk: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newServerErr(kind Kind, code action.ResponseCode) *Error {
	return &Error{Kind: kind, Code: code}
}

// ErrNotConnected is returned as-is when a request is attempted with no
// transport, so errors.Is matches it. Other KindNotConnected errors (a
// failed write on a live transport) are distinct values; match those by
// Kind via errors.As.
var (
	ErrNotConnected = &Error{Kind: KindNotConnected}
)

func isKind(err error, kind Kind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
