// Package router implements the inbound dispatch of spec.md C6: for
// every frame off the transport's message stream, it first gives the
// correlator a chance to resolve a pending request, and only then falls
// back to decoding a domain event.
//
// Grounded on src/Api/ApiImpl.go's switch packet.CmdID dispatch inside
// handleConnection, generalized from "dispatch to a business handler"
// into "dispatch to either a pending future or an event stream".
package router

import (
	"github.com/blynkgo/client/action"
	"github.com/blynkgo/client/internal/correlator"
	"github.com/blynkgo/client/internal/frame"
)

// Router ties a Correlator to the action package's decode function.
type Router struct {
	corr   *correlator.Correlator
	okCode uint32
}

// New creates a Router. okCode is the response code that means "still
// pending, the data frame is coming" for a DataResponse entry.
func New(corr *correlator.Correlator, okCode uint32) *Router {
	return &Router{corr: corr, okCode: okCode}
}

// Route implements spec.md §4.6 steps 1-3. It returns the decoded
// DomainEvent, or nil if the frame was fully consumed by the correlator.
func (r *Router) Route(f frame.Frame) action.DomainEvent {
	if f.IsResponse() {
		if r.corr.ResolveResponse(f.ID, f.Code(), r.okCode) {
			return nil
		}
		return action.ResponseEvent{ID: f.ID, Code: action.ResponseCode(f.Code())}
	}

	if r.corr.ResolveData(f.ID, f) {
		return nil
	}

	return action.DecodeEvent(action.Opcode(f.Command), f.ID, f.Payload)
}
