// Package correlator implements the request/response correlation table
// that sits between the session controller's sender path and the inbound
// router: it allocates wrapping 16-bit message ids, registers pending
// awaits keyed by id, and resolves or fails them as replies arrive.
//
// The map is the only structure shared between the read loop and the
// sender path; it is guarded by a mutex held only across map operations,
// grounded on device_manager/device_manager_impl.go's sync.Map-backed
// tokenCache/lastHeartbeat pattern generalized from a lookup cache into a
// pending-request table with an explicit TTL sweep.
package correlator

import (
	"errors"
	"sync"
	"time"

	"github.com/blynkgo/client/internal/frame"
)

// Kind discriminates the two reply shapes spec.md §3 assigns to a
// PendingRequest: the vast majority of requests expect a bare RESPONSE,
// while a handful (profile load) expect the reply to be a command-shaped
// frame sharing the request's id.
type Kind int

const (
	// ResponseOnly resolves when a RESPONSE frame arrives with the
	// pending entry's id.
	ResponseOnly Kind = iota
	// DataResponse resolves when a non-RESPONSE frame arrives with the
	// pending entry's id.
	DataResponse
)

// Errors surfaced to callers of Correlator. Kind-tagged errors living in
// package blynk wrap these; Correlator itself only needs to distinguish
// them, not label them for the public API.
var (
	ErrSaturated = errors.New("correlator: id space saturated")
	ErrTimeout   = errors.New("correlator: deadline exceeded")
	ErrClosed    = errors.New("correlator: connection closed")
)

// pending is one outstanding request awaiting resolution.
type pending struct {
	kind     Kind
	deadline time.Time
	result   chan Result
	done     bool
}

// Result is delivered exactly once to the channel returned by Allocate.
type Result struct {
	// Code is set when the entry resolved via ResolveResponse.
	Code uint32
	// Frame is set when the entry resolved via ResolveData.
	Frame frame.Frame
	// Err is set when the entry failed (Server(code), Timeout,
	// ConnectionClosed, ...). Exactly one of Code/Frame/Err is
	// meaningful for a given Result, discriminated by the caller
	// knowing which Kind it registered.
	Err error
}

// Correlator allocates ids and tracks pending requests.
type Correlator struct {
	mu      sync.Mutex
	nextID  uint16
	started bool
	closed  bool
	entries map[uint16]*pending
}

// New creates an empty Correlator. The id counter starts at 0 and wraps
// modulo 2^16.
func New() *Correlator {
	return &Correlator{entries: make(map[uint16]*pending)}
}

// Allocate reserves the next id, registers a pending entry of the given
// kind with the given timeout, and returns the id plus a channel that
// receives exactly one Result. It fails with ErrSaturated if every id in
// the 16-bit space already has a pending entry.
func (c *Correlator) Allocate(kind Kind, timeout time.Duration) (uint16, <-chan Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, nil, ErrClosed
	}

	if len(c.entries) >= 1<<16 {
		return 0, nil, ErrSaturated
	}

	id := c.nextID
	for {
		if _, taken := c.entries[id]; !taken {
			break
		}
		id++
	}
	c.nextID = id + 1

	ch := make(chan Result, 1)
	c.entries[id] = &pending{
		kind:     kind,
		deadline: time.Now().Add(timeout),
		result:   ch,
	}
	return id, ch, nil
}

// ResolveResponse handles an inbound RESPONSE frame. It reports whether a
// pending entry was actually resolved by it — the inbound router forwards
// an unmatched RESPONSE to observers as a plain domain event when this
// returns false.
//
// Per spec.md §4.5: a ResponseOnly entry at id completes with code. A
// DataResponse entry at id is not this reply's expected shape and is left
// pending — unless code is a non-OK error, in which case the request
// failed server-side before ever producing its data frame, so the entry
// is failed now rather than left to time out.
func (c *Correlator) ResolveResponse(id uint16, code uint32, okCode uint32) bool {
	c.mu.Lock()
	p, ok := c.entries[id]
	if !ok || p.done {
		c.mu.Unlock()
		return false
	}

	switch p.kind {
	case ResponseOnly:
		delete(c.entries, id)
		p.done = true
		c.mu.Unlock()
		p.result <- Result{Code: code}
		return true
	case DataResponse:
		if code == okCode {
			// The data frame is still coming; leave the entry pending.
			c.mu.Unlock()
			return false
		}
		delete(c.entries, id)
		p.done = true
		c.mu.Unlock()
		p.result <- Result{Err: &ServerError{Code: code}}
		return true
	default:
		c.mu.Unlock()
		return false
	}
}

// ResolveData handles an inbound non-RESPONSE frame whose id matches a
// DataResponse entry. It reports whether a pending entry was resolved.
func (c *Correlator) ResolveData(id uint16, f frame.Frame) bool {
	c.mu.Lock()
	p, ok := c.entries[id]
	if !ok || p.done || p.kind != DataResponse {
		c.mu.Unlock()
		return false
	}
	delete(c.entries, id)
	p.done = true
	c.mu.Unlock()

	p.result <- Result{Frame: f}
	return true
}

// FailAll completes every pending entry with err and marks the
// correlator closed: it is only ever called once its transport has died,
// so nothing will ever answer a request registered afterward — Allocate
// past this point fails fast with ErrClosed instead of handing out an id
// nothing can resolve.
func (c *Correlator) FailAll(err error) {
	c.mu.Lock()
	c.closed = true
	entries := c.entries
	c.entries = make(map[uint16]*pending)
	c.mu.Unlock()

	for _, p := range entries {
		if p.done {
			continue
		}
		p.done = true
		p.result <- Result{Err: err}
	}
}

// ExpireDeadlines completes every pending entry whose deadline has
// passed with ErrTimeout. Intended to be called periodically by the
// owning controller.
func (c *Correlator) ExpireDeadlines(now time.Time) {
	c.mu.Lock()
	var expired []*pending
	for id, p := range c.entries {
		if p.done || now.Before(p.deadline) {
			continue
		}
		expired = append(expired, p)
		delete(c.entries, id)
	}
	c.mu.Unlock()

	for _, p := range expired {
		p.done = true
		p.result <- Result{Err: ErrTimeout}
	}
}

// Len reports the number of currently pending entries, for metrics.
func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ServerError is the Result.Err of a DataResponse entry that receives a
// non-OK RESPONSE before its data frame. A ResponseOnly entry receives
// any status code, OK or not, in Result.Code instead.
type ServerError struct {
	Code uint32
}

func (e *ServerError) Error() string {
	return "correlator: server returned non-OK status"
}
