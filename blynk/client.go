// Package blynk is the public session controller (spec.md C7): it owns
// the TLS transport, the request correlator, the inbound router, the
// keep-alive ticker, and the reconnect/re-auth state machine, and
// exposes Connect/Send/Disconnect as the library's only surface most
// callers need.
//
// Grounded on cli/cli.go's start(ctx) orchestration (own one transport,
// own one shutdown context, fan work out to goroutines) generalized from
// "boot a server" into "own one client session".
package blynk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blynkgo/client/action"
	"github.com/blynkgo/client/internal/authdigest"
	"github.com/blynkgo/client/internal/correlator"
	"github.com/blynkgo/client/internal/frame"
	"github.com/blynkgo/client/internal/metrics"
	"github.com/blynkgo/client/internal/payload"
	"github.com/blynkgo/client/internal/router"
	"github.com/blynkgo/client/internal/telemetry"
	"github.com/blynkgo/client/internal/transport"
	"github.com/blynkgo/client/store"
)

// errConnectionClosed is the cause correlator.FailAll is given when the
// transport terminates with requests still pending; sendInternal
// translates it into a KindConnectionClosed *Error.
var errConnectionClosed = errors.New("blynk: connection closed")

// Connector is the session controller. Create one with New per logical
// session; it is safe for concurrent use by multiple goroutines calling
// Send.
type Connector struct {
	cfg     Config
	metrics *metrics.Collectors
	hooks   *Hooks
	cache   *payload.Cache

	mu        sync.Mutex
	sess      *session
	transport *transport.Transport
	corr      *correlator.Correlator
	router    *router.Router

	dispatchStop  *stopSignal
	keepAliveStop *stopSignal
	reconnectStop *stopSignal

	bus *eventBus
}

// New creates a Connector from cfg. hooks may be nil.
func New(cfg Config, hooks *Hooks) *Connector {
	cfg = cfg.withDefaults()
	return &Connector{
		cfg:     cfg,
		metrics: cfg.Metrics,
		hooks:   hooks,
		cache:   &payload.Cache{Store: cfg.Store},
		sess:    newSession(),
		bus:     newEventBus(hooks),
	}
}

// Subscribe returns an independent stream of domain events. Call
// Subscription.Close when done to free its mailbox.
func (c *Connector) Subscribe() *Subscription {
	return c.bus.subscribe()
}

// State reports the current transport_state, per spec.md §3.
func (c *Connector) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.transport.String()
}

// ActiveDashboard reports the currently active dashboard id, if any.
func (c *Connector) ActiveDashboard() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.activeDashboardID == nil {
		return 0, false
	}
	return *c.sess.activeDashboardID, true
}

// Connect establishes TLS, logs in with email/password, and on success
// starts the keep-alive ticker. Implements spec.md §4.7's connect.
func (c *Connector) Connect(ctx context.Context, email, password, appName string) error {
	digest := authdigest.Hash(password, email)
	login := action.Login{Email: email, PasswordDigest: digest, AppName: appName}

	if err := c.establish(ctx, login); err != nil {
		return err
	}

	c.mu.Lock()
	c.sess.creds = credentials{kind: credentialPassword, email: email, passwordDigest: digest}
	c.mu.Unlock()
	return nil
}

// ConnectWithShareToken establishes TLS and logs in with a share token.
// Implements spec.md §4.7's connect_with_share_token.
func (c *Connector) ConnectWithShareToken(ctx context.Context, shareToken, appName string) error {
	login := action.ShareLogin{ShareToken: shareToken, AppName: appName}

	if err := c.establish(ctx, login); err != nil {
		return err
	}

	c.mu.Lock()
	c.sess.creds = credentials{kind: credentialShareToken, shareToken: shareToken}
	c.mu.Unlock()
	return nil
}

// Register establishes TLS, sends REGISTER, and disconnects regardless
// of outcome — spec.md §4.7 does not leave a registered session
// authenticated.
func (c *Connector) Register(ctx context.Context, email, password, appName string) error {
	digest := authdigest.Hash(password, email)
	reg := action.Register{Email: email, PasswordDigest: digest, AppName: appName}

	err := c.establish(ctx, reg)
	_ = c.Disconnect()
	return err
}

// establish dials a fresh transport, wires the correlator/router, starts
// the dispatch and deadline-sweep loops, and sends loginAction as the
// session's authenticating request. On any failure the transport is torn
// down and the session left Disconnected.
func (c *Connector) establish(ctx context.Context, loginAction action.Action) error {
	c.mu.Lock()
	if c.sess.transport != stateDisconnected {
		c.mu.Unlock()
		return newErr(KindConnect, errors.New("already connected"))
	}
	c.sess.transport = stateConnecting
	c.sess.auth = authAuthenticating
	c.mu.Unlock()

	ctx, end := telemetry.StartSpan(ctx, "blynk.connect")
	t, err := transport.Dial(ctx, transport.Options{
		Host:      c.cfg.Host,
		Port:      c.cfg.Port,
		TLSConfig: c.cfg.tlsConfig(),
		IsKnown:   func(cmd uint8) bool { return action.IsKnown(cmd) },
		Log:       c.cfg.Log,
		Metrics:   c.metrics,
	})
	if err != nil {
		end(err)
		c.mu.Lock()
		c.sess.reset()
		c.mu.Unlock()
		return newErr(KindConnect, err)
	}
	end(nil)

	corr := correlator.New()
	rtr := router.New(corr, uint32(action.CodeOK))
	stop := newStopSignal()

	c.mu.Lock()
	c.transport = t
	c.corr = corr
	c.router = rtr
	c.dispatchStop = stop
	c.mu.Unlock()

	go c.dispatchLoop(t, corr, rtr, stop)
	go c.expireLoop(corr, stop)

	_, sendErr := c.sendInternal(loginAction)
	if sendErr != nil {
		stop.stop()
		_ = t.Disconnect()
		c.mu.Lock()
		c.sess.reset()
		c.mu.Unlock()

		var be *Error
		if errors.As(sendErr, &be) && be.Kind == KindServer {
			return &Error{Kind: KindAuth, Code: be.Code}
		}
		return sendErr
	}

	c.mu.Lock()
	c.sess.transport = stateUp
	c.sess.auth = authAuthenticated
	c.keepAliveStop = newStopSignal()
	c.reconnectStop = newStopSignal()
	keepAliveStop := c.keepAliveStop
	c.mu.Unlock()

	c.emitState(stateUp.String(), 0)
	go c.startKeepAlive(keepAliveStop)
	return nil
}

// reestablish is establish's reconnect-path counterpart: it replays
// saved_credentials instead of taking new ones from the caller.
func (c *Connector) reestablish(ctx context.Context) error {
	c.mu.Lock()
	creds := c.sess.creds
	appName := c.cfg.AppName
	c.mu.Unlock()

	var login action.Action
	switch creds.kind {
	case credentialPassword:
		login = action.Login{Email: creds.email, PasswordDigest: creds.passwordDigest, AppName: appName}
	case credentialShareToken:
		login = action.ShareLogin{ShareToken: creds.shareToken, AppName: appName}
	default:
		return newErr(KindConnect, errors.New("no saved credentials to reconnect with"))
	}

	ctx, end := telemetry.StartSpan(ctx, "blynk.connect")
	t, err := transport.Dial(ctx, transport.Options{
		Host:      c.cfg.Host,
		Port:      c.cfg.Port,
		TLSConfig: c.cfg.tlsConfig(),
		IsKnown:   func(cmd uint8) bool { return action.IsKnown(cmd) },
		Log:       c.cfg.Log,
		Metrics:   c.metrics,
	})
	if err != nil {
		end(err)
		c.metrics.IncReconnect("failure")
		return newErr(KindConnect, err)
	}
	end(nil)

	corr := correlator.New()
	rtr := router.New(corr, uint32(action.CodeOK))
	stop := newStopSignal()

	c.mu.Lock()
	c.transport = t
	c.corr = corr
	c.router = rtr
	c.dispatchStop = stop
	c.mu.Unlock()

	go c.dispatchLoop(t, corr, rtr, stop)
	go c.expireLoop(corr, stop)

	if _, err := c.sendInternal(login); err != nil {
		stop.stop()
		_ = t.Disconnect()
		c.metrics.IncReconnect("failure")
		return err
	}
	c.metrics.IncReconnect("success")

	// spec.md §4.7: on a successful reconnect, restart keep-alive tied to
	// this new transport generation rather than relying on whatever loop
	// establish() started originally.
	c.mu.Lock()
	c.keepAliveStop = newStopSignal()
	keepAliveStop := c.keepAliveStop
	c.mu.Unlock()
	go c.startKeepAlive(keepAliveStop)

	return nil
}

// Send encodes action via the adapter layer, registers a correlator
// entry of the appropriate kind, writes the frame, and awaits the
// result. Implements spec.md §4.7's send.
func (c *Connector) Send(ctx context.Context, a action.Action) (action.DomainEvent, error) {
	_, end := telemetry.StartSpan(ctx, "blynk.send")

	type result struct {
		ev  action.DomainEvent
		err error
	}
	done := make(chan result, 1)
	go func() {
		ev, err := c.sendInternal(a)
		done <- result{ev, err}
	}()

	select {
	case r := <-done:
		end(r.err)
		return r.ev, r.err
	case <-ctx.Done():
		err := newErr(KindCancelled, ctx.Err())
		end(err)
		return nil, err
	}
}

func (c *Connector) sendInternal(a action.Action) (action.DomainEvent, error) {
	c.mu.Lock()
	t := c.transport
	corr := c.corr
	c.mu.Unlock()

	if t == nil || corr == nil {
		return nil, ErrNotConnected
	}

	kind := correlator.ResponseOnly
	if a.Kind() == action.ReplyDataResponse {
		kind = correlator.DataResponse
	}

	id, resultCh, err := corr.Allocate(kind, c.cfg.ResponseTimeout)
	if err != nil {
		if errors.Is(err, correlator.ErrClosed) {
			return nil, ErrNotConnected
		}
		return nil, newErr(KindSaturated, err)
	}
	c.metrics.SetPending(corr.Len())
	defer func() { c.metrics.SetPending(corr.Len()) }()

	op, body, err := action.DefaultAdapter(a, c.cfg.Codec)
	if err != nil {
		return nil, newErr(KindEncode, err)
	}

	f := frame.Frame{Command: uint8(op), ID: id, Length: uint32(len(body)), Payload: body}
	if err := t.Send(f); err != nil {
		return nil, newErr(KindNotConnected, err)
	}

	res := <-resultCh
	if res.Err != nil {
		return nil, translateResultErr(res.Err)
	}

	if kind == correlator.DataResponse {
		decompressed, err := payload.Decompress(res.Frame.Payload)
		if err != nil {
			return nil, newErr(KindDecompress, err)
		}
		switch action.Opcode(res.Frame.Command) {
		case action.OpLoadProfileGzipped, action.OpExportGraphData, action.OpGetEnhancedGraphData:
			_ = c.cache.Save(context.Background(), id, res.Frame.Command, decompressed)
		}
		return action.StructuredEvent{Cmd: action.Opcode(res.Frame.Command), ID: id, RawPayload: decompressed}, nil
	}

	code := action.ResponseCode(res.Code)
	if code != action.CodeOK {
		return nil, newServerErr(KindServer, code)
	}
	return action.ResponseEvent{ID: id, Code: code}, nil
}

func translateResultErr(err error) error {
	switch {
	case errors.Is(err, errConnectionClosed):
		return newErr(KindConnectionClosed, nil)
	case errors.Is(err, correlator.ErrTimeout):
		return newErr(KindTimeout, nil)
	}
	var se *correlator.ServerError
	if errors.As(err, &se) {
		return newServerErr(KindServer, action.ResponseCode(se.Code))
	}
	return newErr(KindConnectionClosed, err)
}

// ActivateDashboard sends ACTIVATE_DASHBOARD and, on success, records the
// dashboard as active in the session record.
func (c *Connector) ActivateDashboard(ctx context.Context, dashID int) error {
	_, err := c.Send(ctx, action.ActivateDashboard{DashID: dashID})
	if err != nil {
		return err
	}
	c.mu.Lock()
	id := dashID
	c.sess.activeDashboardID = &id
	c.mu.Unlock()
	return nil
}

// DeactivateDashboard sends DEACTIVATE_DASHBOARD and clears the active
// dashboard on success.
func (c *Connector) DeactivateDashboard(ctx context.Context, dashID int) error {
	_, err := c.Send(ctx, action.DeactivateDashboard{DashID: dashID})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.sess.activeDashboardID = nil
	c.mu.Unlock()
	return nil
}

// dispatchLoop drains t.Messages() for the lifetime of one transport,
// routing each frame, publishing unmatched events, and logging them to
// the configured store. When the stream ends and the loop was not stopped
// for an intentional disconnect (Disconnect fails the pending entries
// itself), it fails every pending correlator entry, retires this
// generation's transport/correlator/keep-alive and launches the reconnect
// state machine (spec.md §4.7).
func (c *Connector) dispatchLoop(t *transport.Transport, corr *correlator.Correlator, rtr *router.Router, stop *stopSignal) {
	for f := range t.Messages() {
		ev := rtr.Route(f)
		if ev != nil {
			c.bus.publish(ev)
			_ = c.cfg.Store.LogEvent(context.Background(), store.EventRecord{
				Opcode:     uint8(ev.EventOpcode()),
				Summary:    summarizeEvent(ev),
				OccurredAt: time.Now().UTC(),
			})
		}
		c.metrics.SetPending(corr.Len())
	}

	// This dispatch loop's own transport just died; whether that was
	// intentional (Disconnect already called stop.stop()) or not is
	// exactly what stop's closedness tells us.
	select {
	case <-stop.done():
		stop.stop()
		return
	default:
	}
	stop.stop()

	corr.FailAll(errConnectionClosed)

	// Retire this generation before handing off to the reconnect loop: a
	// keep-alive ping that fires in the gap between the transport dying
	// and reestablish() swapping in a new one must see a nil
	// transport/corr and fail fast with ErrNotConnected, not allocate on
	// a correlator nothing will ever resolve again.
	c.mu.Lock()
	wasUp := c.sess.transport == stateUp
	var keepAliveStop *stopSignal
	if c.transport == t {
		c.transport = nil
		c.corr = nil
		c.router = nil
		keepAliveStop = c.keepAliveStop
		c.keepAliveStop = nil
	}
	reconnectStop := c.reconnectStop
	c.mu.Unlock()

	keepAliveStop.stop()

	if wasUp {
		go c.runReconnect(reconnectStop)
	}
}

// expireLoop periodically sweeps corr for timed-out pending requests
// until stop fires.
func (c *Connector) expireLoop(corr *correlator.Correlator, stop *stopSignal) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop.done():
			return
		case now := <-ticker.C:
			corr.ExpireDeadlines(now)
		}
	}
}

// Disconnect stops the keep-alive ticker and any in-flight reconnect
// loop, closes the transport, fails every pending request with
// ConnectionClosed, and moves the session to Disconnected. Infallible,
// per spec.md §4.7.
func (c *Connector) Disconnect() error {
	c.mu.Lock()
	keepAliveStop := c.keepAliveStop
	reconnectStop := c.reconnectStop
	dispatchStop := c.dispatchStop
	corr := c.corr
	c.keepAliveStop = nil
	c.reconnectStop = nil
	c.mu.Unlock()

	keepAliveStop.stop()
	reconnectStop.stop()
	dispatchStop.stop()
	if corr != nil {
		corr.FailAll(errConnectionClosed)
	}

	_ = c.teardownTransport()

	c.mu.Lock()
	c.sess.reset()
	c.mu.Unlock()

	c.emitState(stateDisconnected.String(), 0)
	c.bus.closeAll()
	return nil
}

func (c *Connector) teardownTransport() error {
	c.mu.Lock()
	t := c.transport
	c.transport = nil
	c.corr = nil
	c.router = nil
	c.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Disconnect()
}

func (c *Connector) logf(format string, args ...any) {
	c.cfg.Log.Printf(format, args...)
}

// emitState reports a transport_state transition on the event stream and
// then through the optional Hooks callback, so a caller using only
// Subscribe has a way to observe reconnect lifecycle and attempt count
// too (spec.md §4.7's Reconnecting{attempt}/Reconnected/Disconnected
// events).
func (c *Connector) emitState(state string, attempt int) {
	c.bus.publish(action.ConnectionStateEvent{State: state, Attempt: attempt})
	c.hooks.dispatchState(state)
}
