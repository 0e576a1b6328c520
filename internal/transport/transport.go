// Package transport implements the TLS link layer: dialing, a
// serialized send path, and a single-consumer stream of decoded frames.
// It intentionally carries no reconnect logic of its own — spec.md §4.4 /
// §9 Open Question 4 puts reconnection exclusively in the session
// controller, because re-authentication and pending-request cancellation
// have to happen above this layer.
//
// Grounded on src/Api/ApiImpl.go's handleConnection read loop
// (conn.SetReadDeadline, protocol.Unpack(conn, sessionKey) in a for loop)
// generalized from a server's per-connection accept-loop into a client's
// single dial-loop.
package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blynkgo/client/internal/frame"
	"github.com/blynkgo/client/internal/logging"
	"github.com/blynkgo/client/internal/metrics"
	"github.com/blynkgo/client/internal/telemetry"
)

// Errors surfaced by Transport.
var (
	ErrNotConnected = errors.New("transport: not connected")
	ErrConnect      = errors.New("transport: connect failed")
)

// waitingTimeout is the hard cap spec.md §4.4 places on a stalled TLS
// handshake before it is converted into an ErrConnect failure.
const waitingTimeout = 5 * time.Second

// VerifyPolicy is the pluggable certificate verification hook. The
// default (see InsecureAcceptAllConfig) accepts any certificate, matching
// the reference client's "servers commonly run self-signed" posture;
// spec.md §9 is explicit that production deployments must not silently
// keep that default.
type VerifyPolicy func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error

// Transport owns one TLS connection's lifecycle.
type Transport struct {
	log     *logging.Logger
	metrics *metrics.Collectors

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	writeMu sync.Mutex

	decoder *frame.Decoder
	out     chan frame.Frame
	done    chan struct{}
}

// Options configures Dial.
type Options struct {
	Host string
	Port int
	// TLSConfig lets the caller fully override TLS behavior (including
	// VerifyPeerCertificate). If nil, a default accept-all config is
	// used.
	TLSConfig *tls.Config
	IsKnown   frame.KnownOpcode
	// Log receives diagnostic lines; a nil Logger discards them.
	Log     *logging.Logger
	Metrics *metrics.Collectors
}

// Dial establishes a TLS connection and starts the read pump. It blocks
// until the link is negotiated and readable, or fails with ErrConnect —
// including when negotiation stalls past waitingTimeout.
func Dial(ctx context.Context, opts Options) (*Transport, error) {
	ctx, end := telemetry.StartSpan(ctx, "transport.connect")
	defer func() { end(nil) }()

	ctx, cancel := context.WithTimeout(ctx, waitingTimeout)
	defer cancel()

	tlsCfg := opts.TLSConfig
	if tlsCfg == nil {
		tlsCfg = InsecureAcceptAllConfig()
	}

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	dialer := &tls.Dialer{Config: tlsCfg}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		opts.Metrics.IncConnect("failure")
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	if tc, ok := underlyingTCPConn(conn); ok {
		_ = tc.SetKeepAliveConfig(net.KeepAliveConfig{
			Enable:   true,
			Idle:     10 * time.Second,
			Interval: 5 * time.Second,
			Count:    3,
		})
	}

	t := &Transport{
		log:     opts.Log,
		metrics: opts.Metrics,
		conn:    conn,
		decoder: frame.NewDecoder(opts.IsKnown),
		out:     make(chan frame.Frame, 64),
		done:    make(chan struct{}),
	}
	t.decoder.OnDrop(func() { t.metrics.IncDecodeErrors() })
	go t.readLoop()

	opts.Metrics.IncConnect("success")
	return t, nil
}

// underlyingTCPConn unwraps a tls.Conn to its underlying *net.TCPConn so
// keep-alive tuning can be applied; tls.Conn itself doesn't expose
// SetKeepAliveConfig.
func underlyingTCPConn(conn net.Conn) (*net.TCPConn, bool) {
	type netConner interface{ NetConn() net.Conn }
	if tc, ok := conn.(netConner); ok {
		conn = tc.NetConn()
	}
	tcpConn, ok := conn.(*net.TCPConn)
	return tcpConn, ok
}

// readLoop drains the connection, feeding bytes to the decoder and
// pushing decoded frames onto out, until the remote closes or a read
// error occurs — the sole disconnect signal consumed upstream.
func (t *Transport) readLoop() {
	defer close(t.out)
	defer close(t.done)

	buf := make([]byte, 64*1024)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			frames := t.decoder.Feed(buf[:n])
			for _, f := range frames {
				select {
				case t.out <- f:
				case <-t.done:
					return
				}
			}
		}
		if err != nil {
			t.log.Printf("transport: read loop ended: %v", err)
			return
		}
	}
}

// Send appends a complete frame to the wire. Concurrent callers are
// serialized so the byte stream stays well-framed.
func (t *Transport) Send(f frame.Frame) error {
	t.mu.Lock()
	conn := t.conn
	closed := t.closed
	t.mu.Unlock()

	if closed || conn == nil {
		return ErrNotConnected
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	_, err := conn.Write(frame.Encode(f))
	if err != nil {
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Messages returns the channel of decoded inbound frames. It is closed
// when the connection terminates.
func (t *Transport) Messages() <-chan frame.Frame {
	return t.out
}

// Disconnect closes the underlying connection. Idempotent.
func (t *Transport) Disconnect() error {
	_, end := telemetry.StartSpan(context.Background(), "transport.disconnect")
	var err error
	defer func() { end(err) }()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	if t.conn != nil {
		err = t.conn.Close()
	}
	return err
}
