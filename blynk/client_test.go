package blynk

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/binary"
	"io"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blynkgo/client/action"
	"github.com/blynkgo/client/internal/frame"
)

// selfSignedListener mirrors internal/transport's test helper: a
// throwaway TLS listener for a fake Blynk-family server.
func selfSignedListener(t *testing.T) (net.Listener, string, int) {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "localhost"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	require.NoError(t, err)

	cert := tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	require.NoError(t, err)

	addr := ln.Addr().(*net.TCPAddr)
	return ln, "127.0.0.1", addr.Port
}

// readServerFrame parses one inbound frame off conn using the 7-byte
// mobile header, from the server side of the fixture.
func readServerFrame(conn net.Conn) (frame.Frame, error) {
	hdr := make([]byte, frame.HeaderSize)
	if _, err := io.ReadFull(conn, hdr); err != nil {
		return frame.Frame{}, err
	}
	cmd := hdr[0]
	id := binary.BigEndian.Uint16(hdr[1:3])
	length := binary.BigEndian.Uint32(hdr[3:7])
	if cmd == frame.Response || length == 0 {
		return frame.Frame{Command: cmd, ID: id, Length: length}, nil
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(conn, payload); err != nil {
		return frame.Frame{}, err
	}
	return frame.Frame{Command: cmd, ID: id, Length: length, Payload: payload}, nil
}

func writeOK(conn net.Conn, id uint16) error {
	_, err := conn.Write(frame.Encode(frame.Frame{Command: frame.Response, ID: id, Length: uint32(action.CodeOK)}))
	return err
}

func testConfig(host string, port int) Config {
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	cfg.ResponseTimeout = 2 * time.Second
	cfg.PingInterval = time.Hour // disabled for these tests
	return cfg
}

func TestConnectSendDisconnect(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		login, err := readServerFrame(conn)
		if err != nil || login.Command != uint8(action.OpLogin) {
			return
		}
		if writeOK(conn, login.ID) != nil {
			return
		}

		for {
			f, err := readServerFrame(conn)
			if err != nil {
				return
			}
			if writeOK(conn, f.ID) != nil {
				return
			}
		}
	}()

	c := New(testConfig(host, port), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.Connect(ctx, "a@b", "p", "App"))
	require.Equal(t, "Up", c.State())

	ev, err := c.Send(ctx, action.ActivateDashboard{DashID: 1})
	require.NoError(t, err)
	re, ok := ev.(action.ResponseEvent)
	require.True(t, ok)
	require.Equal(t, action.CodeOK, re.Code)

	require.NoError(t, c.Disconnect())
	require.Equal(t, "Disconnected", c.State())
}

func TestSendBeforeConnectFails(t *testing.T) {
	c := New(testConfig("127.0.0.1", 1), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Send(ctx, action.Ping{})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestAuthFailureSurfacesAuthKind(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		login, err := readServerFrame(conn)
		if err != nil {
			return
		}
		conn.Write(frame.Encode(frame.Frame{
			Command: frame.Response, ID: login.ID, Length: uint32(action.CodeUserNotRegistered),
		}))
	}()

	c := New(testConfig(host, port), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Connect(ctx, "a@b", "p", "App")
	require.Error(t, err)
	require.True(t, isKind(err, KindAuth))
	require.Equal(t, "Disconnected", c.State())
}

func TestDisconnectCancelsInFlight(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	serverReady := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		login, err := readServerFrame(conn)
		if err != nil {
			return
		}
		writeOK(conn, login.ID)

		// Read the follow-up request but never answer it, so it is
		// still pending when the client disconnects.
		if _, err := readServerFrame(conn); err != nil {
			return
		}
		close(serverReady)
		time.Sleep(2 * time.Second)
	}()

	c := New(testConfig(host, port), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx, "a@b", "p", "App"))

	sendErrCh := make(chan error, 1)
	go func() {
		_, err := c.Send(context.Background(), action.ActivateDashboard{DashID: 5})
		sendErrCh <- err
	}()

	select {
	case <-serverReady:
	case <-time.After(2 * time.Second):
		t.Fatal("server never saw the request")
	}

	require.NoError(t, c.Disconnect())

	select {
	case err := <-sendErrCh:
		require.Error(t, err)
		require.True(t, isKind(err, KindConnectionClosed))
	case <-time.After(2 * time.Second):
		t.Fatal("pending send was not settled by disconnect")
	}

	_, err := c.Send(context.Background(), action.Ping{})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestSubscribeObservesConnectionStateEvents(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		login, err := readServerFrame(conn)
		if err != nil {
			return
		}
		writeOK(conn, login.ID)
		time.Sleep(time.Second)
	}()

	c := New(testConfig(host, port), nil)
	sub := c.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx, "a@b", "p", "App"))

	select {
	case ev := <-sub.Events():
		cs, ok := ev.(action.ConnectionStateEvent)
		require.True(t, ok)
		require.Equal(t, "Up", cs.State)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for connection state event")
	}

	require.NoError(t, c.Disconnect())

	select {
	case ev := <-sub.Events():
		cs, ok := ev.(action.ConnectionStateEvent)
		require.True(t, ok)
		require.Equal(t, "Disconnected", cs.State)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for disconnected state event")
	}
}

func TestRegisterDisconnectsRegardlessOfOutcome(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reg, err := readServerFrame(conn)
		if err != nil || reg.Command != uint8(action.OpRegister) {
			return
		}
		writeOK(conn, reg.ID)
	}()

	c := New(testConfig(host, port), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, c.Register(ctx, "new@user", "p", "App"))
	require.Equal(t, "Disconnected", c.State())
}

func TestSubscribeReceivesUnmatchedEvent(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		login, err := readServerFrame(conn)
		if err != nil {
			return
		}
		writeOK(conn, login.ID)

		// An unsolicited HARDWARE_CONNECTED notification, not tied to
		// any pending request.
		conn.Write(frame.Encode(frame.Frame{
			Command: uint8(action.OpHardwareConnected),
			ID:      0,
			Length:  3,
			Payload: []byte("1-2"),
		}))
		time.Sleep(time.Second)
	}()

	c := New(testConfig(host, port), nil)
	sub := c.Subscribe()
	defer sub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx, "a@b", "p", "App"))

	// Connect also publishes a ConnectionStateEvent on the same bus, racing
	// the unsolicited frame below for delivery order, so skip past it
	// rather than assuming the hardware event arrives first.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub.Events():
			hc, ok := ev.(action.HardwareConnectedEvent)
			if !ok {
				continue
			}
			require.Equal(t, 1, hc.DashID)
			require.Equal(t, 2, hc.DeviceID)
			require.NoError(t, c.Disconnect())
			return
		case <-deadline:
			t.Fatal("timed out waiting for subscription event")
		}
	}
}
