package transport

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/blynkgo/client/internal/frame"
	"github.com/stretchr/testify/require"
)

// selfSignedListener starts a TLS listener on an ephemeral port using a
// throwaway self-signed certificate, mirroring the reference client's
// "servers commonly run self-signed" deployment.
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

func TestDialSendAndReceive(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, frame.HeaderSize)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		// Echo back a RESPONSE frame with the same id, code 200.
		reply := frame.Encode(frame.Frame{Command: frame.Response, ID: 42, Length: 200})
		conn.Write(reply)
	}()

	tr, err := Dial(context.Background(), Options{Host: host, Port: port})
	require.NoError(t, err)
	defer tr.Disconnect()

	err = tr.Send(frame.Frame{Command: 6, ID: 42})
	require.NoError(t, err)

	select {
	case f := <-tr.Messages():
		require.True(t, f.IsResponse())
		require.EqualValues(t, 200, f.Code())
		require.EqualValues(t, 42, f.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echoed frame")
	}

	<-serverDone
}

func TestMessagesClosesOnRemoteClose(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close()
	}()

	tr, err := Dial(context.Background(), Options{Host: host, Port: port})
	require.NoError(t, err)
	defer tr.Disconnect()

	select {
	case _, ok := <-tr.Messages():
		require.False(t, ok, "Messages channel should be closed on remote close")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Messages to close")
	}
}

func TestSendAfterDisconnectFails(t *testing.T) {
	ln, host, port := selfSignedListener(t)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			buf := make([]byte, 1)
			conn.Read(buf)
		}
	}()

	tr, err := Dial(context.Background(), Options{Host: host, Port: port})
	require.NoError(t, err)

	require.NoError(t, tr.Disconnect())

	err = tr.Send(frame.Frame{Command: 6, ID: 1})
	require.ErrorIs(t, err, ErrNotConnected)
}

func TestDialFailsOnUnreachableHost(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Dial(ctx, Options{Host: "127.0.0.1", Port: 1})
	require.ErrorIs(t, err, ErrConnect)
}
