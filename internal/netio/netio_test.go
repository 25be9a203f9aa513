package netio

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listenLoopback(t *testing.T) net.Listener {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	return ln
}

func TestSendReceiveRoundTrip(t *testing.T) {
	ln := listenLoopback(t)

	serverDone := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			serverDone <- nil
			return
		}
		defer conn.Close()
		buf := make([]byte, 5)
		_, _ = Receive(conn, time.Now().Add(time.Second), buf)
		serverDone <- buf
	}()

	conn, err := Connect(context.Background(), time.Now().Add(time.Second), []string{ln.Addr().String()})
	require.NoError(t, err)
	defer conn.Close()

	n, err := Send(conn, time.Now().Add(time.Second), []byte("he"), []byte("llo"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []byte("hello"), <-serverDone)
}

func TestReceiveShortReadIsError(t *testing.T) {
	ln := listenLoopback(t)

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		conn.Close() // close immediately without writing
	}()

	conn, err := Connect(context.Background(), time.Now().Add(time.Second), []string{ln.Addr().String()})
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 16)
	_, err = Receive(conn, time.Now().Add(time.Second), buf)
	assert.Error(t, err)
}

func TestReceiveTimesOut(t *testing.T) {
	ln := listenLoopback(t)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(500 * time.Millisecond)
	}()

	conn, err := Connect(context.Background(), time.Now().Add(time.Second), []string{ln.Addr().String()})
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, 16)
	_, err = Receive(conn, time.Now().Add(50*time.Millisecond), buf)
	assert.Error(t, err)
}

func TestConnectRequiresNonEmptyEndpoints(t *testing.T) {
	_, err := Connect(context.Background(), time.Now().Add(time.Second), nil)
	assert.Error(t, err)
}

func TestConnectTriesEndpointsInOrder(t *testing.T) {
	ln := listenLoopback(t)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
	}()

	conn, err := Connect(context.Background(), time.Now().Add(time.Second),
		[]string{"127.0.0.1:1", ln.Addr().String()})
	require.NoError(t, err)
	conn.Close()
}

func TestResolveEmptyHostIsLoopback(t *testing.T) {
	endpoints := Resolve("", 34567, time.Second)
	require.NotEmpty(t, endpoints)
	for _, ep := range endpoints {
		host, _, err := net.SplitHostPort(ep)
		require.NoError(t, err)
		ip := net.ParseIP(host)
		require.NotNil(t, ip)
		assert.True(t, ip.IsLoopback())
	}
}
