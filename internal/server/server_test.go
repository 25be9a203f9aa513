package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/frameloom/internal/frame"
	"github.com/zsiec/frameloom/internal/netio"
)

func TestServeReturnsNoAcceptorBoundWhenEverythingFails(t *testing.T) {
	s := New(nil)
	err := s.Serve(context.Background(), []string{"not-an-address:::"}, t.TempDir())
	assert.ErrorIs(t, err, ErrNoAcceptorBound)
}

func TestServeStreamsFillerFramesFromAnEmptyDirectory(t *testing.T) {
	// Bind on :0 ourselves first so the test knows the real address, then
	// hand the server a pre-resolved loopback endpoint on the same port;
	// we release our probe listener before Serve tries to bind it.
	probe, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := probe.Addr().String()
	require.NoError(t, probe.Close())

	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, []string{addr}, t.TempDir())
	}()

	var conn net.Conn
	for i := 0; i < 50; i++ {
		conn, err = net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	buf := make([]byte, frame.HeaderSize)
	_, err = netio.Receive(conn, time.Now().Add(2*time.Second), buf)
	require.NoError(t, err)

	var h frame.Header
	require.NoError(t, h.UnmarshalBinary(buf))
	assert.True(t, h.IsFiller())

	cancel()
	select {
	case <-serveErr:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}
