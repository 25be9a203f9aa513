// Package client implements the receive-render loop: it
// connects to one of a set of candidate endpoints, then repeatedly reads a
// framed header+pixels payload and hands it to a Presenter, within a fixed
// whole-frame time budget per read.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/zsiec/frameloom/internal/frame"
	"github.com/zsiec/frameloom/internal/lifecycle"
	"github.com/zsiec/frameloom/internal/netio"
)

// connectBudget bounds how long Run waits to establish a connection.
const connectBudget = 2 * time.Second

// frameBudget bounds the *whole* receive of one frame — header and pixels
// together — not just a single read.
const frameBudget = 2 * time.Second

// Presenter is whatever renders received frames; internal/window's GUI is
// the production implementation.
type Presenter interface {
	UpdateFrom(h frame.Header)
	Present(pixels []byte)
}

// Run connects to the first reachable endpoint and feeds frames to ui until
// the connection ends, the peer sends the end-of-stream sentinel, or ctx is
// cancelled.
func Run(ctx context.Context, endpoints []string, ui Presenter, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	conn, err := netio.Connect(ctx, time.Now().Add(connectBudget), endpoints)
	if err != nil {
		return fmt.Errorf("client: connect: %w", err)
	}
	deregister := lifecycle.Guard(ctx, conn)
	defer func() {
		deregister()
		netio.Close(conn)
	}()

	var pixels GrowingBuffer
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fr := receiveFrame(conn, time.Now().Add(frameBudget), &pixels)
		if fr.Header.IsNoFrame() {
			return nil
		}

		ui.UpdateFrom(fr.Header)
		ui.Present(fr.Pixels)

		if fr.Header.IsFiller() {
			log.Debug("filler")
		} else {
			log.Debug("frame", "sequence", fr.Header.Sequence,
				"width", fr.Header.Width, "height", fr.Header.Height)
		}
	}
}

// receiveFrame reads one header+pixels payload, returning frame.NoFrame on
// any I/O failure or short read rather than propagating the error: the
// caller treats NoFrame as end-of-stream regardless of cause, collapsing
// "disconnected" and "peer said goodbye" into one sentinel value.
func receiveFrame(conn net.Conn, deadline time.Time, pixels *GrowingBuffer) frame.Frame {
	headerBuf := make([]byte, frame.HeaderSize)
	if _, err := netio.Receive(conn, deadline, headerBuf); err != nil {
		return frame.Frame{}
	}

	var h frame.Header
	if err := h.UnmarshalBinary(headerBuf); err != nil {
		return frame.Frame{}
	}

	if h.IsNoFrame() {
		return frame.Frame{}
	}

	size := h.SizePixels()
	if size == 0 {
		return frame.Frame{Header: h}
	}

	buf := pixels.Rent(size)
	if _, err := netio.Receive(conn, deadline, buf); err != nil {
		return frame.Frame{}
	}
	return frame.Frame{Header: h, Pixels: buf}
}
