// Package watch hosts the two independent "somebody wants to stop"
// sources: OS signals and the presentation window's quit event. Either one
// calls the shared cancel function exactly once.
package watch

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// pollInterval is how often Events polls the window for a quit event.
const pollInterval = 50 * time.Millisecond

// EventSource is the subset of internal/window's GUI that the poll loop
// needs: a way to drain pending window events and learn whether the user
// asked to quit.
type EventSource interface {
	PollEvents() (quit bool)
}

// Signals calls cancel the first time SIGINT or SIGTERM arrives, and stops
// listening once ctx is done.
func Signals(ctx context.Context, cancel context.CancelCauseFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		cancel(signalStop{sig})
	case <-ctx.Done():
	}
}

// signalStop is the cancellation cause recorded by Signals, retrievable
// later with context.Cause.
type signalStop struct{ Signal os.Signal }

func (s signalStop) Error() string { return "received signal: " + s.Signal.String() }

// Events polls src for a quit event every pollInterval until ctx is done or
// src reports one, calling cancel in the latter case.
func Events(ctx context.Context, cancel context.CancelCauseFunc, src EventSource) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if src.PollEvents() {
				cancel(errQuitRequested)
				return
			}
		}
	}
}

var errQuitRequested = quitRequestedError{}

type quitRequestedError struct{}

func (quitRequestedError) Error() string { return "window close requested" }
