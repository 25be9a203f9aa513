package watch

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/frameloom/internal/lifecycle"
)

func TestSignalsCancelsOnSIGTERM(t *testing.T) {
	ctx, cancel := lifecycle.Root()
	defer cancel(nil)

	done := make(chan struct{})
	go func() {
		Signals(ctx, cancel)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Signals never returned")
	}
	assert.Error(t, context.Cause(ctx))
}

type fakeEventSource struct {
	quitAfter int
	calls     int
}

func (f *fakeEventSource) PollEvents() bool {
	f.calls++
	return f.calls >= f.quitAfter
}

func TestEventsCancelsWhenSourceRequestsQuit(t *testing.T) {
	ctx, cancel := lifecycle.Root()
	defer cancel(nil)

	src := &fakeEventSource{quitAfter: 2}
	done := make(chan struct{})
	go func() {
		Events(ctx, cancel, src)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Events never returned")
	}
	assert.ErrorIs(t, context.Cause(ctx), errQuitRequested)
}

func TestEventsStopsWhenContextCancelledFirst(t *testing.T) {
	ctx, cancel := lifecycle.Root()

	src := &fakeEventSource{quitAfter: 1000}
	done := make(chan struct{})
	go func() {
		Events(ctx, cancel, src)
		close(done)
	}()

	cancel(nil)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Events never returned after cancellation")
	}
}
