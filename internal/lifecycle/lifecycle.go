// Package lifecycle provides the process-wide stop source and the scope
// guards that tie resource cleanup to it. A single context.Context, rooted
// once in Root, plays
// the role of the shared stop_source: any goroutine can request stop by
// calling the cancel function, and every registered guard runs exactly once
// in response.
package lifecycle

import (
	"context"
	"io"
)

// Root creates the process-wide cancellation source ("the mother of all
// stops"). The returned context.CancelCauseFunc both cancels ctx and
// records why, retrievable later with context.Cause(ctx).
func Root() (context.Context, context.CancelCauseFunc) {
	return context.WithCancelCause(context.Background())
}

// Guard registers closers to be closed exactly once when ctx is done, and
// returns a deregistration function. Call the returned function on the
// normal (non-stop) exit path from the scope that owns closers: the
// registered cleanup fires on stop, and is a no-op — simply never fires —
// if the scope exits first.
//
// Guard accepts io.Closer because every resource it protects in this
// codebase (net.Conn, net.Listener) exposes Close. The cleanup runs on a
// goroutine of its own, as context.AfterFunc does; for cleanup that isn't
// an io.Closer, see GuardFunc.
func Guard(ctx context.Context, closers ...io.Closer) (deregister func() bool) {
	return context.AfterFunc(ctx, func() {
		for _, c := range closers {
			_ = c.Close()
		}
	})
}

// GuardFunc registers an arbitrary cleanup function to run exactly once
// when ctx is done, returning a deregistration function. It is for guarded
// resources that aren't an io.Closer, e.g. a context.CancelFunc.
func GuardFunc(ctx context.Context, cleanup func()) (deregister func() bool) {
	return context.AfterFunc(ctx, cleanup)
}
