// Package server implements the timed GIF-frame TCP server: one acceptor
// goroutine per bound endpoint, one streamer goroutine
// per accepted connection, each streamer running its own decode pipeline
// and pacing frames against a wall-clock timebase before writing them to
// the wire within a fixed send budget.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zsiec/frameloom/internal/decode"
	"github.com/zsiec/frameloom/internal/lifecycle"
	"github.com/zsiec/frameloom/internal/netio"
)

// sendBudget bounds how long a single header+pixels write may take.
const sendBudget = 100 * time.Millisecond

// ErrNoAcceptorBound is returned by Serve when every candidate endpoint
// failed to bind, leaving nothing listening.
var ErrNoAcceptorBound = errors.New("server: no endpoint could be bound")

// Server streams the contents of a media directory to every client that
// connects to any of its bound endpoints.
type Server struct {
	log *slog.Logger
}

// New returns a Server that logs through log, or slog.Default() if log is
// nil.
func New(log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log.With("component", "server")}
}

// Bind opens a listener for every endpoint it can, logging and skipping
// the ones it can't, and returns ErrNoAcceptorBound if none bound at all.
// Splitting bind out from Serve lets a caller like cmd/frameloom learn
// synchronously whether startup can proceed, instead of racing a
// background goroutine.
func (s *Server) Bind(endpoints []string) ([]net.Listener, error) {
	listeners := make([]net.Listener, 0, len(endpoints))
	for _, ep := range endpoints {
		ln, err := net.Listen("tcp", ep)
		if err != nil {
			s.log.Warn("bind failed", "endpoint", ep, "error", err)
			continue
		}
		s.log.Info("listening", "endpoint", ln.Addr().String())
		listeners = append(listeners, ln)
	}
	if len(listeners) == 0 {
		return nil, ErrNoAcceptorBound
	}
	return listeners, nil
}

// Serve is Bind followed by Run, for callers that don't need to observe
// the bind step separately.
func (s *Server) Serve(ctx context.Context, endpoints []string, mediaDir string) error {
	listeners, err := s.Bind(endpoints)
	if err != nil {
		return err
	}
	return s.Run(ctx, listeners, mediaDir)
}

// Run accepts connections on every already-bound listener and streams
// mediaDir's contents to each one, until ctx is cancelled or any acceptor
// fails; the first failure cancels the group's context, which closes every
// other listener and ends its acceptor too.
func (s *Server) Run(ctx context.Context, listeners []net.Listener, mediaDir string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, ln := range listeners {
		ln := ln
		lifecycle.Guard(ctx, ln)
		g.Go(func() error {
			return s.acceptConnections(ctx, ln, mediaDir)
		})
	}
	return g.Wait()
}

func (s *Server) acceptConnections(ctx context.Context, ln net.Listener, mediaDir string) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept on %s: %w", ln.Addr(), err)
		}
		go s.stream(ctx, conn, mediaDir)
	}
}

func (s *Server) stream(ctx context.Context, conn net.Conn, mediaDir string) {
	deregister := lifecycle.Guard(ctx, conn)
	defer func() {
		deregister()
		netio.Close(conn)
	}()

	p := newPacer()
	for fr := range decode.Frames(ctx, mediaDir, s.log) {
		due := p.dueTime(fr.Header)
		if !sleepUntil(ctx, due) {
			return
		}

		header, err := fr.Header.MarshalBinary()
		if err != nil {
			s.log.Error("marshal header", "error", err)
			return
		}
		if _, err := netio.Send(conn, time.Now().Add(sendBudget), header, fr.Pixels); err != nil {
			return
		}
	}
}

// sleepUntil blocks until due or ctx is cancelled, returning false in the
// latter case.
func sleepUntil(ctx context.Context, due time.Time) bool {
	timer := time.NewTimer(time.Until(due))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
