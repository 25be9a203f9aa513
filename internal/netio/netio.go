// Package netio provides timeout-wrapped send/receive/connect primitives.
// Each operation races I/O against a caller-supplied deadline; in Go this
// is expressed directly as a deadline on the net.Conn rather than a
// separate timer object racing the I/O via a select, since net.Conn's
// SetDeadline already gives exactly that race for free.
package netio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// Send writes every byte of every buffer in order, or fails. deadline must
// be set by the caller before each call; a zero deadline means no timeout.
func Send(conn net.Conn, deadline time.Time, buffers ...[]byte) (int, error) {
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return 0, fmt.Errorf("netio: set write deadline: %w", err)
	}
	total := 0
	for _, buf := range buffers {
		n, err := writeAll(conn, buf)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeAll(conn net.Conn, buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := conn.Write(buf[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("netio: write: %w", err)
		}
	}
	return written, nil
}

// Receive reads exactly len(buf) bytes, or fails. Precondition: len(buf) > 0.
// A short read (peer close or error) is reported as an error carrying the
// partial byte count.
func Receive(conn net.Conn, deadline time.Time, buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, errors.New("netio: Receive requires a non-empty buffer")
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return 0, fmt.Errorf("netio: set read deadline: %w", err)
	}
	n := 0
	for n < len(buf) {
		r, err := conn.Read(buf[n:])
		n += r
		if err != nil {
			return n, fmt.Errorf("netio: read: %w", err)
		}
	}
	return n, nil
}

// Connect tries each endpoint in order, returning the first successful
// connection or the last error seen. Precondition: len(endpoints) > 0.
func Connect(ctx context.Context, deadline time.Time, endpoints []string) (net.Conn, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("netio: Connect requires a non-empty endpoint list")
	}
	dialer := net.Dialer{Deadline: deadline}
	var lastErr error
	for _, ep := range endpoints {
		conn, err := dialer.DialContext(ctx, "tcp", ep)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("netio: connect: %w", lastErr)
}

// Close is a best-effort shutdown of both directions followed by closing
// the connection; errors are suppressed. net.Conn.Close already shuts down
// and closes both directions for a TCP connection, so there is no separate
// shutdown step to perform first.
func Close(conn net.Conn) {
	_ = conn.Close()
}

// Resolve synchronously resolves host:port to a list of dial targets,
// running for at most budget. An empty host or "localhost" resolves to the
// loopback interface. Endpoints whose address is unspecified (0.0.0.0, ::)
// are dropped, since they're not valid dial targets.
func Resolve(host string, port uint16, budget time.Duration) []string {
	if host == "" {
		host = "localhost"
	}

	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	resolver := net.DefaultResolver
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil
	}

	endpoints := make([]string, 0, len(addrs))
	for _, ip := range addrs {
		if ip.IP.IsUnspecified() {
			continue
		}
		endpoints = append(endpoints, net.JoinHostPort(ip.String(), fmt.Sprint(port)))
	}
	return endpoints
}
