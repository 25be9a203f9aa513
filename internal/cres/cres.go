// Package cres provides a generic wrapper for values that own an external
// (typically cgo) handle, pairing a constructed value with its release
// function so callers cannot forget to free it and cannot free it twice.
//
// It is the Go-idiomatic counterpart of a C++ move-only RAII handle wrapper:
// Go's garbage collector removes the need to track a single static owner at
// compile time, but cgo handles (AVFrame*, AVCodecContext*, ...) still need
// an explicit, exactly-once release call, which is what Resource guarantees.
package cres

import "sync"

// Resource owns a handle of type T and a release function bound to it. The
// zero value is not usable; construct with Of or New.
type Resource[T any] struct {
	mu      sync.Mutex
	handle  T
	release func(T)
	isNull  func(T) bool
	closed  bool
}

// Of wraps a handle that has already been constructed (schema A: the
// constructor itself returned the handle). release is invoked exactly once,
// on Close, if isNull(handle) is false.
func Of[T any](handle T, release func(T), isNull func(T) bool) *Resource[T] {
	return &Resource[T]{handle: handle, release: release, isNull: isNull}
}

// New wraps a fallible constructor (schema B: the constructor reports
// success via an error rather than a sentinel return value — the Go
// equivalent of an in/out handle pointer plus an integer status code). If
// construct fails, the returned *Resource is nil and the error is non-nil.
func New[T any](construct func() (T, error), release func(T), isNull func(T) bool) (*Resource[T], error) {
	handle, err := construct()
	if err != nil {
		return nil, err
	}
	return Of(handle, release, isNull), nil
}

// Close releases the handle if non-null, exactly once. Close on a nil
// *Resource is a no-op, so deferred cleanup of an unsuccessful New is safe.
func (r *Resource[T]) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	if !r.isNull(r.handle) {
		r.release(r.handle)
	}
}

// Get returns the wrapped handle without transferring ownership.
func (r *Resource[T]) Get() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.handle
}

// Have reports whether the wrapper holds a non-null, unreleased handle.
func (r *Resource[T]) Have() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && !r.isNull(r.handle)
}

// Empty is the complement of Have.
func (r *Resource[T]) Empty() bool {
	return !r.Have()
}

// Take releases ownership of the handle to the caller: the Resource forgets
// it (so a later Close becomes a no-op) and the raw handle is returned for
// the caller to manage or rewrap.
func (r *Resource[T]) Take() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := r.handle
	r.closed = true
	return h
}

// Guard returns a closer that invokes unref on handle exactly once, unless
// isNull(handle) holds. It is the scoped reference-drop counterpart used
// around a single decode-loop iteration's Packet: acquire at the top of an
// iteration, call the returned func (directly or via defer) on every exit
// path including early continue/return, and the reference is dropped once.
func Guard[T any](handle T, unref func(T), isNull func(T) bool) func() {
	done := false
	return func() {
		if done || isNull(handle) {
			return
		}
		done = true
		unref(handle)
	}
}
