package cres

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isNilPtr(p *int) bool { return p == nil }

func TestOfClosesExactlyOnce(t *testing.T) {
	n := 0
	v := 7
	r := Of(&v, func(*int) { n++ }, isNilPtr)

	r.Close()
	r.Close()
	r.Close()

	assert.Equal(t, 1, n)
}

func TestNewPropagatesConstructorError(t *testing.T) {
	wantErr := errors.New("boom")
	r, err := New(func() (*int, error) { return nil, wantErr }, func(*int) {}, isNilPtr)

	require.Nil(t, r)
	require.ErrorIs(t, err, wantErr)
	r.Close() // Close on nil must not panic.
}

func TestTakeThenCloseDoesNotDoubleRelease(t *testing.T) {
	n := 0
	v := 1
	r := Of(&v, func(*int) { n++ }, isNilPtr)

	taken := r.Take()
	assert.Same(t, &v, taken)

	r.Close()
	assert.Equal(t, 0, n, "release must not run for a handle that was taken")
}

func TestHaveAndEmpty(t *testing.T) {
	v := 1
	r := Of(&v, func(*int) {}, isNilPtr)
	assert.True(t, r.Have())
	assert.False(t, r.Empty())

	r.Close()
	assert.False(t, r.Have())
	assert.True(t, r.Empty())
}

func TestGuardInvokesUnrefOnceOnEveryExitPath(t *testing.T) {
	n := 0
	v := 1
	unref := func(*int) { n++ }

	func() {
		release := Guard(&v, unref, isNilPtr)
		defer release()
		release() // early manual call, e.g. on a continue path
	}()

	assert.Equal(t, 1, n)
}

func TestGuardSkipsNullHandle(t *testing.T) {
	n := 0
	release := Guard[*int](nil, func(*int) { n++ }, isNilPtr)
	release()
	assert.Equal(t, 0, n)
}
