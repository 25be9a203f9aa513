package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrowingBufferGrowsOnlyWhenNeeded(t *testing.T) {
	var g GrowingBuffer

	a := g.Rent(10)
	assert.Len(t, a, 10)
	backing := &a[0]

	b := g.Rent(4)
	assert.Len(t, b, 4)
	assert.Same(t, backing, &b[0], "renting a smaller size should reuse the existing storage")

	c := g.Rent(100)
	assert.Len(t, c, 100)
	assert.NotSame(t, backing, &c[0], "renting a larger size must reallocate")
}
