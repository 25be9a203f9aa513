package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/zsiec/frameloom/internal/frame"
)

func TestSourcePixelFormatMapping(t *testing.T) {
	assert.Equal(t, uint32(sdl.PIXELFORMAT_ABGR8888), sourcePixelFormat(frame.FormatRGBA))
	assert.Equal(t, uint32(sdl.PIXELFORMAT_ARGB8888), sourcePixelFormat(frame.FormatBGRA))
}
