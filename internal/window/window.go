// Package window is the minimal SDL2 presentation surface: a resizable
// window showing the most recently received frame,
// with the window hidden whenever the current header carries no pixels.
// Window, Renderer, and Texture handles are each wrapped in cres.Resource,
// the same RAII discipline the decode pipeline uses for libav handles.
package window

import (
	"fmt"
	"math"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/zsiec/frameloom/internal/cres"
	"github.com/zsiec/frameloom/internal/frame"
)

// GUI owns the SDL window/renderer/texture triple and tracks enough state
// to decide, on every received header, whether the texture needs to be
// resized or the window shown/hidden.
type GUI struct {
	window   *cres.Resource[*sdl.Window]
	renderer *cres.Resource[*sdl.Renderer]
	texture  *cres.Resource[*sdl.Texture]

	sequence  int32
	width     int32
	height    int32
	pitch     int32
	srcFormat uint32
}

// New initializes SDL's video subsystem and opens a width×height window,
// hidden until the first non-empty frame arrives.
func New(width, height int32) (*GUI, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("window: sdl init: %w", err)
	}

	win, err := cres.New(func() (*sdl.Window, error) {
		return sdl.CreateWindow("frameloom", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
			width, height, sdl.WINDOW_RESIZABLE|sdl.WINDOW_HIDDEN)
	}, func(w *sdl.Window) { _ = w.Destroy() }, func(w *sdl.Window) bool { return w == nil })
	if err != nil {
		return nil, fmt.Errorf("window: create window: %w", err)
	}

	ren, err := cres.New(func() (*sdl.Renderer, error) {
		return sdl.CreateRenderer(win.Get(), -1, sdl.RENDERER_PRESENTVSYNC)
	}, func(r *sdl.Renderer) { _ = r.Destroy() }, func(r *sdl.Renderer) bool { return r == nil })
	if err != nil {
		win.Close()
		return nil, fmt.Errorf("window: create renderer: %w", err)
	}

	_ = win.Get().SetMinimumSize(width, height)
	_ = ren.Get().SetLogicalSize(width, height)
	_ = ren.Get().SetIntegerScale(true)
	_ = ren.Get().SetDrawBlendMode(sdl.BLENDMODE_NONE)

	return &GUI{
		window:   win,
		renderer: ren,
		texture:  cres.Of[*sdl.Texture](nil, func(t *sdl.Texture) { _ = t.Destroy() }, func(t *sdl.Texture) bool { return t == nil }),
		sequence: math.MaxInt32,
		width:    width,
		height:   height,
	}, nil
}

// Close releases the texture, renderer, and window, in that order.
func (g *GUI) Close() {
	g.texture.Close()
	g.renderer.Close()
	g.window.Close()
}

func sourcePixelFormat(f frame.Format) uint32 {
	if f == frame.FormatRGBA {
		return sdl.PIXELFORMAT_ABGR8888
	}
	return sdl.PIXELFORMAT_ARGB8888
}

// UpdateFrom reshapes the window and texture to match h whenever h begins a
// new sequence (a real first frame, or any filler — see
// frame.Header.IsFirstFrame). A header with no pixels hides the window
// instead of resizing into it.
func (g *GUI) UpdateFrom(h frame.Header) {
	if h.IsFirstFrame(g.sequence) {
		if !h.Empty() {
			g.width, g.height, g.pitch = int32(h.Width), int32(h.Height), int32(h.LinePitch)
			g.srcFormat = sourcePixelFormat(h.Format)

			g.texture.Close()
			tex, err := sdl.CreateTexture(g.renderer.Get(), g.srcFormat, sdl.TEXTUREACCESS_STREAMING, g.width, g.height)
			if err == nil {
				g.texture = cres.Of[*sdl.Texture](tex, func(t *sdl.Texture) { _ = t.Destroy() }, func(t *sdl.Texture) bool { return t == nil })
			}

			_ = g.window.Get().SetMinimumSize(g.width, g.height)
			_ = g.renderer.Get().SetLogicalSize(g.width, g.height)
			g.window.Get().Show()
		} else {
			g.window.Get().Hide()
			g.texture.Close()
			g.texture = cres.Of[*sdl.Texture](nil, func(t *sdl.Texture) { _ = t.Destroy() }, func(t *sdl.Texture) bool { return t == nil })
		}
	}
	g.sequence = h.Sequence
}

// Present clears the renderer, uploads pixels into the current texture and
// draws it, then presents. With no live texture (window hidden on filler
// frames) or no pixels, only the cleared background is presented.
func (g *GUI) Present(pixels []byte) {
	ren := g.renderer.Get()
	_ = ren.SetDrawColor(240, 240, 240, 240)
	_ = ren.Clear()
	if g.texture.Have() && len(pixels) > 0 {
		tex := g.texture.Get()
		if err := tex.Update(nil, pixels, int(g.pitch)); err == nil {
			_ = ren.Copy(tex, nil, nil)
		}
	}
	ren.Present()
}

// PollEvents drains SDL's event queue and reports whether the user asked
// to close the window.
func (g *GUI) PollEvents() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if _, ok := event.(*sdl.QuitEvent); ok {
			return true
		}
	}
	return false
}
