// Package decode turns a directory of GIF files into an endless sequence of
// frame.Frame values, driving github.com/asticode/go-astiav's cgo-backed
// libav bindings directly rather than raw C calls. Each decode-loop
// iteration's AVPacket reference is dropped through a cres.Guard closure
// called on every path out of the iteration, and each received AVFrame is
// unreffed as soon as its pixels have been copied.
package decode

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/asticode/go-astiav"

	"github.com/zsiec/frameloom/internal/cres"
	"github.com/zsiec/frameloom/internal/frame"
)

// fillerQuantum is the pacing hint carried by a frame emitted in place of a
// real decode, used when a directory has nothing playable in it.
const fillerQuantum = 100 * time.Millisecond

// formatContext is the open-input side of a GIF: an astiav.FormatContext
// that has successfully opened a file and been confirmed to have its best
// video stream at index 0, with that stream using the GIF codec. Other
// streams in the file are not checked.
type formatContext struct {
	fc     *astiav.FormatContext
	stream *astiav.Stream
}

func (f *formatContext) close() {
	if f == nil || f.fc == nil {
		return
	}
	f.fc.CloseInput()
	f.fc.Free()
}

// openAsGIF opens path and accepts it only if the *best* video stream (as
// libav's own stream-selection heuristic picks it, not merely whatever sits
// at index 0) is stream 0 and decodes with the GIF codec; any other shape
// is rejected and the caller falls back to a filler frame.
func openAsGIF(path string) (*formatContext, error) {
	fc := astiav.AllocFormatContext()
	if fc == nil {
		return nil, fmt.Errorf("decode: allocate format context")
	}
	ok := false
	defer func() {
		if !ok {
			fc.Free()
		}
	}()

	if err := fc.OpenInput(path, nil, nil); err != nil {
		return nil, fmt.Errorf("decode: open %s: %w", path, err)
	}
	if err := fc.FindStreamInfo(nil); err != nil {
		fc.CloseInput()
		return nil, fmt.Errorf("decode: probe %s: %w", path, err)
	}

	bestIndex, err := fc.FindBestStream(astiav.MediaTypeVideo, -1, -1, nil, 0)
	if err != nil || bestIndex != 0 {
		fc.CloseInput()
		return nil, fmt.Errorf("decode: %s: best video stream is not stream 0", path)
	}

	streams := fc.Streams()
	if streams[0].CodecParameters().CodecID() != astiav.CodecIDGif {
		fc.CloseInput()
		return nil, fmt.Errorf("decode: %s is not a single-stream GIF", path)
	}

	ok = true
	return &formatContext{fc: fc, stream: streams[0]}, nil
}

// decoder is an opened AVCodecContext bound to a formatContext's GIF stream.
type decoder struct {
	ctx        *astiav.CodecContext
	tickPeriod time.Duration // duration of one stream time_base tick
}

func (d *decoder) close() {
	if d == nil || d.ctx == nil {
		return
	}
	d.ctx.Free()
}

// openVideoDecoder opens a decoder for fctx's stream, refusing still images
// (duration <= 0).
func openVideoDecoder(fctx *formatContext) (*decoder, error) {
	if fctx.fc.Duration() <= 0 {
		return nil, fmt.Errorf("decode: refusing still image")
	}

	codec := astiav.FindDecoder(fctx.stream.CodecParameters().CodecID())
	if codec == nil {
		return nil, fmt.Errorf("decode: no GIF decoder registered")
	}
	ctx := astiav.AllocCodecContext(codec)
	if ctx == nil {
		return nil, fmt.Errorf("decode: allocate codec context")
	}
	ok := false
	defer func() {
		if !ok {
			ctx.Free()
		}
	}()

	if err := fctx.stream.CodecParameters().ToCodecContext(ctx); err != nil {
		return nil, fmt.Errorf("decode: copy codec parameters: %w", err)
	}
	if err := ctx.Open(codec, nil); err != nil {
		return nil, fmt.Errorf("decode: open codec: %w", err)
	}

	tb := fctx.stream.TimeBase()
	ok = true
	return &decoder{
		ctx:        ctx,
		tickPeriod: time.Duration(float64(time.Second) * float64(tb.Num()) / float64(tb.Den())),
	}, nil
}

func pixelFormat(f astiav.PixelFormat) frame.Format {
	switch f {
	case astiav.PixelFormatRgba:
		return frame.FormatRGBA
	case astiav.PixelFormatBgra:
		return frame.FormatBGRA
	default:
		return frame.FormatInvalid
	}
}

// decodeFile decodes fctx/dec's stream frame by frame, yielding each one as
// a frame.Frame with a freshly copied pixel payload (the slice must outlive
// the astiav frame being unreffed beneath it, so it can't be borrowed).
func decodeFile(fctx *formatContext, dec *decoder, yield func(frame.Frame) bool) {
	pkt := astiav.AllocPacket()
	defer pkt.Free()
	avFrame := astiav.AllocFrame()
	defer avFrame.Free()

	frameNumber := 0
	for {
		if err := fctx.fc.ReadFrame(pkt); err != nil {
			break
		}
		drop := cres.Guard(pkt, func(p *astiav.Packet) { p.Unref() }, func(p *astiav.Packet) bool { return p == nil })

		if pkt.StreamIndex() != 0 {
			drop()
			continue
		}
		if err := dec.ctx.SendPacket(pkt); err != nil {
			drop()
			continue
		}
		drop()

		for {
			err := dec.ctx.ReceiveFrame(avFrame)
			if err != nil {
				break
			}
			frameNumber++

			h := frame.Header{
				Width:     int16(avFrame.Width()),
				Height:    int16(avFrame.Height()),
				LinePitch: int16(avFrame.Linesize()[0]),
				Format:    pixelFormat(avFrame.PixelFormat()),
				Sequence:  int32(frameNumber),
				Timestamp: uint32(time.Duration(avFrame.Pts()) * dec.tickPeriod / time.Microsecond),
			}

			pixels := make([]byte, h.SizePixels())
			if raw, err := avFrame.Data().Bytes(0); err == nil {
				copy(pixels, raw)
			}
			avFrame.Unref()

			if !yield(frame.Frame{Header: h, Pixels: pixels}) {
				return
			}
		}
	}
}

// Frames returns an endless sequence of frames decoded from dir's .gif
// files: each playable file is decoded in full before the next one starts,
// and any path that openAsGIF or openVideoDecoder rejects produces a
// single filler frame instead, so the caller's pacing loop always has
// something to send.
func Frames(ctx context.Context, dir string, log *slog.Logger) iter.Seq[frame.Frame] {
	return func(yield func(frame.Frame) bool) {
		for path := range pathCycle(dir) {
			if ctx.Err() != nil {
				return
			}
			if path == "" {
				if !yield(frame.Frame{Header: frame.MakeFiller(fillerQuantum)}) {
					return
				}
				continue
			}

			fctx, err := openAsGIF(path)
			if err != nil {
				if !yield(frame.Frame{Header: frame.MakeFiller(fillerQuantum)}) {
					return
				}
				continue
			}

			dec, err := openVideoDecoder(fctx)
			if err != nil {
				fctx.close()
				if !yield(frame.Frame{Header: frame.MakeFiller(fillerQuantum)}) {
					return
				}
				continue
			}

			log.Info("decoding", slog.String("path", path))

			stop := false
			decodeFile(fctx, dec, func(fr frame.Frame) bool {
				if ctx.Err() != nil || !yield(fr) {
					stop = true
					return false
				}
				return true
			})
			dec.close()
			fctx.close()
			if stop {
				return
			}
		}
	}
}
