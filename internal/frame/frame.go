// Package frame defines the wire frame header and the classification
// predicates the rest of the system relies on to tell filler, first, and
// end-of-stream frames apart.
package frame

import (
	"encoding/binary"
	"fmt"
	"time"
)

// HeaderSize is the fixed, trivially relocatable on-wire size of a Header.
const HeaderSize = 16

// Format identifies the pixel layout of a frame's payload.
type Format uint8

// Supported pixel formats. Zero means the frame carries no usable pixels.
const (
	FormatInvalid Format = 0
	FormatRGBA    Format = 1
	FormatBGRA    Format = 2
)

// Header is the 16-byte fixed layout that precedes every frame's pixel
// payload on the wire; see MarshalBinary/UnmarshalBinary for the byte
// layout.
type Header struct {
	Width     int16
	Height    int16
	LinePitch int16
	Format    Format
	Sequence  int32
	Timestamp uint32 // microseconds
}

// NoFrame is the zero-valued header: Sequence == 0 and Timestamp == 0. It
// marks end-of-stream on the wire and as a sentinel return value.
var NoFrame = Header{}

// MakeFiller returns the header for a filler frame: no pixels, Sequence 0,
// and Timestamp set to the inter-filler delta so the client can display it.
func MakeFiller(d time.Duration) Header {
	return Header{Timestamp: uint32(d.Microseconds())}
}

// SizePixels is the number of pixel bytes that follow this header on the
// wire or in memory.
func (h Header) SizePixels() int {
	return int(h.Height) * int(h.LinePitch)
}

// Empty reports whether this header carries no pixel payload.
func (h Header) Empty() bool {
	return h.SizePixels() == 0
}

// IsFiller reports whether this header is a filler frame: no real sequence
// number, but a positive inter-filler delta.
func (h Header) IsFiller() bool {
	return h.Sequence == 0 && h.Timestamp > 0
}

// IsNoFrame reports whether this header is the end-of-stream sentinel.
func (h Header) IsNoFrame() bool {
	return h.Sequence == 0 && h.Timestamp == 0
}

// IsFirstFrame reports whether this header begins a new file's sequence,
// given the most recently observed sequence number. A filler frame's
// Sequence is always 0, so every filler counts as first. At stream start,
// prevSequence should be a sentinel larger than any real sequence so the
// stream's first real frame counts as first too (see server.pacer, which
// tracks this).
func (h Header) IsFirstFrame(prevSequence int32) bool {
	return h.Sequence == 0 || h.Sequence < prevSequence
}

// MarshalBinary serializes the header to its 16-byte little-endian wire
// form. Offset 7 is a reserved zero byte.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(h.Width))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(h.Height))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(h.LinePitch))
	buf[6] = byte(h.Format)
	buf[7] = 0
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Sequence))
	binary.LittleEndian.PutUint32(buf[12:16], h.Timestamp)
	return buf, nil
}

// UnmarshalBinary decodes a 16-byte little-endian wire header in place.
func (h *Header) UnmarshalBinary(buf []byte) error {
	if len(buf) != HeaderSize {
		return fmt.Errorf("frame: header is %d bytes, want %d", len(buf), HeaderSize)
	}
	h.Width = int16(binary.LittleEndian.Uint16(buf[0:2]))
	h.Height = int16(binary.LittleEndian.Uint16(buf[2:4]))
	h.LinePitch = int16(binary.LittleEndian.Uint16(buf[4:6]))
	h.Format = Format(buf[6])
	h.Sequence = int32(binary.LittleEndian.Uint32(buf[8:12]))
	h.Timestamp = binary.LittleEndian.Uint32(buf[12:16])
	return nil
}

// Frame pairs a Header with a borrowed span of pixel bytes. The pixel slice
// is owned by whoever produced the Frame (the decoder on the server side,
// the receive buffer on the client side); Frame never copies or retains it
// beyond the call that produced it.
type Frame struct {
	Header Header
	Pixels []byte
}
