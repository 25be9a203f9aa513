package server

import (
	"math"
	"time"

	"github.com/zsiec/frameloom/internal/frame"
)

// pacer turns a stream of frame.Header values into wall-clock due times so
// frames are sent no faster than they were meant to play back. Every
// stream gets its own pacer; it isn't safe for concurrent use.
type pacer struct {
	startTime time.Time
	timestamp time.Duration // the previous header's Timestamp, as a duration
	sequence  int32
}

func newPacer() *pacer {
	return &pacer{startTime: time.Now(), sequence: math.MaxInt32}
}

// dueTime returns when h should be sent. Seeing Sequence == 0 or a sequence
// number lower than the last one seen means a new file's frames have
// started (or this is a filler, which is always Sequence == 0), so the
// timebase resets to now *before* due is computed: a first frame is always
// released immediately, and a filler is always paced relative to the
// instant it was produced rather than some earlier file's start. A filler
// header is paced using the *previous* header's timestamp rather than its
// own, since a filler's Timestamp field carries the inter-filler gap, not a
// position in a timeline.
func (p *pacer) dueTime(h frame.Header) time.Time {
	if h.IsFirstFrame(p.sequence) {
		p.startTime = time.Now()
	}

	var due time.Time
	if h.Sequence != 0 {
		due = p.startTime.Add(time.Duration(h.Timestamp) * time.Microsecond)
	} else {
		due = p.startTime.Add(p.timestamp)
	}

	p.sequence = h.Sequence
	p.timestamp = time.Duration(h.Timestamp) * time.Microsecond
	return due
}
