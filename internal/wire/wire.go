// Package wire frames LED colors for the serial link.
//
// A frame is one FrameStart byte followed, per LED, by LEDStart and three
// channel bytes. Channel bytes never exceed MaxChannel, so a control byte can
// not appear inside color data. Optionally GroupMarker and a group size follow
// FrameStart.
package wire

import (
	"errors"
	"fmt"

	"github.com/coreman2200/borderlight/internal/pixel"
)

const (
	FrameStart  byte = 255
	LEDStart    byte = 254
	GroupMarker byte = 253
	MaxChannel  byte = 252
)

// ErrMalformed is returned by Decode for buffers that do not follow the framing.
var ErrMalformed = errors.New("malformed frame")

// Encoder serializes frames. The zero value starts at LED 0 without a group
// marker.
type Encoder struct {
	// Start is the index of the LED sent first; the rest follow in ring order,
	// wrapping around.
	Start int
	// Group, when positive, is sent after GroupMarker at the head of the frame.
	Group int
}

// Size is the encoded length of a frame of n LEDs.
func (e *Encoder) Size(n int) int {
	size := 1 + 4*n
	if e.Group > 0 {
		size += 2
	}
	return size
}

// Append encodes leds onto dst and returns the extended buffer.
func (e *Encoder) Append(dst []byte, leds []pixel.RGB) []byte {
	dst = append(dst, FrameStart)
	if e.Group > 0 {
		dst = append(dst, GroupMarker, byte(min(e.Group, int(MaxChannel))))
	}
	n := len(leds)
	if n == 0 {
		return dst
	}
	start := ((e.Start % n) + n) % n
	for j := 0; j < n; j++ {
		r, g, b := leds[(start+j)%n].Bytes(MaxChannel)
		dst = append(dst, LEDStart, r, g, b)
	}
	return dst
}

// Frame is a decoded frame. LEDs are in wire order.
type Frame struct {
	Group int
	LEDs  []pixel.RGB
}

// Decode parses a single frame.
func Decode(buf []byte) (*Frame, error) {
	if len(buf) == 0 || buf[0] != FrameStart {
		return nil, fmt.Errorf("%w: missing frame start", ErrMalformed)
	}
	buf = buf[1:]

	f := &Frame{}
	if len(buf) > 0 && buf[0] == GroupMarker {
		if len(buf) < 2 || buf[1] > MaxChannel {
			return nil, fmt.Errorf("%w: truncated group marker", ErrMalformed)
		}
		f.Group = int(buf[1])
		buf = buf[2:]
	}

	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(buf)%4)
	}
	f.LEDs = make([]pixel.RGB, 0, len(buf)/4)
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != LEDStart {
			return nil, fmt.Errorf("%w: byte %d is %d, expected LED start", ErrMalformed, i, buf[i])
		}
		for _, c := range buf[i+1 : i+4] {
			if c > MaxChannel {
				return nil, fmt.Errorf("%w: control byte %d inside LED %d", ErrMalformed, c, i/4)
			}
		}
		f.LEDs = append(f.LEDs, pixel.RGB{R: int(buf[i+1]), G: int(buf[i+2]), B: int(buf[i+3])})
	}
	return f, nil
}

// Split cuts a byte stream into frames at each FrameStart. Bytes before the
// first FrameStart are dropped.
func Split(stream []byte) [][]byte {
	var frames [][]byte
	start := -1
	for i, b := range stream {
		if b != FrameStart {
			continue
		}
		if start >= 0 {
			frames = append(frames, stream[start:i])
		}
		start = i
	}
	if start >= 0 {
		frames = append(frames, stream[start:])
	}
	return frames
}
