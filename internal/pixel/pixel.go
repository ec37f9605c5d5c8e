// Package pixel holds the integer RGB value passed between the sampling,
// interpolation, correction and encoding stages.
package pixel

import (
	"fmt"
	"strconv"
	"strings"
)

// RGB is a color with one int per channel. Channels are nominally 0..255 but
// intermediate stages may carry values outside that range; Clamp bounds them
// before they reach a byte-oriented sink.
type RGB struct {
	R, G, B int
}

var (
	Black = RGB{}
	White = RGB{R: 255, G: 255, B: 255}
)

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Luminosity is the integer mean of the three channels.
func (c RGB) Luminosity() int {
	return (c.R + c.G + c.B) / 3
}

// Clamp bounds every channel to [0, hi].
func (c RGB) Clamp(hi int) RGB {
	return RGB{R: clamp(c.R, hi), G: clamp(c.G, hi), B: clamp(c.B, hi)}
}

// Bytes returns the channels as bytes after clamping to [0, hi].
func (c RGB) Bytes(hi byte) (r, g, b byte) {
	cc := c.Clamp(int(hi))
	return byte(cc.R), byte(cc.G), byte(cc.B)
}

// Blend returns (t*to + (100-t)*from)/100 per channel, truncating. t is a
// weight in 0..100.
func Blend(from, to RGB, t int) RGB {
	return RGB{
		R: (t*to.R + (100-t)*from.R) / 100,
		G: (t*to.G + (100-t)*from.G) / 100,
		B: (t*to.B + (100-t)*from.B) / 100,
	}
}

// Parse reads "#rrggbb" or "rrggbb".
func Parse(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
