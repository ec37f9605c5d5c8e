// Package capture provides the pixel sources sampled every frame.
package capture

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// ErrUnavailable is wrapped when a capture source cannot be opened.
var ErrUnavailable = errors.New("capture source unavailable")

// Display is an opened capture source.
type Display interface {
	// Bounds is the size of the captured area, with Min at the origin.
	Bounds() image.Rectangle
	// Grab captures the current frame.
	Grab() (Frame, error)
	// Close releases the source.
	Close() error
}

// Frame answers pixel queries against one captured frame. Coordinates are
// relative to the Display bounds; queries outside return black.
type Frame interface {
	Pixel(x, y int) pixel.RGB
}

// FrameFunc adapts a function to Frame.
type FrameFunc func(x, y int) pixel.RGB

func (f FrameFunc) Pixel(x, y int) pixel.RGB { return f(x, y) }

// Open opens the source named by spec:
//
//	screen          first active display
//	screen:N        display N
//	image:PATH      a still PNG or JPEG image
//	solid:#rrggbb   a uniform color over size
//	gradient        a hue ramp around the border over size
//
// size is used by the synthetic sources; live and image sources report their
// own bounds.
func Open(spec string, size image.Point) (Display, error) {
	kind, arg, _ := strings.Cut(spec, ":")
	switch kind {
	case "screen":
		n := 0
		if arg != "" {
			v, err := strconv.Atoi(arg)
			if err != nil {
				return nil, fmt.Errorf("%w: display index %q: %v", ErrUnavailable, arg, err)
			}
			n = v
		}
		s, err := OpenScreen(n)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "image":
		img, err := OpenImage(arg)
		if err != nil {
			return nil, err
		}
		return img, nil
	case "solid":
		c, err := pixel.Parse(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return NewSolid(size, c), nil
	case "gradient":
		return NewGradient(size), nil
	}
	return nil, fmt.Errorf("%w: unknown source %q", ErrUnavailable, spec)
}
