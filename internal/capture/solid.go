package capture

import (
	"image"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// Solid is a synthetic Display filled with a single color.
type Solid struct {
	size image.Point
	c    pixel.RGB
}

func NewSolid(size image.Point, c pixel.RGB) *Solid { return &Solid{size: size, c: c} }

// Presets names the colors accepted by ApplyPreset.
func (s *Solid) Presets() []string { return []string{"red", "green", "blue", "white", "black"} }

func (s *Solid) ApplyPreset(name string) {
	switch name {
	case "red":
		s.c = pixel.RGB{R: 255}
	case "green":
		s.c = pixel.RGB{G: 255}
	case "blue":
		s.c = pixel.RGB{B: 255}
	case "white":
		s.c = pixel.White
	case "black":
		s.c = pixel.Black
	}
}

// Set changes the fill color for subsequent frames.
func (s *Solid) Set(c pixel.RGB) { s.c = c }

func (s *Solid) Bounds() image.Rectangle { return image.Rectangle{Max: s.size} }

func (s *Solid) Grab() (Frame, error) {
	c, b := s.c, s.Bounds()
	return FrameFunc(func(x, y int) pixel.RGB {
		if !image.Pt(x, y).In(b) {
			return pixel.Black
		}
		return c
	}), nil
}

func (s *Solid) Close() error { return nil }
