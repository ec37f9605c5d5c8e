package layout

import (
	"fmt"
	"image"
)

// Side is one edge of the screen border. Sides are listed in ring order.
type Side uint8

const (
	Top Side = iota
	Right
	Bottom
	Left
)

// Sides lists every side in ring order.
var Sides = [...]Side{Top, Right, Bottom, Left}

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return fmt.Sprintf("side(%d)", uint8(s))
}

// Horizontal reports whether the side runs along the x axis.
func (s Side) Horizontal() bool { return s == Top || s == Bottom }

// reversed reports whether the ring walks this side against increasing
// screen coordinates (bottom runs right to left, left runs bottom to top).
func (s Side) reversed() bool { return s == Bottom || s == Left }

// Screen is the captured display size in pixels.
type Screen struct {
	Width  int
	Height int
}

// RingLength is the number of linear positions around the border.
func (s Screen) RingLength() int { return 2 * (s.Width + s.Height) }

// SideLength is the number of linear positions on one side.
func (s Screen) SideLength(side Side) int {
	if side.Horizontal() {
		return s.Width
	}
	return s.Height
}

// Offset is the linear coordinate of the first ring position of side.
func (s Screen) Offset(side Side) int {
	off := 0
	for _, prev := range Sides[:side] {
		off += s.SideLength(prev)
	}
	return off
}

// ToLinear maps a screen coordinate along side (x for top/bottom, y for
// right/left) to its position on the ring.
func (s Screen) ToLinear(side Side, coord int) int {
	if side.reversed() {
		coord = s.SideLength(side) - 1 - coord
	}
	return s.Offset(side) + coord
}

// FromLinear maps a ring position back to its side and the screen coordinate
// along that side. Positions outside the ring wrap.
func (s Screen) FromLinear(linear int) (Side, int) {
	n := s.RingLength()
	linear = ((linear % n) + n) % n
	for _, side := range Sides {
		l := s.SideLength(side)
		if linear < l {
			if side.reversed() {
				return side, l - 1 - linear
			}
			return side, linear
		}
		linear -= l
	}
	panic("unreachable")
}

// Point returns the screen pixel at ring position linear, moved depth pixels
// inward from the border. depth is clamped to the screen.
func (s Screen) Point(linear, depth int) image.Point {
	side, c := s.FromLinear(linear)
	switch side {
	case Top:
		return image.Pt(c, clampInt(depth, 0, s.Height-1))
	case Right:
		return image.Pt(clampInt(s.Width-1-depth, 0, s.Width-1), c)
	case Bottom:
		return image.Pt(c, clampInt(s.Height-1-depth, 0, s.Height-1))
	default:
		return image.Pt(clampInt(depth, 0, s.Width-1), c)
	}
}

// Next and Prev are the ring neighbors of index i among n entries.
func Next(i, n int) int { return (i + 1) % n }
func Prev(i, n int) int { return (i + n - 1) % n }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
