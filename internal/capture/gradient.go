package capture

import (
	"image"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// Gradient is a synthetic Display whose hue rotates around the screen center,
// so every border region sees a different color. A non-zero Speed (turns per
// second) animates the hue.
type Gradient struct {
	Speed float64

	size image.Point
	t0   time.Time
	now  func() time.Time
}

func NewGradient(size image.Point) *Gradient {
	return &Gradient{size: size, t0: time.Now(), now: time.Now}
}

func (g *Gradient) Bounds() image.Rectangle { return image.Rectangle{Max: g.size} }

func (g *Gradient) Grab() (Frame, error) {
	t := g.now().Sub(g.t0).Seconds()
	cx, cy := float64(g.size.X)/2, float64(g.size.Y)/2
	b := g.Bounds()
	speed := g.Speed
	return FrameFunc(func(x, y int) pixel.RGB {
		if !image.Pt(x, y).In(b) {
			return pixel.Black
		}
		deg := math.Atan2(float64(y)-cy, float64(x)-cx)*180/math.Pi + t*360*speed
		cr, cg, cb := colorful.Hsv(math.Mod(math.Mod(deg, 360)+360, 360), 1, 1).RGB255()
		return pixel.RGB{R: int(cr), G: int(cg), B: int(cb)}
	}), nil
}

func (g *Gradient) Close() error { return nil }
