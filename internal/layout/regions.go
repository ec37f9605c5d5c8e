package layout

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// ErrGeometry is wrapped by every error raised while building regions or
// resolving LEDs. A geometry error is fatal: nothing can be rendered from it.
var ErrGeometry = errors.New("invalid geometry")

// RegionOpts configures how the ring is divided into regions.
type RegionOpts struct {
	// Horizontal is the region count on each of top and bottom, Vertical on
	// each of right and left.
	Horizontal int
	Vertical   int

	// Depth is how far inward, in pixels, sampling rectangles reach.
	Depth int
	// Radius, if positive, limits the along-side extent of a sampling
	// rectangle to the region center +/- Radius.
	Radius int

	// Samples is the sample count per region per frame.
	Samples int
	// Random redraws sample points every frame. Otherwise points are drawn
	// once by Partition and reused.
	Random bool
}

// Region is a contiguous span of the ring with its sampling rectangle and the
// color averaged from the last frame.
type Region struct {
	Side  Side
	Start int // inclusive
	End   int // inclusive

	// Rect is the sampling rectangle in screen coordinates; Max is exclusive.
	Rect image.Rectangle
	// Points are the fixed sample points, nil with random sampling.
	Points []image.Point

	Color pixel.RGB
}

// Center is the midpoint of the span, rounded toward Start.
func (r *Region) Center() int { return r.Start + (r.End-r.Start)/2 }

// Contains reports whether ring position p falls in the span.
func (r *Region) Contains(p int) bool { return r.Start <= p && p <= r.End }

func (r *Region) String() string {
	return fmt.Sprintf("%s [%d, %d] rect %v", r.Side, r.Start, r.End, r.Rect)
}

// Partition divides the ring of screen into regions ordered by ring position.
// rng seeds the fixed sample points and may be nil when opts.Random is set.
func Partition(screen Screen, opts RegionOpts, rng *rand.Rand) ([]Region, error) {
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("%w: screen %dx%d", ErrGeometry, screen.Width, screen.Height)
	}
	if opts.Depth <= 0 || opts.Depth > min(screen.Width, screen.Height) {
		return nil, fmt.Errorf("%w: sampling depth %d", ErrGeometry, opts.Depth)
	}
	if opts.Samples <= 0 {
		return nil, fmt.Errorf("%w: sample count %d", ErrGeometry, opts.Samples)
	}
	if !opts.Random && rng == nil {
		return nil, fmt.Errorf("%w: fixed sampling needs a random source", ErrGeometry)
	}

	regions := make([]Region, 0, 2*(opts.Horizontal+opts.Vertical))
	for _, side := range Sides {
		n := opts.Vertical
		if side.Horizontal() {
			n = opts.Horizontal
		}
		l := screen.SideLength(side)
		if n <= 0 {
			return nil, fmt.Errorf("%w: %d regions on %s", ErrGeometry, n, side)
		}
		if n > l {
			return nil, fmt.Errorf("%w: %d regions on %s exceed its %d pixels", ErrGeometry, n, side, l)
		}

		width := l / n
		off := screen.Offset(side)
		for k := 0; k < n; k++ {
			r := Region{
				Side:  side,
				Start: off + k*width,
				End:   off + (k+1)*width - 1,
			}
			if k == n-1 {
				r.End = off + l - 1
			}
			r.Rect = samplingRect(screen, &r, opts)
			if !opts.Random {
				r.Points = drawPoints(r.Rect, opts.Samples, rng, nil)
			}
			regions = append(regions, r)
		}
	}
	return regions, nil
}

// samplingRect derives the rectangle of r from its span and the sampling depth.
func samplingRect(screen Screen, r *Region, opts RegionOpts) image.Rectangle {
	start, end := r.Start, r.End
	if opts.Radius > 0 {
		c := r.Center()
		start = max(start, c-opts.Radius)
		end = min(end, c+opts.Radius)
	}
	a := screen.Point(start, 0)
	b := screen.Point(end, opts.Depth-1)
	return image.Rect(
		min(a.X, b.X), min(a.Y, b.Y),
		max(a.X, b.X)+1, max(a.Y, b.Y)+1,
	)
}

// drawPoints fills dst with n uniformly random points inside rect.
func drawPoints(rect image.Rectangle, n int, rng *rand.Rand, dst []image.Point) []image.Point {
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, image.Pt(
			rect.Min.X+rng.IntN(rect.Dx()),
			rect.Min.Y+rng.IntN(rect.Dy()),
		))
	}
	return dst
}

// DrawPoints redraws n random sample points inside r's rectangle, reusing buf.
func (r *Region) DrawPoints(n int, rng *rand.Rand, buf []image.Point) []image.Point {
	return drawPoints(r.Rect, n, rng, buf)
}
