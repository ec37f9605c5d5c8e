package render

import (
	"image"
	"math/rand/v2"

	"github.com/coreman2200/borderlight/internal/capture"
	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

// Sampler averages a set of sample points per region into the region color.
type Sampler struct {
	// Samples is the point count per region used with random sampling.
	// Regions with fixed points use all of their points.
	Samples int
	Random  bool

	rng *rand.Rand
	buf []image.Point
}

// NewSampler returns a sampler. rng is only read with random sampling; nil
// picks an unseeded source.
func NewSampler(samples int, random bool, rng *rand.Rand) *Sampler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Sampler{
		Samples: samples,
		Random:  random,
		rng:     rng,
		buf:     make([]image.Point, 0, samples),
	}
}

// Sample recolors every region from frame. Each point costs one pixel query;
// the query count is returned.
func (s *Sampler) Sample(regions []layout.Region, frame capture.Frame) int {
	queries := 0
	for i := range regions {
		r := &regions[i]
		points := r.Points
		if s.Random || points == nil {
			s.buf = r.DrawPoints(s.Samples, s.rng, s.buf)
			points = s.buf
		}
		if len(points) == 0 {
			continue
		}

		var sum pixel.RGB
		for _, p := range points {
			c := frame.Pixel(p.X, p.Y)
			sum.R += c.R
			sum.G += c.G
			sum.B += c.B
		}
		n := len(points)
		r.Color = pixel.RGB{R: sum.R / n, G: sum.G / n, B: sum.B / n}
		queries += n
	}
	return queries
}
