// Package calib generates test patterns used to check LED order and find the
// strip's start corner.
package calib

import (
	"fmt"

	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb"
	Corners    Kind = "corners"
)

// Kinds lists the runnable patterns.
var Kinds = []Kind{IndexSweep, RGBTest, Corners}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown calibration pattern %q", s)
}

type Plan struct {
	Kind Kind
	// Hold is the number of frames each step is shown.
	Hold int
}

// SideColors marks each side in the corners pattern.
var SideColors = [4]pixel.RGB{
	layout.Top:    {R: 255},
	layout.Right:  {G: 255},
	layout.Bottom: {B: 255},
	layout.Left:   pixel.White,
}

type Runner struct {
	plan  Plan
	step  int
	frame int
}

func NewRunner(plan Plan) *Runner {
	if plan.Hold < 1 {
		plan.Hold = 1
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

// Step fills out for the current frame; returns false when complete.
func (r *Runner) Step(l *layout.Layout, out []pixel.RGB) bool {
	n := l.Count()
	clear(out[:n])

	switch r.plan.Kind {
	case IndexSweep:
		// One LED at a time, in ring order.
		if r.step >= n {
			return false
		}
		out[r.step] = pixel.White
	case RGBTest:
		if r.step >= 3 {
			return false
		}
		c := [3]pixel.RGB{{R: 255}, {G: 255}, {B: 255}}[r.step]
		for i := range out[:n] {
			out[i] = c
		}
	case Corners:
		// The first LED of each side, plus the next two dimmer, so the ring
		// direction is visible as well.
		if r.step >= 1 {
			return false
		}
		for _, side := range layout.Sides {
			i := l.SideStart(side)
			if l.LEDs[i].Side != side {
				continue
			}
			c := SideColors[side]
			out[i] = c
			for k := 1; k <= 2 && i+k < n && l.LEDs[i+k].Side == side; k++ {
				out[i+k] = pixel.RGB{R: c.R / (2 * k), G: c.G / (2 * k), B: c.B / (2 * k)}
			}
		}
	default:
		return false
	}

	r.frame++
	if r.frame >= r.plan.Hold {
		r.frame = 0
		r.step++
	}
	return true
}
