package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/borderlight/internal/capture"
	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

// Engine turns captured frames into LED colors: sample regions, interpolate
// LEDs, correct, fade, then write to the driver.
type Engine struct {
	Layout *layout.Layout
	Src    capture.Display
	Drv    Driver

	Sampler    *Sampler
	Correction Correction
	// Fader is nil when fading is disabled.
	Fader *Fader

	// Out holds the last frame handed to Drv.
	Out []pixel.RGB

	// metrics (last durations in ms)
	Last struct {
		CaptureMS float64
		SampleMS  float64
		PostMS    float64
		TotalMS   float64
		Queries   int
	}
}

// NewEngine allocates the output buffer and returns an Engine with an
// identity correction and no fading.
func NewEngine(l *layout.Layout, src capture.Display, drv Driver, s *Sampler) (*Engine, error) {
	if l == nil || l.Count() == 0 {
		return nil, errors.New("layout has no LEDs")
	}
	if src == nil {
		return nil, errors.New("no capture source")
	}
	if s == nil {
		return nil, errors.New("no sampler")
	}
	return &Engine{
		Layout:     l,
		Src:        src,
		Drv:        drv,
		Sampler:    s,
		Correction: Identity,
		Out:        make([]pixel.RGB, l.Count()),
	}, nil
}

// RenderOnce runs one full frame. Regions are recolored before any LED reads
// them. Driver errors are returned unwrapped so callers can classify them.
func (e *Engine) RenderOnce() error {
	start := time.Now()

	frame, err := e.Src.Grab()
	if err != nil {
		frameErrors.WithLabelValues("capture").Inc()
		return fmt.Errorf("grab frame: %w", err)
	}
	e.Last.CaptureMS = msSince(start)
	frameSeconds.WithLabelValues("capture").Observe(e.Last.CaptureMS / 1000)

	sampleStart := time.Now()
	e.Last.Queries = e.Sampler.Sample(e.Layout.Regions, frame)
	pixelQueries.Add(float64(e.Last.Queries))
	Mix(e.Out, e.Layout.LEDs, e.Layout.Regions)
	e.Last.SampleMS = msSince(sampleStart)
	frameSeconds.WithLabelValues("sample").Observe(e.Last.SampleMS / 1000)

	postStart := time.Now()
	e.Correction.ApplyAll(e.Out)
	if e.Fader != nil {
		e.Fader.Step(e.Out)
	}
	e.Last.PostMS = msSince(postStart)
	frameSeconds.WithLabelValues("post").Observe(e.Last.PostMS / 1000)

	if e.Drv != nil {
		writeStart := time.Now()
		err := e.Drv.Write(e.Out)
		frameSeconds.WithLabelValues("write").Observe(time.Since(writeStart).Seconds())
		if err != nil {
			frameErrors.WithLabelValues("write").Inc()
			return err
		}
	}

	e.Last.TotalMS = msSince(start)
	framesRendered.Inc()
	return nil
}

// SetCorrection replaces the correction stage.
func (e *Engine) SetCorrection(c Correction) { e.Correction = c }

// SetFading enables fading at speed, or disables it when speed is below 1.
// Enabling restarts from black; changing the speed of an active fader keeps
// its state.
func (e *Engine) SetFading(speed int) {
	if speed < 1 {
		e.Fader = nil
		return
	}
	if e.Fader != nil {
		e.Fader.Speed = speed
		return
	}
	e.Fader = NewFader(e.Layout.Count(), speed)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
