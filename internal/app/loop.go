package app

import (
	"context"
	"errors"
	"time"

	"github.com/coreman2200/borderlight/internal/calib"
	diag "github.com/coreman2200/borderlight/internal/diagnostics"
	"github.com/coreman2200/borderlight/internal/led"
	"github.com/coreman2200/borderlight/internal/pixel"
	"github.com/coreman2200/borderlight/internal/preview"
)

// Pace is how long to sleep after a frame that took elapsed so frames start
// at most once per interval. Slow frames are never skipped, only not delayed.
func Pace(interval, elapsed time.Duration) time.Duration {
	return max(0, interval-elapsed)
}

// Stats counts frame outcomes since the loop started.
type Stats struct {
	Frames   uint64
	Dropped  uint64 // transport timeouts
	Failures uint64 // any other error
}

// Run renders frames until ctx is done. Transport timeouts drop the frame;
// other frame errors are logged and the loop carries on.
func (c *Core) Run(ctx context.Context) Stats {
	var st Stats
	var runner *calib.Runner
	out := make([]pixel.RGB, c.Layout.Count())

	log := c.log.With().Str("component", "loop").Logger()
	log.Info().Dur("interval", c.Cfg.FrameInterval).Msg("frame loop starting")

	for {
		start := time.Now()
		if ctx.Err() != nil {
			return st
		}
		runner = c.applyControls(runner)

		var err error
		if runner != nil {
			if runner.Step(c.Layout, out) {
				err = c.Eng.Drv.Write(out)
			} else {
				c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: "TEST.DONE", Summary: "Test complete"})
				runner = nil
			}
		} else {
			err = c.Eng.RenderOnce()
		}
		st.Frames++

		switch {
		case err == nil:
		case errors.Is(err, led.ErrTimeout):
			st.Dropped++
			log.Debug().Uint64("dropped", st.Dropped).Msg("write timed out; frame dropped")
		default:
			st.Failures++
			log.Warn().Err(err).Uint64("failures", st.Failures).Msg("frame failed")
		}

		if err := sleep(ctx, Pace(c.Cfg.FrameInterval, time.Since(start))); err != nil {
			log.Info().
				Uint64("frames", st.Frames).
				Uint64("dropped", st.Dropped).
				Uint64("failures", st.Failures).
				Msg("frame loop stopped")
			return st
		}
	}
}

// Calibrate drives the outputs with a test pattern until it completes or ctx
// is done. Each step is held for hold.
func (c *Core) Calibrate(ctx context.Context, kind calib.Kind, hold time.Duration) error {
	frames := max(1, int(hold/c.Cfg.FrameInterval))
	r := calib.NewRunner(calib.Plan{Kind: kind, Hold: frames})
	out := make([]pixel.RGB, c.Layout.Count())
	for r.Step(c.Layout, out) {
		start := time.Now()
		if err := c.Eng.Drv.Write(out); err != nil && !errors.Is(err, led.ErrTimeout) {
			c.log.Warn().Err(err).Msg("calibration frame failed")
		}
		if err := sleep(ctx, Pace(c.Cfg.FrameInterval, time.Since(start))); err != nil {
			return err
		}
	}
	clear(out)
	return c.Eng.Drv.Write(out)
}

// applyControls applies a pending config reload and drains preview requests.
// It returns the calibration runner to use from now on.
func (c *Core) applyControls(runner *calib.Runner) *calib.Runner {
	select {
	case cfg := <-c.reload:
		c.applyTuning(cfg)
		c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: "CONFIG.RELOADED", Summary: "Tuning reloaded from config"})
	default:
	}
	var controls <-chan preview.Control
	if c.Preview != nil {
		controls = c.Preview.Controls()
	}
	for {
		select {
		case msg := <-controls:
			runner = c.applyControl(msg, runner)
		default:
			return runner
		}
	}
}

func (c *Core) applyControl(msg preview.Control, runner *calib.Runner) *calib.Runner {
	if msg.Luminosity != nil {
		corr := c.Eng.Correction
		corr.Luminosity = min(max(*msg.Luminosity, 0), 100)
		c.Eng.SetCorrection(corr)
	}
	if msg.FadingSpeed != nil {
		c.Eng.SetFading(*msg.FadingSpeed)
	}
	if msg.RunTest == "" {
		return runner
	}
	kind, err := calib.ParseKind(msg.RunTest)
	if err != nil {
		c.Diag.Push(diag.Diagnostic{
			Severity: diag.Warn, Code: "TEST.UNKNOWN", Summary: "Unknown test name",
			Evidence: map[string]any{"name": msg.RunTest},
		})
		return runner
	}
	c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: "TEST.RUNNING", Summary: "Running test", Detail: msg.RunTest})
	hold := max(1, int(500*time.Millisecond/c.Cfg.FrameInterval))
	return calib.NewRunner(calib.Plan{Kind: kind, Hold: hold})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
