// Package app wires configuration into a running border light: geometry,
// capture source, output drivers and the frame loop.
package app

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/borderlight/internal/capture"
	"github.com/coreman2200/borderlight/internal/config"
	diag "github.com/coreman2200/borderlight/internal/diagnostics"
	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/led"
	"github.com/coreman2200/borderlight/internal/preview"
	"github.com/coreman2200/borderlight/internal/render"
	"github.com/coreman2200/borderlight/internal/wire"
)

type Core struct {
	Cfg    *config.Config
	Layout *layout.Layout
	Src    capture.Display
	Eng    *render.Engine
	Diag   *diag.Log
	Reg    *prometheus.Registry

	// Preview is nil unless preview.addr is set.
	Preview *preview.Server

	// DriverName is the driver actually in use after any fallback.
	DriverName string
	outputs    []led.Driver
	reload     chan *config.Config
	log        zerolog.Logger
}

// BuildLayout derives the border geometry from cfg.
func BuildLayout(cfg *config.Config) (*layout.Layout, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return layout.New(
		layout.Screen{Width: cfg.Screen.Width, Height: cfg.Screen.Height},
		layout.RegionOpts{
			Horizontal: cfg.Regions.Horizontal,
			Vertical:   cfg.Regions.Vertical,
			Depth:      cfg.Regions.Depth,
			Radius:     cfg.Regions.Radius,
			Samples:    cfg.Regions.Samples,
			Random:     cfg.Regions.Random,
		},
		layout.LEDOpts{
			Horizontal: cfg.LEDs.Horizontal,
			Vertical:   cfg.LEDs.Vertical,
			Group:      cfg.LEDs.Group,
		},
		rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	)
}

// InitCore validates cfg and builds everything the frame loop needs. Bad
// geometry and an unavailable capture source are fatal; an output driver that
// fails to open falls back to the simulation driver.
func InitCore(cfg *config.Config, log zerolog.Logger) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l, err := BuildLayout(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}

	c := &Core{
		Cfg:    cfg,
		Layout: l,
		Diag:   diag.NewLog(log.With().Str("component", "diag").Logger()),
		Reg:    prometheus.NewRegistry(),
		reload: make(chan *config.Config, 1),
		log:    log,
	}
	c.Reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	render.RegisterMonitoring(c.Reg)
	led.RegisterMonitoring(c.Reg)

	size := image.Pt(cfg.Screen.Width, cfg.Screen.Height)
	c.Src, err = capture.Open(cfg.Capture, size)
	if err != nil {
		return nil, err
	}
	if b := c.Src.Bounds(); b.Size() != size {
		c.Diag.Push(diag.Diagnostic{
			Severity:       diag.Warn,
			Code:           "CAPTURE.SIZE",
			Summary:        "capture size differs from configured screen",
			LikelyCauses:   []string{"screen.width/height do not match the display", "display scaling"},
			SuggestedFixes: []string{fmt.Sprintf("set screen to %dx%d", b.Dx(), b.Dy())},
			Evidence:       map[string]any{"capture": b.Size().String(), "screen": size.String()},
		})
	}

	enc, err := Encoder(cfg, l)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	c.outputs, c.DriverName = c.openOutputs(enc)

	drivers := make([]render.Driver, 0, len(c.outputs)+1)
	for _, d := range c.outputs {
		drivers = append(drivers, d)
	}
	if cfg.Preview.Addr != "" {
		c.Preview = preview.New(l, c.DriverName, c.Reg, log.With().Str("component", "preview").Logger())
		c.Diag.Attach(c.Preview)
		drivers = append(drivers, c.Preview)
	}

	sampler := render.NewSampler(cfg.Regions.Samples, cfg.Regions.Random, nil)
	c.Eng, err = render.NewEngine(l, c.Src, render.Tee(drivers...), sampler)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.applyTuning(cfg)

	log.Info().
		Int("regions", len(l.Regions)).
		Int("leds", l.Count()).
		Str("capture", cfg.Capture).
		Str("driver", c.DriverName).
		Msg("core ready")
	return c, nil
}

// Encoder is the wire encoder for cfg's start corner and group marker.
func Encoder(cfg *config.Config, l *layout.Layout) (wire.Encoder, error) {
	start, err := cfg.Output.StartCorner.Offset(l)
	if err != nil {
		return wire.Encoder{}, err
	}
	e := wire.Encoder{Start: start}
	if cfg.Output.GroupMarker {
		e.Group = cfg.LEDs.Group
	}
	return e, nil
}

func (c *Core) openOutputs(enc wire.Encoder) ([]led.Driver, string) {
	cfg := c.Cfg
	log := c.log.With().Str("component", "led").Logger()

	var drv led.Driver
	switch cfg.Output.Driver {
	case "serial":
		s := cfg.Output.Serial
		link, err := led.OpenSerial(s.Port, s.Baud, s.Timeout)
		if err == nil {
			drv = led.NewStrip(link, enc)
		} else {
			c.fallback("serial", err, map[string]any{"port": s.Port, "baud": s.Baud})
		}
	case "spi":
		s := cfg.Output.SPI
		d, err := led.OpenSPI(s.Dev, c.Layout.Count(), physic.Frequency(s.SpeedHz)*physic.Hertz)
		if err == nil {
			d.Start = enc.Start
			drv = d
		} else {
			c.fallback("spi", err, map[string]any{"dev": s.Dev, "speed_hz": s.SpeedHz})
		}
	}
	if drv != nil {
		return []led.Driver{drv}, cfg.Output.Driver
	}

	outputs := []led.Driver{led.NewSim(log)}
	if cfg.Output.Dump != "" {
		f, err := os.OpenFile(cfg.Output.Dump, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			c.Diag.Push(diag.Diagnostic{
				Severity: diag.Warn,
				Code:     "DUMP.OPEN",
				Summary:  "cannot open frame dump",
				Detail:   err.Error(),
			})
		} else {
			outputs = append(outputs, led.NewStrip(led.NewWriterLink(f), enc))
		}
	}
	return outputs, "sim"
}

func (c *Core) fallback(driver string, err error, evidence map[string]any) {
	evidence["error"] = err.Error()
	c.Diag.Push(diag.Diagnostic{
		Severity:       diag.Warn,
		Code:           "DRIVER.FALLBACK",
		Summary:        driver + " init failed; falling back to SIM",
		LikelyCauses:   []string{"device not connected", "missing permissions on the device node"},
		SuggestedFixes: []string{"check output." + driver + " settings", "run with --driver=sim"},
		Evidence:       evidence,
	})
}

// Close releases the capture source and every output.
func (c *Core) Close() error {
	var errs []error
	for _, d := range c.outputs {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Src != nil {
		if err := c.Src.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload queues the live-tunable parts of cfg (luminosity, channel
// correction, fading) for the frame loop. Only the latest pending config is
// kept. Geometry and output settings need a restart.
func (c *Core) Reload(cfg *config.Config) {
	for {
		select {
		case c.reload <- cfg:
			return
		default:
		}
		select {
		case <-c.reload:
		default:
		}
	}
}

func (c *Core) applyTuning(cfg *config.Config) {
	c.Eng.SetCorrection(render.Correction{
		Luminosity: cfg.Luminosity,
		Red:        cfg.Correction.Red,
		Green:      cfg.Correction.Green,
		Blue:       cfg.Correction.Blue,
	})
	speed := 0
	if cfg.Fading.Enabled {
		speed = cfg.Fading.Speed
	}
	c.Eng.SetFading(speed)
}
