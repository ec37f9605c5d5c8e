// Package config loads and validates the YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/borderlight/internal/wire"
)

// ErrInvalid wraps every configuration error that prevents startup.
var ErrInvalid = errors.New("invalid configuration")

type Screen struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Regions struct {
	Horizontal int  `yaml:"horizontal"` // per top/bottom side
	Vertical   int  `yaml:"vertical"`   // per left/right side
	Depth      int  `yaml:"depth"`      // px into the screen
	Radius     int  `yaml:"radius"`     // 0 = whole span
	Samples    int  `yaml:"samples"`
	Random     bool `yaml:"random"`
}

type LEDs struct {
	Horizontal int `yaml:"horizontal"`
	Vertical   int `yaml:"vertical"`
	Group      int `yaml:"group"`
}

type Serial struct {
	Port    string        `yaml:"port"` // e.g. /dev/ttyUSB0
	Baud    int           `yaml:"baud"`
	Timeout time.Duration `yaml:"timeout"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. SPI0.0, empty = first
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Output struct {
	Driver      string      `yaml:"driver"` // "serial" | "spi" | "sim"
	StartCorner wire.Corner `yaml:"start_corner"`
	GroupMarker bool        `yaml:"group_marker"`
	Dump        string      `yaml:"dump,omitempty"` // sim: append raw frames here
	Serial      Serial      `yaml:"serial"`
	SPI         SPI         `yaml:"spi,omitempty"`
}

type Correction struct {
	Red   int `yaml:"red"`
	Green int `yaml:"green"`
	Blue  int `yaml:"blue"`
}

type Fading struct {
	Enabled bool `yaml:"enabled"`
	Speed   int  `yaml:"speed"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
}

type Preview struct {
	Addr string `yaml:"addr"` // empty = disabled
}

type Config struct {
	Screen  Screen  `yaml:"screen"`
	Regions Regions `yaml:"regions"`
	LEDs    LEDs    `yaml:"leds"`
	Output  Output  `yaml:"output"`

	Luminosity int        `yaml:"luminosity"`
	Correction Correction `yaml:"correction"`
	Fading     Fading     `yaml:"fading"`

	FrameInterval time.Duration `yaml:"frame_interval"`
	Capture       string        `yaml:"capture"`
	Seed          uint64        `yaml:"seed"` // 0 = time based

	Log     Log     `yaml:"log"`
	Preview Preview `yaml:"preview"`
}

// Default matches a 2560x1440 display with 86 LEDs across and 35 down.
func Default() *Config {
	return &Config{
		Screen:  Screen{Width: 2560, Height: 1440},
		Regions: Regions{Horizontal: 9, Vertical: 5, Depth: 300, Samples: 12, Random: true},
		LEDs:    LEDs{Horizontal: 86, Vertical: 35, Group: 1},
		Output: Output{
			Driver:      "serial",
			StartCorner: wire.TopLeft,
			Serial:      Serial{Port: "/dev/ttyUSB0", Baud: 115200, Timeout: 50 * time.Millisecond},
		},
		Luminosity:    100,
		Correction:    Correction{Red: 100, Green: 100, Blue: 100},
		Fading:        Fading{Speed: 10},
		FrameInterval: 100 * time.Millisecond,
		Capture:       "screen",
		Log:           Log{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults; keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate reports every problem at once, each wrapped in ErrInvalid.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	w, h := c.Screen.Width, c.Screen.Height
	if w <= 0 || h <= 0 {
		bad("screen %dx%d", w, h)
	}

	r := c.Regions
	if r.Horizontal <= 0 || r.Vertical <= 0 {
		bad("regions %d/%d: every side needs at least one", r.Horizontal, r.Vertical)
	}
	if w > 0 && r.Horizontal > w {
		bad("%d regions on a %d px horizontal side", r.Horizontal, w)
	}
	if h > 0 && r.Vertical > h {
		bad("%d regions on a %d px vertical side", r.Vertical, h)
	}
	if r.Depth <= 0 || (w > 0 && h > 0 && r.Depth > min(w, h)/2) {
		bad("sampling depth %d", r.Depth)
	}
	if r.Radius < 0 {
		bad("sampling radius %d", r.Radius)
	}
	if r.Samples <= 0 {
		bad("samples %d", r.Samples)
	}

	l := c.LEDs
	if l.Group < 1 {
		bad("LED group %d", l.Group)
	} else {
		nh, nv := l.Horizontal/l.Group, l.Vertical/l.Group
		if l.Horizontal < 0 || l.Vertical < 0 || nh+nv == 0 {
			bad("LEDs %d/%d with group %d leave nothing to drive", l.Horizontal, l.Vertical, l.Group)
		}
		if w > 0 && nh > w {
			bad("%d LEDs on a %d px horizontal side", nh, w)
		}
		if h > 0 && nv > h {
			bad("%d LEDs on a %d px vertical side", nv, h)
		}
	}

	switch c.Output.Driver {
	case "serial":
		if c.Output.Serial.Port == "" {
			bad("serial driver without a port")
		}
		if c.Output.Serial.Baud <= 0 {
			bad("baud rate %d", c.Output.Serial.Baud)
		}
	case "spi", "sim":
	default:
		bad("unknown driver %q", c.Output.Driver)
	}
	if !c.Output.StartCorner.Valid() {
		bad("unknown start corner %q", string(c.Output.StartCorner))
	}

	for _, p := range []struct {
		name string
		v    int
	}{
		{"luminosity", c.Luminosity},
		{"correction.red", c.Correction.Red},
		{"correction.green", c.Correction.Green},
		{"correction.blue", c.Correction.Blue},
	} {
		if p.v < 0 || p.v > 100 {
			bad("%s %d outside 0..100", p.name, p.v)
		}
	}
	if c.Fading.Enabled && c.Fading.Speed < 1 {
		bad("fading speed %d", c.Fading.Speed)
	}
	if c.FrameInterval <= 0 {
		bad("frame interval %s", c.FrameInterval)
	}
	if c.Capture == "" {
		bad("no capture source")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		bad("log level %q", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		bad("log format %q", c.Log.Format)
	}
	return errors.Join(errs...)
}
