package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/coreman2200/borderlight/internal/wire"
)

// AddFlags registers the command line overrides on fs. Their defaults only
// document the built-in values; a flag takes effect only when set.
func AddFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("capture", d.Capture, "capture source: screen[:N] | image:PATH | solid:#rrggbb | gradient")
	fs.String("driver", d.Output.Driver, "driver: serial | spi | sim")
	fs.String("port", d.Output.Serial.Port, "serial port")
	fs.Int("baud", d.Output.Serial.Baud, "serial baud rate")
	fs.String("start-corner", string(d.Output.StartCorner), "corner of the first LED on the strip")
	fs.String("dump", "", "sim driver: append raw frames to this file")
	fs.Int("luminosity", d.Luminosity, "global luminosity in percent")
	fs.Int("fading", 0, "fading speed in luminosity units per frame; 0 disables")
	fs.Duration("interval", d.FrameInterval, "minimum time between frames")
	fs.String("preview", "", "preview HTTP listen address, e.g. :8080")
	fs.String("log-level", d.Log.Level, "log level: debug | info | warn | error")
	fs.String("log-format", d.Log.Format, "log format: console | json")
	fs.Uint64("seed", 0, "sample point seed; 0 = time based")
}

// ApplyFlags copies every flag set on the command line into c. Flags not
// registered on fs are ignored.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = c.applyFlag(fs, f.Name)
	})
	return err
}

func (c *Config) applyFlag(fs *pflag.FlagSet, name string) error {
	var err error
	switch name {
	case "capture":
		c.Capture, err = fs.GetString(name)
	case "driver":
		c.Output.Driver, err = fs.GetString(name)
	case "port":
		c.Output.Serial.Port, err = fs.GetString(name)
	case "baud":
		c.Output.Serial.Baud, err = fs.GetInt(name)
	case "start-corner":
		var s string
		s, err = fs.GetString(name)
		c.Output.StartCorner = wire.Corner(s)
	case "dump":
		c.Output.Dump, err = fs.GetString(name)
	case "luminosity":
		c.Luminosity, err = fs.GetInt(name)
	case "fading":
		var v int
		v, err = fs.GetInt(name)
		c.Fading = Fading{Enabled: v > 0, Speed: v}
	case "interval":
		var v time.Duration
		v, err = fs.GetDuration(name)
		c.FrameInterval = v
	case "preview":
		c.Preview.Addr, err = fs.GetString(name)
	case "log-level":
		c.Log.Level, err = fs.GetString(name)
	case "log-format":
		c.Log.Format, err = fs.GetString(name)
	case "seed":
		c.Seed, err = fs.GetUint64(name)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("flag --%s: %w", name, err)
	}
	return nil
}
