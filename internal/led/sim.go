package led

import (
	"github.com/rs/zerolog"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// Sim logs a compact summary of each frame (first LED & avg), useful when no
// strip is attached.
type Sim struct {
	Count int
	Last  []pixel.RGB

	log zerolog.Logger
}

func NewSim(log zerolog.Logger) *Sim { return &Sim{log: log} }

func (d *Sim) Write(buf []pixel.RGB) error {
	d.Count++
	d.Last = append(d.Last[:0], buf...)
	if len(buf) == 0 {
		return nil
	}
	// Debug returns a disabled event under both the logger and global level.
	e := d.log.Debug()
	if !e.Enabled() {
		return nil
	}
	var avg pixel.RGB
	for _, c := range buf {
		avg.R += c.R
		avg.G += c.G
		avg.B += c.B
	}
	n := len(buf)
	avg = pixel.RGB{R: avg.R / n, G: avg.G / n, B: avg.B / n}
	e.Int("frame", d.Count).
		Stringer("avg", avg).
		Stringer("first", buf[0]).
		Msg("sim frame")
	return nil
}

func (d *Sim) Close() error { return nil }
