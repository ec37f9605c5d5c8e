package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// DefaultSPIFreq suits WS2812 strips.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// SPI drives a WS2812 strip directly from an SPI port, skipping the serial
// framing. Start rotates the frame like wire.Encoder does.
type SPI struct {
	Start int

	port spi.PortCloser
	dev  *nrzled.Dev
	buf  []byte
}

// OpenSPI initializes the host drivers and opens the named SPI port; an empty
// name picks the first one available.
func OpenSPI(name string, count int, freq physic.Frequency) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	s, err := NewSPI(p, count, freq)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPI drives count LEDs on an open port.
func NewSPI(p spi.PortCloser, count int, freq physic.Frequency) (*SPI, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &SPI{port: p, dev: d, buf: make([]byte, 3*count)}, nil
}

func (s *SPI) String() string { return s.dev.String() }

func (s *SPI) Write(leds []pixel.RGB) error {
	n := len(leds)
	if n == 0 {
		return nil
	}
	if len(s.buf) < 3*n {
		s.buf = make([]byte, 3*n)
	}
	start := ((s.Start % n) + n) % n
	for j := 0; j < n; j++ {
		r, g, b := leds[(start+j)%n].Bytes(255)
		s.buf[3*j], s.buf[3*j+1], s.buf[3*j+2] = r, g, b
	}
	if _, err := s.dev.Write(s.buf[:3*n]); err != nil {
		linkErrors.WithLabelValues("other").Inc()
		return err
	}
	sentFrames.Inc()
	sentBytes.Add(float64(3 * n))
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	herr := s.dev.Halt()
	if err := s.port.Close(); err != nil {
		return err
	}
	return herr
}
