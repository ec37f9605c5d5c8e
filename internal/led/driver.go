// Package led moves finished frames to the physical strip: framed over a
// serial link, NRZ encoded on SPI, or logged by a simulation driver.
package led

import (
	"errors"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// ErrTimeout is returned by a Link whose write did not complete in time. The
// frame is lost; the next one supersedes it.
var ErrTimeout = errors.New("write timed out")

// Link abstracts a byte-oriented transport.
type Link interface {
	// Write sends one encoded frame.
	Write(frame []byte) error
	// Close releases resources.
	Close() error
}

// Driver abstracts an LED output sink.
type Driver interface {
	Write([]pixel.RGB) error
	Close() error
}
