package render

import (
	"errors"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// Driver receives every finished frame, one color per LED in ring order.
type Driver interface {
	Write([]pixel.RGB) error
}

// DriverFunc adapts a function to Driver.
type DriverFunc func([]pixel.RGB) error

func (f DriverFunc) Write(buf []pixel.RGB) error { return f(buf) }

// Tee writes each frame to every driver in order and joins their errors.
func Tee(drivers ...Driver) Driver {
	return DriverFunc(func(buf []pixel.RGB) error {
		var errs []error
		for _, d := range drivers {
			if d == nil {
				continue
			}
			if err := d.Write(buf); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
