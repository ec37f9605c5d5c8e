package wire

import (
	"fmt"

	"github.com/coreman2200/borderlight/internal/layout"
)

// Corner names the LED the physical strip starts at.
type Corner string

const (
	TopLeft     Corner = "top_left"
	TopRight    Corner = "top_right"
	BottomRight Corner = "bottom_right"
	BottomLeft  Corner = "bottom_left"
)

// Corners lists the valid corners in ring order.
var Corners = []Corner{TopLeft, TopRight, BottomRight, BottomLeft}

// side is the side whose first LED in ring order sits at c.
func (c Corner) side() (layout.Side, error) {
	switch c {
	case TopLeft, "":
		return layout.Top, nil
	case TopRight:
		return layout.Right, nil
	case BottomRight:
		return layout.Bottom, nil
	case BottomLeft:
		return layout.Left, nil
	}
	return 0, fmt.Errorf("unknown corner %q", string(c))
}

// Valid reports whether c names a known corner.
func (c Corner) Valid() bool {
	_, err := c.side()
	return err == nil
}

// Offset is the index of the LED at corner c in l.
func (c Corner) Offset(l *layout.Layout) (int, error) {
	side, err := c.side()
	if err != nil {
		return 0, err
	}
	return l.SideStart(side), nil
}
