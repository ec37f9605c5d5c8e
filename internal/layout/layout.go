// Package layout unwraps the screen border into a ring of linear positions,
// partitions the ring into sampling regions and places LEDs on it.
//
// The ring starts at the top-left corner and runs clockwise: top left to
// right, right top to bottom, bottom right to left, left bottom to top.
package layout

import "math/rand/v2"

// Layout is the immutable geometry of one display border: its regions and the
// LEDs placed around it. Region colors are the only thing mutated after New.
type Layout struct {
	Screen  Screen
	Regions []Region
	LEDs    []LED
}

// New partitions screen into regions and places LEDs on the same ring.
func New(screen Screen, ropts RegionOpts, lopts LEDOpts, rng *rand.Rand) (*Layout, error) {
	regions, err := Partition(screen, ropts, rng)
	if err != nil {
		return nil, err
	}
	leds, err := Place(screen, regions, lopts)
	if err != nil {
		return nil, err
	}
	return &Layout{Screen: screen, Regions: regions, LEDs: leds}, nil
}

// Count is the number of LEDs.
func (l *Layout) Count() int { return len(l.LEDs) }

// SideStart is the index of the first LED on side in ring order. If side has
// no LEDs it is the index of the first LED after it, wrapping to 0.
func (l *Layout) SideStart(side Side) int {
	for i := range l.LEDs {
		if l.LEDs[i].Side >= side {
			return i
		}
	}
	return 0
}
