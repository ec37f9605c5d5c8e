package render

import (
	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

// Mix writes each LED's color into dst as the weighted blend of its two
// regions. dst must hold one entry per LED.
func Mix(dst []pixel.RGB, leds []layout.LED, regions []layout.Region) {
	for i := range leds {
		l := &leds[i]
		dst[i] = pixel.Blend(regions[l.From].Color, regions[l.To].Color, l.Weight)
	}
}
