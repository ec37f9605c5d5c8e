package render

import "github.com/coreman2200/borderlight/internal/pixel"

// Correction scales every channel by a global luminosity and a per-channel
// factor, all in percent. The two divisions truncate separately.
type Correction struct {
	Luminosity int
	Red        int
	Green      int
	Blue       int
}

// Identity leaves colors untouched.
var Identity = Correction{Luminosity: 100, Red: 100, Green: 100, Blue: 100}

func (c Correction) Apply(v pixel.RGB) pixel.RGB {
	return pixel.RGB{
		R: c.Luminosity * c.Red * v.R / 100 / 100,
		G: c.Luminosity * c.Green * v.G / 100 / 100,
		B: c.Luminosity * c.Blue * v.B / 100 / 100,
	}
}

// ApplyAll corrects buf in place.
func (c Correction) ApplyAll(buf []pixel.RGB) {
	if c == Identity {
		return
	}
	for i := range buf {
		buf[i] = c.Apply(buf[i])
	}
}

// Fader limits how fast each LED's luminosity may change between frames.
// It keeps the luminosity last shown per LED; every LED starts dark.
type Fader struct {
	// Speed is the largest luminosity change per frame.
	Speed int

	current []int
}

func NewFader(n, speed int) *Fader {
	return &Fader{Speed: speed, current: make([]int, n)}
}

// Step moves each LED of buf at most Speed luminosity units from what it showed
// last frame toward its target, scaling the target color uniformly so its hue
// is kept. A black target is shown as black immediately. When fading down to a
// dim hue that cannot reach the stepped luminosity without a channel passing
// 255, the brightest color of that hue is shown instead.
func (f *Fader) Step(buf []pixel.RGB) {
	if len(f.current) != len(buf) {
		f.current = make([]int, len(buf))
	}
	for i, c := range buf {
		target := c.Luminosity()
		if target == 0 {
			f.current[i] = 0
			buf[i] = pixel.Black
			continue
		}

		cur := f.current[i]
		next := target
		switch {
		case target > cur+f.Speed:
			next = cur + f.Speed
		case target < cur-f.Speed:
			next = cur - f.Speed
		}

		// Scale on the channel sum: the shown luminosity is then next, or
		// next-1 when scaling down.
		sum := c.R + c.G + c.B
		switch {
		case next < target:
			buf[i] = pixel.RGB{R: c.R * 3 * next / sum, G: c.G * 3 * next / sum, B: c.B * 3 * next / sum}
		case next > target:
			next = min(next, 255*sum/(3*maxChannel(c)))
			if next > target {
				buf[i] = pixel.RGB{R: ceilDiv(c.R*3*next, sum), G: ceilDiv(c.G*3*next, sum), B: ceilDiv(c.B*3*next, sum)}
			}
		}
		f.current[i] = buf[i].Luminosity()
	}
}

func maxChannel(c pixel.RGB) int { return max(c.R, c.G, c.B) }

func ceilDiv(a, b int) int { return (a + b - 1) / b }

// Current is the luminosity LED i showed last frame.
func (f *Fader) Current(i int) int { return f.current[i] }

// Reset darkens every LED so the next frames fade in from black.
func (f *Fader) Reset() { clear(f.current) }
