package layout

import (
	"fmt"
	"sort"
)

// LEDOpts configures LED placement.
type LEDOpts struct {
	// Horizontal is the LED count on each of top and bottom, Vertical on each
	// of right and left.
	Horizontal int
	Vertical   int
	// Group divides both counts; 1 places every LED.
	Group int
}

// PerSide is the effective LED count on side after grouping.
func (o LEDOpts) PerSide(side Side) int {
	g := max(o.Group, 1)
	if side.Horizontal() {
		return o.Horizontal / g
	}
	return o.Vertical / g
}

// LED is an addressable output at a fixed ring position. The owning region
// and the blend between two adjacent regions are resolved once by Place.
type LED struct {
	Side     Side
	Position int
	Region   int

	// From and To are the blended region indices; Weight is the 0..100 share
	// of To.
	From   int
	To     int
	Weight int
}

func (l *LED) String() string {
	return fmt.Sprintf("%s@%d region %d blend %d->%d t=%d", l.Side, l.Position, l.Region, l.From, l.To, l.Weight)
}

// Place spaces LEDs evenly along each side and resolves each one against
// regions. LEDs are returned in ring order, which walks the physical strip in
// one rotational direction.
func Place(screen Screen, regions []Region, opts LEDOpts) ([]LED, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("%w: no regions", ErrGeometry)
	}
	if opts.Group < 1 {
		return nil, fmt.Errorf("%w: LED group %d", ErrGeometry, opts.Group)
	}

	var leds []LED
	for _, side := range Sides {
		n := opts.PerSide(side)
		l := screen.SideLength(side)
		if n < 0 || n > l {
			return nil, fmt.Errorf("%w: %d LEDs on %s with %d pixels", ErrGeometry, n, side, l)
		}
		if n == 0 {
			continue
		}
		spacing := l / n
		for k := 0; k < n; k++ {
			i := k
			if side.reversed() {
				i = n - 1 - k
			}
			p := screen.ToLinear(side, spacing*i)
			idx, err := Resolve(regions, p)
			if err != nil {
				return nil, err
			}
			from, to, t := Blend(regions, idx, p)
			leds = append(leds, LED{
				Side:     side,
				Position: p,
				Region:   idx,
				From:     from,
				To:       to,
				Weight:   t,
			})
		}
	}
	if len(leds) == 0 {
		return nil, fmt.Errorf("%w: no LEDs placed", ErrGeometry)
	}
	return leds, nil
}

// Resolve returns the index of the region whose span contains ring position p.
// regions must be ordered by ring position, as returned by Partition.
func Resolve(regions []Region, p int) (int, error) {
	i := sort.Search(len(regions), func(i int) bool { return regions[i].End >= p })
	if i == len(regions) || !regions[i].Contains(p) {
		return 0, fmt.Errorf("%w: position %d is outside every region", ErrGeometry, p)
	}
	return i, nil
}

// Blend picks the two regions an LED at ring position p inside regions[idx]
// mixes, and the 0..100 weight of the second. Before the region center the
// LED blends from the previous region toward its own; from the center on it
// blends from its own toward the next. Neighbors wrap around the ring.
func Blend(regions []Region, idx, p int) (from, to, t int) {
	n := len(regions)
	r := &regions[idx]
	s, e, c := r.Start, r.End, r.Center()

	if p < c {
		return Prev(idx, n), idx, 100 * (p - s) / (c - s)
	}
	if e == c {
		return idx, Next(idx, n), 0
	}
	return idx, Next(idx, n), 100 * (p - c) / (e - c)
}
