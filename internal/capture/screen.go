package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// Screen captures a live display. Each Grab copies the whole display into a
// frame buffer that is then queried by coordinate.
type Screen struct {
	index  int
	bounds image.Rectangle
}

// OpenScreen opens active display n.
func OpenScreen(n int) (*Screen, error) {
	count := screenshot.NumActiveDisplays()
	if count == 0 {
		return nil, fmt.Errorf("%w: no active displays found", ErrUnavailable)
	}
	if n < 0 || n >= count {
		return nil, fmt.Errorf("%w: display %d of %d", ErrUnavailable, n, count)
	}
	return &Screen{index: n, bounds: screenshot.GetDisplayBounds(n)}, nil
}

func (s *Screen) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.bounds.Dx(), s.bounds.Dy())
}

func (s *Screen) Grab() (Frame, error) {
	img, err := screenshot.CaptureRect(s.bounds)
	if err != nil {
		return nil, fmt.Errorf("capturing display %d: %w", s.index, err)
	}
	return imageFrame{img}, nil
}

func (s *Screen) Close() error { return nil }
