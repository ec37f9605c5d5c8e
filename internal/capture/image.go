package capture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/coreman2200/borderlight/internal/pixel"
)

// Image is a Display over a fixed image. Every Grab returns the same frame.
type Image struct {
	img image.Image
}

// NewImage wraps img.
func NewImage(img image.Image) *Image { return &Image{img: img} }

// OpenImage decodes a PNG or JPEG file.
func OpenImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrUnavailable, path, err)
	}
	return NewImage(img), nil
}

func (i *Image) Bounds() image.Rectangle {
	b := i.img.Bounds()
	return image.Rect(0, 0, b.Dx(), b.Dy())
}

func (i *Image) Grab() (Frame, error) { return imageFrame{i.img}, nil }

func (i *Image) Close() error { return nil }

type imageFrame struct {
	img image.Image
}

func (f imageFrame) Pixel(x, y int) pixel.RGB {
	b := f.img.Bounds()
	p := image.Pt(b.Min.X+x, b.Min.Y+y)
	if !p.In(b) {
		return pixel.Black
	}
	if rgba, ok := f.img.(*image.RGBA); ok {
		c := rgba.RGBAAt(p.X, p.Y)
		return pixel.RGB{R: int(c.R), G: int(c.G), B: int(c.B)}
	}
	r, g, bl, _ := f.img.At(p.X, p.Y).RGBA()
	return pixel.RGB{R: int(r >> 8), G: int(g >> 8), B: int(bl >> 8)}
}
