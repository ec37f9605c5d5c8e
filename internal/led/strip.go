package led

import (
	"errors"
	"io"

	"github.com/coreman2200/borderlight/internal/pixel"
	"github.com/coreman2200/borderlight/internal/wire"
)

// Strip encodes frames with the wire framing and sends them over a Link.
type Strip struct {
	Enc wire.Encoder

	link Link
	buf  []byte
}

func NewStrip(link Link, enc wire.Encoder) *Strip {
	return &Strip{Enc: enc, link: link}
}

// Write encodes leds and sends the frame. Link errors are returned as is;
// ErrTimeout means the frame was dropped.
func (s *Strip) Write(leds []pixel.RGB) error {
	s.buf = s.Enc.Append(s.buf[:0], leds)
	err := s.link.Write(s.buf)
	switch {
	case err == nil:
		sentFrames.Inc()
		sentBytes.Add(float64(len(s.buf)))
	case errors.Is(err, ErrTimeout):
		linkErrors.WithLabelValues("timeout").Inc()
	default:
		linkErrors.WithLabelValues("other").Inc()
	}
	return err
}

func (s *Strip) Close() error { return s.link.Close() }

// WriterLink is a Link that appends every frame to w, for dumps that
// `borderlight decode` reads back.
type WriterLink struct {
	w io.Writer
}

func NewWriterLink(w io.Writer) *WriterLink { return &WriterLink{w: w} }

func (l *WriterLink) Write(frame []byte) error {
	_, err := l.w.Write(frame)
	return err
}

func (l *WriterLink) Close() error {
	if c, ok := l.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
