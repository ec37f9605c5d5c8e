package led

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/coreman2200/borderlight/internal/pixel"
	"github.com/coreman2200/borderlight/internal/wire"
)

// fakePort records writes; when release is set, every write blocks on it.
type fakePort struct {
	release chan struct{}
	err     error

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writes = append(p.writes, append([]byte(nil), b...))
	return len(b), p.err
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePort) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.writes)
}

// recordLink is a Link that keeps every frame.
type recordLink struct {
	frames [][]byte
	err    error
}

func (l *recordLink) Write(frame []byte) error {
	l.frames = append(l.frames, append([]byte(nil), frame...))
	return l.err
}

func (l *recordLink) Close() error { return nil }

func TestSerialWrite(t *testing.T) {
	p := &fakePort{}
	s := NewSerial(p, time.Second)
	require.NoError(t, s.Write([]byte{255, 254, 1, 2, 3}))
	require.Equal(t, 1, p.count())
	assert.Equal(t, []byte{255, 254, 1, 2, 3}, p.writes[0])

	require.NoError(t, s.Close())
	assert.True(t, p.closed)
}

func TestSerialWriteError(t *testing.T) {
	errPort := errors.New("device gone")
	s := NewSerial(&fakePort{err: errPort}, 0)
	assert.ErrorIs(t, s.Write([]byte{255}), errPort)
}

func TestSerialTimeout(t *testing.T) {
	p := &fakePort{release: make(chan struct{})}
	s := NewSerial(p, 10*time.Millisecond)

	assert.ErrorIs(t, s.Write([]byte{255}), ErrTimeout)
	// The first write is still stuck.
	assert.ErrorIs(t, s.Write([]byte{255}), ErrTimeout)

	close(p.release)
	assert.Eventually(t, func() bool { return s.Write([]byte{255}) == nil }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, p.count(), 2)
}

func TestStripEncodes(t *testing.T) {
	link := &recordLink{}
	s := NewStrip(link, wire.Encoder{Start: 1})
	leds := []pixel.RGB{{R: 10}, {G: 253}, {B: 30}}

	require.NoError(t, s.Write(leds))
	require.NoError(t, s.Write(leds))
	require.Len(t, link.frames, 2)

	f, err := wire.Decode(link.frames[1])
	require.NoError(t, err)
	assert.Equal(t, []pixel.RGB{{G: 252}, {B: 30}, {R: 10}}, f.LEDs)
}

func TestStripPassesTimeout(t *testing.T) {
	s := NewStrip(&recordLink{err: ErrTimeout}, wire.Encoder{})
	assert.ErrorIs(t, s.Write([]pixel.RGB{pixel.White}), ErrTimeout)
}

func TestWriterLinkDump(t *testing.T) {
	var buf bytes.Buffer
	s := NewStrip(NewWriterLink(&buf), wire.Encoder{})
	require.NoError(t, s.Write([]pixel.RGB{{R: 1, G: 2, B: 3}}))
	require.NoError(t, s.Write([]pixel.RGB{{R: 4, G: 5, B: 6}}))
	require.NoError(t, s.Close())

	frames := wire.Split(buf.Bytes())
	require.Len(t, frames, 2)
	f, err := wire.Decode(frames[1])
	require.NoError(t, err)
	assert.Equal(t, []pixel.RGB{{R: 4, G: 5, B: 6}}, f.LEDs)
}

func TestSPI(t *testing.T) {
	buf := bytes.Buffer{}
	s, err := NewSPI(spitest.NewRecordRaw(&buf), 3, 2500*physic.KiloHertz)
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", s.String())

	require.NoError(t, s.Write([]pixel.RGB{{R: 255}, {G: 255}, {B: 255}}))
	assert.NotZero(t, buf.Len())
	require.NoError(t, s.Close())

	_, err = NewSPI(spitest.NewRecordRaw(&buf), 0, 0)
	assert.Error(t, err)
}

func TestSim(t *testing.T) {
	var out bytes.Buffer
	d := NewSim(zerolog.New(&out).Level(zerolog.DebugLevel))
	require.NoError(t, d.Write([]pixel.RGB{{R: 10}, {R: 20}}))
	require.NoError(t, d.Write([]pixel.RGB{{B: 1}}))

	assert.Equal(t, 2, d.Count)
	assert.Equal(t, []pixel.RGB{{B: 1}}, d.Last)
	assert.Contains(t, out.String(), `"avg":"(15, 0, 0)"`)
}

func TestSimQuietAboveDebug(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GetGlobalLevel())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var out bytes.Buffer
	d := NewSim(zerolog.New(&out))
	require.NoError(t, d.Write([]pixel.RGB{{R: 10}}))

	assert.Equal(t, 1, d.Count)
	assert.Empty(t, out.String())
}
