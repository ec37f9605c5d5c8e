package wire

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

func TestAppendFraming(t *testing.T) {
	e := &Encoder{}
	buf := e.Append(nil, []pixel.RGB{{R: 1, G: 2, B: 3}, {R: 4, G: 5, B: 6}})
	assert.Equal(t, []byte{255, 254, 1, 2, 3, 254, 4, 5, 6}, buf)
	assert.Len(t, buf, e.Size(2))
}

func TestAppendClampsChannels(t *testing.T) {
	e := &Encoder{}
	buf := e.Append(nil, []pixel.RGB{{R: 253, G: 255, B: 1000}, {R: -4, G: 252, B: 254}})
	assert.Equal(t, []byte{255, 254, 252, 252, 252, 254, 0, 252, 252}, buf)
	for i, b := range buf[1:] {
		if i%4 != 0 {
			assert.LessOrEqual(t, b, MaxChannel)
		}
	}
}

func TestAppendRotates(t *testing.T) {
	leds := []pixel.RGB{{R: 0}, {R: 1}, {R: 2}, {R: 3}}
	for _, tc := range []struct {
		start int
		want  []int
	}{
		{0, []int{0, 1, 2, 3}},
		{1, []int{1, 2, 3, 0}},
		{3, []int{3, 0, 1, 2}},
		{6, []int{2, 3, 0, 1}},
		{-1, []int{3, 0, 1, 2}},
	} {
		e := &Encoder{Start: tc.start}
		f, err := Decode(e.Append(nil, leds))
		require.NoError(t, err)
		got := make([]int, len(f.LEDs))
		for i, c := range f.LEDs {
			got[i] = c.R
		}
		assert.Equal(t, tc.want, got, "start %d", tc.start)
	}
}

func TestGroupMarker(t *testing.T) {
	e := &Encoder{Group: 2}
	buf := e.Append(nil, []pixel.RGB{pixel.White})
	assert.Equal(t, []byte{255, 253, 2, 254, 252, 252, 252}, buf)
	assert.Len(t, buf, e.Size(1))

	f, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Group)
	assert.Equal(t, []pixel.RGB{{R: 252, G: 252, B: 252}}, f.LEDs)

	e.Group = 400
	assert.Equal(t, MaxChannel, e.Append(nil, nil)[2])
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	leds := make([]pixel.RGB, 242)
	for i := range leds {
		leds[i] = pixel.RGB{R: rng.IntN(300), G: rng.IntN(300), B: rng.IntN(300)}
	}
	e := &Encoder{Start: 121}
	f, err := Decode(e.Append(nil, leds))
	require.NoError(t, err)
	require.Len(t, f.LEDs, len(leds))
	for j, got := range f.LEDs {
		assert.Equal(t, leds[(121+j)%len(leds)].Clamp(int(MaxChannel)), got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for name, buf := range map[string][]byte{
		"empty":         {},
		"no start":      {254, 1, 2, 3},
		"short":         {255, 254, 1, 2},
		"bad led start": {255, 1, 1, 2, 3},
		"control byte":  {255, 254, 1, 255, 3},
		"bad group":     {255, 253},
	} {
		_, err := Decode(buf)
		assert.ErrorIs(t, err, ErrMalformed, name)
	}
}

func TestSplit(t *testing.T) {
	stream := []byte{7, 255, 254, 1, 2, 3, 255, 255, 254, 4, 5, 6}
	frames := Split(stream)
	require.Len(t, frames, 3)
	assert.Equal(t, []byte{255, 254, 1, 2, 3}, frames[0])
	assert.Equal(t, []byte{255}, frames[1])
	assert.Equal(t, []byte{255, 254, 4, 5, 6}, frames[2])
}

func TestCornerOffset(t *testing.T) {
	l, err := layout.New(
		layout.Screen{Width: 2560, Height: 1440},
		layout.RegionOpts{Horizontal: 9, Vertical: 5, Depth: 300, Samples: 12, Random: true},
		layout.LEDOpts{Horizontal: 86, Vertical: 35, Group: 1},
		nil,
	)
	require.NoError(t, err)

	for c, want := range map[Corner]int{TopLeft: 0, TopRight: 86, BottomRight: 121, BottomLeft: 207} {
		got, err := c.Offset(l)
		require.NoError(t, err)
		assert.Equal(t, want, got, string(c))
		assert.True(t, c.Valid())
	}
	_, err = Corner("middle").Offset(l)
	assert.Error(t, err)
	assert.False(t, Corner("middle").Valid())
}
