package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/borderlight/internal/layout"
	"github.com/coreman2200/borderlight/internal/pixel"
)

func testLayout(t *testing.T) *layout.Layout {
	t.Helper()
	l, err := layout.New(
		layout.Screen{Width: 160, Height: 90},
		layout.RegionOpts{Horizontal: 4, Vertical: 2, Depth: 20, Samples: 4, Random: true},
		layout.LEDOpts{Horizontal: 8, Vertical: 4, Group: 1},
		nil,
	)
	require.NoError(t, err)
	return l
}

func lit(out []pixel.RGB) []int {
	var idx []int
	for i, c := range out {
		if c != pixel.Black {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestIndexSweep(t *testing.T) {
	l := testLayout(t)
	out := make([]pixel.RGB, l.Count())
	r := NewRunner(Plan{Kind: IndexSweep, Hold: 2})

	for i := 0; i < l.Count(); i++ {
		for f := 0; f < 2; f++ {
			require.True(t, r.Step(l, out))
			assert.Equal(t, []int{i}, lit(out))
		}
	}
	assert.False(t, r.Step(l, out))
}

func TestRGB(t *testing.T) {
	l := testLayout(t)
	out := make([]pixel.RGB, l.Count())
	r := NewRunner(Plan{Kind: RGBTest})

	for _, want := range []pixel.RGB{{R: 255}, {G: 255}, {B: 255}} {
		require.True(t, r.Step(l, out))
		for _, c := range out {
			assert.Equal(t, want, c)
		}
	}
	assert.False(t, r.Step(l, out))
}

func TestCorners(t *testing.T) {
	l := testLayout(t)
	out := make([]pixel.RGB, l.Count())
	r := NewRunner(Plan{Kind: Corners})

	require.True(t, r.Step(l, out))
	assert.Equal(t, SideColors[layout.Top], out[0])
	assert.Equal(t, SideColors[layout.Right], out[8])
	assert.Equal(t, SideColors[layout.Bottom], out[12])
	assert.Equal(t, SideColors[layout.Left], out[20])
	assert.Equal(t, pixel.RGB{R: 127}, out[1])
	assert.Equal(t, pixel.RGB{R: 63}, out[2])
	assert.Equal(t, pixel.Black, out[3])
	assert.False(t, r.Step(l, out))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("corners")
	require.NoError(t, err)
	assert.Equal(t, Corners, k)

	_, err = ParseKind("plane_z")
	assert.Error(t, err)
	assert.False(t, NewRunner(Plan{}).Step(testLayout(t), make([]pixel.RGB, 24)))
}
