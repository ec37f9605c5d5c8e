package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/borderlight/internal/calib"
	"github.com/coreman2200/borderlight/internal/capture"
	"github.com/coreman2200/borderlight/internal/config"
	"github.com/coreman2200/borderlight/internal/led"
	"github.com/coreman2200/borderlight/internal/pixel"
	"github.com/coreman2200/borderlight/internal/preview"
	"github.com/coreman2200/borderlight/internal/render"
	"github.com/coreman2200/borderlight/internal/wire"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := config.Default()
	c.Screen = config.Screen{Width: 160, Height: 90}
	c.Regions = config.Regions{Horizontal: 4, Vertical: 2, Depth: 20, Samples: 4, Random: true}
	c.LEDs = config.LEDs{Horizontal: 8, Vertical: 4, Group: 1}
	c.Capture = "solid:#ff0000"
	c.Output.Driver = "sim"
	c.FrameInterval = 2 * time.Millisecond
	c.Seed = 1
	return c
}

func TestPace(t *testing.T) {
	assert.Equal(t, 60*time.Millisecond, Pace(100*time.Millisecond, 40*time.Millisecond))
	assert.Equal(t, time.Duration(0), Pace(100*time.Millisecond, 100*time.Millisecond))
	assert.Equal(t, time.Duration(0), Pace(100*time.Millisecond, 250*time.Millisecond))
}

func TestRunWritesFrames(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.StartCorner = wire.TopRight
	cfg.Output.Dump = filepath.Join(t.TempDir(), "frames.bin")

	c, err := InitCore(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "sim", c.DriverName)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	st := c.Run(ctx)
	require.NoError(t, c.Close())

	assert.NotZero(t, st.Frames)
	assert.Zero(t, st.Failures)

	b, err := os.ReadFile(cfg.Output.Dump)
	require.NoError(t, err)
	frames := wire.Split(b)
	require.Len(t, frames, int(st.Frames))
	for _, fb := range frames {
		f, err := wire.Decode(fb)
		require.NoError(t, err)
		require.Len(t, f.LEDs, 24)
		for _, col := range f.LEDs {
			assert.Equal(t, pixel.RGB{R: 252}, col)
		}
	}
}

func TestInitCoreFallsBackToSim(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Driver = "serial"
	cfg.Output.Serial.Port = filepath.Join(t.TempDir(), "no-such-tty")

	c, err := InitCore(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "sim", c.DriverName)
	var codes []string
	for _, d := range c.Diag.Recent() {
		codes = append(codes, d.Code)
	}
	assert.Contains(t, codes, "DRIVER.FALLBACK")
}

func TestInitCoreErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Capture = "bogus"
	_, err := InitCore(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, capture.ErrUnavailable)

	cfg = testConfig(t)
	cfg.Regions.Samples = 0
	_, err = InitCore(cfg, zerolog.Nop())
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunSurvivesTransportErrors(t *testing.T) {
	c, err := InitCore(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	n := 0
	c.Eng.Drv = render.DriverFunc(func([]pixel.RGB) error {
		n++
		if n%2 == 0 {
			return led.ErrTimeout
		}
		return errors.New("port unplugged")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	st := c.Run(ctx)

	assert.GreaterOrEqual(t, st.Frames, uint64(2))
	assert.Equal(t, st.Frames, st.Dropped+st.Failures)
	assert.NotZero(t, st.Dropped)
	assert.NotZero(t, st.Failures)
}

func TestCalibrate(t *testing.T) {
	c, err := InitCore(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()

	var frames [][]pixel.RGB
	c.Eng.Drv = render.DriverFunc(func(buf []pixel.RGB) error {
		frames = append(frames, append([]pixel.RGB(nil), buf...))
		return nil
	})
	require.NoError(t, c.Calibrate(context.Background(), calib.RGBTest, 0))

	// Three channels, then blank.
	require.Len(t, frames, 4)
	assert.Equal(t, pixel.RGB{R: 255}, frames[0][5])
	assert.Equal(t, pixel.RGB{G: 255}, frames[1][5])
	assert.Equal(t, pixel.RGB{B: 255}, frames[2][5])
	assert.Equal(t, make([]pixel.RGB, 24), frames[3])
}

func TestApplyControl(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview.Addr = "127.0.0.1:0"
	c, err := InitCore(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()
	require.NotNil(t, c.Preview)

	lum, speed := 40, 5
	r := c.applyControl(preview.Control{Luminosity: &lum, FadingSpeed: &speed, RunTest: "index_sweep"}, nil)
	require.NotNil(t, r)
	assert.Equal(t, calib.IndexSweep, r.Kind())
	assert.Equal(t, 40, c.Eng.Correction.Luminosity)
	require.NotNil(t, c.Eng.Fader)
	assert.Equal(t, 5, c.Eng.Fader.Speed)

	same := c.applyControl(preview.Control{RunTest: "plane_z"}, r)
	assert.Same(t, r, same)
	last := c.Diag.Recent()
	assert.Equal(t, "TEST.UNKNOWN", last[len(last)-1].Code)
}

func TestReloadAppliesLatestTuning(t *testing.T) {
	c, err := InitCore(testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.Eng.Fader)

	first := testConfig(t)
	first.Luminosity = 10
	second := testConfig(t)
	second.Luminosity = 60
	second.Correction.Blue = 80
	second.Fading = config.Fading{Enabled: true, Speed: 7}
	c.Reload(first)
	c.Reload(second)

	assert.Nil(t, c.applyControls(nil))
	assert.Equal(t, render.Correction{Luminosity: 60, Red: 100, Green: 100, Blue: 80}, c.Eng.Correction)
	require.NotNil(t, c.Eng.Fader)
	assert.Equal(t, 7, c.Eng.Fader.Speed)
	last := c.Diag.Recent()
	assert.Equal(t, "CONFIG.RELOADED", last[len(last)-1].Code)

	c.Reload(testConfig(t))
	c.applyControls(nil)
	assert.Nil(t, c.Eng.Fader)
}
