package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/borderlight/internal/pixel"
	"github.com/coreman2200/borderlight/internal/wire"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLayoutCommand(t *testing.T) {
	out, err := execute(t, "layout", "--start-corner", "bottom_left")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1+28+242)
	assert.Equal(t, "screen 2560x1440 ring 8000", lines[0])
	assert.Contains(t, lines[1+4], "[1136, 1419]")
	// LED 207 is the first on the left side and goes out first.
	assert.True(t, strings.HasPrefix(lines[1+28+207], "led  207 wire    0 "), lines[1+28+207])
}

func TestDecodeCommand(t *testing.T) {
	e := &wire.Encoder{Group: 2}
	b := e.Append(nil, []pixel.RGB{{R: 1, G: 2, B: 3}})
	b = append(b, 255, 1)
	path := filepath.Join(t.TempDir(), "frames.bin")
	require.NoError(t, os.WriteFile(path, b, 0644))

	out, err := execute(t, "decode", path)
	assert.ErrorContains(t, err, "1 malformed frames")
	assert.Contains(t, out, "frame 0: 1 leds group 2\n")
	assert.Contains(t, out, "(1, 2, 3)")
	assert.Contains(t, out, "frame 1: malformed frame")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := execute(t, "layout", "--write-default", path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "frame_interval: 100ms")
}

func TestRunWatchIsOptIn(t *testing.T) {
	f := runCmd.Flags().Lookup("watch")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}
