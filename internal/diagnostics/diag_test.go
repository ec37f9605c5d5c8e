package diagnostics

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkFunc func(Diagnostic)

func (f sinkFunc) Push(d Diagnostic) { f(d) }

func TestLogForwardsAndLogs(t *testing.T) {
	var out bytes.Buffer
	l := NewLog(zerolog.New(&out))

	var got []Diagnostic
	l.Attach(sinkFunc(func(d Diagnostic) { got = append(got, d) }))

	l.Push(Diagnostic{
		Severity: Warn,
		Code:     "DRIVER.FALLBACK",
		Summary:  "serial unavailable; using sim",
		Evidence: map[string]any{"port": "/dev/ttyUSB0"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "DRIVER.FALLBACK", got[0].Code)
	assert.Contains(t, out.String(), `"level":"warn"`)
	assert.Contains(t, out.String(), `"port":"/dev/ttyUSB0"`)
	assert.Contains(t, out.String(), `"code":"DRIVER.FALLBACK"`)
}

func TestRecentKeepsTail(t *testing.T) {
	l := NewLog(zerolog.Nop())
	for i := 0; i < keep+5; i++ {
		l.Push(Diagnostic{Severity: Info, Code: "X", Evidence: map[string]any{"i": i}})
	}
	r := l.Recent()
	require.Len(t, r, keep)
	assert.Equal(t, 5, r[0].Evidence["i"])
	assert.Equal(t, keep+4, r[keep-1].Evidence["i"])
}
