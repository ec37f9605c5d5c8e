// Package diagnostics carries structured, operator-facing findings such as a
// driver fallback or a capture size mismatch.
package diagnostics

import (
	"sync"

	"github.com/rs/zerolog"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// Sink receives diagnostics.
type Sink interface {
	Push(Diagnostic)
}

// Log writes every diagnostic to a logger at the matching level and forwards
// it to the attached sinks.
type Log struct {
	log zerolog.Logger

	mu    sync.Mutex
	sinks []Sink
	last  []Diagnostic
}

// keep is the number of recent diagnostics Recent returns.
const keep = 32

func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

// Attach adds a sink for subsequent diagnostics.
func (l *Log) Attach(s Sink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks = append(l.sinks, s)
}

func (l *Log) Push(d Diagnostic) {
	ev := l.log.Info()
	switch d.Severity {
	case Warn:
		ev = l.log.Warn()
	case Err:
		ev = l.log.Error()
	}
	ev = ev.Str("code", d.Code)
	if d.Detail != "" {
		ev = ev.Str("detail", d.Detail)
	}
	if len(d.Evidence) > 0 {
		ev = ev.Fields(d.Evidence)
	}
	ev.Msg(d.Summary)

	l.mu.Lock()
	l.last = append(l.last, d)
	if len(l.last) > keep {
		l.last = l.last[len(l.last)-keep:]
	}
	sinks := append([]Sink(nil), l.sinks...)
	l.mu.Unlock()
	for _, s := range sinks {
		s.Push(d)
	}
}

// Recent returns the latest diagnostics, oldest first.
func (l *Log) Recent() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Diagnostic(nil), l.last...)
}
