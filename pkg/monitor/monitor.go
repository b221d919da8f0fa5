// Package monitor threads cooperative cancellation and progress reporting
// through long-running loops.
//
// A [Monitor] wraps a context.Context and an optional [Reporter]. Bounded
// loops obtain a [Loop] and call [Loop.Tick] once per iteration; every few
// iterations the loop polls the context and, when it is done, returns
// [ErrCanceled]. Callers unwind on that error and discard partial results.
//
//	mon := monitor.New(ctx, monitor.LogReporter(logger))
//	loop := mon.Loop("merge links", len(links))
//	for _, l := range links {
//	    if err := loop.Tick(); err != nil {
//	        return nil, err
//	    }
//	    // ...
//	}
//	loop.Done()
//
// A nil *Monitor is valid and never cancels, which keeps test call sites short.
package monitor

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrCanceled is returned when the monitored context is done. The returned
// error also wraps the context's own error, so errors.Is(err, context.Canceled)
// holds for user interrupts.
var ErrCanceled = errors.New("operation canceled")

// DefaultStride is how many ticks pass between context polls.
const DefaultStride = 64

// reportSteps is the number of progress reports emitted per loop.
const reportSteps = 20

// Reporter receives fractional progress per phase.
type Reporter interface {
	Report(phase string, fraction float64)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(phase string, fraction float64)

// Report calls f(phase, fraction).
func (f ReporterFunc) Report(phase string, fraction float64) { f(phase, fraction) }

// LogReporter returns a Reporter that writes debug-level progress lines.
func LogReporter(l *log.Logger) Reporter {
	if l == nil {
		return nil
	}
	return ReporterFunc(func(phase string, fraction float64) {
		l.Debug("progress", "phase", phase, "pct", int(fraction*100))
	})
}

// Monitor couples a context with an optional progress reporter.
type Monitor struct {
	ctx      context.Context
	reporter Reporter
	stride   int
}

type ctxKey int

const reporterKey ctxKey = 0

// WithReporter returns a context carrying r. Monitors built with
// [FromContext] report progress to it.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey, r)
}

// FromContext builds a monitor for ctx using the reporter attached with
// [WithReporter], if any.
func FromContext(ctx context.Context) *Monitor {
	r, _ := ctx.Value(reporterKey).(Reporter)
	return New(ctx, r)
}

// New creates a monitor. A nil reporter disables progress output.
func New(ctx context.Context, r Reporter) *Monitor {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Monitor{ctx: ctx, reporter: r, stride: DefaultStride}
}

// Context returns the monitored context, or context.Background for a nil monitor.
func (m *Monitor) Context() context.Context {
	if m == nil {
		return context.Background()
	}
	return m.ctx
}

// Check polls the context immediately.
func (m *Monitor) Check() error {
	if m == nil {
		return nil
	}
	if err := m.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	return nil
}

// Loop starts tracking a loop of total iterations under the given phase name.
func (m *Monitor) Loop(phase string, total int) *Loop {
	return &Loop{mon: m, phase: phase, total: total}
}

// Loop tracks one bounded loop.
type Loop struct {
	mon      *Monitor
	phase    string
	total    int
	count    int
	reported int
}

// Tick records one iteration. It returns ErrCanceled once the context is done.
func (l *Loop) Tick() error {
	l.count++
	m := l.mon
	if m == nil {
		return nil
	}
	if l.count%m.stride == 0 {
		if err := m.Check(); err != nil {
			return err
		}
	}
	if m.reporter != nil && l.total > 0 {
		step := l.count * reportSteps / l.total
		if step > l.reported {
			l.reported = step
			m.reporter.Report(l.phase, float64(l.count)/float64(l.total))
		}
	}
	return nil
}

// Done marks the loop as finished and reports full completion.
func (l *Loop) Done() {
	if l.mon == nil || l.mon.reporter == nil {
		return
	}
	if l.reported < reportSteps {
		l.reported = reportSteps
		l.mon.reporter.Report(l.phase, 1.0)
	}
}

// IsCanceled reports whether err came from a canceled monitor or context.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
