package eventgraph

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingAction finishes after ticks updates and appends its lifecycle
// calls to events as "name:call".
type recordingAction struct {
	name    string
	ticks   int
	updates int
	events  *[]string
	onStart func(ctx Context)
}

func (a *recordingAction) Init() {
	a.updates = 0
	a.record("init")
}

func (a *recordingAction) OnStart(ctx Context) {
	a.record("start")
	if a.onStart != nil {
		a.onStart(ctx)
	}
}

func (a *recordingAction) OnUpdate(time.Duration) {
	a.updates++
	a.record("update")
}

func (a *recordingAction) OnComplete() {
	a.record("complete")
}

func (a *recordingAction) IsFinished() bool {
	return a.updates >= a.ticks
}

func (a *recordingAction) record(call string) {
	if a.events != nil {
		*a.events = append(*a.events, a.name+":"+call)
	}
}

// actionOf returns a factory that always produces a.
func actionOf(a Action) ActionFactory {
	return func(Values) (Action, error) { return a, nil }
}

// trackNode returns a FuncNode that appends id to tracker.
func trackNode(id string, tracker *[]string) *FuncNode {
	return &FuncNode{Name: id, Fn: func(Context) { *tracker = append(*tracker, id) }}
}

// quietLogger discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// logCapture is a slog handler that keeps records in memory.
type logCapture struct {
	mu      sync.Mutex
	records []slog.Record
}

func newLogCapture() (*slog.Logger, *logCapture) {
	c := &logCapture{}
	return slog.New(c), c
}

func (c *logCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *logCapture) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r.Clone())
	return nil
}

func (c *logCapture) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *logCapture) WithGroup(string) slog.Handler      { return c }

// count returns how many records have msg.
func (c *logCapture) count(msg string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, r := range c.records {
		if r.Message == msg {
			n++
		}
	}
	return n
}

// abortRecorder is an AbortSink that remembers every call.
type abortRecorder struct {
	reasons []string
	sources []any
}

func (r *abortRecorder) RecordAbort(reason string, source any) {
	r.reasons = append(r.reasons, reason)
	r.sources = append(r.sources, source)
}

// newTestProcessor bakes graph on a fresh scheduler and runtime.
func newTestProcessor(t *testing.T, graph *Graph, opts ...ProcessorOption) (*Processor, *Scheduler, *Runtime) {
	t.Helper()
	sched := NewScheduler()
	rt := NewRuntime()
	all := append([]ProcessorOption{WithRuntime(rt), WithLogger(quietLogger())}, opts...)
	p := NewProcessor(graph, sched, all...)
	require.NoError(t, p.Bake())
	return p, sched, rt
}

// stepUntilIdle steps sched until nothing is scheduled, at most max times.
func stepUntilIdle(sched *Scheduler, dt time.Duration, max int) {
	for i := 0; i < max && !sched.Idle(); i++ {
		sched.Step(dt)
	}
}

const frame = 16 * time.Millisecond
