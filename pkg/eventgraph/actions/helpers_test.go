package actions_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/actions"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

const frame = 16 * time.Millisecond

// parseYAML parses a YAML definition or fails the test.
func parseYAML(t *testing.T, src string) config.Definition {
	t.Helper()
	def, err := config.ParseDefinition([]byte(src), config.FormatYAML, "test.yaml")
	require.NoError(t, err)
	return def
}

// newProcessor builds def with the default registry and bakes it on a
// fresh scheduler and runtime.
func newProcessor(t *testing.T, def config.Definition, b *actions.Bindings, opts ...eventgraph.ProcessorOption) (*eventgraph.Processor, *eventgraph.Scheduler) {
	t.Helper()
	g, err := actions.Build(def, nil, b)
	require.NoError(t, err)

	sched := eventgraph.NewScheduler()
	all := append([]eventgraph.ProcessorOption{
		eventgraph.WithRuntime(eventgraph.NewRuntime()),
		eventgraph.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	p := eventgraph.NewProcessor(g, sched, all...)
	require.NoError(t, p.Bake())
	return p, sched
}

// start runs p and fails the test on error.
func start(t *testing.T, p *eventgraph.Processor) {
	t.Helper()
	require.NoError(t, p.Run(context.Background()))
}

// steps advances sched n frames.
func steps(sched *eventgraph.Scheduler, n int) {
	for i := 0; i < n; i++ {
		sched.Step(frame)
	}
}

// levelRecorder is a Level that remembers every value it was set to.
type levelRecorder struct {
	values []float64
}

func (l *levelRecorder) SetLevel(v float64) {
	l.values = append(l.values, v)
}

func (l *levelRecorder) last() float64 {
	if len(l.values) == 0 {
		return -1
	}
	return l.values[len(l.values)-1]
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

// find returns the first record with msg.
func (c *logCapture) find(msg string) (slog.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.Message == msg {
			return r, true
		}
	}
	return slog.Record{}, false
}
