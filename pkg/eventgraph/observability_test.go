package eventgraph

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// fakeMetrics counts recorder calls.
type fakeMetrics struct {
	nodes         []string
	runs          []string
	depthWarnings int
	lockedRuns    int
}

func (m *fakeMetrics) RecordNodeInvocation(_ context.Context, _, nodeID string) {
	m.nodes = append(m.nodes, nodeID)
}

func (m *fakeMetrics) RecordRun(_ context.Context, _, outcome string, _ time.Duration) {
	m.runs = append(m.runs, outcome)
}

func (m *fakeMetrics) RecordDepthWarning(context.Context, string, int) { m.depthWarnings++ }
func (m *fakeMetrics) RecordLockedRun(context.Context, string)         { m.lockedRuns++ }

// recorderSpans starts spans on a private SDK tracer provider.
type recorderSpans struct {
	tracer trace.Tracer
}

func (s recorderSpans) StartRunSpan(ctx context.Context, graph, runID string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "eventgraph.run", trace.WithAttributes(
		attribute.String("graph.name", graph),
		attribute.String("run.id", runID),
	))
}

func (s recorderSpans) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s recorderSpans) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

func TestProcessor_Metrics(t *testing.T) {
	m := &fakeMetrics{}
	action := &recordingAction{name: "wait", ticks: 2}
	p, sched, _ := newTestProcessor(t, waitingGraph("metered", action), WithMetricsRecorder(m), WithLock(true))

	require.NoError(t, p.Run(context.Background()))
	assert.ErrorIs(t, p.Run(context.Background()), ErrLocked)
	stepUntilIdle(sched, frame, 10)

	assert.Equal(t, []string{"start", "wait", "done"}, m.nodes)
	assert.Equal(t, []string{"completed"}, m.runs)
	assert.Equal(t, 1, m.lockedRuns)

	require.NoError(t, p.Run(context.Background()))
	p.Abort("stop", nil)
	assert.Equal(t, []string{"completed", "aborted"}, m.runs)
}

func TestProcessor_DepthWarningMetric(t *testing.T) {
	m := &fakeMetrics{}
	graph := NewGraph("deep").
		AddNode("start", &StartNode{}).
		AddNode("a", &FuncNode{}).
		AddNode("b", &FuncNode{}).
		AddNode("done", &DoneNode{}).
		AddEdge("start", "a").
		AddEdge("a", "b").
		AddEdge("b", "done")

	p, _, _ := newTestProcessor(t, graph, WithMetricsRecorder(m), WithMaxCallDepth(2))
	require.NoError(t, p.Run(context.Background()))

	// Advancement from a (depth 2) reaches the limit and b (depth 3) is past it.
	assert.Equal(t, 2, m.depthWarnings)
	assert.Equal(t, 3, p.PeakDepth())
}

func TestProcessor_Tracing(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	spans := recorderSpans{tracer: tp.Tracer("test")}

	t.Run("completed run", func(t *testing.T) {
		exporter.Reset()
		action := &recordingAction{name: "wait"}
		p, _, _ := newTestProcessor(t, waitingGraph("traced", action), WithSpanManager(spans))
		require.NoError(t, p.Run(context.Background()))

		got := exporter.GetSpans()
		require.Len(t, got, 1)
		assert.Equal(t, "eventgraph.run", got[0].Name)
		assert.Contains(t, got[0].Attributes, attribute.String("run.id", p.RunID()))
		require.Len(t, got[0].Events, 3)
		assert.Equal(t, "eventgraph.node.invoke", got[0].Events[0].Name)
	})

	t.Run("aborted run", func(t *testing.T) {
		exporter.Reset()
		action := &recordingAction{name: "wait", ticks: 5}
		p, _, _ := newTestProcessor(t, waitingGraph("traced", action), WithSpanManager(spans))
		require.NoError(t, p.Run(context.Background()))
		p.Abort("stop", nil)

		got := exporter.GetSpans()
		require.Len(t, got, 1)
		assert.Equal(t, codes.Error, got[0].Status.Code)
		assert.Contains(t, got[0].Status.Description, "stop")
	})
}

func TestWithTracingAndMetricsOptions(t *testing.T) {
	cfg := defaultProcessorConfig()
	WithTracing(true)(&cfg)
	assert.True(t, cfg.tracing)
	WithTracing(false)(&cfg)
	assert.False(t, cfg.tracing)

	WithMetrics(false)(&cfg)
	assert.NotNil(t, cfg.metrics)

	WithMaxCallDepth(0)(&cfg)
	assert.Equal(t, DefaultMaxCallDepth, cfg.maxCallDepth)
	WithRuntime(nil)(&cfg)
	assert.Same(t, DefaultRuntime(), cfg.runtime)
	WithLogger(nil)(&cfg)
	assert.NotNil(t, cfg.logger)
}
