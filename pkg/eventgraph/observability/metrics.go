package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records eventgraph metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordNodeInvocation records one node invocation.
	RecordNodeInvocation(ctx context.Context, graph, nodeID string)

	// RecordRun records a finished run. Outcome is "completed" or "aborted".
	RecordRun(ctx context.Context, graph, outcome string, duration time.Duration)

	// RecordDepthWarning records advancement past the depth limit.
	RecordDepthWarning(ctx context.Context, graph string, depth int)

	// RecordLockedRun records a run rejected by the processor lock.
	RecordLockedRun(ctx context.Context, graph string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	nodeInvocations metric.Int64Counter
	runs            metric.Int64Counter
	runLatency      metric.Float64Histogram
	depthWarnings   metric.Int64Counter
	exceededDepth   metric.Int64Histogram
	lockedRuns      metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventgraph")

	nodeInvocations, err := meter.Int64Counter("eventgraph.node.invocations",
		metric.WithDescription("Number of node invocations"),
	)
	if err != nil {
		return nil, err
	}

	runs, err := meter.Int64Counter("eventgraph.graph.runs",
		metric.WithDescription("Number of finished graph runs"),
	)
	if err != nil {
		return nil, err
	}

	runLatency, err := meter.Float64Histogram("eventgraph.graph.latency_ms",
		metric.WithDescription("Graph run wall time in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	depthWarnings, err := meter.Int64Counter("eventgraph.depth.warnings",
		metric.WithDescription("Number of advancements past the call depth limit"),
	)
	if err != nil {
		return nil, err
	}

	exceededDepth, err := meter.Int64Histogram("eventgraph.depth.exceeded",
		metric.WithDescription("Call depth observed when the limit was exceeded"),
	)
	if err != nil {
		return nil, err
	}

	lockedRuns, err := meter.Int64Counter("eventgraph.graph.locked_runs",
		metric.WithDescription("Number of runs rejected by the processor lock"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		nodeInvocations: nodeInvocations,
		runs:            runs,
		runLatency:      runLatency,
		depthWarnings:   depthWarnings,
		exceededDepth:   exceededDepth,
		lockedRuns:      lockedRuns,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordNodeInvocation(ctx context.Context, graph, nodeID string) {
	m.nodeInvocations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("node_id", nodeID),
	))
}

func (m *otelMetrics) RecordRun(ctx context.Context, graph, outcome string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("graph", graph),
		attribute.String("outcome", outcome),
	)
	m.runs.Add(ctx, 1, attrs)
	m.runLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

func (m *otelMetrics) RecordDepthWarning(ctx context.Context, graph string, depth int) {
	attrs := metric.WithAttributes(attribute.String("graph", graph))
	m.depthWarnings.Add(ctx, 1, attrs)
	m.exceededDepth.Record(ctx, int64(depth), attrs)
}

func (m *otelMetrics) RecordLockedRun(ctx context.Context, graph string) {
	m.lockedRuns.Add(ctx, 1, metric.WithAttributes(attribute.String("graph", graph)))
}
