package eventgraph

import (
	"log/slog"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph/history"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/observability"
)

// DefaultMaxCallDepth is the advancement depth at which a processor
// starts warning about runaway or cyclic graphs.
const DefaultMaxCallDepth = 1000

// processorConfig holds processor configuration.
type processorConfig struct {
	useLock      bool
	runtime      *Runtime
	logger       *slog.Logger
	maxCallDepth int
	sink         AbortSink
	metrics      observability.MetricsRecorder
	spans        observability.SpanManager
	tracing      bool
	history      history.Store
}

// defaultProcessorConfig returns the default processor configuration.
func defaultProcessorConfig() processorConfig {
	return processorConfig{
		runtime:      DefaultRuntime(),
		logger:       slog.Default(),
		maxCallDepth: DefaultMaxCallDepth,
		metrics:      observability.NoopMetrics{},
		spans:        observability.NoopSpanManager{},
	}
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*processorConfig)

// WithLock rejects Run while a run is in progress.
// Default: false (a new run may start over a running one)
func WithLock(useLock bool) ProcessorOption {
	return func(c *processorConfig) {
		c.useLock = useLock
	}
}

// WithRuntime sets the runtime the processor registers with while running.
// Default: DefaultRuntime()
func WithRuntime(rt *Runtime) ProcessorOption {
	return func(c *processorConfig) {
		if rt != nil {
			c.runtime = rt
		}
	}
}

// WithLogger sets the processor logger.
// The logger is enriched with graph and run_id during a run.
func WithLogger(logger *slog.Logger) ProcessorOption {
	return func(c *processorConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxCallDepth sets the depth at which advancement starts logging a
// warning: every advance at or above it warns. The guard is advisory.
// Default: 1000
func WithMaxCallDepth(n int) ProcessorOption {
	return func(c *processorConfig) {
		if n > 0 {
			c.maxCallDepth = n
		}
	}
}

// WithAbortSink sets the collaborator that records aborts.
// Default: the processor logger.
func WithAbortSink(sink AbortSink) ProcessorOption {
	return func(c *processorConfig) {
		c.sink = sink
	}
}

// WithMetrics records run and node metrics with OpenTelemetry.
// Uses the global meter provider.
func WithMetrics(enabled bool) ProcessorOption {
	return func(c *processorConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) ProcessorOption {
	return func(c *processorConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing records a span per run, with node invocations as span
// events. Uses the global tracer provider.
func WithTracing(enabled bool) ProcessorOption {
	return func(c *processorConfig) {
		c.tracing = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithHistory saves a record of every finished run to store.
// Save failures are logged and do not affect the run.
func WithHistory(store history.Store) ProcessorOption {
	return func(c *processorConfig) {
		c.history = store
	}
}

// WithSpanManager sets a specific span manager and enables tracing.
func WithSpanManager(sm observability.SpanManager) ProcessorOption {
	return func(c *processorConfig) {
		if sm != nil {
			c.spans = sm
			c.tracing = true
		}
	}
}
