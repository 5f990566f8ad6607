// Package observability provides logging, metrics, and tracing helpers
// for eventgraph processors.
//
// Logging goes through slog. Metrics and tracing use OpenTelemetry and
// are opt-in; NoopMetrics and NoopSpanManager stand in when disabled.
package observability

import (
	"log/slog"
)

// EnrichLogger adds run context to a logger.
// Returns a new logger with graph and run_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "intro", "run-123")
//	enriched.Info("camera ready") // includes graph, run_id
func EnrichLogger(logger *slog.Logger, graph, runID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("graph", graph),
		slog.String("run_id", runID),
	)
}

// LogBake logs a successful bake.
func LogBake(logger *slog.Logger, graph string, nodeCount, overrideCount int) {
	if logger == nil {
		return
	}
	logger.Debug("graph baked",
		slog.String("graph", graph),
		slog.Int("nodes", nodeCount),
		slog.Int("overrides", overrideCount),
	)
}

// LogRunStart logs the start of a graph run.
func LogRunStart(logger *slog.Logger, graph, runID string) {
	if logger == nil {
		return
	}
	logger.Info("graph run starting",
		slog.String("graph", graph),
		slog.String("run_id", runID),
	)
}

// LogRunComplete logs a run that reached its done node.
func LogRunComplete(logger *slog.Logger, runID string, durationMs float64, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("graph run completed",
		slog.String("run_id", runID),
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_invoked", nodeCount),
	)
}

// LogRunAborted logs an aborted run. This is the default abort sink.
func LogRunAborted(logger *slog.Logger, runID, reason, source string) {
	if logger == nil {
		return
	}
	logger.Error("graph run aborted",
		slog.String("run_id", runID),
		slog.String("reason", reason),
		slog.String("source", source),
	)
}

// LogDepthExceeded logs advancement at or past the depth limit.
// Execution continues.
func LogDepthExceeded(logger *slog.Logger, maxDepth, depth int) {
	if logger == nil {
		return
	}
	logger.Warn("call depth limit exceeded, graph may be cyclic",
		slog.Int("max_depth", maxDepth),
		slog.Int("depth", depth),
	)
}

// LogLockedRun logs a run rejected by the processor lock.
func LogLockedRun(logger *slog.Logger, graph, activeRunID string) {
	if logger == nil {
		return
	}
	logger.Warn("run rejected, processor is locked by a running run",
		slog.String("graph", graph),
		slog.String("active_run_id", activeRunID),
	)
}

// LogNodeInvoke logs a node invocation.
func LogNodeInvoke(logger *slog.Logger, nodeID, prevID string) {
	if logger == nil {
		return
	}
	logger.Debug("node invoked",
		slog.String("node_id", nodeID),
		slog.String("prev_id", prevID),
	)
}

// LogHistoryError logs a run history failure (non-fatal).
func LogHistoryError(logger *slog.Logger, runID, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("run history failed",
		slog.String("run_id", runID),
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}
