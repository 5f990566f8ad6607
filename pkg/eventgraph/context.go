package eventgraph

import (
	"context"
	"log/slog"
)

// Context is what a node sees while it runs.
// It extends context.Context with the owning run's services.
//
// Each run gets its own Context, so a node can always reach the run that
// invoked it, even when several graphs are nested.
type Context interface {
	context.Context

	// Logger returns the processor logger enriched with graph and run_id.
	Logger() *slog.Logger

	// Delegator returns the host scheduler.
	Delegator() Delegator

	// Runtime returns the runtime the processor is registered with.
	Runtime() *Runtime

	// Processor returns the processor running this graph.
	Processor() *Processor

	// RunID returns the unique identifier of this run.
	RunID() string

	// Halted reports whether this run was aborted, superseded by a newer
	// run of the same processor, or its context.Context ended. Waiting
	// nodes stop when it turns true.
	Halted() bool

	// Abort aborts this run. Only the first abort of a run takes effect;
	// the return value reports whether this call was it.
	Abort(reason string, source any) bool
}

// runContext is the per-run implementation of Context.
type runContext struct {
	context.Context

	proc     *Processor
	runID    string
	logger   *slog.Logger
	aborted  bool
	finished bool

	// superseded is set when the processor starts another run while
	// this one is still going.
	superseded bool
}

func (c *runContext) Logger() *slog.Logger { return c.logger }
func (c *runContext) Delegator() Delegator { return c.proc.delegator }
func (c *runContext) Runtime() *Runtime { return c.proc.cfg.runtime }
func (c *runContext) Processor() *Processor { return c.proc }
func (c *runContext) RunID() string { return c.runID }

func (c *runContext) Halted() bool {
	return c.aborted || c.superseded || c.Err() != nil
}

func (c *runContext) Abort(reason string, source any) bool {
	return c.proc.abortRun(c, reason, source)
}

// runNextNodes is the continuation handed to every node of the run: it
// invokes the successors of node, depth first, in authored order.
func (c *runContext) runNextNodes(node BakedNode) {
	if c.aborted || c.superseded {
		return
	}
	if stopped(c, node) {
		return
	}
	c.proc.advance(c, node)
}

// stopped reports whether the run of ctx is halted. A run whose
// context.Context ended is aborted first, so it releases its lock.
func stopped(ctx Context, source BakedNode) bool {
	if err := ctx.Err(); err != nil {
		ctx.Abort("context ended: "+err.Error(), source)
	}
	return ctx.Halted()
}
