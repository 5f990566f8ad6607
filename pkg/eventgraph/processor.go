package eventgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/history"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// State is the lifecycle state of a processor.
type State int

const (
	// StateIdle means the processor has never run.
	StateIdle State = iota
	// StateRunning means a run is between Run and completion or abort.
	StateRunning
	// StateCompleted means the last run reached the done node.
	StateCompleted
	// StateAborted means the last run was aborted.
	StateAborted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AbortSink records aborts. It is called exactly once per aborted run.
type AbortSink interface {
	RecordAbort(reason string, source any)
}

// AbortSinkFunc adapts a function to AbortSink.
type AbortSinkFunc func(reason string, source any)

// RecordAbort implements AbortSink.
func (f AbortSinkFunc) RecordAbort(reason string, source any) {
	f(reason, source)
}

var errSuperseded = errors.New("run superseded by a new run")

// Processor bakes a graph and runs it on a delegator.
//
// One processor owns one graph. Run starts a traversal from the start
// node; every node hands its completion to the processor, which invokes
// the node's successors depth first. The run ends when the done node is
// reached or when something aborts it.
//
// Processor is NOT thread-safe. Run, Abort, and the scheduler that ticks
// its nodes must all be used from one goroutine.
type Processor struct {
	graph     *Graph
	baked     *BakedGraph
	delegator Delegator
	cfg       processorConfig
	block     *Block

	state     State
	locked    bool
	run       *runContext
	depth     int
	peakDepth int
	invoked   int
	abortErr  *AbortError
	startedAt time.Time
	span      trace.Span
}

// NewProcessor creates a processor for graph that schedules deferred work
// on delegator. Call Bake before Run.
//
// Panics if graph or delegator is nil.
func NewProcessor(graph *Graph, delegator Delegator, opts ...ProcessorOption) *Processor {
	if graph == nil {
		panic("eventgraph: graph cannot be nil")
	}
	if delegator == nil {
		panic("eventgraph: delegator cannot be nil")
	}

	cfg := defaultProcessorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Processor{
		graph:     graph,
		delegator: delegator,
		cfg:       cfg,
	}
	p.block = NewBlock(func() {
		if err := p.Run(context.Background()); err != nil {
			p.cfg.logger.Warn("graph block run rejected",
				slog.String("graph", graph.Name()),
				slog.String("error", err.Error()),
			)
		}
	})
	return p
}

// Graph returns the authored graph.
func (p *Processor) Graph() *Graph { return p.graph }

// Baked returns the current baked graph, or nil before the first bake.
func (p *Processor) Baked() *BakedGraph { return p.baked }

// Delegator returns the delegator the processor schedules on.
func (p *Processor) Delegator() Delegator { return p.delegator }

// Block returns the graph block. Invoking it runs the processor; its
// start and done callbacks fire when a run starts and ends (completed or
// aborted).
func (p *Processor) Block() *Block { return p.block }

// UseLock reports whether concurrent runs are rejected.
func (p *Processor) UseLock() bool { return p.cfg.useLock }

// Locked reports whether a run holds the lock.
func (p *Processor) Locked() bool { return p.locked }

// State returns the processor state.
func (p *Processor) State() State { return p.state }

// Depth returns the current advancement depth.
func (p *Processor) Depth() int { return p.depth }

// PeakDepth returns the deepest advancement of the last run.
func (p *Processor) PeakDepth() int { return p.peakDepth }

// NodesInvoked returns how many nodes the last run invoked.
func (p *Processor) NodesInvoked() int { return p.invoked }

// RunID returns the ID of the last run, or "" before the first run.
func (p *Processor) RunID() string {
	if p.run == nil {
		return ""
	}
	return p.run.runID
}

// AbortReason returns the reason the last run was aborted, or "".
func (p *Processor) AbortReason() string {
	if p.abortErr == nil {
		return ""
	}
	return p.abortErr.Reason
}

// AbortErr returns the abort of the last run, or nil if it was not aborted.
func (p *Processor) AbortErr() *AbortError {
	return p.abortErr
}

// Bake bakes the graph with its default parameter values.
func (p *Processor) Bake() error {
	return p.BakeWithOverrides(nil)
}

// BakeWithOverrides bakes the graph with overrides applied to the
// parameter snapshot. The overrides are restored before nodes are baked,
// so the authored defaults are never changed.
//
// Re-baking replaces the previous baked graph. A run already in progress
// keeps the nodes it started with.
func (p *Processor) BakeWithOverrides(overrides OverrideSet) error {
	var list []ParameterOverride
	if overrides != nil {
		list = overrides.Parameters()
	}

	for _, o := range list {
		o.Overwrite()
	}
	snapshot := p.graph.Parameters().Snapshot()
	for i := len(list) - 1; i >= 0; i-- {
		list[i].Restore()
	}

	baked, err := p.graph.bake(BakeEnv{
		Params:    snapshot,
		Delegator: p.delegator,
		Logger:    p.cfg.logger,
	})
	if err != nil {
		return fmt.Errorf("bake graph %s: %w", p.graph.Name(), err)
	}

	p.baked = baked
	observability.LogBake(p.cfg.logger, p.graph.Name(), len(baked.order), len(list))
	return nil
}

// Run starts a run of the baked graph.
//
// With the lock enabled, Run returns ErrLocked while a run is in
// progress and changes nothing. Without it, a new run starts and the
// earlier one is halted: its waiting nodes get OnComplete on their next
// step and never continue the graph.
//
// Run returns once the synchronous part of the traversal is done. Nodes
// that wait continue on the delegator.
func (p *Processor) Run(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	if p.baked == nil {
		return ErrNotBaked
	}

	name := p.graph.Name()
	if p.cfg.useLock && p.locked {
		observability.LogLockedRun(p.cfg.logger, name, p.RunID())
		p.cfg.metrics.RecordLockedRun(ctx, name)
		return ErrLocked
	}

	alreadyRunning := p.state == StateRunning
	if alreadyRunning && p.run != nil {
		p.run.superseded = true
	}

	p.locked = true
	p.depth = 0
	p.peakDepth = 0
	p.invoked = 0
	p.abortErr = nil

	runID := uuid.New().String()
	logger := observability.EnrichLogger(p.cfg.logger, name, runID)

	var runCtx context.Context = ctx
	if p.cfg.tracing {
		if alreadyRunning {
			p.cfg.spans.EndSpanWithError(p.span, errSuperseded)
		}
		runCtx, p.span = p.cfg.spans.StartRunSpan(ctx, name, runID)
	}

	rc := &runContext{
		Context: runCtx,
		proc:    p,
		runID:   runID,
		logger:  logger,
	}
	p.run = rc
	p.state = StateRunning
	p.startedAt = time.Now()

	if !alreadyRunning {
		p.cfg.runtime.Push(p)
	}
	observability.LogRunStart(logger, name, runID)

	p.baked.done.PlugOnProcessDone(p.onDoneReached)
	p.block.OnStart()

	p.invoke(rc, p.baked.start, nil)
	return nil
}

// Abort aborts the current run. Only the first abort of a run takes
// effect: it records the reason with the abort sink, releases the lock,
// pops the processor from the runtime, and fires the graph block's done
// callback. Returns false if nothing was running or the run was already
// aborted.
func (p *Processor) Abort(reason string, source any) bool {
	if p.run == nil || p.state != StateRunning {
		return false
	}
	return p.abortRun(p.run, reason, source)
}

func (p *Processor) abortRun(c *runContext, reason string, source any) bool {
	if c == nil || c.aborted || c.finished {
		return false
	}
	if reason == "" {
		reason = "aborted"
	}
	c.aborted = true

	if p.cfg.sink != nil {
		p.cfg.sink.RecordAbort(reason, source)
	} else {
		observability.LogRunAborted(c.logger, c.runID, reason, describeSource(source))
	}

	if c != p.run {
		// Superseded by a newer run: halting it is all that is left to do.
		return true
	}

	p.abortErr = &AbortError{RunID: c.runID, Reason: reason, Source: describeSource(source)}
	p.locked = false
	p.state = StateAborted
	p.finish(c)
	return true
}

// onDoneReached is plugged into the done node before every run.
func (p *Processor) onDoneReached(ctx Context) {
	c, ok := ctx.(*runContext)
	if !ok || c.proc != p {
		return
	}
	p.onProcessAllDone(c)
}

// onProcessAllDone completes a run normally.
func (p *Processor) onProcessAllDone(c *runContext) {
	if c.aborted || c.finished || c != p.run || p.state != StateRunning {
		return
	}
	p.locked = false
	p.state = StateCompleted
	p.finish(c)
}

// finish releases a run that completed or aborted.
func (p *Processor) finish(c *runContext) {
	c.finished = true
	name := p.graph.Name()
	ended := time.Now()
	duration := ended.Sub(p.startedAt)

	p.cfg.runtime.Pop(p)

	var runErr error
	if p.abortErr != nil {
		runErr = p.abortErr
	}
	p.cfg.metrics.RecordRun(c, name, p.state.String(), duration)
	if p.cfg.tracing {
		p.cfg.spans.EndSpanWithError(p.span, runErr)
		p.span = nil
	}
	if runErr == nil {
		observability.LogRunComplete(c.logger, c.runID, float64(duration.Milliseconds()), p.invoked)
	}

	p.saveHistory(c, ended)
	p.block.OnDone()
}

func (p *Processor) saveHistory(c *runContext, ended time.Time) {
	if p.cfg.history == nil {
		return
	}
	rec := history.Record{
		RunID:        c.runID,
		Graph:        p.graph.Name(),
		State:        p.state.String(),
		StartedAt:    p.startedAt.UTC(),
		EndedAt:      ended.UTC(),
		NodesInvoked: p.invoked,
		PeakDepth:    p.peakDepth,
	}
	if p.abortErr != nil {
		rec.Reason = p.abortErr.Reason
		rec.Source = p.abortErr.Source
	}
	if err := p.cfg.history.Save(rec); err != nil {
		observability.LogHistoryError(c.logger, c.runID, "save", err)
	}
}

// advance invokes the successors of node. Depth is tracked so runaway or
// cyclic graphs show up in the logs; reaching the limit only warns.
func (p *Processor) advance(c *runContext, node BakedNode) {
	p.depth++
	if p.depth > p.peakDepth {
		p.peakDepth = p.depth
	}
	if p.depth >= p.cfg.maxCallDepth {
		observability.LogDepthExceeded(c.logger, p.cfg.maxCallDepth, p.depth)
		p.cfg.metrics.RecordDepthWarning(c, p.graph.Name(), p.depth)
	}

	for _, next := range node.Next() {
		if c.aborted || c.superseded {
			break
		}
		p.invoke(c, next, node)
	}

	// A newer run started from inside this loop has reset the counters.
	if c == p.run {
		p.depth--
	}
}

func (p *Processor) invoke(c *runContext, node, prev BakedNode) {
	p.invoked++
	prevID := ""
	if prev != nil {
		prevID = prev.ID()
	}
	observability.LogNodeInvoke(c.logger, node.ID(), prevID)
	p.cfg.metrics.RecordNodeInvocation(c, p.graph.Name(), node.ID())
	if p.cfg.tracing {
		p.cfg.spans.AddSpanEvent(c, "eventgraph.node.invoke",
			attribute.String("node.id", node.ID()),
			attribute.String("node.prev", prevID),
		)
	}
	node.Invoke(c, c.runNextNodes, prev)
}
