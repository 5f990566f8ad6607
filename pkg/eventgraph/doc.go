/*
Package eventgraph sequences scripted game events (cutscenes, dialog,
camera effects) as node graphs.

# Overview

An authored Graph is baked into an immutable chain of runtime nodes. A
Processor runs the chain: each node, when it completes, hands control to
the processor, which invokes the node's successors depth first in the
order their edges were added. Nodes may delay their start, block their
successors until an Action finishes, or run alongside the graph.

The core never touches rendering, audio, or UI. Those live behind the
Action interface and behind Blocks supplied by the host.

# Basic Usage

	graph := eventgraph.NewGraph("intro").
	    AddNode("start", &eventgraph.StartNode{}).
	    AddNode("fade", eventgraph.NewActionNode("Fade In", newFade)).
	    AddNode("done", &eventgraph.DoneNode{}).
	    AddEdge("start", "fade").
	    AddEdge("fade", "done")

	sched := eventgraph.NewScheduler()
	proc := eventgraph.NewProcessor(graph, sched, eventgraph.WithLock(true))
	if err := proc.Bake(); err != nil {
	    log.Fatal(err)
	}
	if err := proc.Run(ctx); err != nil {
	    log.Fatal(err)
	}
	for proc.State() == eventgraph.StateRunning {
	    sched.Step(16 * time.Millisecond)
	}

# Scheduling

Processors never start goroutines. Deferred work goes through a
Delegator: After for delays, Every for per-step updates. Scheduler is the
standard Delegator; the host calls Step once per frame, or Run to drive it
from a ticker. Work scheduled during a step starts on the next one.

# Wait Policy

An ActionNode with WaitUntilFinished blocks its successors until the
action reports IsFinished. WaitBehavior overrides the authored flag:
ForceWait always blocks, ForceNoWait never does. A non-waiting action
runs its whole lifecycle at once and the graph continues immediately.

# Aborting

Any node can abort its run through Context.Abort. Only the first abort
of a run takes effect: it is reported to the AbortSink, the lock is
released, and no further successors are invoked. Waiting actions stop
ticking and get OnComplete for cleanup.

Code that does not hold a Context can abort whatever is running through
the Runtime, which tracks running processors innermost last:

	eventgraph.DefaultRuntime().Abort("camera rig missing", rig)

Cancelling the context.Context passed to Run aborts the run as well.

# Nesting

SubgraphNode runs another processor and continues when it ends. The
processor's Block gives the same handle to host code that wants to start
a graph and hear back when it is done.

# Parameters

Graphs carry named parameters. Bake snapshots them for every node;
BakeWithOverrides applies temporary values for one bake and restores the
authored defaults afterwards.

# Thread Safety

Graph, Processor, Runtime, and Scheduler are single-threaded. Build,
bake, run, and step them from one goroutine. Runtime panics if it is
entered from two goroutines at once.
*/
package eventgraph
