package eventgraph

import (
	"fmt"
	"time"
)

// Action is the runtime object behind an ActionNode.
//
// Lifecycle: Init, then OnStart once the node delay has elapsed, then
// OnUpdate once per scheduler step while the graph waits on it, then
// OnComplete. IsFinished is polled after Init/OnStart and after every
// OnUpdate.
//
// Embed ActionBase to get no-op versions of the optional methods.
type Action interface {
	// Init prepares runtime state.
	Init()
	// OnStart is called when the action starts running. ctx gives access
	// to the delegator and the abort channel of the owning run.
	OnStart(ctx Context)
	// OnUpdate is called once per step while the graph waits on the action.
	OnUpdate(dt time.Duration)
	// OnComplete is called once before the action is released.
	OnComplete()
	// IsFinished reports whether the action is done.
	IsFinished() bool
}

// ActionBase provides no-op lifecycle methods.
type ActionBase struct{}

// Init does nothing.
func (ActionBase) Init() {}

// OnStart does nothing.
func (ActionBase) OnStart(Context) {}

// OnUpdate does nothing.
func (ActionBase) OnUpdate(time.Duration) {}

// OnComplete does nothing.
func (ActionBase) OnComplete() {}

// ActionFactory creates the action for one bake from the parameter
// snapshot. An error (or a nil action) marks the node as misconfigured;
// the node aborts its run when invoked instead of starting.
type ActionFactory func(params Values) (Action, error)

// WaitPolicy decides whether a node's completion blocks the graph,
// regardless of the authored WaitUntilFinished flag.
type WaitPolicy int

const (
	// Inherit uses the authored WaitUntilFinished flag.
	Inherit WaitPolicy = iota
	// ForceWait always blocks successors until the action finishes.
	ForceWait
	// ForceNoWait never blocks; the action runs alongside the graph.
	ForceNoWait
)

// String returns the policy name.
func (p WaitPolicy) String() string {
	switch p {
	case Inherit:
		return "inherit"
	case ForceWait:
		return "force_wait"
	case ForceNoWait:
		return "force_no_wait"
	default:
		return "unknown"
	}
}

// ParseWaitPolicy parses a policy name as produced by String.
// The empty string parses as Inherit.
func ParseWaitPolicy(s string) (WaitPolicy, error) {
	switch s {
	case "", "inherit":
		return Inherit, nil
	case "force_wait":
		return ForceWait, nil
	case "force_no_wait":
		return ForceNoWait, nil
	default:
		return Inherit, fmt.Errorf("unknown wait policy %q", s)
	}
}

// mustWait resolves a policy against the authored flag.
func (p WaitPolicy) mustWait(waitUntilFinished bool) bool {
	switch p {
	case ForceWait:
		return true
	case ForceNoWait:
		return false
	default:
		return waitUntilFinished
	}
}

// ActionNode is an authored node that runs an Action with delay and
// wait handling.
type ActionNode struct {
	// Name is the display name used in logs and abort messages.
	Name string
	// Delay defers the action start. Negative values count as zero.
	Delay time.Duration
	// WaitUntilFinished blocks successors until the action finishes.
	WaitUntilFinished bool
	// UnscaledTime measures Delay and OnUpdate deltas in unscaled time.
	UnscaledTime bool
	// WaitBehavior overrides WaitUntilFinished unless it is Inherit.
	WaitBehavior WaitPolicy
	// Create builds the action at bake time. The one instance serves
	// every invocation until the next bake, so a node reached twice in
	// one run (fan-in) starts a single lifecycle.
	Create ActionFactory
}

// NewActionNode creates an action node that waits for its action to
// finish.
func NewActionNode(name string, create ActionFactory) *ActionNode {
	return &ActionNode{
		Name:              name,
		WaitUntilFinished: true,
		Create:            create,
	}
}

// DisplayName returns the node name.
func (n *ActionNode) DisplayName() string {
	return n.Name
}

// Bake implements Node.
func (n *ActionNode) Bake(env BakeEnv) BakedNode {
	var (
		action Action
		err    error
	)
	if n.Create == nil {
		err = ErrNilAction
	} else {
		action, err = n.Create(env.Params)
		if err == nil && action == nil {
			err = ErrNilAction
		}
	}

	delay := n.Delay
	if delay < 0 {
		delay = 0
	}

	return &bakedAction{
		action:   action,
		err:      err,
		delay:    delay,
		wait:     n.WaitBehavior.mustWait(n.WaitUntilFinished),
		unscaled: n.UnscaledTime,
	}
}

type bakedAction struct {
	BakedBase
	action   Action
	err      error
	delay    time.Duration
	wait     bool
	unscaled bool

	// The action instance is shared by every invocation of one bake.
	// gen identifies the lifecycle that owns it; active is the run that
	// lifecycle belongs to, nil once it ends.
	gen    int
	active Context
}

// Invoke implements BakedNode.
func (a *bakedAction) Invoke(ctx Context, onDone DoneFunc, _ BakedNode) {
	if a.err != nil {
		nodeErr := &NodeError{NodeID: a.ID(), Name: a.name, Op: "create", Err: a.err}
		ctx.Abort(nodeErr.Error(), a)
		return
	}

	if a.wait {
		if a.delay > 0 {
			ctx.Delegator().After(a.delay, a.unscaled, func() {
				a.runWaiting(ctx, onDone)
			})
			return
		}
		a.runWaiting(ctx, onDone)
		return
	}

	if a.delay > 0 {
		ctx.Delegator().After(a.delay, a.unscaled, func() {
			a.runDetached(ctx)
		})
	} else {
		a.runDetached(ctx)
	}
	onDone(a)
}

// runWaiting starts the action and ticks it until it finishes, then
// continues the graph.
//
// A second invocation while the same run is already waiting on the
// action is ignored, so the successors run once. A newer run takes the
// action over; the older lifecycle drops out without touching it.
func (a *bakedAction) runWaiting(ctx Context, onDone DoneFunc) {
	if stopped(ctx, a) {
		return
	}
	if a.active == ctx {
		ctx.Logger().Debug("action already running, invocation ignored", "node_id", a.ID())
		return
	}

	a.gen++
	gen := a.gen
	a.active = ctx

	act := a.action
	act.Init()
	act.OnStart(ctx)
	if act.IsFinished() {
		a.release(gen)
		act.OnComplete()
		if !ctx.Halted() {
			onDone(a)
		}
		return
	}

	ctx.Delegator().Every(func(t Tick) bool {
		if gen != a.gen {
			return false
		}
		if stopped(ctx, a) {
			a.release(gen)
			act.OnComplete()
			return false
		}
		act.OnUpdate(t.For(a.unscaled))
		if !act.IsFinished() {
			return true
		}
		a.release(gen)
		act.OnComplete()
		onDone(a)
		return false
	})
}

func (a *bakedAction) release(gen int) {
	if gen == a.gen {
		a.active = nil
	}
}

// runDetached runs the whole lifecycle back to back. Anything the action
// keeps doing afterwards is its own business.
func (a *bakedAction) runDetached(ctx Context) {
	act := a.action
	act.Init()
	act.OnStart(ctx)
	act.OnComplete()
}
