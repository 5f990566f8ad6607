package eventgraph

import "fmt"

// StartNode is the entry point of a graph. It completes immediately.
type StartNode struct{}

// Bake implements Node.
func (*StartNode) Bake(BakeEnv) BakedNode {
	return &bakedPass{}
}

// bakedPass completes as soon as it is invoked.
type bakedPass struct {
	BakedBase
}

func (p *bakedPass) Invoke(_ Context, onDone DoneFunc, _ BakedNode) {
	onDone(p)
}

// DoneNode is the terminal node. Reaching it completes the run.
// A graph has exactly one.
type DoneNode struct{}

// Bake implements Node.
func (*DoneNode) Bake(BakeEnv) BakedNode {
	return &BakedDone{}
}

// BakedDone is the baked terminal node. The processor plugs its
// completion hook here before every run.
type BakedDone struct {
	BakedBase
	hook func(Context)
}

// PlugOnProcessDone sets the function called when the node is reached.
// It replaces any previous hook.
func (d *BakedDone) PlugOnProcessDone(hook func(Context)) {
	d.hook = hook
}

// Invoke implements BakedNode. The done node has no successors, so it
// fires the hook instead of its continuation.
func (d *BakedDone) Invoke(ctx Context, _ DoneFunc, _ BakedNode) {
	if d.hook != nil {
		d.hook(ctx)
	}
}

// FuncNode runs a function synchronously and continues.
type FuncNode struct {
	Name string
	Fn   func(ctx Context)
}

// DisplayName returns the node name.
func (n *FuncNode) DisplayName() string {
	return n.Name
}

// Bake implements Node.
func (n *FuncNode) Bake(BakeEnv) BakedNode {
	return &bakedFunc{fn: n.Fn}
}

type bakedFunc struct {
	BakedBase
	fn func(ctx Context)
}

func (f *bakedFunc) Invoke(ctx Context, onDone DoneFunc, _ BakedNode) {
	if f.fn != nil {
		f.fn(ctx)
	}
	if ctx.Halted() {
		return
	}
	onDone(f)
}

// BlockNode asks a provider for a Block, invokes it, and continues when
// the block reports done. A provider that returns nil lets the graph
// continue at once.
type BlockNode struct {
	Name     string
	Provider func(params Values) *Block
}

// DisplayName returns the node name.
func (n *BlockNode) DisplayName() string {
	return n.Name
}

// Bake implements Node.
func (n *BlockNode) Bake(env BakeEnv) BakedNode {
	return &bakedBlock{provider: n.Provider, params: env.Params}
}

type bakedBlock struct {
	BakedBase
	provider func(params Values) *Block
	params   Values
}

func (b *bakedBlock) Invoke(_ Context, onDone DoneFunc, _ BakedNode) {
	var block *Block
	if b.provider != nil {
		block = b.provider(b.params)
	}
	if block == nil {
		onDone(b)
		return
	}
	block.PlugCallbacks(nil, func() {
		block.UnplugCallbacks()
		onDone(b)
	})
	block.Invoke()
}

// SubgraphNode runs another processor as a nested graph and continues
// when it completes or aborts. The child runs with the parent run's
// context, so cancelling the parent also stops the child.
//
// With PropagateAbort set, an aborted child aborts the parent run too.
type SubgraphNode struct {
	Name           string
	Processor      *Processor
	PropagateAbort bool
}

// DisplayName returns the node name.
func (n *SubgraphNode) DisplayName() string {
	return n.Name
}

// Bake implements Node.
func (n *SubgraphNode) Bake(BakeEnv) BakedNode {
	return &bakedSubgraph{child: n.Processor, propagate: n.PropagateAbort}
}

type bakedSubgraph struct {
	BakedBase
	child     *Processor
	propagate bool
}

func (s *bakedSubgraph) Invoke(ctx Context, onDone DoneFunc, _ BakedNode) {
	if s.child == nil {
		ctx.Abort(fmt.Sprintf("node %s: subgraph processor is nil", s.ID()), s)
		return
	}

	block := s.child.Block()
	block.PlugCallbacks(nil, func() {
		block.UnplugCallbacks()
		if s.propagate && s.child.State() == StateAborted {
			ctx.Abort(fmt.Sprintf("node %s: subgraph %s aborted: %s",
				s.ID(), s.child.Graph().Name(), s.child.AbortReason()), s)
			return
		}
		if !ctx.Halted() {
			onDone(s)
		}
	})

	if err := s.child.Run(ctx); err != nil {
		block.UnplugCallbacks()
		ctx.Abort(fmt.Sprintf("node %s: subgraph %s: %v", s.ID(), s.child.Graph().Name(), err), s)
	}
}
