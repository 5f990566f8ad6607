package eventgraph

import "log/slog"

// DoneFunc is the continuation a baked node calls when it completes.
// The processor passes its advancement step here, so calling it runs the
// node's successors.
type DoneFunc func(node BakedNode)

// BakedNode is one executable unit of a baked graph.
//
// Invoke begins execution and must eventually call onDone(self) exactly
// once, either synchronously or from a delegator callback. A node that
// aborts its run does not call onDone.
//
// Implementations embed BakedBase, which carries the node ID and the
// successor list the baker links in authored order.
type BakedNode interface {
	ID() string
	Name() string
	Next() []BakedNode
	Invoke(ctx Context, onDone DoneFunc, prev BakedNode)

	base() *BakedBase
}

// BakedBase holds the identity and successors of a baked node.
type BakedBase struct {
	id   string
	name string
	next []BakedNode
}

// ID returns the node identifier from the authored graph.
func (b *BakedBase) ID() string {
	return b.id
}

// Name returns the display name of the node, or the ID if it has none.
func (b *BakedBase) Name() string {
	if b.name == "" {
		return b.id
	}
	return b.name
}

// Next returns the successors in authored order.
func (b *BakedBase) Next() []BakedNode {
	return b.next
}

func (b *BakedBase) base() *BakedBase {
	return b
}

// Node is an authored node. Bake turns it into its runtime form.
//
// Bake runs once per processor bake, with the parameter snapshot for that
// bake. It should capture everything the node needs at runtime, so later
// edits to the authored node do not affect a baked graph.
type Node interface {
	Bake(env BakeEnv) BakedNode
}

// BakeEnv is what a node sees while it is baked.
type BakeEnv struct {
	// Params is the parameter snapshot, with any overrides applied.
	Params Values
	// Delegator is the host scheduler the processor runs on.
	Delegator Delegator
	// Logger is the processor logger.
	Logger *slog.Logger
}

// named is implemented by authored nodes that carry a display name.
type named interface {
	DisplayName() string
}
