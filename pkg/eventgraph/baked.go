package eventgraph

// BakedGraph is the immutable, execution-ready form of a Graph.
// It is produced by Processor.Bake and replaced on every re-bake.
//
// Use the introspection methods (NodeIDs, Successors, etc.) to examine
// the graph structure for debugging or visualization.
type BakedGraph struct {
	name  string
	start BakedNode
	done  *BakedDone
	nodes map[string]BakedNode
	order []string
}

// Name returns the name of the graph this was baked from.
func (bg *BakedGraph) Name() string {
	return bg.name
}

// Start returns the start node.
func (bg *BakedGraph) Start() BakedNode {
	return bg.start
}

// Done returns the terminal done node.
func (bg *BakedGraph) Done() *BakedDone {
	return bg.done
}

// Node returns the baked node with the given ID.
func (bg *BakedGraph) Node(id string) (BakedNode, bool) {
	n, ok := bg.nodes[id]
	return n, ok
}

// NodeIDs returns all node IDs in authored order.
func (bg *BakedGraph) NodeIDs() []string {
	ids := make([]string, len(bg.order))
	copy(ids, bg.order)
	return ids
}

// Successors returns the IDs of the nodes that follow id, in the order
// they are invoked. Returns nil for unknown nodes.
func (bg *BakedGraph) Successors(id string) []string {
	n, ok := bg.nodes[id]
	if !ok {
		return nil
	}
	next := n.Next()
	if len(next) == 0 {
		return nil
	}
	ids := make([]string, len(next))
	for i, s := range next {
		ids[i] = s.ID()
	}
	return ids
}
