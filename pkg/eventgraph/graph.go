package eventgraph

import (
	"fmt"
	"strings"
)

// Graph is a mutable builder for event graphs.
// Use NewGraph to create one, then chain AddNode, AddEdge, and SetStart
// calls to define it. A Processor bakes the graph into its runtime form.
//
// Graph is NOT thread-safe. Build it from a single goroutine.
//
// Example:
//
//	graph := eventgraph.NewGraph("intro").
//	    AddNode("start", &eventgraph.StartNode{}).
//	    AddNode("fade", fadeNode).
//	    AddNode("done", &eventgraph.DoneNode{}).
//	    AddEdge("start", "fade").
//	    AddEdge("fade", "done")
type Graph struct {
	name   string
	nodes  map[string]Node
	order  []string
	edges  map[string][]string
	start  string
	params *Parameters
}

// NewGraph creates a new, empty graph with the given name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:   name,
		nodes:  make(map[string]Node),
		edges:  make(map[string][]string),
		params: NewParameters(),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string {
	return g.name
}

// AddNode adds a node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id contains whitespace (space, tab, newline)
//   - n is nil
//   - id already exists in the graph
func (g *Graph) AddNode(id string, n Node) *Graph {
	if id == "" {
		panic("eventgraph: node ID cannot be empty")
	}
	if strings.ContainsAny(id, " \t\n\r") {
		panic("eventgraph: node ID cannot contain whitespace")
	}
	if n == nil {
		panic("eventgraph: node cannot be nil")
	}
	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("eventgraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = n
	g.order = append(g.order, id)
	return g
}

// AddEdge connects from to to. Successors of a node run in the order
// their edges were added.
//
// Edge validation happens at bake time, so edges may be added before
// their nodes.
func (g *Graph) AddEdge(from, to string) *Graph {
	g.edges[from] = append(g.edges[from], to)
	return g
}

// SetStart designates the start node. If it is never called, the single
// StartNode in the graph is used.
func (g *Graph) SetStart(id string) *Graph {
	g.start = id
	return g
}

// SetParameter defines a graph parameter with its default value.
func (g *Graph) SetParameter(name string, value any) *Graph {
	g.params.Set(name, value)
	return g
}

// Parameters returns the graph parameters.
func (g *Graph) Parameters() *Parameters {
	return g.params
}

// NodeIDs returns node IDs in the order they were added.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.order))
	copy(ids, g.order)
	return ids
}

// Node returns the authored node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}
