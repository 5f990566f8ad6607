package eventgraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// bake validates the graph and creates its runtime form.
// Returns an error if validation fails. Multiple errors are joined together.
//
// Validation checks (in order):
//  1. A start node must be set or inferable
//  2. The start node must exist
//  3. Exactly one done node must exist
//  4. All edge endpoints must reference existing nodes
//  5. The done node must be reachable from start
//
// Unreachable nodes are logged as warnings but do not fail the bake.
func (g *Graph) bake(env BakeEnv) (*BakedGraph, error) {
	var errs []error

	start := g.start
	if start == "" {
		start = g.inferStart()
	}
	if start == "" {
		errs = append(errs, ErrNoStart)
	} else if _, exists := g.nodes[start]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrStartNotFound, start))
	}

	var doneIDs []string
	for _, id := range g.order {
		if _, ok := g.nodes[id].(*DoneNode); ok {
			doneIDs = append(doneIDs, id)
		}
	}
	switch len(doneIDs) {
	case 0:
		errs = append(errs, ErrNoDoneNode)
	case 1:
	default:
		errs = append(errs, fmt.Errorf("%w: %v", ErrMultipleDone, doneIDs))
	}

	for _, from := range g.edgeSources() {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for _, to := range g.edges[from] {
			if _, exists := g.nodes[to]; !exists {
				errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
			}
		}
	}

	if len(errs) == 0 {
		reachable := g.reachableFrom(start)
		if !reachable[doneIDs[0]] {
			errs = append(errs, ErrNoPathToDone)
		}
		for _, id := range g.order {
			if !reachable[id] {
				logger := env.Logger
				if logger == nil {
					logger = slog.Default()
				}
				logger.Warn("node is unreachable from start",
					slog.String("graph", g.name),
					slog.String("node_id", id),
				)
			}
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildBakedGraph(env, start, doneIDs[0]), nil
}

// inferStart returns the ID of the only StartNode, or "" if there is not
// exactly one.
func (g *Graph) inferStart() string {
	found := ""
	for _, id := range g.order {
		if _, ok := g.nodes[id].(*StartNode); ok {
			if found != "" {
				return ""
			}
			found = id
		}
	}
	return found
}

// edgeSources returns edge sources in node order, followed by sources
// that do not name a node, so validation output is stable.
func (g *Graph) edgeSources() []string {
	sources := make([]string, 0, len(g.edges))
	seen := make(map[string]bool, len(g.edges))
	for _, id := range g.order {
		if _, ok := g.edges[id]; ok {
			sources = append(sources, id)
			seen[id] = true
		}
	}
	for from := range g.edges {
		if !seen[from] {
			sources = append(sources, from)
		}
	}
	return sources
}

// reachableFrom returns the set of nodes reachable from start.
func (g *Graph) reachableFrom(start string) map[string]bool {
	reachable := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range g.edges[current] {
			if !reachable[next] {
				reachable[next] = true
				queue = append(queue, next)
			}
		}
	}

	return reachable
}

// buildBakedGraph bakes every node and links successors.
func (g *Graph) buildBakedGraph(env BakeEnv, start, done string) *BakedGraph {
	nodes := make(map[string]BakedNode, len(g.nodes))
	for _, id := range g.order {
		n := g.nodes[id]
		baked := n.Bake(env)
		b := baked.base()
		b.id = id
		if nm, ok := n.(named); ok {
			b.name = nm.DisplayName()
		}
		nodes[id] = baked
	}

	for _, id := range g.order {
		targets := g.edges[id]
		if len(targets) == 0 {
			continue
		}
		next := make([]BakedNode, len(targets))
		for i, to := range targets {
			next[i] = nodes[to]
		}
		nodes[id].base().next = next
	}

	order := make([]string, len(g.order))
	copy(order, g.order)

	return &BakedGraph{
		name:  g.name,
		start: nodes[start],
		done:  nodes[done].(*BakedDone),
		nodes: nodes,
		order: order,
	}
}
