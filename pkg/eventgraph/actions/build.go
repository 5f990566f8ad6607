package actions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

// Build assembles a graph from a definition.
//
// The definition is validated first. Every node is then built through
// reg (the default registry if nil) with bindings (an empty set if nil),
// and all errors are returned together. Graph structure (start, done,
// reachability) is checked when the graph is baked.
func Build(def config.Definition, reg *Registry, bindings *Bindings) (*eventgraph.Graph, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("definition %s: %w", def.Name, err)
	}
	if reg == nil {
		reg = NewDefaultRegistry()
	}
	if bindings == nil {
		bindings = NewBindings()
	}

	g := eventgraph.NewGraph(def.Name)
	names := make([]string, 0, len(def.Parameters))
	for name := range def.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g.SetParameter(name, def.Parameters[name])
	}

	var errs []error
	for _, n := range def.Nodes {
		node, err := buildNode(n, def.Parameters, reg, bindings)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		g.AddNode(n.ID, node)
		for _, next := range n.Next {
			g.AddEdge(n.ID, next)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("definition %s: %w", def.Name, errors.Join(errs...))
	}

	if def.Start != "" {
		g.SetStart(def.Start)
	}
	return g, nil
}

func buildNode(n config.NodeDef, defaults map[string]any, reg *Registry, bindings *Bindings) (eventgraph.Node, error) {
	if strings.ContainsAny(n.ID, " \t\n\r") {
		return nil, fmt.Errorf("node %q: %w: id contains whitespace", n.ID, config.ErrInvalidNode)
	}
	k, ok := reg.lookup(n.Kind)
	if !ok {
		return nil, fmt.Errorf("node %s: %w %q", n.ID, ErrUnknownKind, n.Kind)
	}

	if k.node != nil {
		if n.Delay != "" || n.Wait != nil || n.Unscaled || n.Policy != "" {
			return nil, fmt.Errorf("node %s: %w %q: delay, wait, unscaled and policy apply to actions only",
				n.ID, ErrUnsupportedField, n.Kind)
		}
		return k.node(Input{
			Node:     n,
			Params:   config.New(n.Params).WithVars(defaults),
			Vars:     defaults,
			Bindings: bindings,
		})
	}

	delay, err := n.DelayDuration()
	if err != nil {
		return nil, err
	}
	policy, err := eventgraph.ParseWaitPolicy(n.Policy)
	if err != nil {
		return nil, fmt.Errorf("node %s: %w", n.ID, err)
	}
	wait := true
	if n.Wait != nil {
		wait = *n.Wait
	}
	resolved := resolveWait(policy, wait)

	create := k.action
	return &eventgraph.ActionNode{
		Name:              displayName(n),
		Delay:             delay,
		WaitUntilFinished: wait,
		UnscaledTime:      n.Unscaled,
		WaitBehavior:      policy,
		Create: func(params eventgraph.Values) (eventgraph.Action, error) {
			return create(Input{
				Node:     n,
				Params:   config.New(n.Params).WithVars(params),
				Vars:     params,
				Bindings: bindings,
				Wait:     resolved,
			})
		},
	}, nil
}

func resolveWait(policy eventgraph.WaitPolicy, wait bool) bool {
	switch policy {
	case eventgraph.ForceWait:
		return true
	case eventgraph.ForceNoWait:
		return false
	default:
		return wait
	}
}
