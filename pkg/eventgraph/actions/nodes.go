package actions

import (
	"fmt"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

func startKind(Input) (eventgraph.Node, error) {
	return &eventgraph.StartNode{}, nil
}

func doneKind(Input) (eventgraph.Node, error) {
	return &eventgraph.DoneNode{}, nil
}

// blockKind looks the provider up on every invocation, so a binding added
// after Build is still picked up. A missing binding lets the graph continue.
func blockKind(in Input) (eventgraph.Node, error) {
	name, err := requireString(in, "binding")
	if err != nil {
		return nil, err
	}
	bindings, params := in.Bindings, in.Node.Params
	return &eventgraph.BlockNode{
		Name: displayName(in.Node),
		Provider: func(vars eventgraph.Values) *eventgraph.Block {
			provide, ok := bindings.Block(name)
			if !ok || provide == nil {
				return nil
			}
			return provide(config.New(params).WithVars(vars))
		},
	}, nil
}

func subgraphKind(in Input) (eventgraph.Node, error) {
	name, err := requireString(in, "processor")
	if err != nil {
		return nil, err
	}
	proc, ok := in.Bindings.Processor(name)
	if !ok {
		return nil, fmt.Errorf("node %s: %w: processor %q", in.Node.ID, ErrMissingBinding, name)
	}
	return &eventgraph.SubgraphNode{
		Name:           displayName(in.Node),
		Processor:      proc,
		PropagateAbort: in.Params.Bool("propagate_abort", false),
	}, nil
}

func callKind(in Input) (eventgraph.Node, error) {
	name, err := requireString(in, "func")
	if err != nil {
		return nil, err
	}
	fn, ok := in.Bindings.Func(name)
	if !ok {
		return nil, fmt.Errorf("node %s: %w: func %q", in.Node.ID, ErrMissingBinding, name)
	}
	return &eventgraph.FuncNode{Name: displayName(in.Node), Fn: fn}, nil
}

// requireString returns a non-empty string param.
func requireString(in Input, key string) (string, error) {
	v := in.Params.String(key, "")
	if v == "" {
		return "", fmt.Errorf("node %s: %w: %s is required", in.Node.ID, ErrInvalidParam, key)
	}
	return v, nil
}

func displayName(n config.NodeDef) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}
