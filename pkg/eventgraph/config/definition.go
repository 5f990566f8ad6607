package config

import (
	"errors"
	"fmt"
	"time"
)

// Definition is a graph described as data.
type Definition struct {
	Name       string         `json:"name" yaml:"name"`
	Start      string         `json:"start,omitempty" yaml:"start,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Nodes      []NodeDef      `json:"nodes" yaml:"nodes"`
}

// NodeDef is one node of a definition.
type NodeDef struct {
	ID   string `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Delay is a time.ParseDuration string ("250ms", "1.5s").
	Delay string `json:"delay,omitempty" yaml:"delay,omitempty"`
	// Wait sets WaitUntilFinished. Unset means the kind's default.
	Wait     *bool  `json:"wait,omitempty" yaml:"wait,omitempty"`
	Unscaled bool   `json:"unscaled,omitempty" yaml:"unscaled,omitempty"`
	Policy   string `json:"policy,omitempty" yaml:"policy,omitempty"`

	Next   []string       `json:"next,omitempty" yaml:"next,omitempty"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// DelayDuration parses Delay. An empty delay is zero.
func (n NodeDef) DelayDuration() (time.Duration, error) {
	if n.Delay == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(n.Delay)
	if err != nil {
		return 0, fmt.Errorf("node %s: delay: %w", n.ID, err)
	}
	return d, nil
}

// Config returns the node params as a Config.
func (n NodeDef) Config() Config {
	return New(n.Params)
}

// Sentinel errors for definition validation.
var (
	// ErrNoName indicates a definition without a graph name.
	ErrNoName = errors.New("definition has no name")

	// ErrNoNodes indicates a definition without nodes.
	ErrNoNodes = errors.New("definition has no nodes")

	// ErrInvalidNode indicates a malformed node entry.
	ErrInvalidNode = errors.New("invalid node")
)

// Validate checks the shape of the definition. Graph semantics (start,
// done, reachability) are checked when the built graph is baked.
func (d Definition) Validate() error {
	var errs []error

	if d.Name == "" {
		errs = append(errs, ErrNoName)
	}
	if len(d.Nodes) == 0 {
		errs = append(errs, ErrNoNodes)
	}

	ids := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		switch {
		case n.ID == "":
			errs = append(errs, fmt.Errorf("%w: node %d has no id", ErrInvalidNode, i))
			continue
		case ids[n.ID]:
			errs = append(errs, fmt.Errorf("%w: duplicate id %s", ErrInvalidNode, n.ID))
		}
		ids[n.ID] = true

		if n.Kind == "" {
			errs = append(errs, fmt.Errorf("%w: node %s has no kind", ErrInvalidNode, n.ID))
		}
		if _, err := n.DelayDuration(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidNode, err))
		}
	}

	for _, n := range d.Nodes {
		for _, next := range n.Next {
			if !ids[next] {
				errs = append(errs, fmt.Errorf("%w: node %s: next %s does not exist", ErrInvalidNode, n.ID, next))
			}
		}
	}

	if d.Start != "" && !ids[d.Start] {
		errs = append(errs, fmt.Errorf("%w: start %s does not exist", ErrInvalidNode, d.Start))
	}

	return errors.Join(errs...)
}
