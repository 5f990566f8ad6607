package actions

import (
	"errors"
	"sort"
	"sync"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

// Sentinel errors for building definitions.
var (
	// ErrUnknownKind indicates a node kind with no registered constructor.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrMissingBinding indicates a node refers to a host object that was never bound.
	ErrMissingBinding = errors.New("missing binding")

	// ErrInvalidParam indicates a node param with an unusable value.
	ErrInvalidParam = errors.New("invalid param")

	// ErrUnsupportedField indicates timing fields on a kind that is not an action.
	ErrUnsupportedField = errors.New("field not supported by kind")
)

// Input is what a kind constructor sees.
type Input struct {
	// Node is the definition entry.
	Node config.NodeDef
	// Params reads the node params with ${name} expanded against Vars.
	Params config.Config
	// Vars holds the graph parameters. Action kinds get the baked
	// snapshot, node kinds the definition defaults.
	Vars map[string]any
	// Bindings holds the host objects the definition refers to.
	Bindings *Bindings
	// Wait is the resolved wait flag of an action node.
	Wait bool
}

// NodeKind builds a structural node once, when the definition is built.
type NodeKind func(in Input) (eventgraph.Node, error)

// ActionKind builds an action at every bake.
type ActionKind func(in Input) (eventgraph.Action, error)

type kind struct {
	node   NodeKind
	action ActionKind
}

// Registry maps kind names to constructors.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]kind
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]kind)}
}

// NewDefaultRegistry creates a registry with every built-in kind.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.RegisterNode("start", startKind)
	r.RegisterNode("done", doneKind)
	r.RegisterNode("block", blockKind)
	r.RegisterNode("subgraph", subgraphKind)
	r.RegisterNode("call", callKind)
	r.RegisterAction("wait", waitKind)
	r.RegisterAction("log", logKind)
	r.RegisterAction("fade", fadeKind)
	r.RegisterAction("configure", configureKind)
	r.RegisterAction("abort", abortKind)
	r.RegisterAction("script", scriptKind)
	return r
}

// RegisterNode adds or replaces a node kind.
// Panics if name is empty or fn is nil.
func (r *Registry) RegisterNode(name string, fn NodeKind) {
	if fn == nil {
		panic("actions: node kind constructor cannot be nil")
	}
	r.register(name, kind{node: fn})
}

// RegisterAction adds or replaces an action kind.
// Panics if name is empty or fn is nil.
func (r *Registry) RegisterAction(name string, fn ActionKind) {
	if fn == nil {
		panic("actions: action kind constructor cannot be nil")
	}
	r.register(name, kind{action: fn})
}

func (r *Registry) register(name string, k kind) {
	if name == "" {
		panic("actions: kind name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[name] = k
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.lookup(name)
	return ok
}

// IsAction reports whether name is a registered action kind.
func (r *Registry) IsAction(name string) bool {
	k, ok := r.lookup(name)
	return ok && k.action != nil
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[name]
	return k, ok
}
