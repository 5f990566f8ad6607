package actions

import (
	"sync"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/config"
)

// Level is a host value driven by fades and scripts: a screen fade, a
// camera shake gain, a volume.
type Level interface {
	SetLevel(v float64)
}

// LevelFunc adapts a function to Level.
type LevelFunc func(v float64)

// SetLevel calls f(v).
func (f LevelFunc) SetLevel(v float64) {
	f(v)
}

// Target is a host object reconfigured by the configure kind.
type Target interface {
	Configure(values map[string]any) error
}

// TargetFunc adapts a function to Target.
type TargetFunc func(values map[string]any) error

// Configure calls f(values).
func (f TargetFunc) Configure(values map[string]any) error {
	return f(values)
}

// BlockProvider opens a host block (a dialog, a cutscene, a video) for
// one invocation of a block node. Returning nil skips the block.
type BlockProvider func(params config.Config) *eventgraph.Block

// Bindings maps names used in definitions to host objects.
// It is safe for concurrent use.
type Bindings struct {
	mu         sync.RWMutex
	levels     map[string]Level
	targets    map[string]Target
	blocks     map[string]BlockProvider
	processors map[string]*eventgraph.Processor
	funcs      map[string]func(eventgraph.Context)
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings {
	return &Bindings{
		levels:     make(map[string]Level),
		targets:    make(map[string]Target),
		blocks:     make(map[string]BlockProvider),
		processors: make(map[string]*eventgraph.Processor),
		funcs:      make(map[string]func(eventgraph.Context)),
	}
}

// BindLevel binds a Level under name.
func (b *Bindings) BindLevel(name string, l Level) *Bindings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.levels[name] = l
	return b
}

// BindTarget binds a Target under name.
func (b *Bindings) BindTarget(name string, t Target) *Bindings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.targets[name] = t
	return b
}

// BindBlock binds a BlockProvider under name.
func (b *Bindings) BindBlock(name string, p BlockProvider) *Bindings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocks[name] = p
	return b
}

// BindProcessor binds a processor for subgraph nodes under name.
func (b *Bindings) BindProcessor(name string, p *eventgraph.Processor) *Bindings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.processors[name] = p
	return b
}

// BindFunc binds a function for call nodes under name.
func (b *Bindings) BindFunc(name string, fn func(eventgraph.Context)) *Bindings {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.funcs[name] = fn
	return b
}

// Level returns the Level bound under name.
func (b *Bindings) Level(name string) (Level, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.levels[name]
	return l, ok
}

// Target returns the Target bound under name.
func (b *Bindings) Target(name string) (Target, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.targets[name]
	return t, ok
}

// Block returns the BlockProvider bound under name.
func (b *Bindings) Block(name string) (BlockProvider, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.blocks[name]
	return p, ok
}

// Processor returns the processor bound under name.
func (b *Bindings) Processor(name string) (*eventgraph.Processor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p, ok := b.processors[name]
	return p, ok
}

// Func returns the function bound under name.
func (b *Bindings) Func(name string) (func(eventgraph.Context), bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn, ok := b.funcs[name]
	return fn, ok
}
