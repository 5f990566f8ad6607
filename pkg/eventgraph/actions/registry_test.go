package actions_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/actions"
)

func TestDefaultRegistry_Kinds(t *testing.T) {
	r := actions.NewDefaultRegistry()

	assert.Equal(t, []string{
		"abort", "block", "call", "configure", "done", "fade",
		"log", "script", "start", "subgraph", "wait",
	}, r.Kinds())

	assert.True(t, r.IsAction("wait"))
	assert.True(t, r.IsAction("script"))
	assert.False(t, r.IsAction("start"))
	assert.False(t, r.IsAction("missing"))
	assert.True(t, r.Has("block"))
	assert.False(t, r.Has("missing"))
}

func TestRegistry_Register(t *testing.T) {
	r := actions.NewRegistry()
	assert.Empty(t, r.Kinds())

	r.RegisterNode("entry", func(actions.Input) (eventgraph.Node, error) {
		return &eventgraph.StartNode{}, nil
	})
	assert.True(t, r.Has("entry"))
	assert.False(t, r.IsAction("entry"))

	// Re-registering a name replaces the kind.
	r.RegisterAction("entry", func(actions.Input) (eventgraph.Action, error) {
		return nil, nil
	})
	assert.True(t, r.IsAction("entry"))
	assert.Equal(t, []string{"entry"}, r.Kinds())
}

func TestRegistry_RegisterPanics(t *testing.T) {
	r := actions.NewRegistry()
	nodeKind := func(actions.Input) (eventgraph.Node, error) { return nil, nil }

	assert.Panics(t, func() { r.RegisterNode("", nodeKind) })
	assert.Panics(t, func() { r.RegisterNode("x", nil) })
	assert.Panics(t, func() { r.RegisterAction("x", nil) })
}

func TestBindings(t *testing.T) {
	b := actions.NewBindings()

	_, ok := b.Level("fx")
	assert.False(t, ok)

	level := &levelRecorder{}
	b.BindLevel("fx", level).
		BindTarget("glitch", actions.TargetFunc(func(map[string]any) error { return nil })).
		BindFunc("ping", func(eventgraph.Context) {})

	got, ok := b.Level("fx")
	assert.True(t, ok)
	got.SetLevel(0.5)
	assert.Equal(t, []float64{0.5}, level.values)

	_, ok = b.Target("glitch")
	assert.True(t, ok)
	_, ok = b.Func("ping")
	assert.True(t, ok)
	_, ok = b.Block("intro")
	assert.False(t, ok)
	_, ok = b.Processor("child")
	assert.False(t, ok)
}

func TestLevelFunc(t *testing.T) {
	var got float64
	actions.LevelFunc(func(v float64) { got = v }).SetLevel(0.25)
	assert.Equal(t, 0.25, got)
}
