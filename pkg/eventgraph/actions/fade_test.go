package actions_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
	"github.com/randalmurphal/eventgraph/pkg/eventgraph/actions"
)

const fadeDef = `
name: shake
nodes:
  - {id: start, kind: start, next: [fade]}
  - {id: fade, kind: fade, wait: %s, params: {target: camera, from: 1, to: 0, duration: 160ms}, next: [done]}
  - {id: done, kind: done}
`

func TestFadeKind_Waits(t *testing.T) {
	level := &levelRecorder{}
	p, sched := newProcessor(t, parseYAML(t, fmt.Sprintf(fadeDef, "true")), actions.NewBindings().BindLevel("camera", level))

	start(t, p)
	assert.Equal(t, 1.0, level.last())

	steps(sched, 5)
	assert.InDelta(t, 0.5, level.last(), 1e-9)
	assert.Equal(t, eventgraph.StateRunning, p.State())

	steps(sched, 5)
	assert.InDelta(t, 0.0, level.last(), 1e-9)
	assert.Equal(t, eventgraph.StateCompleted, p.State())

	sched.Step(frame)
	assert.True(t, sched.Idle())
}

func TestFadeKind_DetachedKeepsFading(t *testing.T) {
	level := &levelRecorder{}
	p, sched := newProcessor(t, parseYAML(t, fmt.Sprintf(fadeDef, "false")), actions.NewBindings().BindLevel("camera", level))

	start(t, p)
	assert.Equal(t, eventgraph.StateCompleted, p.State(), "graph does not wait for the fade")
	assert.Equal(t, 1.0, level.last())

	steps(sched, 10)
	assert.InDelta(t, 0.0, level.last(), 1e-9)
	assert.True(t, sched.Idle())
}

func TestFadeKind_AbortSnapsToEnd(t *testing.T) {
	level := &levelRecorder{}
	p, sched := newProcessor(t, parseYAML(t, fmt.Sprintf(fadeDef, "true")), actions.NewBindings().BindLevel("camera", level))

	start(t, p)
	steps(sched, 3)
	assert.InDelta(t, 0.7, level.last(), 1e-9)

	assert.True(t, p.Abort("skip", nil))
	sched.Step(frame)

	assert.Equal(t, 0.0, level.last())
	assert.Equal(t, eventgraph.StateAborted, p.State())

	sched.Step(frame)
	assert.True(t, sched.Idle())
	assert.Equal(t, 0.0, level.last())
}

func TestFadeKind_RerunRestarts(t *testing.T) {
	level := &levelRecorder{}
	p, sched := newProcessor(t, parseYAML(t, fmt.Sprintf(fadeDef, "false")), actions.NewBindings().BindLevel("camera", level))

	start(t, p)
	steps(sched, 5)
	start(t, p)
	assert.Equal(t, 1.0, level.last())

	sched.Step(frame)
	assert.InDelta(t, 0.9, level.last(), 1e-9, "only the new fade ticks")
	assert.Equal(t, 1, sched.Pending())
}
