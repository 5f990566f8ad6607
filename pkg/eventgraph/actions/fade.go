package actions

import (
	"fmt"
	"time"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
)

const minFadeDuration = 10 * time.Millisecond

// fadeAction moves a Level from one value to another on its own ticker,
// so the fade keeps going when the graph does not wait for it.
//
// When the graph waits, completing the action early (an abort, a
// cancelled context) stops the fade and snaps the level to its end value.
type fadeAction struct {
	target   Level
	from, to float64
	duration time.Duration
	unscaled bool
	cancel   bool

	elapsed  time.Duration
	finished bool
	gen      int
}

func fadeKind(in Input) (eventgraph.Action, error) {
	name, err := requireString(in, "target")
	if err != nil {
		return nil, err
	}
	target, ok := in.Bindings.Level(name)
	if !ok {
		return nil, fmt.Errorf("%w: level %q", ErrMissingBinding, name)
	}
	return &fadeAction{
		target:   target,
		from:     in.Params.Float("from", 1),
		to:       in.Params.Float("to", 0),
		duration: max(minFadeDuration, in.Params.Duration("duration", time.Second)),
		unscaled: in.Node.Unscaled,
		cancel:   in.Wait,
	}, nil
}

func (a *fadeAction) Init() {
	a.gen++
	a.elapsed = 0
	a.finished = false
}

func (a *fadeAction) OnStart(ctx eventgraph.Context) {
	a.target.SetLevel(a.from)
	gen := a.gen
	ctx.Delegator().Every(func(t eventgraph.Tick) bool {
		return a.tick(gen, t)
	})
}

// tick advances the fade. A ticker from an earlier run stops as soon as
// the action is initialized again.
func (a *fadeAction) tick(gen int, t eventgraph.Tick) bool {
	if gen != a.gen || a.finished {
		return false
	}
	a.elapsed += t.For(a.unscaled)
	u := min(1, float64(a.elapsed)/float64(a.duration))
	a.target.SetLevel(a.from + (a.to-a.from)*u)
	if u >= 1 {
		a.finished = true
		return false
	}
	return true
}

func (a *fadeAction) OnUpdate(time.Duration) {}

func (a *fadeAction) OnComplete() {
	if !a.cancel || a.finished {
		return
	}
	a.finished = true
	a.target.SetLevel(a.to)
}

func (a *fadeAction) IsFinished() bool {
	return a.finished
}
