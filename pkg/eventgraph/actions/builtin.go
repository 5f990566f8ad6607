package actions

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
)

// waitAction finishes once duration of step time has passed.
type waitAction struct {
	eventgraph.ActionBase
	duration time.Duration
	elapsed  time.Duration
}

func waitKind(in Input) (eventgraph.Action, error) {
	d := in.Params.Duration("duration", 0)
	if d < 0 {
		return nil, fmt.Errorf("%w: duration %s is negative", ErrInvalidParam, d)
	}
	return &waitAction{duration: d}, nil
}

func (a *waitAction) Init() {
	a.elapsed = 0
}

func (a *waitAction) OnUpdate(dt time.Duration) {
	a.elapsed += dt
}

func (a *waitAction) IsFinished() bool {
	return a.elapsed >= a.duration
}

// logAction writes one record to the run logger.
type logAction struct {
	eventgraph.ActionBase
	nodeID  string
	message string
	level   slog.Level
}

func logKind(in Input) (eventgraph.Action, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(in.Params.String("level", "info"))); err != nil {
		return nil, fmt.Errorf("%w: level: %w", ErrInvalidParam, err)
	}
	return &logAction{
		nodeID:  in.Node.ID,
		message: in.Params.String("message", ""),
		level:   level,
	}, nil
}

func (a *logAction) OnStart(ctx eventgraph.Context) {
	ctx.Logger().Log(ctx, a.level, a.message, "node_id", a.nodeID)
}

func (a *logAction) IsFinished() bool {
	return true
}

// abortAction aborts the run as soon as it starts.
type abortAction struct {
	eventgraph.ActionBase
	nodeID string
	reason string
}

func abortKind(in Input) (eventgraph.Action, error) {
	return &abortAction{
		nodeID: in.Node.ID,
		reason: in.Params.String("reason", "aborted by node "+in.Node.ID),
	}, nil
}

func (a *abortAction) OnStart(ctx eventgraph.Context) {
	ctx.Abort(a.reason, a.nodeID)
}

func (a *abortAction) IsFinished() bool {
	return true
}

// configureAction pushes its params to a bound Target and finishes.
type configureAction struct {
	eventgraph.ActionBase
	nodeID string
	target Target
	name   string
	values map[string]any
}

func configureKind(in Input) (eventgraph.Action, error) {
	name, err := requireString(in, "target")
	if err != nil {
		return nil, err
	}
	target, ok := in.Bindings.Target(name)
	if !ok {
		return nil, fmt.Errorf("%w: target %q", ErrMissingBinding, name)
	}

	values := make(map[string]any, len(in.Node.Params))
	for key := range in.Params.Raw() {
		if key == "target" {
			continue
		}
		values[key] = in.Params.Any(key, nil)
	}
	return &configureAction{nodeID: in.Node.ID, target: target, name: name, values: values}, nil
}

func (a *configureAction) OnStart(ctx eventgraph.Context) {
	if err := a.target.Configure(a.values); err != nil {
		ctx.Abort(fmt.Sprintf("node %s: configure %s: %v", a.nodeID, a.name, err), a.nodeID)
	}
}

func (a *configureAction) IsFinished() bool {
	return true
}
