package actions

import (
	"fmt"
	"time"

	"github.com/Shopify/go-lua"

	"github.com/randalmurphal/eventgraph/pkg/eventgraph"
)

// scriptAction runs a Lua chunk. Each run gets a fresh interpreter.
type scriptAction struct {
	nodeID   string
	source   string
	file     string
	vars     map[string]any
	bindings *Bindings

	state    *lua.State
	ctx      eventgraph.Context
	finished bool
}

func scriptKind(in Input) (eventgraph.Action, error) {
	source, _ := in.Params.Raw()["source"].(string)
	file := in.Params.String("file", "")
	switch {
	case source == "" && file == "":
		return nil, fmt.Errorf("%w: source or file is required", ErrInvalidParam)
	case source != "" && file != "":
		return nil, fmt.Errorf("%w: source and file are exclusive", ErrInvalidParam)
	}

	if source != "" {
		// Surface syntax errors at bake time.
		l := lua.NewState()
		if err := lua.LoadString(l, source); err != nil {
			return nil, fmt.Errorf("%w: source: %w", ErrInvalidParam, err)
		}
	}

	return &scriptAction{
		nodeID:   in.Node.ID,
		source:   source,
		file:     file,
		vars:     in.Vars,
		bindings: in.Bindings,
	}, nil
}

func (a *scriptAction) Init() {
	a.finished = false
	a.ctx = nil
	a.state = lua.NewState()
	lua.OpenLibraries(a.state)
	a.register("param", a.luaParam)
	a.register("log", a.luaLog)
	a.register("level", a.luaLevel)
	a.register("abort", a.luaAbort)
}

func (a *scriptAction) register(name string, fn lua.Function) {
	a.state.PushGoFunction(fn)
	a.state.SetGlobal(name)
}

func (a *scriptAction) OnStart(ctx eventgraph.Context) {
	a.ctx = ctx

	var err error
	if a.file != "" {
		err = lua.LoadFile(a.state, a.file, "")
	} else {
		err = lua.LoadString(a.state, a.source)
	}
	if err == nil {
		err = a.state.ProtectedCall(0, 0, 0)
	}
	if err != nil {
		a.fail("run", err)
		return
	}

	if !a.finished && !a.hasGlobalFunc("update") {
		a.finished = true
	}
}

func (a *scriptAction) OnUpdate(dt time.Duration) {
	if a.finished {
		return
	}
	a.state.Global("update")
	a.state.PushNumber(dt.Seconds())
	if err := a.state.ProtectedCall(1, 1, 0); err != nil {
		a.fail("update", err)
		return
	}
	done := a.state.ToBoolean(-1)
	a.state.Pop(1)
	if done {
		a.finished = true
	}
}

func (a *scriptAction) OnComplete() {
	a.state = nil
	a.ctx = nil
}

func (a *scriptAction) IsFinished() bool {
	return a.finished
}

func (a *scriptAction) hasGlobalFunc(name string) bool {
	a.state.Global(name)
	defer a.state.Pop(1)
	return a.state.IsFunction(-1)
}

func (a *scriptAction) fail(op string, err error) {
	a.finished = true
	a.ctx.Abort(fmt.Sprintf("node %s: script %s: %v", a.nodeID, op, err), a.nodeID)
}

// param(name) returns a graph parameter, or nil.
func (a *scriptAction) luaParam(l *lua.State) int {
	pushValue(l, a.vars[lua.CheckString(l, 1)])
	return 1
}

// log(message) writes an info record to the run logger.
func (a *scriptAction) luaLog(l *lua.State) int {
	a.ctx.Logger().Info(lua.CheckString(l, 1), "node_id", a.nodeID)
	return 0
}

// level(name, value) sets a bound Level.
func (a *scriptAction) luaLevel(l *lua.State) int {
	name := lua.CheckString(l, 1)
	value := lua.CheckNumber(l, 2)
	target, ok := a.bindings.Level(name)
	if !ok {
		lua.Errorf(l, "level %s is not bound", name)
		return 0
	}
	target.SetLevel(value)
	return 0
}

// abort(reason) aborts the run. The script stops being updated.
func (a *scriptAction) luaAbort(l *lua.State) int {
	reason := lua.OptString(l, 1, "aborted by script "+a.nodeID)
	a.finished = true
	a.ctx.Abort(reason, a.nodeID)
	return 0
}

func pushValue(l *lua.State, v any) {
	switch x := v.(type) {
	case nil:
		l.PushNil()
	case bool:
		l.PushBoolean(x)
	case int:
		l.PushInteger(x)
	case int64:
		l.PushInteger(int(x))
	case float64:
		l.PushNumber(x)
	case string:
		l.PushString(x)
	default:
		l.PushString(fmt.Sprint(x))
	}
}
