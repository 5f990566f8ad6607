// Package actions turns graph definitions into runnable graphs.
//
// A definition (see the config package) names a kind for every node.
// The Registry maps kind names to constructors, and Build assembles an
// eventgraph.Graph from a definition, applying node delays, wait flags,
// wait policies, and edges.
//
// # Kinds
//
// Node kinds build structural nodes when the definition is built:
//
//	start      entry point
//	done       terminal node
//	block      hands a host Block bound under "binding"; missing bindings continue
//	subgraph   runs a processor bound under "processor"
//	call       runs a function bound under "func"
//
// Action kinds build an action at every bake, so their params expand
// ${name} references against the baked parameter snapshot:
//
//	wait       waits "duration"
//	log        logs "message" at "level"
//	fade       drives a Level bound under "target" from "from" to "to" over "duration"
//	configure  passes the remaining params to a Target bound under "target"
//	abort      aborts the run with "reason"
//	script     runs a Lua chunk given by "source" or "file"
//
// # Bindings
//
// Definitions never reference host objects directly. They name them, and
// the host binds the names before building:
//
//	b := actions.NewBindings().
//		BindLevel("screen", actions.LevelFunc(fader.SetAlpha)).
//		BindBlock("intro", func(params config.Config) *eventgraph.Block {
//			return dialog.Open(params.String("line", ""))
//		})
//	graph, err := actions.Build(def, actions.NewDefaultRegistry(), b)
//
// # Scripts
//
// The script kind runs Lua (github.com/Shopify/go-lua). The chunk runs when
// the action starts. If it defines a global update function, the action
// keeps running and calls update(dt) with the step delta in seconds until
// it returns true. Scripts can call:
//
//	param(name)          graph parameter value
//	log(message)         info log on the run logger
//	level(name, value)   set a bound Level
//	abort(reason)        abort the run
package actions
