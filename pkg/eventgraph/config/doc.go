/*
Package config reads eventgraph definitions and the params of their nodes.

# Definitions

A definition is a graph written as data. LoadDefinition picks the format
from the file extension (.yaml, .yml, .json, .hcl):

	name: intro
	parameters:
	  speaker: narrator
	nodes:
	  - id: start
	    kind: start
	    next: [greet]
	  - id: greet
	    kind: log
	    params:
	      message: "${speaker} enters"
	    next: [done]
	  - id: done
	    kind: done

The same graph in HCL:

	name = "intro"

	parameters {
	  speaker = "narrator"
	}

	node "start" {
	  kind = "start"
	  next = ["greet"]
	}

	node "greet" {
	  kind = "log"
	  next = ["done"]
	  params {
	    message = "$${speaker} enters"
	  }
	}

	node "done" {
	  kind = "done"
	}

HCL uses $${...} because ${...} is HCL's own interpolation syntax.

# Node Params

Config wraps a params map with typed accessors that fall back to a
default when a key is missing or has the wrong type:

	cfg := config.New(node.Params).WithVars(bakedParams)
	d := cfg.Duration("duration", time.Second)

String values may reference graph parameters as ${name}. A value that is
exactly one reference takes the parameter's value with its type, so
"${volume}" reads as a float if volume is a float. References to unknown
parameters are left as written.
*/
package config
