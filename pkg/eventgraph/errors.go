package eventgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph building and baking.
var (
	// ErrNoStart indicates no start node was set and none could be inferred.
	ErrNoStart = errors.New("start node not set")

	// ErrStartNotFound indicates the start ID references a non-existent node.
	ErrStartNotFound = errors.New("start node not found")

	// ErrNoDoneNode indicates the graph has no terminal done node.
	ErrNoDoneNode = errors.New("graph has no done node")

	// ErrMultipleDone indicates the graph has more than one done node.
	ErrMultipleDone = errors.New("graph has more than one done node")

	// ErrNodeNotFound indicates an edge references a non-existent node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoPathToDone indicates the done node is not reachable from start.
	ErrNoPathToDone = errors.New("no path from start to done")

	// ErrUnknownParameter indicates an override names a parameter the graph does not define.
	ErrUnknownParameter = errors.New("unknown parameter")

	// ErrNilAction indicates an action factory produced no action.
	ErrNilAction = errors.New("action factory returned nil action")
)

// Sentinel errors for execution.
var (
	// ErrNotBaked indicates Run() was called before Bake().
	ErrNotBaked = errors.New("processor has not been baked")

	// ErrLocked indicates Run() was rejected because the processor is
	// locked and already running.
	ErrLocked = errors.New("processor is locked and already running")

	// ErrNilContext indicates Run() was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// NodeError wraps an error with node context.
type NodeError struct {
	// NodeID is the identifier of the node that failed.
	NodeID string
	// Name is the display name of the node, if any.
	Name string
	// Op is the operation that failed (e.g., "create", "invoke").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("node %s (%s): %s: %v", e.NodeID, e.Name, e.Op, e.Err)
	}
	return fmt.Sprintf("node %s: %s: %v", e.NodeID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *NodeError) Unwrap() error {
	return e.Err
}

// AbortError describes why a run was aborted.
// It is recorded on the processor and on the run span.
type AbortError struct {
	// RunID is the run that was aborted.
	RunID string
	// Reason is the message passed to Abort.
	Reason string
	// Source identifies the object the abort is attributed to.
	// For node-originated aborts this is the node ID.
	Source string
}

// Error implements the error interface.
func (e *AbortError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("run %s aborted by %s: %s", e.RunID, e.Source, e.Reason)
	}
	return fmt.Sprintf("run %s aborted: %s", e.RunID, e.Reason)
}

// describeSource renders an abort source for logs.
func describeSource(source any) string {
	switch s := source.(type) {
	case nil:
		return ""
	case BakedNode:
		return s.ID()
	case *Processor:
		return s.Graph().Name()
	case fmt.Stringer:
		return s.String()
	case string:
		return s
	default:
		return fmt.Sprintf("%T", source)
	}
}
