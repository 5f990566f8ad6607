package eventgraph

import "sync/atomic"

// Runtime tracks the processors that are currently running, innermost
// last. Nodes deep inside a nested graph use it to reach the processor
// that owns them without holding a reference to it.
//
// A processor is pushed by Run and popped when its run completes or
// aborts. Pop finds the processor even when it is not on top, because an
// inner graph can finish or abort after an outer one.
//
// Runtime is single-threaded. Calls that overlap from different
// goroutines panic rather than corrupt the stack.
type Runtime struct {
	stack []*Processor
	busy  atomic.Bool
}

// NewRuntime creates an empty runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

var defaultRuntime = NewRuntime()

// DefaultRuntime returns the process-wide runtime used by processors that
// are not given one with WithRuntime.
func DefaultRuntime() *Runtime {
	return defaultRuntime
}

func (r *Runtime) enter() {
	if !r.busy.CompareAndSwap(false, true) {
		panic("eventgraph: runtime used from more than one goroutine")
	}
}

func (r *Runtime) leave() {
	r.busy.Store(false)
}

// Push puts p on top of the stack. Nil processors are ignored.
func (r *Runtime) Push(p *Processor) {
	if p == nil {
		return
	}
	r.enter()
	defer r.leave()
	r.stack = append(r.stack, p)
}

// Pop removes p from the stack.
//
// If p is on top it is popped directly. Otherwise every entry for p is
// removed and all other entries keep their relative order.
func (r *Runtime) Pop(p *Processor) {
	r.enter()
	defer r.leave()

	n := len(r.stack)
	if n == 0 {
		return
	}
	if r.stack[n-1] == p {
		r.stack[n-1] = nil
		r.stack = r.stack[:n-1]
		return
	}

	kept := r.stack[:0]
	for _, q := range r.stack {
		if q != p {
			kept = append(kept, q)
		}
	}
	for i := len(kept); i < n; i++ {
		r.stack[i] = nil
	}
	r.stack = kept
}

// Current returns the innermost running processor, or nil if none.
func (r *Runtime) Current() *Processor {
	r.enter()
	defer r.leave()
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the number of processors on the stack.
func (r *Runtime) Depth() int {
	r.enter()
	defer r.leave()
	return len(r.stack)
}

// Processors returns a copy of the stack, bottom first.
func (r *Runtime) Processors() []*Processor {
	r.enter()
	defer r.leave()
	out := make([]*Processor, len(r.stack))
	copy(out, r.stack)
	return out
}

// Abort aborts the current processor. Returns false if no processor is
// running or the current run was already aborted.
func (r *Runtime) Abort(message string, source any) bool {
	current := r.Current()
	if current == nil {
		return false
	}
	return current.Abort(message, source)
}
