package eventgraph

import (
	"context"
	"time"
)

// Tick describes one scheduler step.
type Tick struct {
	// Delta is the step duration scaled by the scheduler time scale.
	Delta time.Duration
	// UnscaledDelta is the raw step duration.
	UnscaledDelta time.Duration
}

// For returns the delta a task should use.
func (t Tick) For(unscaled bool) time.Duration {
	if unscaled {
		return t.UnscaledDelta
	}
	return t.Delta
}

// Delegator is the host mechanism for deferred work. The graph core only
// ever needs these two operations.
//
// Work scheduled from inside a step starts on the following step.
type Delegator interface {
	// Every calls fn once per step until fn returns false.
	Every(fn func(Tick) bool)

	// After calls fn once, after d of scaled (or unscaled) time.
	After(d time.Duration, unscaled bool, fn func())
}

// Scheduler is a tick-pumped Delegator. The host calls Step once per
// frame, or uses Run to drive it from a real-time ticker.
//
// Scheduler is NOT thread-safe. All calls, including the callbacks it
// runs, must happen on the goroutine that calls Step.
type Scheduler struct {
	timeScale float64
	now       time.Duration
	realNow   time.Duration
	steps     int
	pending   []*task
}

type task struct {
	every    func(Tick) bool
	once     func()
	deadline time.Duration
	unscaled bool
}

// NewScheduler creates a scheduler with a time scale of 1.
func NewScheduler() *Scheduler {
	return &Scheduler{timeScale: 1}
}

// SetTimeScale sets the factor applied to scaled time.
// Negative values are treated as 0 (paused scaled time).
func (s *Scheduler) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	s.timeScale = scale
}

// TimeScale returns the current time scale.
func (s *Scheduler) TimeScale() float64 {
	return s.timeScale
}

// Every implements Delegator.
func (s *Scheduler) Every(fn func(Tick) bool) {
	if fn == nil {
		return
	}
	s.pending = append(s.pending, &task{every: fn})
}

// After implements Delegator.
func (s *Scheduler) After(d time.Duration, unscaled bool, fn func()) {
	if fn == nil {
		return
	}
	now := s.now
	if unscaled {
		now = s.realNow
	}
	s.pending = append(s.pending, &task{once: fn, deadline: now + d, unscaled: unscaled})
}

// Step advances time by dt and runs due work.
func (s *Scheduler) Step(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	tick := Tick{
		Delta:         time.Duration(float64(dt) * s.timeScale),
		UnscaledDelta: dt,
	}
	s.now += tick.Delta
	s.realNow += dt
	s.steps++

	active := s.pending
	s.pending = nil

	kept := make([]*task, 0, len(active))
	for _, t := range active {
		if t.once != nil {
			now := s.now
			if t.unscaled {
				now = s.realNow
			}
			if now < t.deadline {
				kept = append(kept, t)
				continue
			}
			t.once()
			continue
		}
		if t.every(tick) {
			kept = append(kept, t)
		}
	}

	s.pending = append(kept, s.pending...)
}

// Pending returns the number of scheduled tasks.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// Idle reports whether nothing is scheduled.
func (s *Scheduler) Idle() bool {
	return len(s.pending) == 0
}

// Now returns the elapsed scaled time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Steps returns how many steps have run.
func (s *Scheduler) Steps() int {
	return s.steps
}

// Run steps the scheduler from a real-time ticker until ctx is done.
// Each step receives the wall-clock time since the previous one.
// Returns ctx.Err() when the context ends.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Step(now.Sub(last))
			last = now
		}
	}
}

// Compile-time interface check.
var _ Delegator = (*Scheduler)(nil)
