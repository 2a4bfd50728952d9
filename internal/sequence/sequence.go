package sequence

import (
	"sync"
	"time"
)

// Stage is one step of a timed sequence.
type Stage struct {
	// Name identifies the stage in logs and views.
	Name string

	// Hold is how long the sequence stays in this stage before moving on.
	Hold time.Duration

	// Enter is called when the stage becomes current. May be nil.
	Enter func()
}

// Run is a started sequence.
type Run struct {
	mu        sync.Mutex
	sched     Scheduler
	stages    []Stage
	onDone    func()
	current   int
	timer     Timer
	done      chan struct{}
	cancelled bool
	finished  bool
}

// Start enters the first stage immediately and schedules the rest. Each later
// stage is entered once the previous stage's Hold has elapsed; onDone (may be
// nil) runs after the last Hold. An empty stage list completes immediately.
func Start(s Scheduler, stages []Stage, onDone func()) *Run {
	r := &Run{
		sched:  s,
		stages: append([]Stage(nil), stages...),
		onDone: onDone,
		done:   make(chan struct{}),
	}
	if len(r.stages) == 0 {
		r.complete()
		return r
	}
	r.enter(0)
	return r
}

func (r *Run) enter(i int) {
	r.mu.Lock()
	if r.cancelled {
		r.mu.Unlock()
		return
	}
	r.current = i
	st := r.stages[i]
	r.mu.Unlock()

	if st.Enter != nil {
		st.Enter()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	next := i + 1
	r.timer = r.sched.After(st.Hold, func() {
		if next < len(r.stages) {
			r.enter(next)
			return
		}
		r.complete()
	})
}

func (r *Run) complete() {
	r.mu.Lock()
	if r.cancelled || r.finished {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.current = len(r.stages)
	r.timer = nil
	onDone := r.onDone
	r.mu.Unlock()

	if onDone != nil {
		onDone()
	}
	close(r.done)
}

// Stage returns the index of the current stage. It equals the number of
// stages once the sequence has completed.
func (r *Run) Stage() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// StageName returns the current stage's name, or "" once completed.
func (r *Run) StageName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current >= len(r.stages) {
		return ""
	}
	return r.stages[r.current].Name
}

// Done is closed when the sequence completes or is cancelled.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Finished reports whether the sequence ran to completion.
func (r *Run) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// Cancel stops the pending stage timer. No further Enter or onDone callbacks
// are made. Cancelling a finished run does nothing.
func (r *Run) Cancel() {
	r.mu.Lock()
	if r.cancelled || r.finished {
		r.mu.Unlock()
		return
	}
	r.cancelled = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()
	close(r.done)
}

// Active reports whether the run is still progressing. A nil run is inactive.
func (r *Run) Active() bool {
	if r == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.cancelled && !r.finished
}
