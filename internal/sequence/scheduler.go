package sequence

import (
	"sort"
	"sync"
	"time"
)

// Timer is a single scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer (false if it already fired or was stopped).
	Stop() bool
}

// Scheduler runs fn once after d. Implementations decide on which goroutine
// fn runs; the lease controller relies on it being the owner's goroutine.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}

// ManualScheduler is a deterministic Scheduler driven by Advance. Callbacks run
// synchronously on the goroutine calling Advance, ordered by due time and then
// by scheduling order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	nextSeq uint64
	pending []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// After implements Scheduler.
func (s *ManualScheduler) After(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	t := &manualTimer{s: s, due: s.now + d, seq: s.nextSeq, fn: fn}
	s.nextSeq++
	s.pending = append(s.pending, t)
	return t
}

// Elapsed returns the virtual time advanced so far.
func (s *ManualScheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns how many callbacks are still waiting to fire.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every callback that becomes
// due. Callbacks scheduled by a firing callback are honoured within the same
// Advance if they fall inside the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		t := s.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	s.mu.Lock()
	s.now = target
	s.mu.Unlock()
}

// RunAll fires callbacks until none remain and returns the virtual time spent.
func (s *ManualScheduler) RunAll() time.Duration {
	start := s.Elapsed()
	for {
		s.mu.Lock()
		var next *manualTimer
		for _, t := range s.pending {
			if t.stopped || t.fired {
				continue
			}
			if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
				next = t
			}
		}
		s.mu.Unlock()
		if next == nil {
			return s.Elapsed() - start
		}
		s.Advance(next.due - s.Elapsed())
	}
}

func (s *ManualScheduler) popDue(target time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.pending[:0]
	for _, t := range s.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.pending = live
	if len(s.pending) == 0 {
		return nil
	}

	sort.SliceStable(s.pending, func(i, j int) bool {
		if s.pending[i].due != s.pending[j].due {
			return s.pending[i].due < s.pending[j].due
		}
		return s.pending[i].seq < s.pending[j].seq
	})
	t := s.pending[0]
	if t.due > target {
		return nil
	}
	t.fired = true
	s.now = t.due
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// ChannelScheduler uses real timers but never runs callbacks itself: when a
// timer expires the callback is posted to Fired so the owner can run it on its
// own goroutine (a Bubble Tea Update, a CLI loop).
type ChannelScheduler struct {
	mu     sync.Mutex
	fired  chan func()
	timers map[*channelTimer]struct{}
	closed bool
}

type channelTimer struct {
	s     *ChannelScheduler
	timer *time.Timer
}

// NewChannelScheduler creates a scheduler with a buffered delivery channel.
func NewChannelScheduler() *ChannelScheduler {
	return &ChannelScheduler{
		fired:  make(chan func(), 16),
		timers: make(map[*channelTimer]struct{}),
	}
}

// After implements Scheduler.
func (s *ChannelScheduler) After(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &channelTimer{s: s}
	if s.closed {
		return t
	}
	t.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[t]
		delete(s.timers, t)
		closed := s.closed
		s.mu.Unlock()
		if !live || closed {
			return
		}
		s.fired <- fn
	})
	s.timers[t] = struct{}{}
	return t
}

// Fired delivers expired callbacks. The receiver must invoke them.
func (s *ChannelScheduler) Fired() <-chan func() {
	return s.fired
}

// Close stops every outstanding timer. Callbacks already queued on Fired are
// left for the owner to drain or drop.
func (s *ChannelScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for t := range s.timers {
		t.timer.Stop()
	}
	s.timers = map[*channelTimer]struct{}{}
}

func (t *channelTimer) Stop() bool {
	if t.timer == nil {
		return false
	}
	t.s.mu.Lock()
	_, live := t.s.timers[t]
	delete(t.s.timers, t)
	t.s.mu.Unlock()
	return t.timer.Stop() && live
}
