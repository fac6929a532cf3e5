// Package scope ties timers, goroutines and cleanup callbacks to the lifetime of
// one mounted view. Closing the scope stops its pending timers, cancels its
// context and runs deferred cleanups in reverse order.
package scope

import (
	"context"
	"sync"
	"time"

	"github.com/andres-erbsen/clock"
)

// Scope owns side effects started on behalf of a view.
type Scope struct {
	clock clock.Clock

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	nextID   uint64
	timers   map[uint64]*clock.Timer
	cleanups []func()
}

// New returns an open scope. A nil clk uses the wall clock.
func New(clk clock.Clock) *Scope {
	if clk == nil {
		clk = clock.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{
		clock:  clk,
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[uint64]*clock.Timer),
	}
}

// Context is cancelled when the scope closes.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Clock returns the clock timers are scheduled on.
func (s *Scope) Clock() clock.Clock {
	return s.clock
}

// AfterFunc runs fn once after d unless the scope closes first or the returned
// stop function is called. On a closed scope it schedules nothing.
func (s *Scope) AfterFunc(d time.Duration, fn func()) (stop func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	s.nextID++
	id := s.nextID
	s.timers[id] = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()

		if live {
			fn()
		}
	})

	return func() { s.stopTimer(id) }
}

func (s *Scope) stopTimer(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (s *Scope) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Defer registers fn to run when the scope closes. On a closed scope fn runs
// immediately.
func (s *Scope) Defer(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		fn()
		return
	}
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops pending timers, cancels the context and runs cleanups, last
// registered first. It is safe to call more than once.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	s.cancel()
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
