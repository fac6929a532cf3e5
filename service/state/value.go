package state

import (
	"sync"

	"github.com/google/uuid"
)

// Subscribers is an ordered set of change callbacks. Callbacks run in subscription
// order, outside of any lock held by the owner.
type Subscribers struct {
	mu   sync.Mutex
	subs []subscriber
}

type subscriber struct {
	id uuid.UUID
	fn func()
}

// Add registers fn and returns a function that removes it. Calling the returned
// function more than once is a no-op.
func (s *Subscribers) Add(fn func()) func() {
	id := uuid.New()

	s.mu.Lock()
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	s.mu.Unlock()

	return func() { s.remove(id) }
}

func (s *Subscribers) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered callbacks.
func (s *Subscribers) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Notify calls every registered callback.
func (s *Subscribers) Notify() {
	s.mu.Lock()
	fns := make([]func(), len(s.subs))
	for i, sub := range s.subs {
		fns[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Value is an observable slot. Set notifies subscribers only when the value
// actually changes.
type Value[T comparable] struct {
	mu   sync.RWMutex
	v    T
	subs Subscribers
}

// NewValue returns a Value holding initial.
func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set stores next and reports whether it differed from the previous value.
func (v *Value[T]) Set(next T) bool {
	v.mu.Lock()
	if v.v == next {
		v.mu.Unlock()
		return false
	}
	v.v = next
	v.mu.Unlock()

	v.subs.Notify()
	return true
}

// Update applies fn to the current value and stores the result.
func (v *Value[T]) Update(fn func(T) T) bool {
	v.mu.Lock()
	next := fn(v.v)
	if next == v.v {
		v.mu.Unlock()
		return false
	}
	v.v = next
	v.mu.Unlock()

	v.subs.Notify()
	return true
}

// Subscribe registers fn to run after every change.
func (v *Value[T]) Subscribe(fn func()) func() {
	return v.subs.Add(fn)
}
